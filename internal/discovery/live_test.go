package discovery

import (
	"context"
	"srtrack/internal/models"
	"srtrack/internal/testutil"
	"srtrack/internal/upstream"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Obj = testutil.Obj

var list = testutil.List

func TestParseLive(t *testing.T) {
	payload := Obj{
		"onlives": list(
			Obj{"genre_name": "Idol", "lives": list(
				Obj{"room_id": 1.0, "started_at": 100.0, "premium_room_type": 0.0},
				Obj{"room_id": 2.0, "started_at": 200.0, "premium_room_type": 1.0},
			)},
			Obj{"genre_name": "Talk", "lives": list(
				Obj{"live_info": Obj{"room_id": "3", "started_at": 300.0}},
				Obj{"room_id": 4.0},
			)},
		),
		"official_lives": list(Obj{"room": Obj{"room_id": 5.0, "started_at": "500"}}),
		"amateur_lives":  list(Obj{"room_id": 0.0, "started_at": 1.0}),
	}

	rooms := ParseLive(payload)
	require.Len(t, rooms, 4)
	assert.Equal(t, models.LiveRoom{RoomID: "1", StartedAt: 100}, rooms["1"])
	assert.True(t, rooms["2"].Premium)
	assert.Equal(t, int64(300), rooms["3"].StartedAt)
	assert.Equal(t, int64(500), rooms["5"].StartedAt)
	assert.NotContains(t, rooms, "4")
	assert.NotContains(t, rooms, "0")
}

func TestLiveRooms_Live(t *testing.T) {
	client := testutil.NewMockClient().On("/onlives", Obj{"onlives": list()})
	l := NewLiveRooms(testutil.NewConfig(), client, &testutil.MockLogger{})

	rooms, err := l.Live(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)

	client.Fail("/onlives", upstream.ErrSourceUnavailable)
	rooms, err = l.Live(context.Background())
	assert.ErrorIs(t, err, upstream.ErrSourceUnavailable)
	assert.Nil(t, rooms)
}
