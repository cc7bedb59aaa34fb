package ranking

import (
	"context"
	"errors"
	"srtrack/internal/testutil"
	"srtrack/internal/upstream"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStanding_Paths(t *testing.T) {
	info := Obj{"point": 1500.0, "rank": 4.0, "upper_gap": 120.0, "lower_gap": "30"}
	for name, payload := range map[string]Obj{
		"top":    {"ranking": info},
		"nested": {"event_and_support_info": Obj{"ranking": info}},
		"event":  {"event": Obj{"ranking": info}},
	} {
		t.Run(name, func(t *testing.T) {
			s, err := ParseStanding("11", payload)
			require.NoError(t, err)
			assert.Equal(t, 1500, s.Point)
			assert.Equal(t, 4, *s.Rank)
			assert.Equal(t, 120, *s.UpperGap)
			assert.Equal(t, 30, *s.LowerGap)
		})
	}
}

func TestParseStanding_NoPoint(t *testing.T) {
	_, err := ParseStanding("11", Obj{"ranking": Obj{"rank": 1.0}})
	assert.True(t, errors.Is(err, ErrNoStanding))

	_, err = ParseStanding("11", Obj{"is_event": false})
	assert.True(t, errors.Is(err, ErrNoStanding))
}

func TestStandingResolver_Standing(t *testing.T) {
	client := testutil.NewMockClient().
		On("/event_and_support?room_id=11", Obj{"ranking": Obj{"point": 10.0}}).
		On("/event_and_support?room_id=12", list())
	s := NewStandingResolver(testutil.NewConfig(), client)

	got, err := s.Standing(context.Background(), "11")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Point)
	assert.Nil(t, got.Rank)
	assert.Nil(t, got.UpperGap)

	_, err = s.Standing(context.Background(), "12")
	assert.True(t, errors.Is(err, upstream.ErrMalformedPayload))
}
