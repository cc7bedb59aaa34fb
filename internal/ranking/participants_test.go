package ranking

import (
	"context"
	"srtrack/internal/models"
	"srtrack/internal/testutil"
	"srtrack/internal/upstream"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countURL = "/room_list?event_id=100"

func newTestCounter(client *testutil.MockClient) (ParticipantCounterInterface, *testutil.MockMetrics) {
	metrics := testutil.NewMockMetrics()
	return NewParticipantCounter(testutil.NewConfig(), client, testutil.NewMockCache(), &testutil.MockLogger{}, metrics), metrics
}

func TestParticipantCounter_TotalEntriesWins(t *testing.T) {
	client := testutil.NewMockClient().On(countURL, Obj{"total_entries": 42.0, "list": list(1.0, 2.0, 3.0)})
	c, _ := newTestCounter(client)

	n := c.Resolve(context.Background(), testEvent)
	require.NotNil(t, n)
	assert.Equal(t, 42, *n)
}

func TestParticipantCounter_ListLength(t *testing.T) {
	client := testutil.NewMockClient().On(countURL, Obj{"list": list(1.0, 2.0, 3.0)})
	c, _ := newTestCounter(client)

	n := c.Resolve(context.Background(), testEvent)
	require.NotNil(t, n)
	assert.Equal(t, 3, *n)
}

func TestParticipantCounter_StringTotal(t *testing.T) {
	client := testutil.NewMockClient().On(countURL, Obj{"total_entries": "17"})
	c, _ := newTestCounter(client)

	n := c.Resolve(context.Background(), testEvent)
	require.NotNil(t, n)
	assert.Equal(t, 17, *n)
}

func TestParticipantCounter_FallbackSumsPages(t *testing.T) {
	client := testutil.NewMockClient().
		Fail(countURL, upstream.ErrSourceUnavailable).
		On(rankingP1, Obj{"ranking": list(1.0, 2.0)}).
		On(rankingP2, Obj{"ranking": list(3.0)})
	c, _ := newTestCounter(client)

	n := c.Resolve(context.Background(), testEvent)
	require.NotNil(t, n)
	assert.Equal(t, 3, *n)
}

func TestParticipantCounter_NextFallbackOnlyWhenZero(t *testing.T) {
	client := testutil.NewMockClient().
		On(countURL, Obj{"message": "maintenance"}).
		On(rankingP1, Obj{"ranking": list()}).
		On("/ranking?event_id=100&page=1", list(1.0, 2.0, 3.0, 4.0))
	c, _ := newTestCounter(client)

	n := c.Resolve(context.Background(), testEvent)
	require.NotNil(t, n)
	assert.Equal(t, 4, *n)
}

func TestParticipantCounter_TotalFailure(t *testing.T) {
	client := testutil.NewMockClient()
	c, metrics := newTestCounter(client)

	assert.Nil(t, c.Resolve(context.Background(), testEvent))
	assert.Equal(t, 1, metrics.FallbackExhausted["participants"])
}

func TestParticipantCounter_CountFallsBackToRankingSize(t *testing.T) {
	c, _ := newTestCounter(testutil.NewMockClient())

	snap := &models.EventSnapshot{Resolved: true, Entries: map[string]models.RoomRankEntry{
		"1": {RoomID: "1"}, "2": {RoomID: "2"},
	}}
	n := c.Count(context.Background(), testEvent, snap)
	require.NotNil(t, n)
	assert.Equal(t, 2, *n)

	assert.Nil(t, c.Count(context.Background(), testEvent, models.Unresolved("100")))
}

func TestParticipantCounter_CachesCount(t *testing.T) {
	client := testutil.NewMockClient().On(countURL, Obj{"total_entries": 42.0})
	cache := testutil.NewMockCache()
	conf := testutil.NewConfig()
	c := NewParticipantCounter(conf, client, cache, &testutil.MockLogger{}, testutil.NewMockMetrics())

	for i := 0; i < 3; i++ {
		n := c.Resolve(context.Background(), testEvent)
		require.NotNil(t, n)
		assert.Equal(t, 42, *n)
	}
	assert.Equal(t, 1, client.CallCount(countURL))
	assert.Equal(t, conf.Ranking.LiveTTL, cache.TTLs["participants:spring:100"])
}

func TestParticipantCounter_CachesMiss(t *testing.T) {
	client := testutil.NewMockClient()
	cache := testutil.NewMockCache()
	c := NewParticipantCounter(testutil.NewConfig(), client, cache, &testutil.MockLogger{}, testutil.NewMockMetrics())

	assert.Nil(t, c.Resolve(context.Background(), testEvent))
	calls := len(client.Calls)
	assert.Nil(t, c.Resolve(context.Background(), testEvent))
	assert.Len(t, client.Calls, calls)

	// the ranking size still answers Count while the miss is cached
	snap := &models.EventSnapshot{Resolved: true, Entries: map[string]models.RoomRankEntry{"1": {RoomID: "1"}}}
	n := c.Count(context.Background(), testEvent, snap)
	require.NotNil(t, n)
	assert.Equal(t, 1, *n)
}

func TestParticipantCounter_EndedEventUsesLongTTL(t *testing.T) {
	client := testutil.NewMockClient().On(countURL, Obj{"total_entries": 5.0})
	cache := testutil.NewMockCache()
	conf := testutil.NewConfig()
	c := NewParticipantCounter(conf, client, cache, &testutil.MockLogger{}, testutil.NewMockMetrics())

	ended := testEvent
	ended.EndedAt = 1
	require.NotNil(t, c.Resolve(context.Background(), ended))
	assert.Equal(t, conf.Ranking.EndedTTL, cache.TTLs["participants:spring:100"])
}

func TestParticipantCounter_CorruptCacheEntryIsRefetched(t *testing.T) {
	client := testutil.NewMockClient().On(countURL, Obj{"total_entries": 8.0})
	cache := testutil.NewMockCache()
	cache.Set("participants:spring:100", []byte("garbage"), 0)
	c := NewParticipantCounter(testutil.NewConfig(), client, cache, &testutil.MockLogger{}, testutil.NewMockMetrics())

	n := c.Resolve(context.Background(), testEvent)
	require.NotNil(t, n)
	assert.Equal(t, 8, *n)
	assert.Equal(t, "8", string(cache.Data["participants:spring:100"]))
}
