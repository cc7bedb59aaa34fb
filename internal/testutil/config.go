package testutil

import (
	"srtrack/internal/structures"
	"time"
)

// NewConfig returns a config with short relative endpoint templates that tests
// can register on a MockClient verbatim.
func NewConfig() *structures.Config {
	return &structures.Config{
		AppName: "SrTrack",
		WebServer: structures.Server{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Logger: structures.LoggerConfig{Level: "debug", Mode: 0o644, Dir: "/tmp"},
		Upstream: structures.UpstreamConfig{
			BaseURL: "http://upstream.test",
			PushURL: "ws://push.test/socket",
			Timeout: time.Second,
		},
		Endpoints: structures.EndpointsConfig{
			RankingCandidates: []string{
				"/room_list?event_id={event_id}&page={page}",
				"/event/{event_url_key}/ranking?page={page}",
			},
			ParticipantCount: "/room_list?event_id={event_id}",
			ParticipantFallbacks: []string{
				"/event/{event_url_key}/ranking?page={page}",
				"/ranking?event_id={event_id}&page={page}",
			},
			BlockRanking: "/event/{event_url_key}/ranking?page={page}",
			BlockRoster:  "/room_list?event_id={event_id}",
			RoomStanding: "/event_and_support?room_id={room_id}",
			CommentLog:   "/comment_log?room_id={room_id}",
			GiftLog:      "/gift_log?room_id={room_id}",
			GiftCatalog:  "/gift_list?room_id={room_id}",
			LiveRooms:    "/onlives",
			EventSearch:  "/event/search?status={status}&page={page}",
		},
		Aliases: structures.AliasConfig{
			RoomID: []string{"room_id", "id", "room.room_id", "room.id"},
			Name:   []string{"room_name", "name", "performer_name", "user_name", "room_title", "room.room_name", "room.name"},
			Point:  []string{"point", "event_point", "popularity_point", "total_point", "event_entry.event_point", "event_entry.point"},
			Rank:   []string{"rank", "position", "event_entry.rank"},
		},
		Ranking: structures.RankingConfig{
			MaxPages:      5,
			CountMaxPages: 5,
			LiveTTL:       5 * time.Minute,
			EndedTTL:      time.Hour,
			EventPages:    3,
		},
		Tracking: structures.TrackingConfig{
			Interval:         7 * time.Second,
			QueueSize:        16,
			MaxSessions:      4,
			ReconnectInitial: 10 * time.Millisecond,
			ReconnectMax:     50 * time.Millisecond,
			PingInterval:     time.Second,
		},
	}
}

// Obj and List shorten JSON-tree literals in tests.
type Obj = map[string]any

func List(items ...any) []any {
	return items
}
