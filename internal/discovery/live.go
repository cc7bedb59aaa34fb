// Package discovery finds which rooms are broadcasting and which events are running.
package discovery

import (
	"context"
	"srtrack/internal/fields"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"srtrack/internal/structures"
	"srtrack/internal/upstream"
)

var liveShapes = []fields.ShapeMatcher{
	fields.NestedList{Outer: "onlives", Inner: "lives"},
	fields.KeyedList("official_lives"),
	fields.KeyedList("talent_lives"),
	fields.KeyedList("amateur_lives"),
}

// liveScopes are the objects a live record may carry its room fields in, tried in order.
var liveScopes = []string{"", "live_info", "room"}

type LiveRoomsInterface interface {
	// Live returns the rooms currently broadcasting keyed by room id. An error
	// means the set is unknown, not empty.
	Live(ctx context.Context) (map[string]models.LiveRoom, error)
}

type LiveRooms struct {
	client   upstream.ClientInterface
	logger   providers.Logger
	template string
}

func NewLiveRooms(conf *structures.Config, client upstream.ClientInterface, logger providers.Logger) LiveRoomsInterface {
	return &LiveRooms{client: client, logger: logger, template: conf.Endpoints.LiveRooms}
}

func (l *LiveRooms) Live(ctx context.Context) (map[string]models.LiveRoom, error) {
	payload, err := l.client.GetJSON(ctx, l.template)
	if err != nil {
		return nil, err
	}
	rooms := ParseLive(payload)
	l.logger.Debugf(providers.TypeSession, "%d rooms live", len(rooms))
	return rooms, nil
}

// ParseLive flattens every live list of the onlives payload. Records without a
// room id or a start time are skipped.
func ParseLive(payload any) map[string]models.LiveRoom {
	rooms := make(map[string]models.LiveRoom)
	for _, obj := range fields.Objects(fields.ExtractAll(payload, liveShapes)) {
		scope, ok := liveScope(obj)
		if !ok {
			continue
		}
		roomID, _ := fields.String(scope, []string{"room_id"})
		startedAt, ok := fields.Int(scope, []string{"started_at"})
		if !ok {
			continue
		}
		premium, _ := fields.Int(scope, []string{"premium_room_type"})
		rooms[roomID] = models.LiveRoom{
			RoomID:    roomID,
			StartedAt: int64(startedAt),
			Premium:   premium == 1,
		}
	}
	return rooms
}

func liveScope(obj map[string]any) (map[string]any, bool) {
	for _, path := range liveScopes {
		scope := obj
		if path != "" {
			v, ok := fields.Lookup(obj, path)
			if !ok {
				continue
			}
			if scope, ok = v.(map[string]any); !ok {
				continue
			}
		}
		if id, ok := fields.String(scope, []string{"room_id"}); ok && id != "0" {
			return scope, true
		}
	}
	return nil, false
}
