package channel

import (
	"srtrack/internal/fields"
	"srtrack/internal/gifts"
	"srtrack/internal/models"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

type subscribeFrame struct {
	Command string `json:"command"`
	RoomID  int    `json:"room_id"`
}

var (
	giftIDAliases    = []string{"gift_id", "g"}
	numAliases       = []string{"num", "n"}
	actorIDAliases   = []string{"user_id", "u"}
	actorNameAliases = []string{"name", "user_name", "ac"}
	createdAtAliases = []string{"created_at", "t"}
	freeFlagAliases  = []string{"is_free", "free"}
)

// ParseFrame converts one push frame into a free-gift event. Frames of any
// other type, paid gifts and undecodable frames yield ok=false.
func ParseFrame(roomID string, raw []byte, catalog gifts.CatalogInterface, now time.Time) (models.LogEvent, bool) {
	var frame map[string]any
	if err := json.Unmarshal(raw, &frame); err != nil {
		return models.LogEvent{}, false
	}
	body := frame
	if data, ok := frame["data"].(map[string]any); ok {
		body = data
	}

	frameType, _ := fields.String(frame, []string{"type"})
	switch frameType {
	case "free_gift":
	case "gift":
		if !isFree(body) {
			return models.LogEvent{}, false
		}
	default:
		return models.LogEvent{}, false
	}

	giftID, ok := fields.String(body, giftIDAliases)
	if !ok {
		return models.LogEvent{}, false
	}
	num, ok := fields.Int(body, numAliases)
	if !ok || num <= 0 {
		num = 1
	}
	createdAt := now.Unix()
	if ts, ok := fields.Int(body, createdAtAliases); ok && ts > 0 {
		createdAt = int64(ts)
	}

	ev := models.LogEvent{
		Kind:      models.SourceFreeGift,
		RoomID:    roomID,
		CreatedAt: createdAt,
		Payload:   gifts.Enrich(models.LogPayload{GiftID: giftID, Num: num}, catalog),
	}
	ev.ActorID, _ = fields.String(body, actorIDAliases)
	ev.ActorName, _ = fields.String(body, actorNameAliases)
	return ev, true
}

func isFree(body map[string]any) bool {
	if v, ok := fields.First(body, freeFlagAliases); ok {
		if b, ok := v.(bool); ok {
			return b
		}
		n, ok := fields.ToInt(v)
		return ok && n == 1
	}
	giftType, _ := fields.String(body, []string{"gift_type"})
	return strings.EqualFold(giftType, "free")
}
