package eventlog

import (
	"srtrack/internal/fields"
	"srtrack/internal/gifts"
	"srtrack/internal/models"
)

var (
	commentShapes = []fields.ShapeMatcher{fields.KeyedList("comment_log"), fields.BareList{}}
	giftShapes    = []fields.ShapeMatcher{fields.KeyedList("gift_log"), fields.BareList{}}

	actorIDAliases   = []string{"user_id", "user.user_id"}
	actorNameAliases = []string{"name", "user_name", "user.name"}
)

// DecodeComments converts a comment_log payload. Records without created_at are dropped.
func DecodeComments(roomID string, payload any) []models.LogEvent {
	items := fields.Objects(fields.ExtractList(payload, commentShapes))
	out := make([]models.LogEvent, 0, len(items))
	for _, obj := range items {
		createdAt, ok := fields.Int(obj, []string{"created_at"})
		if !ok {
			continue
		}
		text, _ := fields.String(obj, []string{"comment", "text"})
		ev := models.LogEvent{
			Kind:      models.SourceComment,
			RoomID:    roomID,
			CreatedAt: int64(createdAt),
			Payload:   models.LogPayload{Text: text},
		}
		ev.ActorID, _ = fields.String(obj, actorIDAliases)
		ev.ActorName, _ = fields.String(obj, actorNameAliases)
		out = append(out, ev)
	}
	return out
}

// DecodeGifts converts a gift_log payload. The log carries no point values, so
// they are taken from catalog; unknown gifts keep point 0.
func DecodeGifts(roomID string, payload any, catalog gifts.CatalogInterface) []models.LogEvent {
	items := fields.Objects(fields.ExtractList(payload, giftShapes))
	out := make([]models.LogEvent, 0, len(items))
	for _, obj := range items {
		createdAt, ok := fields.Int(obj, []string{"created_at"})
		if !ok {
			continue
		}
		giftID, ok := fields.String(obj, []string{"gift_id"})
		if !ok {
			continue
		}
		num, ok := fields.Int(obj, []string{"num"})
		if !ok {
			num = 0
		}
		ev := models.LogEvent{
			Kind:      models.SourcePaidGift,
			RoomID:    roomID,
			CreatedAt: int64(createdAt),
			Payload:   gifts.Enrich(models.LogPayload{GiftID: giftID, Num: num}, catalog),
		}
		ev.ActorID, _ = fields.String(obj, actorIDAliases)
		ev.ActorName, _ = fields.String(obj, actorNameAliases)
		if image, ok := fields.String(obj, []string{"image"}); ok {
			ev.Payload.Image = image
		}
		out = append(out, ev)
	}
	return out
}
