package models

type SourceKind string

const (
	SourceComment  SourceKind = "comment"
	SourcePaidGift SourceKind = "paid_gift"
	SourceFreeGift SourceKind = "free_gift"
)

func (k SourceKind) Valid() bool {
	switch k {
	case SourceComment, SourcePaidGift, SourceFreeGift:
		return true
	}
	return false
}

func (k SourceKind) IsGift() bool {
	return k == SourcePaidGift || k == SourceFreeGift
}

type LogPayload struct {
	GiftID   string `json:"gift_id,omitempty"`
	GiftName string `json:"gift_name,omitempty"`
	Num      int    `json:"num,omitempty"`
	Point    int    `json:"point,omitempty"`
	Image    string `json:"image,omitempty"`
	Text     string `json:"text,omitempty"`
}

type LogEvent struct {
	Kind      SourceKind `json:"kind"`
	RoomID    string     `json:"room_id"`
	CreatedAt int64      `json:"created_at"`
	ActorID   string     `json:"actor_id,omitempty"`
	ActorName string     `json:"actor_name,omitempty"`
	Payload   LogPayload `json:"payload"`
}

// IdentityKey is the dedup key of a LogEvent; upstream gives no unique id.
type IdentityKey struct {
	RoomID        string
	Kind          SourceKind
	CreatedAt     int64
	Actor         string
	Discriminator string
}

func (e LogEvent) Key() IdentityKey {
	actor := e.ActorID
	if actor == "" {
		actor = e.ActorName
	}
	disc := e.Payload.Text
	if e.Kind.IsGift() {
		disc = e.Payload.GiftID + ":" + itoa(e.Payload.Num)
	}
	return IdentityKey{
		RoomID:        e.RoomID,
		Kind:          e.Kind,
		CreatedAt:     e.CreatedAt,
		Actor:         actor,
		Discriminator: disc,
	}
}

// TotalPoint is the gift point value times the count; zero for comments.
func (e LogEvent) TotalPoint() int {
	if !e.Kind.IsGift() {
		return 0
	}
	return e.Payload.Point * e.Payload.Num
}
