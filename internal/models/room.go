package models

// LiveRoom is one entry of the live-room discovery endpoint.
type LiveRoom struct {
	RoomID    string `json:"room_id"`
	StartedAt int64  `json:"started_at"`
	Premium   bool   `json:"premium"`
}

// RoomStanding is the live event standing reported by a room's own event endpoint.
type RoomStanding struct {
	RoomID   string `json:"room_id"`
	Rank     *int   `json:"rank"`
	Point    int    `json:"point"`
	UpperGap *int   `json:"upper_gap"`
	LowerGap *int   `json:"lower_gap"`
}

// DisplayRow is one row of the tracked-room table handed to the display and export layer.
type DisplayRow struct {
	RoomID    string `json:"room_id"`
	RoomName  string `json:"room_name"`
	Live      bool   `json:"live"`
	Premium   bool   `json:"premium"`
	Rank      *int   `json:"rank"`
	Point     *int   `json:"point"`
	UpperGap  *int   `json:"upper_gap"`
	LowerGap  *int   `json:"lower_gap"`
	StartedAt int64  `json:"started_at,omitempty"`
}

// Event is an entry of the event directory.
type Event struct {
	EventRef
	Name        string `json:"event_name"`
	StartedAt   int64  `json:"started_at"`
	ShowRanking *bool  `json:"show_ranking,omitempty"`
	TypeName    string `json:"type_name,omitempty"`
	Image       string `json:"image_m,omitempty"`
	Closed      bool   `json:"is_closed"`
}
