package session

import (
	"srtrack/internal/models"
	"time"
)

// View is what a tick publishes. It is never mutated after publication.
type View struct {
	SessionID string          `json:"session_id"`
	Event     models.EventRef `json:"event"`
	// Resolved is false while no ranking source has answered yet; an empty
	// Ranking is only meaningful when it is true.
	Resolved         bool                         `json:"resolved"`
	ParticipantCount *int                         `json:"participant_count"`
	ResolvedAt       *time.Time                   `json:"resolved_at"`
	Snapshot         *models.EventSnapshot        `json:"-"`
	Ranking          []models.RoomRankEntry       `json:"ranking"`
	BlockRanks       map[string]int               `json:"block_ranks,omitempty"`
	Rows             []models.DisplayRow          `json:"rows"`
	Logs             map[string][]models.LogEvent `json:"-"`
	Live             map[string]models.LiveRoom   `json:"-"`
	Tick             int                          `json:"tick"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

// newView builds the published view of snap.
func newView(sessionID string, event models.EventRef, snap *models.EventSnapshot) *View {
	v := &View{
		SessionID:        sessionID,
		Event:            event,
		Resolved:         snap.Resolved,
		ParticipantCount: snap.ParticipantCount,
		Snapshot:         snap,
		Ranking:          snap.Rows(),
		Rows:             []models.DisplayRow{},
		Logs:             map[string][]models.LogEvent{},
	}
	if snap.Resolved {
		at := snap.ResolvedAt
		v.ResolvedAt = &at
	}
	return v
}

// Point returns the current point of roomID, preferring the live standing row
// over the ranking snapshot.
func (v *View) Point(roomID string) (int, bool) {
	if v == nil {
		return 0, false
	}
	for _, row := range v.Rows {
		if row.RoomID == roomID && row.Point != nil {
			return *row.Point, true
		}
	}
	if e, ok := v.Snapshot.Get(roomID); ok {
		return e.Point, true
	}
	return 0, false
}

// Log returns the published log of roomID filtered to kinds; no kinds means all.
func (v *View) Log(roomID string, kinds ...models.SourceKind) []models.LogEvent {
	if v == nil {
		return nil
	}
	events := v.Logs[roomID]
	if len(kinds) == 0 {
		return events
	}
	out := make([]models.LogEvent, 0, len(events))
	for _, ev := range events {
		for _, k := range kinds {
			if ev.Kind == k {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}
