package models

import (
	"sort"
	"time"
)

// EventRef identifies an event on the upstream platform. Different endpoints
// address the same event either by numeric id or by its URL key.
type EventRef struct {
	ID      string `json:"event_id"`
	URLKey  string `json:"event_url_key"`
	Block   bool   `json:"is_event_block"`
	EndedAt int64  `json:"ended_at"`
}

// Ended reports whether the event is over at now.
func (e EventRef) Ended(now time.Time) bool {
	return e.EndedAt > 0 && now.Unix() > e.EndedAt
}

type RoomRankEntry struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Rank     *int   `json:"rank"`
	Point    int    `json:"point"`
}

// EventSnapshot is the canonical ranking of one event. A snapshot with
// Resolved=false means no source could be asked, which is different from a
// resolved snapshot with no entries.
type EventSnapshot struct {
	EventID          string                   `json:"event_id"`
	Resolved         bool                     `json:"resolved"`
	Source           string                   `json:"source,omitempty"`
	Entries          map[string]RoomRankEntry `json:"entries"`
	ParticipantCount *int                     `json:"participant_count,omitempty"`
	ResolvedAt       time.Time                `json:"resolved_at"`
}

// Unresolved returns the sentinel snapshot for eventID.
func Unresolved(eventID string) *EventSnapshot {
	return &EventSnapshot{EventID: eventID, Entries: map[string]RoomRankEntry{}}
}

func (s *EventSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

func (s *EventSnapshot) Get(roomID string) (RoomRankEntry, bool) {
	if s == nil {
		return RoomRankEntry{}, false
	}
	e, ok := s.Entries[roomID]
	return e, ok
}

// Rows returns entries ordered by point descending, then known rank, then room id.
func (s *EventSnapshot) Rows() []RoomRankEntry {
	if s == nil {
		return nil
	}
	rows := make([]RoomRankEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		rows = append(rows, e)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Point != rows[j].Point {
			return rows[i].Point > rows[j].Point
		}
		ri, rj := rows[i].Rank, rows[j].Rank
		if ri != nil && rj != nil && *ri != *rj {
			return *ri < *rj
		}
		if (ri == nil) != (rj == nil) {
			return ri != nil
		}
		return rows[i].RoomID < rows[j].RoomID
	})
	return rows
}
