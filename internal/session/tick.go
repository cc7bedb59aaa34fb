package session

import (
	"context"
	"srtrack/internal/gifts"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"time"
)

// Tick runs one refresh cycle: ranking, block reconcile, live discovery and
// eviction, log pulls, then publishes a new view. Failures are logged and
// never abort the cycle.
func (s *Session) Tick(ctx context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	if s.stopped {
		return
	}

	start := time.Now()
	s.ticks++
	now := s.now()

	snap := s.resolveRanking(ctx)

	var blockRanks map[string]int
	if s.event.Block && !s.event.Ended(now) {
		blockRanks = s.deps.Block.Reconcile(ctx, s.event)
	}

	live, err := s.deps.LiveRooms.Live(ctx)
	if err != nil {
		s.deps.Logger.Warnf(providers.TypeSession, "session %s: live rooms unknown, eviction skipped: %s", s.id, err)
	} else {
		s.live = live
		tracked := make(map[string]bool, len(s.rooms))
		for _, roomID := range s.rooms {
			// premium lives expose no gift log, so theirs is purged like an offline room's
			if room, ok := live[roomID]; ok && !room.Premium {
				tracked[roomID] = true
			}
		}
		s.store.Evict(tracked)
	}

	s.pullLogs(ctx)

	rows := s.buildRows(ctx, snap, blockRanks, now)
	logs := make(map[string][]models.LogEvent, len(s.rooms))
	for _, roomID := range s.rooms {
		logs[roomID] = s.enrichLog(s.store.Snapshot(roomID))
	}

	view := newView(s.id, s.event, snap)
	view.BlockRanks = blockRanks
	view.Rows = rows
	view.Logs = logs
	view.Live = s.live
	view.Tick = s.ticks
	view.UpdatedAt = now
	s.publish(view)
	s.deps.Metrics.ObserveTickDuration(time.Since(start))
}

// resolveRanking keeps the previous resolved snapshot when every source fails.
func (s *Session) resolveRanking(ctx context.Context) *models.EventSnapshot {
	snap := s.deps.Resolver.Resolve(ctx, s.event)
	if !snap.Resolved && s.snapshot != nil && s.snapshot.Resolved {
		s.deps.Logger.Warnf(providers.TypeSession, "session %s: ranking unresolved, keeping snapshot from %s", s.id, s.snapshot.ResolvedAt)
		snap = s.snapshot
	}

	withCount := *snap
	withCount.ParticipantCount = s.deps.Counter.Count(ctx, s.event, snap)
	s.snapshot = &withCount
	return s.snapshot
}

func (s *Session) liveRoom(roomID string) (models.LiveRoom, bool) {
	room, ok := s.live[roomID]
	return room, ok
}

// pullLogs refreshes comment and paid gift logs of tracked rooms that are live
// and not premium; premium lives expose no gift log.
func (s *Session) pullLogs(ctx context.Context) {
	for _, roomID := range s.rooms {
		room, ok := s.liveRoom(roomID)
		if !ok || room.Premium {
			continue
		}
		s.catalog.Ensure(ctx, roomID)
		for _, kind := range []models.SourceKind{models.SourceComment, models.SourcePaidGift} {
			if err := s.store.Pull(ctx, roomID, kind); err != nil {
				s.deps.Logger.Warnf(providers.TypeSession, "session %s: %s", s.id, err)
			}
		}
	}
}

func (s *Session) buildRows(ctx context.Context, snap *models.EventSnapshot, blockRanks map[string]int, now time.Time) []models.DisplayRow {
	ended := s.event.Ended(now)
	rows := make([]models.DisplayRow, 0, len(s.rooms))
	for _, roomID := range s.rooms {
		entry, inRanking := snap.Get(roomID)
		row := models.DisplayRow{RoomID: roomID, RoomName: entry.RoomName, Rank: entry.Rank}
		if row.RoomName == "" {
			row.RoomName = "room_" + roomID
		}
		if room, ok := s.liveRoom(roomID); ok {
			row.Live = true
			row.Premium = room.Premium
			row.StartedAt = room.StartedAt
		}

		switch {
		case row.Premium:
			// premium lives hide their point
		case ended:
			if inRanking {
				row.Point = models.IntPtr(entry.Point)
				row.UpperGap = models.IntPtr(0)
				row.LowerGap = models.IntPtr(0)
			}
		default:
			standing, err := s.deps.Standings.Standing(ctx, roomID)
			if err != nil {
				s.deps.Logger.Warnf(providers.TypeSession, "session %s: standing of room %s: %s", s.id, roomID, err)
				if inRanking {
					row.Point = models.IntPtr(entry.Point)
				}
				break
			}
			row.Point = models.IntPtr(standing.Point)
			row.UpperGap = standing.UpperGap
			row.LowerGap = standing.LowerGap
			row.Rank = standing.Rank
		}

		if blockRanks != nil {
			row.Rank = nil
			if rank := blockRanks[roomID]; rank > 0 {
				row.Rank = models.IntPtr(rank)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// enrichLog reapplies the catalog to gift entries so ones stored before the
// catalog loaded pick up real names and points.
func (s *Session) enrichLog(events []models.LogEvent) []models.LogEvent {
	for i := range events {
		if events[i].Kind.IsGift() {
			events[i].Payload = gifts.Enrich(events[i].Payload, s.catalog)
		}
	}
	return events
}
