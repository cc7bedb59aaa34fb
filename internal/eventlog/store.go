// Package eventlog keeps per-room comment and gift logs, merging polled windows
// and pushed free gifts into one deduplicated, newest-first sequence.
package eventlog

import (
	"context"
	"fmt"
	"sort"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"sync"
)

type StoreInterface interface {
	// Pull fetches the latest window of kind for roomID and merges it. Gift
	// pulls also drain the room's free-gift queue into the same merge.
	Pull(ctx context.Context, roomID string, kind models.SourceKind) error
	Merge(roomID string, events []models.LogEvent) int
	// Evict drops the log of every room not in live and returns the evicted ids.
	Evict(live map[string]bool) []string
	Snapshot(roomID string) []models.LogEvent
	Rooms() []string
	Queue(roomID string) *Queue
}

type roomLog struct {
	events []models.LogEvent
	keys   map[models.IdentityKey]struct{}
}

type Store struct {
	fetcher   Fetcher
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	queueSize int

	// mu guards readers against the tick loop; only the tick loop writes.
	mu     sync.RWMutex
	logs   map[string]*roomLog
	queues map[string]*Queue
}

func NewStore(fetcher Fetcher, queueSize int, logger providers.Logger, metrics providers.MetricsProviderInterface) StoreInterface {
	return &Store{
		fetcher:   fetcher,
		logger:    logger,
		metrics:   metrics,
		queueSize: queueSize,
		logs:      make(map[string]*roomLog),
		queues:    make(map[string]*Queue),
	}
}

func (s *Store) Pull(ctx context.Context, roomID string, kind models.SourceKind) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown log kind %q", kind)
	}

	var batch []models.LogEvent
	var fetchErr error
	if kind != models.SourceFreeGift {
		batch, fetchErr = s.fetcher.Fetch(ctx, roomID, kind)
		if fetchErr != nil {
			fetchErr = fmt.Errorf("pull %s for room %s: %w", kind, roomID, fetchErr)
		}
	}
	if kind.IsGift() {
		batch = append(batch, s.Queue(roomID).Drain()...)
	}

	if added := s.Merge(roomID, batch); added > 0 {
		s.logger.Debugf(providers.TypeEventLog, "room %s: %d new %s entries", roomID, added, kind)
	}
	return fetchErr
}

func (s *Store) Merge(roomID string, events []models.LogEvent) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, ok := s.logs[roomID]
	if !ok {
		log = &roomLog{keys: make(map[models.IdentityKey]struct{})}
		s.logs[roomID] = log
	}

	added := 0
	for _, ev := range events {
		ev.RoomID = roomID
		key := ev.Key()
		if _, seen := log.keys[key]; seen {
			continue
		}
		log.keys[key] = struct{}{}
		log.events = append(log.events, ev)
		added++
	}

	sort.SliceStable(log.events, func(i, j int) bool {
		return log.events[i].CreatedAt > log.events[j].CreatedAt
	})
	s.metrics.SetLogEntries(roomID, len(log.events))
	return added
}

func (s *Store) Evict(live map[string]bool) []string {
	s.mu.Lock()
	var evicted []string
	for roomID := range s.logs {
		if live[roomID] {
			continue
		}
		delete(s.logs, roomID)
		evicted = append(evicted, roomID)
	}
	queues := make([]*Queue, 0, len(evicted))
	for _, roomID := range evicted {
		if q, ok := s.queues[roomID]; ok {
			queues = append(queues, q)
		}
	}
	s.mu.Unlock()

	for _, q := range queues {
		q.Drain()
	}
	for _, roomID := range evicted {
		s.metrics.DeleteLogEntries(roomID)
		s.logger.Infof(providers.TypeEventLog, "room %s left the live set, log purged", roomID)
	}
	sort.Strings(evicted)
	return evicted
}

// Snapshot returns a copy of the room's log, newest first.
func (s *Store) Snapshot(roomID string) []models.LogEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.logs[roomID]
	if !ok {
		return []models.LogEvent{}
	}
	out := make([]models.LogEvent, len(log.events))
	copy(out, log.events)
	return out
}

func (s *Store) Rooms() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.logs))
	for roomID := range s.logs {
		out = append(out, roomID)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Queue returns the room's free-gift queue, creating it on first use.
func (s *Store) Queue(roomID string) *Queue {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[roomID]
	if !ok {
		q = NewQueue(s.queueSize)
		s.queues[roomID] = q
	}
	return q
}
