package services

import (
	"context"
	"errors"
	"sort"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"srtrack/internal/session"
	"srtrack/internal/structures"
	"sync"
)

var ErrTooManySessions = errors.New("tracking session limit reached")

type TrackingServiceInterface interface {
	// Track creates a session for ev and opens its push channels.
	Track(ev models.EventRef, rooms []string) (*session.Session, error)
	Untrack(id string) bool
	Get(id string) (*session.Session, bool)
	Sessions() []*session.Session
	// TickAll runs one refresh cycle of every session, one after another.
	TickAll(ctx context.Context)
	SessionCount() int
	StopAll()
}

type TrackingService struct {
	deps        session.Deps
	logger      providers.Logger
	maxSessions int

	// channels of every session live until StopAll
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*session.Session
}

func NewTrackingService(conf *structures.Config, deps session.Deps, logger providers.Logger) TrackingServiceInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &TrackingService{
		deps:        deps,
		logger:      logger,
		maxSessions: conf.Tracking.MaxSessions,
		ctx:         ctx,
		cancel:      cancel,
		sessions:    make(map[string]*session.Session),
	}
}

func (ts *TrackingService) Track(ev models.EventRef, rooms []string) (*session.Session, error) {
	if ts.full() {
		return nil, ErrTooManySessions
	}

	s, err := session.New(ts.deps, ev, rooms)
	if err != nil {
		return nil, err
	}
	if err := s.Start(ts.ctx); err != nil {
		return nil, err
	}

	// concurrent Track calls may have filled the registry while s was starting
	ts.mu.Lock()
	if ts.fullLocked() {
		ts.mu.Unlock()
		s.Stop()
		return nil, ErrTooManySessions
	}
	ts.sessions[s.ID()] = s
	ts.mu.Unlock()
	return s, nil
}

func (ts *TrackingService) full() bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.fullLocked()
}

func (ts *TrackingService) fullLocked() bool {
	return ts.maxSessions > 0 && len(ts.sessions) >= ts.maxSessions
}

func (ts *TrackingService) Untrack(id string) bool {
	ts.mu.Lock()
	s, ok := ts.sessions[id]
	delete(ts.sessions, id)
	ts.mu.Unlock()

	if ok {
		s.Stop()
	}
	return ok
}

func (ts *TrackingService) Get(id string) (*session.Session, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	s, ok := ts.sessions[id]
	return s, ok
}

func (ts *TrackingService) Sessions() []*session.Session {
	ts.mu.RLock()
	out := make([]*session.Session, 0, len(ts.sessions))
	for _, s := range ts.sessions {
		out = append(out, s)
	}
	ts.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (ts *TrackingService) TickAll(ctx context.Context) {
	for _, s := range ts.Sessions() {
		if ctx.Err() != nil {
			return
		}
		s.Tick(ctx)
	}
}

func (ts *TrackingService) SessionCount() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.sessions)
}

func (ts *TrackingService) StopAll() {
	ts.mu.Lock()
	sessions := ts.sessions
	ts.sessions = make(map[string]*session.Session)
	ts.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
	ts.cancel()
	ts.logger.Infof(providers.TypeSession, "stopped %d tracking sessions", len(sessions))
}
