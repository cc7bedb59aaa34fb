// Package session holds the state of one tracking session: an event, the rooms
// followed in it, their logs, push channels and gift catalog.
package session

import (
	"context"
	"errors"
	"fmt"
	"srtrack/internal/channel"
	"srtrack/internal/discovery"
	"srtrack/internal/eventlog"
	"srtrack/internal/gifts"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"srtrack/internal/ranking"
	"srtrack/internal/structures"
	"srtrack/internal/upstream"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoRooms = errors.New("at least one room must be tracked")
	ErrNoPoint = errors.New("room has no point")
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Config    *structures.Config
	Client    upstream.ClientInterface
	Resolver  ranking.ResolverInterface
	Counter   ranking.ParticipantCounterInterface
	Block     ranking.BlockReconcilerInterface
	Standings ranking.StandingResolverInterface
	LiveRooms discovery.LiveRoomsInterface
	Logger    providers.Logger
	Metrics   providers.MetricsProviderInterface

	// OpenChannel overrides how push channels are created; nil uses the websocket channel.
	OpenChannel func(catalog gifts.CatalogInterface) channel.Opener
}

type Session struct {
	id    string
	event models.EventRef
	rooms []string

	deps     Deps
	catalog  gifts.CatalogInterface
	store    eventlog.StoreInterface
	open     channel.Opener
	channels map[string]channel.FreeGiftChannelInterface
	now      func() time.Time

	// tickMu serialises Tick, Start and Stop.
	tickMu   sync.Mutex
	stopped  bool
	ticks    int
	snapshot *models.EventSnapshot
	live     map[string]models.LiveRoom

	viewMu sync.RWMutex
	view   *View
}

func New(deps Deps, event models.EventRef, rooms []string) (*Session, error) {
	rooms = dedupe(rooms)
	if len(rooms) == 0 {
		return nil, ErrNoRooms
	}

	catalog := gifts.NewCatalog(deps.Config.Endpoints.GiftCatalog, deps.Client, deps.Logger)
	fetcher := eventlog.NewUpstreamFetcher(deps.Config, deps.Client, catalog)
	open := channel.NewOpener(deps.Config, catalog, deps.Logger, deps.Metrics)
	if deps.OpenChannel != nil {
		open = deps.OpenChannel(catalog)
	}

	s := &Session{
		id:       uuid.NewString(),
		event:    event,
		rooms:    rooms,
		deps:     deps,
		catalog:  catalog,
		store:    eventlog.NewStore(fetcher, deps.Config.Tracking.QueueSize, deps.Logger, deps.Metrics),
		open:     open,
		channels: make(map[string]channel.FreeGiftChannelInterface),
		now:      time.Now,
	}
	s.view = newView(s.id, event, models.Unresolved(event.ID))
	return s, nil
}

func dedupe(rooms []string) []string {
	seen := make(map[string]bool, len(rooms))
	out := make([]string, 0, len(rooms))
	for _, r := range rooms {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Event() models.EventRef {
	return s.event
}

func (s *Session) Rooms() []string {
	return append([]string(nil), s.rooms...)
}

// Start opens one push channel per tracked room. Channels already started are
// closed again when any room fails.
func (s *Session) Start(ctx context.Context) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	for _, roomID := range s.rooms {
		ch := s.open(roomID, s.store.Queue(roomID))
		if err := ch.Start(ctx); err != nil {
			s.closeChannels()
			return fmt.Errorf("start channel for room %s: %w", roomID, err)
		}
		s.channels[roomID] = ch
	}
	s.deps.Logger.Infof(providers.TypeSession, "session %s tracking event %s rooms %v", s.id, s.event.ID, s.rooms)
	return nil
}

// Stop closes every push channel and waits for them. A stopped session ignores further ticks.
func (s *Session) Stop() {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.closeChannels()
	s.deps.Logger.Infof(providers.TypeSession, "session %s stopped", s.id)
}

func (s *Session) closeChannels() {
	var wg sync.WaitGroup
	for roomID, ch := range s.channels {
		wg.Add(1)
		go func(ch channel.FreeGiftChannelInterface) {
			defer wg.Done()
			ch.Close()
		}(ch)
		delete(s.channels, roomID)
	}
	wg.Wait()
}

// View returns the last published view.
func (s *Session) View() *View {
	s.viewMu.RLock()
	defer s.viewMu.RUnlock()
	return s.view
}

func (s *Session) publish(v *View) {
	s.viewMu.Lock()
	s.view = v
	s.viewMu.Unlock()
}

// Needed compares the current points of two rooms of the session.
func (s *Session) Needed(targetID, rivalID string) (gifts.Result, error) {
	v := s.View()
	target, ok := v.Point(targetID)
	if !ok {
		return gifts.Result{}, fmt.Errorf("%w: %s in session %s", ErrNoPoint, targetID, s.id)
	}
	rival, ok := v.Point(rivalID)
	if !ok {
		return gifts.Result{}, fmt.Errorf("%w: %s in session %s", ErrNoPoint, rivalID, s.id)
	}
	return gifts.Calculate(target, rival), nil
}
