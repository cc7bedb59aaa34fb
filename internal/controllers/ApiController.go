package controllers

import (
	"context"
	"errors"
	json "github.com/goccy/go-json"
	"net/http"
	"srtrack/internal/discovery"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"srtrack/internal/services"
	"srtrack/internal/session"
	"strings"
	"time"
)

const (
	maxRequestBodySize = 1 << 20 // 1 MB
	eventsCacheTTL     = 30 * time.Second
	finishedWindow     = 30 * 24 * time.Hour
	dateLayout         = "2006-01-02"
	lookupTimeout      = 10 * time.Second
)

type ApiController struct {
	logger    providers.Logger
	service   services.TrackingServiceInterface
	directory discovery.EventDirectoryInterface
	cache     providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.TrackingServiceInterface, directory discovery.EventDirectoryInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		service:   service,
		directory: directory,
		cache:     cache,
	}
}

type trackRequest struct {
	EventID any      `json:"event_id"`
	URLKey  string   `json:"event_url_key"`
	Block   *bool    `json:"is_event_block"`
	EndedAt int64    `json:"ended_at"`
	Rooms   []string `json:"rooms"`
}

type untrackRequest struct {
	SessionID string `json:"session_id"`
}

type sessionResponse struct {
	SessionID string          `json:"session_id"`
	Event     models.EventRef `json:"event"`
	Rooms     []string        `json:"rooms"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson, eventsCacheTTL)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// GetEvents lists ongoing events, or finished ones with status=finished
// inside the optional from/to date window.
func (ac *ApiController) GetEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch q.Get("status") {
	case "", "ongoing":
		ac.serveFromCacheOrCompute(w, "api:events:ongoing", func() (any, error) {
			return nonNil(ac.directory.Ongoing(r.Context())), nil
		})
	case "finished":
		to := time.Now()
		from := to.Add(-finishedWindow)
		var err error
		if v := q.Get("from"); v != "" {
			if from, err = time.ParseInLocation(dateLayout, v, time.Local); err != nil {
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
		}
		if v := q.Get("to"); v != "" {
			if to, err = time.ParseInLocation(dateLayout, v, time.Local); err != nil {
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
			to = to.Add(24*time.Hour - time.Second)
		}
		key := "api:events:finished:" + from.Format(dateLayout) + ":" + to.Format(dateLayout)
		ac.serveFromCacheOrCompute(w, key, func() (any, error) {
			return nonNil(ac.directory.Finished(r.Context(), from, to)), nil
		})
	default:
		http.Error(w, "Bad Request", http.StatusBadRequest)
	}
}

func nonNil(events []models.Event) []models.Event {
	if events == nil {
		return []models.Event{}
	}
	return events
}

func (ac *ApiController) Track(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload trackRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	eventID := discovery.NormalizeEventID(payload.EventID)
	if eventID == "" || len(payload.Rooms) == 0 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ref := models.EventRef{ID: eventID, URLKey: payload.URLKey, EndedAt: payload.EndedAt}
	if payload.Block != nil {
		ref.Block = *payload.Block
	}
	if ref.URLKey == "" || payload.Block == nil || ref.EndedAt == 0 {
		ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
		found, ok := ac.directory.Find(ctx, eventID)
		cancel()
		switch {
		case ok:
			ref = fillRef(ref, found.EventRef, payload.Block == nil)
		case ref.URLKey == "":
			http.Error(w, "Event Not Found", http.StatusNotFound)
			return
		}
	}

	s, err := ac.service.Track(ref, payload.Rooms)
	switch {
	case errors.Is(err, services.ErrTooManySessions):
		http.Error(w, "Too Many Sessions", http.StatusTooManyRequests)
		return
	case errors.Is(err, session.ErrNoRooms):
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	case err != nil:
		ac.logger.Errorf(providers.TypeSession, "track event %s: %s", eventID, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.logger.Infof(providers.TypeSession, "session %s tracks event %s (%d rooms)", s.ID(), ref.ID, len(s.Rooms()))
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: s.ID(), Event: s.Event(), Rooms: s.Rooms()})
}

func fillRef(ref, found models.EventRef, block bool) models.EventRef {
	if ref.URLKey == "" {
		ref.URLKey = found.URLKey
	}
	if ref.EndedAt == 0 {
		ref.EndedAt = found.EndedAt
	}
	if block {
		ref.Block = found.Block
	}
	return ref
}

func (ac *ApiController) Untrack(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload untrackRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.SessionID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !ac.service.Untrack(payload.SessionID) {
		http.Error(w, "Session Not Found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetSessions(w http.ResponseWriter, r *http.Request) {
	sessions := ac.service.Sessions()
	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionResponse{SessionID: s.ID(), Event: s.Event(), Rooms: s.Rooms()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (ac *ApiController) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := ac.service.Get(r.URL.Query().Get("session"))
	if !ok {
		http.Error(w, "Session Not Found", http.StatusNotFound)
	}
	return s, ok
}

func (ac *ApiController) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	s, ok := ac.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// GetLog returns the log of one room, optionally filtered by a comma separated
// kind list (comment, paid_gift, free_gift).
func (ac *ApiController) GetLog(w http.ResponseWriter, r *http.Request) {
	s, ok := ac.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	room := q.Get("room")
	if room == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var kinds []models.SourceKind
	if raw := q.Get("kind"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			kind := models.SourceKind(strings.TrimSpace(part))
			if !kind.Valid() {
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
			kinds = append(kinds, kind)
		}
	}

	events := s.View().Log(room, kinds...)
	if events == nil {
		events = []models.LogEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (ac *ApiController) GetNeeded(w http.ResponseWriter, r *http.Request) {
	s, ok := ac.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	target, rival := q.Get("target"), q.Get("rival")
	if target == "" || rival == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := s.Needed(target, rival)
	if errors.Is(err, session.ErrNoPoint) {
		http.Error(w, "Point Unavailable", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
