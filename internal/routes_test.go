package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"srtrack/internal/controllers"
	"srtrack/internal/models"
	"srtrack/internal/session"
	"srtrack/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- minimal mocks for routes test ---

type routeTestService struct{}

func (m *routeTestService) Track(models.EventRef, []string) (*session.Session, error) {
	return nil, session.ErrNoRooms
}
func (m *routeTestService) Untrack(string) bool                 { return false }
func (m *routeTestService) Get(string) (*session.Session, bool) { return nil, false }
func (m *routeTestService) Sessions() []*session.Session        { return nil }
func (m *routeTestService) TickAll(context.Context)             {}
func (m *routeTestService) SessionCount() int                   { return 0 }
func (m *routeTestService) StopAll()                            {}

type routeTestDirectory struct{}

func (m *routeTestDirectory) Ongoing(context.Context) []models.Event { return nil }
func (m *routeTestDirectory) Finished(context.Context, time.Time, time.Time) []models.Event {
	return nil
}
func (m *routeTestDirectory) Find(context.Context, string) (models.Event, bool) {
	return models.Event{}, false
}

func newRouteTestController() *controllers.ApiController {
	return controllers.NewApiController(&testutil.MockLogger{}, &routeTestService{}, &routeTestDirectory{}, testutil.NewMockCache())
}

func TestInitRoutes_RegistersRoutes(t *testing.T) {
	router := InitRoutes(newRouteTestController())
	routes := router.GetRoutes()

	require.Len(t, routes, 7)

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}

	for _, url := range []string{"/events", "/sessions", "/track", "/untrack", "/snapshot", "/log", "/needed"} {
		assert.Contains(t, urls, url)
	}
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	router := InitRoutes(newRouteTestController())

	mux := http.NewServeMux()
	for _, r := range router.GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}

	// GET /events with POST should fail
	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	// POST /track with GET should fail
	req = httptest.NewRequest(http.MethodGet, "/track", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/snapshot?session=nope", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
