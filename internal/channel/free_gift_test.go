package channel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"srtrack/internal/eventlog"
	"srtrack/internal/models"
	"srtrack/internal/testutil"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- local mocks (scoped to channel tests) ---

type stubCatalog map[string]models.GiftCatalogEntry

func (s stubCatalog) Ensure(context.Context, string) bool { return len(s) > 0 }
func (s stubCatalog) Lookup(id string) (models.GiftCatalogEntry, bool) {
	e, ok := s[id]
	return e, ok
}
func (s stubCatalog) Name(id string) string {
	if e, ok := s[id]; ok {
		return e.Name
	}
	return "gift#" + id
}
func (s stubCatalog) Entries() []models.GiftCatalogEntry { return nil }

var testCatalog = stubCatalog{"1001": {GiftID: "1001", Name: "Star", PointValue: 1}}

// pushServer accepts websocket connections, records subscribe frames and
// writes whatever frames the test hands it.
type pushServer struct {
	*httptest.Server
	mu         sync.Mutex
	subscribes []map[string]any
	conns      chan *websocket.Conn
}

func newPushServer(t *testing.T) *pushServer {
	t.Helper()
	ps := &pushServer{conns: make(chan *websocket.Conn, 8)}
	upgrader := websocket.Upgrader{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}
		var frame map[string]any
		_ = json.Unmarshal(msg, &frame)
		ps.mu.Lock()
		ps.subscribes = append(ps.subscribes, frame)
		ps.mu.Unlock()
		ps.conns <- conn
	}))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *pushServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ps.URL, "http")
}

func (ps *pushServer) next(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-ps.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("no websocket connection")
		return nil
	}
}

func newTestChannel(url, roomID string, sink Sink) (*FreeGiftChannel, *testutil.MockMetrics) {
	conf := testutil.NewConfig()
	conf.Upstream.PushURL = url
	metrics := testutil.NewMockMetrics()
	return NewFreeGiftChannel(conf, roomID, testCatalog, sink, &testutil.MockLogger{}, metrics), metrics
}

func TestFreeGiftChannel_SubscribesAndQueuesFreeGifts(t *testing.T) {
	ps := newPushServer(t)
	queue := eventlog.NewQueue(8)
	c, metrics := newTestChannel(ps.wsURL(), "12345", queue)

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	conn := ps.next(t)
	defer conn.Close()

	ps.mu.Lock()
	require.Len(t, ps.subscribes, 1)
	assert.Equal(t, "watch", ps.subscribes[0]["command"])
	assert.Equal(t, 12345.0, ps.subscribes[0]["room_id"])
	ps.mu.Unlock()

	frames := []string{
		`{"type":"free_gift","gift_id":1001,"num":10,"user_id":7,"name":"fan","created_at":1700000000}`,
		`{"type":"gift","data":{"gift_id":3,"num":1,"is_free":false}}`,
		`{"type":"gift","data":{"gift_id":1002,"num":2,"is_free":true}}`,
		`{"type":"comment","comment":"hi"}`,
		`not json`,
	}
	for _, f := range frames {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(f)))
	}

	var got []models.LogEvent
	require.Eventually(t, func() bool {
		got = append(got, queue.Drain()...)
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, models.SourceFreeGift, got[0].Kind)
	assert.Equal(t, "12345", got[0].RoomID)
	assert.Equal(t, "Star", got[0].Payload.GiftName)
	assert.Equal(t, int64(1700000000), got[0].CreatedAt)
	assert.Equal(t, "gift#1002", got[1].Payload.GiftName)
	assert.True(t, metrics.IsConnected("12345"))
	assert.True(t, c.Connected())
}

func TestFreeGiftChannel_ReconnectsAfterDrop(t *testing.T) {
	ps := newPushServer(t)
	c, _ := newTestChannel(ps.wsURL(), "1", eventlog.NewQueue(8))

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	first := ps.next(t)
	first.Close()

	second := ps.next(t)
	defer second.Close()

	ps.mu.Lock()
	assert.Len(t, ps.subscribes, 2)
	ps.mu.Unlock()
}

func TestFreeGiftChannel_CloseJoins(t *testing.T) {
	ps := newPushServer(t)
	c, metrics := newTestChannel(ps.wsURL(), "1", eventlog.NewQueue(8))

	require.NoError(t, c.Start(context.Background()))
	conn := ps.next(t)
	defer conn.Close()
	require.Eventually(t, c.Connected, time.Second, 5*time.Millisecond)

	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.False(t, c.Connected())
	assert.False(t, metrics.IsConnected("1"))

	c.Close() // idempotent
}

func TestFreeGiftChannel_DropsWhenQueueFull(t *testing.T) {
	ps := newPushServer(t)
	queue := eventlog.NewQueue(1)
	c, metrics := newTestChannel(ps.wsURL(), "5", queue)

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()
	conn := ps.next(t)
	defer conn.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"free_gift","gift_id":1001,"num":1}`)))
	}
	require.Eventually(t, func() bool { return metrics.DroppedCount("5") == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 2, queue.Dropped())
}

func TestFreeGiftChannel_RejectsNonNumericRoom(t *testing.T) {
	c, _ := newTestChannel("ws://127.0.0.1:1", "abc", eventlog.NewQueue(1))
	err := c.Start(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidRoom))
	c.Close()
}

func TestFreeGiftChannel_DialFailureRetriesUntilClosed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	c, _ := newTestChannel("ws"+strings.TrimPrefix(srv.URL, "http"), "1", eventlog.NewQueue(1))

	require.NoError(t, c.Start(context.Background()))
	time.Sleep(60 * time.Millisecond)
	assert.False(t, c.Connected())
	c.Close()
}
