// Package channel listens to the platform push socket for free gifts sent to a
// tracked room and hands them to the room's queue.
package channel

import (
	"context"
	"errors"
	"fmt"
	"srtrack/internal/gifts"
	"srtrack/internal/models"
	"srtrack/internal/providers"
	"srtrack/internal/structures"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
)

var ErrInvalidRoom = errors.New("room id must be numeric")

// Sink receives normalised events; Offer reports false when the event was dropped.
type Sink interface {
	Offer(ev models.LogEvent) bool
}

type FreeGiftChannelInterface interface {
	Start(ctx context.Context) error
	// Close stops the listener and waits for its goroutines.
	Close()
	Connected() bool
	RoomID() string
}

// Opener creates the channel of one room.
type Opener func(roomID string, sink Sink) FreeGiftChannelInterface

type FreeGiftChannel struct {
	url     string
	roomID  string
	catalog gifts.CatalogInterface
	sink    Sink
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	dialer  *websocket.Dialer

	pingInterval     time.Duration
	readTimeout      time.Duration
	reconnectInitial time.Duration
	reconnectMax     time.Duration

	connMu    sync.Mutex
	conn      *websocket.Conn
	connected atomic.Bool

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewOpener binds the session-wide dependencies of every room channel.
func NewOpener(conf *structures.Config, catalog gifts.CatalogInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) Opener {
	return func(roomID string, sink Sink) FreeGiftChannelInterface {
		return NewFreeGiftChannel(conf, roomID, catalog, sink, logger, metrics)
	}
}

func NewFreeGiftChannel(
	conf *structures.Config,
	roomID string,
	catalog gifts.CatalogInterface,
	sink Sink,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *FreeGiftChannel {
	ping := conf.Tracking.PingInterval
	if ping <= 0 {
		ping = 30 * time.Second
	}
	initial := conf.Tracking.ReconnectInitial
	if initial <= 0 {
		initial = time.Second
	}
	maxWait := conf.Tracking.ReconnectMax
	if maxWait < initial {
		maxWait = initial
	}
	return &FreeGiftChannel{
		url:              conf.Upstream.PushURL,
		roomID:           roomID,
		catalog:          catalog,
		sink:             sink,
		logger:           logger,
		metrics:          metrics,
		dialer:           &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		pingInterval:     ping,
		readTimeout:      2 * ping,
		reconnectInitial: initial,
		reconnectMax:     maxWait,
	}
}

func (c *FreeGiftChannel) RoomID() string {
	return c.roomID
}

func (c *FreeGiftChannel) Connected() bool {
	return c.connected.Load()
}

func (c *FreeGiftChannel) Start(ctx context.Context) error {
	roomNum, err := strconv.Atoi(c.roomID)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRoom, c.roomID)
	}
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.run(ctx, roomNum)
	return nil
}

func (c *FreeGiftChannel) newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.reconnectInitial
	b.MaxInterval = c.reconnectMax
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(b, ctx)
}

// run keeps one connection alive until ctx ends, reconnecting with exponential backoff.
func (c *FreeGiftChannel) run(ctx context.Context, roomNum int) {
	defer c.wg.Done()

	b := c.newBackOff(ctx)
	for {
		established, err := c.serve(ctx, roomNum)
		if ctx.Err() != nil {
			return
		}
		if established {
			b.Reset()
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return
		}
		c.logger.Warnf(providers.TypeChannel, "room %s push channel lost (%s), reconnecting in %s", c.roomID, err, wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// serve runs a single connection. established reports whether the subscribe frame went out.
func (c *FreeGiftChannel) serve(ctx context.Context, roomNum int) (established bool, err error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if resp != nil {
			return false, fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return false, fmt.Errorf("websocket dial failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.setConn(conn)
	defer c.dropConn()
	// unblocks ReadMessage once the channel is closed
	stopWatch := context.AfterFunc(ctx, func() { conn.Close() })
	defer stopWatch()

	msg, err := json.Marshal(subscribeFrame{Command: "watch", RoomID: roomNum})
	if err != nil {
		return false, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return false, fmt.Errorf("subscribe failed: %w", err)
	}
	c.connected.Store(true)
	c.metrics.SetChannelConnected(c.roomID, true)
	c.logger.Infof(providers.TypeChannel, "room %s push channel subscribed", c.roomID)

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	})

	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	c.wg.Add(1)
	go c.pingLoop(pingCtx, conn)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return true, err
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		c.handle(message)
	}
}

func (c *FreeGiftChannel) handle(message []byte) {
	ev, ok := ParseFrame(c.roomID, message, c.catalog, time.Now())
	if !ok {
		return
	}
	if !c.sink.Offer(ev) {
		c.metrics.IncQueueDropped(c.roomID)
		c.logger.Warnf(providers.TypeChannel, "room %s free gift queue full, dropped gift %s", c.roomID, ev.Payload.GiftID)
	}
}

func (c *FreeGiftChannel) pingLoop(ctx context.Context, conn *websocket.Conn) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.logger.Debugf(providers.TypeChannel, "room %s ping failed: %s", c.roomID, err)
				return
			}
		}
	}
}

func (c *FreeGiftChannel) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	c.conn = conn
}

func (c *FreeGiftChannel) dropConn() {
	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
	}
	if c.connected.Swap(false) {
		c.metrics.SetChannelConnected(c.roomID, false)
	}
}

func (c *FreeGiftChannel) Close() {
	c.closeOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.wg.Wait()
		c.logger.Infof(providers.TypeChannel, "room %s push channel closed", c.roomID)
	})
}
