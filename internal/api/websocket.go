package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/linkstatus-core/internal/infrastructure/config"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/logging"
)

// Frame types exchanged with WebSocket clients.
const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FramePing        = "ping"
	FramePong        = "pong"
	FrameEvent       = "event"
	FrameResponse    = "response"
	FrameError       = "error"
)

const (
	// subscriberQueueSize bounds frames waiting for a slow client.
	subscriberQueueSize = 64

	fallbackPingInterval = 30 * time.Second
	fallbackPongTimeout  = 10 * time.Second
)

// Frame is the JSON envelope used in both directions on the WebSocket.
type Frame struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// ChannelList is the payload of subscribe and unsubscribe frames.
type ChannelList struct {
	Channels []string `json:"channels"`
}

// inboundFrame keeps the payload raw until the frame type is known.
type inboundFrame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func encodeFrame(f Frame) ([]byte, error) {
	if f.Timestamp == "" {
		f.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return json.Marshal(f)
}

func errorBody(message string) map[string]string {
	return map[string]string{"message": message}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS handler.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Hub fans report events out to WebSocket subscribers.
//
// The latest event of every channel is retained and replayed when a client
// subscribes, so a dashboard opened between reporter runs still starts from
// the current report.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu       sync.RWMutex
	subs     map[*subscriber]struct{}
	retained map[string][]byte
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		subs:     make(map[*subscriber]struct{}),
		retained: make(map[string][]byte),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.disconnectAll()
}

// Broadcast sends payload as an event on channel to every subscriber of
// that channel and retains it for later subscribers. Slow clients whose
// queue is full miss the frame.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := encodeFrame(Frame{Type: FrameEvent, EventType: channel, Payload: payload})
	if err != nil {
		h.logger.Error("encoding websocket event", "channel", channel, "error", err)
		return
	}

	h.mu.Lock()
	h.retained[channel] = data
	targets := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	delivered := 0
	for _, s := range targets {
		if s.wants(channel) && s.enqueue(data) {
			delivered++
		}
	}
	h.logger.Debug("websocket event broadcast",
		"channel", channel,
		"delivered", delivered,
		"clients", len(targets),
	)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) retainedEvent(channel string) ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data, ok := h.retained[channel]
	return data, ok
}

func (h *Hub) attach(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
}

func (h *Hub) detach(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	n := len(h.subs)
	h.mu.Unlock()

	if s.shutdown() {
		h.logger.Debug("websocket client disconnected", "clients", n)
	}
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for s := range subs {
		s.shutdown()
		if s.conn != nil {
			s.conn.Close()
		}
	}
}

// subscriber is one WebSocket connection and the channels it listens to.
type subscriber struct {
	hub   *Hub
	conn  *websocket.Conn
	queue chan []byte

	mu       sync.Mutex
	channels map[string]bool
	closed   bool
}

func newSubscriber(hub *Hub, conn *websocket.Conn) *subscriber {
	return &subscriber{
		hub:      hub,
		conn:     conn,
		queue:    make(chan []byte, subscriberQueueSize),
		channels: make(map[string]bool),
	}
}

// enqueue reports whether data was queued. It never blocks.
func (s *subscriber) enqueue(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.queue <- data:
		return true
	default:
		return false
	}
}

// shutdown closes the queue once; the write loop then sends a close frame.
func (s *subscriber) shutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	close(s.queue)
	return true
}

func (s *subscriber) wants(channel string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channels[channel]
}

func (s *subscriber) setChannels(names []string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		if on {
			s.channels[name] = true
		} else {
			delete(s.channels, name)
		}
	}
}

// keepalive holds the per-connection timing derived from WebSocketConfig.
type keepalive struct {
	ping       time.Duration
	writeWait  time.Duration
	readWindow time.Duration
	maxMessage int64
}

func newKeepalive(cfg config.WebSocketConfig) keepalive {
	ping := time.Duration(cfg.PingInterval) * time.Second
	if ping <= 0 {
		ping = fallbackPingInterval
	}
	pong := time.Duration(cfg.PongTimeout) * time.Second
	if pong <= 0 {
		pong = fallbackPongTimeout
	}
	return keepalive{
		ping:       ping,
		writeWait:  pong,
		readWindow: ping + pong,
		maxMessage: int64(cfg.MaxMessageSize),
	}
}

// handleWebSocket upgrades the request. Like the report endpoint it is
// read-only and unauthenticated.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed",
			"error", err,
			"request_id", requestIDFrom(r.Context()),
		)
		return
	}

	sub := newSubscriber(s.hub, conn)
	s.hub.attach(sub)

	ka := newKeepalive(s.wsCfg)
	go sub.writeLoop(ka)
	go sub.readLoop(ka)
}

func (s *subscriber) readLoop(ka keepalive) {
	defer func() {
		s.hub.detach(s)
		s.conn.Close()
	}()

	extend := func() error {
		return s.conn.SetReadDeadline(time.Now().Add(ka.readWindow))
	}

	s.conn.SetReadLimit(ka.maxMessage)
	extend() //nolint:errcheck // a failed deadline surfaces on the next read
	s.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Application frames count as liveness too; some browsers never answer pings.
		extend() //nolint:errcheck // a failed deadline surfaces on the next read
		s.dispatch(data)
	}
}

func (s *subscriber) writeLoop(ka keepalive) {
	ticker := time.NewTicker(ka.ping)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.queue:
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, nil) //nolint:errcheck // connection is going away
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(ka.writeWait)) //nolint:errcheck // write error caught below
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(ka.writeWait)) //nolint:errcheck // write error caught below
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *subscriber) dispatch(data []byte) {
	var in inboundFrame
	if err := json.Unmarshal(data, &in); err != nil {
		s.reply("", FrameError, errorBody("invalid JSON message"))
		return
	}

	switch in.Type {
	case FrameSubscribe, FrameUnsubscribe:
		var list ChannelList
		if len(in.Payload) > 0 {
			if err := json.Unmarshal(in.Payload, &list); err != nil {
				s.reply(in.ID, FrameError, errorBody("invalid "+in.Type+" payload"))
				return
			}
		}

		if in.Type == FrameSubscribe {
			s.setChannels(list.Channels, true)
			s.reply(in.ID, FrameResponse, map[string][]string{"subscribed": list.Channels})
			s.replay(list.Channels)
		} else {
			s.setChannels(list.Channels, false)
			s.reply(in.ID, FrameResponse, map[string][]string{"unsubscribed": list.Channels})
		}
		s.hub.logger.Debug("websocket subscriptions changed", "type", in.Type, "channels", list.Channels)

	case FramePing:
		s.reply(in.ID, FramePong, nil)

	default:
		s.reply(in.ID, FrameError, errorBody("unknown message type: "+in.Type))
	}
}

// replay queues the retained event of each channel, after the subscribe response.
func (s *subscriber) replay(channels []string) {
	for _, ch := range channels {
		if data, ok := s.hub.retainedEvent(ch); ok {
			s.enqueue(data)
		}
	}
}

func (s *subscriber) reply(id, frameType string, payload any) {
	data, err := encodeFrame(Frame{Type: frameType, ID: id, Payload: payload})
	if err != nil {
		return
	}
	s.enqueue(data)
}
