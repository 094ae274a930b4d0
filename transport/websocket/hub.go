package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/towerdefense/game/engine"
)

const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second

	// pingEvery must stay below idleTimeout so pongs keep the read deadline moving
	pingEvery = idleTimeout * 9 / 10

	// Viewers never send anything meaningful; a close frame fits easily
	maxInboundFrame = 512

	// Queued updates across all sessions before state updates are shed
	updateQueue = 256

	// Frames a single viewer may lag behind before it is disconnected
	viewerQueue = 256
)

const (
	EventStateUpdate = "state_update"
	EventAdvice      = "advice"
	EventGameOver    = "game_over"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Renderers are served from other origins (desktop viewer, file://)
		return true
	},
}

// Message is one JSON frame pushed to the renderers of a session. State is set
// for state updates, Data for the other events.
type Message struct {
	SessionID string            `json:"session_id"`
	State     *engine.StateView `json:"state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// viewer is a renderer connected to one session
type viewer struct {
	hub       *Hub
	conn      *websocket.Conn
	out       chan []byte
	sessionID string
}

// Hub fans session updates out to connected renderers. It implements
// service.Notifier. The viewers map is owned by the Run goroutine.
type Hub struct {
	viewers map[string]map[*viewer]struct{}
	updates chan *Message
	joins   chan *viewer
	leaves  chan *viewer
	done    chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		viewers: make(map[string]map[*viewer]struct{}),
		updates: make(chan *Message, updateQueue),
		joins:   make(chan *viewer),
		leaves:  make(chan *viewer),
		done:    make(chan struct{}),
	}
}

// Run dispatches joins, leaves and updates until ctx is done, then disconnects
// every viewer.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case v := <-h.joins:
			h.join(v)
		case v := <-h.leaves:
			h.leave(v)
		case message := <-h.updates:
			h.fanOut(message)
		case <-ctx.Done():
			for _, viewers := range h.viewers {
				for v := range viewers {
					h.leave(v)
				}
			}
			return
		}
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	v := &viewer{
		hub:       h,
		conn:      conn,
		out:       make(chan []byte, viewerQueue),
		sessionID: sessionID,
	}
	select {
	case h.joins <- v:
	case <-h.done:
		conn.Close()
		return
	}

	go v.deliver()
	go v.listen()
}

// BroadcastState queues a state update for a session. When the queue is full
// the update is dropped; the next tick's update supersedes it.
func (h *Hub) BroadcastState(sessionID string, view engine.StateView) {
	select {
	case h.updates <- &Message{SessionID: sessionID, State: &view, Event: EventStateUpdate}:
	default:
		log.Printf("Dropping state update for session %s: hub busy", sessionID)
	}
}

// BroadcastEvent queues an advice or game-over event. Events are rare and
// must not be lost, so this blocks until the hub accepts it or stops.
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	select {
	case h.updates <- &Message{SessionID: sessionID, Event: event, Data: data}:
	case <-h.done:
	}
}

func (h *Hub) join(v *viewer) {
	if h.viewers[v.sessionID] == nil {
		h.viewers[v.sessionID] = make(map[*viewer]struct{})
	}
	h.viewers[v.sessionID][v] = struct{}{}
	log.Printf("Renderer joined session %s (%d watching)", v.sessionID, len(h.viewers[v.sessionID]))
}

// leave detaches v and closes its outbound queue, which ends deliver
func (h *Hub) leave(v *viewer) {
	viewers := h.viewers[v.sessionID]
	if _, ok := viewers[v]; !ok {
		return
	}
	delete(viewers, v)
	close(v.out)
	if len(viewers) == 0 {
		delete(h.viewers, v.sessionID)
	}
	log.Printf("Renderer left session %s (%d watching)", v.sessionID, len(viewers))
}

// fanOut encodes message once and hands it to every viewer of its session.
// A viewer whose queue is full is disconnected.
func (h *Hub) fanOut(message *Message) {
	viewers := h.viewers[message.SessionID]
	if len(viewers) == 0 {
		return
	}

	frame, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to encode %s for session %s: %v", message.Event, message.SessionID, err)
		return
	}

	for v := range viewers {
		select {
		case v.out <- frame:
		default:
			log.Printf("Renderer of session %s is lagging, disconnecting", message.SessionID)
			h.leave(v)
		}
	}
}

// listen drains inbound frames so pongs and close frames are processed.
// The connection is push only; payloads are ignored.
func (v *viewer) listen() {
	defer func() {
		select {
		case v.hub.leaves <- v:
		case <-v.hub.done:
		}
		v.conn.Close()
	}()

	v.conn.SetReadLimit(maxInboundFrame)
	v.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Renderer of session %s: %v", v.sessionID, err)
			}
			return
		}
	}
}

// deliver writes queued frames, newline separated when several are waiting,
// and pings on an interval. It returns when the hub closes the queue or a
// write fails.
func (v *viewer) deliver() {
	ping := time.NewTicker(pingEvery)
	defer func() {
		ping.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-v.out:
			v.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.writeBatch(frame); err != nil {
				return
			}

		case <-ping.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (v *viewer) writeBatch(first []byte) error {
	w, err := v.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	w.Write(first)
	for pending := len(v.out); pending > 0; pending-- {
		frame, ok := <-v.out
		if !ok {
			break
		}
		w.Write([]byte{'\n'})
		w.Write(frame)
	}
	return w.Close()
}
