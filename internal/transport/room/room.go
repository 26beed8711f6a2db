package room

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voxelinteract.ai/internal/protocol"
)

const fullMessage = "Server full. Try again later."

type Config struct {
	MaxClients   int
	PingInterval time.Duration

	// Sent to every client in INIT.
	WorldID    string
	TickRateHz int
	Catalogs   protocol.CatalogDigests
	Highlight  *protocol.HighlightStyleMsg
}

// Room is a websocket hub: it assigns client ids, announces joins and
// leaves, relays SIGNAL messages between peers and fans out broadcasts.
type Room struct {
	cfg Config
	log *log.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

type client struct {
	id    string
	conn  *websocket.Conn
	out   chan []byte
	alive atomic.Bool
}

func New(cfg Config, logger *log.Logger) *Room {
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = 64
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 15 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Room{
		cfg: cfg,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: map[string]*client{},
	}
}

func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Peers returns the connected client ids in sorted order.
func (r *Room) Peers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.peersLocked("")
}

func (r *Room) peersLocked(except string) []string {
	out := make([]string, 0, len(r.clients))
	for id := range r.clients {
		if id != except {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Room) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		conn, err := r.upgrader.Upgrade(rw, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c, ok := r.join(conn)
		if !ok {
			_ = writeJSON(conn, protocol.ErrorMsg{Type: protocol.TypeError, Code: protocol.ErrRoomFull, Message: fullMessage})
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "room full"), time.Now().Add(time.Second))
			return
		}
		defer r.leave(c)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go r.writeLoop(ctx, c)

		readTimeout := 3 * r.cfg.PingInterval
		conn.SetPongHandler(func(string) error {
			c.alive.Store(true)
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			r.handleMessage(c, msg)
		}
	}
}

// join registers a new client and queues its INIT ahead of any broadcast.
func (r *Room) join(conn *websocket.Conn) (*client, bool) {
	r.mu.Lock()
	if len(r.clients) >= r.cfg.MaxClients {
		r.mu.Unlock()
		return nil, false
	}
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		out:  make(chan []byte, 64),
	}
	c.alive.Store(true)
	peers := r.peersLocked("")
	initMsg, err := json.Marshal(protocol.InitMsg{
		Type:            protocol.TypeInit,
		ProtocolVersion: protocol.Version,
		ID:              c.id,
		Peers:           peers,
		WorldID:         r.cfg.WorldID,
		TickRateHz:      r.cfg.TickRateHz,
		Catalogs:        r.cfg.Catalogs,
		Highlight:       r.cfg.Highlight,
	})
	if err != nil {
		r.mu.Unlock()
		return nil, false
	}
	c.out <- initMsg
	r.clients[c.id] = c
	r.mu.Unlock()

	r.broadcastExcept(c.id, protocol.PeerMsg{Type: protocol.TypeJoin, ID: c.id})
	r.log.Printf("join %s (%d connected)", c.id, len(peers)+1)
	return c, true
}

func (r *Room) leave(c *client) {
	r.mu.Lock()
	delete(r.clients, c.id)
	n := len(r.clients)
	r.mu.Unlock()
	r.broadcastExcept(c.id, protocol.PeerMsg{Type: protocol.TypeLeave, ID: c.id})
	r.log.Printf("leave %s (%d connected)", c.id, n)
}

func (r *Room) writeLoop(ctx context.Context, c *client) {
	ping := time.NewTicker(r.cfg.PingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-ping.C:
			// A client that did not answer the previous ping is dropped.
			if !c.alive.Swap(false) {
				r.log.Printf("terminate %s: no pong", c.id)
				_ = c.conn.Close()
				return
			}
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}

func (r *Room) handleMessage(c *client, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		r.sendTo(c, protocol.ErrorMsg{Type: protocol.TypeError, Code: protocol.ErrProtoBadRequest, Message: "invalid json"})
		return
	}
	switch base.Type {
	case protocol.TypeSignal:
		var in protocol.SignalMsg
		if err := json.Unmarshal(msg, &in); err != nil || in.ID == "" {
			r.sendTo(c, protocol.ErrorMsg{Type: protocol.TypeError, Code: protocol.ErrProtoBadRequest, Message: "bad SIGNAL"})
			return
		}
		r.mu.RLock()
		peer := r.clients[in.ID]
		r.mu.RUnlock()
		if peer == nil {
			r.sendTo(c, protocol.ErrorMsg{Type: protocol.TypeError, Code: protocol.ErrUnknownPeer, Message: "unknown peer " + in.ID})
			return
		}
		r.sendTo(peer, protocol.SignalMsg{Type: protocol.TypeSignal, ID: c.id, Signal: in.Signal})
	default:
		r.sendTo(c, protocol.ErrorMsg{Type: protocol.TypeError, Code: protocol.ErrProtoBadRequest, Message: "unsupported type " + base.Type})
	}
}

// Broadcast sends v to every connected client.
func (r *Room) Broadcast(v any) {
	r.broadcastExcept("", v)
}

func (r *Room) broadcastExcept(except string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, c := range r.clients {
		if id != except {
			sendLatest(c.out, b)
		}
	}
}

func (r *Room) sendTo(c *client, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	sendLatest(c.out, b)
}

// Close disconnects every client.
func (r *Room) Close() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		_ = c.conn.Close()
	}
}

// sendLatest never blocks: when the queue is full the oldest message is dropped.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
