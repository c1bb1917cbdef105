package inspect

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	eventbus "github.com/jilio/ebu"
)

const sendBuffer = 256

// hub fans recorded events out to live websocket clients. It subscribes to
// the recorder's bus exactly once and never unsubscribes; per-client
// delivery runs over buffered channels, and a client that cannot keep up is
// dropped rather than allowed to block the graph's goroutine.
type hub struct {
	session  string
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*liveConn
}

type liveConn struct {
	id   string
	ws   *websocket.Conn
	send chan Event
}

func newHub(rec *Recorder) *hub {
	h := &hub{
		session: rec.Session(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[string]*liveConn),
	}
	eventbus.Subscribe(rec.Bus(), h.broadcast)
	return h
}

// broadcast runs inline on the publisher's goroutine; it must never block.
func (h *hub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.conns {
		select {
		case c.send <- ev:
		default:
			delete(h.conns, id)
			close(c.send)
		}
	}
}

// handleLive upgrades the request and streams events until the client goes
// away. The first frame is a hello carrying the session and client ids.
func (h *hub) handleLive(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &liveConn{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan Event, sendBuffer),
	}

	// Register before the hello: events published once the client has read
	// the hello must not be droppable, and the hello still goes out first
	// because writeLoop only starts after it.
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()

	if err := ws.WriteJSON(map[string]string{"session": h.session, "client": c.id}); err != nil {
		h.drop(c.id)
		ws.Close()
		return
	}

	go c.writeLoop()
	c.readLoop(h)
}

func (c *liveConn) writeLoop() {
	defer c.ws.Close()
	for ev := range c.send {
		if err := c.ws.WriteJSON(ev); err != nil {
			return
		}
	}
}

// readLoop blocks until the peer closes or errors, then unregisters.
func (c *liveConn) readLoop(h *hub) {
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(c.id)
}

func (h *hub) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.conns[id]; ok {
		delete(h.conns, id)
		close(c.send)
	}
}

// closeAll disconnects every live client.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.conns {
		delete(h.conns, id)
		close(c.send)
	}
}
