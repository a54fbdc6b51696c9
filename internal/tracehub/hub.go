// Package tracehub streams executed instructions to websocket clients.
package tracehub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cespare/xxhash"
	"github.com/gorilla/websocket"
	"github.com/thelolagemann/sm83core/internal/cpu"
	"github.com/thelolagemann/sm83core/pkg/log"
)

const (
	// sendBuffer is the number of frames queued per client before the
	// client is considered too slow and dropped.
	sendBuffer = 256

	writeWait = 5 * time.Second
)

// Frame is the JSON encoding of a single trace.
type Frame struct {
	PC          uint16 `json:"pc"`
	Opcode      uint8  `json:"opcode"`
	Operand     uint16 `json:"operand"`
	Length      uint8  `json:"length"`
	Bytes       string `json:"bytes"`
	Disassembly string `json:"disassembly"`
	Cycles      uint8  `json:"cycles"`
	// Repeat counts how many times in a row the same trace was
	// published before this one, e.g. by a loop jumping to itself.
	Repeat uint64 `json:"repeat"`
}

// NewFrame converts t to a Frame.
func NewFrame(t cpu.Trace) Frame {
	return Frame{
		PC:          t.PC,
		Opcode:      t.Opcode,
		Operand:     t.Operand,
		Length:      t.Length,
		Bytes:       cpu.Operands{Bytes: t.Bytes}.String(),
		Disassembly: t.Disassembly,
		Cycles:      t.Cycles,
	}
}

// Hub is an http.Handler that upgrades every request to a websocket and
// broadcasts published traces to all of them.
type Hub struct {
	clients map[*client]bool

	broadcast            chan []byte
	register, unregister chan *client
	count                chan chan int

	done      chan struct{}
	closeOnce sync.Once

	// last published trace, consecutive duplicates are counted
	mu       sync.Mutex
	lastHash uint64
	hasLast  bool
	repeat   uint64

	Log log.Logger
}

// New returns a running Hub.
func New(logger log.Logger) *Hub {
	if logger == nil {
		logger = log.NewNullLogger()
	}
	h := &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		Log:        logger,
	}
	go h.run()

	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.Log.Infof("trace client connected: %s", c.remoteAddr)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				close(c.send)
				delete(h.clients, c)
				h.Log.Infof("trace client disconnected: %s", c.remoteAddr)
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.Log.Warnf("dropping slow trace client: %s", c.remoteAddr)
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// Publish broadcasts t to every connected client. A trace identical to
// the previous one is still sent, with its Repeat count raised.
func (h *Hub) Publish(t cpu.Trace) {
	frame := NewFrame(t)
	msg, err := json.Marshal(frame)
	if err != nil {
		h.Log.Errorf("encoding trace: %v", err)
		return
	}

	hash := xxhash.Sum64(msg)
	h.mu.Lock()
	if h.hasLast && hash == h.lastHash {
		h.repeat++
	} else {
		h.repeat = 0
	}
	h.lastHash, h.hasLast = hash, true
	frame.Repeat = h.repeat
	h.mu.Unlock()

	if frame.Repeat > 0 {
		if msg, err = json.Marshal(frame); err != nil {
			h.Log.Errorf("encoding trace: %v", err)
			return
		}
	}

	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Close disconnects every client and stops the hub.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// upgrade the connection to a websocket connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Errorf("upgrading trace client %s: %v", r.RemoteAddr, err)
		return
	}

	c := &client{
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		remoteAddr: r.RemoteAddr,
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	// spawn read/write pumps
	go c.readPump()
	go c.writePump()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Serve listens on addr and serves the hub until it fails.
func (h *Hub) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/", h)
	if err := http.ListenAndServe(addr, mux); err != nil {
		return fmt.Errorf("serving traces on %s: %w", addr, err)
	}
	return nil
}
