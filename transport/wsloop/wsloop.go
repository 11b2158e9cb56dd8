// Package wsloop is a reference Transport (spec §6) built on a WebSocket
// loopback hub: every packet a Node sends is rebroadcast by the Hub to
// every other connected Node. It exists for tests and the demo command,
// not as a real NDN face — grounded on the connection-handling shape of
// face/web-socket-transport.go, adapted here to drive Logic's callbacks
// from a single reader goroutine per spec §5's execution model.
package wsloop

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/apex/log"
	"github.com/gorilla/websocket"

	"github.com/nishsab/ndn-svs/transport"
)

// Hub accepts WebSocket connections on a single endpoint and rebroadcasts
// every binary message it receives to all other currently-connected
// peers. It has no notion of names or prefixes; filtering happens in Node.
type Hub struct {
	upgrader websocket.Upgrader
	server   *http.Server
	listener net.Listener

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub starts a Hub listening on addr ("127.0.0.1:0" for an ephemeral
// port). Call Addr to discover the bound port and Close to shut it down.
func NewHub(addr string) (*Hub, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]bool),
		listener: ln,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	h.server = &http.Server{Handler: mux}

	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("wsloop: hub serve exited")
		}
	}()

	return h, nil
}

// Addr returns the hub's bound TCP address.
func (h *Hub) Addr() net.Addr { return h.listener.Addr() }

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("wsloop: upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		h.broadcast(conn, data)
	}
}

func (h *Hub) broadcast(from *websocket.Conn, data []byte) {
	h.mu.Lock()
	peers := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		if c != from {
			peers = append(peers, c)
		}
	}
	h.mu.Unlock()

	for _, c := range peers {
		if err := c.WriteMessage(websocket.BinaryMessage, data); err != nil {
			log.WithError(err).Debug("wsloop: broadcast write failed")
		}
	}
}

// Close stops accepting connections and closes all active ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	for c := range h.clients {
		c.Close()
	}
	h.mu.Unlock()
	return h.server.Shutdown(context.Background())
}

type prefixReg struct {
	prefix         transport.Name
	onInterest     func(transport.Packet)
	onRegisterFail func(error)
	closed         bool
}

func (r *prefixReg) Close() error { r.closed = true; return nil }

// Node is a transport.Transport implementation that speaks to a Hub over
// a single WebSocket connection.
type Node struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	regMu sync.Mutex
	regs  []*prefixReg

	stopped chan struct{}
	once    sync.Once
}

// Dial connects to a Hub at wsURL (e.g. "ws://127.0.0.1:port/ws").
func Dial(wsURL string) (*Node, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, err
	}
	return &Node{
		conn:    conn,
		stopped: make(chan struct{}),
	}, nil
}

// RegisterPrefix implements transport.Transport.
func (n *Node) RegisterPrefix(prefix transport.Name, onInterest func(transport.Packet), onRegisterFail func(error)) (transport.RegisteredPrefix, error) {
	r := &prefixReg{prefix: prefix, onInterest: onInterest, onRegisterFail: onRegisterFail}
	n.regMu.Lock()
	n.regs = append(n.regs, r)
	n.regMu.Unlock()
	return r, nil
}

// ExpressInterest implements transport.Transport. wsloop never invokes
// onData/onNack/onTimeout: the hub only rebroadcasts, it never replies,
// matching the suppression variant's fire-and-forget sync interests.
func (n *Node) ExpressInterest(pkt transport.Packet, onData func(transport.Packet), onNack func(string), onTimeout func()) error {
	return n.write(pkt)
}

// Put implements transport.Transport for the ack-mode variant. package
// logic never calls this; it is provided so wsloop satisfies the
// interface for other Transport consumers.
func (n *Node) Put(pkt transport.Packet) error {
	return n.write(pkt)
}

func (n *Node) write(pkt transport.Packet) error {
	n.writeMu.Lock()
	defer n.writeMu.Unlock()
	return n.conn.WriteMessage(websocket.BinaryMessage, pkt.Encode())
}

// ProcessEvents implements transport.Transport: it blocks the calling
// goroutine reading frames off the WebSocket connection and dispatching
// them to every registered prefix whose Name is a prefix of the inbound
// packet's Name, until Shutdown closes the connection. All onInterest
// callbacks run on this goroutine, never concurrently with each other.
func (n *Node) ProcessEvents() error {
	for {
		kind, data, err := n.conn.ReadMessage()
		if err != nil {
			select {
			case <-n.stopped:
				return nil
			default:
				return err
			}
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		pkt, err := transport.DecodePacket(data)
		if err != nil {
			log.WithError(err).Debug("wsloop: dropping undecodable frame")
			continue
		}
		n.dispatch(pkt)
	}
}

func (n *Node) dispatch(pkt transport.Packet) {
	n.regMu.Lock()
	regs := make([]*prefixReg, len(n.regs))
	copy(regs, n.regs)
	n.regMu.Unlock()

	for _, r := range regs {
		if !r.closed && pkt.Name.HasPrefix(r.prefix) && r.onInterest != nil {
			r.onInterest(pkt)
		}
	}
}

// Shutdown implements transport.Transport.
func (n *Node) Shutdown() {
	n.once.Do(func() {
		close(n.stopped)
		n.conn.Close()
	})
}
