package net

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"PencilBoard/internal/board"
	"PencilBoard/internal/document"
)

// Server accepts WebSocket clients and gives each one its own session.
type Server struct {
	// Defaults configure surfaces inserted by clients.
	Defaults document.Config
	// Seed, when set, fills every new session's document, e.g. from a
	// saved file.
	Seed    func(*document.Store) error
	Options []board.Option

	upgrader websocket.Upgrader
	sessions map[*websocket.Conn]*Session
	mu       sync.RWMutex
}

// NewServer creates a server with the given surface defaults.
func NewServer(defaults document.Config, opts ...board.Option) *Server {
	return &Server{
		Defaults: defaults,
		Options:  opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sessions: make(map[*websocket.Conn]*Session),
	}
}

func (s *Server) add(conn *websocket.Conn, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[conn] = sess
	log.Printf("Client connected from %s", conn.RemoteAddr().String())
}

func (s *Server) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conn)
	log.Printf("Client %s removed", conn.RemoteAddr().String())
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ServeHTTP upgrades the request and serves the client until it leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	sess := NewSession(s.Defaults, s.Options...)
	if s.Seed != nil {
		if err := s.Seed(sess.Store); err != nil {
			log.Printf("Could not load the document for %s: %v", r.RemoteAddr, err)
		}
	}
	s.add(conn, sess)
	defer s.remove(conn)
	defer sess.Close()

	if err := writeAll(conn, sess.Welcome()); err != nil {
		log.Printf("Client %s disconnected: %v", conn.RemoteAddr().String(), err)
		return
	}
	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("Client %s disconnected: %v", conn.RemoteAddr().String(), err)
			}
			return
		}
		if err := writeAll(conn, sess.Handle(msg)); err != nil {
			log.Printf("Error sending to %s: %v", conn.RemoteAddr().String(), err)
			return
		}
	}
}

func writeAll(conn *websocket.Conn, msgs []ServerMessage) error {
	for _, m := range msgs {
		if err := conn.WriteJSON(m); err != nil {
			return err
		}
	}
	return nil
}

// ListenAndServe serves clients on /ws at addr.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	log.Printf("WebSocket server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}
