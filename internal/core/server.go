package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/ircwire-server/internal/metrics"
)

// Version string reported in the welcome sequence.
const Version = "ircwire-0.1"

// Server is the protocol core: it owns the session registry and the
// channel directory and serializes every mutation behind one mutex, so
// handlers always run to completion unobserved. Transports deliver one
// trimmed, non-empty line at a time and call Disconnect exactly once when
// a connection closes or errors.
type Server struct {
	mu sync.Mutex

	fmt      Formatter
	sessions *Registry
	channels *Directory
	started  time.Time

	log *zerolog.Logger
}

// New constructs the core with empty registries.
func New(serverName string, logger *zerolog.Logger) *Server {
	f := Formatter{Server: serverName}
	return &Server{
		fmt:      f,
		sessions: NewRegistry(),
		channels: NewDirectory(f),
		started:  time.Now(),
		log:      logger,
	}
}

// Connect registers a new unregistered client for an accepted connection.
func (s *Server) Connect(id string, sink Sink, hostname string) *Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := NewClient(id, sink, hostname)
	s.sessions.Add(c)
	metrics.OpenConnections.Inc()

	s.log.Info().Str("conn_id", id).Str("host", hostname).Msg("client connected")
	return c
}

// HandleLine parses and dispatches one inbound line. It reports true when
// the connection must be closed (the client issued QUIT); the transport
// must then not call Disconnect, since cleanup already ran.
func (s *Server) HandleLine(c *Client, line string) (closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sessions.Has(c) {
		return true
	}

	msg := ParseMessage(line)
	if msg.Verb == "" {
		return false
	}

	return s.dispatch(c, msg)
}

// Disconnect runs the cleanup path for a closed or failed connection:
// quit notices to shared channels, detachment, registry removal.
func (s *Server) Disconnect(c *Client, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sessions.Has(c) {
		return
	}
	s.cleanup(c, reason)
}

func (s *Server) cleanup(c *Client, reason string) {
	s.channels.DetachAll(c, reason)
	s.sessions.Remove(c)
	if c.Registered {
		metrics.RegisteredClients.Dec()
	}
	metrics.OpenConnections.Dec()

	s.log.Info().Str("conn_id", c.ID).Str("nick", c.Nick).Str("reason", reason).Msg("client disconnected")
}
