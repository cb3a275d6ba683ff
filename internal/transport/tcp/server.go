package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/ircwire-server/internal/core"
)

// Server accepts raw TCP connections and feeds CRLF-framed lines into the
// core, one connection goroutine per client.
type Server struct {
	addr string
	core *core.Server
	log  *zerolog.Logger
	ln   net.Listener
}

// NewServer builds the TCP transport for the given listen address.
func NewServer(addr string, c *core.Server, logger *zerolog.Logger) *Server {
	return &Server{addr: addr, core: c, log: logger}
}

// Listen binds the listening socket.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.ln = ln
	return nil
}

// Addr returns the bound address; valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until the context is cancelled or the
// listener fails. A failed connection never takes down the accept loop.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		nc, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handle(nc)
	}
}

func (s *Server) handle(nc net.Conn) {
	id := uuid.NewString()
	cn := newConn(id, nc, s.log)
	go cn.writePump()

	client := s.core.Connect(id, cn, remoteHost(nc))
	defer cn.close()

	reader := bufio.NewReader(nc)
	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			s.core.Disconnect(client, "connection closed")
			return
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if s.core.HandleLine(client, line) {
			return
		}
	}
}

// remoteHost derives the client hostname from the peer address.
func remoteHost(nc net.Conn) string {
	host, _, err := net.SplitHostPort(nc.RemoteAddr().String())
	if err != nil {
		return nc.RemoteAddr().String()
	}
	return host
}
