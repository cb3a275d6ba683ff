package core

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// fakeSink records lines the core writes to one client.
type fakeSink struct {
	lines    []string
	writable bool
}

func newFakeSink() *fakeSink {
	return &fakeSink{writable: true}
}

func (s *fakeSink) TrySend(line string) bool {
	if !s.writable {
		return false
	}
	s.lines = append(s.lines, line)
	return true
}

// drain returns and clears everything sent so far.
func (s *fakeSink) drain() []string {
	out := s.lines
	s.lines = nil
	return out
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zerolog.Nop()
	return New("irc.test", &logger)
}

func connectClient(t *testing.T, s *Server, id string) (*Client, *fakeSink) {
	t.Helper()
	sink := newFakeSink()
	c := s.Connect(id, sink, id+".host")
	return c, sink
}

// registerClient completes NICK/USER registration and drains the welcome lines.
func registerClient(t *testing.T, s *Server, c *Client, sink *fakeSink, nick string) {
	t.Helper()
	s.HandleLine(c, "NICK "+nick)
	s.HandleLine(c, "USER "+nick+" 0 * :"+nick)
	welcome := sink.drain()
	if len(welcome) != 4 {
		t.Fatalf("expected 4 welcome lines for %s, got %d: %v", nick, len(welcome), welcome)
	}
}

// lineWithCode returns the first line carrying the numeric code, or "".
func lineWithCode(lines []string, code string) string {
	for _, l := range lines {
		if strings.Contains(l, " "+code+" ") {
			return l
		}
	}
	return ""
}
