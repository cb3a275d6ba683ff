package web

import (
	"context"
	"net"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/ircwire-server/internal/core"
)

const wsOutboundBuffer = 100

// WSHandler upgrades HTTP connections and bridges them to the core: one
// inbound text frame is one protocol line, one outbound line is one frame.
type WSHandler struct {
	core *core.Server
	log  *zerolog.Logger
}

// NewWSHandler builds the WebSocket bridge handler.
func NewWSHandler(c *core.Server, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{core: c, log: logger}
}

// wsSink adapts the outbound side of a WebSocket connection to core.Sink.
type wsSink struct {
	out chan string
}

func (s *wsSink) TrySend(line string) bool {
	select {
	case s.out <- line:
		return true
	default:
		return false
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sink := &wsSink{out: make(chan string, wsOutboundBuffer)}
	client := h.core.Connect(uuid.NewString(), sink, remoteHost(r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sink)
	}()

	err = <-errCh
	cancel()
	<-errCh

	// Idempotent: a no-op when the client already quit via the core.
	h.core.Disconnect(client, "connection closed")

	if err != nil && websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
		h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
	}
	conn.Close(websocket.StatusNormalClosure, "closing")
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		line := strings.TrimSpace(string(data))
		if line == "" {
			continue
		}
		if h.core.HandleLine(client, line) {
			return nil
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sink *wsSink) error {
	for {
		select {
		case line := <-sink.out:
			if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
