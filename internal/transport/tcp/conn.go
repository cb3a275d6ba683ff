package tcp

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	outboundBuffer = 100
	writeTimeout   = 10 * time.Second
)

// conn wraps one accepted socket and implements core.Sink. Outbound lines
// go through a buffered channel drained by a writer pump; a full buffer
// means the slow peer loses the line.
type conn struct {
	id   string
	nc   net.Conn
	out  chan string
	quit chan struct{}
	once sync.Once

	log *zerolog.Logger
}

func newConn(id string, nc net.Conn, logger *zerolog.Logger) *conn {
	return &conn{
		id:   id,
		nc:   nc,
		out:  make(chan string, outboundBuffer),
		quit: make(chan struct{}),
		log:  logger,
	}
}

// TrySend queues one line without blocking.
func (c *conn) TrySend(line string) bool {
	select {
	case c.out <- line:
		return true
	default:
		return false
	}
}

// close signals the writer pump to drain and release the socket.
func (c *conn) close() {
	c.once.Do(func() {
		close(c.quit)
	})
}

// writePump serializes socket writes. On close it drains lines already
// queued (the QUIT error reply among them) before releasing the socket.
func (c *conn) writePump() {
	defer c.nc.Close()

	for {
		select {
		case line := <-c.out:
			if !c.write(line) {
				return
			}
		case <-c.quit:
			for {
				select {
				case line := <-c.out:
					if !c.write(line) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (c *conn) write(line string) bool {
	if err := c.nc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return false
	}
	if _, err := fmt.Fprintf(c.nc, "%s\r\n", line); err != nil {
		c.log.Warn().Err(err).Str("conn_id", c.id).Msg("socket write failed")
		return false
	}
	return true
}
