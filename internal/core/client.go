package core

import (
	"fmt"

	"github.com/vovakirdan/ircwire-server/internal/metrics"
)

// Sink is the write side of one client connection. TrySend must not block:
// it reports false when the line cannot be accepted right now, in which
// case the line is dropped for that recipient.
type Sink interface {
	TrySend(line string) bool
}

// Client is one connected, possibly registered user.
type Client struct {
	ID       string
	Nick     string
	Username string
	Realname string
	Hostname string

	Registered bool

	sink Sink

	// channels mirrors channel membership; mutated only by Directory.
	channels map[string]struct{}
}

// NewClient constructs an unregistered client bound to its output sink.
func NewClient(id string, sink Sink, hostname string) *Client {
	return &Client{
		ID:       id,
		Hostname: hostname,
		sink:     sink,
		channels: make(map[string]struct{}),
	}
}

// Prefix is the client's identity as used in broadcast line prefixes.
func (c *Client) Prefix() string {
	nick := c.Nick
	if nick == "" {
		nick = "*"
	}
	return fmt.Sprintf("%s!%s@%s", nick, c.Username, c.Hostname)
}

// ChannelNames lists the names of channels the client currently occupies.
func (c *Client) ChannelNames() []string {
	names := make([]string, 0, len(c.channels))
	for name := range c.channels {
		names = append(names, name)
	}
	return names
}

// On reports whether the client occupies the named channel.
func (c *Client) On(channel string) bool {
	_, ok := c.channels[channel]
	return ok
}

// send queues one line for the client, dropping it when the sink is not
// writable. There is no retry or delivery confirmation.
func (c *Client) send(line string) {
	if c.sink.TrySend(line) {
		metrics.LinesDelivered.Inc()
		return
	}
	metrics.LinesDropped.Inc()
}
