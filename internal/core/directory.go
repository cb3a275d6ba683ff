package core

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/ircwire-server/internal/metrics"
)

// ChannelSigil marks a target token as a channel name.
const ChannelSigil = "#"

// Directory owns the name-to-channel mapping. It is the only component
// allowed to mutate either side of the client/channel membership relation.
type Directory struct {
	channels map[string]*Channel
	fmt      Formatter
}

// NewDirectory constructs an empty channel directory.
func NewDirectory(f Formatter) *Directory {
	return &Directory{
		channels: make(map[string]*Channel),
		fmt:      f,
	}
}

// Get returns the channel by name, or nil.
func (d *Directory) Get(name string) *Channel {
	return d.channels[name]
}

// Channels returns every live channel.
func (d *Directory) Channels() []*Channel {
	out := make([]*Channel, 0, len(d.channels))
	for _, ch := range d.channels {
		out = append(out, ch)
	}
	return out
}

// Len is the number of live channels.
func (d *Directory) Len() int {
	return len(d.channels)
}

// Join adds the client to the named channel, creating it on first
// reference. The joining client receives the join echo, the topic when one
// is set, the membership list and its terminator; the remaining members
// receive the join broadcast.
func (d *Directory) Join(c *Client, name string) {
	if !strings.HasPrefix(name, ChannelSigil) {
		c.send(d.fmt.Numeric(ErrNoSuchChannel, c.Nick, name+" :No such channel"))
		return
	}

	ch := d.channels[name]
	if ch == nil {
		ch = NewChannel(name)
		d.channels[name] = ch
		metrics.LiveChannels.Inc()
	} else if ch.Has(c) {
		return
	}

	ch.add(c)
	c.channels[name] = struct{}{}

	// Broadcast reaches every member including the joiner, which doubles
	// as the join echo.
	ch.Broadcast(d.fmt.Prefixed(c.Prefix(), "JOIN "+name), nil)

	if ch.Topic != "" {
		c.send(d.fmt.Numeric(RplTopic, c.Nick, fmt.Sprintf("%s :%s", name, ch.Topic)))
	}
	c.send(d.fmt.Numeric(RplNamReply, c.Nick, fmt.Sprintf("= %s :%s", name, strings.Join(ch.Names(), " "))))
	c.send(d.fmt.Numeric(RplEndOfNames, c.Nick, name+" :End of /NAMES list"))
}

// Part removes the client from the named channel. The part notice is
// broadcast to the full membership, sender included, before detaching.
func (d *Directory) Part(c *Client, name, reason string) {
	ch := d.channels[name]
	if ch == nil {
		c.send(d.fmt.Numeric(ErrNoSuchChannel, c.Nick, name+" :No such channel"))
		return
	}
	if !ch.Has(c) {
		c.send(d.fmt.Numeric(ErrNotOnChannel, c.Nick, name+" :You're not on that channel"))
		return
	}

	notice := "PART " + name
	if reason != "" {
		notice += " :" + reason
	}
	ch.Broadcast(d.fmt.Prefixed(c.Prefix(), notice), nil)

	d.detach(c, ch)
}

// Topic answers a topic query for a member.
func (d *Directory) Topic(c *Client, name string) {
	ch, ok := d.member(c, name)
	if !ok {
		return
	}
	if ch.Topic == "" {
		c.send(d.fmt.Numeric(RplNoTopic, c.Nick, name+" :No topic is set"))
		return
	}
	c.send(d.fmt.Numeric(RplTopic, c.Nick, fmt.Sprintf("%s :%s", name, ch.Topic)))
}

// SetTopic replaces the topic and broadcasts it to the full membership.
func (d *Directory) SetTopic(c *Client, name, topic string) {
	ch, ok := d.member(c, name)
	if !ok {
		return
	}
	ch.Topic = topic
	ch.Broadcast(d.fmt.Prefixed(c.Prefix(), fmt.Sprintf("TOPIC %s :%s", name, topic)), nil)
}

// DetachAll removes the client from every channel it occupies, used on
// QUIT and disconnect. Remaining members get a quit notice; the leaving
// client does not.
func (d *Directory) DetachAll(c *Client, reason string) {
	notice := d.fmt.Prefixed(c.Prefix(), "QUIT :"+reason)
	for name := range c.channels {
		ch := d.channels[name]
		if ch == nil {
			continue
		}
		ch.Broadcast(notice, c)
		d.detach(c, ch)
	}
}

// member resolves a membership-gated channel reference, replying with the
// appropriate numeric when it fails.
func (d *Directory) member(c *Client, name string) (*Channel, bool) {
	ch := d.channels[name]
	if ch == nil {
		c.send(d.fmt.Numeric(ErrNoSuchChannel, c.Nick, name+" :No such channel"))
		return nil, false
	}
	if !ch.Has(c) {
		c.send(d.fmt.Numeric(ErrNotOnChannel, c.Nick, name+" :You're not on that channel"))
		return nil, false
	}
	return ch, true
}

// detach drops both sides of the membership relation and destroys the
// channel the instant it becomes empty.
func (d *Directory) detach(c *Client, ch *Channel) {
	ch.remove(c)
	delete(c.channels, ch.Name)
	if ch.Empty() {
		delete(d.channels, ch.Name)
		metrics.LiveChannels.Dec()
	}
}
