package core

// Channel groups clients joined to the same sigil-prefixed name.
type Channel struct {
	Name  string
	Topic string

	// members keeps insertion order; the order is not a protocol contract.
	members []*Client
}

// NewChannel constructs a channel with no members.
func NewChannel(name string) *Channel {
	return &Channel{Name: name}
}

// Has reports whether the client is a member.
func (ch *Channel) Has(c *Client) bool {
	for _, m := range ch.members {
		if m == c {
			return true
		}
	}
	return false
}

// Members returns the membership in insertion order.
func (ch *Channel) Members() []*Client {
	return ch.members
}

// Names returns the member nicknames in insertion order.
func (ch *Channel) Names() []string {
	names := make([]string, 0, len(ch.members))
	for _, m := range ch.members {
		names = append(names, m.Nick)
	}
	return names
}

// Empty reports whether the channel has no members left.
func (ch *Channel) Empty() bool {
	return len(ch.members) == 0
}

// Broadcast writes line to every member's sink, except exclude when
// non-nil. Unwritable sinks are skipped silently.
func (ch *Channel) Broadcast(line string, exclude *Client) {
	for _, m := range ch.members {
		if m == exclude {
			continue
		}
		m.send(line)
	}
}

func (ch *Channel) add(c *Client) {
	ch.members = append(ch.members, c)
}

func (ch *Channel) remove(c *Client) {
	for i, m := range ch.members {
		if m == c {
			ch.members = append(ch.members[:i], ch.members[i+1:]...)
			return
		}
	}
}
