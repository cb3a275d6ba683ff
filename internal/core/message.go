package core

import "strings"

// Message is one parsed protocol line from a client.
type Message struct {
	Verb        string // upper-cased command token
	Params      []string
	Trailing    string // final argument with the ":" marker stripped
	HasTrailing bool
}

// ParseMessage splits a trimmed, non-empty line into verb, positional
// parameters and an optional trailing argument. The trailing argument
// starts at the first " :" and may contain spaces.
func ParseMessage(line string) Message {
	var msg Message

	if strings.HasPrefix(line, ":") {
		// Client-supplied prefixes are ignored; the server knows who sent it.
		idx := strings.Index(line, " ")
		if idx < 0 {
			return msg
		}
		line = strings.TrimLeft(line[idx+1:], " ")
	}

	if idx := strings.Index(line, " :"); idx >= 0 {
		msg.Trailing = line[idx+2:]
		msg.HasTrailing = true
		line = line[:idx]
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return msg
	}

	msg.Verb = strings.ToUpper(fields[0])
	msg.Params = fields[1:]
	return msg
}

// Param returns the i-th positional parameter or "".
func (m Message) Param(i int) string {
	if i < len(m.Params) {
		return m.Params[i]
	}
	return ""
}

// NArgs counts positional parameters plus the trailing argument.
func (m Message) NArgs() int {
	n := len(m.Params)
	if m.HasTrailing {
		n++
	}
	return n
}

// Text returns the free-text argument: the trailing argument when present,
// otherwise the positional parameter at index i.
func (m Message) Text(i int) string {
	if m.HasTrailing {
		return m.Trailing
	}
	return m.Param(i)
}
