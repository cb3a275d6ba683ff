package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/ircwire-server/internal/metrics"
)

// dispatch routes one parsed message to its handler. Only QUIT closes the
// connection; everything else, including unknown verbs, leaves it open.
func (s *Server) dispatch(c *Client, msg Message) bool {
	switch msg.Verb {
	case "NICK", "USER", "JOIN", "PART", "PRIVMSG", "PING", "QUIT",
		"WHO", "WHOIS", "LIST", "TOPIC", "MODE":
		metrics.CommandsTotal.WithLabelValues(msg.Verb).Inc()
	default:
		// Arbitrary verbs would blow up label cardinality.
		metrics.CommandsTotal.WithLabelValues("unknown").Inc()
	}

	switch msg.Verb {
	case "NICK":
		s.handleNick(c, msg)
	case "USER":
		s.handleUser(c, msg)
	case "JOIN":
		s.handleJoin(c, msg)
	case "PART":
		s.handlePart(c, msg)
	case "PRIVMSG":
		s.handlePrivmsg(c, msg)
	case "PING":
		s.handlePing(c, msg)
	case "QUIT":
		return s.handleQuit(c, msg)
	case "WHO":
		s.handleWho(c, msg)
	case "WHOIS":
		s.handleWhois(c, msg)
	case "LIST":
		s.handleList(c, msg)
	case "TOPIC":
		s.handleTopic(c, msg)
	case "MODE":
		s.handleMode(c, msg)
	default:
		c.send(s.fmt.Numeric(ErrUnknownCommand, c.Nick, msg.Verb+" :Unknown command"))
	}
	return false
}

// requireRegistered gates a handler on completed registration.
func (s *Server) requireRegistered(c *Client) bool {
	if c.Registered {
		return true
	}
	c.send(s.fmt.Numeric(ErrNotRegistered, c.Nick, ":You have not registered"))
	return false
}

// needArgs gates a handler on a minimum argument count.
func (s *Server) needArgs(c *Client, msg Message, n int) bool {
	if msg.NArgs() >= n {
		return true
	}
	c.send(s.fmt.Numeric(ErrNeedMoreParams, c.Nick, msg.Verb+" :Not enough parameters"))
	return false
}

func (s *Server) handleNick(c *Client, msg Message) {
	nick := msg.Param(0)
	if nick == "" {
		nick = msg.Trailing
	}
	if nick == "" {
		c.send(s.fmt.Numeric(ErrNoNicknameGiven, c.Nick, ":No nickname given"))
		return
	}

	if other := s.sessions.FindByNick(nick); other != nil {
		if other != c {
			// Requester's nick and registration state stay untouched.
			c.send(s.fmt.Numeric(ErrNicknameInUse, c.Nick, nick+" :Nickname is already in use"))
		}
		return
	}

	oldPrefix := c.Prefix()
	wasRegistered := c.Registered
	c.Nick = nick

	if !wasRegistered {
		s.tryRegister(c)
		return
	}

	s.log.Info().Str("conn_id", c.ID).Str("nick", nick).Msg("nick changed")
	notice := s.fmt.Prefixed(oldPrefix, "NICK :"+nick)
	c.send(notice)
	for _, name := range c.ChannelNames() {
		if ch := s.channels.Get(name); ch != nil {
			ch.Broadcast(notice, c)
		}
	}
}

func (s *Server) handleUser(c *Client, msg Message) {
	if !s.needArgs(c, msg, 4) {
		return
	}
	c.Username = msg.Param(0)
	c.Realname = msg.Text(3)
	s.tryRegister(c)
}

// tryRegister promotes the client the moment nickname and username are
// both present. Promotion happens exactly once; later NICK/USER commands
// update fields without re-sending the welcome sequence.
func (s *Server) tryRegister(c *Client) {
	if c.Registered || c.Nick == "" || c.Username == "" {
		return
	}
	c.Registered = true
	metrics.RegisteredClients.Inc()

	c.send(s.fmt.Numeric(RplWelcome, c.Nick, ":Welcome to the Internet Relay Network "+c.Prefix()))
	c.send(s.fmt.Numeric(RplYourHost, c.Nick, fmt.Sprintf(":Your host is %s, running version %s", s.fmt.Server, Version)))
	c.send(s.fmt.Numeric(RplCreated, c.Nick, ":This server was created "+s.started.Format(time.RFC1123)))
	c.send(s.fmt.Numeric(RplMyInfo, c.Nick, fmt.Sprintf("%s %s o o", s.fmt.Server, Version)))

	s.log.Info().Str("conn_id", c.ID).Str("nick", c.Nick).Str("user", c.Username).Msg("client registered")
}

func (s *Server) handleJoin(c *Client, msg Message) {
	if !s.requireRegistered(c) || !s.needArgs(c, msg, 1) {
		return
	}
	s.channels.Join(c, msg.Param(0))
}

func (s *Server) handlePart(c *Client, msg Message) {
	if !s.requireRegistered(c) || !s.needArgs(c, msg, 1) {
		return
	}
	s.channels.Part(c, msg.Param(0), msg.Trailing)
}

func (s *Server) handlePrivmsg(c *Client, msg Message) {
	if !s.requireRegistered(c) || !s.needArgs(c, msg, 2) {
		return
	}
	target := msg.Param(0)
	line := s.fmt.Prefixed(c.Prefix(), fmt.Sprintf("PRIVMSG %s :%s", target, msg.Text(1)))

	if strings.HasPrefix(target, ChannelSigil) {
		ch := s.channels.Get(target)
		if ch == nil || !ch.Has(c) {
			c.send(s.fmt.Numeric(ErrCannotSendToChan, c.Nick, target+" :Cannot send to channel"))
			return
		}
		ch.Broadcast(line, c)
		return
	}

	to := s.sessions.FindByNick(target)
	if to == nil {
		c.send(s.fmt.Numeric(ErrNoSuchNick, c.Nick, target+" :No such nick/channel"))
		return
	}
	to.send(line)
}

func (s *Server) handlePing(c *Client, msg Message) {
	c.send(s.fmt.Pong(msg.Text(0)))
}

func (s *Server) handleQuit(c *Client, msg Message) bool {
	reason := msg.Trailing
	if reason == "" {
		reason = "Client quit"
	}
	c.send(fmt.Sprintf("ERROR :Closing Link: %s (%s)", c.Hostname, reason))
	s.cleanup(c, reason)
	return true
}

func (s *Server) handleWho(c *Client, msg Message) {
	if !s.requireRegistered(c) {
		return
	}
	target := msg.Param(0)
	if target != "" {
		// A WHO against a channel the requester has not joined yields the
		// terminator only, silently. Intentional, matches the legacy client.
		if ch := s.channels.Get(target); ch != nil && ch.Has(c) {
			for _, m := range ch.Members() {
				c.send(s.fmt.Numeric(RplWhoReply, c.Nick,
					fmt.Sprintf("%s %s %s %s %s H :0 %s", target, m.Username, m.Hostname, s.fmt.Server, m.Nick, m.Realname)))
			}
		}
	}
	if target == "" {
		target = "*"
	}
	c.send(s.fmt.Numeric(RplEndOfWho, c.Nick, target+" :End of /WHO list"))
}

func (s *Server) handleWhois(c *Client, msg Message) {
	if !s.requireRegistered(c) || !s.needArgs(c, msg, 1) {
		return
	}
	target := msg.Param(0)
	t := s.sessions.FindByNick(target)
	if t == nil {
		c.send(s.fmt.Numeric(ErrNoSuchNick, c.Nick, target+" :No such nick/channel"))
		return
	}
	c.send(s.fmt.Numeric(RplWhoisUser, c.Nick,
		fmt.Sprintf("%s %s %s * :%s", t.Nick, t.Username, t.Hostname, t.Realname)))
	if names := t.ChannelNames(); len(names) > 0 {
		c.send(s.fmt.Numeric(RplWhoisChannels, c.Nick,
			fmt.Sprintf("%s :%s", t.Nick, strings.Join(names, " "))))
	}
	c.send(s.fmt.Numeric(RplWhoisServer, c.Nick,
		fmt.Sprintf("%s %s :%s", t.Nick, s.fmt.Server, Version)))
	c.send(s.fmt.Numeric(RplEndOfWhois, c.Nick, t.Nick+" :End of /WHOIS list"))
}

func (s *Server) handleList(c *Client, msg Message) {
	if !s.requireRegistered(c) {
		return
	}
	c.send(s.fmt.Numeric(RplListStart, c.Nick, "Channel :Users Name"))
	for _, ch := range s.channels.Channels() {
		c.send(s.fmt.Numeric(RplList, c.Nick,
			fmt.Sprintf("%s %d :%s", ch.Name, len(ch.Members()), ch.Topic)))
	}
	c.send(s.fmt.Numeric(RplListEnd, c.Nick, ":End of /LIST"))
}

func (s *Server) handleTopic(c *Client, msg Message) {
	if !s.requireRegistered(c) || !s.needArgs(c, msg, 1) {
		return
	}
	name := msg.Param(0)
	if msg.HasTrailing {
		s.channels.SetTopic(c, name, msg.Trailing)
		return
	}
	s.channels.Topic(c, name)
}

// handleMode acknowledges mode queries and changes without tracking any
// mode state: queries answer with an empty mode string and changes are
// echoed back verbatim.
func (s *Server) handleMode(c *Client, msg Message) {
	if !s.requireRegistered(c) || !s.needArgs(c, msg, 1) {
		return
	}
	target := msg.Param(0)
	rest := ""
	if len(msg.Params) > 1 {
		rest = strings.Join(msg.Params[1:], " ")
	}

	if strings.HasPrefix(target, ChannelSigil) {
		ch := s.channels.Get(target)
		if ch == nil {
			c.send(s.fmt.Numeric(ErrNoSuchChannel, c.Nick, target+" :No such channel"))
			return
		}
		if rest == "" {
			c.send(s.fmt.Numeric(RplChannelModeIs, c.Nick, target+" +"))
			return
		}
		if !ch.Has(c) {
			c.send(s.fmt.Numeric(ErrNotOnChannel, c.Nick, target+" :You're not on that channel"))
			return
		}
		ch.Broadcast(s.fmt.Prefixed(c.Prefix(), fmt.Sprintf("MODE %s %s", target, rest)), nil)
		return
	}

	if target != c.Nick {
		c.send(s.fmt.Numeric(ErrNoSuchNick, c.Nick, target+" :No such nick/channel"))
		return
	}
	if rest == "" {
		c.send(s.fmt.Numeric(RplUModeIs, c.Nick, "+"))
		return
	}
	c.send(s.fmt.Prefixed(c.Prefix(), fmt.Sprintf("MODE %s %s", target, rest)))
}
