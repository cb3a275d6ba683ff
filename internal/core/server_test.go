package core

import (
	"strings"
	"testing"
)

func TestRegistrationWelcomeSequence(t *testing.T) {
	s := newTestServer(t)
	c, sink := connectClient(t, s, "a")

	s.HandleLine(c, "NICK alice")
	if got := sink.drain(); len(got) != 0 {
		t.Fatalf("no lines expected before registration completes, got %v", got)
	}

	s.HandleLine(c, "USER alice 0 * :Alice A")
	welcome := sink.drain()
	if len(welcome) != 4 {
		t.Fatalf("expected exactly 4 welcome lines, got %d: %v", len(welcome), welcome)
	}
	for i, code := range []string{"001", "002", "003", "004"} {
		if !strings.Contains(welcome[i], " "+code+" alice ") {
			t.Fatalf("welcome line %d should carry code %s: %q", i, code, welcome[i])
		}
	}
	if !strings.Contains(welcome[0], "alice!alice@a.host") {
		t.Fatalf("001 should name the full identity: %q", welcome[0])
	}
	if !c.Registered {
		t.Fatal("client should be registered")
	}
}

func TestRegistrationUserFirst(t *testing.T) {
	s := newTestServer(t)
	c, sink := connectClient(t, s, "a")

	s.HandleLine(c, "USER alice 0 * :Alice A")
	if got := sink.drain(); len(got) != 0 {
		t.Fatalf("no lines expected before nick is set, got %v", got)
	}

	s.HandleLine(c, "NICK alice")
	if welcome := sink.drain(); len(welcome) != 4 {
		t.Fatalf("expected 4 welcome lines, got %v", welcome)
	}
}

func TestWelcomeSentExactlyOnce(t *testing.T) {
	s := newTestServer(t)
	c, sink := connectClient(t, s, "a")
	registerClient(t, s, c, sink, "alice")

	s.HandleLine(c, "USER alice2 0 * :Alice Again")
	for _, l := range sink.drain() {
		if strings.Contains(l, " 001 ") {
			t.Fatalf("welcome must not repeat: %q", l)
		}
	}
	if c.Username != "alice2" {
		t.Fatalf("resent USER should still update the field, got %q", c.Username)
	}
}

func TestNickCollisionLeavesBothUntouched(t *testing.T) {
	s := newTestServer(t)
	a, sinkA := connectClient(t, s, "a")
	registerClient(t, s, a, sinkA, "alice")
	b, sinkB := connectClient(t, s, "b")
	registerClient(t, s, b, sinkB, "bob")

	s.HandleLine(b, "NICK alice")
	if got := lineWithCode(sinkB.drain(), "433"); got == "" {
		t.Fatal("expected 433 nickname in use")
	}
	if b.Nick != "bob" || !b.Registered {
		t.Fatalf("requester state must not change on rejection: %+v", b)
	}
	if a.Nick != "alice" {
		t.Fatalf("holder state must not change: %+v", a)
	}
	if got := sinkA.drain(); len(got) != 0 {
		t.Fatalf("holder must not be notified: %v", got)
	}
}

func TestNickCollisionDuringRegistration(t *testing.T) {
	s := newTestServer(t)
	a, sinkA := connectClient(t, s, "a")
	registerClient(t, s, a, sinkA, "alice")

	b, sinkB := connectClient(t, s, "b")
	s.HandleLine(b, "NICK alice")
	if got := lineWithCode(sinkB.drain(), "433"); got == "" {
		t.Fatal("expected 433 for unregistered requester too")
	}
	if b.Nick != "" || b.Registered {
		t.Fatalf("no partial mutation on rejection: %+v", b)
	}
}

func TestNickChangeBroadcastUsesOldPrefix(t *testing.T) {
	s := newTestServer(t)
	a, sinkA := connectClient(t, s, "a")
	registerClient(t, s, a, sinkA, "alice")
	b, sinkB := connectClient(t, s, "b")
	registerClient(t, s, b, sinkB, "bob")

	s.HandleLine(a, "JOIN #test")
	s.HandleLine(b, "JOIN #test")
	sinkA.drain()
	sinkB.drain()

	s.HandleLine(a, "NICK alicia")
	want := ":alice!alice@a.host NICK :alicia"
	if got := sinkA.drain(); len(got) != 1 || got[0] != want {
		t.Fatalf("requester echo: got %v, want %q", got, want)
	}
	if got := sinkB.drain(); len(got) != 1 || got[0] != want {
		t.Fatalf("channel broadcast: got %v, want %q", got, want)
	}
	if a.Nick != "alicia" {
		t.Fatalf("nick not updated: %q", a.Nick)
	}
}

func TestJoinRequiresSigil(t *testing.T) {
	s := newTestServer(t)
	c, sink := connectClient(t, s, "a")
	registerClient(t, s, c, sink, "alice")

	s.HandleLine(c, "JOIN test")
	if got := lineWithCode(sink.drain(), "403"); got == "" {
		t.Fatal("expected 403 no such channel")
	}
	if s.channels.Len() != 0 {
		t.Fatal("rejected join must not create a directory entry")
	}
}

func TestJoinFlowAndRepeatJoinIsSilent(t *testing.T) {
	s := newTestServer(t)
	c, sink := connectClient(t, s, "a")
	registerClient(t, s, c, sink, "alice")

	s.HandleLine(c, "JOIN #test")
	got := sink.drain()
	if len(got) != 3 {
		t.Fatalf("expected join echo, names, end-of-names; got %v", got)
	}
	if got[0] != ":alice!alice@a.host JOIN #test" {
		t.Fatalf("join echo: %q", got[0])
	}
	if !strings.Contains(got[1], " 353 alice = #test :alice") {
		t.Fatalf("names: %q", got[1])
	}
	if !strings.Contains(got[2], " 366 alice ") {
		t.Fatalf("end of names: %q", got[2])
	}

	s.HandleLine(c, "JOIN #test")
	if got := sink.drain(); len(got) != 0 {
		t.Fatalf("repeat join must be silent, got %v", got)
	}
}

func TestPartLifecycle(t *testing.T) {
	s := newTestServer(t)
	a, sinkA := connectClient(t, s, "a")
	registerClient(t, s, a, sinkA, "alice")
	b, sinkB := connectClient(t, s, "b")
	registerClient(t, s, b, sinkB, "bob")

	s.HandleLine(a, "JOIN #test")
	s.HandleLine(b, "JOIN #test")
	sinkA.drain()
	sinkB.drain()

	s.HandleLine(b, "PART #test :done")
	want := ":bob!bob@b.host PART #test :done"
	if got := sinkB.drain(); len(got) != 1 || got[0] != want {
		t.Fatalf("parting client must see its own departure, got %v", got)
	}
	if got := sinkA.drain(); len(got) != 1 || got[0] != want {
		t.Fatalf("remaining member must see the part, got %v", got)
	}

	ch := s.channels.Get("#test")
	if ch == nil || len(ch.Members()) != 1 {
		t.Fatalf("channel should survive with one member, got %+v", ch)
	}

	s.HandleLine(a, "PART #test")
	sinkA.drain()
	if s.channels.Get("#test") != nil {
		t.Fatal("parting the last member must destroy the channel")
	}
}

func TestPartWhenNotAMember(t *testing.T) {
	s := newTestServer(t)
	a, sinkA := connectClient(t, s, "a")
	registerClient(t, s, a, sinkA, "alice")
	b, sinkB := connectClient(t, s, "b")
	registerClient(t, s, b, sinkB, "bob")

	s.HandleLine(a, "JOIN #test")
	sinkA.drain()

	s.HandleLine(b, "PART #test")
	if got := lineWithCode(sinkB.drain(), "442"); got == "" {
		t.Fatal("expected 442 not on channel")
	}
	if got := sinkA.drain(); len(got) != 0 {
		t.Fatalf("member must not see the failed part, got %v", got)
	}
}

func TestChannelMessageFromNonMemberRejected(t *testing.T) {
	s := newTestServer(t)
	a, sinkA := connectClient(t, s, "a")
	registerClient(t, s, a, sinkA, "alice")
	c, sinkC := connectClient(t, s, "c")
	registerClient(t, s, c, sinkC, "carol")

	s.HandleLine(a, "JOIN #test")
	sinkA.drain()

	s.HandleLine(c, "PRIVMSG #test :hello")
	if got := lineWithCode(sinkC.drain(), "404"); got == "" {
		t.Fatal("expected 404 cannot send to channel")
	}
	if got := sinkA.drain(); len(got) != 0 {
		t.Fatalf("message must not reach any member, got %v", got)
	}
}

func TestDirectMessageToUnknownNick(t *testing.T) {
	s := newTestServer(t)
	a, sinkA := connectClient(t, s, "a")
	registerClient(t, s, a, sinkA, "alice")

	s.HandleLine(a, "PRIVMSG ghost :anyone there")
	if got := lineWithCode(sinkA.drain(), "401"); got == "" {
		t.Fatal("expected 401 no such nick")
	}
}

func TestDirectMessageDelivery(t *testing.T) {
	s := newTestServer(t)
	a, sinkA := connectClient(t, s, "a")
	registerClient(t, s, a, sinkA, "alice")
	b, sinkB := connectClient(t, s, "b")
	registerClient(t, s, b, sinkB, "bob")

	s.HandleLine(a, "PRIVMSG bob :psst")
	want := ":alice!alice@a.host PRIVMSG bob :psst"
	if got := sinkB.drain(); len(got) != 1 || got[0] != want {
		t.Fatalf("got %v, want %q", got, want)
	}
	if got := sinkA.drain(); len(got) != 0 {
		t.Fatalf("sender gets no echo, got %v", got)
	}
}

// TestClientScenario walks the full two-client wire trace end to end.
func TestClientScenario(t *testing.T) {
	s := newTestServer(t)

	a, sinkA := connectClient(t, s, "a")
	s.HandleLine(a, "NICK alice")
	s.HandleLine(a, "USER alice 0 * :Alice A")
	welcome := sinkA.drain()
	if len(welcome) != 4 || !strings.Contains(welcome[3], " 004 ") {
		t.Fatalf("expected 4 welcome lines ending in 004, got %v", welcome)
	}

	s.HandleLine(a, "JOIN #test")
	joined := sinkA.drain()
	if joined[0] != ":alice!alice@a.host JOIN #test" {
		t.Fatalf("join echo: %q", joined[0])
	}
	if names := lineWithCode(joined, "353"); !strings.Contains(names, "alice") {
		t.Fatalf("353 should contain alice: %q", names)
	}
	if lineWithCode(joined, "366") == "" {
		t.Fatal("366 terminator missing")
	}

	b, sinkB := connectClient(t, s, "b")
	registerClient(t, s, b, sinkB, "bob")
	s.HandleLine(b, "JOIN #test")

	if got := sinkA.drain(); len(got) != 1 || got[0] != ":bob!bob@b.host JOIN #test" {
		t.Fatalf("A must receive bob's join broadcast, got %v", got)
	}
	bJoin := sinkB.drain()
	if names := lineWithCode(bJoin, "353"); !strings.Contains(names, "alice") {
		t.Fatalf("B's names list must include alice: %q", names)
	}

	s.HandleLine(b, "PRIVMSG #test :hi")
	if got := sinkA.drain(); len(got) != 1 || got[0] != ":bob!bob@b.host PRIVMSG #test :hi" {
		t.Fatalf("A should receive bob's message, got %v", got)
	}
	if got := sinkB.drain(); len(got) != 0 {
		t.Fatalf("B is excluded from its own broadcast, got %v", got)
	}

	if closed := s.HandleLine(a, "QUIT :bye"); !closed {
		t.Fatal("QUIT must close the connection")
	}
	if got := sinkB.drain(); len(got) != 1 || got[0] != ":alice!alice@a.host QUIT :bye" {
		t.Fatalf("B must receive alice's quit notice, got %v", got)
	}

	ch := s.channels.Get("#test")
	if ch == nil || len(ch.Members()) != 1 || ch.Members()[0] != b {
		t.Fatalf("#test must still exist with only bob, got %+v", ch)
	}
	if s.sessions.Has(a) {
		t.Fatal("alice must be removed from the registry")
	}
}

func TestDisconnectRunsCleanupOnce(t *testing.T) {
	s := newTestServer(t)
	a, sinkA := connectClient(t, s, "a")
	registerClient(t, s, a, sinkA, "alice")
	b, sinkB := connectClient(t, s, "b")
	registerClient(t, s, b, sinkB, "bob")

	s.HandleLine(a, "JOIN #test")
	s.HandleLine(b, "JOIN #test")
	sinkA.drain()
	sinkB.drain()

	s.Disconnect(a, "connection closed")
	if got := sinkB.drain(); len(got) != 1 || !strings.HasPrefix(got[0], ":alice!alice@a.host QUIT :") {
		t.Fatalf("remaining member must see a quit notice, got %v", got)
	}
	if got := sinkA.drain(); len(got) != 0 {
		t.Fatalf("leaving client gets no quit notice, got %v", got)
	}

	// Second call is a no-op.
	s.Disconnect(a, "again")
	if got := sinkB.drain(); len(got) != 0 {
		t.Fatalf("duplicate disconnect must not re-broadcast, got %v", got)
	}
}
