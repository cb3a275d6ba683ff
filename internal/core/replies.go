package core

import "fmt"

// Numeric reply codes produced by this server.
const (
	RplWelcome       = 1
	RplYourHost      = 2
	RplCreated       = 3
	RplMyInfo        = 4
	RplUModeIs       = 221
	RplWhoisUser     = 311
	RplWhoisServer   = 312
	RplEndOfWho      = 315
	RplEndOfWhois    = 318
	RplWhoisChannels = 319
	RplListStart     = 321
	RplList          = 322
	RplListEnd       = 323
	RplChannelModeIs = 324
	RplNoTopic       = 331
	RplTopic         = 332
	RplWhoReply      = 352
	RplNamReply      = 353
	RplEndOfNames    = 366

	ErrNoSuchNick       = 401
	ErrNoSuchChannel    = 403
	ErrCannotSendToChan = 404
	ErrUnknownCommand   = 421
	ErrNoNicknameGiven  = 431
	ErrNicknameInUse    = 433
	ErrNotOnChannel     = 442
	ErrNotRegistered    = 451
	ErrNeedMoreParams   = 461
)

// Formatter builds protocol reply lines for one server identity.
type Formatter struct {
	Server string
}

// Numeric shapes a reply as ":<server> <code> <target> <payload>".
// Unregistered clients without a nickname are addressed as "*".
func (f Formatter) Numeric(code int, target, payload string) string {
	if target == "" {
		target = "*"
	}
	return fmt.Sprintf(":%s %03d %s %s", f.Server, code, target, payload)
}

// Prefixed shapes a broadcast line originating from a client identity,
// e.g. ":nick!user@host PRIVMSG #chan :hi".
func (f Formatter) Prefixed(prefix, rest string) string {
	return fmt.Sprintf(":%s %s", prefix, rest)
}

// Pong answers a PING with the server as the responding prefix.
func (f Formatter) Pong(token string) string {
	if token == "" {
		return fmt.Sprintf(":%s PONG %s", f.Server, f.Server)
	}
	return fmt.Sprintf(":%s PONG %s :%s", f.Server, f.Server, token)
}
