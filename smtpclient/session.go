// Package smtpclient implements the client-side SMTP connection engine:
// greeting/EHLO/STARTTLS/AUTH sequencing, the feature map, and the command
// verbs needed to submit one message (RFC 5321). Composing MAIL FROM,
// RCPT TO, DATA and the submission queue on top of a Session is left to
// the caller.
package smtpclient

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/eigengrau/smtpconn"
	"github.com/eigengrau/smtpconn/internal/textproto"
)

// State is one of the three connection lifecycle states.
type State int

const (
	StateNotConnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateNotConnected:
		return "NotConnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// debugEnabled gates a process-global convenience switch. Sessions
// normally carry their own *slog.Logger via [WithLogger] instead.
var debugEnabled atomic.Bool

// SetDebug enables or disables the process-global debug convenience switch.
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

// Session owns a single transport connection to an MSA/MTA and drives it
// through the greeting/EHLO/STARTTLS/AUTH lifecycle. A Session is not
// safe for concurrent commands: at most one command may be in flight at
// a time.
type Session struct {
	cfg *config

	mu       sync.Mutex
	inFlight atomic.Bool

	state    State
	secure   bool
	loggedIn bool

	netConn net.Conn
	conn    *textproto.Conn

	features smtp.Extensions // nil means no EHLO issued on this connection; a rejected EHLO leaves it empty, not nil.
}

// NewSession constructs a Session from the given options but does not
// open a connection; call [Session.Connect]. Returns
// [smtp.ErrPasswordWithoutUser] if a password was configured without a
// username.
func NewSession(opts ...Option) (*Session, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.resolvePort()

	if cfg.creds != nil && cfg.creds.Password() != "" && cfg.creds.User() == "" {
		return nil, smtp.ErrPasswordWithoutUser
	}

	s := &Session{cfg: cfg}
	s.loggedIn = s.cfg.creds.Empty()
	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authorized reports whether the session requires no credentials, or
// authentication has already succeeded.
func (s *Session) Authorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// IsSecure reports whether the transport is currently TLS.
func (s *Session) IsSecure() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secure
}

// Extensions returns the features advertised by the last successful EHLO.
// It returns nil if no EHLO has been issued on the current connection, and
// an empty map after an EHLO the server rejected.
func (s *Session) Extensions() smtp.Extensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.features == nil {
		return nil
	}
	exts := make(smtp.Extensions, len(s.features))
	for k, v := range s.features {
		exts[k] = v
	}
	return exts
}

// transition moves the session to the given state under the session lock.
// Caller must already hold s.mu.
func (s *Session) transition(to State) {
	s.state = to
}

// Connect opens the transport, reads the greeting, and leaves the session
// in StateConnected on success. Re-entry from Connected performs a
// graceful Quit first before reconnecting.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.requitIfConnected(ctx); err != nil {
		return err
	}

	host := strings.TrimSpace(s.cfg.host)
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", s.cfg.port))

	var (
		nc  net.Conn
		err error
	)
	if s.cfg.ssl.enabled {
		nc, err = dialImplicitTLS(ctx, addr, s.cfg.ssl.config)
	} else {
		var d net.Dialer
		nc, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		s.resetToNotConnected()
		if isTLSAuthError(err) {
			return fmt.Errorf("smtp: %w: %w", smtp.ErrConnectionAuth, err)
		}
		return fmt.Errorf("smtp: %w: %w", smtp.ErrCouldNotConnect, err)
	}

	return s.bindConn(nc, s.cfg.ssl.enabled)
}

// ConnectConn adopts an already-established net.Conn instead of dialing
// one, reading the greeting exactly as [Session.Connect] does. Useful for
// custom dialers (proxied connections, connection pools) and for tests
// that drive the wire protocol over a net.Pipe.
func (s *Session) ConnectConn(ctx context.Context, nc net.Conn, secure bool) error {
	if err := s.requitIfConnected(ctx); err != nil {
		return err
	}
	return s.bindConn(nc, secure)
}

// requitIfConnected performs the graceful "Connected -> quit -> Connecting"
// re-entry chain, then transitions to Connecting either way.
func (s *Session) requitIfConnected(ctx context.Context) error {
	s.mu.Lock()
	connected := s.state == StateConnected
	s.mu.Unlock()
	if connected {
		if err := s.Quit(ctx); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.transition(StateConnecting)
	s.mu.Unlock()
	return nil
}

// bindConn wraps nc in the protocol layer, reads the greeting, and
// transitions to StateConnected on a 220.
func (s *Session) bindConn(nc net.Conn, secure bool) error {
	conn := textproto.NewConn(nc)
	conn.SetIdleTimeout(s.cfg.timeout)

	s.mu.Lock()
	s.netConn = nc
	s.conn = conn
	s.secure = secure
	s.mu.Unlock()

	reply, err := conn.ReadReply()
	if err != nil {
		s.forceClose()
		s.cfg.logger.Error("smtp greeting failed", "err", err)
		return classifyReadError(err)
	}
	if reply.Code != int(smtp.ReplyServiceReady) {
		err := smtp.TaggedError(smtp.ErrBadResponse, smtp.ReplyCode(reply.Code), smtp.EnhancedCode{}, "unexpected greeting: %s", reply.Message)
		s.forceClose()
		s.cfg.logger.Error("smtp greeting rejected", "code", reply.Code)
		return err
	}

	s.mu.Lock()
	s.transition(StateConnected)
	s.mu.Unlock()
	s.cfg.logger.Info("smtp connected", "addr", nc.RemoteAddr(), "secure", secure)
	return nil
}
