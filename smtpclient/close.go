package smtpclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/eigengrau/smtpconn"
	"github.com/eigengrau/smtpconn/internal/textproto"
)

// Quit sends QUIT, accepts 221 or 250, and closes gracefully. Any
// failure still results in a forced close.
func (s *Session) Quit(ctx context.Context) error {
	s.mu.Lock()
	connected := s.state == StateConnected
	s.mu.Unlock()
	if !connected {
		return smtp.ErrNoConnection
	}

	_, _, err := s.command(ctx, "QUIT", map[int]bool{
		int(smtp.ReplyServiceClosing): true,
		int(smtp.ReplyOK):             true,
	})
	s.Close(false)
	s.cfg.logger.Debug("smtp quit", "err", err)
	return err
}

// Close is idempotent: it stops the monitor, drops the
// transport, resets features, clears secure, and recomputes loggedIn from
// whether credentials are configured. force and !force both close the
// underlying connection here — there is no separate orderly-shutdown
// handshake at the net.Conn level for plain TCP/TLS, so both paths call
// net.Conn.Close; the distinction matters to callers that skip the QUIT
// round-trip when force=true.
func (s *Session) Close(force bool) error {
	s.mu.Lock()
	nc := s.netConn
	s.netConn = nil
	s.conn = nil
	s.state = StateNotConnected
	s.features = nil
	s.secure = false
	s.loggedIn = s.cfg.creds.Empty()
	s.mu.Unlock()

	if nc == nil {
		return nil
	}
	return nc.Close()
}

// forceClose is Close(true) without a returned error — used on protocol
// and transport faults where the caller already has the error that matters.
func (s *Session) forceClose() {
	s.Close(true)
}

// resetToNotConnected clears lifecycle state after a failure that never
// produced a live transport (e.g. dial failed before any net.Conn existed).
func (s *Session) resetToNotConnected() {
	s.mu.Lock()
	s.state = StateNotConnected
	s.mu.Unlock()
}

// classifyReadError maps a textproto read error to a semantic tag:
// ErrTimeout if the inactivity timer fired, ErrBadResponse for a
// malformed reply, ErrCouldNotConnect for anything else (the connection
// dropped out from under us).
func classifyReadError(err error) error {
	switch {
	case textproto.IsTimeout(err):
		return fmt.Errorf("smtp: %w: %w", smtp.ErrTimeout, err)
	case isMalformedReply(err):
		return fmt.Errorf("smtp: %w: %w", smtp.ErrBadResponse, err)
	default:
		return fmt.Errorf("smtp: %w: %w", smtp.ErrCouldNotConnect, err)
	}
}

// isMalformedReply recognizes the plain errors textproto.ReadReply
// returns for a malformed reply line, as opposed to a transport failure.
func isMalformedReply(err error) bool {
	msg := err.Error()
	for _, substr := range []string{"reply line too short", "invalid reply code", "invalid reply separator", "line too long"} {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
