package smtpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eigengrau/smtpconn"
)

// GreylistDelay is the wait before the single greylist retry.
const GreylistDelay = 300 * time.Millisecond

// command writes cmd+CRLF and reads the matching reply, enforcing the
// single-command-in-flight invariant and a one-shot greylist retry: a
// 450/451 reply whose message contains "greylist" (case-insensitive) is
// retried exactly once after GreylistDelay. Any other code not in
// expected becomes an [smtp.ErrBadResponse], tagged with the command's
// first word.
func (s *Session) command(ctx context.Context, cmd string, expected map[int]bool) (data, message string, err error) {
	return s.doCommand(ctx, cmd, expected, false)
}

func (s *Session) doCommand(ctx context.Context, cmd string, expected map[int]bool, retried bool) (data, message string, err error) {
	s.mu.Lock()
	connected := s.state == StateConnected
	conn := s.conn
	s.mu.Unlock()
	if !connected || conn == nil {
		s.forceClose()
		return "", "", smtp.ErrNoConnection
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return "", "", smtp.ErrCommandInFlight
	}
	released := false
	release := func() {
		if !released {
			s.inFlight.Store(false)
			released = true
		}
	}
	defer release()

	conn.SetDeadlineFromContext(ctx)
	if err := conn.WriteLine(cmd); err != nil {
		s.forceClose()
		return "", "", fmt.Errorf("smtp: %w: %w", smtp.ErrCouldNotConnect, err)
	}

	reply, err := conn.ReadReply()
	if err != nil {
		s.forceClose()
		return "", "", classifyReadError(err)
	}

	if expected[reply.Code] {
		return reply.Data, reply.Message, nil
	}

	if !retried && isGreylist(reply.Code, reply.Message) {
		release() // drop the slot before the delayed resend re-acquires it.
		select {
		case <-time.After(GreylistDelay):
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
		return s.doCommand(ctx, cmd, expected, true)
	}

	name := cmd
	if fields := strings.Fields(cmd); len(fields) > 0 {
		name = fields[0]
	}
	return "", "", smtp.TaggedError(smtp.ErrBadResponse, smtp.ReplyCode(reply.Code), smtp.EnhancedCode{},
		"bad response on command '%s': %s", name, reply.Message)
}

// send writes line, waits for the one reply it provokes, and returns it
// as-is with no status validation — used by [Noop], whose result is
// reported to the caller verbatim regardless of code.
func (s *Session) send(ctx context.Context, line string) (code int, message string, err error) {
	s.mu.Lock()
	connected := s.state == StateConnected
	conn := s.conn
	s.mu.Unlock()
	if !connected || conn == nil {
		s.forceClose()
		return 0, "", smtp.ErrNoConnection
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return 0, "", smtp.ErrCommandInFlight
	}
	defer s.inFlight.Store(false)

	conn.SetDeadlineFromContext(ctx)
	if err := conn.WriteLine(line); err != nil {
		s.forceClose()
		return 0, "", fmt.Errorf("smtp: %w: %w", smtp.ErrCouldNotConnect, err)
	}

	reply, err := conn.ReadReply()
	if err != nil {
		s.forceClose()
		return 0, "", classifyReadError(err)
	}
	return reply.Code, reply.Message, nil
}

// isGreylist reports whether a 450/451 reply's message names greylisting.
func isGreylist(code int, message string) bool {
	if code != int(smtp.ReplyMailboxBusy) && code != int(smtp.ReplyLocalError) {
		return false
	}
	return strings.Contains(strings.ToLower(message), "greylist")
}
