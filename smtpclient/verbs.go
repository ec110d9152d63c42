package smtpclient

import (
	"context"
	"fmt"

	"github.com/eigengrau/smtpconn"
)

// Helo issues the legacy HELO fallback. domain overrides the session's
// configured domain for this call only.
func (s *Session) Helo(ctx context.Context, domain string) error {
	_, _, err := s.command(ctx, "helo "+s.heloDomain(domain), map[int]bool{int(smtp.ReplyOK): true})
	return err
}

// Ehlo issues EHLO, parses the feature list from the response, and — if
// the session was configured with opportunistic STARTTLS and isn't
// secure yet — upgrades the transport and re-issues EHLO on the TLS
// stream before returning.
func (s *Session) Ehlo(ctx context.Context, domain string) error {
	s.mu.Lock()
	s.features = make(smtp.Extensions)
	s.mu.Unlock()

	data, _, err := s.command(ctx, "EHLO "+s.heloDomain(domain), map[int]bool{int(smtp.ReplyOK): true})
	if err != nil {
		return err
	}

	exts := parseSMTPFeatures(data)
	s.mu.Lock()
	s.features = exts
	needTLS := s.cfg.starttls.enabled && !s.secure
	s.mu.Unlock()

	if !needTLS {
		return nil
	}
	if err := s.StartTLS(ctx); err != nil {
		return err
	}
	return s.Ehlo(ctx, domain)
}

func (s *Session) heloDomain(domain string) string {
	if domain != "" {
		return domain
	}
	return s.cfg.domain
}

// EhloOrHeloIfNeeded is a no-op once features has been populated by a
// prior successful EHLO; otherwise it tries EHLO, falling back to HELO on
// failure. A *failed* EHLO still leaves features initialized (non-nil,
// empty) before HELO is attempted, so a later call sees features != nil
// and skips re-negotiation even though no EHLO ever succeeded. Preserved
// as-is rather than fixed.
func (s *Session) EhloOrHeloIfNeeded(ctx context.Context, domain string) error {
	s.mu.Lock()
	haveFeatures := s.features != nil
	s.mu.Unlock()
	if haveFeatures {
		return nil
	}
	if err := s.Ehlo(ctx, domain); err != nil {
		return s.Helo(ctx, domain)
	}
	return nil
}

// StartTLS issues STARTTLS and, on the expected 220, upgrades the
// transport in place and marks the session secure. Any failure — the
// command being refused, or the handshake itself — surfaces with
// " while establishing a starttls session" appended.
func (s *Session) StartTLS(ctx context.Context) error {
	if _, _, err := s.command(ctx, "STARTTLS", map[int]bool{int(smtp.ReplyServiceReady): true}); err != nil {
		return fmt.Errorf("%w while establishing a starttls session", err)
	}

	s.mu.Lock()
	nc := s.netConn
	conn := s.conn
	tlsCfg := s.cfg.starttls.config
	s.mu.Unlock()

	tlsConn, err := upgradeToTLS(ctx, nc, tlsCfg)
	if err != nil {
		wrapped := fmt.Errorf("smtp: %w: %w", smtp.ErrCouldNotConnect, err)
		s.cfg.logger.Error("starttls handshake failed", "err", err)
		return fmt.Errorf("%w while establishing a starttls session", wrapped)
	}

	s.mu.Lock()
	s.netConn = tlsConn
	conn.ReplaceConn(tlsConn)
	s.secure = true
	s.mu.Unlock()
	s.cfg.logger.Info("starttls upgrade complete")
	return nil
}

// Help issues HELP, optionally for a specific domain/topic.
func (s *Session) Help(ctx context.Context, domain string) (string, error) {
	cmd := "HELP"
	if domain != "" {
		cmd = "HELP " + domain
	}
	_, message, err := s.command(ctx, cmd, map[int]bool{
		int(smtp.ReplySystemStatus): true,
		int(smtp.ReplyHelpMessage):  true,
	})
	return message, err
}

// Noop sends NOOP via raw send, never validating the status it gets
// back — any code is reported to the caller as-is.
func (s *Session) Noop(ctx context.Context) (code int, message string, err error) {
	return s.send(ctx, "NOOP")
}

// Rset issues RSET, aborting the current mail transaction.
func (s *Session) Rset(ctx context.Context) error {
	_, _, err := s.command(ctx, "RSET", map[int]bool{int(smtp.ReplyOK): true})
	return err
}

// Vrfy issues VRFY for the given address.
func (s *Session) Vrfy(ctx context.Context, address string) (string, error) {
	_, message, err := s.command(ctx, "VRFY "+address, map[int]bool{
		int(smtp.ReplyOK):           true,
		int(smtp.ReplyUserNotLocal): true,
		int(smtp.ReplyCannotVRFY):   true,
	})
	return message, err
}

// Expn issues EXPN for the given mailing list address.
func (s *Session) Expn(ctx context.Context, address string) (string, error) {
	_, message, err := s.command(ctx, "EXPN "+address, map[int]bool{int(smtp.ReplyOK): true})
	return message, err
}

// Mail issues MAIL FROM with the supplied [MailOption]s (RFC 1870/6152/6531/3461).
// from is validated as a reverse-path via [smtp.ParseReversePath] before
// being placed on the wire; envelope selection (which header becomes the
// reverse-path) is left to the caller.
func (s *Session) Mail(ctx context.Context, from string, opts ...MailOption) error {
	var o mailOptions
	for _, opt := range opts {
		opt(&o)
	}
	rp, err := smtp.ParseReversePath(from)
	if err != nil {
		return err
	}
	cmd := "MAIL FROM:" + rp.String()
	if o.size > 0 {
		cmd += fmt.Sprintf(" SIZE=%d", o.size)
	}
	if o.body != "" {
		cmd += " BODY=" + o.body
	}
	if o.smtpUTF8 {
		cmd += " SMTPUTF8"
	}
	if o.dsnRet != "" {
		cmd += " RET=" + o.dsnRet
	}
	if o.dsnEnvID != "" {
		cmd += " ENVID=" + o.dsnEnvID
	}
	_, _, err = s.command(ctx, cmd, map[int]bool{int(smtp.ReplyOK): true})
	return err
}

// Rcpt issues RCPT TO with the supplied [RcptOption]s. to is validated as
// a forward-path via [smtp.ParseForwardPath] before being placed on the
// wire.
func (s *Session) Rcpt(ctx context.Context, to string, opts ...RcptOption) error {
	var o rcptOptions
	for _, opt := range opts {
		opt(&o)
	}
	fp, err := smtp.ParseForwardPath(to)
	if err != nil {
		return err
	}
	cmd := "RCPT TO:" + fp.String()
	if o.dsnNotify != "" {
		cmd += " NOTIFY=" + o.dsnNotify
	}
	if o.dsnOrcpt != "" {
		cmd += " ORCPT=" + o.dsnOrcpt
	}
	_, _, err = s.command(ctx, cmd, map[int]bool{
		int(smtp.ReplyOK):           true,
		int(smtp.ReplyUserNotLocal): true,
	})
	return err
}

// Data issues DATA, expecting the 354 "start mail input" continuation.
func (s *Session) Data(ctx context.Context) error {
	_, _, err := s.command(ctx, "DATA", map[int]bool{int(smtp.ReplyStartMailInput): true})
	return err
}

// Message writes raw body bytes directly to the transport, bypassing the
// command/response pipeline entirely since body lines provoke no reply.
// The caller is responsible for dot-stuffing.
func (s *Session) Message(b []byte) error {
	s.mu.Lock()
	conn := s.conn
	connected := s.state == StateConnected
	s.mu.Unlock()
	if !connected || conn == nil {
		s.forceClose()
		return smtp.ErrNoConnection
	}
	if err := conn.WriteRaw(b); err != nil {
		s.forceClose()
		return fmt.Errorf("smtp: %w: %w", smtp.ErrCouldNotConnect, err)
	}
	return nil
}

// DataEnd writes the "\r\n." terminator that ends the DATA phase and
// waits for the 250 that confirms acceptance.
func (s *Session) DataEnd(ctx context.Context) error {
	_, _, err := s.command(ctx, "\r\n.", map[int]bool{int(smtp.ReplyOK): true})
	return err
}

// Bdat sends one BDAT chunk (RFC 3030): the command line naming the
// chunk size, immediately followed by that many raw octets, then waits
// for the 250 that acknowledges the chunk. Bypasses dot-stuffing
// entirely, composing cleanly with Session's command pipeline.
func (s *Session) Bdat(ctx context.Context, chunk []byte, last bool) error {
	cmd := fmt.Sprintf("BDAT %d", len(chunk))
	if last {
		cmd += " LAST"
	}

	s.mu.Lock()
	connected := s.state == StateConnected
	conn := s.conn
	s.mu.Unlock()
	if !connected || conn == nil {
		s.forceClose()
		return smtp.ErrNoConnection
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return smtp.ErrCommandInFlight
	}
	defer s.inFlight.Store(false)

	conn.SetDeadlineFromContext(ctx)
	if err := conn.WriteLine(cmd); err != nil {
		s.forceClose()
		return fmt.Errorf("smtp: %w: %w", smtp.ErrCouldNotConnect, err)
	}
	if err := conn.WriteRaw(chunk); err != nil {
		s.forceClose()
		return fmt.Errorf("smtp: %w: %w", smtp.ErrCouldNotConnect, err)
	}

	reply, err := conn.ReadReply()
	if err != nil {
		s.forceClose()
		return classifyReadError(err)
	}
	if reply.Code != int(smtp.ReplyOK) {
		return smtp.TaggedError(smtp.ErrBadResponse, smtp.ReplyCode(reply.Code), smtp.EnhancedCode{},
			"bad response on command 'BDAT': %s", reply.Message)
	}
	return nil
}

// ServerMaxSize returns the SIZE extension's advertised ceiling in bytes,
// or 0 if the server didn't advertise one.
func (s *Session) ServerMaxSize() int64 {
	exts := s.Extensions()
	if exts == nil {
		return 0
	}
	param := exts.Param(smtp.ExtSIZE)
	if param == "" {
		return 0
	}
	var n int64
	fmt.Sscanf(param, "%d", &n)
	return n
}
