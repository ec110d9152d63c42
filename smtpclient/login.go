package smtpclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"

	"github.com/eigengrau/smtpconn"
)

// Login ensures EHLO/HELO has run, selects an authentication mechanism,
// and drives the challenge/response dance. user and password, when
// empty, default to the credentials supplied via [WithCredentials] at
// construction. method, if non-empty, overrides mechanism selection;
// domain overrides the session's configured EHLO/HELO domain for this
// call.
//
// On success loggedIn becomes true. If the challenge/response dance fails,
// loggedIn is set false and the connection is closed gracefully (not
// force-destroyed) before the error — tagged [smtp.ErrAuthFailed] — is
// returned. A failed EHLO/HELO, no matching mechanism
// ([smtp.ErrAuthNotSupported]) or an unknown explicit method is returned
// as is, without that close.
func (s *Session) Login(ctx context.Context, user, password, method, domain string) error {
	if err := s.EhloOrHeloIfNeeded(ctx, domain); err != nil {
		return err
	}

	if user == "" {
		user = s.cfg.creds.User()
	}
	if password == "" {
		password = s.cfg.creds.Password()
	}

	mech := method
	if mech == "" {
		advertised := s.Extensions().Param(smtp.ExtAUTH)
		selected, ok := smtp.SelectMechanism(s.cfg.authOrder, advertised)
		if !ok {
			return smtp.ErrAuthNotSupported
		}
		mech = selected
	}

	client, err := smtp.NewSASLClient(mech, user, password)
	if err != nil {
		return err
	}

	if err := s.authDance(ctx, mech, client); err != nil {
		s.mu.Lock()
		s.loggedIn = false
		s.mu.Unlock()
		s.Close(false)
		s.cfg.logger.Error("smtp auth failed", "mechanism", mech, "err", err)
		return fmt.Errorf("smtp: %w: %w", smtp.ErrAuthFailed, err)
	}

	s.mu.Lock()
	s.loggedIn = true
	s.mu.Unlock()
	s.cfg.logger.Info("smtp auth succeeded", "mechanism", mech)
	return nil
}

// authDance runs the AUTH command/challenge loop for the chosen
// mechanism. It preserves the "AUTH  CRAM-MD5" two-space form verbatim
// for the initial command when the mechanism has no initial response
// and is CRAM-MD5; every other mechanism with no initial response gets
// the normal single space.
func (s *Session) authDance(ctx context.Context, mech string, client sasl.Client) error {
	_, ir, err := client.Start()
	if err != nil {
		return err
	}

	code, message, err := s.send(ctx, authCommand(mech, ir))
	if err != nil {
		return err
	}

	for {
		switch code {
		case int(smtp.ReplyAuthOK), int(smtp.ReplyBadSequence):
			// 503 here means the server already considers this session
			// authenticated; treat it the same as 235 rather than tearing
			// the session down.
			return nil
		case int(smtp.ReplyAuthContinue):
			challenge, decErr := base64.StdEncoding.DecodeString(message)
			if decErr != nil {
				s.send(ctx, "*")
				return decErr
			}
			resp, nextErr := client.Next(challenge)
			if nextErr != nil {
				s.send(ctx, "*")
				return nextErr
			}
			code, message, err = s.send(ctx, base64.StdEncoding.EncodeToString(resp))
			if err != nil {
				return err
			}
		default:
			return smtp.Errorf(smtp.ReplyCode(code), smtp.EnhancedCode{}, "%s", message)
		}
	}
}

// authCommand builds the initial "AUTH <mechanism> [initial-response]"
// line. CRAM-MD5 has no initial response under RFC 4954; the two-space
// form below is intentional, not a typo — preserved rather than
// corrected.
func authCommand(mech string, ir []byte) string {
	if len(ir) == 0 {
		if strings.EqualFold(mech, smtp.MechanismCRAMMD5) {
			return "AUTH  " + mech
		}
		return "AUTH " + mech
	}
	return "AUTH " + mech + " " + base64.StdEncoding.EncodeToString(ir)
}
