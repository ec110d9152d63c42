// Package smtpclient implements the client-side SMTP connection engine
// (RFC 5321): a [Session] that owns one transport connection and drives
// it through greeting, EHLO/HELO, optional STARTTLS, and authentication.
//
// # Quick Start
//
//	s, err := smtpclient.NewSession(
//		smtpclient.WithHost("mail.example.com"),
//		smtpclient.WithCredentials(creds),
//	)
//	if err != nil { ... }
//	if err := s.Connect(ctx); err != nil { ... }
//	defer s.Close(false)
//	if err := s.Login(ctx, "user", "pw", "", ""); err != nil { ... }
//
// # Step-by-Step Submission
//
// [Session.Mail], [Session.Rcpt], [Session.Data], [Session.Message], and
// [Session.DataEnd] expose the individual verbs; composing them into a
// full submission (dot-stuffing, header assembly, retry policy) is left
// to the caller.
//
// # STARTTLS
//
// Configure [WithSTARTTLS] and call [Session.Ehlo]; a successful EHLO on
// an insecure session upgrades the transport automatically and re-issues
// EHLO, whether or not the server advertised STARTTLS. [Session.StartTLS]
// is also available directly.
//
// # Authentication
//
// [Session.Login] selects a mechanism from [WithAuthOrder] (or an
// explicit override) against the server's advertised AUTH feature and
// drives the PLAIN, LOGIN, CRAM-MD5, or XOAUTH2 challenge/response dance
// via github.com/emersion/go-sasl.
//
// # CHUNKING (RFC 3030)
//
// [Session.Bdat] sends message data in binary chunks without dot-stuffing.
package smtpclient
