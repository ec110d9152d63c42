// Package smtp provides shared types for the SMTP protocol (RFC 5321).
//
// This package contains reply codes, enhanced status codes, error types,
// email address parsing, SMTP extension definitions, credential handling,
// and SASL mechanism selection. It is used by the
// [github.com/eigengrau/smtpconn/smtpclient] package, which implements the
// stateful connection engine on top of these types.
//
// # Reply Codes
//
// [ReplyCode] constants cover all standard SMTP reply codes. The [SMTPError]
// type carries a reply code, optional [EnhancedCode], and human-readable
// message.
//
// # Address Types
//
// [Mailbox], [ReversePath], and [ForwardPath] represent RFC 5321 email
// addresses with parsing and validation, including support for
// internationalized domain names (RFC 6531). Address literals ([...]) are
// checked only for their closing bracket.
//
// # Credentials
//
// [Credentials] wraps a username/password pair so that it is never rendered
// by accident; [NewCredentials] rejects a password given without a username.
//
// # Authentication
//
// [NewSASLClient] builds a [github.com/emersion/go-sasl] client for one of
// the mechanism names in [DefaultAuthOrder] (CRAM-MD5, LOGIN, PLAIN,
// XOAUTH2). [SelectMechanism] implements the substring-preference match
// against a server's advertised AUTH feature.
//
// # Extensions
//
// The [Extension] type and [Extensions] map track EHLO-advertised
// capabilities. Use [ParseEHLOResponse] to parse a server's EHLO reply.
package smtp
