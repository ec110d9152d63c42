package smtpclient

import (
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/eigengrau/smtpconn"
)

// Option configures a Session.
type Option func(*config)

type tlsMode struct {
	enabled bool
	config  *tls.Config // nil means "default trust store".
}

type config struct {
	host      string
	port      int
	domain    string
	timeout   time.Duration
	ssl       tlsMode // implicit TLS from connect.
	starttls  tlsMode // opportunistic upgrade.
	authOrder []string
	creds     *smtp.Credentials
	logger    *slog.Logger
}

func newConfig() *config {
	return &config{
		host:      "localhost",
		timeout:   5 * time.Second,
		authOrder: append([]string(nil), smtp.DefaultAuthOrder...),
		logger:    slog.New(slog.NewTextHandler(discardWriter{}, nil)),
	}
}

// resolvePort applies the port default table once options have been
// applied: explicit port wins, else 465 for implicit TLS, 587 for
// STARTTLS, else 25.
func (c *config) resolvePort() {
	if c.port != 0 {
		return
	}
	switch {
	case c.ssl.enabled:
		c.port = 465
	case c.starttls.enabled:
		c.port = 587
	default:
		c.port = 25
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// WithHost sets the target host. Trimmed when opening the transport.
func WithHost(host string) Option {
	return func(c *config) { c.host = host }
}

// WithPort sets the TCP port, overriding the ssl/starttls-based default.
func WithPort(port int) Option {
	return func(c *config) { c.port = port }
}

// WithDomain sets the hostname argument to HELO/EHLO.
func WithDomain(domain string) Option {
	return func(c *config) { c.domain = domain }
}

// WithTimeout sets the inactivity timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithImplicitTLS enables implicit TLS. A nil tlsConfig means "use the
// default trust store"; a non-nil config is treated as explicit trust
// material, so a handshake failure is classified as
// [smtp.ErrConnectionAuth] rather than [smtp.ErrCouldNotConnect].
func WithImplicitTLS(tlsConfig *tls.Config) Option {
	return func(c *config) { c.ssl = tlsMode{enabled: true, config: tlsConfig} }
}

// WithSTARTTLS enables opportunistic STARTTLS, upgraded right after the
// first successful EHLO.
func WithSTARTTLS(tlsConfig *tls.Config) Option {
	return func(c *config) { c.starttls = tlsMode{enabled: true, config: tlsConfig} }
}

// WithAuthOrder overrides the mechanism preference order used during
// mechanism selection (default [smtp.DefaultAuthOrder]).
func WithAuthOrder(order ...string) Option {
	return func(c *config) { c.authOrder = order }
}

// WithCredentials sets the AUTH username/password. A password without a
// username is rejected by [NewSession].
func WithCredentials(creds *smtp.Credentials) Option {
	return func(c *config) { c.creds = creds }
}

// WithLogger sets the structured logger. Credentials are never passed to
// it; only state, codes, and mechanism names are logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// MailOption configures the MAIL FROM command.
type MailOption func(*mailOptions)

type mailOptions struct {
	size     int64
	body     string // "7BIT" or "8BITMIME"
	smtpUTF8 bool
	dsnRet   string // "FULL" or "HDRS"
	dsnEnvID string
}

// WithSize sets the SIZE parameter (RFC 1870).
func WithSize(n int64) MailOption {
	return func(o *mailOptions) { o.size = n }
}

// WithBody sets the BODY parameter (RFC 6152). Use "8BITMIME" or "7BIT".
func WithBody(body string) MailOption {
	return func(o *mailOptions) { o.body = body }
}

// WithSMTPUTF8 sets the SMTPUTF8 parameter (RFC 6531).
func WithSMTPUTF8() MailOption {
	return func(o *mailOptions) { o.smtpUTF8 = true }
}

// WithDSNReturn sets the RET parameter for DSN (RFC 3461). Use "FULL" or "HDRS".
func WithDSNReturn(ret string) MailOption {
	return func(o *mailOptions) { o.dsnRet = ret }
}

// WithDSNEnvelopeID sets the ENVID parameter for DSN (RFC 3461).
func WithDSNEnvelopeID(envid string) MailOption {
	return func(o *mailOptions) { o.dsnEnvID = envid }
}

// RcptOption configures the RCPT TO command.
type RcptOption func(*rcptOptions)

type rcptOptions struct {
	dsnNotify string // e.g., "SUCCESS,FAILURE,DELAY" or "NEVER"
	dsnOrcpt  string // Original recipient, e.g., "rfc822;user@example.com"
}

// WithDSNNotify sets the NOTIFY parameter for DSN (RFC 3461).
func WithDSNNotify(notify string) RcptOption {
	return func(o *rcptOptions) { o.dsnNotify = notify }
}

// WithDSNOriginalRecipient sets the ORCPT parameter for DSN (RFC 3461).
func WithDSNOriginalRecipient(orcpt string) RcptOption {
	return func(o *rcptOptions) { o.dsnOrcpt = orcpt }
}
