package smtpclient

import (
	"context"
	"crypto/tls"
	"net"
)

// dialImplicitTLS opens a TCP connection and immediately performs a TLS
// handshake. A nil cfg uses the default trust store; a non-nil cfg is
// explicit trust material supplied by the caller, so [isTLSAuthError] on
// the returned error routes the failure to ErrConnectionAuth instead of
// ErrCouldNotConnect.
func dialImplicitTLS(ctx context.Context, addr string, cfg *tls.Config) (net.Conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	tlsCfg := cfg
	if tlsCfg == nil {
		host, _, _ := net.SplitHostPort(addr)
		tlsCfg = &tls.Config{ServerName: host}
	}

	tlsConn := tls.Client(nc, tlsCfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		nc.Close()
		if cfg != nil {
			return nil, &tlsAuthError{err}
		}
		return nil, err
	}
	return tlsConn, nil
}

// upgradeToTLS performs the opportunistic STARTTLS handshake over an
// already-open net.Conn: the wrapped stream replaces the caller's
// transport atomically once the handshake succeeds.
func upgradeToTLS(ctx context.Context, nc net.Conn, cfg *tls.Config) (net.Conn, error) {
	tlsCfg := cfg
	if tlsCfg == nil {
		host, _, _ := net.SplitHostPort(nc.RemoteAddr().String())
		tlsCfg = &tls.Config{ServerName: host}
	}
	tlsConn := tls.Client(nc, tlsCfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return tlsConn, nil
}

// tlsAuthError marks a handshake failure that occurred with caller-
// supplied explicit trust material.
type tlsAuthError struct{ err error }

func (e *tlsAuthError) Error() string { return e.err.Error() }
func (e *tlsAuthError) Unwrap() error { return e.err }

func isTLSAuthError(err error) bool {
	_, ok := err.(*tlsAuthError)
	return ok
}
