package smtp

import (
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
)

// Mechanism names as advertised by servers in the AUTH feature and as
// understood by [NewSASLClient] (RFC 4954 §3, RFC 2195, RFC 4616,
// draft-murchison-sasl-login, RFC 7628 XOAUTH2).
const (
	MechanismCRAMMD5 = "CRAM-MD5"
	MechanismLogin   = "LOGIN"
	MechanismPlain   = "PLAIN"
	MechanismXOAuth2 = "XOAUTH2"
)

// DefaultAuthOrder is the mechanism preference order used when a caller
// does not specify one explicitly.
var DefaultAuthOrder = []string{MechanismCRAMMD5, MechanismLogin, MechanismPlain, MechanismXOAuth2}

// NewSASLClient returns a [sasl.Client] for the named mechanism, built from
// the given credentials. The XOAUTH2 mechanism treats password as the
// bearer token, matching the wire format "user=...<NUL>auth=Bearer
// ...<NUL><NUL>" produced by [sasl.NewXoauth2Client].
func NewSASLClient(mechanism, user, password string) (sasl.Client, error) {
	switch strings.ToUpper(mechanism) {
	case MechanismPlain:
		return sasl.NewPlainClient("", user, password), nil
	case MechanismLogin:
		return sasl.NewLoginClient(user, password), nil
	case MechanismCRAMMD5:
		return sasl.NewCramMD5Client(user, password), nil
	case MechanismXOAuth2:
		return sasl.NewXoauth2Client(user, password), nil
	default:
		return nil, fmt.Errorf("smtp: unsupported auth mechanism %q", mechanism)
	}
}

// SelectMechanism returns the first mechanism in order whose name appears
// as a substring of advertised (the server's AUTH feature parameter),
// matched case-insensitively. It returns ok=false if none match.
func SelectMechanism(order []string, advertised string) (mechanism string, ok bool) {
	advertised = strings.ToUpper(advertised)
	for _, name := range order {
		if strings.Contains(advertised, strings.ToUpper(name)) {
			return name, true
		}
	}
	return "", false
}
