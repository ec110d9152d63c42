package smtp

import "errors"

// ErrPasswordWithoutUser is returned by [NewCredentials] when a password is
// supplied without a username.
var ErrPasswordWithoutUser = errors.New("smtp: password set without a user")

// Credentials wraps a username/password pair for AUTH. It never renders the
// password (or the username) through its default String form, so a
// Credentials value dropped into a log record or an error message is always
// redacted. The user and password are reachable only through [Credentials.User]
// and [Credentials.Password].
type Credentials struct {
	user     string
	password string
}

// NewCredentials validates and wraps a username/password pair. A password
// set without a username is rejected; every other combination (including
// both empty, meaning "no credentials configured") succeeds.
func NewCredentials(user, password string) (*Credentials, error) {
	if password != "" && user == "" {
		return nil, ErrPasswordWithoutUser
	}
	return &Credentials{user: user, password: password}, nil
}

// Empty reports whether no username was configured.
func (c *Credentials) Empty() bool {
	return c == nil || c.user == ""
}

// User returns the username. Call explicitly; never logged implicitly.
func (c *Credentials) User() string {
	if c == nil {
		return ""
	}
	return c.user
}

// Password returns the password. Call explicitly; never logged implicitly.
func (c *Credentials) Password() string {
	if c == nil {
		return ""
	}
	return c.password
}

// String implements fmt.Stringer with a fully redacted form so that
// accidental logging (e.g. via %v or %s) never exposes the user or password.
func (c *Credentials) String() string {
	return "smtp.Credentials{REDACTED}"
}
