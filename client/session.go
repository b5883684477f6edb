package client

import (
	"github.com/golang-jwt/jwt/v5"
)

// Session supplies the bearer token for outgoing calls. Implementations are
// read at call time and never written by this package.
type Session interface {
	Token() string
}

// StaticSession is a fixed token, typically taken from configuration.
type StaticSession string

func (s StaticSession) Token() string { return string(s) }

// SessionFunc adapts a function to Session.
type SessionFunc func() string

func (f SessionFunc) Token() string { return f() }

// Subject returns the unverified "sub" claim of a JWT token, or "" when the
// token is not a JWT. It is only used to tag log lines.
func Subject(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
