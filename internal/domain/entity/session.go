package entity

import "time"

// Session is the operator session carried through a request once the bearer
// token has been verified. It replaces any process-wide "logged in" flag.
type Session struct {
	Username      string
	TokenID       string
	Authenticated bool
	ExpiresAt     time.Time
}

// Anonymous is the session of a request that presented no credentials.
func Anonymous() *Session {
	return &Session{}
}
