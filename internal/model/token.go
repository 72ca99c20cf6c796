package model

import "time"

// SessionDuration is the lifetime of an issued session token.
const SessionDuration = time.Hour

// Claims is the decoded content of a valid session token.
type Claims struct {
	UserID    int64
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager issues and validates session tokens.
type TokenManager interface {
	Issue(userID int64, username string) (string, error)
	Verify(token string) (Claims, error)
}
