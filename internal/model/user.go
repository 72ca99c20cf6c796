package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for user credentials.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (User, error)
	Insert(ctx context.Context, user NewUser) (User, error)
}

// User represents a stored user with authentication material.
type User struct {
	ID           int64
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser holds the fields required to insert a user. The store assigns ID and CreatedAt.
type NewUser struct {
	Username     string
	Email        string
	Phone        string
	PasswordHash string
}
