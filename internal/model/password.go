package model

import "context"

// PasswordHasher hashes passwords at registration and checks them at login.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify never fails on a malformed hash, it reports false instead.
	Verify(ctx context.Context, plaintext, hashed string) bool
}
