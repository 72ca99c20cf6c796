// Package password hashes and checks user passwords with bcrypt.
package password

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/dtroode/authgate/internal/model"
)

// DefaultCost is the bcrypt work factor used for new hashes.
const DefaultCost = 10

var _ model.PasswordHasher = (*Bcrypt)(nil)

// Bcrypt implements model.PasswordHasher. At most workers hash or compare
// operations run at once; further callers wait for a free slot.
type Bcrypt struct {
	cost  int
	slots *semaphore.Weighted
}

// NewBcrypt creates a hasher. A non-positive cost selects DefaultCost and a
// non-positive workers count selects GOMAXPROCS.
func NewBcrypt(cost, workers int) *Bcrypt {
	if cost <= 0 {
		cost = DefaultCost
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Bcrypt{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(workers)),
	}
}

// Hash returns a salted bcrypt hash of plaintext.
func (b *Bcrypt) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := b.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire hashing slot: %w", err)
	}
	defer b.slots.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", model.ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed. A malformed hash or a
// cancelled context yields false.
func (b *Bcrypt) Verify(ctx context.Context, plaintext, hashed string) bool {
	if err := b.slots.Acquire(ctx, 1); err != nil {
		return false
	}
	defer b.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
