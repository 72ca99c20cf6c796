package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dtroode/authgate/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository keeps users in process memory. Its contents live as long as
// the process and are never shared with the durable store.
type UserRepository struct {
	mu         sync.Mutex
	byUsername map[string]model.User
	nextID     int64
	now        func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byUsername: make(map[string]model.User),
		nextID:     1,
		now:        time.Now,
	}
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byUsername[username]
	if !ok {
		return model.User{}, model.NewBusinessError("find user by username", model.ErrNotFound)
	}

	return user, nil
}

func (r *UserRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.lookup(username, email)
	if !ok {
		return model.User{}, model.NewBusinessError("find user by username or email", model.ErrNotFound)
	}

	return user, nil
}

// Insert checks uniqueness and stores the user under a single lock, so
// concurrent inserts of the same username or email admit exactly one winner.
func (r *UserRepository) Insert(_ context.Context, newUser model.NewUser) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.lookup(newUser.Username, newUser.Email); taken {
		return model.User{}, model.NewBusinessError("insert user", model.ErrConflict)
	}

	user := model.User{
		ID:           r.nextID,
		Username:     newUser.Username,
		Email:        newUser.Email,
		Phone:        newUser.Phone,
		PasswordHash: newUser.PasswordHash,
		CreatedAt:    r.now().UTC(),
	}
	r.nextID++
	r.byUsername[user.Username] = user

	return user, nil
}

// Len returns the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUsername)
}

// lookup must be called with mu held.
func (r *UserRepository) lookup(username, email string) (model.User, bool) {
	if user, ok := r.byUsername[username]; ok {
		return user, true
	}
	for _, user := range r.byUsername {
		if user.Email == email {
			return user, true
		}
	}
	return model.User{}, false
}
