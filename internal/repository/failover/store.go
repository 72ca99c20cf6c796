// Package failover composes a durable and a volatile UserStore.
//
// Every operation goes to the durable store first. When it fails with an
// infrastructure-class error the same operation is served by the volatile
// store instead, unless the caller's context is already done. Business results from the durable store (not found,
// conflict) are returned untouched.
//
// The two stores are never merged or cross-checked: a user created while the
// durable store was down stays invisible to durable lookups after it
// recovers, and the other way round.
package failover

import (
	"context"

	"github.com/dtroode/authgate/internal/logger"
	"github.com/dtroode/authgate/internal/model"
)

var _ model.UserStore = (*Store)(nil)

// Recorder observes operations that were moved to the volatile store.
type Recorder interface {
	RecordFailover(operation string)
}

type Store struct {
	durable  model.UserStore
	volatile model.UserStore
	recorder Recorder
	logger   *logger.Logger
}

// New creates a failover store. A nil durable store sends every operation to
// the volatile store.
func New(durable, volatile model.UserStore, recorder Recorder, logger *logger.Logger) *Store {
	return &Store{
		durable:  durable,
		volatile: volatile,
		recorder: recorder,
		logger:   logger,
	}
}

func (s *Store) FindByUsername(ctx context.Context, username string) (model.User, error) {
	return s.run(ctx, "find_by_username", func(store model.UserStore) (model.User, error) {
		return store.FindByUsername(ctx, username)
	})
}

func (s *Store) FindByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error) {
	return s.run(ctx, "find_by_username_or_email", func(store model.UserStore) (model.User, error) {
		return store.FindByUsernameOrEmail(ctx, username, email)
	})
}

func (s *Store) Insert(ctx context.Context, newUser model.NewUser) (model.User, error) {
	return s.run(ctx, "insert", func(store model.UserStore) (model.User, error) {
		return store.Insert(ctx, newUser)
	})
}

func (s *Store) run(ctx context.Context, op string, call func(model.UserStore) (model.User, error)) (model.User, error) {
	if s.durable == nil {
		return call(s.volatile)
	}

	user, err := call(s.durable)
	if err == nil || !model.IsInfrastructure(err) {
		return user, err
	}
	// The caller gave up; the durable store did not fail.
	if ctx.Err() != nil {
		return user, err
	}

	s.logger.WarnContext(ctx, "Failover store: durable store failed, using in-memory store",
		"operation", op,
		"error", err.Error())
	if s.recorder != nil {
		s.recorder.RecordFailover(op)
	}

	return call(s.volatile)
}
