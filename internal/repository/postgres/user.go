package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/authgate/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// DBTX is the subset of pgxpool.Pool used by repositories.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	query := `SELECT id, username, email, phone, password_hash, created_at
			  FROM users WHERE username = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		return model.User{}, classify("find user by username", err)
	}

	return user, nil
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error) {
	query := `SELECT id, username, email, phone, password_hash, created_at
			  FROM users WHERE username = $1 OR email = $2
			  ORDER BY id LIMIT 1`

	user, err := scanUser(r.db.QueryRow(ctx, query, username, email))
	if err != nil {
		return model.User{}, classify("find user by username or email", err)
	}

	return user, nil
}

// Insert relies on the UNIQUE constraints of the users table to reject
// duplicates atomically.
func (r *UserRepository) Insert(ctx context.Context, newUser model.NewUser) (model.User, error) {
	query := `INSERT INTO users (username, email, phone, password_hash)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, username, email, phone, password_hash, created_at`

	user, err := scanUser(r.db.QueryRow(ctx, query,
		newUser.Username, newUser.Email, newUser.Phone, newUser.PasswordHash,
	))
	if err != nil {
		return model.User{}, classify("insert user", err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Phone, &user.PasswordHash, &user.CreatedAt,
	)
	return user, err
}

// classify tags driver errors: missing rows and unique violations are business
// results, everything else is an infrastructure failure.
func classify(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return model.NewBusinessError(op, model.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return model.NewBusinessError(op, model.ErrConflict)
	}

	return model.NewInfrastructureError(op, fmt.Errorf("failed to %s: %w", op, err))
}
