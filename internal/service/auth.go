package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dtroode/authgate/internal/apierror"
	"github.com/dtroode/authgate/internal/logger"
	"github.com/dtroode/authgate/internal/model"
)

const (
	flowRegister = "register"
	flowLogin    = "login"
	flowVerify   = "verify"
)

// OutcomeRecorder observes the result of every finished flow.
type OutcomeRecorder interface {
	RecordAuthOutcome(flow, outcome string)
}

// Auth implements the register, login and verify flows.
type Auth struct {
	userStore model.UserStore
	hasher    model.PasswordHasher
	tokens    model.TokenManager
	recorder  OutcomeRecorder
	logger    *logger.Logger
}

// NewAuth creates the auth service. recorder may be nil.
func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokens model.TokenManager,
	recorder OutcomeRecorder,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore: userStore,
		hasher:    hasher,
		tokens:    tokens,
		recorder:  recorder,
		logger:    logger,
	}
}

// Register creates a user. No session is issued; the caller logs in separately.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (err error) {
	defer func() { a.recordOutcome(flowRegister, err) }()

	a.logger.DebugContext(ctx, "Auth service: starting user registration",
		"username", params.Username)

	if params.Username == "" || params.Email == "" || params.Phone == "" ||
		params.Password == "" || params.ConfirmPassword == "" {
		return apierror.NewErrMissingRegistrationFields()
	}
	if params.Password != params.ConfirmPassword {
		return apierror.NewErrPasswordsDoNotMatch()
	}

	hash, err := a.hasher.Hash(ctx, params.Password)
	if errors.Is(err, model.ErrPasswordTooLong) {
		return apierror.NewErrPasswordTooLong(err)
	}
	if err != nil {
		a.logger.ErrorContext(ctx, "Auth service: failed to hash password",
			"username", params.Username,
			"error", err.Error())
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = a.userStore.FindByUsernameOrEmail(ctx, params.Username, params.Email)
	if err == nil {
		a.logger.InfoContext(ctx, "Auth service: user already exists",
			"username", params.Username)
		return apierror.NewErrUserExists(model.ErrConflict)
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.ErrorContext(ctx, "Auth service: failed to look up user",
			"username", params.Username,
			"error", err.Error())
		return fmt.Errorf("failed to find user by username or email: %w", err)
	}

	user, err := a.userStore.Insert(ctx, model.NewUser{
		Username:     params.Username,
		Email:        params.Email,
		Phone:        params.Phone,
		PasswordHash: hash,
	})
	if errors.Is(err, model.ErrConflict) {
		a.logger.InfoContext(ctx, "Auth service: user created concurrently",
			"username", params.Username)
		return apierror.NewErrUserExists(err)
	}
	if err != nil {
		a.logger.ErrorContext(ctx, "Auth service: failed to create user",
			"username", params.Username,
			"error", err.Error())
		return fmt.Errorf("failed to insert user: %w", err)
	}

	a.logger.InfoContext(ctx, "Auth service: user registered",
		"username", user.Username,
		"user_id", user.ID)

	return nil
}

// Login checks the password and issues a session token.
func (a *Auth) Login(ctx context.Context, params model.LoginParams) (res model.LoginResult, err error) {
	defer func() { a.recordOutcome(flowLogin, err) }()

	a.logger.DebugContext(ctx, "Auth service: starting user login",
		"username", params.Username)

	if params.Username == "" || params.Password == "" {
		return model.LoginResult{}, apierror.NewErrMissingCredentials()
	}

	user, err := a.userStore.FindByUsername(ctx, params.Username)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.InfoContext(ctx, "Auth service: login for unknown user",
			"username", params.Username)
		return model.LoginResult{}, apierror.NewErrInvalidCredentials()
	}
	if err != nil {
		a.logger.ErrorContext(ctx, "Auth service: failed to get user",
			"username", params.Username,
			"error", err.Error())
		return model.LoginResult{}, fmt.Errorf("failed to find user by username: %w", err)
	}

	if !a.hasher.Verify(ctx, params.Password, user.PasswordHash) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.LoginResult{}, fmt.Errorf("failed to verify password: %w", ctxErr)
		}
		a.logger.InfoContext(ctx, "Auth service: wrong password",
			"username", params.Username)
		return model.LoginResult{}, apierror.NewErrInvalidCredentials()
	}

	token, err := a.tokens.Issue(user.ID, user.Username)
	if err != nil {
		a.logger.ErrorContext(ctx, "Auth service: failed to issue token",
			"username", params.Username,
			"error", err.Error())
		return model.LoginResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.InfoContext(ctx, "Auth service: user logged in",
		"username", user.Username,
		"user_id", user.ID)

	return model.LoginResult{Token: token, Username: user.Username}, nil
}

// Verify decodes a session token presented by the client.
func (a *Auth) Verify(ctx context.Context, token string) (claims model.Claims, err error) {
	defer func() { a.recordOutcome(flowVerify, err) }()

	if token == "" {
		return model.Claims{}, apierror.NewErrUnauthorized()
	}

	claims, err = a.tokens.Verify(token)
	if err != nil {
		a.logger.DebugContext(ctx, "Auth service: token rejected",
			"error", err.Error())
		return model.Claims{}, apierror.NewErrInvalidToken(err)
	}

	return claims, nil
}

func (a *Auth) recordOutcome(flow string, err error) {
	if a.recorder == nil {
		return
	}
	a.recorder.RecordAuthOutcome(flow, outcomeOf(err))
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	apiErr, ok := apierror.As(err)
	if !ok {
		return "error"
	}
	switch apiErr.HTTPCode {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusConflict:
		return "conflict"
	default:
		return "error"
	}
}
