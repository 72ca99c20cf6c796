package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authgate/internal/apierror"
	"github.com/dtroode/authgate/internal/logger"
	"github.com/dtroode/authgate/internal/model"
)

// CookieName is the cookie that carries the session token.
const CookieName = "authToken"

const cookieMaxAge = int(model.SessionDuration / time.Second)

// AuthService defines user registration, login and token verification.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) error
	Login(ctx context.Context, params model.LoginParams) (model.LoginResult, error)
	Verify(ctx context.Context, token string) (model.Claims, error)
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	Username string `json:"username"`
}

type loginResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type claimsResponse struct {
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	IssuedAt  int64  `json:"iat,omitempty"`
	ExpiresAt int64  `json:"exp"`
}

type verifyResponse struct {
	User claimsResponse `json:"user"`
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

// Register creates an account. The caller has to log in afterwards.
func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, apierror.NewErrInvalidBody(err))
		return
	}

	err := h.authService.Register(c.Request.Context(), model.RegisterParams{
		Username:        req.Username,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, messageResponse{Message: "Registration successful!"})
}

// Login checks credentials and sets the session cookie.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, apierror.NewErrInvalidBody(err))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), model.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	setSessionCookie(c, res.Token, cookieMaxAge)
	c.JSON(http.StatusOK, loginResponse{
		Message: "login success",
		User:    userResponse{Username: res.Username},
	})
}

// Verify decodes the session cookie and returns its claims.
func (h *Auth) Verify(c *gin.Context) {
	token, _ := c.Cookie(CookieName)

	claims, err := h.authService.Verify(c.Request.Context(), token)
	if err != nil {
		h.writeError(c, err)
		return
	}

	res := claimsResponse{
		UserID:    claims.UserID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
	// iat is optional in a token; leave it out rather than report year 1.
	if !claims.IssuedAt.IsZero() {
		res.IssuedAt = claims.IssuedAt.Unix()
	}

	c.JSON(http.StatusOK, verifyResponse{User: res})
}

// Logout clears the session cookie. Issued tokens stay valid until they expire.
func (h *Auth) Logout(c *gin.Context) {
	setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, messageResponse{Message: "logout success"})
}

func (h *Auth) writeError(c *gin.Context, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		apiErr = apierror.NewErrInternal(err)
	}

	if apiErr.HTTPCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request.Context(), "Auth handler: request failed",
			"path", c.FullPath(),
			"error", err.Error())
	} else {
		h.logger.DebugContext(c.Request.Context(), "Auth handler: request rejected",
			"path", c.FullPath(),
			"status", apiErr.HTTPCode,
			"message", apiErr.Message)
	}

	c.AbortWithStatusJSON(apiErr.HTTPCode, messageResponse{Message: apiErr.Message})
}

// bindJSON treats an empty body as an empty object so missing fields are
// reported by the flow itself.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", true, true)
}
