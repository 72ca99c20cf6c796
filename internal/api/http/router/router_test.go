package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apictx "github.com/dtroode/authgate/internal/api/context"
	"github.com/dtroode/authgate/internal/metrics"
	"github.com/dtroode/authgate/internal/mocks"
	"github.com/dtroode/authgate/internal/password"
	"github.com/dtroode/authgate/internal/repository/memory"
	"github.com/dtroode/authgate/internal/service"
	"github.com/dtroode/authgate/internal/testutil"
	"github.com/dtroode/authgate/internal/token"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestEngine(t *testing.T, origins ...string) *gin.Engine {
	t.Helper()

	m := metrics.New()
	auth := service.NewAuth(
		memory.NewUserRepository(),
		password.NewBcrypt(bcrypt.MinCost, 2),
		token.NewJWT("router-secret"),
		m,
		testutil.MakeNoopLogger(),
	)

	return New(auth, nil, m.Handler(), apictx.NewManager(), origins, testutil.MakeNoopLogger()).Register()
}

func serve(e *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRouter_FullFlow(t *testing.T) {
	t.Parallel()

	for _, prefix := range []string{"", "/api"} {
		t.Run("prefix "+prefix, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(t)

			rec := serve(e, jsonRequest(http.MethodPost, prefix+"/register",
				`{"username":"alice","email":"a@x.com","phone":"555","password":"p1","confirmPassword":"p1"}`))
			require.Equal(t, http.StatusCreated, rec.Code)
			assert.JSONEq(t, `{"message":"Registration successful!"}`, rec.Body.String())

			rec = serve(e, jsonRequest(http.MethodPost, prefix+"/login", `{"username":"alice","password":"p1"}`))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"message":"login success","user":{"username":"alice"}}`, rec.Body.String())

			var session *http.Cookie
			for _, c := range rec.Result().Cookies() {
				if c.Name == "authToken" {
					session = c
				}
			}
			require.NotNil(t, session)

			req := httptest.NewRequest(http.MethodGet, prefix+"/verify-auth", nil)
			req.AddCookie(session)
			rec = serve(e, req)
			require.Equal(t, http.StatusOK, rec.Code)

			var body struct {
				User struct {
					UserID   int64  `json:"userId"`
					Username string `json:"username"`
					IssuedAt int64  `json:"iat"`
					Expires  int64  `json:"exp"`
				} `json:"user"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, int64(1), body.User.UserID)
			assert.Equal(t, "alice", body.User.Username)
			assert.Equal(t, int64(3600), body.User.Expires-body.User.IssuedAt)

			rec = serve(e, jsonRequest(http.MethodPost, prefix+"/logout", ""))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"message":"logout success"}`, rec.Body.String())
		})
	}
}

func TestRouter_LoginFailuresLookTheSame(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	rec := serve(e, jsonRequest(http.MethodPost, "/register",
		`{"username":"alice","email":"a@x.com","phone":"555","password":"p1","confirmPassword":"p1"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	unknown := serve(e, jsonRequest(http.MethodPost, "/login", `{"username":"nouser","password":"whatever"}`))
	wrong := serve(e, jsonRequest(http.MethodPost, "/login", `{"username":"alice","password":"wrongpass"}`))

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.JSONEq(t, `{"message":"Invalid username or password"}`, unknown.Body.String())
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestRouter_VerifyWithoutAndWithBadCookie(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/verify-auth", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/verify-auth", nil)
	req.AddCookie(&http.Cookie{Name: "authToken", Value: "forged"})
	rec = serve(e, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/register"},
		{http.MethodGet, "/api/login"},
		{http.MethodPost, "/verify-auth"},
		{http.MethodDelete, "/api/logout"},
	}

	for _, tt := range tests {
		rec := serve(e, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, tt.method+" "+tt.path)
		assert.JSONEq(t, `{"message":"Method not allowed"}`, rec.Body.String())
	}
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()

	rec := serve(newTestEngine(t), httptest.NewRequest(http.MethodGet, "/nothing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Not found"}`, rec.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()

	const origin = "http://localhost:5173"

	t.Run("preflight echoes origin", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		rec := serve(newTestEngine(t), req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Empty(t, rec.Body.String())
	})

	t.Run("preflight without origin", func(t *testing.T) {
		t.Parallel()
		rec := serve(newTestEngine(t), httptest.NewRequest(http.MethodOptions, "/register", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("simple request echoes origin", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/verify-auth", nil)
		req.Header.Set("Origin", origin)

		rec := serve(newTestEngine(t), req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("origin outside allow list", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodOptions, "/login", nil)
		req.Header.Set("Origin", "http://evil.example")

		rec := serve(newTestEngine(t, origin), req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","durableStore":"disabled"}`, rec.Body.String())

	serve(e, jsonRequest(http.MethodPost, "/login", `{}`))

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `authgate_auth_outcomes_total{flow="login",outcome="invalid_input"} 1`)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	t.Parallel()

	rec := serve(newTestEngine(t), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_RecoversFromPanics(t *testing.T) {
	t.Parallel()

	svc := mocks.NewAuthService(t)
	svc.On("Register", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Once()

	e := New(svc, nil, nil, apictx.NewManager(), nil, testutil.MakeNoopLogger()).Register()
	rec := serve(e, jsonRequest(http.MethodPost, "/register", `{}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rec.Body.String())
}
