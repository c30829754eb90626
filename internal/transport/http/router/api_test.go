package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gin-gorm-auth/internal/core/auth"
	"gin-gorm-auth/internal/core/uid"
	"gin-gorm-auth/internal/domain"
	"gin-gorm-auth/internal/repo"
	"gin-gorm-auth/internal/service"
	"gin-gorm-auth/pkg/utils"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

type testAPI struct {
	t     *testing.T
	h     http.Handler
	users *repo.MemoryUserRepo
	jwt   *auth.JWTer
}

func newTestAPI(t *testing.T, users domain.UserRepository, opt Options) *testAPI {
	t.Helper()
	mem, _ := users.(*repo.MemoryUserRepo)
	if users == nil {
		mem = repo.NewMemoryUserRepo()
		users = mem
	}
	j, err := auth.NewJWTer([]byte("router-test-secret-0123456789"), auth.WithIssuer("auth-api"))
	require.NoError(t, err)
	svc, err := service.NewCredentialService(users, j, zap.NewNop())
	require.NoError(t, err)
	return &testAPI{t: t, h: NewAPIEngine(zap.NewNop(), svc, j, opt), users: mem, jwt: j}
}

func (a *testAPI) do(method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testAPI) signup(email, password, nickname string) (*httptest.ResponseRecorder, envelope) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password, "nickname": nickname})
	return a.do(http.MethodPost, "/api/v1/auth/signup", string(body), "")
}

func (a *testAPI) login(email, password string) (*httptest.ResponseRecorder, envelope) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	return a.do(http.MethodPost, "/api/v1/auth/login", string(body), "")
}

func TestSignupLoginMe(t *testing.T) {
	a := newTestAPI(t, nil, Options{})

	w, env := a.signup("kim@example.com", "Secret123", "김철수")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "kim@example.com", created["email"])
	assert.Equal(t, "김철수", created["nickname"])
	assert.True(t, uid.Valid(uid.PrefixUser, created["id"].(string)))
	assert.NotContains(t, w.Body.String(), "password")

	w, env = a.login("kim@example.com", "Secret123")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.EqualValues(t, 900, pair.ExpiresIn)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	w, env = a.do(http.MethodGet, "/api/v1/me", "", pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, created["id"], me["id"])
	assert.Equal(t, "active", me["status"])
	assert.NotNil(t, me["last_login_at"])
}

func TestSignup_DuplicateEmail(t *testing.T) {
	a := newTestAPI(t, nil, Options{})
	w, _ := a.signup("dup@example.com", "Secret123", "first")
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := a.signup("dup@example.com", "Other1234", "second")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "EMAIL_ALREADY_EXISTS", env.Error.Code)
	assert.Contains(t, env.Error.Message, "dup@example.com")
	assert.Equal(t, 1, a.users.Len())
}

func TestSignup_ShapeValidation(t *testing.T) {
	a := newTestAPI(t, nil, Options{})
	cases := []struct {
		name, email, password, nickname, field string
	}{
		{"bad email", "not-an-email", "Secret123", "nick", "email"},
		{"short password", "a@example.com", "S3cret", "nick", "password"},
		{"password without digit", "a@example.com", "SecretSecret", "nick", "password"},
		{"password without letter", "a@example.com", "1234567890", "nick", "password"},
		{"short nickname", "a@example.com", "Secret123", "n", "nickname"},
		{"missing nickname", "a@example.com", "Secret123", "", "nickname"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := a.signup(tc.email, tc.password, tc.nickname)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
			require.NotEmpty(t, env.Error.Details)
			assert.Equal(t, tc.field, env.Error.Details[0].Field)
		})
	}
	assert.Equal(t, 0, a.users.Len())
}

func TestSignup_PasswordOverBcryptLimit(t *testing.T) {
	a := newTestAPI(t, nil, Options{})
	w, env := a.signup("long@example.com", strings.Repeat("a1", 40), "nick")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "password", env.Error.Details[0].Field)
}

func TestSignup_MalformedBody(t *testing.T) {
	a := newTestAPI(t, nil, Options{})
	w, env := a.do(http.MethodPost, "/api/v1/auth/signup", `{"email":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, env = a.do(http.MethodPost, "/api/v1/auth/signup", `{"email":1,"password":"Secret123","nickname":"nick"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "email", env.Error.Details[0].Field)
}

func seedUser(t *testing.T, r *repo.MemoryUserRepo, email, password string, st domain.UserStatus) *domain.User {
	t.Helper()
	h, err := utils.HashPassword(password)
	require.NoError(t, err)
	u, err := r.Create(context.Background(), &domain.User{
		ID: uid.NewUser(), Email: email, PasswordHash: h, Nickname: "seed", Status: st,
	})
	require.NoError(t, err)
	return u
}

func TestLogin_Failures(t *testing.T) {
	a := newTestAPI(t, nil, Options{})
	seedUser(t, a.users, "active@example.com", "Secret123", domain.UserStatusActive)
	seedUser(t, a.users, "inactive@example.com", "Secret123", domain.UserStatusInactive)
	seedUser(t, a.users, "suspended@example.com", "Secret123", domain.UserStatusSuspended)

	cases := []struct {
		name, email, password, code string
		status                      int
	}{
		{"unknown email", "ghost@example.com", "Secret123", "INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"wrong password", "active@example.com", "Wrong1234", "INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"inactive", "inactive@example.com", "Secret123", "ACCOUNT_INACTIVE", http.StatusForbidden},
		{"suspended", "suspended@example.com", "Secret123", "ACCOUNT_SUSPENDED", http.StatusForbidden},
		{"suspended wrong password", "suspended@example.com", "Wrong1234", "INVALID_CREDENTIALS", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := a.login(tc.email, tc.password)
			assert.Equal(t, tc.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
			assert.Empty(t, env.Data)
		})
	}

	// 未知邮箱与密码错误的响应体完全一致
	w1, _ := a.login("ghost@example.com", "Secret123")
	w2, _ := a.login("active@example.com", "Wrong1234")
	assert.Equal(t, w1.Body.String(), w2.Body.String())

	for _, email := range []string{"active@example.com", "inactive@example.com", "suspended@example.com"} {
		u, err := a.users.FindByEmail(context.Background(), email)
		require.NoError(t, err)
		assert.Nil(t, u.LastLoginAt, email)
	}
}

func TestMe_RejectsBadTokens(t *testing.T) {
	a := newTestAPI(t, nil, Options{})
	u := seedUser(t, a.users, "me@example.com", "Secret123", domain.UserStatusActive)

	refresh, err := a.jwt.IssueRefresh(u.ID)
	require.NoError(t, err)
	other, err := auth.NewJWTer([]byte("some-other-secret-0123456789"), auth.WithIssuer("auth-api"))
	require.NoError(t, err)
	forged, err := other.IssueAccess(u.ID)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"missing":       "",
		"garbage":       "not.a.jwt",
		"refresh token": refresh,
		"wrong secret":  forged,
	} {
		t.Run(name, func(t *testing.T) {
			w, env := a.do(http.MethodGet, "/api/v1/me", "", tok)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
		})
	}
}

func TestMe_UserGone(t *testing.T) {
	a := newTestAPI(t, nil, Options{})
	tok, err := a.jwt.IssueAccess(uid.NewUser())
	require.NoError(t, err)

	w, env := a.do(http.MethodGet, "/api/v1/me", "", tok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "USER_NOT_FOUND", env.Error.Code)
}

func TestHealthMetricsAndNoRoute(t *testing.T) {
	a := newTestAPI(t, nil, Options{})

	w, env := a.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, env = a.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, _ = a.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestBodyTooLarge(t *testing.T) {
	a := newTestAPI(t, nil, Options{MaxBodyBytes: 64})
	body, _ := json.Marshal(map[string]string{
		"email": "big@example.com", "password": "Secret123", "nickname": strings.Repeat("x", 100),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
}

type brokenRepo struct{ *repo.MemoryUserRepo }

func (brokenRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, errors.New("db down")
}

type slowRepo struct{ *repo.MemoryUserRepo }

func (slowRepo) FindByEmail(ctx context.Context, _ string) (*domain.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestInfrastructureFailures(t *testing.T) {
	t.Run("internal", func(t *testing.T) {
		a := newTestAPI(t, brokenRepo{repo.NewMemoryUserRepo()}, Options{})
		w, env := a.login("a@example.com", "Secret123")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
		assert.NotContains(t, w.Body.String(), "db down")
	})

	t.Run("timeout", func(t *testing.T) {
		a := newTestAPI(t, slowRepo{repo.NewMemoryUserRepo()}, Options{RequestTimeout: 50 * time.Millisecond})
		w, env := a.login("a@example.com", "Secret123")
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "TIMEOUT", env.Error.Code)
	})
}
