package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leadcrm/internal/authz"
	"leadcrm/internal/config"
	"leadcrm/internal/models"
	"leadcrm/internal/repositories"
	"leadcrm/internal/services"
)

type apiClient struct {
	t *testing.T
	h http.Handler
}

func newAPI(t *testing.T) (*apiClient, *repositories.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mem := repositories.NewMemoryStore()
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = 30 * time.Minute
	h := NewHandler(Deps{
		Config: cfg,
		Log:    zap.NewNop(),
		Store:  &repositories.Store{Users: mem.Users(), Leads: mem.Leads()},
	})
	return &apiClient{t: t, h: h}, mem
}

func (a *apiClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

func (a *apiClient) signupForm(email, password string) *httptest.ResponseRecorder {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

func (a *apiClient) login(email, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var tok models.TokenResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &tok))
	assert.Equal(a.t, "bearer", tok.TokenType)
	return tok.AccessToken
}

func detailOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["detail"]
}

func TestWelcome(t *testing.T) {
	api, _ := newAPI(t)
	w := api.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Welcome to the Advanced CRM API"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestLeadLifecycle(t *testing.T) {
	api, _ := newAPI(t)

	w := api.signupForm("a@x.com", "pw")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"User registered successfully"}`, w.Body.String())

	w = api.signupForm("a@x.com", "pw")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", detailOf(t, w))

	w = api.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "a@x.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email or password", detailOf(t, w))

	tokenA := api.login("a@x.com", "pw")

	w = api.do(http.MethodGet, "/auth/me", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"a@x.com","role":"sales"}`, w.Body.String())

	w = api.do(http.MethodGet, "/leads", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = api.do(http.MethodPost, "/leads", tokenA, map[string]any{
		"first_name": "John", "last_name": "Doe", "email": "j@x.com",
		"status": "new", "created": "2025-01-01", "owner_email": "evil@x.com", "id": 77,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created models.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "a@x.com", created.OwnerEmail)
	assert.Equal(t, "2025-01-01", created.Created.String())
	assert.Nil(t, created.Company)

	require.Equal(t, http.StatusOK, api.signupForm("b@x.com", "pw").Code)
	tokenB := api.login("b@x.com", "pw")

	w = api.do(http.MethodDelete, "/leads/1", tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Lead not found", detailOf(t, w))

	w = api.do(http.MethodGet, "/leads", tokenB, nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = api.do(http.MethodPut, "/leads/1", tokenA, map[string]any{
		"first_name": "John", "last_name": "Doe", "email": "j@x.com", "status": "qualified",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "qualified", updated.Status)
	assert.Equal(t, "2025-01-01", updated.Created.String())

	w = api.do(http.MethodGet, "/leads/1", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodDelete, "/leads/1", tokenA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Lead deleted successfully"}`, w.Body.String())

	w = api.do(http.MethodGet, "/leads/1", tokenA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeadValidation(t *testing.T) {
	api, _ := newAPI(t)
	require.Equal(t, http.StatusOK, api.signupForm("a@x.com", "pw").Code)
	token := api.login("a@x.com", "pw")

	w := api.do(http.MethodPost, "/leads", token, map[string]any{"first_name": "John"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/leads", token, map[string]any{
		"first_name": "John", "last_name": "Doe", "email": "not-an-email", "status": "new",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/leads", token, map[string]any{
		"first_name": "John", "last_name": "Doe", "email": "j@x.com", "status": "new", "created": "01/02/2025",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/leads/abc", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/leads?limit=0", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/leads?limit=1001", token, nil).Code)
}

func TestLeadsRequireToken(t *testing.T) {
	api, _ := newAPI(t)
	w := api.do(http.MethodGet, "/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authenticated", detailOf(t, w))

	w = api.do(http.MethodGet, "/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuditRoleReadsButCannotWrite(t *testing.T) {
	api, mem := newAPI(t)
	require.Equal(t, http.StatusOK, api.signupForm("a@x.com", "pw").Code)
	tokenA := api.login("a@x.com", "pw")
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/leads", tokenA, map[string]any{
		"first_name": "John", "last_name": "Doe", "email": "j@x.com", "status": "new",
	}).Code)

	hash, err := services.HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, mem.Users().Create(context.Background(),
		&models.User{Email: "audit@x.com", PasswordHash: hash, RoleID: authz.RoleAudit}))
	tokenAudit := api.login("audit@x.com", "pw")

	w := api.do(http.MethodGet, "/leads", tokenAudit, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var leads []models.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &leads))
	assert.Len(t, leads, 1)

	w = api.do(http.MethodDelete, "/leads/1", tokenAudit, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportReturnsPDF(t *testing.T) {
	api, _ := newAPI(t)
	require.Equal(t, http.StatusOK, api.signupForm("a@x.com", "pw").Code)
	token := api.login("a@x.com", "pw")

	w := api.do(http.MethodGet, "/leads/export?status=new", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestHealth(t *testing.T) {
	api, _ := newAPI(t)
	w := api.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	api, _ := newAPI(t)
	preflight := func(headers string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/leads", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", headers)
		w := httptest.NewRecorder()
		api.h.ServeHTTP(w, req)
		return w
	}

	w := preflight("authorization,content-type")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("authorization,x-api-secret")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSearchWithStarIsBadRequest(t *testing.T) {
	api, _ := newAPI(t)
	require.Equal(t, http.StatusOK, api.signupForm("a@x.com", "pw").Code)
	token := api.login("a@x.com", "pw")

	w := api.do(http.MethodGet, "/leads?search=a*z", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGzipWhenAccepted(t *testing.T) {
	api, _ := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	api.h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}
