package repositories

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadcrm/internal/apperr"
	"leadcrm/internal/authz"
	"leadcrm/internal/config"
	"leadcrm/internal/models"
	"leadcrm/internal/supabase"
)

func newRestClient(t *testing.T, h http.HandlerFunc) *supabase.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := supabase.New(srv.URL, "service-key", supabase.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestRestUserRepositoryGetByEmail(t *testing.T) {
	c := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/users", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		switch r.URL.Query().Get("email") {
		case "eq.a@x.com":
			_, _ = io.WriteString(w, `[{"id":3,"email":"a@x.com","password":"$2a$10$hash","role_id":null}]`)
		default:
			_, _ = io.WriteString(w, `[]`)
		}
	})
	repo := NewRestUserRepository(c, "users")

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)
	assert.Equal(t, authz.DefaultRole, u.RoleID)

	_, err = repo.GetByEmail(context.Background(), "b@x.com")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRestUserRepositoryCreateConflict(t *testing.T) {
	c := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"code":"23505","message":"duplicate key"}`)
	})
	err := NewRestUserRepository(c, "users").Create(context.Background(), &models.User{Email: "a@x.com"})
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRestUserRepositoryCreateRoleColumn(t *testing.T) {
	var bodies []map[string]any
	c := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":1,"email":"a@x.com","password":"h"}]`)
	})
	repo := NewRestUserRepository(c, "users")

	require.NoError(t, repo.Create(context.Background(),
		&models.User{Email: "a@x.com", PasswordHash: "h", RoleID: authz.DefaultRole}))
	require.NoError(t, repo.Create(context.Background(),
		&models.User{Email: "boss@x.com", PasswordHash: "h", RoleID: authz.RoleAdmin}))

	require.Len(t, bodies, 2)
	assert.NotContains(t, bodies[0], "role_id")
	assert.Equal(t, float64(authz.RoleAdmin), bodies[1]["role_id"])
}

func TestRestLeadRepositoryCreateSendsCanonicalDate(t *testing.T) {
	c := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2025-01-01", body["created"])
		assert.Equal(t, "a@x.com", body["owner_email"])
		assert.NotContains(t, body, "id")

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":9,"first_name":"John","last_name":"Doe","email":"j@x.com",
			"status":"new","created":"2025-01-01T00:00:00","owner_email":"a@x.com","company":null}]`)
	})
	created := models.Date{Year: 2025, Month: 1, Day: 1}
	lead := &models.Lead{FirstName: "John", LastName: "Doe", Email: "j@x.com", Status: "new",
		Created: &created, OwnerEmail: "a@x.com"}

	require.NoError(t, NewRestLeadRepository(c, "leads").Create(context.Background(), lead))
	assert.Equal(t, int64(9), lead.ID)
	assert.Equal(t, "2025-01-01", lead.Created.String())
	assert.Nil(t, lead.Company)
}

func TestRestLeadRepositoryUpdateMissIsNotFound(t *testing.T) {
	c := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.b@x.com", r.URL.Query().Get("owner_email"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "created")
		assert.NotContains(t, body, "owner_email")
		_, _ = io.WriteString(w, `[]`)
	})
	lead := &models.Lead{ID: 9, FirstName: "X", LastName: "Y", Email: "x@y.com", Status: "new"}
	err := NewRestLeadRepository(c, "leads").Update(context.Background(), lead, "b@x.com")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRestLeadRepositoryListUnscoped(t *testing.T) {
	c := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Empty(t, q.Get("owner_email"))
		assert.Equal(t, "100", q.Get("limit"))
		_, _ = io.WriteString(w, `[]`)
	})
	leads, err := NewRestLeadRepository(c, "leads").List(context.Background(), LeadFilter{Limit: 100})
	require.NoError(t, err)
	assert.NotNil(t, leads)
	assert.Empty(t, leads)
}

func TestRestLeadRepositoryDelete(t *testing.T) {
	c := newRestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "eq.1" {
			_, _ = io.WriteString(w, `[{"id":1}]`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})
	repo := NewRestLeadRepository(c, "leads")
	require.NoError(t, repo.Delete(context.Background(), 1, "a@x.com"))
	require.ErrorIs(t, repo.Delete(context.Background(), 2, "a@x.com"), apperr.ErrNotFound)
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
	require.NotNil(t, s.Users)
	require.NotNil(t, s.Leads)
}
