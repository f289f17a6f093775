package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/modules/user"
	"github.com/georgemunganga/orderdesk/internal/platform/database/databasetest"
)

const secret = "test-secret"

type fixture struct {
	users user.Service
	auth  *service
	admin *user.User
	rep   *user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	users := user.NewService(user.NewSQLRepository(databasetest.New(t)))

	_, err := users.EnsureAdmin(ctx, user.AdminSeed{Username: "admin", Email: "admin@example.com", Password: "admin-pass"})
	require.NoError(t, err)
	admin, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)

	rep, err := users.Register(ctx, user.RegisterRequest{Username: "rep", Email: "rep@example.com", Password: "rep-pass", Role: "sales"})
	require.NoError(t, err)
	rep, err = users.Approve(ctx, rep.ID)
	require.NoError(t, err)

	return &fixture{
		users: users,
		auth:  NewService(users, secret, time.Hour).(*service),
		admin: admin,
		rep:   rep,
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("By email", func(t *testing.T) {
		s, err := f.auth.Login(ctx, "admin@example.com", "admin-pass")
		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, s.User.Role)

		claims, err := f.auth.Verify(s.Token)
		require.NoError(t, err)
		assert.Equal(t, f.admin.ID, claims.UserID)
		assert.Equal(t, user.RoleAdmin, claims.Role)
	})

	t.Run("By username", func(t *testing.T) {
		s, err := f.auth.Login(ctx, "rep", "rep-pass")
		require.NoError(t, err)
		assert.Equal(t, f.rep.ID, s.User.ID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "rep", "nope")
		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	})

	t.Run("Unknown account", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "ghost@example.com", "whatever")
		assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	})

	t.Run("Missing fields", func(t *testing.T) {
		_, err := f.auth.Login(ctx, "", "")
		assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
	})

	t.Run("Pending approval", func(t *testing.T) {
		_, err := f.users.Register(ctx, user.RegisterRequest{Username: "new", Email: "new@example.com", Password: "new-pass", Role: "sales"})
		require.NoError(t, err)

		_, err = f.auth.Login(ctx, "new", "new-pass")
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("Deactivated", func(t *testing.T) {
		other, err := f.users.Register(ctx, user.RegisterRequest{Username: "old", Email: "old@example.com", Password: "old-pass", Role: "sales"})
		require.NoError(t, err)
		_, err = f.users.Approve(ctx, other.ID)
		require.NoError(t, err)
		_, err = f.users.SetActive(ctx, other.ID, false)
		require.NoError(t, err)

		_, err = f.auth.Login(ctx, "old", "old-pass")
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	f := newFixture(t)

	f.auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := f.auth.sign(f.rep)
	require.NoError(t, err)
	_, err = f.auth.Verify(expired)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	foreign := NewService(f.users, "other-secret", time.Hour).(*service)
	token, err := foreign.sign(f.rep)
	require.NoError(t, err)
	_, err = f.auth.Verify(token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, err = f.auth.Verify("not-a-token")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestOwnerOrRole(t *testing.T) {
	rep := Identity{ID: 2, Role: user.RoleSales}
	admin := Identity{ID: 1, Role: user.RoleAdmin}

	assert.True(t, OwnerOrRole(rep, 2, user.RoleAdmin))
	assert.False(t, OwnerOrRole(rep, 3, user.RoleAdmin))
	assert.True(t, OwnerOrRole(admin, 3, user.RoleAdmin))
}

func gatedRouter(f *fixture) http.Handler {
	gate := NewGate(f.auth, f.users)
	g := gate.Guards()
	r := chi.NewRouter()
	ok := func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFrom(r.Context())
		w.Write([]byte(id.Username))
	}
	r.With(g.Authenticated).Get("/any", ok)
	r.With(g.Authenticated, g.Admin).Get("/admin", ok)
	r.With(g.Authenticated, g.Sales).Get("/sales", ok)
	r.Route("/api/auth", func(r chi.Router) {
		NewHandler(f.auth, f.users).RegisterRoutes(r, g)
	})
	return r
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGate(t *testing.T) {
	f := newFixture(t)
	h := gatedRouter(f)
	adminToken, err := f.auth.sign(f.admin)
	require.NoError(t, err)
	repToken, err := f.auth.sign(f.rep)
	require.NoError(t, err)

	cases := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"No token", "/any", "", http.StatusUnauthorized},
		{"Garbage token", "/any", "garbage", http.StatusUnauthorized},
		{"Authenticated", "/any", repToken, http.StatusOK},
		{"Admin on admin route", "/admin", adminToken, http.StatusOK},
		{"Sales on admin route", "/admin", repToken, http.StatusForbidden},
		{"Admin on sales route", "/sales", adminToken, http.StatusForbidden},
		{"Sales on sales route", "/sales", repToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, get(h, tc.path, tc.token).Code)
		})
	}

	t.Run("Deactivation applies to issued tokens", func(t *testing.T) {
		_, err := f.users.SetActive(context.Background(), f.rep.ID, false)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, get(h, "/any", repToken).Code)
	})
}

func TestLoginAndMeEndpoints(t *testing.T) {
	f := newFixture(t)
	h := gatedRouter(f)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"rep@example.com","password":"rep-pass"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"rep"`)
	assert.Contains(t, rec.Body.String(), `"token":"`)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"rep@example.com","password":"bad"}`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())

	token, err := f.auth.sign(f.rep)
	require.NoError(t, err)
	rec = get(h, "/api/auth/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":`+itoa(f.rep.ID)+`,"username":"rep","email":"rep@example.com","role":"sales"}`, rec.Body.String())
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
