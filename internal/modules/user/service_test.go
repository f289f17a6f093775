package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/orderdesk/internal/apperr"
	"github.com/georgemunganga/orderdesk/internal/platform/database"
	"github.com/georgemunganga/orderdesk/internal/platform/database/databasetest"
)

var testSeed = AdminSeed{Username: "owner", Email: "Owner@Example.com", Password: "owner-pass"}

func setup(t *testing.T) (*service, *database.SQLStore) {
	store := databasetest.New(t)
	svc := NewService(NewSQLRepository(store)).(*service)
	svc.hashCost = bcrypt.MinCost
	return svc, store
}

func register(t *testing.T, svc Service, name string) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterRequest{
		Username: name,
		Email:    name + "@example.com",
		Password: "secret123",
		Role:     "sales",
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		u := register(t, svc, "rep1")

		assert.NotZero(t, u.ID)
		assert.Equal(t, RoleSales, u.Role)
		assert.False(t, u.Approved)
		assert.True(t, u.IsActive)
		assert.NotEqual(t, "secret123", u.PasswordHash)
		assert.True(t, svc.ValidatePassword(u, "secret123"))
		assert.False(t, svc.ValidatePassword(u, "wrong"))
	})

	cases := []struct {
		name string
		req  RegisterRequest
		kind apperr.Kind
		msg  string
	}{
		{"Missing fields", RegisterRequest{Username: "x", Email: "x@example.com"}, apperr.KindInvalidInput, ""},
		{"Admin role", RegisterRequest{Username: "x", Email: "x@example.com", Password: "secret123", Role: "admin"}, apperr.KindForbidden, ""},
		{"Short password", RegisterRequest{Username: "x", Email: "x@example.com", Password: "123", Role: "sales"}, apperr.KindInvalidInput, ""},
		{"Bad email", RegisterRequest{Username: "x", Email: "nope", Password: "secret123", Role: "sales"}, apperr.KindInvalidInput, ""},
		{"Email taken", RegisterRequest{Username: "other", Email: "REP1@example.com", Password: "secret123", Role: "sales"}, apperr.KindConflict, "Email already registered"},
		{"Username taken", RegisterRequest{Username: "rep1", Email: "fresh@example.com", Password: "secret123", Role: "sales"}, apperr.KindConflict, "Username already taken"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
			if tc.msg != "" {
				assert.Equal(t, tc.msg, apperr.Message(err, ""))
			}
		})
	}
}

func TestFindByLogin(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	u := register(t, svc, "rep2")

	byEmail, err := svc.FindByLogin(ctx, "rep2@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := svc.FindByLogin(ctx, "rep2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = svc.FindByLogin(ctx, "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, testSeed)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, AdminSeed{Username: "second", Email: "second@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := svc.FindByUsername(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.True(t, admin.Approved)
	assert.True(t, admin.IsActive)
	assert.Equal(t, "owner@example.com", admin.Email)

	_, err = svc.FindByUsername(ctx, "second")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAdminAccountIsProtected(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	_, err := svc.EnsureAdmin(ctx, testSeed)
	require.NoError(t, err)
	admin, err := svc.FindByUsername(ctx, "owner")
	require.NoError(t, err)

	err = svc.Delete(ctx, admin.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.SetActive(ctx, admin.ID, false)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	err = svc.Reject(ctx, admin.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	still, err := svc.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, still.IsActive)
}

func TestApprovalFlow(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	a := register(t, svc, "alpha")
	b := register(t, svc, "bravo")

	n, err := svc.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	approved, err := svc.Approve(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)

	_, err = svc.Approve(ctx, a.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	err = svc.Reject(ctx, a.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	require.NoError(t, svc.Reject(ctx, b.ID))
	_, err = svc.FindByID(ctx, b.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	reps, err := svc.FindApprovedSalesUsers(ctx)
	require.NoError(t, err)
	require.Len(t, reps, 1)
	assert.Equal(t, "alpha", reps[0].Username)

	_, err = svc.Approve(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSetActiveAndDelete(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	rep := register(t, svc, "charlie")

	u, err := svc.SetActive(ctx, rep.ID, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	reloaded, err := svc.FindByID(ctx, rep.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	_, err = store.Insert(ctx,
		`INSERT INTO orders (sales_user_id, client_name, total_amount) VALUES (?, ?, ?)`,
		rep.ID, "Client", "12.50")
	require.NoError(t, err)

	err = svc.Delete(ctx, rep.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	idle := register(t, svc, "delta")
	require.NoError(t, svc.Delete(ctx, idle.ID))
	_, err = svc.FindByID(ctx, idle.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
