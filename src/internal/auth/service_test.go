package auth

import (
	"context"
	"testing"
	"time"

	"account-admin-svc/src/clients"
	"account-admin-svc/src/internal/activity"
	"account-admin-svc/src/internal/config"
	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/password"
	"account-admin-svc/src/internal/response"
	"account-admin-svc/src/internal/store"
	"account-admin-svc/src/internal/store/sqlstore"
	"account-admin-svc/src/internal/throttle"
	"account-admin-svc/src/internal/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testOrigin = activity.Origin{IPAddress: "10.0.0.1", UserAgent: "go-test"}

type fixture struct {
	store   store.Store
	hasher  *password.Hasher
	tokens  *token.Service
	service Service
}

func setup(t *testing.T, limiter throttle.Limiter) *fixture {
	t.Helper()

	db, err := clients.NewDatabase(&config.Database{Url: ":memory:"})
	require.NoError(t, err)
	st := sqlstore.New(db)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	hasher := password.NewHasher(bcrypt.MinCost)
	tokens := token.NewService("user-secret", "admin-secret", time.Hour)
	return &fixture{
		store:   st,
		hasher:  hasher,
		tokens:  tokens,
		service: NewAuthService(st, hasher, tokens, activity.NewRecorder(nil), limiter),
	}
}

func (f *fixture) activities(t *testing.T, types ...string) []*models.ActivityLog {
	t.Helper()
	var entries []*models.ActivityLog
	err := f.store.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		entries, err = tx.Activities().List(ctx, store.ActivityQuery{Types: types, Limit: 100})
		return err
	})
	require.NoError(t, err)
	return entries
}

func (f *fixture) userCount(t *testing.T) int64 {
	t.Helper()
	counts, err := f.store.Counts(context.Background())
	require.NoError(t, err)
	return counts.Users
}

func (f *fixture) register(t *testing.T, name, email, pass string) *UserTokenResponse {
	t.Helper()
	res, err := f.service.Register(context.Background(), &RegisterRequest{Name: name, Email: email, Password: pass}, testOrigin)
	require.NoError(t, err)
	return res
}

func TestRegister(t *testing.T) {
	f := setup(t, nil)

	res := f.register(t, " Ann ", "Ann@Example.com", "secret-1")
	assert.Equal(t, token.TypeBearer, res.TokenType)
	assert.Equal(t, "Ann", res.User.Name)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.True(t, res.User.IsActive)
	assert.NotEqual(t, "secret-1", res.User.PasswordHash)

	subject, err := f.tokens.VerifyUser(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", subject)

	entries := f.activities(t, models.ActivityRegister)
	require.Len(t, entries, 1)
	assert.Equal(t, res.User.ID, *entries[0].UserID)
	assert.Equal(t, "10.0.0.1", *entries[0].IPAddress)
	assert.Equal(t, "ann@example.com", entries[0].DetailMap()["email"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := setup(t, nil)
	f.register(t, "Ann", "ann@example.com", "secret-1")

	_, err := f.service.Register(context.Background(),
		&RegisterRequest{Name: "Other", Email: "ANN@example.com", Password: "secret-2"}, testOrigin)
	assert.ErrorIs(t, err, models.ErrEmailTaken)
	assert.Equal(t, int64(1), f.userCount(t))
	assert.Len(t, f.activities(t, models.ActivityRegister), 1)
}

func TestRegisterValidation(t *testing.T) {
	f := setup(t, nil)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{name: "missing name", req: RegisterRequest{Email: "a@example.com", Password: "x"}},
		{name: "bad email", req: RegisterRequest{Name: "A", Email: "not-an-email", Password: "x"}},
		{name: "missing password", req: RegisterRequest{Name: "A", Email: "a@example.com"}},
		{name: "password too long", req: RegisterRequest{Name: "A", Email: "a@example.com", Password: string(make([]byte, 73))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.service.Register(context.Background(), &req, testOrigin)
			var validationErr *response.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
	assert.Equal(t, int64(0), f.userCount(t))
}

func TestLogin(t *testing.T) {
	f := setup(t, nil)
	f.register(t, "Ann", "ann@example.com", "secret-1")

	res, err := f.service.Login(context.Background(), &LoginRequest{Email: "ann@example.com", Password: "secret-1"}, testOrigin)
	require.NoError(t, err)
	require.NotNil(t, res.User.LastLogin)
	assert.Equal(t, "Ann", res.User.Name)

	entries := f.activities(t, models.ActivityLogin)
	require.Len(t, entries, 1)
	assert.Equal(t, res.User.ID, *entries[0].UserID)
}

func TestLoginWrongPasswordRecordsOneFailure(t *testing.T) {
	f := setup(t, nil)
	f.register(t, "Ann", "ann@example.com", "secret-1")

	_, err := f.service.Login(context.Background(), &LoginRequest{Email: "ann@example.com", Password: "wrong"}, testOrigin)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	entries := f.activities(t, models.ActivityLoginFailed)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UserID)
	assert.Equal(t, "ann@example.com", *entries[0].UserName)
	assert.Equal(t, "ann@example.com", entries[0].DetailMap()["email"])
	assert.Empty(t, f.activities(t, models.ActivityLogin))
}

func TestLoginUnknownEmail(t *testing.T) {
	f := setup(t, nil)

	_, err := f.service.Login(context.Background(), &LoginRequest{Email: "ghost@example.com", Password: "x"}, testOrigin)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Len(t, f.activities(t, models.ActivityLoginFailed), 1)
}

func TestLoginInactiveAccount(t *testing.T) {
	f := setup(t, nil)
	reg := f.register(t, "Ann", "ann@example.com", "secret-1")

	require.NoError(t, f.store.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.Users().SetActive(ctx, reg.User.ID, false)
	}))

	_, err := f.service.Login(context.Background(), &LoginRequest{Email: "ann@example.com", Password: "secret-1"}, testOrigin)
	assert.ErrorIs(t, err, models.ErrInactiveAccount)

	entries := f.activities(t, models.ActivityLoginFailed)
	require.Len(t, entries, 1)
	assert.Equal(t, "inactive", entries[0].DetailMap()["reason"])
}

func TestLoginThrottled(t *testing.T) {
	f := setup(t, throttle.NewMemory(throttle.Settings{Limit: 2, Window: time.Minute}))
	f.register(t, "Ann", "ann@example.com", "secret-1")

	bad := func() error {
		_, err := f.service.Login(context.Background(), &LoginRequest{Email: "ann@example.com", Password: "wrong"}, testOrigin)
		return err
	}
	assert.ErrorIs(t, bad(), models.ErrInvalidCredentials)
	assert.ErrorIs(t, bad(), models.ErrInvalidCredentials)
	assert.ErrorIs(t, bad(), models.ErrTooManyAttempts)

	_, err := f.service.Login(context.Background(), &LoginRequest{Email: "ann@example.com", Password: "secret-1"}, testOrigin)
	assert.ErrorIs(t, err, models.ErrTooManyAttempts)

	assert.Len(t, f.activities(t, models.ActivityLoginFailed), 2)
	assert.Len(t, f.activities(t, models.ActivityLoginThrottled), 2)
}

func TestLoginSuccessResetsThrottle(t *testing.T) {
	f := setup(t, throttle.NewMemory(throttle.Settings{Limit: 2, Window: time.Minute}))
	f.register(t, "Ann", "ann@example.com", "secret-1")

	_, err := f.service.Login(context.Background(), &LoginRequest{Email: "ann@example.com", Password: "wrong"}, testOrigin)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	_, err = f.service.Login(context.Background(), &LoginRequest{Email: "ann@example.com", Password: "secret-1"}, testOrigin)
	require.NoError(t, err)
	_, err = f.service.Login(context.Background(), &LoginRequest{Email: "ann@example.com", Password: "wrong"}, testOrigin)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestAdminLogin(t *testing.T) {
	f := setup(t, nil)

	hash, err := f.hasher.Hash("root-pass")
	require.NoError(t, err)
	admin := &models.Admin{
		ID:           uuid.NewString(),
		Name:         "Root",
		Email:        "root@example.com",
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.store.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.Admins().Create(ctx, admin)
	}))

	res, err := f.service.AdminLogin(context.Background(), &LoginRequest{Email: "root@example.com", Password: "root-pass"}, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, res.Admin.ID)

	subject, err := f.tokens.VerifyAdmin(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", subject)
	_, err = f.tokens.VerifyUser(res.AccessToken)
	assert.Error(t, err)

	_, err = f.service.AdminLogin(context.Background(), &LoginRequest{Email: "root@example.com", Password: "nope"}, testOrigin)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	assert.Len(t, f.activities(t, models.ActivityAdminLogin), 1)
	failed := f.activities(t, models.ActivityAdminLoginFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, true, failed[0].DetailMap()["admin_attempt"])
}

func TestUserCannotAdminLogin(t *testing.T) {
	f := setup(t, nil)
	f.register(t, "Ann", "ann@example.com", "secret-1")

	_, err := f.service.AdminLogin(context.Background(), &LoginRequest{Email: "ann@example.com", Password: "secret-1"}, testOrigin)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
