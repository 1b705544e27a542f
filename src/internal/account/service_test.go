package account

import (
	"context"
	"testing"
	"time"

	"account-admin-svc/src/clients"
	"account-admin-svc/src/internal/activity"
	"account-admin-svc/src/internal/config"
	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/response"
	"account-admin-svc/src/internal/store"
	"account-admin-svc/src/internal/store/sqlstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (store.Store, Service, *models.User) {
	t.Helper()

	db, err := clients.NewDatabase(&config.Database{Url: ":memory:"})
	require.NoError(t, err)
	st := sqlstore.New(db)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         "Ann",
		Email:        "ann@example.com",
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, st.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.Users().Create(ctx, user)
	}))

	return st, NewAccountService(st, activity.NewRecorder(nil)), user
}

func listActivities(t *testing.T, st store.Store, types ...string) []*models.ActivityLog {
	t.Helper()
	var entries []*models.ActivityLog
	require.NoError(t, st.InTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		var err error
		entries, err = tx.Activities().List(ctx, store.ActivityQuery{Types: types, Limit: 100})
		return err
	}))
	return entries
}

func TestMe(t *testing.T) {
	_, svc, user := setup(t)

	got, err := svc.Me(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Ann", got.Name)

	_, err = svc.Me(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestDashboardRecordsView(t *testing.T) {
	st, svc, user := setup(t)

	res, err := svc.Dashboard(context.Background(), user.Email, activity.Origin{IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to your dashboard, Ann!", res.Message)
	assert.Equal(t, 15, res.DashboardData.TotalPosts)
	assert.Len(t, res.DashboardData.RecentActivity, 3)

	entries := listActivities(t, st, models.ActivityDashboardView)
	require.Len(t, entries, 1)
	assert.Equal(t, user.ID, *entries[0].UserID)
}

func TestUpdateProfile(t *testing.T) {
	st, svc, user := setup(t)

	updated, err := svc.UpdateProfile(context.Background(), user.Email, &UpdateProfileRequest{Name: " Anna "}, activity.Origin{})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.Name)

	me, err := svc.Me(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, "Anna", me.Name)

	entries := listActivities(t, st, models.ActivityProfileUpdate)
	require.Len(t, entries, 1)
	assert.Equal(t, "User updated profile name from Ann to Anna", entries[0].Description)
	assert.Equal(t, map[string]any{"old_name": "Ann", "new_name": "Anna"}, entries[0].DetailMap())
}

func TestUpdateProfileRejectsEmptyName(t *testing.T) {
	st, svc, user := setup(t)

	_, err := svc.UpdateProfile(context.Background(), user.Email, &UpdateProfileRequest{Name: "  "}, activity.Origin{})
	var validationErr *response.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Empty(t, listActivities(t, st, models.ActivityProfileUpdate))
}
