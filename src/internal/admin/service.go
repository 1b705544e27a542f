package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"account-admin-svc/src/internal/activity"
	"account-admin-svc/src/internal/config"
	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/password"
	"account-admin-svc/src/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Service interface {
	Me(ctx context.Context, email string) (*models.Admin, error)
	Dashboard(ctx context.Context, email string) (*DashboardResponse, error)
	GetUsers(ctx context.Context, email string, req *GetUsersRequest) (*GetUsersResponse, error)
	GetUser(ctx context.Context, email, userID string) (*UserDetailResponse, error)
	ActivateUser(ctx context.Context, email, userID string, origin activity.Origin) error
	DeactivateUser(ctx context.Context, email, userID string, origin activity.Origin) error
	DeleteUser(ctx context.Context, email, userID string, origin activity.Origin) error
	GetActivities(ctx context.Context, email string, req *GetActivitiesRequest) (*GetActivitiesResponse, error)
	EnsureDefaultAdmin(ctx context.Context, bootstrap *config.BootstrapSettings) error
}

type adminService struct {
	store    store.Store
	hasher   *password.Hasher
	recorder *activity.Recorder
	now      func() time.Time
}

func NewAdminService(st store.Store, hasher *password.Hasher, recorder *activity.Recorder) Service {
	return &adminService{
		store:    st,
		hasher:   hasher,
		recorder: recorder,
		now:      time.Now,
	}
}

func (s *adminService) Me(ctx context.Context, email string) (*models.Admin, error) {
	var admin *models.Admin
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		admin, err = resolve(ctx, tx, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *adminService) Dashboard(ctx context.Context, email string) (*DashboardResponse, error) {
	logrus.Debug("Getting admin dashboard")

	result := &DashboardResponse{}
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := resolve(ctx, tx, email); err != nil {
			return err
		}

		users := tx.Users()
		total, err := users.Count(ctx)
		if err != nil {
			return err
		}
		active, err := users.CountActive(ctx)
		if err != nil {
			return err
		}
		newThisMonth, err := users.CountCreatedSince(ctx, startOfMonth(s.now()))
		if err != nil {
			return err
		}

		recent, err := tx.Activities().List(ctx, store.ActivityQuery{Limit: activity.LimitDashboard})
		if err != nil {
			return err
		}

		result.Stats = models.Stats{
			Total:        total,
			Active:       active,
			Inactive:     total - active,
			NewThisMonth: newThisMonth,
		}
		result.RecentActivities = models.ToViews(recent)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"total":        result.Total,
		"active":       result.Active,
		"inactive":     result.Inactive,
		"newThisMonth": result.NewThisMonth,
	}).Info("Successfully retrieved user statistics")
	return result, nil
}

func (s *adminService) GetUsers(ctx context.Context, email string, req *GetUsersRequest) (*GetUsersResponse, error) {
	query := store.UserListQuery{SortBy: req.SortBy, SortOrder: req.SortOrder}.Normalize()

	logrus.WithFields(logrus.Fields{
		"sortBy": query.SortBy,
		"order":  query.SortOrder,
	}).Debug("Getting all users")

	var users []*models.User
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := resolve(ctx, tx, email); err != nil {
			return err
		}
		var err error
		users, err = tx.Users().List(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}

	if users == nil {
		users = []*models.User{}
	}
	logrus.WithField("users_count", len(users)).Info("Successfully retrieved users")
	return &GetUsersResponse{Users: users, Total: len(users)}, nil
}

func (s *adminService) GetUser(ctx context.Context, email, userID string) (*UserDetailResponse, error) {
	result := &UserDetailResponse{}
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := resolve(ctx, tx, email); err != nil {
			return err
		}

		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		recent, err := tx.Activities().List(ctx, store.ActivityQuery{UserID: userID, Limit: activity.LimitUser})
		if err != nil {
			return err
		}

		result.User = user
		result.RecentActivities = models.ToViews(recent)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *adminService) ActivateUser(ctx context.Context, email, userID string, origin activity.Origin) error {
	return s.setActive(ctx, email, userID, true, origin)
}

func (s *adminService) DeactivateUser(ctx context.Context, email, userID string, origin activity.Origin) error {
	return s.setActive(ctx, email, userID, false, origin)
}

func (s *adminService) setActive(ctx context.Context, email, userID string, active bool, origin activity.Origin) error {
	action, verb := ActionDeactivate, "deactivated"
	if active {
		action, verb = ActionActivate, "activated"
	}

	return s.manageUser(ctx, email, userID, action, origin, func(ctx context.Context, tx store.Tx, admin *models.Admin, user *models.User) (string, error) {
		if err := tx.Users().SetActive(ctx, user.ID, active); err != nil {
			return "", err
		}
		return "Admin " + admin.Name + " " + verb + " user " + user.Name, nil
	})
}

func (s *adminService) DeleteUser(ctx context.Context, email, userID string, origin activity.Origin) error {
	return s.manageUser(ctx, email, userID, ActionDelete, origin, func(ctx context.Context, tx store.Tx, admin *models.Admin, user *models.User) (string, error) {
		if err := tx.Users().Delete(ctx, user.ID); err != nil {
			return "", err
		}
		return "Admin " + admin.Name + " deleted user " + user.Name, nil
	})
}

type userAction func(ctx context.Context, tx store.Tx, admin *models.Admin, user *models.User) (string, error)

// manageUser resolves the admin and target user, applies fn and records one
// admin_action entry in the same unit of work.
func (s *adminService) manageUser(ctx context.Context, email, userID, action string, origin activity.Origin, fn userAction) error {
	var recorded *models.ActivityLog
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		admin, err := resolve(ctx, tx, email)
		if err != nil {
			return err
		}

		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}

		description, err := fn(ctx, tx, admin, user)
		if err != nil {
			return err
		}

		recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
			ActorID:     admin.ID,
			ActorName:   admin.Name,
			Type:        models.ActivityAdminAction,
			Description: description,
			Details: map[string]any{
				"action":         action,
				"target_user_id": user.ID,
				"admin_action":   true,
			},
			Origin: origin,
		})
		return err
	})
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":  action,
			"user_id": userID,
		}).Warn("Admin user action failed")
		return err
	}
	s.recorder.Publish(recorded)

	logrus.WithFields(logrus.Fields{
		"action":  action,
		"user_id": userID,
	}).Info("Admin user action applied")
	return nil
}

func (s *adminService) GetActivities(ctx context.Context, email string, req *GetActivitiesRequest) (*GetActivitiesResponse, error) {
	query := store.ActivityQuery{
		Since: activity.Since(req.TimeRange, s.now()),
		Types: activity.CategoryTypes(req.Filter),
		Limit: activity.LimitGeneral,
	}

	logrus.WithFields(logrus.Fields{
		"filter":     req.Filter,
		"time_range": req.TimeRange,
	}).Debug("Getting activities")

	var entries []*models.ActivityLog
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := resolve(ctx, tx, email); err != nil {
			return err
		}
		var err error
		entries, err = tx.Activities().List(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}

	views := models.ToViews(entries)
	return &GetActivitiesResponse{Activities: views, Total: len(views)}, nil
}

// EnsureDefaultAdmin creates the bootstrap admin unless one with that email exists.
func (s *adminService) EnsureDefaultAdmin(ctx context.Context, bootstrap *config.BootstrapSettings) error {
	email := strings.ToLower(strings.TrimSpace(bootstrap.AdminEmail))
	if email == "" || bootstrap.AdminPassword == "" {
		logrus.Warn("Default admin credentials not configured, skipping bootstrap")
		return nil
	}

	hash, err := s.hasher.Hash(bootstrap.AdminPassword)
	if err != nil {
		return err
	}

	created := false
	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Admins().GetByEmail(ctx, email)
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, models.ErrAdminNotFound):
			return err
		}

		name := bootstrap.AdminName
		if name == "" {
			name = "System Admin"
		}
		err = tx.Admins().Create(ctx, &models.Admin{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
			CreatedAt:    s.now().UTC(),
		})
		created = err == nil
		return err
	})
	if errors.Is(err, models.ErrDuplicateRecord) {
		logrus.WithField("email", email).Debug("Default admin created concurrently")
		return nil
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to create default admin")
		return err
	}

	if created {
		logrus.WithField("email", email).Info("Default admin created")
	} else {
		logrus.WithField("email", email).Debug("Default admin already exists")
	}
	return nil
}

// resolve re-reads the admin token subject; a vanished admin is unauthenticated.
func resolve(ctx context.Context, tx store.Tx, email string) (*models.Admin, error) {
	admin, err := tx.Admins().GetByEmail(ctx, email)
	if errors.Is(err, models.ErrAdminNotFound) {
		logrus.WithField("email", email).Warn("Admin token subject no longer exists")
		return nil, models.ErrUnauthenticated
	}
	return admin, err
}

func startOfMonth(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
