package account

import (
	"context"
	"errors"

	"account-admin-svc/src/internal/activity"
	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/response"
	"account-admin-svc/src/internal/store"

	"github.com/sirupsen/logrus"
)

type Service interface {
	Me(ctx context.Context, email string) (*models.User, error)
	Dashboard(ctx context.Context, email string, origin activity.Origin) (*DashboardResponse, error)
	UpdateProfile(ctx context.Context, email string, req *UpdateProfileRequest, origin activity.Origin) (*models.User, error)
}

type accountService struct {
	store    store.Store
	recorder *activity.Recorder
}

func NewAccountService(st store.Store, recorder *activity.Recorder) Service {
	return &accountService{
		store:    st,
		recorder: recorder,
	}
}

func (s *accountService) Me(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = resolve(ctx, tx, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *accountService) Dashboard(ctx context.Context, email string, origin activity.Origin) (*DashboardResponse, error) {
	var (
		user     *models.User
		recorded *models.ActivityLog
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = resolve(ctx, tx, email)
		if err != nil {
			return err
		}

		recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
			ActorID:     user.ID,
			ActorName:   user.Name,
			Type:        models.ActivityDashboardView,
			Description: "User " + user.Name + " accessed dashboard",
			Origin:      origin,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Publish(recorded)

	return &DashboardResponse{
		Message:       "Welcome to your dashboard, " + user.Name + "!",
		UserID:        user.ID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		DashboardData: placeholderDashboard(),
	}, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, email string, req *UpdateProfileRequest, origin activity.Origin) (*models.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, response.Invalid(err)
	}

	var (
		user     *models.User
		recorded *models.ActivityLog
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = resolve(ctx, tx, email)
		if err != nil {
			return err
		}

		oldName := user.Name
		if err := tx.Users().SetName(ctx, user.ID, req.Name); err != nil {
			return err
		}
		user.Name = req.Name

		recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
			ActorID:     user.ID,
			ActorName:   user.Name,
			Type:        models.ActivityProfileUpdate,
			Description: "User updated profile name from " + oldName + " to " + req.Name,
			Details:     map[string]any{"old_name": oldName, "new_name": req.Name},
			Origin:      origin,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Publish(recorded)

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"new_name": user.Name,
	}).Info("Profile updated")
	return user, nil
}

// resolve re-reads the token subject; a vanished account is unauthenticated.
func resolve(ctx context.Context, tx store.Tx, email string) (*models.User, error) {
	user, err := tx.Users().GetByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		logrus.WithField("email", email).Warn("Token subject no longer exists")
		return nil, models.ErrUnauthenticated
	}
	return user, err
}
