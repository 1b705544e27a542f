package auth

import (
	"context"
	"errors"
	"time"

	"account-admin-svc/src/internal/activity"
	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/password"
	"account-admin-svc/src/internal/response"
	"account-admin-svc/src/internal/store"
	"account-admin-svc/src/internal/throttle"
	"account-admin-svc/src/internal/token"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	scopeUser  = "user"
	scopeAdmin = "admin"
)

type Service interface {
	Register(ctx context.Context, req *RegisterRequest, origin activity.Origin) (*UserTokenResponse, error)
	Login(ctx context.Context, req *LoginRequest, origin activity.Origin) (*UserTokenResponse, error)
	AdminLogin(ctx context.Context, req *LoginRequest, origin activity.Origin) (*AdminTokenResponse, error)
}

type authService struct {
	store    store.Store
	hasher   *password.Hasher
	tokens   *token.Service
	recorder *activity.Recorder
	limiter  throttle.Limiter
	now      func() time.Time
}

func NewAuthService(st store.Store, hasher *password.Hasher, tokens *token.Service,
	recorder *activity.Recorder, limiter throttle.Limiter) Service {
	if limiter == nil {
		limiter = throttle.Noop{}
	}
	return &authService{
		store:    st,
		hasher:   hasher,
		tokens:   tokens,
		recorder: recorder,
		limiter:  limiter,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest, origin activity.Origin) (*UserTokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, response.Invalid(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	issued, err := s.tokens.IssueUser(req.Email)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}

	var recorded *models.ActivityLog
	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.Users().GetByEmail(ctx, req.Email)
		switch {
		case err == nil:
			return models.ErrEmailTaken
		case !errors.Is(err, models.ErrUserNotFound):
			return err
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, models.ErrDuplicateRecord) {
				return models.ErrEmailTaken
			}
			return err
		}

		recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
			ActorID:     user.ID,
			ActorName:   user.Name,
			Type:        models.ActivityRegister,
			Description: "User " + user.Name + " registered",
			Details:     map[string]any{"email": user.Email},
			Origin:      origin,
		})
		return err
	})
	if err != nil {
		logrus.WithError(err).WithField("email", req.Email).Warn("Registration failed")
		return nil, err
	}
	s.recorder.Publish(recorded)

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return &UserTokenResponse{
		AccessToken: issued.Token,
		TokenType:   token.TypeBearer,
		ExpiresAt:   issued.ExpiresAt,
		User:        user,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest, origin activity.Origin) (*UserTokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, response.Invalid(err)
	}

	key := throttle.Key(scopeUser, origin.IPAddress, req.Email)
	if err := s.checkThrottle(ctx, key, req.Email, origin); err != nil {
		return nil, err
	}

	var (
		user     *models.User
		outcome  error
		recorded *models.ActivityLog
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		found, err := tx.Users().GetByEmail(ctx, req.Email)
		if err != nil && !errors.Is(err, models.ErrUserNotFound) {
			return err
		}

		if !s.verifyUser(req.Password, found) {
			outcome = models.ErrInvalidCredentials
			recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
				ActorName:   req.Email,
				Type:        models.ActivityLoginFailed,
				Description: "Failed login attempt for " + req.Email,
				Details:     map[string]any{"email": req.Email},
				Origin:      origin,
			})
			return err
		}

		if !found.IsActive {
			outcome = models.ErrInactiveAccount
			recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
				ActorID:     found.ID,
				ActorName:   found.Name,
				Type:        models.ActivityLoginFailed,
				Description: "Login attempt for inactive user " + found.Name,
				Details:     map[string]any{"email": found.Email, "reason": "inactive"},
				Origin:      origin,
			})
			return err
		}

		now := s.now().UTC()
		if err := tx.Users().TouchLastLogin(ctx, found.ID, now); err != nil {
			return err
		}
		found.LastLogin = &now
		user = found

		recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
			ActorID:     found.ID,
			ActorName:   found.Name,
			Type:        models.ActivityLogin,
			Description: "User " + found.Name + " logged in",
			Details:     map[string]any{"email": found.Email},
			Origin:      origin,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Publish(recorded)

	if outcome != nil {
		s.afterFailure(ctx, key, outcome)
		logrus.WithField("email", req.Email).WithError(outcome).Warn("User login rejected")
		return nil, outcome
	}
	s.afterSuccess(ctx, key)

	issued, err := s.tokens.IssueUser(user.Email)
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("User logged in")
	return &UserTokenResponse{
		AccessToken: issued.Token,
		TokenType:   token.TypeBearer,
		ExpiresAt:   issued.ExpiresAt,
		User:        user,
	}, nil
}

func (s *authService) AdminLogin(ctx context.Context, req *LoginRequest, origin activity.Origin) (*AdminTokenResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, response.Invalid(err)
	}

	key := throttle.Key(scopeAdmin, origin.IPAddress, req.Email)
	if err := s.checkThrottle(ctx, key, req.Email, origin); err != nil {
		return nil, err
	}

	var (
		admin    *models.Admin
		outcome  error
		recorded *models.ActivityLog
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		found, err := tx.Admins().GetByEmail(ctx, req.Email)
		if err != nil && !errors.Is(err, models.ErrAdminNotFound) {
			return err
		}

		if !s.verifyAdmin(req.Password, found) {
			outcome = models.ErrInvalidCredentials
			recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
				ActorName:   req.Email,
				Type:        models.ActivityAdminLoginFailed,
				Description: "Failed admin login attempt for " + req.Email,
				Details:     map[string]any{"email": req.Email, "admin_attempt": true},
				Origin:      origin,
			})
			return err
		}

		if !found.IsActive {
			outcome = models.ErrInactiveAccount
			recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
				ActorID:     found.ID,
				ActorName:   found.Name,
				Type:        models.ActivityAdminLoginFailed,
				Description: "Login attempt for inactive admin " + found.Name,
				Details:     map[string]any{"email": found.Email, "admin_attempt": true, "reason": "inactive"},
				Origin:      origin,
			})
			return err
		}

		admin = found
		recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
			ActorID:     found.ID,
			ActorName:   found.Name,
			Type:        models.ActivityAdminLogin,
			Description: "Admin " + found.Name + " logged in",
			Details:     map[string]any{"email": found.Email, "admin_login": true},
			Origin:      origin,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Publish(recorded)

	if outcome != nil {
		s.afterFailure(ctx, key, outcome)
		logrus.WithField("email", req.Email).WithError(outcome).Warn("Admin login rejected")
		return nil, outcome
	}
	s.afterSuccess(ctx, key)

	issued, err := s.tokens.IssueAdmin(admin.Email)
	if err != nil {
		return nil, err
	}

	logrus.WithField("admin_id", admin.ID).Info("Admin logged in")
	return &AdminTokenResponse{
		AccessToken: issued.Token,
		TokenType:   token.TypeBearer,
		ExpiresAt:   issued.ExpiresAt,
		Admin:       admin,
	}, nil
}

// verifyUser compares the password, spending the same bcrypt work when the account is missing.
func (s *authService) verifyUser(plaintext string, user *models.User) bool {
	if user == nil {
		return s.hasher.VerifyMissing(plaintext)
	}
	return s.hasher.Verify(plaintext, user.PasswordHash)
}

func (s *authService) verifyAdmin(plaintext string, admin *models.Admin) bool {
	if admin == nil {
		return s.hasher.VerifyMissing(plaintext)
	}
	return s.hasher.Verify(plaintext, admin.PasswordHash)
}

// checkThrottle records a login_throttled entry and fails when key is over its limit.
// Throttle backend errors fail open.
func (s *authService) checkThrottle(ctx context.Context, key, email string, origin activity.Origin) error {
	blocked, err := s.limiter.Blocked(ctx, key)
	if err != nil {
		logrus.WithError(err).Warn("Login throttle unavailable, allowing attempt")
		return nil
	}
	if !blocked {
		return nil
	}

	var recorded *models.ActivityLog
	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		recorded, err = s.recorder.Record(ctx, tx.Activities(), activity.Event{
			ActorName:   email,
			Type:        models.ActivityLoginThrottled,
			Description: "Login attempt for " + email + " blocked after repeated failures",
			Details:     map[string]any{"email": email},
			Origin:      origin,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.recorder.Publish(recorded)

	logrus.WithFields(logrus.Fields{
		"email": email,
		"ip":    origin.IPAddress,
	}).Warn("Login attempt throttled")
	return models.ErrTooManyAttempts
}

func (s *authService) afterFailure(ctx context.Context, key string, outcome error) {
	if !errors.Is(outcome, models.ErrInvalidCredentials) {
		return
	}
	if err := s.limiter.Fail(ctx, key); err != nil {
		logrus.WithError(err).Warn("Failed to count login failure")
	}
}

func (s *authService) afterSuccess(ctx context.Context, key string) {
	if err := s.limiter.Reset(ctx, key); err != nil {
		logrus.WithError(err).Warn("Failed to reset login failures")
	}
}
