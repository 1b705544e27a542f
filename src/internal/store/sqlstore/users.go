package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

type userRepository struct {
	db bun.IDB
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Error("Failed to insert user")
		return insertError(err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "u.email = ?", email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "u.id = ?", id)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().Model(user).Where(where, arg).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to get user")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, query store.UserListQuery) ([]*models.User, error) {
	query = query.Normalize()

	users := make([]*models.User, 0)
	err := r.db.NewSelect().
		Model(&users).
		OrderExpr("? "+strings.ToUpper(query.SortOrder), bun.Ident("u."+query.SortBy)).
		OrderExpr("u.id " + strings.ToUpper(query.SortOrder)).
		Scan(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list users")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}

	logrus.WithFields(logrus.Fields{
		"count":      len(users),
		"sort_by":    query.SortBy,
		"sort_order": query.SortOrder,
	}).Debug("Retrieved users successfully")

	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db.NewSelect().Model((*models.User)(nil)))
}

func (r *userRepository) CountActive(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db.NewSelect().Model((*models.User)(nil)).Where("u.is_active = ?", true))
}

func (r *userRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, r.db.NewSelect().Model((*models.User)(nil)).Where("u.created_at >= ?", since.UTC()))
}

func (r *userRepository) count(ctx context.Context, q *bun.SelectQuery) (int64, error) {
	n, err := q.Count(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to count users")
		return 0, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return int64(n), nil
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, id, "is_active = ?", active)
}

func (r *userRepository) SetName(ctx context.Context, id, name string) error {
	return r.update(ctx, id, "name = ?", name)
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, "last_login = ?", at.UTC())
}

func (r *userRepository) update(ctx context.Context, id, set string, value interface{}) error {
	res, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set(set, value).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("Failed to update user")
		return fmt.Errorf("%w: %v", models.ErrDatabaseUpdate, err)
	}
	return expectOne(res, id)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("Failed to delete user")
		return fmt.Errorf("%w: %v", models.ErrDatabaseDelete, err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	if n == 0 {
		logrus.WithField("user_id", id).Debug("No user matched")
		return models.ErrUserNotFound
	}
	return nil
}

type adminRepository struct {
	db bun.IDB
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if _, err := r.db.NewInsert().Model(admin).Exec(ctx); err != nil {
		logrus.WithError(err).WithField("email", admin.Email).Error("Failed to insert admin")
		return insertError(err)
	}
	return nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	admin := new(models.Admin)
	err := r.db.NewSelect().Model(admin).Where("a.email = ?", email).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrAdminNotFound
		}
		logrus.WithError(err).Error("Failed to get admin")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return admin, nil
}
