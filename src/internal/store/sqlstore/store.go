package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Store implements store.Store on top of bun (SQLite or PostgreSQL).
type Store struct {
	db *bun.DB
}

var _ store.Store = (*Store)(nil)

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn inside a database transaction; returning an error rolls back
// every write made through tx, including activity appends.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &scope{db: tx})
	})
}

func (s *Store) Migrate(ctx context.Context) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Admin)(nil),
		(*models.ActivityLog)(nil),
	}
	for _, model := range tables {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			logrus.WithError(err).Error("Failed to create table")
			return fmt.Errorf("%w: create table: %v", models.ErrDatabaseQuery, err)
		}
	}

	indexes := []struct {
		name   string
		column string
	}{
		{name: "idx_activity_logs_timestamp", column: "timestamp"},
		{name: "idx_activity_logs_type", column: "type"},
		{name: "idx_activity_logs_user_id", column: "user_id"},
	}
	for _, idx := range indexes {
		_, err := s.db.NewCreateIndex().
			Model((*models.ActivityLog)(nil)).
			Index(idx.name).
			Column(idx.column).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			logrus.WithError(err).WithField("index", idx.name).Error("Failed to create index")
			return fmt.Errorf("%w: create index: %v", models.ErrDatabaseQuery, err)
		}
	}

	logrus.Info("Database schema is up to date")
	return nil
}

func (s *Store) Counts(ctx context.Context) (*models.TableCounts, error) {
	users, err := s.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count users: %v", models.ErrDatabaseQuery, err)
	}
	admins, err := s.db.NewSelect().Model((*models.Admin)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count admins: %v", models.ErrDatabaseQuery, err)
	}
	activities, err := s.db.NewSelect().Model((*models.ActivityLog)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count activities: %v", models.ErrDatabaseQuery, err)
	}

	return &models.TableCounts{
		Users:      int64(users),
		Admins:     int64(admins),
		Activities: int64(activities),
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scope struct {
	db bun.IDB
}

func (s *scope) Users() store.UserRepository {
	return &userRepository{db: s.db}
}

func (s *scope) Admins() store.AdminRepository {
	return &adminRepository{db: s.db}
}

func (s *scope) Activities() store.ActivityRepository {
	return &activityRepository{db: s.db}
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.IntegrityViolation()
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func insertError(err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", models.ErrDuplicateRecord, err)
	}
	return fmt.Errorf("%w: %v", models.ErrDatabaseInsert, err)
}
