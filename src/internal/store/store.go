package store

import (
	"context"
	"time"

	"account-admin-svc/src/internal/models"
)

// Store is the persistence layer for users, admins and activity entries.
type Store interface {
	// InTx runs fn as one unit of work. Repositories reached through tx must
	// not be used after fn returns.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Counts(ctx context.Context) (*models.TableCounts, error)
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

type Tx interface {
	Users() UserRepository
	Admins() AdminRepository
	Activities() ActivityRepository
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, query UserListQuery) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetName(ctx context.Context, id, name string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type ActivityRepository interface {
	Append(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, query ActivityQuery) ([]*models.ActivityLog, error)
}

// UserListQuery orders the full user listing. Zero values mean created_at desc.
type UserListQuery struct {
	SortBy    string
	SortOrder string
}

// Normalize maps unknown sort keys to created_at. An empty order means desc and
// any order other than desc means asc.
func (q UserListQuery) Normalize() UserListQuery {
	switch q.SortBy {
	case models.SortByName, models.SortByEmail, models.SortByLastLogin, models.SortByCreatedAt:
	default:
		q.SortBy = models.SortByCreatedAt
	}
	if q.SortOrder == "" || q.SortOrder == models.SortDesc {
		q.SortOrder = models.SortDesc
	} else {
		q.SortOrder = models.SortAsc
	}
	return q
}

// ActivityQuery filters activity entries; results are always newest first.
type ActivityQuery struct {
	Since  *time.Time
	Types  []string
	UserID string
	Limit  int
}
