package sqlstore

import (
	"context"
	"fmt"

	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

type activityRepository struct {
	db bun.IDB
}

func (r *activityRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		logrus.WithError(err).WithField("type", entry.Type).Error("Failed to append activity")
		return fmt.Errorf("%w: %v", models.ErrDatabaseInsert, err)
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, query store.ActivityQuery) ([]*models.ActivityLog, error) {
	entries := make([]*models.ActivityLog, 0)
	q := r.db.NewSelect().Model(&entries)

	if query.Since != nil {
		q = q.Where("al.timestamp >= ?", query.Since.UTC())
	}
	if len(query.Types) > 0 {
		q = q.Where("al.type IN (?)", bun.In(query.Types))
	}
	if query.UserID != "" {
		q = q.Where("al.user_id = ?", query.UserID)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	if err := q.OrderExpr("al.timestamp DESC").Scan(ctx); err != nil {
		logrus.WithError(err).Error("Failed to list activities")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return entries, nil
}
