package mongostore

import (
	"context"
	"fmt"

	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type activityRepository struct {
	collection *mongo.Collection
}

func (r *activityRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		logrus.WithError(err).WithField("type", entry.Type).Error("Failed to append activity")
		return fmt.Errorf("%w: %v", models.ErrDatabaseInsert, err)
	}
	return nil
}

// ActivityFilter translates an activity query into a find filter.
func ActivityFilter(query store.ActivityQuery) bson.M {
	filter := bson.M{}
	if query.Since != nil {
		filter["timestamp"] = bson.M{"$gte": *query.Since}
	}
	if len(query.Types) > 0 {
		filter["type"] = bson.M{"$in": query.Types}
	}
	if query.UserID != "" {
		filter["user_id"] = query.UserID
	}
	return filter
}

func (r *activityRepository) List(ctx context.Context, query store.ActivityQuery) ([]*models.ActivityLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}

	cursor, err := r.collection.Find(ctx, ActivityFilter(query), opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find activities")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	defer cursor.Close(ctx)

	entries := make([]*models.ActivityLog, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		logrus.WithError(err).Error("Failed to decode activities")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return entries, nil
}
