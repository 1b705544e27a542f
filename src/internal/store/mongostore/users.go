package mongostore

import (
	"context"
	"fmt"
	"time"

	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	collection *mongo.Collection
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Error("Failed to insert user")
		return insertError(err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if isNoDocuments(err) {
			return nil, models.ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to get user")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return &user, nil
}

// SortDocument builds the find sort for a normalized listing query.
func SortDocument(query store.UserListQuery) bson.D {
	query = query.Normalize()
	direction := -1
	if query.SortOrder == models.SortAsc {
		direction = 1
	}
	return bson.D{{Key: query.SortBy, Value: direction}, {Key: "_id", Value: direction}}
}

func (r *userRepository) List(ctx context.Context, query store.UserListQuery) ([]*models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(SortDocument(query)))
	if err != nil {
		logrus.WithError(err).Error("Failed to find users")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	defer cursor.Close(ctx)

	users, err := decodeUsers(ctx, cursor)
	if err != nil {
		return nil, err
	}

	logrus.WithField("count", len(users)).Debug("Retrieved users successfully")
	return users, nil
}

// decodeUsers fails the whole listing on the first undecodable document.
func decodeUsers(ctx context.Context, cursor *mongo.Cursor) ([]*models.User, error) {
	users := make([]*models.User, 0)
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			logrus.WithError(err).Error("Failed to decode user")
			return nil, fmt.Errorf("%w: decode user: %v", models.ErrDatabaseQuery, err)
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		logrus.WithError(err).Error("Cursor error")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *userRepository) CountActive(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{"is_active": true})
}

func (r *userRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, bson.M{"created_at": bson.M{"$gte": since}})
}

func (r *userRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to count users")
		return 0, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return count, nil
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.set(ctx, id, bson.M{"is_active": active})
}

func (r *userRepository) SetName(ctx context.Context, id, name string) error {
	return r.set(ctx, id, bson.M{"name": name})
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.set(ctx, id, bson.M{"last_login": at})
}

func (r *userRepository) set(ctx context.Context, id string, fields bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("Failed to update user")
		return fmt.Errorf("%w: %v", models.ErrDatabaseUpdate, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithError(err).WithField("user_id", id).Error("Failed to delete user")
		return fmt.Errorf("%w: %v", models.ErrDatabaseDelete, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

type adminRepository struct {
	collection *mongo.Collection
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if _, err := r.collection.InsertOne(ctx, admin); err != nil {
		logrus.WithError(err).WithField("email", admin.Email).Error("Failed to insert admin")
		return insertError(err)
	}
	return nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&admin); err != nil {
		if isNoDocuments(err) {
			return nil, models.ErrAdminNotFound
		}
		logrus.WithError(err).Error("Failed to get admin")
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseQuery, err)
	}
	return &admin, nil
}
