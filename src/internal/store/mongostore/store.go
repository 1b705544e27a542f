package mongostore

import (
	"context"
	"errors"
	"fmt"

	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection      = "users"
	AdminsCollection     = "admins"
	ActivitiesCollection = "activity_logs"
)

// Store implements store.Store on MongoDB. InTx does not open a multi-document
// transaction, so standalone servers work; writes inside fn are applied in order.
type Store struct {
	client     *mongo.Client
	database   *mongo.Database
	users      *mongo.Collection
	admins     *mongo.Collection
	activities *mongo.Collection
}

var _ store.Store = (*Store)(nil)

func New(client *mongo.Client, database *mongo.Database) *Store {
	return &Store{
		client:     client,
		database:   database,
		users:      database.Collection(UsersCollection),
		admins:     database.Collection(AdminsCollection),
		activities: database.Collection(ActivitiesCollection),
	}
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return fn(ctx, s)
}

func (s *Store) Users() store.UserRepository {
	return &userRepository{collection: s.users}
}

func (s *Store) Admins() store.AdminRepository {
	return &adminRepository{collection: s.admins}
}

func (s *Store) Activities() store.ActivityRepository {
	return &activityRepository{collection: s.activities}
}

func (s *Store) Migrate(ctx context.Context) error {
	uniqueEmail := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.users.Indexes().CreateOne(ctx, uniqueEmail); err != nil {
		return fmt.Errorf("%w: users index: %v", models.ErrDatabaseQuery, err)
	}
	if _, err := s.admins.Indexes().CreateOne(ctx, uniqueEmail); err != nil {
		return fmt.Errorf("%w: admins index: %v", models.ErrDatabaseQuery, err)
	}

	activityIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	if _, err := s.activities.Indexes().CreateMany(ctx, activityIndexes); err != nil {
		return fmt.Errorf("%w: activity indexes: %v", models.ErrDatabaseQuery, err)
	}

	logrus.Info("MongoDB indexes are up to date")
	return nil
}

func (s *Store) Counts(ctx context.Context) (*models.TableCounts, error) {
	users, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: count users: %v", models.ErrDatabaseQuery, err)
	}
	admins, err := s.admins.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: count admins: %v", models.ErrDatabaseQuery, err)
	}
	activities, err := s.activities.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: count activities: %v", models.ErrDatabaseQuery, err)
	}
	return &models.TableCounts{Users: users, Admins: admins, Activities: activities}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close is a no-op; the client is owned by clients.MongoDB.
func (s *Store) Close() error {
	return nil
}

func insertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", models.ErrDuplicateRecord, err)
	}
	return fmt.Errorf("%w: %v", models.ErrDatabaseInsert, err)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
