package mongostore

import (
	"context"
	"testing"
	"time"

	"account-admin-svc/src/internal/models"
	"account-admin-svc/src/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestSortDocument(t *testing.T) {
	tests := []struct {
		name  string
		query store.UserListQuery
		want  bson.D
	}{
		{
			name:  "default",
			query: store.UserListQuery{},
			want:  bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
		},
		{
			name:  "name ascending",
			query: store.UserListQuery{SortBy: "name", SortOrder: "asc"},
			want:  bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			name:  "name descending breaks ties descending",
			query: store.UserListQuery{SortBy: "name", SortOrder: "desc"},
			want:  bson.D{{Key: "name", Value: -1}, {Key: "_id", Value: -1}},
		},
		{
			name:  "unknown key",
			query: store.UserListQuery{SortBy: "password_hash", SortOrder: "desc"},
			want:  bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SortDocument(tt.query))
		})
	}
}

func TestActivityFilter(t *testing.T) {
	since := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, bson.M{}, ActivityFilter(store.ActivityQuery{}))
	assert.Equal(t, bson.M{
		"timestamp": bson.M{"$gte": since},
		"type":      bson.M{"$in": []string{"login", "logout"}},
		"user_id":   "u1",
	}, ActivityFilter(store.ActivityQuery{
		Since:  &since,
		Types:  []string{"login", "logout"},
		UserID: "u1",
		Limit:  10,
	}))
}

func TestDecodeUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes every document", func(t *testing.T) {
		cursor, err := mongo.NewCursorFromDocuments([]interface{}{
			bson.M{"_id": "u1", "name": "Ann", "email": "ann@example.com", "is_active": true},
			bson.M{"_id": "u2", "name": "Sam", "email": "sam@example.com", "is_active": false},
		}, nil, nil)
		require.NoError(t, err)

		users, err := decodeUsers(ctx, cursor)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "u1", users[0].ID)
		assert.False(t, users[1].IsActive)
	})

	t.Run("malformed document fails the listing", func(t *testing.T) {
		cursor, err := mongo.NewCursorFromDocuments([]interface{}{
			bson.M{"_id": "u1", "name": "Ann", "email": "ann@example.com", "is_active": true},
			bson.M{"_id": "u2", "name": "Sam", "email": "sam@example.com", "is_active": "yes"},
		}, nil, nil)
		require.NoError(t, err)

		users, err := decodeUsers(ctx, cursor)
		assert.Nil(t, users)
		assert.ErrorIs(t, err, models.ErrDatabaseQuery)
	})
}
