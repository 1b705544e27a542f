package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u" bson:"-" json:"-"`

	ID           string     `bun:"id,pk" bson:"_id" json:"id"`
	Name         string     `bun:"name,notnull" bson:"name" json:"name"`
	Email        string     `bun:"email,notnull,unique" bson:"email" json:"email"`
	PasswordHash string     `bun:"password_hash,notnull" bson:"password_hash" json:"-"`
	IsActive     bool       `bun:"is_active,notnull" bson:"is_active" json:"is_active"`
	CreatedAt    time.Time  `bun:"created_at,notnull" bson:"created_at" json:"created_at"`
	LastLogin    *time.Time `bun:"last_login" bson:"last_login,omitempty" json:"last_login"`
}

// Admin accounts live in their own collection and are never created through the API.
type Admin struct {
	bun.BaseModel `bun:"table:admins,alias:a" bson:"-" json:"-"`

	ID           string    `bun:"id,pk" bson:"_id" json:"id"`
	Name         string    `bun:"name,notnull" bson:"name" json:"name"`
	Email        string    `bun:"email,notnull,unique" bson:"email" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" bson:"password_hash" json:"-"`
	IsActive     bool      `bun:"is_active,notnull" bson:"is_active" json:"is_active"`
	CreatedAt    time.Time `bun:"created_at,notnull" bson:"created_at" json:"created_at"`
}

// User sort keys accepted by the admin listing.
const (
	SortByName      = "name"
	SortByEmail     = "email"
	SortByLastLogin = "last_login"
	SortByCreatedAt = "created_at"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)
