package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// ActivityLog is an append-only audit entry. UserID and UserName are snapshots
// and may refer to accounts that no longer exist.
type ActivityLog struct {
	bun.BaseModel `bun:"table:activity_logs,alias:al" bson:"-" json:"-"`

	ID          string    `bun:"id,pk" bson:"_id"`
	UserID      *string   `bun:"user_id" bson:"user_id,omitempty"`
	UserName    *string   `bun:"user_name" bson:"user_name,omitempty"`
	Type        string    `bun:"type,notnull" bson:"type"`
	Description string    `bun:"description,notnull" bson:"description"`
	Details     *string   `bun:"details" bson:"details,omitempty"`
	IPAddress   *string   `bun:"ip_address" bson:"ip_address,omitempty"`
	UserAgent   *string   `bun:"user_agent" bson:"user_agent,omitempty"`
	Timestamp   time.Time `bun:"timestamp,notnull" bson:"timestamp"`
}

// DetailMap decodes the serialized detail payload. Undecodable payloads yield nil.
func (a *ActivityLog) DetailMap() map[string]any {
	if a.Details == nil || *a.Details == "" {
		return nil
	}
	var details map[string]any
	if err := json.Unmarshal([]byte(*a.Details), &details); err != nil {
		return nil
	}
	return details
}

// ActivityView is the JSON shape of an activity entry.
type ActivityView struct {
	ID          string         `json:"id"`
	UserID      *string        `json:"user_id"`
	UserName    *string        `json:"user_name"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details"`
	IPAddress   *string        `json:"ip_address"`
	UserAgent   *string        `json:"user_agent"`
	Timestamp   time.Time      `json:"timestamp"`
}

func (a *ActivityLog) ToView() ActivityView {
	return ActivityView{
		ID:          a.ID,
		UserID:      a.UserID,
		UserName:    a.UserName,
		Type:        a.Type,
		Description: a.Description,
		Details:     a.DetailMap(),
		IPAddress:   a.IPAddress,
		UserAgent:   a.UserAgent,
		Timestamp:   a.Timestamp,
	}
}

func ToViews(entries []*ActivityLog) []ActivityView {
	views := make([]ActivityView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entry.ToView())
	}
	return views
}

// ActivityMessage is published to the message broker after an entry commits.
type ActivityMessage struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id,omitempty"`
	UserName    string         `json:"user_name,omitempty"`
	ServiceName string         `json:"service_name"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	IPAddress   string         `json:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Activity event types
const (
	ActivityRegister         = "register"
	ActivityLogin            = "login"
	ActivityLogout           = "logout"
	ActivityLoginFailed      = "login_failed"
	ActivityLoginThrottled   = "login_throttled"
	ActivityAdminLogin       = "admin_login"
	ActivityAdminLoginFailed = "admin_login_failed"
	ActivityProfileUpdate    = "profile_update"
	ActivityPasswordChange   = "password_change"
	ActivityAdminAction      = "admin_action"
	ActivityDashboardView    = "dashboard_view"
	ActivityPostCreate       = "post_create"
	ActivityPostView         = "post_view"
	ActivityPostLike         = "post_like"
)
