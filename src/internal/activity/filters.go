package activity

import (
	"time"

	"account-admin-svc/src/internal/models"
)

// Category buckets accepted by the activity listing filter.
const (
	CategoryAll      = "all"
	CategoryLogin    = "login"
	CategoryPosts    = "posts"
	CategoryProfile  = "profile"
	CategorySecurity = "security"
)

var categories = map[string][]string{
	CategoryLogin: {
		models.ActivityLogin,
		models.ActivityLogout,
		models.ActivityLoginFailed,
		models.ActivityLoginThrottled,
	},
	CategoryPosts: {
		models.ActivityPostCreate,
		models.ActivityPostView,
		models.ActivityPostLike,
	},
	CategoryProfile: {
		models.ActivityProfileUpdate,
		models.ActivityPasswordChange,
	},
	CategorySecurity: {
		models.ActivityLoginFailed,
		models.ActivityPasswordChange,
		models.ActivityAdminLogin,
		models.ActivityAdminLoginFailed,
		models.ActivityLoginThrottled,
	},
}

// CategoryTypes returns the event types in a bucket; nil means no type filter.
func CategoryTypes(category string) []string {
	types, ok := categories[category]
	if !ok {
		return nil
	}
	out := make([]string, len(types))
	copy(out, types)
	return out
}

var timeRanges = map[string]time.Duration{
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

const DefaultTimeRange = "24h"

// Since returns now minus the named window. Unknown names mean no lower bound.
func Since(timeRange string, now time.Time) *time.Time {
	if timeRange == "" {
		timeRange = DefaultTimeRange
	}
	window, ok := timeRanges[timeRange]
	if !ok {
		return nil
	}
	since := now.UTC().Add(-window)
	return &since
}

// Row caps for the different activity views.
const (
	LimitGeneral   = 100
	LimitDashboard = 10
	LimitUser      = 20
)
