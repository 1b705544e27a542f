package admin

import "account-admin-svc/src/internal/models"

type GetUsersRequest struct {
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

type GetUsersResponse struct {
	Users []*models.User `json:"users"`
	Total int            `json:"total"`
}

type GetActivitiesRequest struct {
	Filter    string `form:"filter"`
	TimeRange string `form:"time_range"`
}

type GetActivitiesResponse struct {
	Activities []models.ActivityView `json:"activities"`
	Total      int                   `json:"total"`
}

type UserDetailResponse struct {
	User             *models.User          `json:"user"`
	RecentActivities []models.ActivityView `json:"recent_activities"`
}

type DashboardResponse struct {
	models.Stats
	RecentActivities []models.ActivityView `json:"recent_activities"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// User management actions recorded in admin_action details.
const (
	ActionActivate   = "activate_user"
	ActionDeactivate = "deactivate_user"
	ActionDelete     = "delete_user"
)
