package account

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

type UpdateProfileRequest struct {
	Name string `form:"name"`
}

func (r *UpdateProfileRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

// DashboardResponse is the user dashboard. Usage figures are placeholders
// until posts are backed by storage.
type DashboardResponse struct {
	Message       string        `json:"message"`
	UserID        string        `json:"user_id"`
	UserName      string        `json:"user_name"`
	UserEmail     string        `json:"user_email"`
	DashboardData DashboardData `json:"dashboard_data"`
}

type DashboardData struct {
	TotalPosts     int            `json:"total_posts"`
	TotalViews     int            `json:"total_views"`
	TotalLikes     int            `json:"total_likes"`
	RecentActivity []RecentAction `json:"recent_activity"`
}

type RecentAction struct {
	Action string `json:"action"`
	Time   string `json:"time"`
}

func placeholderDashboard() DashboardData {
	return DashboardData{
		TotalPosts: 15,
		TotalViews: 1250,
		TotalLikes: 89,
		RecentActivity: []RecentAction{
			{Action: "Created post", Time: "2 hours ago"},
			{Action: "Updated profile", Time: "1 day ago"},
			{Action: "Joined platform", Time: "1 week ago"},
		},
	}
}
