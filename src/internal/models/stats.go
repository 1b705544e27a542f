package models

type Stats struct {
	Total        int64 `json:"total_users"`
	Active       int64 `json:"active_users"`
	Inactive     int64 `json:"inactive_users"`
	NewThisMonth int64 `json:"new_this_month"`
}

// TableCounts reports row counts per persisted collection.
type TableCounts struct {
	Users      int64 `json:"users_count"`
	Admins     int64 `json:"admins_count"`
	Activities int64 `json:"activities_count"`
}
