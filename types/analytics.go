package types

import "time"

// ViewRecord is one row of user_view_history.
type ViewRecord struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	VideoID  string    `json:"video_id"`
	ViewedAt time.Time `json:"viewed_at"`
}

// DailyCount is a per-day tally used by charts.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// TopContent is an entry of the most viewed content chart.
type TopContent struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Kind  ContentKind `json:"kind"`
	Views int64       `json:"views"`
}

// AnalyticsOverview backs the admin dashboard.
type AnalyticsOverview struct {
	PeriodDays       int          `json:"period_days"`
	TotalVideoViews  int64        `json:"total_video_views"`
	TotalBlogViews   int64        `json:"total_blog_views"`
	TotalUsers       int          `json:"total_users"`
	VisitsByDate     []DailyCount `json:"visits_by_date"`
	TopContent       []TopContent `json:"top_content"`
	UserGrowth       []DailyCount `json:"user_growth"`
	RecentActivities []Activity   `json:"recent_activities"`
}

// AdminUser is a Supabase user enriched for the admin users table.
type AdminUser struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name,omitempty"`
	Country    string     `json:"country"`
	IsPremium  bool       `json:"is_premium"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSignIn *time.Time `json:"last_sign_in,omitempty"`
	ExpiresAt  *time.Time `json:"subscription_end,omitempty"`
}

// UserStats summarizes the user base.
type UserStats struct {
	Total       int `json:"total"`
	Premium     int `json:"premium"`
	ActiveToday int `json:"active_today"`
	NewThisWeek int `json:"new_this_week"`
}

// AdminUserList is the admin users response.
type AdminUserList struct {
	Users []AdminUser `json:"users"`
	Stats UserStats   `json:"stats"`
}

// UserFilter narrows the admin user listing. Status is premium, free or all.
type UserFilter struct {
	Search string
	Status string
}
