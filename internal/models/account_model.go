package models

import "time"

type Account struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	ProfileID      int64     `db:"profile_id" json:"profile_id"`
	Platform       string    `db:"platform" json:"platform"`
	Handle         string    `db:"handle" json:"handle"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	ProfilePicture string    `db:"profile_picture_url" json:"profile_picture"`
	AccessToken    string    `db:"access_token" json:"-"`
	AccountStatus  string    `db:"account_status" json:"account_status"`
	CanVideo       bool      `db:"can_video" json:"can_video"`
	CanStory       bool      `db:"can_story" json:"can_story"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type BusinessProfile struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	BrandingStyle string    `db:"branding_style" json:"branding_style"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

const (
	AccountStatusPending = "pending"
	AccountStatusActive  = "active"
	AccountStatusError   = "error"
)
