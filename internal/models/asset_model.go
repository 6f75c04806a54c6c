package models

import "time"

// MediaAsset is a library item: an uploaded media record that can originate
// a post. While a post references it the asset is held in "scheduled" state
// and released back to "available" once the post finishes or is deleted.
type MediaAsset struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	FileName        string    `db:"file_name" json:"file_name"`
	FileType        string    `db:"file_type" json:"file_type"`
	FileSize        int64     `db:"file_size" json:"file_size"`
	FileURL         string    `db:"file_url" json:"file_url"`
	ObjectKey       string    `db:"object_key" json:"object_key"`
	Status          string    `db:"status" json:"status"`
	ScheduledPostID int64     `db:"scheduled_post_id" json:"scheduled_post_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

const (
	AssetStatusAvailable = "available"
	AssetStatusScheduled = "scheduled"
)
