package models

import "time"

type Post struct {
	ID              int64      `db:"id" json:"id"`
	UserID          int64      `db:"user_id" json:"user_id"`
	AccountID       int64      `db:"account_id" json:"account_id"`
	PostType        string     `db:"post_type" json:"post_type"`
	Caption         string     `db:"caption" json:"caption"`
	ScheduledTime   *time.Time `db:"scheduled_time" json:"scheduled_time"`
	Status          string     `db:"status" json:"status"`
	ErrorMessage    string     `db:"error_message" json:"error_message"`
	PostedAt        *time.Time `db:"posted_at" json:"posted_at"`
	ExternalService string     `db:"external_service" json:"external_service"`
	ExternalJobID   string     `db:"external_job_id" json:"external_job_id"`
	ExternalPayload string     `db:"external_payload" json:"external_payload"`
	AssetID         int64      `db:"asset_id" json:"asset_id"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type PostMedia struct {
	PostID       int64     `db:"post_id" json:"post_id"`
	MediaURL     string    `db:"media_url" json:"media_url"`
	ObjectKey    string    `db:"object_key" json:"object_key"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusPending    = "pending"
	PostStatusScheduled  = "scheduled"
	PostStatusProcessing = "processing"
	PostStatusSuccess    = "success"
	PostStatusError      = "error"
)

const (
	PostTypeSingle     = "single"
	PostTypeCarousel   = "carousel"
	PostTypeVideo      = "video"
	PostTypeShortVideo = "short_video"
	PostTypeStory      = "story"
)

// IsDelegated reports whether an external scheduler owns this post's
// execution. A delegated post must never be published locally.
func (p *Post) IsDelegated() bool {
	return p.ExternalJobID != ""
}

// IsTerminal reports whether the post reached a final state. Terminal posts
// are immutable except for deletion.
func (p *Post) IsTerminal() bool {
	return p.Status == PostStatusSuccess || p.Status == PostStatusError
}

func ValidPostType(t string) bool {
	switch t {
	case PostTypeSingle, PostTypeCarousel, PostTypeVideo, PostTypeShortVideo, PostTypeStory:
		return true
	}
	return false
}
