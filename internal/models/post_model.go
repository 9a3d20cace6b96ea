package models

import (
	"database/sql"
	"time"

	"github.com/oweru/content-api/internal/metadata"
)

type Post struct {
	ID               int64          `db:"id" json:"id"`
	UserID           int64          `db:"user_id" json:"user_id"`
	Category         string         `db:"category" json:"category"`
	PostType         string         `db:"post_type" json:"post_type"`
	Title            string         `db:"title" json:"title"`
	Description      string         `db:"description" json:"description"`
	Status           string         `db:"status" json:"status"` // pending, approved, rejected
	ModeratedBy      sql.NullInt64  `db:"moderated_by" json:"-"`
	ModerationNote   sql.NullString `db:"moderation_note" json:"-"`
	AIGenerated      bool           `db:"ai_generated" json:"ai_generated"`
	Metadata         metadata.Map   `db:"metadata" json:"metadata,omitempty"`
	PerformanceScore sql.NullInt64  `db:"performance_score" json:"-"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

type Media struct {
	ID           int64          `db:"id" json:"id"`
	PostID       sql.NullInt64  `db:"post_id" json:"-"`
	FileName     string         `db:"file_name" json:"file_name"`
	FileURL      string         `db:"file_url" json:"file_url"`
	FileType     string         `db:"file_type" json:"file_type"` // image, video
	MimeType     string         `db:"mime_type" json:"mime_type"`
	FileSize     int64          `db:"file_size" json:"file_size"`
	DisplayOrder int            `db:"display_order" json:"display_order"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

const (
	PostStatusPending  = "pending"
	PostStatusApproved = "approved"
	PostStatusRejected = "rejected"
)

const (
	PostTypeStatic   = "Static"
	PostTypeCarousel = "Carousel"
	PostTypeReel     = "Reel"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)
