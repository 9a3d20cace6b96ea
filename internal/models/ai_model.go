package models

import (
	"database/sql"
	"time"

	"github.com/oweru/content-api/internal/metadata"
)

// AIGeneration is an append-only audit row for every generation attempt,
// successful or fallback. Rows are never mutated; they feed later training.
type AIGeneration struct {
	ID               int64           `db:"id" json:"id"`
	UserID           int64           `db:"user_id" json:"user_id"`
	Category         string          `db:"category" json:"category"`
	Prompt           string          `db:"prompt" json:"prompt"`
	GeneratedContent string          `db:"generated_content" json:"generated_content"`
	ModelUsed        string          `db:"model_used" json:"model_used"`
	ConfidenceScore  sql.NullFloat64 `db:"confidence_score" json:"-"`
	Metadata         metadata.Map    `db:"metadata" json:"metadata,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// AITrainingData mirrors approved, scored posts for the learning signal. One
// row per post, refreshed by the background sync job.
type AITrainingData struct {
	ID               int64        `db:"id" json:"id"`
	PostID           int64        `db:"post_id" json:"post_id"`
	Category         string       `db:"category" json:"category"`
	Title            string       `db:"title" json:"title"`
	Description      string       `db:"description" json:"description"`
	Metadata         metadata.Map `db:"metadata" json:"metadata,omitempty"`
	PerformanceScore int          `db:"performance_score" json:"performance_score"`
	EngagementCount  int          `db:"engagement_count" json:"engagement_count"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}
