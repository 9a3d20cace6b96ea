package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/oweru/content-api/internal/models"
)

type AITrainingDataRepository interface {
	Upsert(ctx context.Context, data *models.AITrainingData) error
	ListByCategory(ctx context.Context, category string) ([]*models.AITrainingData, error)
}

type aiTrainingDataRepository struct {
	db *sql.DB
}

func NewAITrainingDataRepository(db *sql.DB) AITrainingDataRepository {
	return &aiTrainingDataRepository{db: db}
}

// Upsert refreshes the training row for a post, one row per post.
func (r *aiTrainingDataRepository) Upsert(ctx context.Context, data *models.AITrainingData) error {
	query := `
		INSERT INTO ai_training_data (post_id, category, title, description, metadata, performance_score, engagement_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (post_id) DO UPDATE
		SET category = EXCLUDED.category,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			metadata = EXCLUDED.metadata,
			performance_score = EXCLUDED.performance_score,
			engagement_count = EXCLUDED.engagement_count,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, data.PostID, data.Category, data.Title, data.Description, data.Metadata, data.PerformanceScore, data.EngagementCount)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *aiTrainingDataRepository) ListByCategory(ctx context.Context, category string) ([]*models.AITrainingData, error) {
	query := `
		SELECT id, post_id, category, title, description, metadata, performance_score, engagement_count, created_at, updated_at
		FROM ai_training_data
		WHERE category = $1
		ORDER BY performance_score DESC
	`

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var items []*models.AITrainingData
	for rows.Next() {
		var d models.AITrainingData
		if err := rows.Scan(&d.ID, &d.PostID, &d.Category, &d.Title, &d.Description, &d.Metadata, &d.PerformanceScore, &d.EngagementCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		items = append(items, &d)
	}
	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return items, nil
}
