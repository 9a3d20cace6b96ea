package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/oweru/content-api/internal/models"
)

// AIGenerationRepository is append-only; generation audit rows are never
// updated or removed by application flows.
type AIGenerationRepository interface {
	Create(ctx context.Context, tx *sql.Tx, gen *models.AIGeneration) (int64, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.AIGeneration, error)
}

type aiGenerationRepository struct {
	db *sql.DB
}

func NewAIGenerationRepository(db *sql.DB) AIGenerationRepository {
	return &aiGenerationRepository{db: db}
}

func (r *aiGenerationRepository) Create(ctx context.Context, tx *sql.Tx, gen *models.AIGeneration) (int64, error) {
	query := `
		INSERT INTO ai_generations (user_id, category, prompt, generated_content, model_used, confidence_score, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, gen.UserID, gen.Category, gen.Prompt, gen.GeneratedContent, gen.ModelUsed, gen.ConfidenceScore, gen.Metadata).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, gen.UserID, gen.Category, gen.Prompt, gen.GeneratedContent, gen.ModelUsed, gen.ConfidenceScore, gen.Metadata).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *aiGenerationRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.AIGeneration, error) {
	query := `
		SELECT id, user_id, category, prompt, generated_content, model_used, confidence_score, metadata, created_at
		FROM ai_generations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var gens []*models.AIGeneration
	for rows.Next() {
		var g models.AIGeneration
		if err := rows.Scan(&g.ID, &g.UserID, &g.Category, &g.Prompt, &g.GeneratedContent, &g.ModelUsed, &g.ConfidenceScore, &g.Metadata, &g.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		gens = append(gens, &g)
	}
	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return gens, nil
}
