package job

import (
	"context"
	"log/slog"

	"github.com/oweru/content-api/internal/models"
	"github.com/oweru/content-api/internal/repository"
)

// TrainingDataJob mirrors approved, scored posts into ai_training_data so the
// generator's exemplar pool reflects what moderators actually let through.
type TrainingDataJob struct {
	pr repository.PostRepository
	tr repository.AITrainingDataRepository
}

func NewTrainingDataJob(pr repository.PostRepository, tr repository.AITrainingDataRepository) *TrainingDataJob {
	return &TrainingDataJob{
		pr: pr,
		tr: tr,
	}
}

func (j *TrainingDataJob) SyncTrainingData() {
	ctx := context.Background()

	posts, err := j.pr.ListScoredApproved(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	synced := 0
	for _, post := range posts {
		data := &models.AITrainingData{
			PostID:           post.ID,
			Category:         post.Category,
			Title:            post.Title,
			Description:      post.Description,
			Metadata:         post.Metadata,
			PerformanceScore: int(post.PerformanceScore.Int64),
		}
		if err := j.tr.Upsert(ctx, data); err != nil {
			slog.Info(err.Error())
			continue
		}
		synced++
	}

	slog.Info("training data sync complete", "posts", len(posts), "synced", synced)
}
