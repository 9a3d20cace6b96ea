package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/oweru/content-api/internal/models"
)

func (j *Queue) HandleGenerationLogTask(ctx context.Context, task *asynq.Task) error {
	var payload GenerationLogPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	gen := &models.AIGeneration{
		UserID:           payload.UserID,
		Category:         payload.Category,
		Prompt:           payload.Prompt,
		GeneratedContent: payload.GeneratedContent,
		ModelUsed:        payload.ModelUsed,
	}

	if _, err := j.gr.Create(ctx, nil, gen); err != nil {
		slog.Error("failed to persist generation log", "user_id", payload.UserID, "error", err)
		return err
	}

	return nil
}
