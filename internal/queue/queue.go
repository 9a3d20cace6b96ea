package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/oweru/content-api/internal/models"
)

func EnqueueGenerationLog(asynqClient *asynq.Client, payload GenerationLogPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeGenerationLog, taskPayload)

	_, err = asynqClient.Enqueue(task)
	return err
}

// GenerationLogger hands generation audit rows to the task queue so the
// request path never waits on the write.
type GenerationLogger struct {
	client *asynq.Client
}

func NewGenerationLogger(client *asynq.Client) *GenerationLogger {
	return &GenerationLogger{client: client}
}

func (l *GenerationLogger) LogGeneration(ctx context.Context, gen *models.AIGeneration) error {
	return EnqueueGenerationLog(l.client, GenerationLogPayload{
		UserID:           gen.UserID,
		Category:         gen.Category,
		Prompt:           gen.Prompt,
		GeneratedContent: gen.GeneratedContent,
		ModelUsed:        gen.ModelUsed,
	})
}
