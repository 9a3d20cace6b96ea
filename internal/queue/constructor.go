package queue

import (
	"github.com/oweru/content-api/internal/repository"
)

type Queue struct {
	gr repository.AIGenerationRepository
}

func NewQueue(gr repository.AIGenerationRepository) *Queue {
	return &Queue{gr: gr}
}

const TaskTypeGenerationLog = "ai:generation_log"

type GenerationLogPayload struct {
	UserID           int64  `json:"user_id"`
	Category         string `json:"category"`
	Prompt           string `json:"prompt"`
	GeneratedContent string `json:"generated_content"`
	ModelUsed        string `json:"model_used"`
}
