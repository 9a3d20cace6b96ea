package transfer

type GenerateRequest struct {
	Category     string         `json:"category"`
	PostType     string         `json:"post_type"`
	PropertyData map[string]any `json:"property_data"`
	CreateDraft  bool           `json:"create_draft"`
}

type ImproveRequest struct {
	PostID          int64  `json:"post_id"`
	ImprovementType string `json:"improvement_type"` // title, description, both
}

// GeneratedContent is the structured draft produced by the generator,
// whether it came from the model or the deterministic fallback.
type GeneratedContent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type GenerateResponse struct {
	Draft     *PostView         `json:"draft,omitempty"`
	Generated *GeneratedContent `json:"generated"`
	Message   string            `json:"message"`
}

// Suggestion is a top-performing post used as an exemplar.
type Suggestion struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	PerformanceScore int64  `json:"performance_score"`
}
