package transfer

import (
	"encoding/json"

	"github.com/oweru/content-api/internal/models"
)

// PostCreation carries the non-file fields of a multipart post submission.
type PostCreation struct {
	Category    string
	PostType    string
	Title       string
	Description string
	Metadata    map[string]any
}

// ParseMetadata decodes the metadata form field, which arrives as a JSON
// object string in multipart submissions.
func ParseMetadata(raw string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// PostUpdate carries an owner edit. Nil fields are left untouched.
type PostUpdate struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

// PostView is a post with its loaded associations, as returned by the API.
type PostView struct {
	*models.Post
	User      *models.User    `json:"user,omitempty"`
	Moderator *models.User    `json:"moderator,omitempty"`
	Media     []*models.Media `json:"media"`
}

// PostPage is a paginated list response. PerPage defaults to 15.
type PostPage struct {
	Data    []*PostView `json:"data"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Total   int64       `json:"total"`
}

// PostListFilter selects posts for listing. Status "" or "all" means no
// status filter; Category "" means all categories.
type PostListFilter struct {
	Status   string
	Category string
	Page     int
	PerPage  int
}

const DefaultPerPage = 15
