package transfer

import "github.com/oweru/content-api/internal/models"

type ContactCreation struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

type ContactPage struct {
	Data    []*models.Contact `json:"data"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
	Total   int64             `json:"total"`
}
