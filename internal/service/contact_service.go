package service

import (
	"context"
	"strings"

	"github.com/oweru/content-api/internal/authz"
	"github.com/oweru/content-api/internal/models"
	"github.com/oweru/content-api/internal/repository"
	"github.com/oweru/content-api/internal/transfer"
)

type ContactService interface {
	Create(ctx context.Context, req *transfer.ContactCreation) (*models.Contact, error)
	List(ctx context.Context, actor authz.Actor, page, perPage int) (*transfer.ContactPage, error)
	Get(ctx context.Context, actor authz.Actor, id int64) (*models.Contact, error)
}

type contactService struct {
	c repository.ContactRepository
}

func NewContactService(c repository.ContactRepository) ContactService {
	return &contactService{c: c}
}

// Create accepts a public inquiry; no authentication is involved.
func (s *contactService) Create(ctx context.Context, req *transfer.ContactCreation) (*models.Contact, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(req.FirstName) == "" {
		verr.Add("first_name", "first_name is required")
	}
	if strings.TrimSpace(req.LastName) == "" {
		verr.Add("last_name", "last_name is required")
	}
	if !strings.Contains(req.Email, "@") {
		verr.Add("email", "a valid email is required")
	}
	if strings.TrimSpace(req.Subject) == "" {
		verr.Add("subject", "subject is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		verr.Add("message", "message is required")
	}
	if !verr.Empty() {
		return nil, verr
	}

	contact := &models.Contact{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Subject:   strings.TrimSpace(req.Subject),
		Message:   req.Message,
	}

	id, err := s.c.Create(ctx, contact)
	if err != nil {
		return nil, err
	}
	contact.ID = id

	return contact, nil
}

func (s *contactService) List(ctx context.Context, actor authz.Actor, page, perPage int) (*transfer.ContactPage, error) {
	if !authz.Can(actor, authz.ActionViewContacts, 0) {
		return nil, ErrForbidden
	}

	if perPage <= 0 {
		perPage = transfer.DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}

	contacts, total, err := s.c.List(ctx, page, perPage)
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []*models.Contact{}
	}

	return &transfer.ContactPage{
		Data:    contacts,
		Page:    page,
		PerPage: perPage,
		Total:   total,
	}, nil
}

func (s *contactService) Get(ctx context.Context, actor authz.Actor, id int64) (*models.Contact, error) {
	if !authz.Can(actor, authz.ActionViewContacts, 0) {
		return nil, ErrForbidden
	}

	contact, err := s.c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, ErrNotFound
	}
	return contact, nil
}
