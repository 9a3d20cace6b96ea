package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"

	"github.com/oweru/content-api/internal/models"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Contact, error)
	List(ctx context.Context, page, perPage int) ([]*models.Contact, int64, error)
}

type contactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) (int64, error) {
	query := `
		INSERT INTO contacts (first_name, last_name, email, subject, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, contact.FirstName, contact.LastName, contact.Email, contact.Subject, contact.Message).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *contactRepository) GetByID(ctx context.Context, id int64) (*models.Contact, error) {
	query := `SELECT id, first_name, last_name, email, subject, message, created_at FROM contacts WHERE id = $1`

	var c models.Contact
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Subject, &c.Message, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &c, nil
}

func (r *contactRepository) List(ctx context.Context, page, perPage int) ([]*models.Contact, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&total); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	if perPage <= 0 {
		perPage = 15
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * perPage

	query := `
		SELECT id, first_name, last_name, email, subject, message, created_at
		FROM contacts
		ORDER BY created_at DESC, id DESC
		LIMIT ` + strconv.Itoa(perPage) + ` OFFSET ` + strconv.Itoa(offset)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Subject, &c.Message, &c.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		contacts = append(contacts, &c)
	}
	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	return contacts, total, nil
}
