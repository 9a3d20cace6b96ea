package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/oweru/content-api/internal/models"
)

const mediaColumns = `id, post_id, file_name, file_url, file_type, mime_type, file_size, display_order, created_at`

type MediaRepository interface {
	Create(ctx context.Context, tx *sql.Tx, media *models.Media) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Media, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.Media, error)
	Remove(ctx context.Context, id int64) error
	RemoveByPostID(ctx context.Context, tx *sql.Tx, postID int64) error
}

type mediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, tx *sql.Tx, media *models.Media) (int64, error) {
	query := `
		INSERT INTO media (post_id, file_name, file_url, file_type, mime_type, file_size, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, media.PostID, media.FileName, media.FileURL, media.FileType, media.MimeType, media.FileSize, media.DisplayOrder).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, media.PostID, media.FileName, media.FileURL, media.FileType, media.MimeType, media.FileSize, media.DisplayOrder).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *mediaRepository) GetByID(ctx context.Context, id int64) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id = $1`

	var m models.Media
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.PostID, &m.FileName, &m.FileURL, &m.FileType, &m.MimeType, &m.FileSize, &m.DisplayOrder, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &m, nil
}

// ListByPostID returns a post's media ordered by display position.
func (r *mediaRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.Media, error) {
	query := `
		SELECT ` + mediaColumns + `
		FROM media
		WHERE post_id = $1
		ORDER BY display_order
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var medias []*models.Media
	for rows.Next() {
		var m models.Media
		if err := rows.Scan(&m.ID, &m.PostID, &m.FileName, &m.FileURL, &m.FileType, &m.MimeType, &m.FileSize, &m.DisplayOrder, &m.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		medias = append(medias, &m)
	}
	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return medias, nil
}

func (r *mediaRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM media WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *mediaRepository) RemoveByPostID(ctx context.Context, tx *sql.Tx, postID int64) error {
	query := `DELETE FROM media WHERE post_id = $1`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, postID)
	} else {
		_, err = r.db.ExecContext(ctx, query, postID)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
