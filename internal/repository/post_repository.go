package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"time"

	"github.com/oweru/content-api/internal/models"
	"github.com/oweru/content-api/internal/transfer"
)

const postColumns = `id, user_id, category, post_type, title, description, status, moderated_by, moderation_note, ai_generated, metadata, performance_score, created_at, updated_at`

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, filter transfer.PostListFilter) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateModeration(ctx context.Context, postID int64, status string, moderatedBy sql.NullInt64, note sql.NullString) error
	TopByCategory(ctx context.Context, category string, minScore, limit int) ([]*models.Post, error)
	ListScoredApproved(ctx context.Context) ([]*models.Post, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, category, post_type, title, description, status, ai_generated, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	status := post.Status
	if status == "" {
		status = models.PostStatusPending
	}

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, post.UserID, post.Category, post.PostType, post.Title, post.Description, status, post.AIGenerated, post.Metadata).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, post.UserID, post.Category, post.PostType, post.Title, post.Description, status, post.AIGenerated, post.Metadata).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Category,
		&post.PostType,
		&post.Title,
		&post.Description,
		&post.Status,
		&post.ModeratedBy,
		&post.ModerationNote,
		&post.AIGenerated,
		&post.Metadata,
		&post.PerformanceScore,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

// List returns a newest-first page of posts and the unpaginated total.
// Status "" or "all" and Category "" mean no filter on that column.
func (r *postRepository) List(ctx context.Context, filter transfer.PostListFilter) ([]*models.Post, int64, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filter.Status != "" && filter.Status != "all" {
		args = append(args, filter.Status)
		where += " AND status = $1"
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		if len(args) == 1 {
			where += " AND category = $1"
		} else {
			where += " AND category = $2"
		}
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts"+where, args...).Scan(&total); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = transfer.DefaultPerPage
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * perPage

	query := "SELECT " + postColumns + " FROM posts" + where + " ORDER BY created_at DESC, id DESC LIMIT " + strconv.Itoa(perPage) + " OFFSET " + strconv.Itoa(offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = $1,
			description = $2,
			status = $3,
			moderated_by = $4,
			moderation_note = $5,
			metadata = $6,
			updated_at = $7
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, query, post.Title, post.Description, post.Status, post.ModeratedBy, post.ModerationNote, post.Metadata, time.Now(), post.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) UpdateModeration(ctx context.Context, postID int64, status string, moderatedBy sql.NullInt64, note sql.NullString) error {
	query := `
		UPDATE posts
		SET status = $1,
			moderated_by = $2,
			moderation_note = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, status, moderatedBy, note, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) TopByCategory(ctx context.Context, category string, minScore, limit int) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE category = $1 AND performance_score IS NOT NULL AND performance_score > $2
		ORDER BY performance_score DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, category, minScore, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListScoredApproved(ctx context.Context) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE status = $1 AND performance_score IS NOT NULL
	`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusApproved)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
