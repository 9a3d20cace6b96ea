package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/oweru/content-api/internal/authz"
	"github.com/oweru/content-api/internal/metadata"
	"github.com/oweru/content-api/internal/models"
	"github.com/oweru/content-api/internal/repository"
	"github.com/oweru/content-api/internal/transfer"
)

type PostService interface {
	Create(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (*transfer.PostView, error)
	CreateDraft(ctx context.Context, userID int64, pc *transfer.PostCreation) (*transfer.PostView, error)
	Get(ctx context.Context, postID int64) (*transfer.PostView, error)
	List(ctx context.Context, filter transfer.PostListFilter) (*transfer.PostPage, error)
	Update(ctx context.Context, actor authz.Actor, postID int64, upd *transfer.PostUpdate) (*transfer.PostView, error)
	Remove(ctx context.Context, actor authz.Actor, postID int64) error
	Approve(ctx context.Context, actor authz.Actor, postID int64, note string) (*transfer.PostView, error)
	Reject(ctx context.Context, actor authz.Actor, postID int64, note string) (*transfer.PostView, error)
	ListApproved(ctx context.Context, page, perPage int) (*transfer.PostPage, error)
	GetApproved(ctx context.Context, postID int64) (*transfer.PostView, error)
}

var postTypes = map[string]struct{}{
	models.PostTypeStatic:   {},
	models.PostTypeCarousel: {},
	models.PostTypeReel:     {},
}

type postService struct {
	db      *sql.DB
	pr      repository.PostRepository
	mr      repository.MediaRepository
	ur      repository.UserRepository
	storage ObjectStorage
}

func NewPostService(
	db *sql.DB,
	pr repository.PostRepository,
	mr repository.MediaRepository,
	ur repository.UserRepository,
	storage ObjectStorage) PostService {
	return &postService{
		db:      db,
		pr:      pr,
		mr:      mr,
		ur:      ur,
		storage: storage,
	}
}

func (s *postService) Create(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (*transfer.PostView, error) {
	if err := validateCreation(pc); err != nil {
		return nil, err
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if tx != nil && err != nil {
			tx.Rollback()
		}
	}()

	post := &models.Post{
		UserID:      userID,
		Category:    pc.Category,
		PostType:    pc.PostType,
		Title:       pc.Title,
		Description: pc.Description,
		Status:      models.PostStatusPending,
		Metadata:    metadata.Map(pc.Metadata),
	}

	postID, err := s.pr.Create(ctx, tx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	post.ID = postID

	if err = s.processFiles(ctx, tx, postID, files); err != nil {
		return nil, fmt.Errorf("error processing files: %w", err)
	}

	if tx != nil {
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	return s.loadView(ctx, post)
}

// CreateDraft materializes AI output as a pending, moderatable post. This is
// the only write path that marks a post ai_generated.
func (s *postService) CreateDraft(ctx context.Context, userID int64, pc *transfer.PostCreation) (*transfer.PostView, error) {
	if err := validateCreation(pc); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:      userID,
		Category:    pc.Category,
		PostType:    pc.PostType,
		Title:       pc.Title,
		Description: pc.Description,
		Status:      models.PostStatusPending,
		AIGenerated: true,
		Metadata:    metadata.Map(pc.Metadata),
	}

	postID, err := s.pr.Create(ctx, nil, post)
	if err != nil {
		return nil, fmt.Errorf("error creating draft: %w", err)
	}
	post.ID = postID

	return s.loadView(ctx, post)
}

func validateCreation(pc *transfer.PostCreation) error {
	if pc == nil {
		return errors.New("post creation data is nil")
	}

	verr := &ValidationError{}
	if pc.Category == "" {
		verr.Add("category", "category is required")
	}
	if _, ok := postTypes[pc.PostType]; !ok {
		verr.Add("post_type", "post_type must be Static, Carousel or Reel")
	}
	if pc.Title == "" {
		verr.Add("title", "title is required")
	} else if len(pc.Title) > 255 {
		verr.Add("title", "title must be at most 255 characters")
	}
	if pc.Description == "" {
		verr.Add("description", "description is required")
	}
	if pc.Metadata != nil {
		if err := metadata.Validate(pc.Metadata); err != nil {
			verr.Add("metadata", err.Error())
		}
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func (s *postService) beginTx(ctx context.Context) (*sql.Tx, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.BeginTx(ctx, &sql.TxOptions{})
}

var allowedUploadTypes = map[string]struct{}{
	"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
}

// processFiles stores each upload and records it with its 0-indexed position.
func (s *postService) processFiles(ctx context.Context, tx *sql.Tx, postID int64, files []*multipart.FileHeader) error {
	for i, file := range files {
		fileContent, err := file.Open()
		if err != nil {
			return fmt.Errorf("error opening file: %w", err)
		}

		fileBytes, err := io.ReadAll(fileContent)
		fileContent.Close()
		if err != nil {
			return fmt.Errorf("error reading file content: %w", err)
		}

		fileType, err := filetype.Match(fileBytes)
		if err != nil || fileType == types.Unknown {
			return NewValidationError("media", "unsupported file type")
		}
		if _, ok := allowedUploadTypes[fileType.Extension]; !ok {
			return NewValidationError("media", fmt.Sprintf("file type %s is not allowed", fileType.Extension))
		}

		key, err := gonanoid.New()
		if err != nil {
			return err
		}
		if err := s.storage.Upload(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
			return fmt.Errorf("error uploading file: %w", err)
		}

		media := &models.Media{
			PostID:       sql.NullInt64{Int64: postID, Valid: true},
			FileName:     key,
			FileURL:      s.storage.PublicURL(key),
			FileType:     mediaKind(fileType.MIME.Type),
			MimeType:     fileType.MIME.Value,
			FileSize:     int64(len(fileBytes)),
			DisplayOrder: i,
		}
		if _, err := s.mr.Create(ctx, tx, media); err != nil {
			return fmt.Errorf("error saving media record: %w", err)
		}
	}
	return nil
}

func mediaKind(mimeClass string) string {
	if mimeClass == "video" {
		return models.MediaTypeVideo
	}
	return models.MediaTypeImage
}

func (s *postService) Get(ctx context.Context, postID int64) (*transfer.PostView, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return s.loadView(ctx, post)
}

func (s *postService) List(ctx context.Context, filter transfer.PostListFilter) (*transfer.PostPage, error) {
	if filter.PerPage <= 0 {
		filter.PerPage = transfer.DefaultPerPage
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	posts, total, err := s.pr.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]*transfer.PostView, 0, len(posts))
	for _, post := range posts {
		view, err := s.loadView(ctx, post)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return &transfer.PostPage{
		Data:    views,
		Page:    filter.Page,
		PerPage: filter.PerPage,
		Total:   total,
	}, nil
}

func (s *postService) Update(ctx context.Context, actor authz.Actor, postID int64, upd *transfer.PostUpdate) (*transfer.PostView, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	if !authz.Can(actor, authz.ActionEditPost, post.UserID) {
		return nil, ErrForbidden
	}

	contentChanged := false
	if upd.Title != nil && *upd.Title != post.Title {
		if *upd.Title == "" || len(*upd.Title) > 255 {
			return nil, NewValidationError("title", "title must be between 1 and 255 characters")
		}
		post.Title = *upd.Title
		contentChanged = true
	}
	if upd.Description != nil && *upd.Description != post.Description {
		if *upd.Description == "" {
			return nil, NewValidationError("description", "description cannot be empty")
		}
		post.Description = *upd.Description
		contentChanged = true
	}
	if upd.Metadata != nil {
		if err := metadata.Validate(upd.Metadata); err != nil {
			return nil, NewValidationError("metadata", err.Error())
		}
		post.Metadata = metadata.Map(upd.Metadata)
	}

	// An owner edit of a rejected post's content sends it back to review
	// and clears the previous moderation verdict.
	if contentChanged && post.Status == models.PostStatusRejected && actor.ID == post.UserID {
		post.Status = models.PostStatusPending
		post.ModeratedBy = sql.NullInt64{}
		post.ModerationNote = sql.NullString{}
	}

	if err := s.pr.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("error updating post: %w", err)
	}

	return s.loadView(ctx, post)
}

func (s *postService) Remove(ctx context.Context, actor authz.Actor, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}

	if !authz.Can(actor, authz.ActionDeletePost, post.UserID) {
		return ErrForbidden
	}

	medias, err := s.mr.ListByPostID(ctx, postID)
	if err != nil {
		return err
	}
	for _, media := range medias {
		if err := s.storage.Delete(ctx, media.FileName); err != nil {
			slog.Error("failed to delete stored object", "key", media.FileName, "error", err)
		}
	}

	if err := s.mr.RemoveByPostID(ctx, nil, postID); err != nil {
		return fmt.Errorf("error removing media records: %w", err)
	}
	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}

	return nil
}

func (s *postService) Approve(ctx context.Context, actor authz.Actor, postID int64, note string) (*transfer.PostView, error) {
	return s.moderate(ctx, actor, postID, models.PostStatusApproved, note)
}

func (s *postService) Reject(ctx context.Context, actor authz.Actor, postID int64, note string) (*transfer.PostView, error) {
	return s.moderate(ctx, actor, postID, models.PostStatusRejected, note)
}

// moderate applies a status verdict. Re-approving an already approved post is
// allowed; the last verdict wins.
func (s *postService) moderate(ctx context.Context, actor authz.Actor, postID int64, status, note string) (*transfer.PostView, error) {
	if !authz.Can(actor, authz.ActionModeratePost, 0) {
		return nil, ErrForbidden
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	moderatedBy := sql.NullInt64{Int64: actor.ID, Valid: true}
	moderationNote := sql.NullString{String: note, Valid: note != ""}

	if err := s.pr.UpdateModeration(ctx, postID, status, moderatedBy, moderationNote); err != nil {
		return nil, fmt.Errorf("error updating moderation status: %w", err)
	}

	post.Status = status
	post.ModeratedBy = moderatedBy
	post.ModerationNote = moderationNote

	return s.loadView(ctx, post)
}

// ListApproved is the public feed; it never exposes pending or rejected posts.
func (s *postService) ListApproved(ctx context.Context, page, perPage int) (*transfer.PostPage, error) {
	return s.List(ctx, transfer.PostListFilter{
		Status:  models.PostStatusApproved,
		Page:    page,
		PerPage: perPage,
	})
}

func (s *postService) GetApproved(ctx context.Context, postID int64) (*transfer.PostView, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.Status != models.PostStatusApproved {
		return nil, ErrNotFound
	}
	return s.loadView(ctx, post)
}

// loadView attaches the owner, ordered media and moderator to a post.
func (s *postService) loadView(ctx context.Context, post *models.Post) (*transfer.PostView, error) {
	view := &transfer.PostView{Post: post, Media: []*models.Media{}}

	user, exists, err := s.ur.GetByID(ctx, post.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		view.User = user
	}

	medias, err := s.mr.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if medias != nil {
		view.Media = medias
	}

	if post.ModeratedBy.Valid {
		moderator, exists, err := s.ur.GetByID(ctx, post.ModeratedBy.Int64)
		if err != nil {
			return nil, err
		}
		if exists {
			view.Moderator = moderator
		}
	}

	return view, nil
}
