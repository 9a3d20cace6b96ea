package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/oweru/content-api/internal/authz"
	"github.com/oweru/content-api/internal/models"
	"github.com/oweru/content-api/internal/repository"
)

type MediaService interface {
	Upload(ctx context.Context, postID int64, file *multipart.FileHeader) (*models.Media, error)
	Get(ctx context.Context, mediaID int64) (*models.Media, error)
	Remove(ctx context.Context, actor authz.Actor, mediaID int64) error
	Download(ctx context.Context, fileURL string) (io.ReadCloser, string, error)
}

type mediaService struct {
	mr      repository.MediaRepository
	pr      repository.PostRepository
	storage ObjectStorage
}

func NewMediaService(mr repository.MediaRepository, pr repository.PostRepository, storage ObjectStorage) MediaService {
	return &mediaService{
		mr:      mr,
		pr:      pr,
		storage: storage,
	}
}

// Upload stores a single file outside the post creation flow. A zero postID
// leaves the asset unattached.
func (s *mediaService) Upload(ctx context.Context, postID int64, file *multipart.FileHeader) (*models.Media, error) {
	if file == nil {
		return nil, NewValidationError("media", "a media file is required")
	}

	var attachTo sql.NullInt64
	if postID != 0 {
		post, err := s.pr.GetByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, NewValidationError("post_id", "post does not exist")
		}

		existing, err := s.mr.ListByPostID(ctx, postID)
		if err != nil {
			return nil, err
		}
		attachTo = sql.NullInt64{Int64: postID, Valid: true}

		media, err := s.store(ctx, file, attachTo, len(existing))
		if err != nil {
			return nil, err
		}
		return media, nil
	}

	return s.store(ctx, file, attachTo, 0)
}

func (s *mediaService) store(ctx context.Context, file *multipart.FileHeader, postID sql.NullInt64, displayOrder int) (*models.Media, error) {
	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	fileBytes, err := io.ReadAll(fileContent)
	fileContent.Close()
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, NewValidationError("media", "unsupported file type")
	}
	if _, ok := allowedUploadTypes[fileType.Extension]; !ok {
		return nil, NewValidationError("media", fmt.Sprintf("file type %s is not allowed", fileType.Extension))
	}

	key, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	if err := s.storage.Upload(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	media := &models.Media{
		PostID:       postID,
		FileName:     key,
		FileURL:      s.storage.PublicURL(key),
		FileType:     mediaKind(fileType.MIME.Type),
		MimeType:     fileType.MIME.Value,
		FileSize:     int64(len(fileBytes)),
		DisplayOrder: displayOrder,
	}

	id, err := s.mr.Create(ctx, nil, media)
	if err != nil {
		return nil, fmt.Errorf("error saving media record: %w", err)
	}
	media.ID = id

	return media, nil
}

func (s *mediaService) Get(ctx context.Context, mediaID int64) (*models.Media, error) {
	media, err := s.mr.GetByID(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	if media == nil {
		return nil, ErrNotFound
	}
	return media, nil
}

// Remove deletes one asset. Removing a post's media does not touch the post
// or its other media.
func (s *mediaService) Remove(ctx context.Context, actor authz.Actor, mediaID int64) error {
	media, err := s.mr.GetByID(ctx, mediaID)
	if err != nil {
		return err
	}
	if media == nil {
		return ErrNotFound
	}

	// Unattached assets belong to nobody; only an admin may remove them.
	var ownerID int64
	if media.PostID.Valid {
		post, err := s.pr.GetByID(ctx, media.PostID.Int64)
		if err != nil {
			return err
		}
		if post != nil {
			ownerID = post.UserID
		}
	}

	if !authz.Can(actor, authz.ActionDeleteMedia, ownerID) {
		return ErrForbidden
	}

	if err := s.storage.Delete(ctx, media.FileName); err != nil {
		slog.Error("failed to delete stored object", "key", media.FileName, "error", err)
	}

	return s.mr.Remove(ctx, mediaID)
}

// Download streams a stored object referenced by its public URL. URLs outside
// the media storage origin are rejected.
func (s *mediaService) Download(ctx context.Context, fileURL string) (io.ReadCloser, string, error) {
	key, err := s.storage.KeyFromURL(fileURL)
	if err != nil {
		return nil, "", NewValidationError("url", err.Error())
	}
	return s.storage.Get(ctx, key)
}
