package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	cfg "github.com/oweru/content-api/configs"
	"github.com/oweru/content-api/internal/repository"
	"github.com/oweru/content-api/internal/transfer"
)

const (
	maxCaptionLength = 2200
	maxMediaItems    = 10

	containerFinished   = "FINISHED"
	containerInProgress = "IN_PROGRESS"
	containerError      = "ERROR"
	containerExpired    = "EXPIRED"
)

type InstagramService interface {
	PublishPost(ctx context.Context, req *transfer.InstagramPostRequest, files []*multipart.FileHeader) (*transfer.InstagramPostResult, error)
	AccountInfo(ctx context.Context) (*transfer.InstagramAccountInfo, error)
	Status(ctx context.Context) *transfer.InstagramStatus
}

type instagramService struct {
	config  cfg.Instagram
	client  *http.Client
	pr      repository.PostRepository
	storage ObjectStorage
}

func NewInstagramService(config cfg.Instagram, client *http.Client, pr repository.PostRepository, storage ObjectStorage) InstagramService {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &instagramService{
		config:  config,
		client:  client,
		pr:      pr,
		storage: storage,
	}
}

// uploadedMedia is a stored asset ready to be referenced by a Graph container.
type uploadedMedia struct {
	URL   string
	Video bool
}

func (s *instagramService) PublishPost(ctx context.Context, req *transfer.InstagramPostRequest, files []*multipart.FileHeader) (*transfer.InstagramPostResult, error) {
	verr := &ValidationError{}
	if req.Caption == "" {
		verr.Add("caption", "caption is required")
	} else if len(req.Caption) > maxCaptionLength {
		verr.Add("caption", fmt.Sprintf("caption must be at most %d characters", maxCaptionLength))
	}
	switch req.PostType {
	case "feed", "carousel", "reel":
	default:
		verr.Add("post_type", "post_type must be feed, carousel or reel")
	}
	if len(files) == 0 {
		verr.Add("media", "at least one media file is required")
	} else if len(files) > maxMediaItems {
		verr.Add("media", fmt.Sprintf("at most %d media files are allowed", maxMediaItems))
	}
	if !verr.Empty() {
		return nil, verr
	}

	post, err := s.pr.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	media, err := s.uploadMedia(ctx, files)
	if err != nil {
		return nil, err
	}

	switch req.PostType {
	case "carousel":
		return s.publishCarousel(ctx, req.Caption, media)
	case "reel":
		return s.publishReel(ctx, req.Caption, media[0])
	default:
		return s.publishFeed(ctx, req.Caption, media[0])
	}
}

// uploadMedia stores each file and returns its public URL for the Graph API
// to fetch.
func (s *instagramService) uploadMedia(ctx context.Context, files []*multipart.FileHeader) ([]uploadedMedia, error) {
	media := make([]uploadedMedia, 0, len(files))
	for i, file := range files {
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
			return nil, NewValidationError("media", fmt.Sprintf("media file at index %d has an unsupported type", i))
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

		media = append(media, uploadedMedia{
			URL:   s.storage.PublicURL(key),
			Video: fileType.MIME.Type == "video",
		})
	}
	return media, nil
}

func (s *instagramService) publishFeed(ctx context.Context, caption string, media uploadedMedia) (*transfer.InstagramPostResult, error) {
	params := map[string]any{
		"caption":      caption,
		"access_token": s.config.AccessToken,
	}
	if media.Video {
		params["media_type"] = "REELS"
		params["video_url"] = media.URL
	} else {
		params["image_url"] = media.URL
	}

	creationID, err := s.createContainer(ctx, params)
	if err != nil {
		return nil, err
	}

	if media.Video {
		if err := s.waitForContainer(ctx, creationID); err != nil {
			return nil, err
		}
	}

	postID, err := s.publish(ctx, creationID)
	if err != nil {
		return nil, err
	}

	return &transfer.InstagramPostResult{
		PostID:    postID,
		Permalink: fmt.Sprintf("https://www.instagram.com/p/%s/", postID),
	}, nil
}

func (s *instagramService) publishCarousel(ctx context.Context, caption string, media []uploadedMedia) (*transfer.InstagramPostResult, error) {
	if len(media) < 2 {
		return nil, NewValidationError("media", "a carousel needs at least 2 media files")
	}

	children := make([]string, 0, len(media))
	for i, item := range media {
		if item.Video {
			return nil, NewValidationError("media", fmt.Sprintf("carousel item at index %d must be an image", i))
		}
		childID, err := s.createContainer(ctx, map[string]any{
			"image_url":        item.URL,
			"is_carousel_item": true,
			"access_token":     s.config.AccessToken,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating carousel item %d: %w", i, err)
		}
		children = append(children, childID)
	}

	carouselID, err := s.createContainer(ctx, map[string]any{
		"caption":      caption,
		"media_type":   "CAROUSEL",
		"children":     strings.Join(children, ","),
		"access_token": s.config.AccessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating carousel container: %w", err)
	}

	postID, err := s.publish(ctx, carouselID)
	if err != nil {
		return nil, err
	}

	return &transfer.InstagramPostResult{
		PostID:    postID,
		Permalink: fmt.Sprintf("https://www.instagram.com/p/%s/", postID),
	}, nil
}

func (s *instagramService) publishReel(ctx context.Context, caption string, media uploadedMedia) (*transfer.InstagramPostResult, error) {
	if !media.Video {
		return nil, NewValidationError("media", "a reel requires a video file")
	}

	creationID, err := s.createContainer(ctx, map[string]any{
		"media_type":    "REELS",
		"video_url":     media.URL,
		"caption":       caption,
		"share_to_feed": true,
		"access_token":  s.config.AccessToken,
	})
	if err != nil {
		return nil, err
	}

	if err := s.waitForContainer(ctx, creationID); err != nil {
		return nil, err
	}

	postID, err := s.publish(ctx, creationID)
	if err != nil {
		return nil, err
	}

	return &transfer.InstagramPostResult{
		PostID:    postID,
		Permalink: fmt.Sprintf("https://www.instagram.com/reel/%s/", postID),
	}, nil
}

func (s *instagramService) createContainer(ctx context.Context, params map[string]any) (string, error) {
	container, err := s.graphPost(ctx, fmt.Sprintf("/%s/media", s.config.AccountID), params)
	if err != nil {
		return "", err
	}
	if container.ID == "" {
		return "", fmt.Errorf("no container ID returned from Instagram")
	}
	return container.ID, nil
}

func (s *instagramService) publish(ctx context.Context, creationID string) (string, error) {
	container, err := s.graphPost(ctx, fmt.Sprintf("/%s/media_publish", s.config.AccountID), map[string]any{
		"creation_id":  creationID,
		"access_token": s.config.AccessToken,
	})
	if err != nil {
		return "", err
	}
	if container.ID == "" {
		return "", fmt.Errorf("no media ID returned from Instagram")
	}
	return container.ID, nil
}

// waitForContainer polls the container until processing finishes. Video
// containers are not publishable until their status_code reports FINISHED.
func (s *instagramService) waitForContainer(ctx context.Context, containerID string) error {
	interval := time.Duration(s.config.PollInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	timeout := time.Duration(s.config.PollTimeout) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	deadline := time.Now().Add(timeout)
	for {
		status, err := s.containerStatus(ctx, containerID)
		if err != nil {
			return err
		}

		switch status.StatusCode {
		case containerFinished:
			return nil
		case containerError, containerExpired:
			return fmt.Errorf("container %s failed processing: %s", containerID, status.StatusCode)
		case containerInProgress, "":
		default:
			slog.Warn("unknown container status", "container_id", containerID, "status", status.StatusCode)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("container %s was not ready after %s", containerID, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (s *instagramService) containerStatus(ctx context.Context, containerID string) (*transfer.GraphContainerStatus, error) {
	reqURL := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s",
		s.config.GraphBaseURL, containerID, url.QueryEscape(s.config.AccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, graphError(resp.StatusCode, respBody)
	}

	var status transfer.GraphContainerStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	return &status, nil
}

func (s *instagramService) graphPost(ctx context.Context, path string, params map[string]any) (*transfer.GraphContainer, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.GraphBaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, graphError(resp.StatusCode, respBody)
	}

	var container transfer.GraphContainer
	if err := json.Unmarshal(respBody, &container); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	return &container, nil
}

func graphError(statusCode int, body []byte) error {
	var graphErr transfer.GraphErrorResponse
	if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
		return fmt.Errorf("instagram api error (code %d): %s", graphErr.Error.Code, graphErr.Error.Message)
	}
	return fmt.Errorf("unexpected status code from Instagram: %d: %s", statusCode, truncate(string(body), 512))
}

func (s *instagramService) AccountInfo(ctx context.Context) (*transfer.InstagramAccountInfo, error) {
	reqURL := fmt.Sprintf("%s/%s?fields=id,username,name,media_count&access_token=%s",
		s.config.GraphBaseURL, s.config.AccountID, url.QueryEscape(s.config.AccessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, graphError(resp.StatusCode, respBody)
	}

	var info transfer.InstagramAccountInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	info.AccountType = "BUSINESS"
	return &info, nil
}

// Status reports whether the configured account is reachable.
func (s *instagramService) Status(ctx context.Context) *transfer.InstagramStatus {
	if s.config.AccessToken == "" || s.config.AccountID == "" {
		return &transfer.InstagramStatus{
			Status:  "disconnected",
			Message: "Instagram credentials are not configured",
		}
	}

	if _, err := s.AccountInfo(ctx); err != nil {
		return &transfer.InstagramStatus{
			Status:  "disconnected",
			Message: fmt.Sprintf("Instagram API is not connected: %s", err),
		}
	}

	return &transfer.InstagramStatus{
		Status:  "connected",
		Message: "Instagram API is connected and ready",
	}
}
