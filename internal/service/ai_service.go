package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	cfg "github.com/oweru/content-api/configs"
	"github.com/oweru/content-api/internal/models"
	"github.com/oweru/content-api/internal/repository"
	"github.com/oweru/content-api/internal/transfer"
)

// GenerationSink records generation attempts for the learning pipeline.
// Implementations must not block the request path.
type GenerationSink interface {
	LogGeneration(ctx context.Context, gen *models.AIGeneration) error
}

type AIService interface {
	Generate(ctx context.Context, userID int64, req *transfer.GenerateRequest) (*transfer.GenerateResponse, error)
	Improve(ctx context.Context, userID int64, req *transfer.ImproveRequest) (*transfer.GeneratedContent, error)
	Suggestions(ctx context.Context, category string) ([]*transfer.Suggestion, error)
}

type aiService struct {
	config cfg.OpenAI
	client *http.Client
	pr     repository.PostRepository
	posts  PostService
	sink   GenerationSink
}

func NewAIService(config cfg.OpenAI, client *http.Client, pr repository.PostRepository, posts PostService, sink GenerationSink) AIService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &aiService{
		config: config,
		client: client,
		pr:     pr,
		posts:  posts,
		sink:   sink,
	}
}

const (
	exemplarMinScore = 70
	exemplarLimit    = 5
	suggestionLimit  = 10
)

var (
	jsonPattern  = regexp.MustCompile(`(?s)\{.*\}`)
	titlePattern = regexp.MustCompile(`(?i)title["']?\s*:\s*["']([^"']+)["']`)
	descPattern  = regexp.MustCompile(`(?i)description["']?\s*:\s*["']([^"']+)["']`)
)

func (s *aiService) Generate(ctx context.Context, userID int64, req *transfer.GenerateRequest) (*transfer.GenerateResponse, error) {
	verr := &ValidationError{}
	if req.Category == "" {
		verr.Add("category", "category is required")
	}
	if _, ok := postTypes[req.PostType]; !ok {
		verr.Add("post_type", "post_type must be Static, Carousel or Reel")
	}
	if !verr.Empty() {
		return nil, verr
	}

	topPosts, err := s.pr.TopByCategory(ctx, req.Category, exemplarMinScore, exemplarLimit)
	if err != nil {
		return nil, err
	}

	systemPrompt := buildSystemPrompt(req.Category, req.PostType, topPosts)
	userPrompt := buildUserPrompt(req.PropertyData)

	generated := s.generate(ctx, systemPrompt, userPrompt, func() *transfer.GeneratedContent {
		return fallbackContent(req.Category, req.PropertyData)
	})

	s.record(ctx, userID, req, generated)

	resp := &transfer.GenerateResponse{
		Generated: generated,
		Message:   "content generated",
	}

	if req.CreateDraft {
		draft, err := s.posts.CreateDraft(ctx, userID, &transfer.PostCreation{
			Category:    req.Category,
			PostType:    req.PostType,
			Title:       generated.Title,
			Description: generated.Description,
			Metadata:    req.PropertyData,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating draft: %w", err)
		}
		resp.Draft = draft
		resp.Message = "Draft created and awaiting moderation"
	}

	return resp, nil
}

func (s *aiService) Improve(ctx context.Context, userID int64, req *transfer.ImproveRequest) (*transfer.GeneratedContent, error) {
	switch req.ImprovementType {
	case "title", "description", "both":
	default:
		return nil, NewValidationError("improvement_type", "improvement_type must be title, description or both")
	}

	post, err := s.pr.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	systemPrompt := buildSystemPrompt(post.Category, post.PostType, nil)
	userPrompt := fmt.Sprintf("Improve the following post %s:\nTitle: %s\nDescription: %s\nMake it more engaging and professional.",
		req.ImprovementType, post.Title, post.Description)

	return s.generate(ctx, systemPrompt, userPrompt, func() *transfer.GeneratedContent {
		return fallbackContent(post.Category, nil)
	}), nil
}

func (s *aiService) Suggestions(ctx context.Context, category string) ([]*transfer.Suggestion, error) {
	// -1 keeps every scored post eligible.
	posts, err := s.pr.TopByCategory(ctx, category, -1, suggestionLimit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*transfer.Suggestion, 0, len(posts))
	for _, post := range posts {
		suggestions = append(suggestions, &transfer.Suggestion{
			Title:            post.Title,
			Description:      post.Description,
			PerformanceScore: post.PerformanceScore.Int64,
		})
	}
	return suggestions, nil
}

// generate calls the model and falls back to deterministic content on any
// failure. It never returns an error; a generation request always produces
// usable content.
func (s *aiService) generate(ctx context.Context, systemPrompt, userPrompt string, fallback func() *transfer.GeneratedContent) *transfer.GeneratedContent {
	if s.config.APIKey == "" {
		return fallback()
	}

	content, err := s.callModel(ctx, systemPrompt, userPrompt)
	if err != nil {
		slog.Error("model call failed", "error", err)
		return fallback()
	}

	return parseGeneratedContent(content)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *aiService) callModel(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model api returned %d: %s", resp.StatusCode, truncate(string(respBody), 512))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("model api returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

func buildSystemPrompt(category, postType string, topPosts []*models.Post) string {
	var b strings.Builder
	b.WriteString("You are an expert social media content creator for a real estate company called Oweru. ")
	b.WriteString(fmt.Sprintf("Create engaging, professional posts for %s category. ", category))
	b.WriteString(fmt.Sprintf("Post type: %s. ", postType))

	if len(topPosts) > 0 {
		b.WriteString("\n\nHere are examples of successful posts:\n")
		for _, post := range topPosts {
			b.WriteString(fmt.Sprintf("- Title: %s\n", post.Title))
			b.WriteString(fmt.Sprintf("  Description: %s\n\n", post.Description))
		}
		b.WriteString("Use these as inspiration but create original content.\n")
	}

	b.WriteString("\nReturn your response as JSON with 'title' and 'description' fields.")
	return b.String()
}

func buildUserPrompt(propertyData map[string]any) string {
	if len(propertyData) == 0 {
		return "Generate a creative and engaging social media post for real estate."
	}

	details, err := json.MarshalIndent(propertyData, "", "  ")
	if err != nil {
		return "Generate a creative and engaging social media post for real estate."
	}
	return "Generate a social media post with the following property details:\n" + string(details)
}

// parseGeneratedContent recovers a title/description pair from whatever the
// model returned: a JSON object, loosely quoted fields, or free text.
func parseGeneratedContent(content string) *transfer.GeneratedContent {
	if match := jsonPattern.FindString(content); match != "" {
		var parsed struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal([]byte(match), &parsed); err == nil && parsed.Title != "" && parsed.Description != "" {
			return &transfer.GeneratedContent{Title: parsed.Title, Description: parsed.Description}
		}
	}

	generated := &transfer.GeneratedContent{
		Title:       "Amazing Property Opportunity",
		Description: content,
	}
	if m := titlePattern.FindStringSubmatch(content); m != nil {
		generated.Title = m[1]
	}
	if m := descPattern.FindStringSubmatch(content); m != nil {
		generated.Description = m[1]
	}
	return generated
}

var fallbackTitles = map[string]string{
	"rentals":                          "Premium Rental Property Available",
	"property_sales":                   "Exclusive Property for Sale",
	"construction_property_management": "Professional Construction & Property Management",
	"lands_and_plots":                  "Prime Land & Plots Available",
	"property_services":                "Expert Property Services",
	"investment":                       "Investment Opportunity",
}

func fallbackContent(category string, propertyData map[string]any) *transfer.GeneratedContent {
	title, ok := fallbackTitles[category]
	if !ok {
		title = "Property Opportunity"
	}

	description := "Discover this amazing property opportunity with Oweru. " +
		"Contact us today for more information and to schedule a viewing."

	if location, ok := propertyData["location"]; ok {
		description = fmt.Sprintf("Located in %v, ", location) + description
	}
	if price, ok := propertyData["price"]; ok {
		description += fmt.Sprintf(" Price: %v.", price)
	}

	return &transfer.GeneratedContent{Title: title, Description: description}
}

// record logs the attempt for later training. Failures are logged and
// swallowed so auditing never breaks generation.
func (s *aiService) record(ctx context.Context, userID int64, req *transfer.GenerateRequest, generated *transfer.GeneratedContent) {
	if s.sink == nil {
		return
	}

	prompt, _ := json.Marshal(req)
	content, _ := json.Marshal(generated)

	gen := &models.AIGeneration{
		UserID:           userID,
		Category:         req.Category,
		Prompt:           string(prompt),
		GeneratedContent: string(content),
		ModelUsed:        s.config.Model,
	}
	if err := s.sink.LogGeneration(ctx, gen); err != nil {
		slog.Warn("failed to enqueue generation log", "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
