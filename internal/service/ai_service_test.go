package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/oweru/content-api/configs"
	"github.com/oweru/content-api/internal/models"
	"github.com/oweru/content-api/internal/transfer"
)

type fakeSink struct {
	logged []*models.AIGeneration
}

func (s *fakeSink) LogGeneration(ctx context.Context, gen *models.AIGeneration) error {
	s.logged = append(s.logged, gen)
	return nil
}

func newAIFixture(t *testing.T, openAICfg cfg.OpenAI) (AIService, *fakePostRepo, *fakeSink) {
	t.Helper()
	pr := newFakePostRepo()
	mr := newFakeMediaRepo()
	ur := newFakeUserRepo(&models.User{ID: 1, Name: "Owner", Role: models.RoleUser})
	storage := newFakeStorage()
	posts := NewPostService(nil, pr, mr, ur, storage)
	sink := &fakeSink{}
	return NewAIService(openAICfg, nil, pr, posts, sink), pr, sink
}

func chatCompletion(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	body, _ := json.Marshal(resp)
	return string(body)
}

func TestGenerate_NoAPIKeyUsesFallback(t *testing.T) {
	svc, _, sink := newAIFixture(t, cfg.OpenAI{Model: "gpt-4"})

	resp, err := svc.Generate(context.Background(), 1, &transfer.GenerateRequest{
		Category: "rentals",
		PostType: models.PostTypeStatic,
	})
	require.NoError(t, err)

	assert.Equal(t, "Premium Rental Property Available", resp.Generated.Title)
	assert.Contains(t, resp.Generated.Description, "Discover this amazing property opportunity with Oweru.")
	require.Len(t, sink.logged, 1)
	assert.Equal(t, "rentals", sink.logged[0].Category)
}

func TestGenerate_FallbackTitles(t *testing.T) {
	svc, _, _ := newAIFixture(t, cfg.OpenAI{Model: "gpt-4"})

	tests := []struct {
		category string
		title    string
	}{
		{"rentals", "Premium Rental Property Available"},
		{"property_sales", "Exclusive Property for Sale"},
		{"construction_property_management", "Professional Construction & Property Management"},
		{"lands_and_plots", "Prime Land & Plots Available"},
		{"property_services", "Expert Property Services"},
		{"investment", "Investment Opportunity"},
		{"something_else", "Property Opportunity"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			resp, err := svc.Generate(context.Background(), 1, &transfer.GenerateRequest{
				Category: tt.category,
				PostType: models.PostTypeStatic,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.title, resp.Generated.Title)
		})
	}
}

func TestGenerate_FallbackSplicesLocationAndPrice(t *testing.T) {
	svc, _, _ := newAIFixture(t, cfg.OpenAI{Model: "gpt-4"})

	resp, err := svc.Generate(context.Background(), 1, &transfer.GenerateRequest{
		Category: "rentals",
		PostType: models.PostTypeStatic,
		PropertyData: map[string]any{
			"location": "Nairobi",
			"price":    "50000",
		},
	})
	require.NoError(t, err)

	desc := resp.Generated.Description
	assert.Contains(t, desc, "Located in Nairobi, ")
	assert.Contains(t, desc, " Price: 50000.")
}

func TestGenerate_UpstreamFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc, _, sink := newAIFixture(t, cfg.OpenAI{APIKey: "key", APIURL: server.URL, Model: "gpt-4"})

	resp, err := svc.Generate(context.Background(), 1, &transfer.GenerateRequest{
		Category: "rentals",
		PostType: models.PostTypeStatic,
	})
	require.NoError(t, err)

	assert.Equal(t, "Premium Rental Property Available", resp.Generated.Title)
	assert.Len(t, sink.logged, 1)
}

func TestGenerate_ParsesModelJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[0].Content, "real estate company called Oweru")

		w.Write([]byte(chatCompletion(`Here you go: {"title": "Stunning Lakeside Villa", "description": "Wake up to lake views."}`)))
	}))
	defer server.Close()

	svc, _, _ := newAIFixture(t, cfg.OpenAI{APIKey: "key", APIURL: server.URL, Model: "gpt-4"})

	resp, err := svc.Generate(context.Background(), 1, &transfer.GenerateRequest{
		Category: "property_sales",
		PostType: models.PostTypeStatic,
	})
	require.NoError(t, err)

	assert.Equal(t, "Stunning Lakeside Villa", resp.Generated.Title)
	assert.Equal(t, "Wake up to lake views.", resp.Generated.Description)
}

func TestGenerate_SystemPromptIncludesExemplars(t *testing.T) {
	var systemPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		systemPrompt = req.Messages[0].Content
		w.Write([]byte(chatCompletion(`{"title": "T", "description": "D"}`)))
	}))
	defer server.Close()

	svc, pr, _ := newAIFixture(t, cfg.OpenAI{APIKey: "key", APIURL: server.URL, Model: "gpt-4"})
	pr.top = []*models.Post{
		{Title: "Winning Post", Description: "It performed well."},
	}

	_, err := svc.Generate(context.Background(), 1, &transfer.GenerateRequest{
		Category: "rentals",
		PostType: models.PostTypeStatic,
	})
	require.NoError(t, err)

	assert.Contains(t, systemPrompt, "examples of successful posts")
	assert.Contains(t, systemPrompt, "Winning Post")
}

func TestGenerate_CreateDraft(t *testing.T) {
	svc, pr, _ := newAIFixture(t, cfg.OpenAI{Model: "gpt-4"})

	resp, err := svc.Generate(context.Background(), 1, &transfer.GenerateRequest{
		Category:    "rentals",
		PostType:    models.PostTypeStatic,
		CreateDraft: true,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Draft)
	assert.Equal(t, "Draft created and awaiting moderation", resp.Message)
	assert.True(t, resp.Draft.AIGenerated)
	assert.Equal(t, models.PostStatusPending, resp.Draft.Status)

	stored, err := pr.GetByID(context.Background(), resp.Draft.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.AIGenerated)
}

func TestGenerate_Validation(t *testing.T) {
	svc, _, _ := newAIFixture(t, cfg.OpenAI{Model: "gpt-4"})

	_, err := svc.Generate(context.Background(), 1, &transfer.GenerateRequest{PostType: "story"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category")
	assert.Contains(t, verr.Fields, "post_type")
}

func TestParseGeneratedContent(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		title       string
		description string
	}{
		{
			"clean json",
			`{"title": "A", "description": "B"}`,
			"A", "B",
		},
		{
			"json with surrounding prose",
			`Sure! Here it is: {"title": "A", "description": "B"} Hope that helps.`,
			"A", "B",
		},
		{
			"quoted fields without valid json",
			`title: "Great Home" and description: "A lovely place" overall`,
			"Great Home", "A lovely place",
		},
		{
			"free text",
			`Just some prose about a house.`,
			"Amazing Property Opportunity", "Just some prose about a house.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseGeneratedContent(tt.content)
			assert.Equal(t, tt.title, got.Title)
			assert.Equal(t, tt.description, got.Description)
		})
	}
}

func TestImprove(t *testing.T) {
	svc, pr, _ := newAIFixture(t, cfg.OpenAI{Model: "gpt-4"})

	id, err := pr.Create(context.Background(), nil, &models.Post{
		UserID:      1,
		Category:    "rentals",
		PostType:    models.PostTypeStatic,
		Title:       "Old title",
		Description: "Old description",
	})
	require.NoError(t, err)

	improved, err := svc.Improve(context.Background(), 1, &transfer.ImproveRequest{
		PostID:          id,
		ImprovementType: "both",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, improved.Title)

	_, err = svc.Improve(context.Background(), 1, &transfer.ImproveRequest{
		PostID:          999,
		ImprovementType: "title",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Improve(context.Background(), 1, &transfer.ImproveRequest{
		PostID:          id,
		ImprovementType: "everything",
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSuggestions(t *testing.T) {
	svc, pr, _ := newAIFixture(t, cfg.OpenAI{Model: "gpt-4"})
	pr.top = []*models.Post{
		{Title: "Top", Description: "Best", PerformanceScore: nullInt64(92)},
		{Title: "Second", Description: "Good", PerformanceScore: nullInt64(80)},
	}

	suggestions, err := svc.Suggestions(context.Background(), "rentals")
	require.NoError(t, err)

	require.Len(t, suggestions, 2)
	assert.Equal(t, "Top", suggestions[0].Title)
	assert.Equal(t, int64(92), suggestions[0].PerformanceScore)
}
