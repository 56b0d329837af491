package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roast-board/config"
	"roast-board/models"
)

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Provider:     "google",
		ModelName:    "gemini-test",
		APIKey:       "test-key",
		Temperature:  0.8,
		MaxTokens:    500,
		PromptPrefix: "prefix",
	}
}

func geminiServer(t *testing.T, text string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			}},
			"usageMetadata": map[string]any{
				"promptTokenCount":     120,
				"candidatesTokenCount": 40,
				"totalTokenCount":      160,
			},
			"modelVersion": "gemini-test-001",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiGenerate(t *testing.T) {
	srv := geminiServer(t, `["a","b","c","d","e"]`, http.StatusOK)
	g, err := NewGeminiGenerator(context.Background(), testLLMConfig(), nil, srv.URL)
	require.NoError(t, err)

	res, err := g.Generate(context.Background(), Subject{Name: "Joe", Position: "QB", Team: "Bears"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, res.Candidates)
	require.NotNil(t, res.Log)
	assert.Equal(t, "gemini-test", res.Log.ModelName)
	assert.Equal(t, "gemini-test-001", res.Log.ModelVersion)
	assert.Equal(t, int64(160), res.Log.TokenUsage.TotalTokens)
	assert.True(t, strings.HasPrefix(res.Log.Prompt, "prefix"))
}

func TestGeminiGenerateBadAnswer(t *testing.T) {
	srv := geminiServer(t, `sorry, I can't help with that`, http.StatusOK)
	g, err := NewGeminiGenerator(context.Background(), testLLMConfig(), nil, srv.URL)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Subject{Name: "Joe"})
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestGeminiGenerateProviderError(t *testing.T) {
	srv := geminiServer(t, "", http.StatusInternalServerError)
	g, err := NewGeminiGenerator(context.Background(), testLLMConfig(), nil, srv.URL)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Subject{Name: "Joe"})
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestGeminiGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	g, err := NewGeminiGenerator(context.Background(), testLLMConfig(), nil, srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = g.Generate(ctx, Subject{Name: "Joe"})
	assert.ErrorIs(t, err, models.ErrUpstreamTimeout)
}

func TestGeminiGenerateQuotaExhausted(t *testing.T) {
	srv := geminiServer(t, `["a"]`, http.StatusOK)
	quota := NewQuotaLimiterFromConfig(config.GenerationQuotaConfig{RequestsPerDay: 1})
	g, err := NewGeminiGenerator(context.Background(), testLLMConfig(), quota, srv.URL)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Subject{Name: "Joe"})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), Subject{Name: "Joe"})
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestNewGeminiGeneratorRejectsConfig(t *testing.T) {
	cfg := testLLMConfig()
	cfg.Provider = "openai"
	_, err := NewGeminiGenerator(context.Background(), cfg, nil, "")
	assert.Error(t, err)

	cfg = testLLMConfig()
	cfg.APIKey = ""
	_, err = NewGeminiGenerator(context.Background(), cfg, nil, "")
	assert.Error(t, err)
}
