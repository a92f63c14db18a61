package correction

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geminiServer serves generateContent with the given status and body and
// records the last request it received.
func geminiServer(t *testing.T, status int, body string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var last map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash-exp:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		last = map[string]any{}
		assert.NoError(t, json.Unmarshal(data, &last))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func geminiReply(text string) string {
	payload := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func newTestGemini(t *testing.T, baseURL string) *GeminiGenerator {
	t.Helper()
	gen, err := NewGeminiGenerator(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return gen
}

func TestGemini_Correct(t *testing.T) {
	reply := "```json\n{\"corrected_text\": \"Kerugian Inventaris\", \"corrections\": [{\"original\": \"lnventaris\", \"corrected\": \"Inventaris\", \"reason\": \"typo\"}], \"confidence\": 9}\n```"
	srv, last := geminiServer(t, http.StatusOK, geminiReply(reply))

	svc := NewService(newTestGemini(t, srv.URL), time.Second*5)
	result := svc.Correct(context.Background(), "Kerngi an lnventaris")

	require.True(t, result.Success, "unexpected error: %v", result.Err)
	assert.Equal(t, "Kerugian Inventaris", result.CorrectedText)
	assert.Equal(t, 9.0, result.Confidence)
	assert.Equal(t, "Gemini (gemini-2.0-flash-exp)", result.Method)

	cfg, ok := (*last)["generationConfig"].(map[string]any)
	require.True(t, ok, "request carries a generationConfig")
	assert.InDelta(t, 0.1, cfg["temperature"], 1e-6)
	assert.InDelta(t, 40, cfg["topK"], 1e-6)
	assert.InDelta(t, 0.95, cfg["topP"], 1e-6)
	assert.InDelta(t, 1024, cfg["maxOutputTokens"], 1e-6)
}

func TestGemini_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error": {"code": 500, "message": "internal", "status": "INTERNAL"}}`, ErrRequestFailed},
		{"no candidates", http.StatusOK, `{"candidates": []}`, ErrNoCandidates},
		{"empty text", http.StatusOK, geminiReply("   "), ErrEmptyReply},
		{"malformed json", http.StatusOK, geminiReply("corrected_text: Kerugian"), ErrMalformedReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := geminiServer(t, tt.status, tt.body)

			result := NewService(newTestGemini(t, srv.URL), 5*time.Second).Correct(context.Background(), "teks asli")

			assert.False(t, result.Success)
			assert.Equal(t, "teks asli", result.CorrectedText)
			assert.Equal(t, FallbackMethod, result.Method)
			assert.Empty(t, result.Corrections)
			assert.ErrorIs(t, result.Err, tt.wantErr)
		})
	}
}

func TestGemini_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := NewService(newTestGemini(t, url), 5*time.Second).Correct(context.Background(), "teks asli")

	assert.False(t, result.Success)
	assert.Equal(t, "teks asli", result.CorrectedText)
	assert.ErrorIs(t, result.Err, ErrRequestFailed)
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewGeminiGenerator(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}
