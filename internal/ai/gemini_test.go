package ai

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
)

func newTestClient(handler http.HandlerFunc) (*GeminiClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewGeminiClient(Config{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		EmbeddingModel: "text-embedding-004",
		ChatModel:      "gemini-2.5-pro",
		Timeout:        5 * time.Second,
	})
	return client, server
}

func TestEmbedParsesVector(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "text-embedding-004:embedContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Content.Parts, 1)
		assert.Equal(t, "hello", req.Content.Parts[0].Text)

		_, _ = w.Write([]byte(`{"embedding":{"values":[0.1,0.2,0.3]}}`))
	})
	defer server.Close()

	vec, err := client.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbedRejectsEmptyInput(t *testing.T) {
	client := NewGeminiClient(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := client.Embed(context.Background(), "   ")
	assert.Error(t, err)
}

func TestEmbedProviderErrorIsUnavailable(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	})
	defer server.Close()

	_, err := client.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEmbedEmptyVectorIsUnavailable(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":{"values":[]}}`))
	})
	defer server.Close()

	_, err := client.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGenerateAnswerJoinsParts(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.5-pro:generateContent")

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		prompt := req.Contents[0].Parts[0].Text
		assert.Contains(t, prompt, "CONTEXT:")
		assert.Contains(t, prompt, "some context")
		assert.Contains(t, prompt, "QUESTION:")
		assert.Contains(t, prompt, "what is this?")

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"It is "},{"text":"a test."}]}}]}`))
	})
	defer server.Close()

	answer, err := client.GenerateAnswer(context.Background(), "what is this?", "some context")
	require.NoError(t, err)
	assert.Equal(t, "It is a test.", answer)
}

func TestGenerateAnswerFallbackOnNoCandidates(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	defer server.Close()

	answer, err := client.GenerateAnswer(context.Background(), "q", "ctx")
	require.NoError(t, err)
	assert.Equal(t, NoAnswerFallback, answer)
}

func TestSummarizeFallbackOnEmptyText(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Contents[0].Parts[0].Text, "8-12 bullet points")

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"   "}]}}]}`))
	})
	defer server.Close()

	summary, err := client.Summarize(context.Background(), "long document text")
	require.NoError(t, err)
	assert.Equal(t, NoSummaryFallback, summary)
}

func TestGenerateCancelledContext(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GenerateAnswer(ctx, "q", strings.Repeat("x", 10))
	assert.ErrorIs(t, err, ErrUnavailable)
}
