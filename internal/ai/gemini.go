package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable marks any transport, timeout or non-2xx failure from the
// generative-language API. Callers classify all of these as a single
// "provider unavailable" failure kind.
var ErrUnavailable = errors.New("gemini provider unavailable")

// Answer and summary fallbacks when the provider returns no usable output.
const (
	NoAnswerFallback  = "No answer."
	NoSummaryFallback = "No summary."
)

// Config holds the Gemini API settings, passed in at construction; core
// logic never reads ambient globals.
type Config struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

// GeminiClient talks to the Google Generative Language REST API.
type GeminiClient struct {
	cfg        Config
	httpClient *http.Client
}

func NewGeminiClient(cfg Config) *GeminiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// post sends a JSON body to {base}/models/{model}:{action} and returns the
// raw response body.
func (c *GeminiClient) post(ctx context.Context, model, action string, body interface{}) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request failed: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:%s?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), model, action, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build gemini request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request failed: %v", ErrUnavailable, action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response failed: %v", ErrUnavailable, action, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s response status %d: %s", ErrUnavailable, action, resp.StatusCode, string(raw))
	}
	return raw, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate runs one generateContent call and concatenates the first
// candidate's parts. Returns fallback when the provider produced nothing.
func (c *GeminiClient) generate(ctx context.Context, prompt, fallback string) (string, error) {
	raw, err := c.post(ctx, c.cfg.ChatModel, "generateContent", generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse gemini response failed: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return fallback, nil
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return fallback, nil
	}
	return text, nil
}

// GenerateAnswer asks the chat model to answer the question strictly from
// the supplied context block.
func (c *GeminiClient) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	prompt := fmt.Sprintf(`You are an AI assistant for a RAG chatbot.
Answer the question strictly using the CONTEXT.
If the answer is not in context, say you don't know based on the document.

CONTEXT:
%s

QUESTION:
%s
`, contextText, question)
	return c.generate(ctx, prompt, NoAnswerFallback)
}

// Summarize condenses the document text into 8-12 bullet points.
func (c *GeminiClient) Summarize(ctx context.Context, documentText string) (string, error) {
	prompt := fmt.Sprintf(`Summarize the following document into 8-12 bullet points.
Focus on main ideas, key concepts and important points.

DOCUMENT:
%s
`, documentText)
	return c.generate(ctx, prompt, NoSummaryFallback)
}
