// internal/generation/openai.go
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"physioflow/recovery-app/internal/config"
)

// openAIGenerator implements TextGenerator against the OpenAI chat
// completions API. The API key is server-side configuration only; clients of
// this backend never hold a credential for the generative service.
type openAIGenerator struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	visionModel string
}

// NewOpenAIGenerator creates a TextGenerator backed by OpenAI (or any
// API-compatible endpoint via BaseURL).
func NewOpenAIGenerator(cfg config.OpenAIConfig) (TextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is not configured")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	// The vision default is the full gpt-4o: the mini tier is fine for the
	// text-only plan requests but image inputs go to the stronger model.
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = "gpt-4o"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &openAIGenerator{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       model,
		visionModel: visionModel,
	}, nil
}

// Wire types for the chat completions endpoint. Message content is either a
// plain string (text-only) or a list of typed parts (text + image_url) for
// the multimodal examination request.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete performs a single best-effort call. There is no retry loop here:
// the orchestrator's fallback path is the recovery mechanism, and retrying a
// nondeterministic generation would risk duplicate spend for no contract
// guarantee.
func (g *openAIGenerator) Complete(ctx context.Context, req Request) (string, error) {
	model := g.model
	userMsg := chatMessage{Role: "user", Content: req.UserContent}

	if len(req.MediaURLs) > 0 {
		model = g.visionModel
		parts := make([]contentPart, 0, len(req.MediaURLs)+1)
		parts = append(parts, contentPart{Type: "text", Text: req.UserContent})
		for _, url := range req.MediaURLs {
			parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: url}})
		}
		userMsg.Content = parts
	}

	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Instructions},
			userMsg,
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", &TransportError{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 429 (quota/rate limit) lands here as well; the orchestrator treats
		// every non-2xx the same way.
		log.Printf("ERROR: OpenAI request failed: status=%d body=%s", resp.StatusCode, truncate(string(raw), 500))
		return "", &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &TransportError{Err: fmt.Errorf("decoding completion envelope: %w", err)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &TransportError{Err: errors.New("completion envelope contained no choices")}
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
