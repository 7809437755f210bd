package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/openverdict/tribunal/pkg/config"
	"go.uber.org/zap"
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
// Most hosted providers expose this wire format.
type OpenAIClient struct {
	cfg        config.LLMConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOpenAIClient creates a client for one configured role endpoint.
func NewOpenAIClient(cfg config.LLMConfig, logger *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Model returns the configured model tag.
func (c *OpenAIClient) Model() string {
	return c.cfg.Model
}

// Complete performs one chat completion call.
func (c *OpenAIClient) Complete(ctx context.Context, role Role, req Request) (*Completion, error) {
	start := time.Now()

	completion, err := c.complete(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	CallsTotal.WithLabelValues(string(role), status).Inc()
	CallDurationSeconds.WithLabelValues(string(role)).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Error("llm-call-failed",
			zap.String("role", string(role)),
			zap.String("model", c.cfg.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("llm-call-complete",
		zap.String("role", string(role)),
		zap.String("model", completion.Model),
		zap.Int("content-bytes", len(completion.Content)),
		zap.Duration("elapsed", time.Since(start)))

	return completion, nil
}

func (c *OpenAIClient) complete(ctx context.Context, req Request) (*Completion, error) {
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(respBody, 512))
	}

	var parsed chatResponse
	err = json.Unmarshal(respBody, &parsed)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if parsed.Error != nil {
		return nil, fmt.Errorf("provider error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	model := parsed.Model
	if model == "" {
		model = c.cfg.Model
	}

	return &Completion{
		Content: parsed.Choices[0].Message.Content,
		Model:   model,
	}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
