package evidence

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/openverdict/tribunal/pkg/types"
	"go.uber.org/zap"
)

// Source is one evidence provider. Transport and internal schema are opaque
// to the pipeline; retry policy, if any, belongs to the source itself.
type Source interface {
	// Name identifies the source in evidence items and logs.
	Name() string

	// Fetch returns evidence items for the question.
	Fetch(ctx context.Context, question string) ([]types.EvidenceItem, error)
}

// HTTPSource queries a JSON search API of the shape
// GET <base>/search?q=<question> -> {"results": [{title, content, url}]}.
type HTTPSource struct {
	name       string
	baseURL    string
	maxItems   int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPSource creates an HTTP evidence source.
func NewHTTPSource(name, baseURL string, maxItems int, timeout time.Duration, logger *zap.Logger) *HTTPSource {
	return &HTTPSource{
		name:     name,
		baseURL:  baseURL,
		maxItems: maxItems,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Name returns the configured source name.
func (s *HTTPSource) Name() string {
	return s.name
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Snippet string `json:"snippet"`
		URL     string `json:"url"`
	} `json:"results"`
}

// Fetch queries the search endpoint and maps results to evidence items.
func (s *HTTPSource) Fetch(ctx context.Context, question string) ([]types.EvidenceItem, error) {
	params := url.Values{}
	params.Add("q", question)
	requestURL := fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tribunal/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var parsed searchResponse
	err = json.Unmarshal(body, &parsed)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	now := time.Now().UTC()
	items := make([]types.EvidenceItem, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Title == "" {
			// A title-less item can never be cited; skip it.
			continue
		}

		content := r.Content
		if content == "" {
			content = r.Snippet
		}

		items = append(items, types.EvidenceItem{
			Source:      s.name,
			Title:       r.Title,
			Content:     content,
			URL:         r.URL,
			RetrievedAt: now,
		})

		if s.maxItems > 0 && len(items) >= s.maxItems {
			break
		}
	}

	s.logger.Debug("evidence-source-fetched",
		zap.String("source", s.name),
		zap.Int("items", len(items)))

	return items, nil
}
