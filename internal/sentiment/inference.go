package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultInferenceURL = "http://localhost:8801"

// maxContextRunes bounds the text sent to any model. The transformer
// sidecar rejects inputs past its tokenizer window, so oversized lyrics
// are truncated, never rejected.
const maxContextRunes = 2048

func truncateContext(text string) string {
	runes := []rune(text)
	if len(runes) <= maxContextRunes {
		return text
	}
	return string(runes[:maxContextRunes])
}

// SentimentLabel is a contextual classifier verdict: the single best
// label with the model's confidence in it.
type SentimentLabel struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Polarity converts the label to a signed polarity: positive labels map
// to +confidence, negative to -confidence. Anything else, including
// labels the classifier was not expected to emit, maps to 0.0 (treated
// as neutral).
func (s SentimentLabel) Polarity() float64 {
	label := strings.ToLower(s.Label)
	switch {
	case strings.Contains(label, "positive"):
		return s.Confidence
	case strings.Contains(label, "negative"):
		return -s.Confidence
	default:
		return 0.0
	}
}

// InferenceClient talks to the local transformer inference sidecar that
// hosts the contextual sentiment and emotion classification models.
type InferenceClient struct {
	baseURL       string
	sentimentName string
	emotionName   string
	httpClient    *http.Client
}

type classifyRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
	TopK  int    `json:"top_k,omitempty"` // 0 returns all labels
}

type classifyResponse struct {
	Labels []LabelScore `json:"labels"`
	Error  string       `json:"error,omitempty"`
}

// NewInferenceClient creates a client for the given sidecar base URL.
// An empty URL falls back to the local default.
func NewInferenceClient(baseURL, sentimentModel, emotionModel string) *InferenceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultInferenceURL
	}
	return &InferenceClient{
		baseURL:       baseURL,
		sentimentName: sentimentModel,
		emotionName:   emotionModel,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ClassifySentiment returns the best sentiment label for text with the
// model's confidence.
func (c *InferenceClient) ClassifySentiment(ctx context.Context, text string) (SentimentLabel, error) {
	labels, err := c.classify(ctx, c.sentimentName, text, 1)
	if err != nil {
		return SentimentLabel{}, err
	}
	if len(labels) == 0 {
		return SentimentLabel{}, fmt.Errorf("inference: empty sentiment response")
	}
	return SentimentLabel{
		Label:      labels[0].Label,
		Confidence: clip(labels[0].Score, 0, 1),
	}, nil
}

// ClassifyEmotions returns scores for every emotion label the underlying
// model supports.
func (c *InferenceClient) ClassifyEmotions(ctx context.Context, text string) ([]LabelScore, error) {
	return c.classify(ctx, c.emotionName, text, 0)
}

func (c *InferenceClient) classify(ctx context.Context, model, text string, topK int) ([]LabelScore, error) {
	payload := classifyRequest{
		Model: model,
		Text:  truncateContext(text),
		TopK:  topK,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("inference: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/classify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("inference: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("inference: unexpected status %d", resp.StatusCode)
	}

	var parsed classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("inference: decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("inference: %s", parsed.Error)
	}

	return parsed.Labels, nil
}

// Ping verifies the sidecar is reachable and its models are loaded.
// Used at startup so model availability problems surface as a fatal
// construction error rather than per-call failures.
func (c *InferenceClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("inference: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference: sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference: sidecar unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
