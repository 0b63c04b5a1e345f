package embedding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"NetIntelAPI/internal/config"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/metrics"
	"NetIntelAPI/internal/provider"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sashabaranov/go-openai"
)

const (
	providerName = "embedding"

	MaxInputRunes   = 2000
	truncatedSuffix = "... [truncated]"
)

var ErrNotConfigured = errors.New("embedding provider not configured")

// Client calls an OpenAI-compatible /v1/embeddings endpoint.
type Client struct {
	api        *openai.Client
	model      string
	dimensions int
	memo       *lru.Cache[string, []float32]
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// New returns a client; when URL or key is missing the client is disabled and
// every call returns ErrNotConfigured.
func New(cfg config.EmbeddingConfig, m *metrics.Metrics, log *logger.Logger) (*Client, error) {
	c := &Client{
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		metrics:    m,
		log:        log.With("embedding"),
	}

	if cfg.CacheSize > 0 {
		memo, err := lru.New[string, []float32](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding cache: %w", err)
		}
		c.memo = memo
	}

	if !cfg.Enabled() {
		c.log.Warn("Embedding generation disabled: COHERE_URL or COHERE_KEY not set")
		return c, nil
	}

	pc := provider.ClientConfig{
		URL:     cfg.URL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}
	if cfg.InputType != "" {
		pc.ExtraFields = map[string]interface{}{"input_type": cfg.InputType}
	}
	c.api = provider.NewOpenAIClient(pc)
	c.log.Info("Embedding provider ready (model %s, %d dimensions)", cfg.Model, cfg.Dimensions)

	return c, nil
}

func (c *Client) Enabled() bool { return c != nil && c.api != nil }

func (c *Client) Model() string { return c.model }

func (c *Client) Dimensions() int { return c.dimensions }

// Embed returns the vector for text. Input longer than MaxInputRunes is truncated first.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	text = c.truncate(text)
	if c.memo != nil {
		if v, ok := c.memo.Get(text); ok {
			return v, nil
		}
	}

	vectors, err := c.create(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if c.memo != nil {
		c.memo.Add(text, vectors[0])
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request. On failure the returned slice still
// has len(texts) entries, all nil.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}
	if !c.Enabled() {
		return out, ErrNotConfigured
	}

	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = c.truncate(t)
	}

	vectors, err := c.create(ctx, inputs)
	if err != nil {
		return out, err
	}
	return vectors, nil
}

func (c *Client) create(ctx context.Context, inputs []string) ([][]float32, error) {
	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: inputs,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		err = provider.Wrap(providerName, err)
		c.metrics.ProviderCall(providerName, err)
		c.log.Error("Embedding request failed: %v", err)
		return nil, err
	}

	if len(resp.Data) != len(inputs) {
		err := &provider.Error{
			Provider: providerName,
			Message:  fmt.Sprintf("expected %d embeddings, got %d", len(inputs), len(resp.Data)),
		}
		c.metrics.ProviderCall(providerName, err)
		return nil, err
	}

	sort.SliceStable(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(inputs))
	for i, d := range resp.Data {
		if c.dimensions > 0 && len(d.Embedding) != c.dimensions {
			err := &provider.Error{
				Provider: providerName,
				Message:  fmt.Sprintf("embedding has %d dimensions, expected %d", len(d.Embedding), c.dimensions),
			}
			c.metrics.ProviderCall(providerName, err)
			return nil, err
		}
		vectors[i] = d.Embedding
	}

	c.metrics.ProviderCall(providerName, nil)
	c.log.Debug("Embedded %d text(s) in %v", len(inputs), time.Since(start))
	return vectors, nil
}

func (c *Client) truncate(text string) string {
	out, cut := Truncate(text, MaxInputRunes)
	if cut {
		c.log.Warn("Text truncated from %d runes for embedding", len([]rune(text)))
	}
	return out
}

// Truncate shortens text to at most max runes, ending in "... [truncated]" when cut.
func Truncate(text string, max int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= max {
		return text, false
	}
	keep := max - len([]rune(truncatedSuffix))
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + truncatedSuffix, true
}
