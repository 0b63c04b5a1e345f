package guidance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"NetIntelAPI/internal/config"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/metrics"
	"NetIntelAPI/internal/provider"

	"github.com/sashabaranov/go-openai"
)

const (
	providerName = "guidance"

	temperature = 0.3
	maxTokens   = 1000

	systemPrompt = "You are a senior network security analyst. Give concise, actionable " +
		"incident response guidance for the traffic analysis you are shown. " +
		"Prioritise containment steps, then investigation, then hardening."
)

var ErrNotConfigured = errors.New("guidance provider not configured")

type Request struct {
	SourceIP        string
	RiskScore       int
	ThreatsDetected []string
	Recommendations []string
	Context         map[string]interface{}
}

type Result struct {
	Text    string
	Tokens  int
	Elapsed time.Duration
}

// Client asks an OpenAI-compatible chat completion endpoint for remediation advice.
type Client struct {
	api     *openai.Client
	model   string
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func New(cfg config.GuidanceConfig, m *metrics.Metrics, log *logger.Logger) *Client {
	c := &Client{
		model:   cfg.Model,
		metrics: m,
		log:     log.With("guidance"),
		now:     time.Now,
	}

	if !cfg.Enabled() {
		c.log.Warn("Guidance disabled: INFERENCE_URL or INFERENCE_KEY not set")
		return c
	}

	c.api = provider.NewOpenAIClient(provider.ClientConfig{
		URL:     cfg.URL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	})
	return c
}

func (c *Client) Enabled() bool { return c != nil && c.api != nil }

func (c *Client) Model() string { return c.model }

func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: c.buildPrompt(req)},
		},
	})
	if err != nil {
		err = provider.Wrap(providerName, err)
		c.metrics.ProviderCall(providerName, err)
		c.log.Error("Guidance request failed: %v", err)
		return nil, err
	}

	if len(resp.Choices) == 0 {
		err := &provider.Error{Provider: providerName, Message: "response contained no choices"}
		c.metrics.ProviderCall(providerName, err)
		return nil, err
	}

	c.metrics.ProviderCall(providerName, nil)
	elapsed := time.Since(start)
	c.log.Info("Guidance generated for %s in %v (%d tokens)", req.SourceIP, elapsed, resp.Usage.TotalTokens)

	return &Result{
		Text:    strings.TrimSpace(resp.Choices[0].Message.Content),
		Tokens:  resp.Usage.TotalTokens,
		Elapsed: elapsed,
	}, nil
}

func (c *Client) buildPrompt(req Request) string {
	sourceIP := req.SourceIP
	if sourceIP == "" {
		sourceIP = "unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Security analysis generated at %s\n\n", c.now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Source IP: %s\n", sourceIP)
	fmt.Fprintf(&b, "Risk score: %d\n", req.RiskScore)
	fmt.Fprintf(&b, "Threats detected:\n%s", bullets(req.ThreatsDetected, "none"))
	fmt.Fprintf(&b, "Current recommendations:\n%s", bullets(req.Recommendations, "none"))

	if len(req.Context) > 0 {
		keys := make([]string, 0, len(req.Context))
		for k := range req.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("Additional context:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %v\n", k, req.Context[k])
		}
	}

	b.WriteString("\nExplain the likely attack, the immediate actions to take and how to prevent a recurrence.")
	return b.String()
}

func bullets(items []string, empty string) string {
	if len(items) == 0 {
		return "- " + empty + "\n"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	return b.String()
}
