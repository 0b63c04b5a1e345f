// Package provider holds the plumbing shared by the embedding and guidance clients:
// an OpenAI-compatible client builder and a typed error carrying the upstream status.
package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

type Error struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s provider returned status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s provider request failed: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap converts a go-openai failure into *Error. nil stays nil.
func Wrap(name string, err error) error {
	if err == nil {
		return nil
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Provider: name, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return &Error{Provider: name, StatusCode: reqErr.HTTPStatusCode, Message: msg, Err: err}
	}

	return &Error{Provider: name, Message: err.Error(), Err: err}
}

type ClientConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration

	// ExtraFields are merged into every JSON request body, for provider
	// options go-openai has no field for (Cohere's input_type).
	ExtraFields map[string]interface{}
}

// NewOpenAIClient points go-openai at {URL}/v1 with a bounded HTTP timeout.
func NewOpenAIClient(cfg ClientConfig) *openai.Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.URL, "/") + "/v1"

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	if len(cfg.ExtraFields) > 0 {
		httpClient.Transport = &extraFieldsTransport{base: http.DefaultTransport, fields: cfg.ExtraFields}
	}
	oc.HTTPClient = httpClient

	return openai.NewClientWithConfig(oc)
}

type extraFieldsTransport struct {
	base   http.RoundTripper
	fields map[string]interface{}
}

// RoundTrip adds fields the caller's body does not already set.
func (t *extraFieldsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body == nil || !strings.HasPrefix(req.Header.Get("Content-Type"), "application/json") {
		return t.base.RoundTrip(req)
	}

	raw, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err == nil {
		for k, v := range t.fields {
			if _, set := body[k]; set {
				continue
			}
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
			}
			body[k] = encoded
		}
		if merged, err := json.Marshal(body); err == nil {
			raw = merged
		}
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(raw))
	out.ContentLength = int64(len(raw))
	out.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(raw)), nil }
	return t.base.RoundTrip(out)
}
