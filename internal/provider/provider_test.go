package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(ClientConfig{URL: srv.URL + "/", APIKey: "k"})
	_, err := client.CreateEmbeddings(context.Background(), openai.EmbeddingRequest{Input: []string{"x"}, Model: "m"})
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, Wrap("embedding", err), &pe)
	assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	assert.Equal(t, "embedding", pe.Provider)
	assert.Equal(t, "slow down", pe.Message)
}

func TestExtraFieldsMergedIntoBody(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5]}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(ClientConfig{
		URL:         srv.URL,
		APIKey:      "k",
		ExtraFields: map[string]interface{}{"input_type": "search_document", "model": "ignored"},
	})
	_, err := client.CreateEmbeddings(context.Background(), openai.EmbeddingRequest{Input: []string{"x"}, Model: "m"})
	require.NoError(t, err)

	assert.Equal(t, "search_document", got["input_type"])
	assert.Equal(t, "m", got["model"])
	assert.Equal(t, []interface{}{"x"}, got["input"])
}

func TestWrapRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := NewOpenAIClient(ClientConfig{URL: srv.URL, APIKey: "k"})
	_, err := client.CreateEmbeddings(context.Background(), openai.EmbeddingRequest{Input: []string{"x"}, Model: "m"})

	var pe *Error
	require.ErrorAs(t, Wrap("embedding", err), &pe)
	assert.Equal(t, http.StatusBadGateway, pe.StatusCode)
}

func TestWrapPlainError(t *testing.T) {
	base := errors.New("dial tcp: refused")
	err := Wrap("guidance", base)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Zero(t, pe.StatusCode)
	assert.ErrorIs(t, err, base)
	assert.Nil(t, Wrap("guidance", nil))
}
