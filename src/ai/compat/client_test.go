package compat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/sentinel/src/ai/core"
)

const completionReply = `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"verdict"},"finish_reason":"stop"}]}`

func TestGroq_CompleteThroughSDK(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionReply))
	}))
	defer srv.Close()

	c, err := core.NewClient(core.FactoryConfig{
		Provider: "groq",
		GroqKey:  "gsk",
		Extra:    map[string]string{"base_url": srv.URL},
	})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "sys", "claim", core.Options{})
	require.NoError(t, err)
	assert.Equal(t, "verdict", out)
	assert.Equal(t, "llama-3.1-8b-instant", body["model"])
	assert.Len(t, body["messages"], 2)
}

func TestCompat_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionReply))
	}))
	defer srv.Close()

	c, err := core.NewClient(core.FactoryConfig{
		Provider:      "deepseek",
		DeepSeekKey:   "k",
		RetryAttempts: 2,
		Extra:         map[string]string{"base_url": srv.URL},
	})
	require.NoError(t, err)

	out, err := c.Chat(context.Background(), []core.Message{{Role: core.RoleUser, Content: "x"}}, core.Options{})
	require.NoError(t, err)
	assert.Equal(t, "verdict", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCompat_MissingKey(t *testing.T) {
	_, err := core.NewClient(core.FactoryConfig{Provider: "gemini"})
	assert.ErrorContains(t, err, "gemini: API key not configured")
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "groq", canonical("LLAMA"))
	assert.Equal(t, "grok", canonical("xai"))
	assert.Equal(t, "deepseek", canonical(" deepseek "))
}
