package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerperSearch_MapsOrganicResults(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "key", r.Header.Get("X-API-KEY"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"Eiffel Tower","snippet":"The tower is in Paris.","link":"https://example.org/eiffel"},
			{"title":"","link":""}
		]}`))
	}))
	defer srv.Close()

	c := NewSerperClient(SerperConfig{APIKey: "key", Endpoint: srv.URL})
	ev, err := c.Search(context.Background(), "eiffel tower location", 5)
	require.NoError(t, err)
	require.Len(t, ev, 2)
	assert.Equal(t, "eiffel tower location", payload["q"])
	assert.Equal(t, float64(5), payload["num"])
	assert.Equal(t, "https://example.org/eiffel", ev[0].URL)
	assert.Equal(t, UnknownTitle, ev[1].Title)
	assert.Equal(t, NoSnippet, ev[1].Snippet)
	assert.Equal(t, MissingLinkURL, ev[1].URL)
}

func TestSerperSearch_NoOrganicResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"searchParameters":{}}`))
	}))
	defer srv.Close()

	c := NewSerperClient(SerperConfig{APIKey: "key", Endpoint: srv.URL})
	_, err := c.Search(context.Background(), "q", 8)
	assert.True(t, errors.Is(err, ErrNoResults))
}

func TestSerperSearch_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewSerperClient(SerperConfig{APIKey: "key", Endpoint: srv.URL, Attempts: 3})
	_, err := c.Search(context.Background(), "q", 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serper status 403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSerperSearch_MissingKey(t *testing.T) {
	c := NewSerperClient(SerperConfig{})
	_, err := c.Search(context.Background(), "q", 8)
	assert.Error(t, err)
}

func TestTop(t *testing.T) {
	ev := []Evidence{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	assert.Len(t, Top(ev, 2), 2)
	assert.Len(t, Top(ev, 5), 3)
	assert.Len(t, Top(ev, 0), 3)
}
