package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/stake-plus/sentinel/src/webclient"
)

const serperEndpoint = "https://google.serper.dev/search"

// SerperConfig configures a SerperClient.
type SerperConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
	Attempts int
	// QPS caps outbound requests per second; zero disables the limiter.
	QPS    float64
	Logger *zap.Logger
}

// SerperClient queries the Serper Google search API.
type SerperClient struct {
	apiKey     string
	endpoint   string
	attempts   int
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

func NewSerperClient(cfg SerperConfig) *SerperClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = serperEndpoint
	}
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var limiter *rate.Limiter
	if cfg.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), 1)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &SerperClient{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		attempts:   attempts,
		httpClient: webclient.NewDefault(cfg.Timeout),
		limiter:    limiter,
		log:        log,
	}
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic"`
}

// Search returns up to n organic results. A response without organic results
// is ErrNoResults.
func (c *SerperClient) Search(ctx context.Context, query string, n int) ([]Evidence, error) {
	if c.apiKey == "" {
		return nil, errors.New("search: serper API key not configured")
	}
	if n <= 0 {
		n = 8
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
	}

	payload, err := json.Marshal(map[string]interface{}{"q": query, "num": n})
	if err != nil {
		return nil, err
	}

	_, body, err := webclient.DoWithRetry(ctx, c.attempts, time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("X-API-KEY", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, b, fmt.Errorf("serper status %d", resp.StatusCode)
		}
		return resp.StatusCode, b, nil
	})
	if err != nil {
		c.log.Warn("serper search failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("search: %w", err)
	}

	var parsed serperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("search: decode serper response: %w", err)
	}
	if len(parsed.Organic) == 0 {
		return nil, ErrNoResults
	}

	out := make([]Evidence, 0, len(parsed.Organic))
	for _, r := range parsed.Organic {
		out = append(out, Evidence{
			Title:   orDefault(r.Title, UnknownTitle),
			Snippet: orDefault(r.Snippet, NoSnippet),
			URL:     orDefault(r.Link, MissingLinkURL),
			Source:  "serper",
		})
	}
	c.log.Debug("serper search", zap.String("query", query), zap.Int("results", len(out)))
	return out, nil
}

func orDefault(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}
