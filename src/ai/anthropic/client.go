package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stake-plus/sentinel/src/ai/core"
	"github.com/stake-plus/sentinel/src/webclient"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
	defaultMaxTokens  = 1024
)

func init() {
	for _, name := range []string{"claude", "haiku45", "sonnet45", "opus41"} {
		core.RegisterProvider(name, NewClient)
	}
	core.RegisterProvider("haiku", NewClient)
}

type client struct {
	apiKey     string
	endpoint   string
	attempts   int
	httpClient *http.Client
	defaults   core.Options
}

// NewClient constructs an Anthropic-backed implementation of core.Client. The
// default model follows the registered provider name.
func NewClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.ClaudeKey == "" {
		return nil, fmt.Errorf("anthropic: API key not configured")
	}

	provider := strings.ToLower(cfg.Provider)
	if provider == "haiku" {
		provider = "haiku45"
	}

	endpoint := anthropicEndpoint
	if v := strings.TrimSpace(cfg.Extra["base_url"]); v != "" {
		endpoint = strings.TrimRight(v, "/") + "/v1/messages"
	}

	return &client{
		apiKey:     cfg.ClaudeKey,
		endpoint:   endpoint,
		attempts:   orInt(cfg.RetryAttempts, 3),
		httpClient: webclient.NewDefault(cfg.Timeout),
		defaults: core.Options{
			Model:               core.ResolveModelName(provider, cfg.Model),
			Temperature:         orFloat(cfg.Temperature, 0.2),
			MaxCompletionTokens: orInt(cfg.MaxCompletionTokens, defaultMaxTokens),
			SystemPrompt:        cfg.SystemPrompt,
		},
	}, nil
}

func (c *client) Complete(ctx context.Context, systemPrompt string, userPrompt string, opts core.Options) (string, error) {
	merged := core.Merge(c.defaults, opts)
	if systemPrompt != "" {
		merged.SystemPrompt = systemPrompt
	}
	// The messages API needs at least one user turn; a system-only prompt is
	// sent as the user turn instead.
	if userPrompt == "" {
		userPrompt, merged.SystemPrompt = merged.SystemPrompt, ""
	}
	return c.invoke(ctx, merged, []core.Message{{Role: core.RoleUser, Content: userPrompt}})
}

func (c *client) Chat(ctx context.Context, messages []core.Message, opts core.Options) (string, error) {
	merged := core.Merge(c.defaults, opts)
	var system []string
	if merged.SystemPrompt != "" {
		system = append(system, merged.SystemPrompt)
	}
	turns := make([]core.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	merged.SystemPrompt = strings.Join(system, "\n\n")
	return c.invoke(ctx, merged, turns)
}

func (c *client) invoke(ctx context.Context, opts core.Options, turns []core.Message) (string, error) {
	maxTokens := opts.MaxCompletionTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	messages := make([]map[string]interface{}, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, map[string]interface{}{
			"role": t.Role,
			"content": []map[string]string{
				{"type": "text", "text": t.Content},
			},
		})
	}

	body := map[string]interface{}{
		"model":       opts.Model,
		"max_tokens":  maxTokens,
		"temperature": opts.Temperature,
		"messages":    messages,
	}
	if opts.SystemPrompt != "" {
		body["system"] = opts.SystemPrompt
	}

	respBody, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}

	text := extractText(respBody.Content)
	if text == "" {
		return "", core.ErrEmptyResponse
	}
	return text, nil
}

func (c *client) post(ctx context.Context, payload map[string]interface{}) (*anthropicResponse, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	_, body, err := webclient.DoWithRetry(ctx, c.attempts, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)
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
			return resp.StatusCode, b, fmt.Errorf("status %d", resp.StatusCode)
		}
		return resp.StatusCode, b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var result anthropicResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}
	return &result, nil
}

func extractText(chunks []anthropicContent) string {
	var b strings.Builder
	for _, chunk := range chunks {
		if chunk.Text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(chunk.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v != 0 {
		return v
	}
	return def
}
