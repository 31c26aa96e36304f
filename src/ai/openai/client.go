package openai

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

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

func init() {
	core.RegisterProvider("openai", newClient, "gpt4o", "chatgpt")
}

type client struct {
	apiKey     string
	endpoint   string
	attempts   int
	httpClient *http.Client
	defaults   core.Options
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("openai: API key not configured")
	}

	endpoint := defaultEndpoint
	if v := strings.TrimSpace(cfg.Extra["base_url"]); v != "" {
		endpoint = strings.TrimRight(v, "/") + "/chat/completions"
	}

	return &client{
		apiKey:     cfg.OpenAIKey,
		endpoint:   endpoint,
		attempts:   orInt(cfg.RetryAttempts, 3),
		httpClient: webclient.NewDefault(cfg.Timeout),
		defaults: core.Options{
			Model:               core.ResolveModelName(cfg.Provider, cfg.Model),
			Temperature:         orFloat(cfg.Temperature, 0.2),
			MaxCompletionTokens: orInt(cfg.MaxCompletionTokens, 1500),
			SystemPrompt:        cfg.SystemPrompt,
		},
	}, nil
}

func (c *client) Complete(ctx context.Context, systemPrompt string, userPrompt string, opts core.Options) (string, error) {
	merged := core.Merge(c.defaults, opts)
	if systemPrompt == "" {
		systemPrompt = merged.SystemPrompt
	}
	return c.invoke(ctx, merged, core.BuildMessages(systemPrompt, userPrompt))
}

func (c *client) Chat(ctx context.Context, messages []core.Message, opts core.Options) (string, error) {
	merged := core.Merge(c.defaults, opts)
	turns := messages
	if opts.SystemPrompt != "" {
		turns = append([]core.Message{{Role: core.RoleSystem, Content: opts.SystemPrompt}}, messages...)
	}
	return c.invoke(ctx, merged, turns)
}

func (c *client) invoke(ctx context.Context, opts core.Options, messages []core.Message) (string, error) {
	turns := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, map[string]string{"role": m.Role, "content": m.Content})
	}
	reqBody := map[string]interface{}{
		"model":       opts.Model,
		"messages":    turns,
		"temperature": opts.Temperature,
	}
	if opts.MaxCompletionTokens > 0 {
		reqBody["max_tokens"] = opts.MaxCompletionTokens
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	_, body, err := webclient.DoWithRetry(ctx, c.attempts, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
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
		return "", fmt.Errorf("openai API error: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", core.ErrEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}

func orInt(v, d int) int {
	if v > 0 {
		return v
	}
	return d
}

func orFloat(v, d float64) float64 {
	if v != 0 {
		return v
	}
	return d
}
