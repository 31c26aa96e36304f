// Package compat serves every vendor that exposes an OpenAI-compatible chat
// completions endpoint through the go-openai SDK.
package compat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/stake-plus/sentinel/src/ai/core"
	"github.com/stake-plus/sentinel/src/webclient"
)

type vendor struct {
	baseURL string
	key     func(core.FactoryConfig) string
}

var vendors = map[string]vendor{
	"groq": {
		baseURL: "https://api.groq.com/openai/v1",
		key:     func(c core.FactoryConfig) string { return c.GroqKey },
	},
	"deepseek": {
		baseURL: "https://api.deepseek.com/v1",
		key:     func(c core.FactoryConfig) string { return c.DeepSeekKey },
	},
	"grok": {
		baseURL: "https://api.x.ai/v1",
		key:     func(c core.FactoryConfig) string { return c.GrokKey },
	},
	"gemini": {
		baseURL: "https://generativelanguage.googleapis.com/v1beta/openai",
		key:     func(c core.FactoryConfig) string { return c.GeminiKey },
	},
}

func init() {
	core.RegisterProvider("groq", newClient, "llama")
	core.RegisterProvider("deepseek", newClient)
	core.RegisterProvider("grok", newClient, "xai")
	core.RegisterProvider("gemini", newClient)
}

type client struct {
	name     string
	api      *goopenai.Client
	attempts int
	defaults core.Options
}

func canonical(provider string) string {
	switch p := strings.ToLower(strings.TrimSpace(provider)); p {
	case "llama":
		return "groq"
	case "xai":
		return "grok"
	default:
		return p
	}
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	name := canonical(cfg.Provider)
	v, ok := vendors[name]
	if !ok {
		return nil, fmt.Errorf("compat: unknown vendor %q", cfg.Provider)
	}
	key := v.key(cfg)
	if key == "" {
		return nil, fmt.Errorf("%s: API key not configured", name)
	}

	sdkCfg := goopenai.DefaultConfig(key)
	sdkCfg.BaseURL = v.baseURL
	if override := strings.TrimSpace(cfg.Extra["base_url"]); override != "" {
		sdkCfg.BaseURL = strings.TrimRight(override, "/")
	}
	sdkCfg.HTTPClient = webclient.NewDefault(cfg.Timeout)

	temp := cfg.Temperature
	if temp == 0 {
		temp = 0.2
	}
	maxTokens := cfg.MaxCompletionTokens
	if maxTokens <= 0 {
		maxTokens = 1500
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}

	return &client{
		name:     name,
		api:      goopenai.NewClientWithConfig(sdkCfg),
		attempts: attempts,
		defaults: core.Options{
			Model:               core.ResolveModelName(name, cfg.Model),
			Temperature:         temp,
			MaxCompletionTokens: maxTokens,
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
	req := goopenai.ChatCompletionRequest{
		Model:       opts.Model,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxCompletionTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	var resp goopenai.ChatCompletionResponse
	_, _, err := webclient.DoWithRetry(ctx, c.attempts, 2*time.Second, func() (int, []byte, error) {
		r, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return statusOf(err), nil, err
		}
		resp = r
		return http.StatusOK, nil, nil
	})
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", c.name, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", core.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// statusOf extracts the HTTP status from SDK errors; transport failures map to 0.
func statusOf(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
