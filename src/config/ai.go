package config

import (
	"time"

	"github.com/stake-plus/sentinel/src/ai/core"
)

type AI struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
	BaseURL     string

	OpenAIKey   string
	ClaudeKey   string
	GroqKey     string
	DeepSeekKey string
	GrokKey     string
	GeminiKey   string
}

func loadAI(s *source) AI {
	return AI{
		Provider:    s.str("AI_PROVIDER", "groq"),
		Model:       s.str("AI_MODEL", ""),
		Temperature: s.float("AI_TEMPERATURE", 0.2),
		MaxTokens:   s.integer("AI_MAX_TOKENS", 1500),
		BaseURL:     s.str("AI_BASE_URL", ""),
		OpenAIKey:   s.str("OPENAI_API_KEY", ""),
		ClaudeKey:   s.str("CLAUDE_API_KEY", ""),
		GroqKey:     s.str("GROQ_API_KEY", ""),
		DeepSeekKey: s.str("DEEPSEEK_API_KEY", ""),
		GrokKey:     s.str("GROK_API_KEY", ""),
		GeminiKey:   s.str("GEMINI_API_KEY", ""),
	}
}

// FactoryConfig converts the AI section into provider construction input.
// provider overrides the configured provider when non-empty.
func (c Config) FactoryConfig(provider string) core.FactoryConfig {
	fc := core.FactoryConfig{
		Provider:            c.AI.Provider,
		Model:               c.AI.Model,
		Temperature:         c.AI.Temperature,
		MaxCompletionTokens: c.AI.MaxTokens,
		OpenAIKey:           c.AI.OpenAIKey,
		ClaudeKey:           c.AI.ClaudeKey,
		GroqKey:             c.AI.GroqKey,
		GeminiKey:           c.AI.GeminiKey,
		DeepSeekKey:         c.AI.DeepSeekKey,
		GrokKey:             c.AI.GrokKey,
		Timeout:             c.Pipeline.CallTimeout + 15*time.Second,
		RetryAttempts:       c.Pipeline.RetryAttempts,
	}
	if provider != "" && provider != c.AI.Provider {
		fc.Provider = provider
		fc.Model = ""
	}
	if c.AI.BaseURL != "" {
		fc.Extra = map[string]string{"base_url": c.AI.BaseURL}
	}
	return fc
}
