package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct{ provider string }

func (s stubClient) Complete(context.Context, string, string, Options) (string, error) {
	return s.provider, nil
}

func (s stubClient) Chat(context.Context, []Message, Options) (string, error) {
	return s.provider, nil
}

func TestNewClient_ResolvesAliasesCaseInsensitively(t *testing.T) {
	RegisterProvider("stubprov", func(cfg FactoryConfig) (Client, error) {
		return stubClient{provider: cfg.Provider}, nil
	}, "StubAlias")

	c, err := NewClient(FactoryConfig{Provider: "STUBALIAS"})
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), "", "", Options{})
	require.NoError(t, err)
	assert.Equal(t, "STUBALIAS", out)
	assert.Contains(t, RegisteredProviders(), "stubalias")
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(FactoryConfig{Provider: "nope"})
	assert.ErrorContains(t, err, `provider "nope" not registered`)
}

func TestResolveModelName(t *testing.T) {
	assert.Equal(t, "custom", ResolveModelName("groq", " custom "))
	assert.Equal(t, "llama-3.1-8b-instant", ResolveModelName("GROQ", ""))
	assert.Equal(t, "unknown", ResolveModelName("mystery", ""))
}

func TestMerge(t *testing.T) {
	defaults := Options{Model: "m", Temperature: 0.2, MaxCompletionTokens: 100, SystemPrompt: "sys"}

	out := Merge(defaults, Options{Temperature: 0.7})
	assert.Equal(t, "m", out.Model)
	assert.Equal(t, 0.7, out.Temperature)
	assert.Equal(t, 100, out.MaxCompletionTokens)
	assert.Equal(t, "sys", out.SystemPrompt)
}

func TestBuildMessages(t *testing.T) {
	assert.Equal(t, []Message{{Role: RoleSystem, Content: "s"}}, BuildMessages("s", ""))
	assert.Equal(t, []Message{
		{Role: RoleSystem, Content: "s"},
		{Role: RoleUser, Content: "u"},
	}, BuildMessages("s", "u"))
	assert.Empty(t, BuildMessages("", ""))
}
