package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/stake-plus/sentinel/src/webclient"
)

// Transcriber converts an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Whisper transcribes through the OpenAI audio API.
type Whisper struct {
	api   *goopenai.Client
	model string
}

// NewWhisper returns a Whisper client. baseURL is optional.
func NewWhisper(apiKey, model, baseURL string, timeout time.Duration) (*Whisper, error) {
	if apiKey == "" {
		return nil, errors.New("transcribe: OpenAI API key not configured")
	}
	if model == "" {
		model = goopenai.Whisper1
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	cfg.HTTPClient = webclient.NewDefault(timeout)
	return &Whisper{api: goopenai.NewClientWithConfig(cfg), model: model}, nil
}

func (w *Whisper) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := w.api.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    w.model,
		FilePath: path,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: whisper: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("transcribe: empty transcript")
	}
	return text, nil
}
