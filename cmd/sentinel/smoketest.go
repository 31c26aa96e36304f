package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stake-plus/sentinel/src/ai/core"
)

const (
	smokeSystemPrompt = "You are a terse assistant used for connectivity checks."
	smokePrompt       = "Reply with the single word OK."
)

func newSmoketestCmd(g *globals) *cobra.Command {
	var (
		providers string
		model     string
		timeout   time.Duration
		maxBytes  int
	)
	cmd := &cobra.Command{
		Use:   "smoketest",
		Short: "Send a one-line prompt to each provider and report latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := resolveProviders(providers, g.cfg.AI.Provider)
			failed := 0
			for _, name := range names {
				fc := g.cfg.FactoryConfig(name)
				if model != "" {
					fc.Model = model
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "=== %s (%s) ===\n", name, core.ResolveModelName(name, fc.Model))
				reply, elapsed, err := smoke(cmd.Context(), fc, timeout)
				if err != nil {
					failed++
					fmt.Fprintf(out, "❌ %v\n", err)
					continue
				}
				fmt.Fprintf(out, "✅ (%.1fs) %s\n", elapsed.Seconds(), truncate(reply, maxBytes))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d providers failed", failed, len(names))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&providers, "providers", "", "comma-separated providers or 'all' (default: configured provider)")
	cmd.Flags().StringVar(&model, "model", "", "override model name")
	cmd.Flags().DurationVar(&timeout, "timeout", 45*time.Second, "per-provider timeout")
	cmd.Flags().IntVar(&maxBytes, "max-bytes", 400, "maximum bytes of each reply to print (0 = unlimited)")
	return cmd
}

func smoke(ctx context.Context, fc core.FactoryConfig, timeout time.Duration) (string, time.Duration, error) {
	client, err := core.NewClient(fc)
	if err != nil {
		return "", 0, fmt.Errorf("client init: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	reply, err := client.Complete(ctx, smokeSystemPrompt, smokePrompt, core.Options{MaxCompletionTokens: 16})
	return reply, time.Since(start), err
}

func resolveProviders(raw, fallback string) []string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return []string{fallback}
	case strings.EqualFold(raw, "all"):
		return []string{"groq", "openai", "claude", "deepseek", "grok", "gemini"}
	}
	var out []string
	seen := map[string]bool{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
