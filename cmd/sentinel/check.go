package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stake-plus/sentinel/src/ai/core"
	"github.com/stake-plus/sentinel/src/factcheck/report"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// inputText joins args, or reads stdin when there are none or the only arg is "-".
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return strings.Join(args, " "), nil
}

func newCheckCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "check [text|-]",
		Short: "Extract and verify the claims in a text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			a, err := buildApp(g.cfg, g.log, nil)
			if err != nil {
				return err
			}
			rep, err := a.checker.CheckText(cmd.Context(), text)
			if err != nil {
				return err
			}
			if rep.Empty() {
				return printJSON(cmd.OutOrStdout(), report.NewNoClaims(text))
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
}

func newClaimCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <claim>",
		Short: "Verify a single claim",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(g.cfg, g.log, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a.checker.CheckClaim(cmd.Context(), strings.Join(args, " ")))
		},
	}
}

type transcriptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func readTranscript(r io.Reader) ([]core.Message, error) {
	var raw []transcriptMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}
	out := make([]core.Message, 0, len(raw))
	for _, m := range raw {
		if m.Role == "" || m.Content == "" {
			continue
		}
		out = append(out, core.Message{Role: strings.ToLower(m.Role), Content: m.Content})
	}
	if len(out) == 0 {
		return nil, errors.New("transcript: no messages")
	}
	return out, nil
}

func newJudgeCmd(g *globals) *cobra.Command {
	var topic, file string
	cmd := &cobra.Command{
		Use:   "judge --topic <topic> [--file transcript.json]",
		Short: "Judge a debate transcript (JSON array of {role, content}) read from a file or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			msgs, err := readTranscript(in)
			if err != nil {
				return err
			}
			a, err := buildApp(g.cfg, g.log, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a.debate.Judge(cmd.Context(), topic, msgs))
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "debate topic")
	cmd.Flags().StringVar(&file, "file", "", "transcript file (default stdin)")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}
