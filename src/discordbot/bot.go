// Package discordbot exposes the fact-check pipeline as Discord slash commands.
package discordbot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/factcheck/report"
)

// Checker is the slice of the pipeline the bot needs.
type Checker interface {
	CheckText(ctx context.Context, text string) (*report.Report, error)
	CheckClaim(ctx context.Context, claim string) report.ReportedVerdict
}

type Bot struct {
	session *discordgo.Session
	guildID string
	checker Checker
	timeout time.Duration
	log     *zap.Logger
}

func New(token, guildID string, checker Checker, timeout time.Duration, log *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discordbot: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	b := &Bot{session: dg, guildID: guildID, checker: checker, timeout: timeout, log: log}
	dg.Identify.Intents = discordgo.IntentsGuilds
	dg.AddHandler(b.handleReady)
	dg.AddHandler(b.handleInteraction)
	return b, nil
}

// Run opens the gateway and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discordbot: open: %w", err)
	}
	<-ctx.Done()
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("discord bot connected", zap.String("user", r.User.Username))
	if err := registerCommands(s, b.guildID, b.log); err != nil {
		b.log.Warn("slash command registration", zap.Error(err))
	}
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	var run func(ctx context.Context) string
	switch data.Name {
	case CommandFactCheck:
		text := optionString(data, "text")
		run = func(ctx context.Context) string { return b.factCheck(ctx, text) }
	case CommandClaim:
		claim := optionString(data, "claim")
		run = func(ctx context.Context) string { return FormatVerdict(b.checker.CheckClaim(ctx, claim)) }
	default:
		return
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		b.log.Warn("slash ack failed", zap.String("command", data.Name), zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		b.reply(s, i.Interaction, run(ctx))
	}()
}

func (b *Bot) factCheck(ctx context.Context, text string) string {
	rep, err := b.checker.CheckText(ctx, text)
	if err != nil {
		return "The fact check was interrupted. Please try again."
	}
	return FormatReport(rep)
}

// reply edits the deferred response with the first chunk and sends the rest as follow-ups.
func (b *Bot) reply(s *discordgo.Session, in *discordgo.Interaction, text string) {
	chunks := splitMessage(text)
	first := chunks[0]
	if _, err := s.InteractionResponseEdit(in, &discordgo.WebhookEdit{Content: &first}); err != nil {
		b.log.Warn("interaction edit failed", zap.Error(err))
		return
	}
	for _, c := range chunks[1:] {
		if _, err := s.FollowupMessageCreate(in, true, &discordgo.WebhookParams{Content: c}); err != nil {
			b.log.Warn("interaction follow-up failed", zap.Error(err))
			return
		}
	}
}
