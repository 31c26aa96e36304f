package discordbot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	CommandFactCheck = "factcheck"
	CommandClaim     = "claim"
)

var commandDefinitions = []*discordgo.ApplicationCommand{
	{
		Name:        CommandFactCheck,
		Description: "Extract and fact-check the claims in a piece of text",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "text",
			Description: "Text to analyze",
			Required:    true,
		}},
	},
	{
		Name:        CommandClaim,
		Description: "Fact-check a single claim",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "claim",
			Description: "The claim to verify",
			Required:    true,
		}},
	},
}

// registerCommands creates the slash commands in guildID. Commands that
// already exist are left alone.
func registerCommands(s *discordgo.Session, guildID string, log *zap.Logger) error {
	if guildID == "" {
		return errors.New("discordbot: guildID is required to register slash commands")
	}

	var failures []string
	for _, def := range commandDefinitions {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, def); err != nil {
			if isDuplicateCommandError(err) {
				log.Debug("slash command already registered", zap.String("command", def.Name))
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %v", def.Name, err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("discordbot: slash command registration errors: %s", strings.Join(failures, "; "))
	}
	return nil
}

func isDuplicateCommandError(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		if strings.Contains(strings.ToLower(restErr.Message.Message), "already exists") {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "50035") && strings.Contains(msg, "already exists")
}

// optionString returns the named string option of an interaction.
func optionString(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}
