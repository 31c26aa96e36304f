// Package debate runs a structured debate between a user and a model
// opponent, fact-checks the user's turns, and judges the outcome. It also
// hosts the media-literacy chatbot, which shares the same conversation shape.
package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/ai/core"
	"github.com/stake-plus/sentinel/src/factcheck/claims"
	"github.com/stake-plus/sentinel/src/factcheck/verify"
)

// ErrNoUserMessage is returned when a conversation has no user turn to answer.
var ErrNoUserMessage = errors.New("debate: no user messages found")

const (
	maxSourcesInPrompt = 2
	turnTemperature    = 0.7
	turnMaxTokens      = 800
	judgeTemperature   = 0.3
	judgeMaxTokens     = 1200
)

type FactualExtractor interface {
	ExtractFactual(ctx context.Context, text string) []claims.Claim
}

type BatchVerifier interface {
	VerifyAll(ctx context.Context, cs []claims.Claim) []verify.Verdict
}

type Service struct {
	llm       core.Client
	extractor FactualExtractor
	verifier  BatchVerifier
	log       *zap.Logger
}

// NewService wires the debate flows. extractor and verifier may be nil, which
// disables fact-checking of user turns.
func NewService(llm core.Client, extractor FactualExtractor, verifier BatchVerifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{llm: llm, extractor: extractor, verifier: verifier, log: log}
}

type Opening struct {
	Topic     string `json:"topic"`
	Statement string `json:"opening_statement"`
	DebateID  string `json:"debate_id"`
}

// Start produces the model's opening statement, taking the opposing view.
func (s *Service) Start(ctx context.Context, topic string) Opening {
	out := Opening{Topic: topic, DebateID: uuid.NewString()}
	text, err := s.llm.Chat(ctx, []core.Message{
		{Role: core.RoleUser, Content: fmt.Sprintf(openingPrompt, topic)},
	}, turnOptions(fmt.Sprintf(debateSystemPrompt, topic)))
	if err != nil {
		s.log.Warn("opening statement failed", zap.String("topic", topic), zap.Error(err))
		text = fmt.Sprintf("I'm ready to debate %q, but I couldn't prepare an opening statement right now. Please share your position to begin.", topic)
	}
	out.Statement = text
	return out
}

type Reply struct {
	Response   string           `json:"response"`
	FactChecks []verify.Verdict `json:"fact_checks"`
}

// Respond answers the latest user turn. Factual claims in that turn are
// verified first and their verdicts are put in front of the model.
func (s *Service) Respond(ctx context.Context, topic string, messages []core.Message) (Reply, error) {
	latest := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleUser {
			latest = messages[i].Content
			break
		}
	}
	if latest == "" {
		return Reply{}, ErrNoUserMessage
	}

	checks := s.factCheck(ctx, latest)
	system := fmt.Sprintf(debateSystemPrompt, topic) + FactCheckBrief(checks)

	text, err := s.llm.Chat(ctx, conversation(messages), turnOptions(system))
	if err != nil {
		s.log.Warn("debate reply failed", zap.String("topic", topic), zap.Error(err))
		text = "I wasn't able to formulate a response just now. Could you restate your strongest argument so we can continue?"
	}
	return Reply{Response: text, FactChecks: checks}, nil
}

func (s *Service) factCheck(ctx context.Context, text string) []verify.Verdict {
	if s.extractor == nil || s.verifier == nil {
		return []verify.Verdict{}
	}
	found := s.extractor.ExtractFactual(ctx, text)
	if len(found) == 0 {
		return []verify.Verdict{}
	}
	s.log.Debug("fact-checking debate turn", zap.Int("claims", len(found)))
	return s.verifier.VerifyAll(ctx, found)
}

// FactCheckBrief renders verdicts as a block appended to the debate system prompt.
func FactCheckBrief(checks []verify.Verdict) string {
	if len(checks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(factCheckHeader)
	for i, v := range checks {
		fmt.Fprintf(&b, "\nClaim %d: %s\n", i+1, v.Claim)
		fmt.Fprintf(&b, "Status: %s\n", v.Result)
		fmt.Fprintf(&b, "Reason: %s\n", v.Summary)
		if len(v.Sources) > 0 {
			b.WriteString("Sources:\n")
			for _, src := range v.Sources[:min(len(v.Sources), maxSourcesInPrompt)] {
				fmt.Fprintf(&b, "- %s\n", src.Name)
			}
		}
	}
	return b.String()
}

type Verdict struct {
	Judgment Judgment `json:"judgment"`
	FullText string   `json:"full_text"`
}

// Judge asks the model to judge the whole debate and mines its answer.
func (s *Service) Judge(ctx context.Context, topic string, messages []core.Message) Verdict {
	prompt := fmt.Sprintf(judgeUserPrompt, topic, Transcript(messages))
	text, err := s.llm.Complete(ctx, fmt.Sprintf(judgeSystemPrompt, topic), prompt, core.Options{
		Temperature:         judgeTemperature,
		MaxCompletionTokens: judgeMaxTokens,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn("debate judging failed", zap.String("topic", topic), zap.Error(err))
		return Verdict{Judgment: FallbackJudgment(text), FullText: text}
	}
	return Verdict{Judgment: ParseJudgment(text), FullText: text}
}

// Transcript renders the debate as "Human:" and "AI:" paragraphs. System turns are skipped.
func Transcript(messages []core.Message) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			continue
		case core.RoleUser:
			b.WriteString("Human: ")
		default:
			b.WriteString("AI: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Chat answers as the media-literacy assistant.
func (s *Service) Chat(ctx context.Context, messages []core.Message) string {
	text, err := s.llm.Chat(ctx, conversation(messages), turnOptions(chatbotSystemPrompt))
	if err != nil {
		s.log.Warn("chatbot reply failed", zap.Error(err))
		return "I'm having trouble answering right now. In the meantime, check who published a claim, look for the original source, and see whether independent outlets report the same thing."
	}
	return text
}

// conversation drops caller-supplied system turns so the service's own
// system prompt is the only one.
func conversation(messages []core.Message) []core.Message {
	out := make([]core.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == core.RoleSystem || strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

func turnOptions(system string) core.Options {
	return core.Options{
		SystemPrompt:        system,
		Temperature:         turnTemperature,
		MaxCompletionTokens: turnMaxTokens,
	}
}
