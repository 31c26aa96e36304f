package webserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/ai/core"
	"github.com/stake-plus/sentinel/src/debate"
)

type Debates struct {
	debate Debater
	log    *zap.Logger
}

func NewDebates(d Debater, log *zap.Logger) Debates {
	return Debates{debate: d, log: log}
}

type wireMessage struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

// decodeMessages converts wire messages. With strict set any malformed
// entry fails the whole list; otherwise malformed entries are skipped.
func decodeMessages(raw []json.RawMessage, strict bool) ([]core.Message, bool) {
	out := make([]core.Message, 0, len(raw))
	for _, r := range raw {
		var m wireMessage
		if err := json.Unmarshal(r, &m); err != nil || m.Role == nil || m.Content == nil {
			if strict {
				return nil, false
			}
			continue
		}
		out = append(out, core.Message{Role: strings.ToLower(*m.Role), Content: *m.Content})
	}
	return out, true
}

type debateRequest struct {
	Topic    *string           `json:"topic"`
	Messages []json.RawMessage `json:"messages"`
}

func (h Debates) bind(c *gin.Context) (string, []core.Message, bool) {
	var req debateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Topic == nil || req.Messages == nil {
		badRequest(c, "Missing required parameters")
		return "", nil, false
	}
	msgs, ok := decodeMessages(req.Messages, true)
	if !ok {
		badRequest(c, "Invalid message format")
		return "", nil, false
	}
	return *req.Topic, msgs, true
}

// Start handles POST /api/debate/start.
func (h Debates) Start(c *gin.Context) {
	var req struct {
		Topic *string `json:"topic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Topic == nil || strings.TrimSpace(*req.Topic) == "" {
		badRequest(c, "Missing topic parameter")
		return
	}
	op := h.debate.Start(c.Request.Context(), strings.TrimSpace(*req.Topic))
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"topic":             op.Topic,
		"opening_statement": op.Statement,
		"debate_id":         op.DebateID,
		"timestamp":         now(),
	})
}

// Respond handles POST /api/debate/respond.
func (h Debates) Respond(c *gin.Context) {
	topic, msgs, ok := h.bind(c)
	if !ok {
		return
	}
	reply, err := h.debate.Respond(c.Request.Context(), topic, msgs)
	if errors.Is(err, debate.ErrNoUserMessage) {
		badRequest(c, "No user messages found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"response":    reply.Response,
		"fact_checks": reply.FactChecks,
		"timestamp":   now(),
	})
}

// Judge handles POST /api/debate/judge.
func (h Debates) Judge(c *gin.Context) {
	topic, msgs, ok := h.bind(c)
	if !ok {
		return
	}
	v := h.debate.Judge(c.Request.Context(), topic, msgs)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"judgment":  v.Judgment,
		"full_text": v.FullText,
		"timestamp": now(),
	})
}

// Chatbot handles POST /api/chatbot/message.
func (h Debates) Chatbot(c *gin.Context) {
	var req struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Messages == nil {
		badRequest(c, "Missing messages parameter")
		return
	}
	msgs, _ := decodeMessages(req.Messages, false)
	text := h.debate.Chat(c.Request.Context(), msgs)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"response":  gin.H{"role": core.RoleAssistant, "content": text},
		"timestamp": now(),
	})
}
