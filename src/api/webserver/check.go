package webserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/factcheck/report"
)

type Checks struct {
	checker Checker
	log     *zap.Logger
}

func NewChecks(checker Checker, log *zap.Logger) Checks {
	return Checks{checker: checker, log: log}
}

type textRequest struct {
	Text *string `json:"text"`
}

type claimRequest struct {
	Claim *string `json:"claim"`
}

// Check handles POST /check.
func (h Checks) Check(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		badRequest(c, "Missing 'text' field in request")
		return
	}
	rep, err := h.checker.CheckText(c.Request.Context(), *req.Text)
	if err != nil {
		abortCanceled(c, err)
		return
	}
	if rep.Empty() {
		c.JSON(http.StatusOK, report.NewNoClaims(*req.Text))
		return
	}
	c.JSON(http.StatusOK, rep)
}

// CheckSingle handles POST /check-single.
func (h Checks) CheckSingle(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Claim == nil {
		badRequest(c, "Missing 'claim' field in request")
		return
	}
	v := h.checker.CheckClaim(c.Request.Context(), *req.Claim)
	c.JSON(http.StatusOK, v)
}

// Compact handles POST /api/check.
func (h Checks) Compact(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		badRequest(c, "Missing 'text' field in request")
		return
	}
	rep, err := h.checker.CheckText(c.Request.Context(), *req.Text)
	if err != nil {
		abortCanceled(c, err)
		return
	}
	c.JSON(http.StatusOK, report.Compact(rep, *req.Text))
}

// abortCanceled handles a pipeline stopped by the client going away. Nothing
// useful can reach the client, so only the status is recorded.
func abortCanceled(c *gin.Context, err error) {
	_ = c.Error(err)
	status := http.StatusServiceUnavailable
	if errors.Is(err, context.Canceled) {
		status = 499
	}
	c.AbortWithStatus(status)
}
