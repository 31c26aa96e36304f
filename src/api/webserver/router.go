package webserver

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/ai/core"
	"github.com/stake-plus/sentinel/src/config"
	"github.com/stake-plus/sentinel/src/debate"
	"github.com/stake-plus/sentinel/src/factcheck/report"
	"github.com/stake-plus/sentinel/src/metrics"
	"github.com/stake-plus/sentinel/src/transcribe"
)

// Checker runs the fact-check pipeline. *report.Service satisfies it.
type Checker interface {
	CheckText(ctx context.Context, text string) (*report.Report, error)
	CheckTranscript(ctx context.Context, transcript string) (*report.Report, error)
	CheckClaim(ctx context.Context, claim string) report.ReportedVerdict
}

// Debater runs debates and the chatbot. *debate.Service satisfies it.
type Debater interface {
	Start(ctx context.Context, topic string) debate.Opening
	Respond(ctx context.Context, topic string, messages []core.Message) (debate.Reply, error)
	Judge(ctx context.Context, topic string, messages []core.Message) debate.Verdict
	Chat(ctx context.Context, messages []core.Message) string
}

// Transcriber turns media into text. *transcribe.Service satisfies it.
type Transcriber interface {
	TranscribeVideo(ctx context.Context, url string) (transcribe.Video, error)
	TranscribeUpload(ctx context.Context, r io.Reader, filename string) (string, error)
}

// Deps are the collaborators behind the HTTP API. Media may be nil, in which
// case the transcription routes answer 503. Redis switches rate limiting
// to a shared fixed window.
type Deps struct {
	Checker  Checker
	Debate   Debater
	Media    Transcriber
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Redis    *redis.Client
	Log      *zap.Logger
}

// New builds the gin engine with every route attached.
func New(cfg config.Config, deps Deps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(deps.Log, deps.Metrics))
	attachRoutes(r, cfg, deps)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Config, deps Deps) {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 || (len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	var limiter Limiter
	if deps.Redis != nil {
		limiter = NewRedisLimiter(deps.Redis, cfg.RateLimit, cfg.RateWindow)
	} else {
		limiter = NewMemoryLimiter(cfg.RateLimit, cfg.RateWindow)
	}

	checkH := NewChecks(deps.Checker, deps.Log)
	mediaH := NewMedia(deps.Media, deps.Checker, deps.Log)
	debateH := NewDebates(deps.Debate, deps.Log)

	secured := r.Group("/")
	secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)), RateLimitMiddleware(limiter, deps.Log))
	{
		secured.POST("/check", checkH.Check)
		secured.POST("/check-single", checkH.CheckSingle)
		secured.POST("/transcribe", mediaH.Transcribe)
		secured.POST("/transcribe-audio", mediaH.TranscribeAudio)
	}

	api := secured.Group("/api")
	{
		api.POST("/check", checkH.Compact)
		api.POST("/debate/start", debateH.Start)
		api.POST("/debate/respond", debateH.Respond)
		api.POST("/debate/judge", debateH.Judge)
		api.POST("/chatbot/message", debateH.Chatbot)
	}
}

// now is the response timestamp in fractional unix seconds.
func now() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
