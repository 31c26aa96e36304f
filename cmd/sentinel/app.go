package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/ai/core"
	"github.com/stake-plus/sentinel/src/cache"
	"github.com/stake-plus/sentinel/src/config"
	"github.com/stake-plus/sentinel/src/debate"
	"github.com/stake-plus/sentinel/src/factcheck/claims"
	"github.com/stake-plus/sentinel/src/factcheck/report"
	"github.com/stake-plus/sentinel/src/factcheck/verify"
	"github.com/stake-plus/sentinel/src/metrics"
	"github.com/stake-plus/sentinel/src/search"
	"github.com/stake-plus/sentinel/src/transcribe"
)

const (
	debateEvidenceLimit = 3
	searchCacheEntries  = 2048
)

// app holds the wired services shared by every command.
type app struct {
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	checker  *report.Service
	debate   *debate.Service
	media    *transcribe.Service
}

// buildApp wires the pipeline. rdb may be nil; the search cache then lives in
// process memory.
func buildApp(cfg config.Config, log *zap.Logger, rdb *redis.Client) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	llm, err := core.NewClient(cfg.FactoryConfig(""))
	if err != nil {
		return nil, fmt.Errorf("ai client: %w", err)
	}
	log.Info("ai provider ready",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", core.ResolveModelName(cfg.AI.Provider, cfg.AI.Model)))

	var searcher search.WebSearcher = search.NewSerperClient(search.SerperConfig{
		APIKey:   cfg.Search.SerperKey,
		Timeout:  cfg.Pipeline.CallTimeout,
		Attempts: cfg.Pipeline.RetryAttempts,
		QPS:      cfg.Search.QPS,
		Logger:   log.Named("search"),
	})
	if cfg.Search.CacheTTL > 0 {
		var store cache.Store = cache.NewMemoryStore(searchCacheEntries)
		if rdb != nil {
			store = cache.NewRedisStore(rdb, "sentinel:search:")
		}
		searcher = cache.NewSearcher(searcher, store, cfg.Search.CacheTTL, log.Named("search.cache"))
	}
	var facts search.FactChecker
	if cfg.Search.FactCheckKey != "" {
		facts = search.NewFactCheckClient(cfg.Search.FactCheckKey, "", cfg.Pipeline.CallTimeout, log.Named("factcheck"))
	}
	extractor := claims.NewExtractor(llm, log.Named("claims"), m)

	verifier := verify.New(llm, searcher, facts, verify.Options{
		SearchResults:     cfg.Search.Results,
		EvidenceLimit:     cfg.Search.EvidenceLimit,
		AdditionalContext: cfg.Pipeline.AdditionalContext,
		CallTimeout:       cfg.Pipeline.CallTimeout,
	}, log.Named("verify"), m)
	pipeline := report.Options{Workers: cfg.Pipeline.Workers, ShortTextWords: cfg.Pipeline.ShortTextWords}
	checker := report.NewService(extractor, verifier, pipeline, log.Named("report"), m)

	// Debate turns want a quick answer: fewer sources and no enrichment.
	debateVerifier := verify.New(llm, searcher, nil, verify.Options{
		SearchResults: cfg.Search.Results,
		EvidenceLimit: debateEvidenceLimit,
		CallTimeout:   cfg.Pipeline.CallTimeout,
	}, log.Named("debate.verify"), m)
	debateChecks := report.NewService(extractor, debateVerifier, pipeline, log.Named("debate.report"), m)
	debates := debate.NewService(llm, extractor, debateChecks, log.Named("debate"))

	a := &app{registry: reg, metrics: m, checker: checker, debate: debates}

	whisper, err := transcribe.NewWhisper(cfg.AI.OpenAIKey, cfg.Media.WhisperModel, "", 10*time.Minute)
	if err != nil {
		log.Warn("transcription disabled", zap.Error(err))
		return a, nil
	}
	a.media = transcribe.NewService(transcribe.Config{
		YtDlpPath:       cfg.Media.YtDlpPath,
		FFmpegLocation:  cfg.Media.FFmpegLocation,
		TempDir:         cfg.Media.TempDir,
		InfoTimeout:     30 * time.Second,
		DownloadTimeout: 10 * time.Minute,
	}, whisper, transcribe.ExecRunner, log.Named("transcribe"))
	return a, nil
}
