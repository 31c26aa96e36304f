// Package report runs the fact-check pipeline end to end: sanitize input,
// extract claims, verify them on a bounded worker pool and aggregate the
// verdicts into a report.
package report

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stake-plus/sentinel/src/factcheck/claims"
	"github.com/stake-plus/sentinel/src/factcheck/trust"
	"github.com/stake-plus/sentinel/src/factcheck/verify"
	"github.com/stake-plus/sentinel/src/metrics"
)

// UserStatementContext is attached to claims submitted directly by a user.
const UserStatementContext = "User-provided statement for verification"

type ClaimExtractor interface {
	Extract(ctx context.Context, text string) []claims.Claim
}

type ClaimVerifier interface {
	Verify(ctx context.Context, c claims.Claim) verify.Verdict
}

type Options struct {
	// Workers bounds concurrent claim verifications (1-8).
	Workers int
	// ShortTextWords is the word count below which text is verified as one claim.
	ShortTextWords int
}

type Service struct {
	extractor ClaimExtractor
	verifier  ClaimVerifier
	sanitizer *bluemonday.Policy
	opts      Options
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewService(extractor ClaimExtractor, verifier ClaimVerifier, opts Options, log *zap.Logger, m *metrics.Metrics) *Service {
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	if opts.Workers > 8 {
		opts.Workers = 8
	}
	if opts.ShortTextWords < 0 {
		opts.ShortTextWords = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		extractor: extractor,
		verifier:  verifier,
		sanitizer: bluemonday.StrictPolicy(),
		opts:      opts,
		log:       log,
		metrics:   m,
	}
}

// Sanitize strips markup from submitted text.
func (s *Service) Sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}

// UserClaim wraps text submitted as a single statement.
func UserClaim(text string) claims.Claim {
	text = strings.TrimSpace(text)
	return claims.Claim{Text: text, Context: UserStatementContext, SearchQuery: "fact check " + text}
}

// CheckText builds a report for free text. Short text is verified as a single
// claim. The error is non-nil only when ctx was cancelled.
func (s *Service) CheckText(ctx context.Context, text string) (*Report, error) {
	clean := s.Sanitize(text)
	var found []claims.Claim
	switch {
	case clean == "":
		found = []claims.Claim{}
	case len(strings.Fields(clean)) < s.opts.ShortTextWords:
		s.log.Debug("short text verified as one claim", zap.Int("words", len(strings.Fields(clean))))
		found = []claims.Claim{UserClaim(clean)}
	default:
		found = s.extractor.Extract(ctx, clean)
	}

	rep, err := s.run(ctx, found)
	if err != nil {
		return nil, err
	}
	rep.AnalysisSummary.OriginalText = Truncate(clean, 1000)
	return rep, nil
}

// CheckTranscript builds a report for a media transcript; extraction always runs.
func (s *Service) CheckTranscript(ctx context.Context, transcript string) (*Report, error) {
	clean := s.Sanitize(transcript)
	found := []claims.Claim{}
	if clean != "" {
		found = s.extractor.Extract(ctx, clean)
	}
	rep, err := s.run(ctx, found)
	if err != nil {
		return nil, err
	}
	rep.AnalysisSummary.Transcript = Truncate(clean, 1000)
	return rep, nil
}

// CheckClaim verifies one user-submitted claim.
func (s *Service) CheckClaim(ctx context.Context, claim string) ReportedVerdict {
	return NewReportedVerdict(s.verifier.Verify(ctx, UserClaim(s.Sanitize(claim))))
}

// VerifyAll verifies cs concurrently. The verdict order matches cs.
func (s *Service) VerifyAll(ctx context.Context, cs []claims.Claim) []verify.Verdict {
	verdicts := make([]verify.Verdict, len(cs))
	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, c := range cs {
		i, c := i, c
		g.Go(func() error {
			verdicts[i] = s.verifier.Verify(ctx, c)
			return nil
		})
	}
	_ = g.Wait()
	return verdicts
}

func (s *Service) run(ctx context.Context, cs []claims.Claim) (*Report, error) {
	start := time.Now()
	verdicts := s.VerifyAll(ctx, cs)
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil, ctx.Err()
	}

	results := verify.Results(verdicts)
	score := trust.Score(results)
	rep := &Report{
		VerifiedClaims: make([]ReportedVerdict, 0, len(verdicts)),
		AnalysisSummary: AnalysisSummary{
			Tally:          trust.Count(results),
			TrustScore:     score,
			Recommendation: trust.Recommend(score),
		},
	}
	for _, v := range verdicts {
		rep.VerifiedClaims = append(rep.VerifiedClaims, NewReportedVerdict(v))
	}
	if len(verdicts) > 0 {
		s.metrics.ObserveTrustScore(score)
		s.log.Info("report assembled",
			zap.Int("claims", len(verdicts)),
			zap.Float64("trust_score", score),
			zap.Duration("took", time.Since(start)))
	}
	return rep, nil
}
