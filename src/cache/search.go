package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/search"
)

// Searcher serves repeated queries from a Store. Only successful,
// non-empty result sets are cached.
type Searcher struct {
	next  search.WebSearcher
	store Store
	ttl   time.Duration
	log   *zap.Logger
}

func NewSearcher(next search.WebSearcher, store Store, ttl time.Duration, log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{next: next, store: store, ttl: ttl, log: log}
}

func (s *Searcher) Search(ctx context.Context, query string, n int) ([]search.Evidence, error) {
	key := Key(query, n)
	if b, err := s.store.Get(ctx, key); err == nil {
		var ev []search.Evidence
		if err := json.Unmarshal(b, &ev); err == nil {
			s.log.Debug("search cache hit", zap.String("query", query))
			return ev, nil
		}
	} else if !errors.Is(err, ErrMiss) {
		s.log.Warn("search cache read failed", zap.Error(err))
	}

	ev, err := s.next.Search(ctx, query, n)
	if err != nil || len(ev) == 0 {
		return ev, err
	}
	if b, err := json.Marshal(ev); err == nil {
		if err := s.store.Set(ctx, key, b, s.ttl); err != nil {
			s.log.Warn("search cache write failed", zap.Error(err))
		}
	}
	return ev, nil
}

// Key fingerprints a query case- and whitespace-insensitively.
func Key(query string, n int) string {
	h := xxhash.NewS64(0)
	h.Write([]byte(strings.ToLower(strings.Join(strings.Fields(query), " "))))
	return strconv.FormatUint(h.Sum64(), 16) + ":" + strconv.Itoa(n)
}
