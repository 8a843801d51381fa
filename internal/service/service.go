package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ieltsly/speaking-results/internal/apierr"
	"github.com/ieltsly/speaking-results/internal/cache"
	"github.com/ieltsly/speaking-results/internal/fetch"
	"github.com/ieltsly/speaking-results/internal/resolver"
	"github.com/ieltsly/speaking-results/internal/result"
	"github.com/ieltsly/speaking-results/internal/validate"
	"github.com/ieltsly/speaking-results/pkg/metrics"
)

// Phase tracks where a resolution cycle currently is. Done and Failed
// are terminal for one cycle; a caller-initiated retry starts a new
// cycle at Resolving.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseResolving  Phase = "resolving"
	PhaseCacheCheck Phase = "cache_check"
	PhaseFetching   Phase = "fetching"
	PhaseValidating Phase = "validating"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Outcome is what a successful resolution cycle returns.
type Outcome struct {
	SessionCode string
	Result      *result.SessionResult
	// CanonicalPath is the /s<code> form; callers that resolved the
	// code from a hash or query parameter should normalize to it.
	CanonicalPath string
	FromCache     bool
}

// SessionService orchestrates the full pipeline: resolve code, check
// cache, fetch with retry, validate, classify failures, populate cache.
type SessionService struct {
	client     *fetch.Client
	retrier    *fetch.Retrier
	cache      *cache.ResultCache
	classifier *apierr.Classifier
	maxAge     time.Duration
	logger     *zap.Logger
	metrics    *metrics.Metrics

	mu    sync.Mutex
	phase Phase
}

// New wires the pipeline together. All collaborators are explicit so
// tests can substitute fakes.
func New(client *fetch.Client, retrier *fetch.Retrier, resultCache *cache.ResultCache, classifier *apierr.Classifier, maxAge time.Duration, logger *zap.Logger) *SessionService {
	if maxAge <= 0 {
		maxAge = cache.DefaultMaxAge
	}
	return &SessionService{
		client:     client,
		retrier:    retrier,
		cache:      resultCache,
		classifier: classifier,
		maxAge:     maxAge,
		logger:     logger.Named("service"),
		phase:      PhaseIdle,
	}
}

// WithMetrics attaches a metrics sink for fetch outcomes and cache
// hit/miss counts. Without one those events are only logged.
func (s *SessionService) WithMetrics(m *metrics.Metrics) *SessionService {
	s.metrics = m
	return s
}

// Phase returns the most recent phase transition.
func (s *SessionService) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *SessionService) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
	s.logger.Debug("phase transition", zap.String("phase", string(p)))
}

// LoadFromURL resolves a session code from a result URL and loads it.
// Fails with NO_SESSION_CODE when the URL carries no code in any of
// the accepted forms.
func (s *SessionService) LoadFromURL(ctx context.Context, rawURL string) (*Outcome, *apierr.Error) {
	s.setPhase(PhaseResolving)

	u, err := url.Parse(rawURL)
	if err != nil {
		s.setPhase(PhaseFailed)
		e := apierr.New(apierr.KindNoSessionCode, "")
		e.Cause = err
		return nil, e
	}

	code := resolver.Resolve(u)
	if code == "" {
		s.logger.Warn("no session code found in URL", zap.String("url", rawURL))
		s.setPhase(PhaseFailed)
		return nil, apierr.New(apierr.KindNoSessionCode, "")
	}

	return s.Load(ctx, code)
}

// Load runs one resolution cycle for a known session code.
func (s *SessionService) Load(ctx context.Context, code string) (*Outcome, *apierr.Error) {
	s.setPhase(PhaseResolving)
	s.logger.Info("loading session data", zap.String("session_code", code))

	// Local validation happens before any network request.
	if !resolver.IsValidCode(code) {
		s.logger.Error("invalid session code format", zap.String("session_code", code))
		s.setPhase(PhaseFailed)
		return nil, apierr.New(apierr.KindBadRequest, code)
	}

	s.setPhase(PhaseCacheCheck)
	if cached := s.cache.Get(ctx, code, s.maxAge); cached != nil {
		s.logger.Info("using cached session data", zap.String("session_code", code))
		if s.metrics != nil {
			s.metrics.CacheHit()
		}
		s.setPhase(PhaseDone)
		return &Outcome{
			SessionCode:   code,
			Result:        cached,
			CanonicalPath: resolver.CanonicalPath(code),
			FromCache:     true,
		}, nil
	}

	if s.metrics != nil {
		s.metrics.CacheMiss()
	}

	s.setPhase(PhaseFetching)
	fetchStart := time.Now()
	raw, err := fetch.Do(ctx, s.retrier, func(ctx context.Context) (json.RawMessage, error) {
		var payload json.RawMessage
		if err := s.client.GetJSON(ctx, "/session/"+code, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
	if err != nil {
		classified := s.classifier.Classify(err, code)
		s.logger.Error("failed to fetch session data",
			zap.String("session_code", code),
			zap.String("kind", string(classified.Kind)),
			zap.Int("status", classified.Status),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.ObserveFetch(string(classified.Kind), time.Since(fetchStart))
		}
		s.setPhase(PhaseFailed)
		return nil, classified
	}
	if s.metrics != nil {
		s.metrics.ObserveFetch("ok", time.Since(fetchStart))
	}

	s.setPhase(PhaseValidating)
	if err := validate.Structure(raw); err != nil {
		s.setPhase(PhaseFailed)
		return nil, s.classifier.Classify(err, code)
	}
	validate.Audit(s.logger, raw)

	var data result.SessionResult
	if err := json.Unmarshal(raw, &data); err != nil {
		s.setPhase(PhaseFailed)
		return nil, s.classifier.Classify(fmt.Errorf("%w: %v", fetch.ErrInvalidJSON, err), code)
	}

	s.cache.Put(ctx, code, &data, s.maxAge)

	s.logger.Info("session data loaded",
		zap.String("session_code", code),
		zap.Int("conversations", len(data.Conversations)))
	s.setPhase(PhaseDone)
	return &Outcome{
		SessionCode:   code,
		Result:        &data,
		CanonicalPath: resolver.CanonicalPath(code),
	}, nil
}

// Prefetch warms the cache for code. Failures are logged and
// swallowed; returns whether the cache was warmed.
func (s *SessionService) Prefetch(ctx context.Context, code string) bool {
	if code == "" {
		return false
	}
	if _, err := s.Load(ctx, code); err != nil {
		s.logger.Warn("prefetch failed",
			zap.String("session_code", code),
			zap.String("kind", string(err.Kind)))
		return false
	}
	return true
}

// CheckHealth probes the upstream health endpoint with a single
// un-retried request.
func (s *SessionService) CheckHealth(ctx context.Context) bool {
	var payload json.RawMessage
	if err := s.client.GetJSON(ctx, "/health", &payload); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		return false
	}
	return true
}

// ClearCache evicts every cached session result.
func (s *SessionService) ClearCache(ctx context.Context) int {
	return s.cache.Clear(ctx)
}
