package rules

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"beacon/internal/config"
	"beacon/internal/constants"
	"beacon/internal/engine"
	"beacon/internal/logger"
	"beacon/pkg/metrics"
)

// Service owns the in-memory rule snapshot the attention pipeline reads
// from. The snapshot is explicitly refreshed: on a timer, on rule-change
// events, or on demand. There is no implicit global cache; everything goes
// through this one injectable dependency.
type Service struct {
	repo      Repository
	rules     []engine.Rule
	rulesMu   sync.RWMutex
	reloadCfg config.ReloadConfig
	logger    logger.Logger
}

func NewService(repo Repository, cfg config.ReloadConfig, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		rules:     make([]engine.Rule, 0),
		reloadCfg: cfg,
		logger:    log,
	}
}

// Active returns a copy of the current snapshot so callers can evaluate
// without holding the lock and without observing a mid-reload swap.
func (s *Service) Active() []engine.Rule {
	s.rulesMu.RLock()
	defer s.rulesMu.RUnlock()

	rules := make([]engine.Rule, len(s.rules))
	copy(rules, s.rules)
	return rules
}

// ReloadRules replaces the snapshot from the store. Periodic reloads apply
// a random jitter so a fleet of replicas does not stampede the database;
// event-driven and startup reloads skip it.
func (s *Service) ReloadRules(ctx context.Context, skipJitter ...bool) error {
	shouldSkipJitter := len(skipJitter) > 0 && skipJitter[0]

	if err := s.applyJitter(ctx, shouldSkipJitter); err != nil {
		return err
	}

	rules, err := s.repo.GetActiveRules(ctx)
	if err != nil {
		return err
	}

	s.rulesMu.Lock()
	s.rules = rules
	s.rulesMu.Unlock()

	metrics.SetActiveRules(len(rules))
	s.logger.InfowCtx(ctx, "Successfully reloaded attention rules",
		"rules_count", len(rules),
	)
	return nil
}

func (s *Service) applyJitter(ctx context.Context, skipJitter bool) error {
	if skipJitter || s.reloadCfg.JitterMaxMilliseconds == 0 {
		return nil
	}

	jitter := time.Duration(rand.Intn(s.reloadCfg.JitterMaxMilliseconds)) * time.Millisecond
	s.logger.DebugwCtx(ctx, "Reload scheduled with jitter",
		"jitter_ms", jitter.Milliseconds(),
	)

	select {
	case <-time.After(jitter):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartReloader refreshes the snapshot on the configured interval until the
// context is cancelled. A failed reload keeps the previous snapshot.
func (s *Service) StartReloader(ctx context.Context) error {
	interval := time.Duration(s.reloadCfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = constants.DefaultReloadInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.ReloadRules(ctx, true); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to reload rules",
			"error", err,
		)
	}

	for {
		select {
		case <-ticker.C:
			if err := s.ReloadRules(ctx); err != nil {
				s.logger.ErrorwCtx(ctx, "Failed to reload rules",
					"error", err,
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
