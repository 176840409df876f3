package attention

import (
	"context"
	"time"

	"beacon/internal/engine"
	"beacon/internal/logger"
	"beacon/internal/records"
	"beacon/pkg/metrics"
	"beacon/pkg/retry"
	"beacon/pkg/tracing"
)

// RuleSource is what the orchestrator needs from the rule service: the
// current snapshot, nothing more.
type RuleSource interface {
	Active() []engine.Rule
}

// Query narrows one evaluation request. Zero value means everything.
type Query struct {
	Urgency engine.Urgency
	Limit   int
	// Refresh bypasses the snapshot cache and recomputes from the store.
	Refresh bool
}

// Service runs the attention pipeline end to end: load records, take the
// rule snapshot, evaluate both record kinds, merge and order the items. The
// engine itself stays pure; every piece of I/O lives here.
type Service struct {
	rules    RuleSource
	repo     records.Repository
	guard    engine.GuardFunc
	snapshot *SnapshotCache
	logger   logger.Logger
}

func NewService(rules RuleSource, repo records.Repository, guard engine.GuardFunc, snapshot *SnapshotCache, log logger.Logger) *Service {
	return &Service{
		rules:    rules,
		repo:     repo,
		guard:    guard,
		snapshot: snapshot,
		logger:   log,
	}
}

// Evaluate returns the current action items for the query. The full
// unfiltered list is cached; urgency and limit are applied after, so two
// dashboards with different filters share one evaluation.
func (s *Service) Evaluate(ctx context.Context, q Query) ([]engine.ActionItem, error) {
	ctx, span := tracing.GetTracer("attention-service").Start(ctx, "attention.evaluate")
	defer span.End()

	if !q.Refresh && s.snapshot != nil {
		if items, ok := s.snapshot.Get(ctx); ok {
			metrics.SnapshotCacheTotal.WithLabelValues("hit").Inc()
			return applyQuery(items, q), nil
		}
		metrics.SnapshotCacheTotal.WithLabelValues("miss").Inc()
	}

	items, err := s.evaluateAll(ctx)
	if err != nil {
		metrics.EvaluationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.EvaluationsTotal.WithLabelValues("ok").Inc()

	if s.snapshot != nil {
		s.snapshot.Set(ctx, items)
	}
	return applyQuery(items, q), nil
}

func (s *Service) evaluateAll(ctx context.Context) ([]engine.ActionItem, error) {
	start := time.Now()

	var (
		applicants []*records.Applicant
		leads      []*records.Lead
	)
	policy := retry.DefaultPolicy()
	policy.MaxElapsedTime = 30 * time.Second

	err := retry.Retry(ctx, policy, func() error {
		var loadErr error
		applicants, loadErr = s.repo.ListApplicants(ctx)
		return loadErr
	})
	if err != nil {
		return nil, err
	}
	err = retry.Retry(ctx, policy, func() error {
		var loadErr error
		leads, loadErr = s.repo.ListLeads(ctx)
		return loadErr
	})
	if err != nil {
		return nil, err
	}

	rules := s.rules.Active()
	now := time.Now()
	opts := engine.Options{
		Now:    now,
		Guard:  s.guard,
		Logger: s.logger,
	}

	items := engine.Evaluate(applicants, rules, records.ApplicantAdapter{}, opts)
	items = append(items, engine.Evaluate(leads, rules, records.LeadAdapter{}, opts)...)
	engine.Sort(items)

	s.recordMetrics(items, time.Since(start))
	s.logger.DebugwCtx(ctx, "Attention evaluation complete",
		"applicants", len(applicants),
		"leads", len(leads),
		"rules", len(rules),
		"items", len(items),
	)
	return items, nil
}

func (s *Service) recordMetrics(items []engine.ActionItem, duration time.Duration) {
	metrics.ObserveEvaluationDuration(duration)

	counts := map[engine.Urgency]int{
		engine.UrgencyCritical: 0,
		engine.UrgencyWarning:  0,
		engine.UrgencyInfo:     0,
	}
	for _, item := range items {
		counts[item.Urgency]++
	}
	for urgency, count := range counts {
		metrics.SetAttentionItems(string(urgency), count)
	}
}

// Summary counts current items per urgency.
func (s *Service) Summary(ctx context.Context, refresh bool) (map[engine.Urgency]int, error) {
	items, err := s.Evaluate(ctx, Query{Refresh: refresh})
	if err != nil {
		return nil, err
	}
	summary := map[engine.Urgency]int{
		engine.UrgencyCritical: 0,
		engine.UrgencyWarning:  0,
		engine.UrgencyInfo:     0,
	}
	for _, item := range items {
		summary[item.Urgency]++
	}
	return summary, nil
}

func applyQuery(items []engine.ActionItem, q Query) []engine.ActionItem {
	filtered := items
	if q.Urgency != "" {
		filtered = make([]engine.ActionItem, 0, len(items))
		for _, item := range items {
			if item.Urgency == q.Urgency {
				filtered = append(filtered, item)
			}
		}
	}
	if q.Limit > 0 && len(filtered) > q.Limit {
		filtered = filtered[:q.Limit]
	}
	return filtered
}
