package records

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"

	"beacon/internal/config"
	"beacon/pkg/circuitbreaker"
)

// CircuitBreakerRepository guards the record read path. When Postgres
// starts failing, the breaker opens and evaluation requests fail fast
// instead of piling up on a sick database.
type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	if !cfg.Enabled {
		return &CircuitBreakerRepository{repo: repo}
	}

	cbConfig := circuitbreaker.DefaultConfig("postgres-records")
	if cfg.MaxRequests > 0 {
		cbConfig.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		cbConfig.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		cbConfig.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 && cfg.MinRequests > 0 {
		cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
			if counts.Requests < uint32(cfg.MinRequests) {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		}
	}

	return &CircuitBreakerRepository{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(cbConfig),
	}
}

func (r *CircuitBreakerRepository) ListApplicants(ctx context.Context) ([]*Applicant, error) {
	if r.cb == nil {
		return r.repo.ListApplicants(ctx)
	}

	result, err := r.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return r.repo.ListApplicants(ctx)
	})

	r.cb.RecordRequest(err == nil)

	if err != nil {
		if r.cb.IsOpen() {
			return nil, fmt.Errorf("circuit breaker is open for postgres-records: %w", err)
		}
		return nil, err
	}

	applicants, ok := result.([]*Applicant)
	if !ok {
		return nil, fmt.Errorf("repository returned invalid result type")
	}
	return applicants, nil
}

func (r *CircuitBreakerRepository) ListLeads(ctx context.Context) ([]*Lead, error) {
	if r.cb == nil {
		return r.repo.ListLeads(ctx)
	}

	result, err := r.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return r.repo.ListLeads(ctx)
	})

	r.cb.RecordRequest(err == nil)

	if err != nil {
		if r.cb.IsOpen() {
			return nil, fmt.Errorf("circuit breaker is open for postgres-records: %w", err)
		}
		return nil, err
	}

	leads, ok := result.([]*Lead)
	if !ok {
		return nil, fmt.Errorf("repository returned invalid result type")
	}
	return leads, nil
}

func (r *CircuitBreakerRepository) State() string {
	if r.cb == nil {
		return "disabled"
	}
	return r.cb.State().String()
}
