package management

import (
	"context"

	"beacon/internal/logger"
	pkgerrors "beacon/pkg/errors"
	"beacon/pkg/metrics"
	"beacon/pkg/models"
)

type Service interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (*AttentionRule, error)
	ListRules(ctx context.Context) ([]AttentionRule, error)
	GetRule(ctx context.Context, id string) (*AttentionRule, error)
	UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (*AttentionRule, error)
	DeleteRule(ctx context.Context, id string) error
}

type service struct {
	repo     Repository
	notifier *ConfigEventProducer
	logger   logger.Logger
}

type ServiceOption func(*service)

// WithConfigEvents makes every mutation publish a rule-change event so the
// attention service refreshes without waiting for its periodic reload.
func WithConfigEvents(notifier *ConfigEventProducer) ServiceOption {
	return func(s *service) {
		s.notifier = notifier
	}
}

func NewService(repo Repository, log logger.Logger, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		logger: log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateRule(ctx context.Context, req CreateRuleRequest) (*AttentionRule, error) {
	if err := ValidateCreateRule(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule := &AttentionRule{
		Name:           req.Name,
		RecordKind:     req.RecordKind,
		ConditionKind:  req.ConditionKind,
		Config:         req.Config,
		Urgency:        req.Urgency,
		Escalation:     req.Escalation,
		Icon:           req.Icon,
		TitleTemplate:  req.TitleTemplate,
		DetailTemplate: req.DetailTemplate,
		ActionTemplate: req.ActionTemplate,
		Guard:          req.Guard,
		Enabled:        enabled,
		Priority:       req.Priority,
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		if pkgerrors.IsConflict(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.IncRuleOperation("create", "ok")
	s.publishEvent(ctx, models.ActionCreate, rule.ID)
	return rule, nil
}

func (s *service) ListRules(ctx context.Context) ([]AttentionRule, error) {
	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return rules, nil
}

func (s *service) GetRule(ctx context.Context, id string) (*AttentionRule, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return rule, nil
}

func (s *service) UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (*AttentionRule, error) {
	if err := ValidateUpdateRule(req); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	applyUpdate(rule, req)

	// Kind and config may have changed independently; the merged rule
	// must still make sense as a whole.
	if err := ValidateRuleShape(rule); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrValidation)
	}

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.IncRuleOperation("update", "ok")
	s.publishEvent(ctx, models.ActionUpdate, rule.ID)
	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, id string) error {
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		if pkgerrors.IsNotFound(err) {
			return err
		}
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.IncRuleOperation("delete", "ok")
	s.publishEvent(ctx, models.ActionDelete, id)
	return nil
}

func (s *service) publishEvent(ctx context.Context, action, ruleID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishRuleEvent(ctx, action, ruleID); err != nil {
		// Event delivery is advisory; the periodic reload is the backstop.
		s.logger.WarnwCtx(ctx, "Failed to publish rule event",
			"action", action,
			"rule_id", ruleID,
			"error", err,
		)
	}
}

func applyUpdate(rule *AttentionRule, req UpdateRuleRequest) {
	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.RecordKind != nil {
		rule.RecordKind = *req.RecordKind
	}
	if req.ConditionKind != nil {
		rule.ConditionKind = *req.ConditionKind
	}
	if req.Config != nil {
		rule.Config = *req.Config
	}
	if req.Urgency != nil {
		rule.Urgency = *req.Urgency
	}
	if req.Escalation != nil {
		rule.Escalation = req.Escalation
	}
	if req.Icon != nil {
		rule.Icon = *req.Icon
	}
	if req.TitleTemplate != nil {
		rule.TitleTemplate = *req.TitleTemplate
	}
	if req.DetailTemplate != nil {
		rule.DetailTemplate = *req.DetailTemplate
	}
	if req.ActionTemplate != nil {
		rule.ActionTemplate = *req.ActionTemplate
	}
	if req.Guard != nil {
		rule.Guard = *req.Guard
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
}
