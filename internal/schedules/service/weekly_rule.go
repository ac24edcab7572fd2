package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	scheduleserrors "sisagenda/internal/schedules/errors"
	"sisagenda/internal/schedules/repository"
	"sisagenda/internal/schedules/validator"
	"sisagenda/pkg/config"
	apperrors "sisagenda/pkg/errors"
	"sisagenda/pkg/events"
	"sisagenda/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

type WeeklyRuleService interface {
	Create(ctx context.Context, rule *model.WeeklyRule) error
	GetByID(ctx context.Context, id string) (*model.WeeklyRule, error)
	List(ctx context.Context, filter repository.RuleFilter, limit int, offset int64) ([]*model.WeeklyRule, int64, error)
	Update(ctx context.Context, id string, updates *model.WeeklyRuleUpdate) (*model.WeeklyRule, error)
	Delete(ctx context.Context, id string) error
}

type weeklyRuleService struct {
	repo      repository.WeeklyRuleRepository
	validator *validator.ScheduleValidator
	emitter   *events.Emitter
	cfg       *config.Config
}

func NewWeeklyRuleService(
	repo repository.WeeklyRuleRepository,
	validator *validator.ScheduleValidator,
	emitter *events.Emitter,
	cfg *config.Config,
) WeeklyRuleService {
	return &weeklyRuleService{
		repo:      repo,
		validator: validator,
		emitter:   emitter,
		cfg:       cfg,
	}
}

func (s *weeklyRuleService) Create(ctx context.Context, rule *model.WeeklyRule) error {
	rule.ID = ""
	if err := s.validator.ValidateWeeklyRule(rule); err != nil {
		s.cfg.Log.Warn("Weekly rule validation failed",
			"organization_id", rule.OrganizationID,
			"delivery_type_id", rule.DeliveryTypeID,
			"error", err,
		)
		return apperrors.Validation("Weekly rule validation failed", map[string]any{"error": err.Error()})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkOverlap(sessCtx, rule); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, rule); err != nil {
			return apperrors.Internal("Failed to create weekly rule", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create weekly rule",
			"organization_id", rule.OrganizationID,
			"delivery_type_id", rule.DeliveryTypeID,
			"week_day", rule.WeekDay,
			"error", err,
		)
		return err
	}

	s.emit(ctx, rule)
	s.cfg.Log.Info("Weekly rule created successfully",
		"id", rule.ID,
		"organization_id", rule.OrganizationID,
		"delivery_type_id", rule.DeliveryTypeID,
		"week_day", rule.WeekDay,
	)
	return nil
}

func (s *weeklyRuleService) GetByID(ctx context.Context, id string) (*model.WeeklyRule, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Weekly rule ID cannot be empty")
	}

	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Weekly rule", id, "Failed to retrieve weekly rule")
	}
	return rule, nil
}

func (s *weeklyRuleService) List(ctx context.Context, filter repository.RuleFilter, limit int, offset int64) ([]*model.WeeklyRule, int64, error) {
	if filter.OrganizationID == "" {
		return nil, 0, apperrors.InvalidInput("organization_id is required")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rules []*model.WeeklyRule
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		rules, err = s.repo.Find(gctx, filter, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list weekly rules",
			"organization_id", filter.OrganizationID,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to list weekly rules", err)
	}
	return rules, count, nil
}

func (s *weeklyRuleService) Update(ctx context.Context, id string, updates *model.WeeklyRuleUpdate) (*model.WeeklyRule, error) {
	if err := s.validator.ValidateWeeklyRuleUpdate(updates); err != nil {
		return nil, apperrors.Validation("Weekly rule validation failed", map[string]any{"error": err.Error()})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	if updates.WeekDay != nil {
		merged.WeekDay = *updates.WeekDay
	}
	if updates.StartMinute != nil {
		merged.StartMinute = *updates.StartMinute
	}
	if updates.EndMinute != nil {
		merged.EndMinute = *updates.EndMinute
	}
	if err := s.validator.ValidateWeeklyRule(&merged); err != nil {
		s.cfg.Log.Warn("Weekly rule validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Weekly rule validation failed", map[string]any{"error": err.Error()})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkOverlap(sessCtx, &merged); err != nil {
			return err
		}
		if err := s.repo.Update(sessCtx, id, &merged); err != nil {
			return mapRepoError(err, "Weekly rule", id, "Failed to update weekly rule")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update weekly rule", "id", id, "error", err)
		return nil, err
	}

	s.emit(ctx, &merged)
	s.cfg.Log.Info("Weekly rule updated successfully", "id", id)
	return &merged, nil
}

func (s *weeklyRuleService) Delete(ctx context.Context, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		s.cfg.Log.Error("Failed to delete weekly rule", "id", id, "error", err)
		return mapRepoError(err, "Weekly rule", id, "Failed to delete weekly rule")
	}

	s.emit(ctx, existing)
	s.cfg.Log.Info("Weekly rule deleted successfully", "id", id)
	return nil
}

// checkOverlap rejects a rule that intersects another active rule of the same
// owner and weekday. Touching rules are allowed. It must run inside the
// write transaction: the weekday guard makes concurrent writers to the same
// weekday conflict, and the driver retries the loser against fresh data.
func (s *weeklyRuleService) checkOverlap(ctx context.Context, rule *model.WeeklyRule) error {
	if err := s.repo.GuardWeekday(ctx, rule.OrganizationID, rule.DeliveryTypeID, rule.WeekDay); err != nil {
		return apperrors.Internal("Failed to guard weekly rule weekday", err)
	}

	deliveryTypeID := rule.DeliveryTypeID
	weekDay := rule.WeekDay
	siblings, err := s.repo.Find(ctx, repository.RuleFilter{
		OrganizationID: rule.OrganizationID,
		DeliveryTypeID: &deliveryTypeID,
		WeekDay:        &weekDay,
	}, 0, 0)
	if err != nil {
		return apperrors.Internal("Failed to check for overlapping weekly rules", err)
	}

	for _, other := range siblings {
		if other.ID == rule.ID {
			continue
		}
		if rule.StartMinute < other.EndMinute && other.StartMinute < rule.EndMinute {
			return apperrors.Conflict(fmt.Sprintf("Weekly rule overlaps existing rule %s", other.ID)).
				WithDetails(map[string]any{
					"conflicting_id": other.ID,
					"start_minute":   other.StartMinute,
					"end_minute":     other.EndMinute,
				})
		}
	}
	return nil
}

// emit announces a rule change. A rule affects every date on its weekday, so
// no dates are listed.
func (s *weeklyRuleService) emit(ctx context.Context, rule *model.WeeklyRule) {
	s.emitter.Emit(ctx, events.WeeklyRuleChanged, events.Payload{
		OrganizationID: rule.OrganizationID,
		DeliveryTypeID: rule.DeliveryTypeID,
	})
}

func mapRepoError(err error, resource, id, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, scheduleserrors.ErrNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, scheduleserrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("Invalid %s ID format", strings.ToLower(resource)))
	default:
		return apperrors.Internal(message, err)
	}
}
