package service

import (
	"context"

	"sisagenda/internal/schedules/repository"
	"sisagenda/internal/schedules/validator"
	"sisagenda/pkg/config"
	apperrors "sisagenda/pkg/errors"
	"sisagenda/pkg/events"
	"sisagenda/pkg/model"
	"sisagenda/pkg/sanitizer"

	"golang.org/x/sync/errgroup"
)

type OverrideService interface {
	Create(ctx context.Context, override *model.Override) error
	GetByID(ctx context.Context, id string) (*model.Override, error)
	List(ctx context.Context, filter repository.OverrideFilter, limit int, offset int64) ([]*model.Override, int64, error)
	Delete(ctx context.Context, id string) error
}

type overrideService struct {
	repo      repository.OverrideRepository
	validator *validator.ScheduleValidator
	emitter   *events.Emitter
	cfg       *config.Config
}

func NewOverrideService(
	repo repository.OverrideRepository,
	validator *validator.ScheduleValidator,
	emitter *events.Emitter,
	cfg *config.Config,
) OverrideService {
	return &overrideService{
		repo:      repo,
		validator: validator,
		emitter:   emitter,
		cfg:       cfg,
	}
}

func (s *overrideService) Create(ctx context.Context, override *model.Override) error {
	override.ID = ""
	override.Reason = sanitizer.NormalizeText(override.Reason)
	if err := s.validator.ValidateOverride(override); err != nil {
		s.cfg.Log.Warn("Override validation failed",
			"organization_id", override.OrganizationID,
			"delivery_type_id", override.DeliveryTypeID,
			"date", override.Date,
			"error", err,
		)
		return apperrors.Validation("Override validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, override); err != nil {
		s.cfg.Log.Error("Failed to create override",
			"organization_id", override.OrganizationID,
			"date", override.Date,
			"error", err,
		)
		return apperrors.Internal("Failed to create override", err)
	}

	s.emit(ctx, override)
	s.cfg.Log.Info("Override created successfully",
		"id", override.ID,
		"organization_id", override.OrganizationID,
		"delivery_type_id", override.DeliveryTypeID,
		"date", override.Date,
		"kind", override.Kind,
	)
	return nil
}

func (s *overrideService) GetByID(ctx context.Context, id string) (*model.Override, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Override ID cannot be empty")
	}

	override, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Override", id, "Failed to retrieve override")
	}
	return override, nil
}

func (s *overrideService) List(ctx context.Context, filter repository.OverrideFilter, limit int, offset int64) ([]*model.Override, int64, error) {
	if filter.OrganizationID == "" {
		return nil, 0, apperrors.InvalidInput("organization_id is required")
	}
	if filter.From != "" && filter.To != "" && filter.To < filter.From {
		return nil, 0, apperrors.InvalidInput("to must not be before from")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var overrides []*model.Override
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		overrides, err = s.repo.Find(gctx, filter, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list overrides",
			"organization_id", filter.OrganizationID,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to list overrides", err)
	}
	return overrides, count, nil
}

func (s *overrideService) Delete(ctx context.Context, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.cfg.Log.Error("Failed to delete override", "id", id, "error", err)
		return mapRepoError(err, "Override", id, "Failed to delete override")
	}

	s.emit(ctx, existing)
	s.cfg.Log.Info("Override deleted successfully", "id", id, "date", existing.Date)
	return nil
}

func (s *overrideService) emit(ctx context.Context, override *model.Override) {
	s.emitter.Emit(ctx, events.OverrideChanged, events.Payload{
		OrganizationID: override.OrganizationID,
		DeliveryTypeID: override.DeliveryTypeID,
		Dates:          []string{override.Date},
	})
}
