package service

import (
	"context"

	"sisagenda/internal/organizations/repository"
	"sisagenda/internal/organizations/validator"
	"sisagenda/pkg/config"
	apperrors "sisagenda/pkg/errors"
	"sisagenda/pkg/events"
	"sisagenda/pkg/model"
	"sisagenda/pkg/sanitizer"

	"golang.org/x/sync/errgroup"
)

type DeliveryTypeService interface {
	Create(ctx context.Context, dt *model.DeliveryType) error
	GetByID(ctx context.Context, id string) (*model.DeliveryType, error)
	List(ctx context.Context, organizationID string, limit int, offset int64) ([]*model.DeliveryType, int64, error)
	Update(ctx context.Context, id string, updates *model.DeliveryTypeUpdate) (*model.DeliveryType, error)
	Delete(ctx context.Context, id string) error
}

type deliveryTypeService struct {
	repo      repository.DeliveryTypeRepository
	orgRepo   repository.OrganizationRepository
	validator *validator.OrganizationValidator
	emitter   *events.Emitter
	cfg       *config.Config
}

func NewDeliveryTypeService(
	repo repository.DeliveryTypeRepository,
	orgRepo repository.OrganizationRepository,
	validator *validator.OrganizationValidator,
	emitter *events.Emitter,
	cfg *config.Config,
) DeliveryTypeService {
	return &deliveryTypeService{
		repo:      repo,
		orgRepo:   orgRepo,
		validator: validator,
		emitter:   emitter,
		cfg:       cfg,
	}
}

func (s *deliveryTypeService) Create(ctx context.Context, dt *model.DeliveryType) error {
	dt.ID = ""
	dt.Active = true
	dt.Name = sanitizer.NormalizeName(dt.Name)

	if err := s.validator.ValidateDeliveryType(dt); err != nil {
		s.cfg.Log.Warn("Delivery type validation failed",
			"organization_id", dt.OrganizationID,
			"name", dt.Name,
			"error", err,
		)
		return apperrors.Validation("Delivery type validation failed", map[string]any{"error": err.Error()})
	}

	org, err := s.orgRepo.FindByID(ctx, dt.OrganizationID)
	if err != nil {
		return mapRepoError(err, "Organization", dt.OrganizationID, "Failed to check organization")
	}
	if !org.Active {
		return apperrors.Conflict("Cannot add a delivery type to an inactive organization")
	}

	if err := s.repo.Create(ctx, dt); err != nil {
		s.cfg.Log.Error("Failed to create delivery type",
			"organization_id", dt.OrganizationID,
			"name", dt.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create delivery type", err)
	}

	s.cfg.Log.Info("Delivery type created successfully",
		"id", dt.ID,
		"organization_id", dt.OrganizationID,
		"name", dt.Name,
		"duration_minutes", dt.DurationMinutes,
	)
	return nil
}

func (s *deliveryTypeService) GetByID(ctx context.Context, id string) (*model.DeliveryType, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Delivery type ID cannot be empty")
	}

	dt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Delivery type", id, "Failed to retrieve delivery type")
	}
	return dt, nil
}

func (s *deliveryTypeService) List(ctx context.Context, organizationID string, limit int, offset int64) ([]*model.DeliveryType, int64, error) {
	if organizationID == "" {
		return nil, 0, apperrors.InvalidInput("organization_id is required")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var dts []*model.DeliveryType
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.CountByOrganization(gctx, organizationID)
		return err
	})
	g.Go(func() error {
		var err error
		dts, err = s.repo.FindByOrganization(gctx, organizationID, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list delivery types", "organization_id", organizationID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve delivery types", err)
	}
	return dts, count, nil
}

// Update changes slot length, lunch or activity. Every change moves the slot
// grid, so availability of the whole delivery type is invalidated.
func (s *deliveryTypeService) Update(ctx context.Context, id string, updates *model.DeliveryTypeUpdate) (*model.DeliveryType, error) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if err := s.validator.ValidateDeliveryTypeUpdate(updates); err != nil {
		return nil, apperrors.Validation("Delivery type validation failed", map[string]any{"error": err.Error()})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.DurationMinutes != nil {
		merged.DurationMinutes = *updates.DurationMinutes
	}
	if updates.ClearLunch {
		merged.LunchStartMinute, merged.LunchEndMinute = nil, nil
	}
	if updates.LunchStartMinute != nil {
		merged.LunchStartMinute = updates.LunchStartMinute
	}
	if updates.LunchEndMinute != nil {
		merged.LunchEndMinute = updates.LunchEndMinute
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	if err := s.validator.ValidateDeliveryType(&merged); err != nil {
		s.cfg.Log.Warn("Delivery type validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Delivery type validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		s.cfg.Log.Error("Failed to update delivery type", "id", id, "error", err)
		return nil, mapRepoError(err, "Delivery type", id, "Failed to update delivery type")
	}

	s.emit(ctx, &merged)
	s.cfg.Log.Info("Delivery type updated successfully", "id", id)
	return &merged, nil
}

// Delete deactivates the delivery type.
func (s *deliveryTypeService) Delete(ctx context.Context, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.Active {
		return nil
	}

	existing.Active = false
	if err := s.repo.Update(ctx, id, existing); err != nil {
		s.cfg.Log.Error("Failed to deactivate delivery type", "id", id, "error", err)
		return mapRepoError(err, "Delivery type", id, "Failed to deactivate delivery type")
	}

	s.emit(ctx, existing)
	s.cfg.Log.Info("Delivery type deactivated", "id", id)
	return nil
}

func (s *deliveryTypeService) emit(ctx context.Context, dt *model.DeliveryType) {
	s.emitter.Emit(ctx, events.DeliveryTypeChanged, events.Payload{
		OrganizationID: dt.OrganizationID,
		DeliveryTypeID: dt.ID,
		Status:         activeStatus(dt.Active),
	})
}
