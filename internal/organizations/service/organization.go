package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	organizationserrors "sisagenda/internal/organizations/errors"
	"sisagenda/internal/organizations/repository"
	"sisagenda/internal/organizations/validator"
	"sisagenda/pkg/config"
	apperrors "sisagenda/pkg/errors"
	"sisagenda/pkg/events"
	"sisagenda/pkg/model"
	"sisagenda/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

type OrganizationService interface {
	Create(ctx context.Context, org *model.Organization) error
	GetByID(ctx context.Context, id string) (*model.Organization, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Organization, int64, error)
	Update(ctx context.Context, id string, updates *model.OrganizationUpdate) (*model.Organization, error)
	Delete(ctx context.Context, id string) error
}

type organizationService struct {
	repo      repository.OrganizationRepository
	validator *validator.OrganizationValidator
	emitter   *events.Emitter
	cfg       *config.Config
}

func NewOrganizationService(
	repo repository.OrganizationRepository,
	validator *validator.OrganizationValidator,
	emitter *events.Emitter,
	cfg *config.Config,
) OrganizationService {
	return &organizationService{
		repo:      repo,
		validator: validator,
		emitter:   emitter,
		cfg:       cfg,
	}
}

// Create registers an active organization. The document, when given, must be
// unique.
func (s *organizationService) Create(ctx context.Context, org *model.Organization) error {
	org.ID = ""
	org.Active = true
	s.sanitize(org)

	if err := s.validator.ValidateOrganization(org); err != nil {
		s.cfg.Log.Warn("Organization validation failed", "name", org.Name, "error", err)
		return apperrors.Validation("Organization validation failed", map[string]any{"error": err.Error()})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkDocument(sessCtx, org); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, org); err != nil {
			return apperrors.Internal("Failed to create organization", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create organization", "name", org.Name, "error", err)
		return err
	}

	s.cfg.Log.Info("Organization created successfully", "id", org.ID, "name", org.Name)
	return nil
}

func (s *organizationService) GetByID(ctx context.Context, id string) (*model.Organization, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Organization ID cannot be empty")
	}

	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Organization", id, "Failed to retrieve organization")
	}
	return org, nil
}

func (s *organizationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Organization, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var orgs []*model.Organization
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orgs, err = s.repo.FindAll(gctx, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list organizations", "limit", limit, "offset", offset, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve organizations", err)
	}
	return orgs, count, nil
}

func (s *organizationService) Update(ctx context.Context, id string, updates *model.OrganizationUpdate) (*model.Organization, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateOrganizationUpdate(updates); err != nil {
		return nil, apperrors.Validation("Organization validation failed", map[string]any{"error": err.Error()})
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Document != "" {
		merged.Document = updates.Document
	}
	if updates.ContactPhone != "" {
		merged.ContactPhone = updates.ContactPhone
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if merged.Document != existing.Document {
			if err := s.checkDocument(sessCtx, &merged); err != nil {
				return err
			}
		}
		if err := s.repo.Update(sessCtx, id, &merged); err != nil {
			return mapRepoError(err, "Organization", id, "Failed to update organization")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update organization", "id", id, "error", err)
		return nil, err
	}

	if merged.Active != existing.Active {
		s.emit(ctx, &merged)
	}
	s.cfg.Log.Info("Organization updated successfully", "id", id, "active", merged.Active)
	return &merged, nil
}

// Delete deactivates the organization. Its schedule and appointments are kept
// and availability queries report it as not found.
func (s *organizationService) Delete(ctx context.Context, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.Active {
		return nil
	}

	existing.Active = false
	if err := s.repo.Update(ctx, id, existing); err != nil {
		s.cfg.Log.Error("Failed to deactivate organization", "id", id, "error", err)
		return mapRepoError(err, "Organization", id, "Failed to deactivate organization")
	}

	s.emit(ctx, existing)
	s.cfg.Log.Info("Organization deactivated", "id", id)
	return nil
}

func (s *organizationService) checkDocument(ctx context.Context, org *model.Organization) error {
	if org.Document == "" {
		return nil
	}
	other, err := s.repo.FindByDocument(ctx, org.Document)
	if err != nil {
		return apperrors.Internal("Failed to check for duplicate organizations", err)
	}
	if other != nil && other.ID != org.ID {
		return apperrors.Conflict(fmt.Sprintf("Organization with the same document already exists (id: %s)", other.ID))
	}
	return nil
}

func (s *organizationService) emit(ctx context.Context, org *model.Organization) {
	s.emitter.Emit(ctx, events.OrganizationChanged, events.Payload{
		OrganizationID: org.ID,
		Status:         activeStatus(org.Active),
	})
}

func (s *organizationService) sanitize(org *model.Organization) {
	org.Name = sanitizer.NormalizeName(org.Name)
	org.Document = sanitizer.NormalizeDocument(org.Document)
	if phone := sanitizer.NormalizePhone(org.ContactPhone, s.cfg.PhoneRegion); phone != "" {
		org.ContactPhone = phone
	}
}

func (s *organizationService) sanitizeUpdate(updates *model.OrganizationUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Document != "" {
		updates.Document = sanitizer.NormalizeDocument(updates.Document)
	}
	if phone := sanitizer.NormalizePhone(updates.ContactPhone, s.cfg.PhoneRegion); phone != "" {
		updates.ContactPhone = phone
	}
}

func activeStatus(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "INACTIVE"
}

func mapRepoError(err error, resource, id, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, organizationserrors.ErrNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, organizationserrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("Invalid %s ID format", strings.ToLower(resource)))
	default:
		return apperrors.Internal(message, err)
	}
}
