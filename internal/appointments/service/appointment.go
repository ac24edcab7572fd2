package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentserrors "sisagenda/internal/appointments/errors"
	"sisagenda/internal/appointments/repository"
	"sisagenda/internal/appointments/validator"
	"sisagenda/pkg/config"
	apperrors "sisagenda/pkg/errors"
	"sisagenda/pkg/events"
	"sisagenda/pkg/metrics"
	"sisagenda/pkg/model"
	"sisagenda/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// SlotChecker re-validates a requested start against current availability.
// It must honour the session carried by ctx so reads join the transaction.
type SlotChecker interface {
	CheckSlot(ctx context.Context, organizationID, deliveryTypeID string, start time.Time, excludeID string) (int, error)
}

type AppointmentService interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	Search(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Appointment, int64, error)

	Confirm(ctx context.Context, id string) (*model.Appointment, error)
	RequestReschedule(ctx context.Context, id string, transition *model.AppointmentTransition) (*model.Appointment, error)
	ConfirmReschedule(ctx context.Context, id string) (*model.Appointment, error)
	RejectReschedule(ctx context.Context, id string) (*model.Appointment, error)
	RequestCancellation(ctx context.Context, id string, transition *model.AppointmentTransition) (*model.Appointment, error)
	RejectCancellation(ctx context.Context, id string) (*model.Appointment, error)
	Cancel(ctx context.Context, id string, transition *model.AppointmentTransition) (*model.Appointment, error)
	Complete(ctx context.Context, id string) (*model.Appointment, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.AppointmentLockRepository
	slots     SlotChecker
	validator *validator.AppointmentValidator
	emitter   *events.Emitter
	cfg       *config.Config
	now       func() time.Time
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.AppointmentLockRepository,
	slots SlotChecker,
	validator *validator.AppointmentValidator,
	emitter *events.Emitter,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		slots:     slots,
		validator: validator,
		emitter:   emitter,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *appointmentService) Create(ctx context.Context, appointment *model.Appointment) error {
	appointment.ID = ""
	if appointment.Status == "" {
		appointment.Status = model.StatusPendingConfirmation
	}
	s.sanitize(appointment)
	if err := s.validator.Validate(appointment); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}

	err := s.withSlotLock(ctx, appointment.OrganizationID, appointment.DeliveryTypeID, appointment.Date, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			duration, err := s.checkSlot(sessCtx, appointment.OrganizationID, appointment.DeliveryTypeID, appointment.Date, "")
			if err != nil {
				return err
			}
			appointment.DurationMinutes = duration
			if err := s.repo.Create(sessCtx, appointment); err != nil {
				return apperrors.Internal("Failed to create appointment", err)
			}
			return nil
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create appointment",
			"organization_id", appointment.OrganizationID,
			"delivery_type_id", appointment.DeliveryTypeID,
			"date", appointment.Date,
			"error", err,
		)
		return err
	}

	metrics.IncAppointmentTransition(string(appointment.Status))
	s.emit(ctx, events.AppointmentCreated, appointment, appointment.Date)
	s.cfg.Log.Info("Appointment created successfully",
		"id", appointment.ID,
		"organization_id", appointment.OrganizationID,
		"delivery_type_id", appointment.DeliveryTypeID,
		"date", appointment.Date,
	)
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, id, "Failed to retrieve appointment")
	}
	return appointment, nil
}

func (s *appointmentService) Search(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if filter.OrganizationID == "" {
		return nil, 0, apperrors.InvalidInput("organization_id is required")
	}
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, 0, apperrors.InvalidInput("to must be after from")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var appointments []*model.Appointment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.repo.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		appointments, err = s.repo.Search(gctx, filter, limit, offset)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to search appointments",
			"organization_id", filter.OrganizationID,
			"delivery_type_id", filter.DeliveryTypeID,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to search appointments", err)
	}

	s.cfg.Log.Debug("Appointment search completed",
		"organization_id", filter.OrganizationID,
		"count", len(appointments),
		"total_count", count,
	)
	return appointments, count, nil
}

func (s *appointmentService) Confirm(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.StatusConfirmed, events.AppointmentConfirmed, nil)
}

func (s *appointmentService) RequestReschedule(ctx context.Context, id string, transition *model.AppointmentTransition) (*model.Appointment, error) {
	if err := s.validateTransition(transition); err != nil {
		return nil, err
	}
	if transition == nil || transition.RequestedDate == nil {
		return nil, apperrors.Validation("Reschedule request validation failed", map[string]any{"error": "requested_date is required"})
	}
	if !transition.RequestedDate.After(s.now()) {
		return nil, apperrors.Validation("Reschedule request validation failed", map[string]any{"error": "requested_date must be in the future"})
	}

	return s.transition(ctx, id, model.StatusRescheduleRequested, events.AppointmentRescheduleRequested, func(a *model.Appointment) error {
		requested := *transition.RequestedDate
		a.RequestedDate = &requested
		return nil
	})
}

// ConfirmReschedule moves the appointment to its requested date. The new slot
// is re-validated under the lock of the target day, ignoring the slot the
// appointment currently holds.
func (s *appointmentService) ConfirmReschedule(ctx context.Context, id string) (*model.Appointment, error) {
	existing, err := s.load(ctx, id, model.StatusRescheduleConfirmed)
	if err != nil {
		return nil, err
	}
	if existing.RequestedDate == nil {
		return nil, apperrors.Conflict("Appointment has no requested date to confirm")
	}

	previous := existing.Date
	updated := *existing
	updated.Date = *existing.RequestedDate
	updated.RequestedDate = nil
	updated.Status = model.StatusRescheduleConfirmed

	err = s.withSlotLock(ctx, updated.OrganizationID, updated.DeliveryTypeID, updated.Date, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			duration, err := s.checkSlot(sessCtx, updated.OrganizationID, updated.DeliveryTypeID, updated.Date, updated.ID)
			if err != nil {
				return err
			}
			updated.DurationMinutes = duration
			return s.update(sessCtx, &updated, existing.Status)
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to confirm reschedule", "id", id, "error", err)
		return nil, err
	}

	metrics.IncAppointmentTransition(string(updated.Status))
	s.emit(ctx, events.AppointmentRescheduled, &updated, previous, updated.Date)
	s.cfg.Log.Info("Appointment rescheduled", "id", id, "from", previous, "to", updated.Date)
	return &updated, nil
}

func (s *appointmentService) RejectReschedule(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.StatusConfirmed, events.AppointmentConfirmed, func(a *model.Appointment) error {
		if a.Status != model.StatusRescheduleRequested {
			return apperrors.Conflict("Appointment has no pending reschedule request")
		}
		a.RequestedDate = nil
		return nil
	})
}

func (s *appointmentService) RequestCancellation(ctx context.Context, id string, transition *model.AppointmentTransition) (*model.Appointment, error) {
	if err := s.validateTransition(transition); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, model.StatusCancellationRequested, events.AppointmentCancellationRequested, func(a *model.Appointment) error {
		a.CancellationReason = reason(transition)
		return nil
	})
}

func (s *appointmentService) RejectCancellation(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.StatusConfirmed, events.AppointmentConfirmed, func(a *model.Appointment) error {
		if a.Status != model.StatusCancellationRequested {
			return apperrors.Conflict("Appointment has no pending cancellation request")
		}
		return nil
	})
}

func (s *appointmentService) Cancel(ctx context.Context, id string, transition *model.AppointmentTransition) (*model.Appointment, error) {
	if err := s.validateTransition(transition); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, model.StatusCancelled, events.AppointmentCancelled, func(a *model.Appointment) error {
		if r := reason(transition); r != "" {
			a.CancellationReason = r
		}
		a.RequestedDate = nil
		return nil
	})
}

func (s *appointmentService) Complete(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.StatusCompleted, events.AppointmentCompleted, func(a *model.Appointment) error {
		if a.Date.After(s.now()) {
			return apperrors.Conflict("Appointment cannot be completed before it starts")
		}
		return nil
	})
}

// transition applies a status change that does not move the appointment in
// time, so no slot lock is needed. The write is conditional on the status we
// read.
func (s *appointmentService) transition(ctx context.Context, id string, next model.AppointmentStatus, eventType string, mutate func(*model.Appointment) error) (*model.Appointment, error) {
	existing, err := s.load(ctx, id, next)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if mutate != nil {
		if err := mutate(&updated); err != nil {
			return nil, err
		}
	}
	updated.Status = next

	if err := s.update(ctx, &updated, existing.Status); err != nil {
		s.cfg.Log.Error("Failed to update appointment status", "id", id, "status", next, "error", err)
		return nil, err
	}

	metrics.IncAppointmentTransition(string(next))
	s.emit(ctx, eventType, &updated, updated.Date)
	s.cfg.Log.Info("Appointment status changed",
		"id", id,
		"from", existing.Status,
		"to", next,
	)
	return &updated, nil
}

func (s *appointmentService) load(ctx context.Context, id string, next model.AppointmentStatus) (*model.Appointment, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.Status.CanTransitionTo(next) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot change appointment from %s to %s", existing.Status, next)).
			WithDetails(map[string]any{"from": existing.Status, "to": next})
	}
	return existing, nil
}

func (s *appointmentService) update(ctx context.Context, appointment *model.Appointment, expected model.AppointmentStatus) error {
	if err := s.repo.Update(ctx, appointment, expected); err != nil {
		if errors.Is(err, appointmentserrors.ErrStatusChanged) {
			return apperrors.Conflict("Appointment was modified by another request, reload and retry")
		}
		return mapRepoError(err, appointment.ID, "Failed to update appointment")
	}
	return nil
}

func (s *appointmentService) checkSlot(ctx context.Context, organizationID, deliveryTypeID string, start time.Time, excludeID string) (int, error) {
	duration, err := s.slots.CheckSlot(ctx, organizationID, deliveryTypeID, start, excludeID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeConflict) {
			metrics.IncSlotConflict()
		}
		return 0, err
	}
	return duration, nil
}

// withSlotLock runs fn while holding the advisory lock for one organization,
// delivery type and local day.
func (s *appointmentService) withSlotLock(ctx context.Context, organizationID, deliveryTypeID string, start time.Time, fn func() error) error {
	day := start.In(s.cfg.Loc()).Format(model.DateLayout)
	lock := &model.AppointmentLock{
		ID:        fmt.Sprintf("appointment_lock_%s_%s_%s", organizationID, deliveryTypeID, day),
		ExpiresAt: s.now().Add(s.cfg.AppointmentLockTTL),
	}

	if err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			metrics.IncSlotConflict()
			return apperrors.Conflict("Another appointment for this day is being processed, please try again")
		}
		return apperrors.Internal("Failed to acquire appointment lock", err)
	}
	defer func() {
		if err := s.lockRepo.Delete(context.WithoutCancel(ctx), lock.ID); err != nil {
			s.cfg.Log.Warn("Failed to release appointment lock", "lock_id", lock.ID, "error", err)
		}
	}()

	return fn()
}

func (s *appointmentService) validateTransition(transition *model.AppointmentTransition) error {
	if transition == nil {
		return nil
	}
	transition.Reason = sanitizer.NormalizeText(transition.Reason)
	if err := s.validator.ValidateTransition(transition); err != nil {
		return apperrors.Validation("Transition validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *appointmentService) sanitize(a *model.Appointment) {
	a.SupplierName = sanitizer.NormalizeName(a.SupplierName)
	a.Notes = sanitizer.NormalizeText(a.Notes)
	if phone := sanitizer.NormalizePhone(a.SupplierPhone, s.cfg.PhoneRegion); phone != "" {
		a.SupplierPhone = phone
	}
}

func (s *appointmentService) emit(ctx context.Context, eventType string, a *model.Appointment, starts ...time.Time) {
	s.emitter.Emit(ctx, eventType, events.Payload{
		OrganizationID: a.OrganizationID,
		DeliveryTypeID: a.DeliveryTypeID,
		Dates:          s.affectedDates(a.DurationMinutes, starts...),
		AppointmentID:  a.ID,
		Status:         string(a.Status),
	})
}

// affectedDates lists the local days touched by appointments of the given
// duration starting at each start. An appointment ending after midnight also
// touches the next day.
func (s *appointmentService) affectedDates(durationMinutes int, starts ...time.Time) []string {
	loc := s.cfg.Loc()
	seen := make(map[string]bool)
	var dates []string
	add := func(t time.Time) {
		d := t.In(loc).Format(model.DateLayout)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	for _, start := range starts {
		add(start)
		if durationMinutes > 0 {
			add(start.Add(time.Duration(durationMinutes)*time.Minute - time.Nanosecond))
		}
	}
	return dates
}

func reason(transition *model.AppointmentTransition) string {
	if transition == nil {
		return ""
	}
	return transition.Reason
}

func mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, appointmentserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Appointment", id)
	case errors.Is(err, appointmentserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid appointment ID format")
	default:
		return apperrors.Internal(message, err)
	}
}
