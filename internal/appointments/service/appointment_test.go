package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appointmentserrors "sisagenda/internal/appointments/errors"
	"sisagenda/internal/appointments/repository"
	"sisagenda/internal/appointments/validator"
	"sisagenda/pkg/config"
	mongotx "sisagenda/pkg/db/mongo"
	apperrors "sisagenda/pkg/errors"
	"sisagenda/pkg/events"
	"sisagenda/pkg/kafka"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	orgID  = "65f1a2b3c4d5e6f7a8b9c0d1"
	dtID   = "65f1a2b3c4d5e6f7a8b9c0d2"
	apptID = "65f1a2b3c4d5e6f7a8b9c0d3"
)

type mockAppointmentRepository struct {
	mu           sync.Mutex
	stored       map[string]*model.Appointment
	createErr    error
	updateErr    error
	transactions int
}

func newMockRepo(appointments ...*model.Appointment) *mockAppointmentRepository {
	repo := &mockAppointmentRepository{stored: map[string]*model.Appointment{}}
	for _, a := range appointments {
		copied := *a
		repo.stored[a.ID] = &copied
	}
	return repo
}

func (m *mockAppointmentRepository) Create(_ context.Context, a *model.Appointment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = apptID
	copied := *a
	m.stored[a.ID] = &copied
	return nil
}

func (m *mockAppointmentRepository) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "bad" {
		return nil, appointmentserrors.ErrInvalidID
	}
	a, ok := m.stored[id]
	if !ok {
		return nil, appointmentserrors.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAppointmentRepository) Update(_ context.Context, a *model.Appointment, expected model.AppointmentStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.stored[a.ID]
	if !ok || current.Status != expected {
		return appointmentserrors.ErrStatusChanged
	}
	copied := *a
	m.stored[a.ID] = &copied
	return nil
}

func (m *mockAppointmentRepository) Search(context.Context, repository.SearchFilter, int, int64) ([]*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Appointment
	for _, a := range m.stored {
		out = append(out, a)
	}
	return out, nil
}

func (m *mockAppointmentRepository) Count(context.Context, repository.SearchFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.stored)), nil
}

func (m *mockAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.transactions++
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockLockRepository struct {
	held     map[string]bool
	released []string
}

func (m *mockLockRepository) Create(_ context.Context, lock *model.AppointmentLock) error {
	if m.held[lock.ID] {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}
	}
	m.held[lock.ID] = true
	return nil
}

func (m *mockLockRepository) Delete(_ context.Context, id string) error {
	delete(m.held, id)
	m.released = append(m.released, id)
	return nil
}

type mockSlotChecker struct {
	duration   int
	err        error
	gotStart   time.Time
	gotExclude string
	inSession  bool
}

func (m *mockSlotChecker) CheckSlot(ctx context.Context, _, _ string, start time.Time, excludeID string) (int, error) {
	m.gotStart = start
	m.gotExclude = excludeID
	_, m.inSession = ctx.(mongo.SessionContext)
	return m.duration, m.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, msg kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msg.GetEventType())
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	svc       *appointmentService
	repo      *mockAppointmentRepository
	locks     *mockLockRepository
	slots     *mockSlotChecker
	published *recordingPublisher
	loc       *time.Location
}

func newFixture(t *testing.T, appointments ...*model.Appointment) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	cfg := &config.Config{
		Log:                log,
		Location:           loc,
		AppointmentLockTTL: 10 * time.Second,
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
	}

	f := &fixture{
		repo:      newMockRepo(appointments...),
		locks:     &mockLockRepository{held: map[string]bool{}},
		slots:     &mockSlotChecker{duration: 60},
		published: &recordingPublisher{},
		loc:       loc,
	}
	svc := NewAppointmentService(
		f.repo,
		f.locks,
		f.slots,
		validator.NewAppointmentValidator(log),
		events.NewEmitter(f.published, "appointments", log),
		cfg,
	).(*appointmentService)
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 10, 20, 30, 0, loc) }
	f.svc = svc
	return f
}

func (f *fixture) at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, f.loc)
}

func newAppointment(start time.Time) *model.Appointment {
	return &model.Appointment{
		OrganizationID: orgID,
		DeliveryTypeID: dtID,
		Date:           start,
		SupplierName:   "  Distribuidora   Sul ",
		SupplierPhone:  "(11) 98765-4321",
	}
}

func existingAppointment(status model.AppointmentStatus, start time.Time) *model.Appointment {
	return &model.Appointment{
		ID:              apptID,
		OrganizationID:  orgID,
		DeliveryTypeID:  dtID,
		Date:            start,
		DurationMinutes: 60,
		Status:          status,
		SupplierName:    "Distribuidora Sul",
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	a := newAppointment(f.at(9, 8, 0))

	require.NoError(t, f.svc.Create(context.Background(), a))

	assert.Equal(t, apptID, a.ID)
	assert.Equal(t, model.StatusPendingConfirmation, a.Status)
	assert.Equal(t, 60, a.DurationMinutes)
	assert.Equal(t, "Distribuidora Sul", a.SupplierName)
	assert.Equal(t, "+5511987654321", a.SupplierPhone)

	assert.True(t, f.slots.inSession, "slot check must run inside the transaction")
	assert.Empty(t, f.slots.gotExclude)
	assert.Equal(t, 1, f.repo.transactions)
	assert.Equal(t, []string{"appointment_lock_" + orgID + "_" + dtID + "_2026-03-09"}, f.locks.released)
	assert.Empty(t, f.locks.held)
	assert.Equal(t, []string{events.AppointmentCreated}, f.published.events)
}

func TestCreate_Errors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		f := newFixture(t)
		a := newAppointment(f.at(9, 8, 0))
		a.SupplierName = ""

		err := f.svc.Create(context.Background(), a)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
		assert.Zero(t, f.repo.transactions)
	})

	t.Run("slot taken", func(t *testing.T) {
		f := newFixture(t)
		f.slots.err = apperrors.Conflict("The requested time slot is not available")

		err := f.svc.Create(context.Background(), newAppointment(f.at(9, 8, 0)))
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
		assert.Empty(t, f.repo.stored)
		assert.Empty(t, f.locks.held, "lock must be released on failure")
		assert.Empty(t, f.published.events)
	})

	t.Run("lock busy", func(t *testing.T) {
		f := newFixture(t)
		f.locks.held["appointment_lock_"+orgID+"_"+dtID+"_2026-03-09"] = true

		err := f.svc.Create(context.Background(), newAppointment(f.at(9, 14, 0)))
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
		assert.Zero(t, f.repo.transactions)
	})

	t.Run("insert failure", func(t *testing.T) {
		f := newFixture(t)
		f.repo.createErr = errors.New("connection reset")

		err := f.svc.Create(context.Background(), newAppointment(f.at(9, 8, 0)))
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
	})
}

func TestGetByID(t *testing.T) {
	f := newFixture(t, existingAppointment(model.StatusConfirmed, time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)))

	got, err := f.svc.GetByID(context.Background(), apptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)

	_, err = f.svc.GetByID(context.Background(), "65f1a2b3c4d5e6f7a8b9c0ff")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.svc.GetByID(context.Background(), "bad")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = f.svc.GetByID(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestSearch(t *testing.T) {
	f := newFixture(t, existingAppointment(model.StatusConfirmed, time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)))

	got, total, err := f.svc.Search(context.Background(), repository.SearchFilter{OrganizationID: orgID}, 0, -5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), total)

	_, _, err = f.svc.Search(context.Background(), repository.SearchFilter{}, 10, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	from := f.at(10, 0, 0)
	to := f.at(9, 0, 0)
	_, _, err = f.svc.Search(context.Background(), repository.SearchFilter{OrganizationID: orgID, From: &from, To: &to}, 10, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name      string
		from      model.AppointmentStatus
		run       func(s *appointmentService, id string) (*model.Appointment, error)
		want      model.AppointmentStatus
		wantEvent string
	}{
		{
			name: "confirm pending",
			from: model.StatusPendingConfirmation,
			run:  func(s *appointmentService, id string) (*model.Appointment, error) { return s.Confirm(context.Background(), id) },
			want: model.StatusConfirmed, wantEvent: events.AppointmentConfirmed,
		},
		{
			name: "request cancellation",
			from: model.StatusConfirmed,
			run: func(s *appointmentService, id string) (*model.Appointment, error) {
				return s.RequestCancellation(context.Background(), id, &model.AppointmentTransition{Reason: " truck  broke down "})
			},
			want: model.StatusCancellationRequested, wantEvent: events.AppointmentCancellationRequested,
		},
		{
			name: "reject cancellation",
			from: model.StatusCancellationRequested,
			run:  func(s *appointmentService, id string) (*model.Appointment, error) { return s.RejectCancellation(context.Background(), id) },
			want: model.StatusConfirmed, wantEvent: events.AppointmentConfirmed,
		},
		{
			name: "cancel confirmed",
			from: model.StatusConfirmed,
			run: func(s *appointmentService, id string) (*model.Appointment, error) {
				return s.Cancel(context.Background(), id, nil)
			},
			want: model.StatusCancelled, wantEvent: events.AppointmentCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo = newMockRepo(existingAppointment(tt.from, f.at(9, 8, 0)))
			f.svc.repo = f.repo

			got, err := tt.run(f.svc, apptID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.want, f.repo.stored[apptID].Status)
			assert.Equal(t, []string{tt.wantEvent}, f.published.events)
		})
	}
}

func TestTransitions_Rejected(t *testing.T) {
	tests := []struct {
		name string
		from model.AppointmentStatus
		run  func(s *appointmentService, id string) (*model.Appointment, error)
	}{
		{"confirm cancelled", model.StatusCancelled, func(s *appointmentService, id string) (*model.Appointment, error) {
			return s.Confirm(context.Background(), id)
		}},
		{"complete pending", model.StatusPendingConfirmation, func(s *appointmentService, id string) (*model.Appointment, error) {
			return s.Complete(context.Background(), id)
		}},
		{"reject reschedule without request", model.StatusPendingConfirmation, func(s *appointmentService, id string) (*model.Appointment, error) {
			return s.RejectReschedule(context.Background(), id)
		}},
		{"reject cancellation without request", model.StatusPendingConfirmation, func(s *appointmentService, id string) (*model.Appointment, error) {
			return s.RejectCancellation(context.Background(), id)
		}},
		{"complete future appointment", model.StatusConfirmed, func(s *appointmentService, id string) (*model.Appointment, error) {
			return s.Complete(context.Background(), id)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.repo = newMockRepo(existingAppointment(tt.from, f.at(9, 8, 0)))
			f.svc.repo = f.repo

			_, err := tt.run(f.svc, apptID)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "got %v", err)
			assert.Equal(t, tt.from, f.repo.stored[apptID].Status)
			assert.Empty(t, f.published.events)
		})
	}
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	f.repo = newMockRepo(existingAppointment(model.StatusConfirmed, f.at(3, 8, 0)))
	f.svc.repo = f.repo

	got, err := f.svc.Complete(context.Background(), apptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
}

func TestTransition_ConcurrentChange(t *testing.T) {
	f := newFixture(t)
	f.repo = newMockRepo(existingAppointment(model.StatusPendingConfirmation, f.at(9, 8, 0)))
	f.repo.updateErr = appointmentserrors.ErrStatusChanged
	f.svc.repo = f.repo

	_, err := f.svc.Confirm(context.Background(), apptID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	f.repo = newMockRepo(existingAppointment(model.StatusConfirmed, f.at(9, 8, 0)))
	f.svc.repo = f.repo
	target := f.at(10, 14, 0)

	got, err := f.svc.RequestReschedule(context.Background(), apptID, &model.AppointmentTransition{RequestedDate: &target})
	require.NoError(t, err)
	assert.Equal(t, model.StatusRescheduleRequested, got.Status)
	require.NotNil(t, got.RequestedDate)
	assert.True(t, got.Date.Equal(f.at(9, 8, 0)), "date only moves on confirmation")

	f.slots.duration = 45
	got, err = f.svc.ConfirmReschedule(context.Background(), apptID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRescheduleConfirmed, got.Status)
	assert.True(t, got.Date.Equal(target))
	assert.Nil(t, got.RequestedDate)
	assert.Equal(t, 45, got.DurationMinutes)

	assert.Equal(t, apptID, f.slots.gotExclude, "own slot must be ignored")
	assert.True(t, f.slots.gotStart.Equal(target))
	assert.Equal(t, []string{"appointment_lock_" + orgID + "_" + dtID + "_2026-03-10"}, f.locks.released)
	assert.Equal(t, []string{events.AppointmentRescheduleRequested, events.AppointmentRescheduled}, f.published.events)
}

func TestReschedule_Errors(t *testing.T) {
	t.Run("missing requested date", func(t *testing.T) {
		f := newFixture(t)
		f.repo = newMockRepo(existingAppointment(model.StatusConfirmed, f.at(9, 8, 0)))
		f.svc.repo = f.repo

		_, err := f.svc.RequestReschedule(context.Background(), apptID, &model.AppointmentTransition{})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	})

	t.Run("requested date in the past", func(t *testing.T) {
		f := newFixture(t)
		f.repo = newMockRepo(existingAppointment(model.StatusConfirmed, f.at(9, 8, 0)))
		f.svc.repo = f.repo
		past := f.at(2, 8, 0)

		_, err := f.svc.RequestReschedule(context.Background(), apptID, &model.AppointmentTransition{RequestedDate: &past})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	})

	t.Run("target slot taken", func(t *testing.T) {
		f := newFixture(t)
		a := existingAppointment(model.StatusRescheduleRequested, f.at(9, 8, 0))
		target := f.at(10, 14, 0)
		a.RequestedDate = &target
		f.repo = newMockRepo(a)
		f.svc.repo = f.repo
		f.slots.err = apperrors.Conflict("The requested time slot is not available")

		_, err := f.svc.ConfirmReschedule(context.Background(), apptID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
		assert.Equal(t, model.StatusRescheduleRequested, f.repo.stored[apptID].Status)
		assert.True(t, f.repo.stored[apptID].Date.Equal(f.at(9, 8, 0)))
	})

	t.Run("reject keeps original date", func(t *testing.T) {
		f := newFixture(t)
		a := existingAppointment(model.StatusRescheduleRequested, f.at(9, 8, 0))
		target := f.at(10, 14, 0)
		a.RequestedDate = &target
		f.repo = newMockRepo(a)
		f.svc.repo = f.repo

		got, err := f.svc.RejectReschedule(context.Background(), apptID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, got.Status)
		assert.Nil(t, got.RequestedDate)
		assert.True(t, got.Date.Equal(f.at(9, 8, 0)))
	})
}

func TestAffectedDates(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []string{"2026-03-09"}, f.svc.affectedDates(60, f.at(9, 8, 0)))
	assert.Equal(t, []string{"2026-03-09", "2026-03-10"}, f.svc.affectedDates(120, f.at(9, 23, 0)))
	assert.Equal(t, []string{"2026-03-09"}, f.svc.affectedDates(60, f.at(9, 23, 0)))
	assert.Equal(t, []string{"2026-03-09", "2026-03-10"}, f.svc.affectedDates(60, f.at(9, 8, 0), f.at(10, 8, 0)))
}
