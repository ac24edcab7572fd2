package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sisagenda/internal/availability/engine"
	availabilityerrors "sisagenda/internal/availability/errors"
	"sisagenda/pkg/config"
	apperrors "sisagenda/pkg/errors"
	"sisagenda/pkg/metrics"
	"sisagenda/pkg/model"

	"golang.org/x/sync/errgroup"
)

// Store loads the engine inputs. Implementations return *engine.NotFoundError
// for a missing organization or delivery type and ErrInvalidID for ids they
// cannot parse.
type Store interface {
	LoadOrganization(ctx context.Context, organizationID string) (*model.Organization, error)
	LoadSlotDuration(ctx context.Context, organizationID, deliveryTypeID string) (int, error)
	LoadLunchExclusion(ctx context.Context, organizationID, deliveryTypeID string) (*engine.Interval, error)
	LoadWeeklyRules(ctx context.Context, organizationID, deliveryTypeID string, weekday time.Weekday) ([]*model.WeeklyRule, error)
	LoadOverrides(ctx context.Context, organizationID, deliveryTypeID, date string) ([]*model.Override, error)
	LoadActiveAppointments(ctx context.Context, organizationID, deliveryTypeID string, from, to time.Time) ([]*model.Appointment, error)
}

type Availability struct {
	Date            string   `json:"date"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Slots           []string `json:"slots"`
}

// Window is an open interval rendered as HH:MM bounds.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type OpeningHours struct {
	Date    string   `json:"date"`
	Windows []Window `json:"windows"`
}

type AvailabilityService interface {
	GetAvailability(ctx context.Context, organizationID, deliveryTypeID, date string) (*Availability, error)
	// GetOpeningHours returns the effective windows of a date after
	// overrides, before lunch and appointments.
	GetOpeningHours(ctx context.Context, organizationID, deliveryTypeID, date string) (*OpeningHours, error)
	// CheckSlot verifies that start is a free slot and returns the slot
	// duration in minutes. Appointment excludeID is ignored so an appointment
	// can be moved within its own slot.
	CheckSlot(ctx context.Context, organizationID, deliveryTypeID string, start time.Time, excludeID string) (int, error)
}

type Option func(*availabilityService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *availabilityService) { s.now = now }
}

// WithMaxConcurrentLoads caps parallel store calls per query. Use 1 when the
// store runs inside a Mongo transaction.
func WithMaxConcurrentLoads(n int) Option {
	return func(s *availabilityService) { s.maxLoads = n }
}

type availabilityService struct {
	store    Store
	cfg      *config.Config
	now      func() time.Time
	maxLoads int
}

func NewAvailabilityService(store Store, cfg *config.Config, opts ...Option) AvailabilityService {
	s := &availabilityService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type dayQuery struct {
	organizationID string
	deliveryTypeID string
	date           string
	dayStart       time.Time
	excludeID      string
}

type dayInputs struct {
	duration     int
	lunch        *engine.Interval
	rules        []*model.WeeklyRule
	overrides    []*model.Override
	appointments []*model.Appointment
}

func (s *availabilityService) GetAvailability(ctx context.Context, organizationID, deliveryTypeID, date string) (*Availability, error) {
	q, err := s.parseQuery(organizationID, deliveryTypeID, date)
	if err != nil {
		return nil, err
	}

	if q.dayStart.Before(s.today()) {
		metrics.IncAvailabilityQuery("past_date")
		return &Availability{Date: q.date, Slots: []string{}}, nil
	}

	start := time.Now()
	slots, duration, err := s.computeSlots(ctx, q)
	if err != nil {
		metrics.IncAvailabilityQuery("error")
		s.cfg.Log.Error("Failed to compute availability",
			"organization_id", organizationID,
			"delivery_type_id", deliveryTypeID,
			"date", date,
			"error", err,
		)
		return nil, err
	}
	metrics.IncAvailabilityQuery("computed")
	metrics.ObserveAvailability(time.Since(start), len(slots))

	s.cfg.Log.Debug("Availability computed",
		"organization_id", organizationID,
		"delivery_type_id", deliveryTypeID,
		"date", date,
		"slots", len(slots),
	)
	return &Availability{
		Date:            q.date,
		DurationMinutes: duration,
		Slots:           engine.FormatSlots(slots),
	}, nil
}

func (s *availabilityService) CheckSlot(ctx context.Context, organizationID, deliveryTypeID string, start time.Time, excludeID string) (int, error) {
	if start.IsZero() {
		return 0, apperrors.InvalidInput("Appointment date is required")
	}
	local := start.In(s.cfg.Loc())
	q, err := s.parseQuery(organizationID, deliveryTypeID, local.Format(model.DateLayout))
	if err != nil {
		return 0, err
	}
	q.excludeID = excludeID

	if local.Second() != 0 || local.Nanosecond() != 0 || q.dayStart.Before(s.today()) {
		return 0, slotUnavailable()
	}

	slots, duration, err := s.computeSlots(ctx, q)
	if err != nil {
		return 0, err
	}

	minute := engine.MinuteOfDay(local)
	for _, slot := range slots {
		if slot == minute {
			return duration, nil
		}
	}
	return 0, slotUnavailable()
}

func (s *availabilityService) GetOpeningHours(ctx context.Context, organizationID, deliveryTypeID, date string) (*OpeningHours, error) {
	q, err := s.parseQuery(organizationID, deliveryTypeID, date)
	if err != nil {
		return nil, err
	}

	windows, err := s.resolveBaseWindows(ctx, q)
	if err != nil {
		return nil, err
	}

	hours := &OpeningHours{Date: q.date, Windows: make([]Window, len(windows))}
	for i, w := range windows {
		hours.Windows[i] = Window{Start: engine.FormatMinute(w.Start), End: engine.FormatMinute(w.End)}
	}
	return hours, nil
}

// resolveBaseWindows returns the open windows of one date before lunch and
// appointments are taken out.
func (s *availabilityService) resolveBaseWindows(ctx context.Context, q dayQuery) ([]engine.Interval, error) {
	in := &dayInputs{}
	g, gctx := errgroup.WithContext(ctx)
	s.limit(g)
	g.Go(func() error {
		_, err := s.store.LoadOrganization(gctx, q.organizationID)
		return err
	})
	s.loadSchedule(g, gctx, q, in)
	if err := g.Wait(); err != nil {
		return nil, s.mapError(err)
	}

	windows, err := engine.ResolveWindows(in.rules, in.overrides)
	if err != nil {
		return nil, s.mapError(err)
	}
	return windows, nil
}

func (s *availabilityService) computeSlots(ctx context.Context, q dayQuery) ([]int, int, error) {
	in, err := s.loadDay(ctx, q)
	if err != nil {
		return nil, 0, s.mapError(err)
	}

	busy := make([]engine.Busy, 0, len(in.appointments))
	for _, a := range in.appointments {
		if a.ID != "" && a.ID == q.excludeID {
			continue
		}
		if b, ok := engine.ProjectAppointment(a, q.dayStart); ok {
			busy = append(busy, b)
		}
	}

	notBefore := 0
	if q.dayStart.Equal(s.today()) {
		notBefore = engine.CeilMinuteOfDay(s.now().In(s.cfg.Loc()))
	}

	slots, err := engine.Compute(engine.Day{
		Rules:           in.rules,
		Overrides:       in.overrides,
		Lunch:           in.lunch,
		SlotDuration:    in.duration,
		Busy:            busy,
		NotBeforeMinute: notBefore,
	})
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	return slots, in.duration, nil
}

// loadDay fetches every input concurrently. The first failure cancels the
// remaining loads and no partial result is used.
func (s *availabilityService) loadDay(ctx context.Context, q dayQuery) (*dayInputs, error) {
	in := &dayInputs{}
	g, gctx := errgroup.WithContext(ctx)
	s.limit(g)

	g.Go(func() error {
		_, err := s.store.LoadOrganization(gctx, q.organizationID)
		return err
	})
	g.Go(func() error {
		var err error
		in.duration, err = s.store.LoadSlotDuration(gctx, q.organizationID, q.deliveryTypeID)
		return err
	})
	g.Go(func() error {
		var err error
		in.lunch, err = s.store.LoadLunchExclusion(gctx, q.organizationID, q.deliveryTypeID)
		return err
	})
	s.loadSchedule(g, gctx, q, in)
	g.Go(func() error {
		var err error
		from := q.dayStart.Add(-24 * time.Hour)
		to := q.dayStart.AddDate(0, 0, 1)
		in.appointments, err = s.store.LoadActiveAppointments(gctx, q.organizationID, q.deliveryTypeID, from, to)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *availabilityService) loadSchedule(g *errgroup.Group, ctx context.Context, q dayQuery, in *dayInputs) {
	g.Go(func() error {
		var err error
		in.rules, err = s.store.LoadWeeklyRules(ctx, q.organizationID, q.deliveryTypeID, q.dayStart.Weekday())
		return err
	})
	g.Go(func() error {
		var err error
		in.overrides, err = s.store.LoadOverrides(ctx, q.organizationID, q.deliveryTypeID, q.date)
		return err
	})
}

func (s *availabilityService) limit(g *errgroup.Group) {
	if s.maxLoads > 0 {
		g.SetLimit(s.maxLoads)
	}
}

func (s *availabilityService) parseQuery(organizationID, deliveryTypeID, date string) (dayQuery, error) {
	if organizationID == "" || deliveryTypeID == "" {
		return dayQuery{}, apperrors.InvalidInput("organization_id and delivery_type_id are required")
	}
	dayStart, err := time.ParseInLocation(model.DateLayout, date, s.cfg.Loc())
	if err != nil {
		return dayQuery{}, apperrors.InvalidInput("Invalid date format, must be YYYY-MM-DD")
	}
	return dayQuery{
		organizationID: organizationID,
		deliveryTypeID: deliveryTypeID,
		date:           date,
		dayStart:       dayStart,
	}, nil
}

func (s *availabilityService) today() time.Time {
	return engine.StartOfDay(s.now().In(s.cfg.Loc()))
}

func (s *availabilityService) mapError(err error) error {
	var notFound *engine.NotFoundError
	var badInterval *engine.InvalidIntervalError
	var badConfig *engine.InvalidConfigurationError

	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.As(err, &notFound):
		return apperrors.NotFoundWithID(notFound.Resource, notFound.ID)
	case errors.Is(err, availabilityerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid organization or delivery type ID format")
	case errors.As(err, &badInterval):
		return apperrors.InvalidInterval("Stored schedule contains an invalid interval", err)
	case errors.As(err, &badConfig):
		return apperrors.InvalidConfiguration("Delivery type is misconfigured", err)
	default:
		return apperrors.Internal("Failed to load availability data", err)
	}
}

func slotUnavailable() error {
	return apperrors.Wrap(availabilityerrors.ErrSlotUnavailable, apperrors.CodeConflict,
		"The requested time slot is not available", http.StatusConflict)
}
