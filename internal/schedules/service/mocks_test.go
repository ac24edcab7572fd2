package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	scheduleserrors "sisagenda/internal/schedules/errors"
	"sisagenda/internal/schedules/repository"
	"sisagenda/internal/schedules/validator"
	"sisagenda/pkg/config"
	mongotx "sisagenda/pkg/db/mongo"
	"sisagenda/pkg/events"
	"sisagenda/pkg/kafka"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	orgID = "65f1a2b3c4d5e6f7a8b9c0d1"
	dtID  = "65f1a2b3c4d5e6f7a8b9c0d2"
)

type mockWeeklyRuleRepository struct {
	mu           sync.Mutex
	rules        map[string]*model.WeeklyRule
	nextID       int
	findErr      error
	guardErr     error
	guarded      []string
	inTx         bool
	transactions int
}

func newMockRuleRepo(rules ...*model.WeeklyRule) *mockWeeklyRuleRepository {
	repo := &mockWeeklyRuleRepository{rules: map[string]*model.WeeklyRule{}}
	for _, r := range rules {
		copied := *r
		repo.rules[r.ID] = &copied
	}
	return repo
}

func (m *mockWeeklyRuleRepository) Create(_ context.Context, rule *model.WeeklyRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rule.ID = fmt.Sprintf("65f1a2b3c4d5e6f7a8b9d%03d", m.nextID)
	copied := *rule
	m.rules[rule.ID] = &copied
	return nil
}

func (m *mockWeeklyRuleRepository) FindByID(_ context.Context, id string) (*model.WeeklyRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "bad" {
		return nil, scheduleserrors.ErrInvalidID
	}
	r, ok := m.rules[id]
	if !ok || r.DeletedAt != nil {
		return nil, scheduleserrors.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *mockWeeklyRuleRepository) Find(_ context.Context, filter repository.RuleFilter, _ int, _ int64) ([]*model.WeeklyRule, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.WeeklyRule
	for _, r := range m.rules {
		if r.DeletedAt != nil || r.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.DeliveryTypeID != nil && r.DeliveryTypeID != *filter.DeliveryTypeID {
			continue
		}
		if filter.WeekDay != nil && r.WeekDay != *filter.WeekDay {
			continue
		}
		copied := *r
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMinute < out[j].StartMinute })
	return out, nil
}

func (m *mockWeeklyRuleRepository) Count(ctx context.Context, filter repository.RuleFilter) (int64, error) {
	rules, err := m.Find(ctx, filter, 0, 0)
	return int64(len(rules)), err
}

func (m *mockWeeklyRuleRepository) Update(_ context.Context, id string, rule *model.WeeklyRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.rules[id]
	if !ok || current.DeletedAt != nil {
		return scheduleserrors.ErrNotFound
	}
	current.WeekDay = rule.WeekDay
	current.StartMinute = rule.StartMinute
	current.EndMinute = rule.EndMinute
	return nil
}

func (m *mockWeeklyRuleRepository) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.rules[id]
	if !ok || current.DeletedAt != nil {
		return scheduleserrors.ErrNotFound
	}
	now := time.Now()
	current.DeletedAt = &now
	return nil
}

func (m *mockWeeklyRuleRepository) GuardWeekday(ctx context.Context, organizationID, deliveryTypeID string, weekDay int) error {
	if !m.inTx {
		return fmt.Errorf("weekday guard outside a transaction")
	}
	if m.guardErr != nil {
		return m.guardErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guarded = append(m.guarded, repository.GuardKey(organizationID, deliveryTypeID, weekDay))
	return nil
}

func (m *mockWeeklyRuleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.transactions++
	m.inTx = true
	defer func() { m.inTx = false }()
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockOverrideRepository struct {
	mu        sync.Mutex
	overrides map[string]*model.Override
	createErr error
	lastQuery repository.OverrideFilter
}

func newMockOverrideRepo(overrides ...*model.Override) *mockOverrideRepository {
	repo := &mockOverrideRepository{overrides: map[string]*model.Override{}}
	for _, o := range overrides {
		copied := *o
		repo.overrides[o.ID] = &copied
	}
	return repo
}

func (m *mockOverrideRepository) Create(_ context.Context, override *model.Override) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	override.ID = fmt.Sprintf("65f1a2b3c4d5e6f7a8b9e%03d", len(m.overrides)+1)
	copied := *override
	m.overrides[override.ID] = &copied
	return nil
}

func (m *mockOverrideRepository) FindByID(_ context.Context, id string) (*model.Override, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.overrides[id]
	if !ok {
		return nil, scheduleserrors.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *mockOverrideRepository) Find(_ context.Context, filter repository.OverrideFilter, _ int, _ int64) ([]*model.Override, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = filter
	var out []*model.Override
	for _, o := range m.overrides {
		if o.OrganizationID == filter.OrganizationID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOverrideRepository) Count(ctx context.Context, filter repository.OverrideFilter) (int64, error) {
	overrides, err := m.Find(ctx, filter, 0, 0)
	return int64(len(overrides)), err
}

func (m *mockOverrideRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.overrides[id]; !ok {
		return scheduleserrors.ErrNotFound
	}
	delete(m.overrides, id)
	return nil
}

func (m *mockOverrideRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type recordingPublisher struct {
	mu       sync.Mutex
	types    []string
	payloads []events.Payload
}

func (p *recordingPublisher) Publish(_ context.Context, msg kafka.Message) error {
	var payload events.Payload
	if err := msg.DecodeValue(&payload); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, msg.GetEventType())
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func testDeps(t *testing.T) (*config.Config, *validator.ScheduleValidator, *recordingPublisher, *events.Emitter) {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	cfg := &config.Config{Log: log, ReadTimeout: time.Second, WriteTimeout: time.Second}
	published := &recordingPublisher{}
	return cfg, validator.NewScheduleValidator(log), published, events.NewEmitter(published, "schedules", log)
}
