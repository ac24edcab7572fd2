package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sisagenda/internal/schedules/repository"
	apperrors "sisagenda/pkg/errors"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWeeklyRuleService struct {
	err       error
	created   *model.WeeklyRule
	updates   *model.WeeklyRuleUpdate
	filter    repository.RuleFilter
	deletedID string
}

func (f *fakeWeeklyRuleService) Create(_ context.Context, rule *model.WeeklyRule) error {
	if f.err != nil {
		return f.err
	}
	rule.ID = "rule-id"
	f.created = rule
	return nil
}

func (f *fakeWeeklyRuleService) GetByID(_ context.Context, id string) (*model.WeeklyRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.WeeklyRule{ID: id}, nil
}

func (f *fakeWeeklyRuleService) List(_ context.Context, filter repository.RuleFilter, _ int, _ int64) ([]*model.WeeklyRule, int64, error) {
	f.filter = filter
	if f.err != nil {
		return nil, 0, f.err
	}
	return []*model.WeeklyRule{{ID: "a"}}, 1, nil
}

func (f *fakeWeeklyRuleService) Update(_ context.Context, id string, updates *model.WeeklyRuleUpdate) (*model.WeeklyRule, error) {
	f.updates = updates
	if f.err != nil {
		return nil, f.err
	}
	return &model.WeeklyRule{ID: id, EndMinute: *updates.EndMinute}, nil
}

func (f *fakeWeeklyRuleService) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}

type fakeOverrideService struct {
	err     error
	created *model.Override
	filter  repository.OverrideFilter
}

func (f *fakeOverrideService) Create(_ context.Context, o *model.Override) error {
	if f.err != nil {
		return f.err
	}
	o.ID = "override-id"
	f.created = o
	return nil
}

func (f *fakeOverrideService) GetByID(_ context.Context, id string) (*model.Override, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Override{ID: id}, nil
}

func (f *fakeOverrideService) List(_ context.Context, filter repository.OverrideFilter, _ int, _ int64) ([]*model.Override, int64, error) {
	f.filter = filter
	return nil, 0, f.err
}

func (f *fakeOverrideService) Delete(context.Context, string) error {
	return f.err
}

func newRouter(rules *fakeWeeklyRuleService, overrides *fakeOverrideService) *httprouter.Router {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	router := httprouter.New()
	NewWeeklyRuleHandler(rules, log).RegisterRoutes(router)
	NewOverrideHandler(overrides, log).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWeeklyRuleCreate(t *testing.T) {
	rules := &fakeWeeklyRuleService{}
	w := serve(newRouter(rules, &fakeOverrideService{}), http.MethodPost, "/api/v1/weekly-rules",
		`{"organization_id":"o","week_day":1,"start_minute":480,"end_minute":720}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, rules.created)
	assert.Equal(t, 480, rules.created.StartMinute)
	assert.Empty(t, rules.created.DeliveryTypeID)
}

func TestWeeklyRuleCreate_Conflict(t *testing.T) {
	rules := &fakeWeeklyRuleService{err: apperrors.Conflict("Weekly rule overlaps existing rule")}
	w := serve(newRouter(rules, &fakeOverrideService{}), http.MethodPost, "/api/v1/weekly-rules", `{}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWeeklyRuleList(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantStatus   int
		wantDTFilter *string
		wantWeekDay  *int
	}{
		{name: "all owners", query: "organization_id=o", wantStatus: http.StatusOK},
		{name: "organization defaults", query: "organization_id=o&delivery_type_id=", wantStatus: http.StatusOK, wantDTFilter: strPtr("")},
		{name: "one delivery type on monday", query: "organization_id=o&delivery_type_id=d&week_day=1", wantStatus: http.StatusOK, wantDTFilter: strPtr("d"), wantWeekDay: intPtr(1)},
		{name: "bad week day", query: "organization_id=o&week_day=9", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := &fakeWeeklyRuleService{}
			w := serve(newRouter(rules, &fakeOverrideService{}), http.MethodGet, "/api/v1/weekly-rules?"+tt.query, "")

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, tt.wantDTFilter, rules.filter.DeliveryTypeID)
			assert.Equal(t, tt.wantWeekDay, rules.filter.WeekDay)
		})
	}
}

func TestWeeklyRuleUpdateAndDelete(t *testing.T) {
	rules := &fakeWeeklyRuleService{}
	router := newRouter(rules, &fakeOverrideService{})

	w := serve(router, http.MethodPatch, "/api/v1/weekly-rules/id/abc", `{"end_minute":780}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, rules.updates)
	assert.Nil(t, rules.updates.StartMinute)

	var body struct {
		Data model.WeeklyRule `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 780, body.Data.EndMinute)

	w = serve(router, http.MethodDelete, "/api/v1/weekly-rules/id/abc", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "abc", rules.deletedID)
}

func TestOverrideCreate(t *testing.T) {
	overrides := &fakeOverrideService{}
	w := serve(newRouter(&fakeWeeklyRuleService{}, overrides), http.MethodPost, "/api/v1/overrides",
		`{"organization_id":"o","delivery_type_id":"d","date":"2026-03-09","kind":"BLOCK","whole_day":true}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, overrides.created)
	assert.True(t, overrides.created.WholeDay)
	assert.Equal(t, model.OverrideBlock, overrides.created.Kind)
}

func TestOverrideList(t *testing.T) {
	overrides := &fakeOverrideService{}
	router := newRouter(&fakeWeeklyRuleService{}, overrides)

	w := serve(router, http.MethodGet, "/api/v1/overrides?organization_id=o&from=2026-03-01&to=2026-03-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-03-01", overrides.filter.From)
	assert.Equal(t, "2026-03-31", overrides.filter.To)

	w = serve(router, http.MethodGet, "/api/v1/overrides?organization_id=o&from=01/03/2026", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverrideGetAndDelete_NotFound(t *testing.T) {
	overrides := &fakeOverrideService{err: apperrors.NotFoundWithID("Override", "abc")}
	router := newRouter(&fakeWeeklyRuleService{}, overrides)

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/v1/overrides/id/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, "/api/v1/overrides/id/abc", "").Code)
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }
