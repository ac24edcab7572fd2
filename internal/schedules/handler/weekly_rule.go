package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"sisagenda/internal/schedules/repository"
	"sisagenda/internal/schedules/service"
	apperrors "sisagenda/pkg/errors"
	httputil "sisagenda/pkg/http"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WeeklyRuleHandler struct {
	service service.WeeklyRuleService
	log     *logger.Logger
}

func NewWeeklyRuleHandler(service service.WeeklyRuleService, log *logger.Logger) *WeeklyRuleHandler {
	return &WeeklyRuleHandler{
		service: service,
		log:     log,
	}
}

func (h *WeeklyRuleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var rule model.WeeklyRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(h.log, w, "Create", invalidBody())
		return
	}

	if err := h.service.Create(r.Context(), &rule); err != nil {
		writeError(h.log, w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, rule); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *WeeklyRuleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rule, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(h.log, w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, rule); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// List filters by organization_id, and optionally by week_day and
// delivery_type_id. An explicitly empty delivery_type_id selects the
// organization defaults.
func (h *WeeklyRuleHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		writeError(h.log, w, "List", err)
		return
	}

	filter := repository.RuleFilter{OrganizationID: query.Get("organization_id")}
	if query.Has("delivery_type_id") {
		deliveryTypeID := query.Get("delivery_type_id")
		filter.DeliveryTypeID = &deliveryTypeID
	}
	if raw := query.Get("week_day"); raw != "" {
		weekDay, err := strconv.Atoi(raw)
		if err != nil || weekDay < 0 || weekDay > 6 {
			writeError(h.log, w, "List", apperrors.InvalidInput("week_day must be an integer between 0 and 6"))
			return
		}
		filter.WeekDay = &weekDay
	}

	rules, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(h.log, w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, rules, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *WeeklyRuleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.WeeklyRuleUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(h.log, w, "Update", invalidBody())
		return
	}

	rule, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		writeError(h.log, w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, rule); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WeeklyRuleHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(h.log, w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *WeeklyRuleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/weekly-rules", h.Create)
	router.GET("/api/v1/weekly-rules", h.List)
	router.GET("/api/v1/weekly-rules/id/:id", h.GetByID)
	router.PATCH("/api/v1/weekly-rules/id/:id", h.Update)
	router.DELETE("/api/v1/weekly-rules/id/:id", h.Delete)
}

func invalidBody() error {
	return apperrors.New(apperrors.CodeBadRequest, "Invalid request body", http.StatusBadRequest)
}

func writeError(log *logger.Logger, w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}
