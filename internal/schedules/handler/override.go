package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sisagenda/internal/schedules/repository"
	"sisagenda/internal/schedules/service"
	apperrors "sisagenda/pkg/errors"
	httputil "sisagenda/pkg/http"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type OverrideHandler struct {
	service service.OverrideService
	log     *logger.Logger
}

func NewOverrideHandler(service service.OverrideService, log *logger.Logger) *OverrideHandler {
	return &OverrideHandler{
		service: service,
		log:     log,
	}
}

func (h *OverrideHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var override model.Override
	if err := json.NewDecoder(r.Body).Decode(&override); err != nil {
		writeError(h.log, w, "Create", invalidBody())
		return
	}

	if err := h.service.Create(r.Context(), &override); err != nil {
		writeError(h.log, w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, override); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *OverrideHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	override, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(h.log, w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, override); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OverrideHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		writeError(h.log, w, "List", err)
		return
	}

	filter := repository.OverrideFilter{
		OrganizationID: query.Get("organization_id"),
		DeliveryTypeID: query.Get("delivery_type_id"),
		From:           query.Get("from"),
		To:             query.Get("to"),
	}
	for name, value := range map[string]string{"from": filter.From, "to": filter.To} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, value); err != nil {
			writeError(h.log, w, "List", apperrors.InvalidInput(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", name)))
			return
		}
	}

	overrides, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(h.log, w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, overrides, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *OverrideHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(h.log, w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *OverrideHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/overrides", h.Create)
	router.GET("/api/v1/overrides", h.List)
	router.GET("/api/v1/overrides/id/:id", h.GetByID)
	router.DELETE("/api/v1/overrides/id/:id", h.Delete)
}
