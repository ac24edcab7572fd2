package handler

import (
	"encoding/json"
	"net/http"

	"sisagenda/internal/organizations/service"
	httputil "sisagenda/pkg/http"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DeliveryTypeHandler struct {
	service service.DeliveryTypeService
	log     *logger.Logger
}

func NewDeliveryTypeHandler(service service.DeliveryTypeService, log *logger.Logger) *DeliveryTypeHandler {
	return &DeliveryTypeHandler{
		service: service,
		log:     log,
	}
}

func (h *DeliveryTypeHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var dt model.DeliveryType
	if err := json.NewDecoder(r.Body).Decode(&dt); err != nil {
		writeError(h.log, w, "Create", invalidBody())
		return
	}

	if err := h.service.Create(r.Context(), &dt); err != nil {
		writeError(h.log, w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, dt); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *DeliveryTypeHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		writeError(h.log, w, "List", err)
		return
	}

	dts, total, err := h.service.List(r.Context(), r.URL.Query().Get("organization_id"), limit, offset)
	if err != nil {
		writeError(h.log, w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, dts, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *DeliveryTypeHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	dt, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(h.log, w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, dt); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DeliveryTypeHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.DeliveryTypeUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(h.log, w, "Update", invalidBody())
		return
	}

	dt, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		writeError(h.log, w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, dt); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DeliveryTypeHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(h.log, w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *DeliveryTypeHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/delivery-types", h.Create)
	router.GET("/api/v1/delivery-types", h.List)
	router.GET("/api/v1/delivery-types/id/:id", h.GetByID)
	router.PATCH("/api/v1/delivery-types/id/:id", h.Update)
	router.DELETE("/api/v1/delivery-types/id/:id", h.Delete)
}
