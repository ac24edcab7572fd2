package handler

import (
	"encoding/json"
	"net/http"

	"sisagenda/internal/organizations/service"
	apperrors "sisagenda/pkg/errors"
	httputil "sisagenda/pkg/http"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type OrganizationHandler struct {
	service service.OrganizationService
	log     *logger.Logger
}

func NewOrganizationHandler(service service.OrganizationService, log *logger.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		service: service,
		log:     log,
	}
}

func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var org model.Organization
	if err := json.NewDecoder(r.Body).Decode(&org); err != nil {
		writeError(h.log, w, "Create", invalidBody())
		return
	}

	if err := h.service.Create(r.Context(), &org); err != nil {
		writeError(h.log, w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, org); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *OrganizationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		writeError(h.log, w, "GetAll", err)
		return
	}

	orgs, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(h.log, w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, orgs, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *OrganizationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	org, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(h.log, w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, org); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.OrganizationUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(h.log, w, "Update", invalidBody())
		return
	}

	org, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		writeError(h.log, w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, org); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(h.log, w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *OrganizationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/organizations", h.Create)
	router.GET("/api/v1/organizations", h.GetAll)
	router.GET("/api/v1/organizations/id/:id", h.GetByID)
	router.PATCH("/api/v1/organizations/id/:id", h.Update)
	router.DELETE("/api/v1/organizations/id/:id", h.Delete)
}

func invalidBody() error {
	return apperrors.New(apperrors.CodeBadRequest, "Invalid request body", http.StatusBadRequest)
}

func writeError(log *logger.Logger, w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}
