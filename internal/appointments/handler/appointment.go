package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"sisagenda/internal/appointments/repository"
	"sisagenda/internal/appointments/service"
	apperrors "sisagenda/pkg/errors"
	httputil "sisagenda/pkg/http"
	"sisagenda/pkg/logger"
	"sisagenda/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var appointment model.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		h.writeError(w, "Create", apperrors.New(apperrors.CodeBadRequest, "Invalid request body", http.StatusBadRequest))
		return
	}

	if err := h.service.Create(r.Context(), &appointment); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, appointment); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appointment, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	from, err := httputil.OptionalTime(r, "from")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	to, err := httputil.OptionalTime(r, "to")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	filter := repository.SearchFilter{
		OrganizationID: query.Get("organization_id"),
		DeliveryTypeID: query.Get("delivery_type_id"),
		Status:         model.AppointmentStatus(query.Get("status")),
		From:           from,
		To:             to,
	}

	appointments, total, err := h.service.Search(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, appointments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *AppointmentHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.respond(w, "Confirm", func() (*model.Appointment, error) {
		return h.service.Confirm(r.Context(), ps.ByName("id"))
	})
}

func (h *AppointmentHandler) RequestReschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	transition, ok := h.decodeTransition(w, r, "RequestReschedule")
	if !ok {
		return
	}
	h.respond(w, "RequestReschedule", func() (*model.Appointment, error) {
		return h.service.RequestReschedule(r.Context(), ps.ByName("id"), transition)
	})
}

func (h *AppointmentHandler) ConfirmReschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.respond(w, "ConfirmReschedule", func() (*model.Appointment, error) {
		return h.service.ConfirmReschedule(r.Context(), ps.ByName("id"))
	})
}

func (h *AppointmentHandler) RejectReschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.respond(w, "RejectReschedule", func() (*model.Appointment, error) {
		return h.service.RejectReschedule(r.Context(), ps.ByName("id"))
	})
}

func (h *AppointmentHandler) RequestCancellation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	transition, ok := h.decodeTransition(w, r, "RequestCancellation")
	if !ok {
		return
	}
	h.respond(w, "RequestCancellation", func() (*model.Appointment, error) {
		return h.service.RequestCancellation(r.Context(), ps.ByName("id"), transition)
	})
}

func (h *AppointmentHandler) RejectCancellation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.respond(w, "RejectCancellation", func() (*model.Appointment, error) {
		return h.service.RejectCancellation(r.Context(), ps.ByName("id"))
	})
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	transition, ok := h.decodeTransition(w, r, "Cancel")
	if !ok {
		return
	}
	h.respond(w, "Cancel", func() (*model.Appointment, error) {
		return h.service.Cancel(r.Context(), ps.ByName("id"), transition)
	})
}

func (h *AppointmentHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.respond(w, "Complete", func() (*model.Appointment, error) {
		return h.service.Complete(r.Context(), ps.ByName("id"))
	})
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.GET("/api/v1/appointments/search", h.Search)

	router.POST("/api/v1/appointments/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/appointments/id/:id/reschedule", h.RequestReschedule)
	router.POST("/api/v1/appointments/id/:id/reschedule/confirm", h.ConfirmReschedule)
	router.POST("/api/v1/appointments/id/:id/reschedule/reject", h.RejectReschedule)
	router.POST("/api/v1/appointments/id/:id/cancellation", h.RequestCancellation)
	router.POST("/api/v1/appointments/id/:id/cancellation/reject", h.RejectCancellation)
	router.POST("/api/v1/appointments/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/appointments/id/:id/complete", h.Complete)
}

// decodeTransition reads an optional transition body. An empty body is a
// transition without payload.
func (h *AppointmentHandler) decodeTransition(w http.ResponseWriter, r *http.Request, name string) (*model.AppointmentTransition, bool) {
	var transition model.AppointmentTransition
	if err := json.NewDecoder(r.Body).Decode(&transition); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, name, apperrors.New(apperrors.CodeBadRequest, "Invalid request body", http.StatusBadRequest))
		return nil, false
	}
	return &transition, true
}

func (h *AppointmentHandler) respond(w http.ResponseWriter, name string, fn func() (*model.Appointment, error)) {
	appointment, err := fn()
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteSuccess(w, appointment); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}
