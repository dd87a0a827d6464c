package handler

import (
	"net/http"

	"slotbook/internal/appointments/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

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

type createdResponse struct {
	ID string `json:"id"`
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateAppointmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	id, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, createdResponse{ID: id}); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	details, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, details); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) ListByWorker(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByWorker", err)
		return
	}

	appointments, total, err := h.service.ListByWorker(r.Context(), ps.ByName("worker_id"), limit, offset)
	if err != nil {
		h.writeError(w, "ListByWorker", err)
		return
	}

	if err := httputil.WritePaginated(w, appointments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByWorker", "operation", "WritePaginated", "error", err)
	}
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Cancel(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var cmd model.RescheduleCommand
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}
	cmd.ID = ps.ByName("id")

	if err := h.service.Reschedule(r.Context(), cmd); err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AppointmentHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.StatusUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SetStatus", err)
		return
	}

	if err := h.service.SetStatus(r.Context(), ps.ByName("id"), req.Status); err != nil {
		h.writeError(w, "SetStatus", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments/:id", h.GetByID)
	router.PATCH("/api/v1/appointments/:id/cancel", h.Cancel)
	router.PATCH("/api/v1/appointments/:id/reschedule", h.Reschedule)
	router.PATCH("/api/v1/appointments/:id/status", h.SetStatus)
	router.GET("/api/v1/workers/:worker_id/appointments", h.ListByWorker)
}
