package handler

import (
	"net/http"
	"strconv"

	"slotbook/internal/availability/service"
	"slotbook/pkg/calendar"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service     service.AvailabilityService
	defaultDays int
	log         *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, cfg *config.Config) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:     service,
		defaultDays: cfg.AvailabilityWindowDays,
		log:         cfg.Log,
	}
}

// AvailableSlots serves the free slots of a worker for a service. A
// start_date earlier than today is moved to today.
func (h *AvailabilityHandler) AvailableSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()

	today := h.service.Today()
	start := today
	if s := query.Get("start_date"); s != "" {
		parsed, err := calendar.ParseDate(s)
		if err != nil {
			h.writeError(w, "AvailableSlots", apperrors.Validation("Invalid start_date", map[string]any{"start_date": s}))
			return
		}
		if parsed.After(today) {
			start = parsed
		}
	}

	days := h.defaultDays
	if d := query.Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil {
			h.writeError(w, "AvailableSlots", apperrors.InvalidInput("invalid days parameter: "+d))
			return
		}
		days = parsed
	}
	if err := service.ValidateWindow(days); err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}

	slots, err := h.service.Resolve(r.Context(), ps.ByName("worker_id"), ps.ByName("service_id"), start, days)
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "AvailableSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/workers/:worker_id/services/:service_id/available-slots", h.AvailableSlots)
}
