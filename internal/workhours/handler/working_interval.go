package handler

import (
	"net/http"

	"slotbook/internal/workhours/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WorkingIntervalHandler struct {
	service service.WorkingIntervalService
	log     *logger.Logger
}

func NewWorkingIntervalHandler(service service.WorkingIntervalService, log *logger.Logger) *WorkingIntervalHandler {
	return &WorkingIntervalHandler{
		service: service,
		log:     log,
	}
}

func (h *WorkingIntervalHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.WorkingIntervalRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	interval, err := h.service.Create(r.Context(), ps.ByName("worker_id"), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, interval); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *WorkingIntervalHandler) CreateBatch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.BatchWorkingIntervalsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateBatch", err)
		return
	}

	result, err := h.service.CreateBatch(r.Context(), ps.ByName("worker_id"), &req)
	if err != nil {
		h.writeError(w, "CreateBatch", err)
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateBatch", "operation", "WriteCreated", "error", err)
	}
}

func (h *WorkingIntervalHandler) ListByWorker(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	var startDate, endDate *string
	if s := query.Get("start_date"); s != "" {
		startDate = &s
	}
	if e := query.Get("end_date"); e != "" {
		endDate = &e
	}

	intervals, err := h.service.ListByWorker(r.Context(), ps.ByName("worker_id"), startDate, endDate)
	if err != nil {
		h.writeError(w, "ListByWorker", err)
		return
	}

	if err := httputil.WriteSuccess(w, intervals); err != nil {
		h.log.Error("failed to write success response", "handler", "ListByWorker", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkingIntervalHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var upd model.WorkingIntervalUpdate
	if err := httputil.DecodeJSON(r, &upd); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	interval, err := h.service.Update(r.Context(), ps.ByName("id"), &upd)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, interval); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WorkingIntervalHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *WorkingIntervalHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *WorkingIntervalHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/workers/:worker_id/work-hours", h.Create)
	router.GET("/api/v1/workers/:worker_id/work-hours", h.ListByWorker)
	router.POST("/api/v1/workers/:worker_id/batch-work-hours", h.CreateBatch)
	router.PUT("/api/v1/work-hours/:id", h.Update)
	router.DELETE("/api/v1/work-hours/:id", h.Delete)
}
