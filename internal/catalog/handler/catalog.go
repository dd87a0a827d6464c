package handler

import (
	"net/http"

	"slotbook/internal/catalog/service"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log,
	}
}

func (h *CatalogHandler) ServicesForWorker(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	services, err := h.service.ServicesForWorker(r.Context(), ps.ByName("worker_id"))
	if err != nil {
		h.writeError(w, "ServicesForWorker", err)
		return
	}

	if err := httputil.WriteSuccess(w, services); err != nil {
		h.log.Error("failed to write success response", "handler", "ServicesForWorker", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) WorkersForService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var positionID *string
	if p := r.URL.Query().Get("position_id"); p != "" {
		positionID = &p
	}

	workers, err := h.service.WorkersForService(r.Context(), ps.ByName("branch_id"), ps.ByName("service_id"), positionID)
	if err != nil {
		h.writeError(w, "WorkersForService", err)
		return
	}

	if err := httputil.WriteSuccess(w, workers); err != nil {
		h.log.Error("failed to write success response", "handler", "WorkersForService", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) WorkersByBranch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	workers, err := h.service.WorkersByBranch(r.Context(), ps.ByName("branch_id"))
	if err != nil {
		h.writeError(w, "WorkersByBranch", err)
		return
	}

	if err := httputil.WriteSuccess(w, workers); err != nil {
		h.log.Error("failed to write success response", "handler", "WorkersByBranch", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) ServicesByPosition(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	groups, err := h.service.ServicesByPosition(r.Context(), ps.ByName("branch_id"))
	if err != nil {
		h.writeError(w, "ServicesByPosition", err)
		return
	}

	if err := httputil.WriteSuccess(w, groups); err != nil {
		h.log.Error("failed to write success response", "handler", "ServicesByPosition", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CatalogHandler) DeleteWorker(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteWorker(r.Context(), ps.ByName("worker_id")); err != nil {
		h.writeError(w, "DeleteWorker", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/workers/:worker_id/services", h.ServicesForWorker)
	router.DELETE("/api/v1/workers/:worker_id", h.DeleteWorker)
	router.GET("/api/v1/branches/:branch_id/services/:service_id/workers", h.WorkersForService)
	router.GET("/api/v1/branches/:branch_id/workers", h.WorkersByBranch)
	router.GET("/api/v1/branches/:branch_id/services-by-position", h.ServicesByPosition)
}
