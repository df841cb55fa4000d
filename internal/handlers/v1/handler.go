package v1

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/roboclean/ops-sync/internal/replicator"
	"github.com/roboclean/ops-sync/internal/service"
	"github.com/roboclean/ops-sync/internal/taxonomy"
)

// Handler exposes the engine's trigger surface to operators and schedulers.
type Handler struct {
	replicationSrv *service.ReplicationService
	taxonomySrv    *service.TaxonomyService
	identitySrv    *service.IdentityService
}

func NewHandler(replication *service.ReplicationService, taxonomy *service.TaxonomyService, identity *service.IdentityService) *Handler {
	return &Handler{
		replicationSrv: replication,
		taxonomySrv:    taxonomy,
		identitySrv:    identity,
	}
}

func (h *Handler) Routes(router chi.Router) {
	router.Post("/replicate/{stream}", h.ReplicateStream)
	router.Post("/orphans/{entity}/sweep", h.SweepOrphans)
	router.Post("/locations/{id}/expand", h.ExpandLocation)
	router.Get("/identity/{userID}", h.ReconcileIdentity)
	router.Post("/identity/{userID}/sync", h.SyncIdentity)
	router.Get("/watermarks", h.ListWatermarks)
}

// jobResponse is the uniform result shape of every trigger operation.
type jobResponse struct {
	Succeeded     int                      `json:"succeeded"`
	Failed        int                      `json:"failed"`
	Errors        []replicator.RecordError `json:"errors,omitempty"`
	LastTimestamp *time.Time               `json:"lastTimestamp,omitempty"`
	Skipped       int                      `json:"skipped,omitempty"`
	Deleted       []string                 `json:"deleted,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// maximum per-record errors returned to the caller; the full count is in
// the failed field either way
const maxReportedErrors = 20

func truncateErrors(errs []replicator.RecordError) []replicator.RecordError {
	if len(errs) > maxReportedErrors {
		return errs[:maxReportedErrors]
	}
	return errs
}

// (POST /api/v1/replicate/{stream})
func (h *Handler) ReplicateStream(w http.ResponseWriter, r *http.Request) {
	stream := chi.URLParam(r, "stream")

	result, err := h.replicationSrv.ReplicateStream(r.Context(), stream)
	if err != nil {
		renderError(w, r, err)
		return
	}

	ts := result.LastTimestamp
	render.JSON(w, r, jobResponse{
		Succeeded:     result.Synced,
		Failed:        result.Failed,
		Errors:        truncateErrors(result.Errors),
		LastTimestamp: &ts,
	})
}

// (POST /api/v1/orphans/{entity}/sweep)
func (h *Handler) SweepOrphans(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	result, err := h.replicationSrv.SweepOrphans(r.Context(), entity)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, jobResponse{
		Succeeded: len(result.Deleted),
		Failed:    len(result.Failed),
		Errors:    truncateErrors(result.Failed),
		Deleted:   result.Deleted,
	})
}

// (POST /api/v1/locations/{id}/expand)
func (h *Handler) ExpandLocation(w http.ResponseWriter, r *http.Request) {
	locationID := chi.URLParam(r, "id")

	result, err := h.taxonomySrv.ExpandLocation(r.Context(), locationID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, expandResponse(result))
}

// (GET /api/v1/identity/{userID})
func (h *Handler) ReconcileIdentity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	result, err := h.identitySrv.Reconcile(r.Context(), userID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

type syncIdentityRequest struct {
	Direction string `json:"direction"`
}

// (POST /api/v1/identity/{userID}/sync)
func (h *Handler) SyncIdentity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req syncIdentityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Message: "invalid request body"})
		return
	}

	result, err := h.identitySrv.Sync(r.Context(), userID, req.Direction)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// (GET /api/v1/watermarks)
func (h *Handler) ListWatermarks(w http.ResponseWriter, r *http.Request) {
	watermarks, err := h.replicationSrv.Watermarks(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, watermarks)
}

func expandResponse(result taxonomy.Result) jobResponse {
	errs := make([]replicator.RecordError, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, replicator.RecordError{ID: e.ID, Message: e.Message})
	}
	return jobResponse{
		Succeeded: len(result.Created),
		Failed:    len(result.Errors),
		Skipped:   result.Skipped,
		Errors:    truncateErrors(errs),
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	switch err.(type) {
	case *service.ErrResourceNotFound:
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Message: err.Error()})
	case *service.ErrInvalidRequest:
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Message: err.Error()})
	default:
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Message: "internal error"})
	}
}
