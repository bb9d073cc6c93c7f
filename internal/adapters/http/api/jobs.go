package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/wolfwise/internal/app"
	"github.com/okian/wolfwise/internal/etl"
)

// JobDependencies defines what the jobs handler needs.
type JobDependencies interface {
	RunJob(ctx context.Context, name string) (service.EnqueueResult, error)
}

// JobsHandler handles collector requests.
type JobsHandler struct {
	deps JobDependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobDependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

// HandleRunJob handles POST /jobs/{name}.
func (h *JobsHandler) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.run_job"
	res, err := h.deps.RunJob(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, etl.ErrUnknownJob) {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
		return
	}
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeEnqueue(w, op, res)
}
