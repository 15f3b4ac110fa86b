package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/facegate/internal/syncer"
)

// SyncHandler runs staging-to-production reconciliation as async jobs.
type SyncHandler struct {
	jobs       *JobManager
	reconciler *syncer.Reconciler
}

// NewSyncHandler creates the sync endpoint handler.
func NewSyncHandler(jobs *JobManager, reconciler *syncer.Reconciler) *SyncHandler {
	return &SyncHandler{jobs: jobs, reconciler: reconciler}
}

// Start launches a reconciliation job. An empty domain reconciles every
// staging domain. Reconciliation must not overlap itself, so operators
// are expected to poll the job before starting another.
func (h *SyncHandler) Start(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Domain string `json:"domain"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}

	job := h.jobs.Create(body.Domain)
	go h.run(job)

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(JobStatusPending),
	})
}

func (h *SyncHandler) run(job *SyncJob) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("sync job %s panic: %v", job.ID, p)
			job.complete(nil, fmt.Errorf("sync worker panic: %v", p))
		}
	}()

	job.start()
	ctx := context.Background()

	if job.Domain != "" {
		report, err := h.reconciler.Sync(ctx, job.Domain)
		job.complete([]syncer.Report{report}, err)
		return
	}
	reports, err := h.reconciler.SyncAll(ctx)
	job.complete(reports, err)
}

// Status reports the state of one reconciliation job.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	job, ok := h.jobs.Get(chi.URLParam(r, "jobId"))
	if !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job.Snapshot())
}
