package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/facegate/internal/syncer"
)

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// SyncJob represents one async reconciliation run.
type SyncJob struct {
	ID          string          `json:"id"`
	Domain      string          `json:"domain,omitempty"` // empty means all domains
	Status      JobStatus       `json:"status"`
	Error       string          `json:"error,omitempty"`
	Reports     []syncer.Report `json:"reports,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`

	mu sync.Mutex
}

func (j *SyncJob) start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = JobStatusRunning
	j.StartedAt = time.Now()
}

func (j *SyncJob) complete(reports []syncer.Report, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := time.Now()
	j.CompletedAt = &now
	j.Reports = reports
	if err != nil {
		j.Status = JobStatusFailed
		j.Error = err.Error()
		return
	}
	j.Status = JobStatusCompleted
}

// Snapshot returns a copy safe to serialize while the job is running.
func (j *SyncJob) Snapshot() SyncJob {
	j.mu.Lock()
	defer j.mu.Unlock()
	return SyncJob{
		ID:          j.ID,
		Domain:      j.Domain,
		Status:      j.Status,
		Error:       j.Error,
		Reports:     j.Reports,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}

// JobManager tracks async jobs by ID.
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*SyncJob
}

// NewJobManager creates an empty job manager.
func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*SyncJob)}
}

// Create registers a new pending job.
func (m *JobManager) Create(domain string) *SyncJob {
	job := &SyncJob{
		ID:     uuid.NewString(),
		Domain: domain,
		Status: JobStatusPending,
	}
	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return job
}

// Get looks up a job by ID.
func (m *JobManager) Get(id string) (*SyncJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	return job, ok
}
