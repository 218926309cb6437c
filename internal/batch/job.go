package batch

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/eleven-am/transcribe-relay/internal/shared"
)

// Job is the bookkeeping record of one batch transcription. Transcripts are
// returned to the caller and never stored.
type Job struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	OwnerID         string     `gorm:"index" json:"owner_id,omitempty"`
	Provider        string     `gorm:"not null;index" json:"provider"`
	ExternalID      string     `gorm:"index" json:"external_id,omitempty"`
	Status          Status     `gorm:"not null" json:"status"`
	PollAttempts    int        `json:"poll_attempts"`
	AudioBytes      int64      `json:"audio_bytes"`
	AudioFormat     string     `json:"audio_format,omitempty"`
	AudioDurationMs int64      `json:"audio_duration_ms,omitempty"`
	Error           string     `json:"error,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Job) TableName() string {
	return "batch_jobs"
}

type JobStore struct {
	db *gorm.DB
}

func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) Migrate() error {
	return s.db.AutoMigrate(&Job{})
}

func (s *JobStore) Create(ctx context.Context, job *Job) error {
	if job.ID == "" {
		job.ID = shared.NewID("job_")
	}
	if job.Status == "" {
		job.Status = StatusUploading
	}
	return s.db.WithContext(ctx).Create(job).Error
}

// Transition moves a job to status. Terminal jobs are never reopened.
func (s *JobStore) Transition(ctx context.Context, id string, status Status, externalID string, attempts int, errMsg string) error {
	updates := map[string]any{
		"status":        status,
		"poll_attempts": attempts,
	}
	if externalID != "" {
		updates["external_id"] = externalID
	}
	if errMsg != "" {
		updates["error"] = errMsg
	}
	if status.Terminal() {
		updates["completed_at"] = time.Now().UTC()
	}

	return s.db.WithContext(ctx).Model(&Job{}).
		Where("id = ? AND status NOT IN ?", id, []Status{StatusCompleted, StatusError, StatusTimedOut}).
		Updates(updates).Error
}

func (s *JobStore) GetByID(ctx context.Context, id string) (*Job, error) {
	var job Job
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &job, err
}

func (s *JobStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var jobs []*Job
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
