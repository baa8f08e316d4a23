package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ImportJobStatusRunning   = "running"
	ImportJobStatusSucceeded = "succeeded"
	ImportJobStatusFailed    = "failed"
)

// ImportJob is the bookkeeping record for one statement import. Clients poll
// it to observe progress while chunks are still uploading.
type ImportJob struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	FileName     string     `gorm:"type:varchar(255);not null" json:"file_name"`
	FileKind     string     `gorm:"type:varchar(20)" json:"file_kind"`
	Dialect      string     `gorm:"type:varchar(20)" json:"dialect,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null;default:'running'" json:"status"`
	RowsParsed   int        `gorm:"default:0" json:"rows_parsed"`
	RowsMapped   int        `gorm:"default:0" json:"rows_mapped"`
	RowsDropped  int        `gorm:"default:0" json:"rows_dropped"`
	RowsDuped    int        `gorm:"default:0" json:"rows_duplicated"`
	RowsInserted int        `gorm:"default:0" json:"rows_inserted"`
	Error        string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// BeforeCreate hook for ImportJob
func (j *ImportJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = ImportJobStatusRunning
	}
	now := time.Now()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = now
	}
	return nil
}

// BeforeUpdate hook for ImportJob
func (j *ImportJob) BeforeUpdate(tx *gorm.DB) error {
	j.UpdatedAt = time.Now()
	return nil
}

// Succeed marks the job as finished successfully.
func (j *ImportJob) Succeed() {
	j.Status = ImportJobStatusSucceeded
	now := time.Now()
	j.FinishedAt = &now
}

// Fail marks the job as failed with the given reason.
func (j *ImportJob) Fail(reason string) {
	j.Status = ImportJobStatusFailed
	j.Error = reason
	now := time.Now()
	j.FinishedAt = &now
}

// IsTerminal reports whether the job has reached a final state.
func (j *ImportJob) IsTerminal() bool {
	return j.Status == ImportJobStatusSucceeded || j.Status == ImportJobStatusFailed
}

// TableName returns the table name for ImportJob
func (j *ImportJob) TableName() string {
	return "import_jobs"
}
