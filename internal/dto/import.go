package dto

import (
	"time"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
)

// ImportJobResponse represents the bookkeeping row for one import
type ImportJobResponse struct {
	ID           uuid.UUID  `json:"id"`
	FileName     string     `json:"fileName"`
	FileKind     string     `json:"fileKind"`
	Dialect      string     `json:"dialect,omitempty"`
	Status       string     `json:"status"`
	RowsParsed   int        `json:"rowsParsed"`
	RowsMapped   int        `json:"rowsMapped"`
	RowsDropped  int        `json:"rowsDropped"`
	RowsDuped    int        `json:"rowsDuplicated"`
	RowsInserted int        `json:"rowsInserted"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}

// ImportResultResponse summarizes one completed import
type ImportResultResponse struct {
	Job              ImportJobResponse `json:"job"`
	Dialect          string            `json:"dialect"`
	HistoryTruncated bool              `json:"historyTruncated,omitempty"`
}

// ListImportJobsResponse represents the response for listing import jobs
type ListImportJobsResponse struct {
	Jobs       []ImportJobResponse `json:"jobs"`
	Pagination PaginationInfo      `json:"pagination"`
}

// FromImportJob converts an import job row to its response shape
func FromImportJob(job *models.ImportJob) ImportJobResponse {
	return ImportJobResponse{
		ID:           job.ID,
		FileName:     job.FileName,
		FileKind:     job.FileKind,
		Dialect:      job.Dialect,
		Status:       job.Status,
		RowsParsed:   job.RowsParsed,
		RowsMapped:   job.RowsMapped,
		RowsDropped:  job.RowsDropped,
		RowsDuped:    job.RowsDuped,
		RowsInserted: job.RowsInserted,
		Error:        job.Error,
		CreatedAt:    job.CreatedAt,
		FinishedAt:   job.FinishedAt,
	}
}
