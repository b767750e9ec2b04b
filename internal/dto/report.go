package dto

import "github.com/noah-isme/pillar-academy-api/internal/models"

// ReportRequest captures POST /reports/exams payload.
type ReportRequest struct {
	LearnerID   string              `json:"learnerId,omitempty"`
	PillarIndex int                 `json:"pillarIndex,omitempty"`
	Status      models.ExamStatus   `json:"status,omitempty"`
	Format      models.ReportFormat `json:"format"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ReportStatus `json:"status"`
}

// ReportStatusResponse exposes job metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
