package model

import (
	"time"
)

const (
	ApplicationAssessmentAvailable   = "available"
	ApplicationAssessmentInProgress  = "in_progress"
	ApplicationAssessmentCompleted   = "completed"
)

// Application is the narrow slice of the external application record this
// engine reads and writes: ownership, the job link, and the assessment
// summary pushed back on finalization. Everything else about applications
// lives outside this service.
type Application struct {
	ID          uint `gorm:"primarykey" json:"id"`
	CandidateID uint `json:"candidate_id" gorm:"not null;index"`
	JobID       uint `json:"job_id" gorm:"not null;index"`
	Job         Job  `json:"job,omitempty" gorm:"foreignKey:JobID"`

	AssessmentStatus     string   `json:"assessment_status" gorm:"default:'available'"`
	AssessmentAttemptID  *uint    `json:"assessment_attempt_id,omitempty"`
	AssessmentScore      *int     `json:"assessment_score,omitempty"`
	AssessmentPercentage *float64 `json:"assessment_percentage,omitempty"`
	AssessmentResult     string   `json:"assessment_result,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Job carries just enough of the external job record to resolve which
// assessment an application points at.
type Job struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Title        string    `json:"title"`
	AssessmentID *uint     `json:"assessment_id,omitempty" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
