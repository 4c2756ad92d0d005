package dto

import "time"

// StartAttemptRequest opens or resumes an attempt for one application.
type StartAttemptRequest struct {
	AssessmentID  uint `json:"assessment_id" binding:"required"`
	JobID         uint `json:"job_id" binding:"required"`
	ApplicationID uint `json:"application_id" binding:"required"`
}

// SubmitAnswerRequest saves one answer. QuestionIndex is a pointer so index 0
// survives required-field validation.
type SubmitAnswerRequest struct {
	AttemptID        uint    `json:"attempt_id" binding:"required"`
	QuestionIndex    *int    `json:"question_index" binding:"required,min=0"`
	SelectedAnswer   *int    `json:"selected_answer"`
	TextAnswer       *string `json:"text_answer"`
	TimeSpentSeconds int     `json:"time_spent"`
}

// RecordViolationRequest logs one integrity event against a live attempt.
type RecordViolationRequest struct {
	AttemptID uint   `json:"attempt_id" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Details   string `json:"details"`
}

// ClientViolationDTO is a violation reported in bulk at submission time.
type ClientViolationDTO struct {
	Type      string    `json:"type" binding:"required"`
	Timestamp time.Time `json:"timestamp" binding:"required"`
	Details   string    `json:"details"`
}

// SubmitAttemptRequest finalizes an attempt, optionally merging violations
// batched on the client.
type SubmitAttemptRequest struct {
	Violations []ClientViolationDTO `json:"violations" binding:"omitempty,dive"`
}
