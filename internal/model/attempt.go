package model

import (
	"time"
)

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusCompleted  = "completed"
	AttemptStatusExpired    = "expired"
)

// MaxCaptures is the hard ceiling on proctoring snapshots per attempt.
const MaxCaptures = 5

// Attempt is one candidate's run through an assessment for a specific job
// application. Created at start, finalized exactly once by submission; there
// is no deletion path. The composite unique index backs the one-live-attempt
// rule so concurrent starts cannot create duplicates.
type Attempt struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	AssessmentID  uint   `json:"assessment_id" gorm:"not null;uniqueIndex:idx_attempt_key"`
	CandidateID   uint   `json:"candidate_id" gorm:"not null;uniqueIndex:idx_attempt_key"`
	ApplicationID uint   `json:"application_id" gorm:"not null;uniqueIndex:idx_attempt_key"`
	JobID         uint   `json:"job_id" gorm:"not null;index"`
	Status        string `json:"status" gorm:"not null;default:'in_progress'"`

	StartTime            time.Time `json:"start_time"`
	TimeRemainingSeconds int       `json:"time_remaining_seconds"`
	CurrentQuestion      int       `json:"current_question"`
	TermsAccepted        bool      `json:"terms_accepted"`
	TermsAcceptedAt      *time.Time `json:"terms_accepted_at,omitempty"`

	TotalMarks int        `json:"total_marks"`
	Score      *int       `json:"score,omitempty"`
	Percentage *float64   `json:"percentage,omitempty"`
	Result     string     `json:"result,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`

	Answers    []Answer    `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Violations []Violation `json:"violations,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Captures   []Capture   `json:"captures,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the attempt has reached a final state.
func (a *Attempt) Terminal() bool {
	return a.Status == AttemptStatusCompleted || a.Status == AttemptStatusExpired
}

// AnswerFor returns the stored answer for a question index, if any.
func (a *Attempt) AnswerFor(questionIndex int) *Answer {
	for i := range a.Answers {
		if a.Answers[i].QuestionIndex == questionIndex {
			return &a.Answers[i]
		}
	}
	return nil
}

// Violation is a client-reported integrity event, permanently logged.
type Violation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AttemptID uint      `json:"attempt_id" gorm:"not null;index"`
	Type      string    `json:"type" gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Capture is a periodic proctoring snapshot stored as a base64 data URI.
type Capture struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AttemptID uint      `json:"attempt_id" gorm:"not null;index"`
	Data      string    `json:"data" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}
