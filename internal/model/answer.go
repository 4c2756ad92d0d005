package model

import (
	"strings"
	"time"
)

// UploadedFile holds metadata plus the base64-encoded payload of a file
// answer. Stored inline with the answer row as a JSON column.
type UploadedFile struct {
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Data         string    `json:"data"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// Answer is one response inside an attempt, keyed by question index.
// Re-submitting the same index replaces the stored answer (last write wins).
type Answer struct {
	ID               uint          `gorm:"primarykey" json:"id"`
	AttemptID        uint          `json:"attempt_id" gorm:"not null;uniqueIndex:idx_answer_question"`
	QuestionIndex    int           `json:"question_index" gorm:"not null;uniqueIndex:idx_answer_question"`
	SelectedAnswer   *int          `json:"selected_answer,omitempty"`
	TextAnswer       *string       `json:"text_answer,omitempty" gorm:"type:text"`
	UploadedFile     *UploadedFile `json:"uploaded_file,omitempty" gorm:"serializer:json;type:text"`
	TimeSpentSeconds int           `json:"time_spent_seconds"`
	AnsweredAt       time.Time     `json:"answered_at"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// HasText reports whether the answer carries a non-blank text response.
func (a *Answer) HasText() bool {
	return a.TextAnswer != nil && strings.TrimSpace(*a.TextAnswer) != ""
}
