package model

import (
	"time"

	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionTypeMCQ        QuestionType = "mcq"
	QuestionTypeVisualMCQ  QuestionType = "visual-mcq"
	QuestionTypeSubjective QuestionType = "subjective"
	QuestionTypeUpload     QuestionType = "upload"
	QuestionTypeImage      QuestionType = "image"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMCQ, QuestionTypeVisualMCQ, QuestionTypeSubjective, QuestionTypeUpload, QuestionTypeImage:
		return true
	}
	return false
}

// IsChoice reports whether the question is answered by selecting an option index.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeMCQ || t == QuestionTypeVisualMCQ
}

// AcceptsFile reports whether the question is answered with an uploaded file.
func (t QuestionType) AcceptsFile() bool {
	return t == QuestionTypeUpload || t == QuestionTypeImage
}

type Question struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	AssessmentID uint           `json:"assessment_id" gorm:"not null;index"`
	Position     int            `json:"position" gorm:"not null"`
	Text         string         `json:"text" gorm:"type:text;not null"`
	Type         QuestionType   `json:"type" gorm:"not null;default:'mcq'"`
	Options      []string       `json:"options" gorm:"serializer:json"`
	OptionImages []string       `json:"option_images,omitempty" gorm:"serializer:json"`
	CorrectAnswer *int          `json:"correct_answer,omitempty"`
	Marks        int            `json:"marks" gorm:"not null;default:1"`
	Explanation  string         `json:"explanation,omitempty" gorm:"type:text"`
	ImageURL     string         `json:"image_url,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (q *Question) MarksOrDefault() int {
	if q.Marks < 1 {
		return 1
	}
	return q.Marks
}
