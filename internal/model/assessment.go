package model

import (
	"time"

	"gorm.io/gorm"
)

// Assessment is the employer-owned question catalog a candidate attempts
// against. The question set stays editable by its owner even while attempts
// are open; totals are always recomputed from the current set.
type Assessment struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	EmployerID        uint           `json:"employer_id" gorm:"not null;index"`
	SerialNumber      int            `json:"serial_number" gorm:"not null"`
	Title             string         `json:"title" gorm:"not null"`
	Type              string         `json:"type" gorm:"default:'Aptitude Test'"`
	Designation       string         `json:"designation,omitempty"`
	CompanyName       string         `json:"company_name,omitempty"`
	Description       string         `json:"description,omitempty" gorm:"type:text"`
	Instructions      string         `json:"instructions,omitempty" gorm:"type:text"`
	TimerMinutes      int            `json:"timer_minutes" gorm:"not null;default:30"`
	PassingPercentage int            `json:"passing_percentage" gorm:"not null;default:60"`
	TotalQuestions    int            `json:"total_questions"`
	Status            string         `json:"status" gorm:"default:'published'"`
	Questions         []Question     `json:"questions,omitempty" gorm:"foreignKey:AssessmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TotalMarks sums marks over the current question set. Questions carrying
// zero marks count as one, matching how attempts are scored.
func (a *Assessment) TotalMarks() int {
	total := 0
	for _, q := range a.Questions {
		total += q.MarksOrDefault()
	}
	return total
}
