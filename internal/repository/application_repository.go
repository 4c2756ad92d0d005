package repository

import (
	"github.com/talentbridge/assessment/internal/model"
	"gorm.io/gorm"
)

// AssessmentStateUpdate is the summary pushed back to the application record.
// Nil score/percentage fields are left untouched (start only flips status).
type AssessmentStateUpdate struct {
	Status     string
	AttemptID  uint
	Score      *int
	Percentage *float64
	Result     string
}

// ApplicationRepository is the narrow surface onto the external application
// store. The engine never touches application fields beyond these.
type ApplicationRepository interface {
	FindByIDAndCandidate(id, candidateID uint) (*model.Application, error)
	FindAvailableByCandidate(candidateID uint) ([]model.Application, error)
	UpdateAssessmentState(id uint, state AssessmentStateUpdate) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) FindByIDAndCandidate(id, candidateID uint) (*model.Application, error) {
	var application model.Application
	err := r.db.Where("candidate_id = ?", candidateID).First(&application, id).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *applicationRepository) FindAvailableByCandidate(candidateID uint) ([]model.Application, error) {
	var applications []model.Application
	err := r.db.
		Preload("Job").
		Where("candidate_id = ? AND assessment_status = ?", candidateID, model.ApplicationAssessmentAvailable).
		Find(&applications).Error
	return applications, err
}

func (r *applicationRepository) UpdateAssessmentState(id uint, state AssessmentStateUpdate) error {
	updates := map[string]interface{}{
		"assessment_status":     state.Status,
		"assessment_attempt_id": state.AttemptID,
	}
	if state.Score != nil {
		updates["assessment_score"] = *state.Score
	}
	if state.Percentage != nil {
		updates["assessment_percentage"] = *state.Percentage
	}
	if state.Result != "" {
		updates["assessment_result"] = state.Result
	}
	return r.db.Model(&model.Application{}).Where("id = ?", id).Updates(updates).Error
}
