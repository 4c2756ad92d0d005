package repository

import (
	"github.com/talentbridge/assessment/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository interface {
	Create(attempt *model.Attempt) error
	Update(attempt *model.Attempt) error
	FindByKey(assessmentID, candidateID, applicationID uint) (*model.Attempt, error)
	FindByIDAndCandidate(id, candidateID uint) (*model.Attempt, error)
	FindByApplicationAndCandidate(applicationID, candidateID uint) (*model.Attempt, error)
	FindFinishedByAssessment(assessmentID uint) ([]model.Attempt, error)
	FindByIDWithDetails(id uint) (*model.Attempt, error)
	// Mutate serializes a read-modify-write on one attempt. The row is locked
	// for the duration of fn; concurrent calls for the same attempt queue up
	// instead of overwriting each other's collections.
	Mutate(id, candidateID uint, fn func(attempt *model.Attempt) error) (*model.Attempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) Update(attempt *model.Attempt) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(attempt).Error
}

func (r *attemptRepository) FindByKey(assessmentID, candidateID, applicationID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Answers").
		Preload("Violations").
		Preload("Captures").
		Where("assessment_id = ? AND candidate_id = ? AND application_id = ?", assessmentID, candidateID, applicationID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDAndCandidate(id, candidateID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Answers").
		Preload("Violations").
		Where("candidate_id = ?", candidateID).
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByApplicationAndCandidate(applicationID, candidateID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Answers").
		Preload("Violations").
		Where("application_id = ? AND candidate_id = ?", applicationID, candidateID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindFinishedByAssessment(assessmentID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.
		Preload("Violations").
		Where("assessment_id = ? AND status IN ?", assessmentID, []string{model.AttemptStatusCompleted, model.AttemptStatusExpired}).
		Order("end_time DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FindByIDWithDetails(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answers.question_index ASC")
		}).
		Preload("Violations").
		Preload("Captures").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) Mutate(id, candidateID uint, fn func(attempt *model.Attempt) error) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("candidate_id = ?", candidateID).
			First(&attempt, id).Error; err != nil {
			return err
		}
		// Associations load after the row lock so fn sees a consistent aggregate.
		if err := tx.Preload("Answers").Preload("Violations").Preload("Captures").
			First(&attempt, attempt.ID).Error; err != nil {
			return err
		}
		if err := fn(&attempt); err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&attempt).Error
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}
