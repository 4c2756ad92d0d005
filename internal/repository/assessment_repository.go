package repository

import (
	"github.com/talentbridge/assessment/internal/model"
	"gorm.io/gorm"
)

type AssessmentRepository interface {
	Create(assessment *model.Assessment) error
	FindByID(id uint) (*model.Assessment, error)
	FindByIDAndEmployer(id, employerID uint) (*model.Assessment, error)
	FindAllByEmployer(employerID uint) ([]model.Assessment, error)
	NextSerialNumber(employerID uint) (int, error)
	Replace(assessment *model.Assessment, questions []model.Question) error
	Delete(id, employerID uint) error
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(assessment *model.Assessment) error {
	// Create with associations persists the question set in one go.
	return r.db.Create(assessment).Error
}

func (r *assessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.position ASC")
	}).First(&assessment, id).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindByIDAndEmployer(id, employerID uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.position ASC")
	}).Where("employer_id = ?", employerID).First(&assessment, id).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindAllByEmployer(employerID uint) ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.db.Where("employer_id = ?", employerID).Order("serial_number ASC").Find(&assessments).Error
	return assessments, err
}

func (r *assessmentRepository) NextSerialNumber(employerID uint) (int, error) {
	var max int
	err := r.db.Model(&model.Assessment{}).
		Where("employer_id = ?", employerID).
		Select("COALESCE(MAX(serial_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Replace updates assessment metadata and swaps the question set atomically.
func (r *assessmentRepository) Replace(assessment *model.Assessment, questions []model.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assessment_id = ?", assessment.ID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		assessment.Questions = questions
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(assessment).Error
	})
}

func (r *assessmentRepository) Delete(id, employerID uint) error {
	result := r.db.Where("employer_id = ?", employerID).Delete(&model.Assessment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
