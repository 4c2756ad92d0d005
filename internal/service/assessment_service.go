package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/talentbridge/assessment/internal/apperr"
	"github.com/talentbridge/assessment/internal/dto"
	"github.com/talentbridge/assessment/internal/model"
	"github.com/talentbridge/assessment/internal/repository"
)

// AssessmentService owns the employer-side catalog and the candidate-facing
// views of it.
type AssessmentService interface {
	CreateAssessment(employerID uint, req dto.AssessmentCreateDTO) (*dto.AssessmentResponseDTO, error)
	UpdateAssessment(employerID, assessmentID uint, req dto.AssessmentCreateDTO) (*dto.AssessmentResponseDTO, error)
	GetAssessments(employerID uint) ([]dto.AssessmentResponseDTO, error)
	GetAssessmentDetails(employerID, assessmentID uint) (*dto.AssessmentResponseDTO, error)
	DeleteAssessment(employerID, assessmentID uint) error
	GetAssessmentForCandidate(assessmentID uint) (*dto.CandidateAssessmentDTO, error)
	GetAvailableAssessments(candidateID uint) ([]dto.AvailableAssessmentDTO, error)
}

type assessmentService struct {
	assessmentRepo  repository.AssessmentRepository
	applicationRepo repository.ApplicationRepository
}

func NewAssessmentService(
	assessmentRepo repository.AssessmentRepository,
	applicationRepo repository.ApplicationRepository,
) AssessmentService {
	return &assessmentService{
		assessmentRepo:  assessmentRepo,
		applicationRepo: applicationRepo,
	}
}

// Question text arrives from a rich-text editor; markup is ignored when
// checking that a question actually says something.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// buildQuestions validates and converts the incoming question set. Positions
// are assigned from submission order; non-choice questions carry no options
// and no correct answer regardless of what the client sent.
func buildQuestions(reqQuestions []dto.QuestionCreateDTO) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(reqQuestions))
	for i, q := range reqQuestions {
		text := strings.TrimSpace(htmlTagPattern.ReplaceAllString(q.Text, ""))
		if text == "" {
			return nil, apperr.InvalidInput("Question %d text is required", i+1)
		}

		qType := model.QuestionType(q.Type)
		if q.Type == "" {
			qType = model.QuestionTypeMCQ
		}
		if !qType.Valid() {
			return nil, apperr.InvalidInput("Question %d has an unknown type %q", i+1, q.Type)
		}

		question := model.Question{
			Position:    i,
			Text:        strings.TrimSpace(q.Text),
			Type:        qType,
			Marks:       q.Marks,
			Explanation: strings.TrimSpace(q.Explanation),
			ImageURL:    q.ImageURL,
		}
		if question.Marks < 1 {
			return nil, apperr.InvalidInput("Question %d must have at least 1 mark", i+1)
		}

		if qType.IsChoice() {
			if len(q.Options) < 2 {
				return nil, apperr.InvalidInput("Question %d must have at least 2 options", i+1)
			}
			options := make([]string, len(q.Options))
			for j, opt := range q.Options {
				trimmed := strings.TrimSpace(opt)
				if trimmed == "" {
					return nil, apperr.InvalidInput("Question %d, Option %s is required", i+1, optionLabel(j))
				}
				options[j] = trimmed
			}
			if q.CorrectAnswer == nil || *q.CorrectAnswer < 0 || *q.CorrectAnswer >= len(options) {
				return nil, apperr.InvalidInput("Question %d must have a valid correct answer selected", i+1)
			}
			question.Options = options
			question.CorrectAnswer = q.CorrectAnswer
			if qType == model.QuestionTypeVisualMCQ {
				question.OptionImages = q.OptionImages
			}
		} else {
			question.Options = []string{}
		}

		questions = append(questions, question)
	}
	return questions, nil
}

// optionLabel renders option j the way candidates see it: A, B, C...
func optionLabel(j int) string {
	return fmt.Sprintf("%c", 'A'+j)
}

func (s *assessmentService) CreateAssessment(employerID uint, req dto.AssessmentCreateDTO) (*dto.AssessmentResponseDTO, error) {
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	serial, err := s.assessmentRepo.NextSerialNumber(employerID)
	if err != nil {
		return nil, apperr.Internal("failed to allocate serial number", err)
	}

	assessment := model.Assessment{
		EmployerID:        employerID,
		SerialNumber:      serial,
		Title:             strings.TrimSpace(req.Title),
		Type:              valueOrDefault(req.Type, "Aptitude Test"),
		Designation:       strings.TrimSpace(req.Designation),
		CompanyName:       strings.TrimSpace(req.CompanyName),
		Description:       strings.TrimSpace(req.Description),
		Instructions:      strings.TrimSpace(req.Instructions),
		TimerMinutes:      intOrDefault(req.TimerMinutes, 30),
		PassingPercentage: intOrDefault(req.PassingPercentage, 60),
		TotalQuestions:    len(questions),
		Status:            "published",
		Questions:         questions,
	}

	if err := s.assessmentRepo.Create(&assessment); err != nil {
		log.Error().Err(err).Uint("employerID", employerID).Msg("Failed to create assessment")
		return nil, apperr.Internal("failed to create assessment", err)
	}

	log.Info().Uint("assessmentID", assessment.ID).Uint("employerID", employerID).Int("questions", len(questions)).Msg("Assessment created")
	resp := assessmentResponse(&assessment)
	return &resp, nil
}

func (s *assessmentService) UpdateAssessment(employerID, assessmentID uint, req dto.AssessmentCreateDTO) (*dto.AssessmentResponseDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDAndEmployer(assessmentID, employerID)
	if err != nil {
		return nil, asAppError(err, "Assessment not found")
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	assessment.Title = strings.TrimSpace(req.Title)
	assessment.Type = valueOrDefault(req.Type, "Aptitude Test")
	assessment.Designation = strings.TrimSpace(req.Designation)
	assessment.CompanyName = strings.TrimSpace(req.CompanyName)
	assessment.Description = strings.TrimSpace(req.Description)
	assessment.Instructions = strings.TrimSpace(req.Instructions)
	assessment.TimerMinutes = intOrDefault(req.TimerMinutes, 30)
	assessment.PassingPercentage = intOrDefault(req.PassingPercentage, 60)
	assessment.TotalQuestions = len(questions)

	// Live attempts keep running against the edited set; scoring always
	// re-reads the definition, so no attempt-side fixup happens here.
	if err := s.assessmentRepo.Replace(assessment, questions); err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Failed to update assessment")
		return nil, apperr.Internal("failed to update assessment", err)
	}

	resp := assessmentResponse(assessment)
	return &resp, nil
}

func (s *assessmentService) GetAssessments(employerID uint) ([]dto.AssessmentResponseDTO, error) {
	assessments, err := s.assessmentRepo.FindAllByEmployer(employerID)
	if err != nil {
		return nil, apperr.Internal("failed to fetch assessments", err)
	}
	out := make([]dto.AssessmentResponseDTO, 0, len(assessments))
	for i := range assessments {
		out = append(out, assessmentResponse(&assessments[i]))
	}
	return out, nil
}

func (s *assessmentService) GetAssessmentDetails(employerID, assessmentID uint) (*dto.AssessmentResponseDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDAndEmployer(assessmentID, employerID)
	if err != nil {
		return nil, asAppError(err, "Assessment not found")
	}
	resp := assessmentResponse(assessment)
	return &resp, nil
}

func (s *assessmentService) DeleteAssessment(employerID, assessmentID uint) error {
	if err := s.assessmentRepo.Delete(assessmentID, employerID); err != nil {
		return asAppError(err, "Assessment not found")
	}
	log.Info().Uint("assessmentID", assessmentID).Uint("employerID", employerID).Msg("Assessment deleted")
	return nil
}

// GetAssessmentForCandidate strips correct answers and explanations from the
// question set before it reaches the person taking the test.
func (s *assessmentService) GetAssessmentForCandidate(assessmentID uint) (*dto.CandidateAssessmentDTO, error) {
	assessment, err := s.assessmentRepo.FindByID(assessmentID)
	if err != nil {
		return nil, asAppError(err, "Assessment not found")
	}
	resp := candidateView(assessment)
	return &resp, nil
}

func (s *assessmentService) GetAvailableAssessments(candidateID uint) ([]dto.AvailableAssessmentDTO, error) {
	applications, err := s.applicationRepo.FindAvailableByCandidate(candidateID)
	if err != nil {
		return nil, apperr.Internal("failed to fetch applications", err)
	}

	out := make([]dto.AvailableAssessmentDTO, 0, len(applications))
	for i := range applications {
		app := &applications[i]
		if app.Job.AssessmentID == nil {
			continue
		}
		assessment, err := s.assessmentRepo.FindByID(*app.Job.AssessmentID)
		if err != nil {
			log.Warn().Err(err).Uint("assessmentID", *app.Job.AssessmentID).Uint("applicationID", app.ID).Msg("Skipping application with missing assessment")
			continue
		}
		out = append(out, dto.AvailableAssessmentDTO{
			CandidateAssessmentDTO: candidateView(assessment),
			JobTitle:               app.Job.Title,
			JobID:                  app.JobID,
			ApplicationID:          app.ID,
		})
	}
	return out, nil
}

func assessmentResponse(assessment *model.Assessment) dto.AssessmentResponseDTO {
	var resp dto.AssessmentResponseDTO
	if err := copier.Copy(&resp, assessment); err != nil {
		log.Error().Err(err).Uint("assessmentID", assessment.ID).Msg("Failed to copy assessment to DTO")
	}
	return resp
}

func candidateView(assessment *model.Assessment) dto.CandidateAssessmentDTO {
	questions := make([]dto.CandidateQuestionDTO, 0, len(assessment.Questions))
	for _, q := range assessment.Questions {
		questions = append(questions, dto.CandidateQuestionDTO{
			Position:     q.Position,
			Text:         q.Text,
			Type:         string(q.Type),
			Options:      q.Options,
			OptionImages: q.OptionImages,
			Marks:        q.MarksOrDefault(),
			ImageURL:     q.ImageURL,
		})
	}
	return dto.CandidateAssessmentDTO{
		ID:             assessment.ID,
		Title:          assessment.Title,
		Type:           assessment.Type,
		Description:    assessment.Description,
		Instructions:   assessment.Instructions,
		TimerMinutes:   assessment.TimerMinutes,
		TotalQuestions: len(assessment.Questions),
		Questions:      questions,
	}
}

func valueOrDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func intOrDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
