package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/talentbridge/assessment/internal/apperr"
	"github.com/talentbridge/assessment/internal/dto"
	"github.com/talentbridge/assessment/internal/model"
	"github.com/talentbridge/assessment/internal/repository"
	"gorm.io/gorm"
)

// FileUpload carries a decoded multipart file from the controller into the
// answer store.
type FileUpload struct {
	Name     string
	MimeType string
	Size     int64
	Data     []byte
}

func (f *FileUpload) dataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", f.MimeType, base64.StdEncoding.EncodeToString(f.Data))
}

// AttemptService drives the in-progress side of an attempt: starting or
// resuming, storing answers and proctoring events.
type AttemptService interface {
	StartAttempt(candidateID uint, req dto.StartAttemptRequest) (*dto.StartAttemptResponseDTO, error)
	SubmitAnswer(candidateID uint, req dto.SubmitAnswerRequest) (*dto.AnswerSavedResponseDTO, error)
	SubmitFileAnswer(candidateID, attemptID uint, questionIndex, timeSpentSeconds int, file FileUpload) (*dto.UploadedFileDTO, error)
	SubmitCapture(candidateID, attemptID uint, file FileUpload) (*dto.CaptureResponseDTO, error)
	RecordViolation(candidateID uint, req dto.RecordViolationRequest) (*dto.ViolationResponseDTO, error)
}

type attemptService struct {
	assessmentRepo  repository.AssessmentRepository
	attemptRepo     repository.AttemptRepository
	applicationRepo repository.ApplicationRepository
	now             func() time.Time
}

func NewAttemptService(
	assessmentRepo repository.AssessmentRepository,
	attemptRepo repository.AttemptRepository,
	applicationRepo repository.ApplicationRepository,
) AttemptService {
	return &attemptService{
		assessmentRepo:  assessmentRepo,
		attemptRepo:     attemptRepo,
		applicationRepo: applicationRepo,
		now:             time.Now,
	}
}

// asAppError keeps structured errors intact and classifies everything else.
func asAppError(err error, notFoundMsg string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", notFoundMsg)
	}
	return apperr.Internal("storage failure", err)
}

func (s *attemptService) StartAttempt(candidateID uint, req dto.StartAttemptRequest) (*dto.StartAttemptResponseDTO, error) {
	attempt, err := s.attemptRepo.FindByKey(req.AssessmentID, candidateID, req.ApplicationID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to look up existing attempt", err)
	}

	if attempt != nil {
		// A flagged attempt can never be re-entered, whatever its status.
		if len(attempt.Violations) > 0 {
			return nil, apperr.Forbidden("Assessment access denied due to previous violations. You cannot continue this assessment.")
		}
		if attempt.Status == model.AttemptStatusCompleted {
			return nil, apperr.Conflict("Assessment already completed. You cannot retake this assessment.")
		}
		if attempt.Status == model.AttemptStatusExpired {
			return nil, apperr.Conflict("Assessment time expired. You cannot retake this assessment.")
		}
	}

	assessment, err := s.assessmentRepo.FindByID(req.AssessmentID)
	if err != nil {
		return nil, asAppError(err, "Assessment not found")
	}

	application, err := s.applicationRepo.FindByIDAndCandidate(req.ApplicationID, candidateID)
	if err != nil {
		return nil, asAppError(err, "Application not found. Please ensure you have applied for this job.")
	}
	if application.JobID != req.JobID {
		return nil, apperr.InvalidInput("Job ID mismatch. Please try again.")
	}

	now := s.now()
	isNew := attempt == nil
	if isNew {
		attempt = &model.Attempt{
			AssessmentID:  req.AssessmentID,
			CandidateID:   candidateID,
			JobID:         req.JobID,
			ApplicationID: req.ApplicationID,
			TotalMarks:    assessment.TotalMarks(),
			Answers:       []model.Answer{},
			Violations:    []model.Violation{},
		}
	}

	// Both fresh starts and resumes reset the countdown reference point to
	// now: re-entering grants a full time budget again. Intentional.
	attempt.Status = model.AttemptStatusInProgress
	attempt.StartTime = now
	attempt.TimeRemainingSeconds = assessment.TimerMinutes * 60
	attempt.CurrentQuestion = 0
	attempt.TermsAccepted = true
	attempt.TermsAcceptedAt = &now

	if isNew {
		err = s.attemptRepo.Create(attempt)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent start won the race on the attempt key.
			return nil, apperr.Conflict("An attempt for this application already exists")
		}
	} else {
		err = s.attemptRepo.Update(attempt)
	}
	if err != nil {
		return nil, apperr.Internal("failed to persist attempt", err)
	}

	if err := s.applicationRepo.UpdateAssessmentState(req.ApplicationID, repository.AssessmentStateUpdate{
		Status:    model.ApplicationAssessmentInProgress,
		AttemptID: attempt.ID,
	}); err != nil {
		log.Error().Err(err).Uint("applicationID", req.ApplicationID).Msg("StartAttempt: failed to update application assessment state")
	}

	log.Info().Uint("attemptID", attempt.ID).Uint("candidateID", candidateID).Bool("resumed", !isNew).Msg("Assessment attempt started")

	return &dto.StartAttemptResponseDTO{
		AttemptID:            attempt.ID,
		AssessmentID:         attempt.AssessmentID,
		StartTime:            attempt.StartTime,
		TimeRemainingSeconds: attempt.TimeRemainingSeconds,
		TotalMarks:           attempt.TotalMarks,
		CurrentQuestion:      attempt.CurrentQuestion,
	}, nil
}

func (s *attemptService) SubmitAnswer(candidateID uint, req dto.SubmitAnswerRequest) (*dto.AnswerSavedResponseDTO, error) {
	questionIndex := *req.QuestionIndex

	attempt, err := s.attemptRepo.Mutate(req.AttemptID, candidateID, func(a *model.Attempt) error {
		if a.Status != model.AttemptStatusInProgress {
			return apperr.InvalidState("Assessment is not in progress")
		}

		assessment, err := s.assessmentRepo.FindByID(a.AssessmentID)
		if err != nil {
			return asAppError(err, "Assessment not found")
		}
		if questionIndex >= len(assessment.Questions) {
			return apperr.NotFound("Question not found")
		}
		question := assessment.Questions[questionIndex]

		answer := model.Answer{
			AttemptID:        a.ID,
			QuestionIndex:    questionIndex,
			TimeSpentSeconds: req.TimeSpentSeconds,
			AnsweredAt:       s.now(),
		}
		if question.Type.IsChoice() {
			if req.SelectedAnswer == nil {
				return apperr.InvalidInput("Please select an answer")
			}
			if *req.SelectedAnswer < 0 || *req.SelectedAnswer >= len(question.Options) {
				return apperr.InvalidInput("Invalid answer option selected")
			}
			answer.SelectedAnswer = req.SelectedAnswer
		} else {
			// Free-form answers may be blank while the candidate is still typing.
			answer.TextAnswer = req.TextAnswer
		}

		upsertAnswer(a, answer)
		if questionIndex+1 > a.CurrentQuestion {
			a.CurrentQuestion = questionIndex + 1
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Assessment attempt not found")
	}

	return &dto.AnswerSavedResponseDTO{
		AttemptID:       attempt.ID,
		CurrentQuestion: attempt.CurrentQuestion,
		AnswersCount:    len(attempt.Answers),
	}, nil
}

func (s *attemptService) SubmitFileAnswer(candidateID, attemptID uint, questionIndex, timeSpentSeconds int, file FileUpload) (*dto.UploadedFileDTO, error) {
	if len(file.Data) == 0 {
		return nil, apperr.InvalidInput("No file uploaded")
	}
	if questionIndex < 0 {
		return nil, apperr.InvalidInput("Invalid question index")
	}

	var uploaded model.UploadedFile
	attempt, err := s.attemptRepo.Mutate(attemptID, candidateID, func(a *model.Attempt) error {
		if a.Status != model.AttemptStatusInProgress {
			return apperr.InvalidState("Assessment is not in progress")
		}

		assessment, err := s.assessmentRepo.FindByID(a.AssessmentID)
		if err != nil {
			return asAppError(err, "Assessment not found")
		}
		if questionIndex >= len(assessment.Questions) {
			return apperr.NotFound("Question not found")
		}
		question := assessment.Questions[questionIndex]
		if !question.Type.AcceptsFile() {
			return apperr.InvalidInput("Question is not an upload type")
		}

		uploaded = model.UploadedFile{
			StoredName:   uuid.NewString() + filepath.Ext(file.Name),
			OriginalName: file.Name,
			MimeType:     file.MimeType,
			Size:         file.Size,
			Data:         file.dataURI(),
			UploadedAt:   s.now(),
		}
		upsertAnswer(a, model.Answer{
			AttemptID:        a.ID,
			QuestionIndex:    questionIndex,
			UploadedFile:     &uploaded,
			TimeSpentSeconds: timeSpentSeconds,
			AnsweredAt:       s.now(),
		})
		if questionIndex+1 > a.CurrentQuestion {
			a.CurrentQuestion = questionIndex + 1
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Assessment attempt not found")
	}

	log.Info().Uint("attemptID", attempt.ID).Int("questionIndex", questionIndex).Int64("size", file.Size).Msg("File answer stored")

	return &dto.UploadedFileDTO{
		StoredName:   uploaded.StoredName,
		OriginalName: uploaded.OriginalName,
		MimeType:     uploaded.MimeType,
		Size:         uploaded.Size,
		UploadedAt:   uploaded.UploadedAt,
	}, nil
}

func (s *attemptService) SubmitCapture(candidateID, attemptID uint, file FileUpload) (*dto.CaptureResponseDTO, error) {
	if len(file.Data) == 0 {
		return nil, apperr.InvalidInput("No capture uploaded")
	}

	attempt, err := s.attemptRepo.Mutate(attemptID, candidateID, func(a *model.Attempt) error {
		if a.Status != model.AttemptStatusInProgress {
			return apperr.InvalidState("Assessment is not in progress")
		}
		// Hard ceiling, not a ring buffer: the 6th capture is refused outright.
		if len(a.Captures) >= model.MaxCaptures {
			return apperr.CapacityExceeded("Maximum captures reached")
		}
		a.Captures = append(a.Captures, model.Capture{
			AttemptID: a.ID,
			Data:      file.dataURI(),
		})
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Assessment attempt not found")
	}

	return &dto.CaptureResponseDTO{
		CaptureCount: len(attempt.Captures),
		Message:      fmt.Sprintf("Capture %d/%d uploaded successfully", len(attempt.Captures), model.MaxCaptures),
	}, nil
}

func (s *attemptService) RecordViolation(candidateID uint, req dto.RecordViolationRequest) (*dto.ViolationResponseDTO, error) {
	details := req.Details
	if details == "" {
		details = fmt.Sprintf("%s violation detected", req.Type)
	}

	attempt, err := s.attemptRepo.Mutate(req.AttemptID, candidateID, func(a *model.Attempt) error {
		if a.Status != model.AttemptStatusInProgress {
			return apperr.InvalidState("Assessment is not in progress")
		}
		a.Violations = append(a.Violations, model.Violation{
			AttemptID: a.ID,
			Type:      req.Type,
			Timestamp: s.now(),
			Details:   details,
		})
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Assessment attempt not found")
	}

	log.Warn().Uint("attemptID", attempt.ID).Str("type", req.Type).Int("total", len(attempt.Violations)).Msg("Violation recorded")

	return &dto.ViolationResponseDTO{ViolationCount: len(attempt.Violations)}, nil
}

// upsertAnswer replaces the stored answer for the question index, keeping the
// row identity so the write is an update, not a duplicate insert.
func upsertAnswer(attempt *model.Attempt, answer model.Answer) {
	if existing := attempt.AnswerFor(answer.QuestionIndex); existing != nil {
		answer.ID = existing.ID
		*existing = answer
		return
	}
	attempt.Answers = append(attempt.Answers, answer)
}
