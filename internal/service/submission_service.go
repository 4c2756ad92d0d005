package service

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/talentbridge/assessment/internal/apperr"
	"github.com/talentbridge/assessment/internal/dto"
	"github.com/talentbridge/assessment/internal/model"
	"github.com/talentbridge/assessment/internal/repository"
)

// SubmissionService finalizes attempts and serves finalized results.
type SubmissionService interface {
	SubmitAttempt(candidateID, attemptID uint, req dto.SubmitAttemptRequest) (*dto.SubmissionResultDTO, error)
	GetResult(candidateID, attemptID uint) (*dto.ResultDTO, error)
	GetResultByApplication(candidateID, applicationID uint) (*dto.ApplicationResultDTO, error)
	GetAssessmentResults(employerID, assessmentID uint) (*dto.AssessmentResultsDTO, error)
	GetAttemptDetails(employerID, attemptID uint) (*dto.AttemptDetailDTO, error)
}

type submissionService struct {
	assessmentRepo  repository.AssessmentRepository
	attemptRepo     repository.AttemptRepository
	applicationRepo repository.ApplicationRepository
	now             func() time.Time
}

func NewSubmissionService(
	assessmentRepo repository.AssessmentRepository,
	attemptRepo repository.AttemptRepository,
	applicationRepo repository.ApplicationRepository,
) SubmissionService {
	return &submissionService{
		assessmentRepo:  assessmentRepo,
		attemptRepo:     attemptRepo,
		applicationRepo: applicationRepo,
		now:             time.Now,
	}
}

// SubmitAttempt grades the attempt against the current question set, applies
// the elapsed-time check, merges client violations and finalizes the record.
// This is the only place the time budget is enforced; an attempt nobody
// submits stays in_progress.
func (s *submissionService) SubmitAttempt(candidateID, attemptID uint, req dto.SubmitAttemptRequest) (*dto.SubmissionResultDTO, error) {
	var (
		breakdown      ScoreBreakdown
		totalQuestions int
	)

	attempt, err := s.attemptRepo.Mutate(attemptID, candidateID, func(a *model.Attempt) error {
		if a.Status == model.AttemptStatusCompleted {
			return apperr.Conflict("Assessment already completed")
		}

		assessment, err := s.assessmentRepo.FindByID(a.AssessmentID)
		if err != nil {
			return asAppError(err, "Assessment not found")
		}
		totalQuestions = len(assessment.Questions)

		breakdown = ScoreAnswers(assessment.Questions, a.Answers)
		totalMarks := assessment.TotalMarks()
		percentage := ScorePercentage(breakdown.Score, totalMarks)
		result := PassFail(percentage, assessment.PassingPercentage)

		now := s.now()
		elapsed := now.Sub(a.StartTime)
		status := model.AttemptStatusCompleted
		if elapsed > time.Duration(assessment.TimerMinutes)*time.Minute {
			status = model.AttemptStatusExpired
		}

		score := breakdown.Score
		a.Score = &score
		a.Percentage = &percentage
		a.Result = result
		a.Status = status
		a.TotalMarks = totalMarks
		a.EndTime = &now

		mergeViolations(a, req.Violations)
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Assessment attempt not found")
	}

	if err := s.applicationRepo.UpdateAssessmentState(attempt.ApplicationID, repository.AssessmentStateUpdate{
		Status:     model.ApplicationAssessmentCompleted,
		AttemptID:  attempt.ID,
		Score:      attempt.Score,
		Percentage: attempt.Percentage,
		Result:     attempt.Result,
	}); err != nil {
		log.Error().Err(err).Uint("applicationID", attempt.ApplicationID).Msg("SubmitAttempt: failed to push result to application")
	}

	log.Info().
		Uint("attemptID", attempt.ID).
		Int("score", breakdown.Score).
		Int("totalMarks", attempt.TotalMarks).
		Str("result", attempt.Result).
		Str("status", attempt.Status).
		Msg("Assessment submitted")

	return &dto.SubmissionResultDTO{
		AttemptID:      attempt.ID,
		Score:          breakdown.Score,
		TotalMarks:     attempt.TotalMarks,
		Percentage:     *attempt.Percentage,
		Result:         attempt.Result,
		Status:         attempt.Status,
		CorrectAnswers: breakdown.CorrectAnswers,
		TotalQuestions: totalQuestions,
		TotalAnswered:  breakdown.TotalAnswered,
		Unanswered:     totalQuestions - breakdown.TotalAnswered,
	}, nil
}

// mergeViolations appends client-batched violations, skipping exact
// {type, timestamp} duplicates already on the attempt.
func mergeViolations(attempt *model.Attempt, incoming []dto.ClientViolationDTO) {
	for _, v := range incoming {
		duplicate := false
		for i := range attempt.Violations {
			if attempt.Violations[i].Type == v.Type && attempt.Violations[i].Timestamp.Equal(v.Timestamp) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			attempt.Violations = append(attempt.Violations, model.Violation{
				AttemptID: attempt.ID,
				Type:      v.Type,
				Timestamp: v.Timestamp,
				Details:   v.Details,
			})
		}
	}
}

// GetResult serves a finalized result. Anything short of completed reads as
// not found, including attempts that ran out the clock but were never driven
// through submission.
func (s *submissionService) GetResult(candidateID, attemptID uint) (*dto.ResultDTO, error) {
	attempt, err := s.attemptRepo.FindByIDAndCandidate(attemptID, candidateID)
	if err != nil {
		return nil, asAppError(err, "Result not found")
	}
	if attempt.Status != model.AttemptStatusCompleted {
		return nil, apperr.NotFound("Result not found")
	}
	return s.buildResult(attempt)
}

func (s *submissionService) GetResultByApplication(candidateID, applicationID uint) (*dto.ApplicationResultDTO, error) {
	attempt, err := s.attemptRepo.FindByApplicationAndCandidate(applicationID, candidateID)
	if err != nil {
		return nil, asAppError(err, "Assessment result not found for this application")
	}
	if attempt.Status != model.AttemptStatusCompleted {
		return nil, apperr.NotFound("Assessment result not found for this application")
	}

	result, err := s.buildResult(attempt)
	if err != nil {
		return nil, err
	}
	assessment, err := s.assessmentRepo.FindByID(attempt.AssessmentID)
	if err != nil {
		return nil, asAppError(err, "Assessment not found")
	}
	return &dto.ApplicationResultDTO{
		Result: *result,
		Assessment: dto.AssessmentSummaryDTO{
			Title:       assessment.Title,
			Description: assessment.Description,
		},
	}, nil
}

// buildResult recomputes the correct-answer count against the current
// definition at read time rather than trusting a stored figure.
func (s *submissionService) buildResult(attempt *model.Attempt) (*dto.ResultDTO, error) {
	assessment, err := s.assessmentRepo.FindByID(attempt.AssessmentID)
	if err != nil {
		return nil, asAppError(err, "Assessment not found")
	}
	breakdown := ScoreAnswers(assessment.Questions, attempt.Answers)

	score := 0
	if attempt.Score != nil {
		score = *attempt.Score
	}
	percentage := 0.0
	if attempt.Percentage != nil {
		percentage = *attempt.Percentage
	}

	return &dto.ResultDTO{
		Score:          score,
		TotalMarks:     attempt.TotalMarks,
		Percentage:     percentage,
		Result:         attempt.Result,
		CorrectAnswers: breakdown.CorrectAnswers,
		TotalQuestions: len(assessment.Questions),
		Violations:     violationDTOs(attempt.Violations),
	}, nil
}

func (s *submissionService) GetAssessmentResults(employerID, assessmentID uint) (*dto.AssessmentResultsDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDAndEmployer(assessmentID, employerID)
	if err != nil {
		return nil, asAppError(err, "Assessment not found")
	}

	attempts, err := s.attemptRepo.FindFinishedByAssessment(assessmentID)
	if err != nil {
		return nil, apperr.Internal("failed to fetch attempts", err)
	}

	results := make([]dto.AttemptSummaryDTO, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		results = append(results, dto.AttemptSummaryDTO{
			AttemptID:      a.ID,
			CandidateID:    a.CandidateID,
			ApplicationID:  a.ApplicationID,
			Status:         a.Status,
			Score:          a.Score,
			TotalMarks:     a.TotalMarks,
			Percentage:     a.Percentage,
			Result:         a.Result,
			ViolationCount: len(a.Violations),
			EndTime:        a.EndTime,
		})
	}

	return &dto.AssessmentResultsDTO{
		Assessment: assessmentResponse(assessment),
		Results:    results,
	}, nil
}

func (s *submissionService) GetAttemptDetails(employerID, attemptID uint) (*dto.AttemptDetailDTO, error) {
	attempt, err := s.attemptRepo.FindByIDWithDetails(attemptID)
	if err != nil {
		return nil, asAppError(err, "Attempt not found")
	}

	assessment, err := s.assessmentRepo.FindByID(attempt.AssessmentID)
	if err != nil {
		return nil, asAppError(err, "Assessment not found")
	}
	if assessment.EmployerID != employerID {
		return nil, apperr.Forbidden("Unauthorized")
	}

	answers := make([]dto.AnswerDetailDTO, 0, len(attempt.Answers))
	for i := range attempt.Answers {
		ans := &attempt.Answers[i]
		detail := dto.AnswerDetailDTO{
			QuestionIndex:    ans.QuestionIndex,
			SelectedAnswer:   ans.SelectedAnswer,
			TextAnswer:       ans.TextAnswer,
			TimeSpentSeconds: ans.TimeSpentSeconds,
			AnsweredAt:       ans.AnsweredAt,
		}
		if ans.UploadedFile != nil {
			detail.UploadedFile = &dto.UploadedFileDTO{
				StoredName:   ans.UploadedFile.StoredName,
				OriginalName: ans.UploadedFile.OriginalName,
				MimeType:     ans.UploadedFile.MimeType,
				Size:         ans.UploadedFile.Size,
				UploadedAt:   ans.UploadedFile.UploadedAt,
			}
		}
		answers = append(answers, detail)
	}

	return &dto.AttemptDetailDTO{
		AttemptID:     attempt.ID,
		AssessmentID:  attempt.AssessmentID,
		CandidateID:   attempt.CandidateID,
		ApplicationID: attempt.ApplicationID,
		JobID:         attempt.JobID,
		Status:        attempt.Status,
		StartTime:     attempt.StartTime,
		EndTime:       attempt.EndTime,
		Score:         attempt.Score,
		TotalMarks:    attempt.TotalMarks,
		Percentage:    attempt.Percentage,
		Result:        attempt.Result,
		Answers:       answers,
		Violations:    violationDTOs(attempt.Violations),
		CaptureCount:  len(attempt.Captures),
	}, nil
}

func violationDTOs(violations []model.Violation) []dto.ViolationDTO {
	out := make([]dto.ViolationDTO, 0, len(violations))
	for _, v := range violations {
		out = append(out, dto.ViolationDTO{Type: v.Type, Timestamp: v.Timestamp, Details: v.Details})
	}
	return out
}
