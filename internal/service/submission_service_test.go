package service

import (
	"testing"
	"time"

	"github.com/talentbridge/assessment/internal/apperr"
	"github.com/talentbridge/assessment/internal/dto"
	"github.com/talentbridge/assessment/internal/model"
)

func newSubmissionServiceForTest(
	assessments *fakeAssessmentRepo,
	attempts *fakeAttemptRepo,
	applications *fakeApplicationRepo,
	now time.Time,
) *submissionService {
	svc := NewSubmissionService(assessments, attempts, applications).(*submissionService)
	svc.now = func() time.Time { return now }
	return svc
}

// answeredAttempt has the two choice questions right, the subjective answered,
// and the upload question left blank: 12 of 14 marks, 85.71 percent.
func answeredAttempt() *model.Attempt {
	a := inProgressAttempt()
	a.Answers = []model.Answer{
		{ID: 1, AttemptID: 1, QuestionIndex: 0, SelectedAnswer: intPtr(2)},
		{ID: 2, AttemptID: 1, QuestionIndex: 1, SelectedAnswer: intPtr(0)},
		{ID: 3, AttemptID: 1, QuestionIndex: 2, TextAnswer: strPtr("because of X")},
	}
	return a
}

func TestSubmitAttemptScoresAndCompletes(t *testing.T) {
	submittedAt := time.Date(2025, 3, 10, 9, 20, 0, 0, time.UTC)
	attempts := newFakeAttemptRepo(answeredAttempt())
	applications := newFakeApplicationRepo(testApplication())
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), attempts, applications, submittedAt)

	resp, err := svc.SubmitAttempt(testCandidateID, 1, dto.SubmitAttemptRequest{})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if resp.Score != 12 {
		t.Errorf("Score = %d, want 12", resp.Score)
	}
	if resp.TotalMarks != 14 {
		t.Errorf("TotalMarks = %d, want 14", resp.TotalMarks)
	}
	if resp.Percentage != 85.71 {
		t.Errorf("Percentage = %v, want 85.71", resp.Percentage)
	}
	if resp.Result != "pass" {
		t.Errorf("Result = %q, want pass", resp.Result)
	}
	if resp.Status != model.AttemptStatusCompleted {
		t.Errorf("Status = %q, want %q", resp.Status, model.AttemptStatusCompleted)
	}
	if resp.CorrectAnswers != 3 || resp.TotalAnswered != 3 || resp.Unanswered != 1 {
		t.Errorf("breakdown = %d correct / %d answered / %d unanswered, want 3/3/1",
			resp.CorrectAnswers, resp.TotalAnswered, resp.Unanswered)
	}

	stored, _ := attempts.FindByIDAndCandidate(1, testCandidateID)
	if stored.EndTime == nil || !stored.EndTime.Equal(submittedAt) {
		t.Errorf("EndTime = %v, want %v", stored.EndTime, submittedAt)
	}

	if len(applications.updates) != 1 {
		t.Fatalf("application updates = %d, want 1", len(applications.updates))
	}
	push := applications.updates[0]
	if push.state.Status != model.ApplicationAssessmentCompleted {
		t.Errorf("pushed status = %q, want %q", push.state.Status, model.ApplicationAssessmentCompleted)
	}
	if push.state.Score == nil || *push.state.Score != 12 {
		t.Errorf("pushed score = %v, want 12", push.state.Score)
	}
	if push.state.Result != "pass" {
		t.Errorf("pushed result = %q, want pass", push.state.Result)
	}
}

func TestSubmitAttemptPastDeadlineExpires(t *testing.T) {
	attempt := answeredAttempt()
	submittedAt := attempt.StartTime.Add(31 * time.Minute)
	attempts := newFakeAttemptRepo(attempt)
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), attempts, newFakeApplicationRepo(testApplication()), submittedAt)

	resp, err := svc.SubmitAttempt(testCandidateID, 1, dto.SubmitAttemptRequest{})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	if resp.Status != model.AttemptStatusExpired {
		t.Errorf("Status = %q, want %q", resp.Status, model.AttemptStatusExpired)
	}
	// Late submissions are still scored, the expiry only changes the status.
	if resp.Score != 12 {
		t.Errorf("Score = %d, want 12 even when expired", resp.Score)
	}
}

func TestSubmitAttemptAtDeadlineCompletes(t *testing.T) {
	attempt := answeredAttempt()
	submittedAt := attempt.StartTime.Add(30 * time.Minute)
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), newFakeAttemptRepo(attempt), newFakeApplicationRepo(testApplication()), submittedAt)

	resp, err := svc.SubmitAttempt(testCandidateID, 1, dto.SubmitAttemptRequest{})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if resp.Status != model.AttemptStatusCompleted {
		t.Errorf("Status = %q at exactly the deadline, want %q", resp.Status, model.AttemptStatusCompleted)
	}
}

func TestSubmitAttemptAlreadyCompleted(t *testing.T) {
	attempt := answeredAttempt()
	attempt.Status = model.AttemptStatusCompleted
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), newFakeAttemptRepo(attempt), newFakeApplicationRepo(testApplication()), time.Now())

	_, err := svc.SubmitAttempt(testCandidateID, 1, dto.SubmitAttemptRequest{})
	wantKind(t, err, apperr.KindConflict)
}

func TestSubmitAttemptMergesClientViolations(t *testing.T) {
	seen := time.Date(2025, 3, 10, 9, 5, 0, 0, time.UTC)
	attempt := answeredAttempt()
	attempt.Violations = []model.Violation{
		{AttemptID: 1, Type: "tab-switch", Timestamp: seen, Details: "already recorded"},
	}
	attempts := newFakeAttemptRepo(attempt)
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), attempts, newFakeApplicationRepo(testApplication()), seen.Add(10*time.Minute))

	_, err := svc.SubmitAttempt(testCandidateID, 1, dto.SubmitAttemptRequest{
		Violations: []dto.ClientViolationDTO{
			{Type: "tab-switch", Timestamp: seen, Details: "duplicate of the recorded one"},
			{Type: "fullscreen-exit", Timestamp: seen.Add(2 * time.Minute)},
		},
	})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	stored, _ := attempts.FindByIDAndCandidate(1, testCandidateID)
	if len(stored.Violations) != 2 {
		t.Fatalf("violations = %d, want 2 (duplicate skipped, new one kept)", len(stored.Violations))
	}
	if stored.Violations[1].Type != "fullscreen-exit" {
		t.Errorf("second violation = %q, want fullscreen-exit", stored.Violations[1].Type)
	}
}

func TestSubmitAttemptScoresAgainstCurrentDefinition(t *testing.T) {
	// The employer shrank the assessment to one question mid-attempt. Stored
	// answers beyond the new set are ignored and totals follow the new set.
	assessment := testAssessment()
	assessment.Questions = assessment.Questions[:1]

	attempt := answeredAttempt()
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(assessment), newFakeAttemptRepo(attempt), newFakeApplicationRepo(testApplication()), attempt.StartTime.Add(time.Minute))

	resp, err := svc.SubmitAttempt(testCandidateID, 1, dto.SubmitAttemptRequest{})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if resp.Score != 5 || resp.TotalMarks != 5 {
		t.Errorf("score = %d/%d, want 5/5 against the shrunken set", resp.Score, resp.TotalMarks)
	}
	if resp.Percentage != 100 {
		t.Errorf("Percentage = %v, want 100", resp.Percentage)
	}
	if resp.TotalQuestions != 1 || resp.TotalAnswered != 1 {
		t.Errorf("questions/answered = %d/%d, want 1/1", resp.TotalQuestions, resp.TotalAnswered)
	}
}

func completedAttempt() *model.Attempt {
	a := answeredAttempt()
	a.Status = model.AttemptStatusCompleted
	score := 12
	pct := 85.71
	end := a.StartTime.Add(20 * time.Minute)
	a.Score = &score
	a.Percentage = &pct
	a.Result = "pass"
	a.EndTime = &end
	return a
}

func TestGetResult(t *testing.T) {
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), newFakeAttemptRepo(completedAttempt()), newFakeApplicationRepo(), time.Now())

	result, err := svc.GetResult(testCandidateID, 1)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if result.Score != 12 || result.Percentage != 85.71 || result.Result != "pass" {
		t.Errorf("result = %d / %v / %q, want 12 / 85.71 / pass", result.Score, result.Percentage, result.Result)
	}
	if result.CorrectAnswers != 3 {
		t.Errorf("CorrectAnswers = %d, want 3", result.CorrectAnswers)
	}
}

func TestGetResultOnlyWhenCompleted(t *testing.T) {
	for _, status := range []string{model.AttemptStatusInProgress, model.AttemptStatusExpired} {
		t.Run(status, func(t *testing.T) {
			attempt := answeredAttempt()
			attempt.Status = status
			svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), newFakeAttemptRepo(attempt), newFakeApplicationRepo(), time.Now())

			_, err := svc.GetResult(testCandidateID, 1)
			wantKind(t, err, apperr.KindNotFound)
		})
	}
}

func TestGetResultOtherCandidate(t *testing.T) {
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), newFakeAttemptRepo(completedAttempt()), newFakeApplicationRepo(), time.Now())

	_, err := svc.GetResult(999, 1)
	wantKind(t, err, apperr.KindNotFound)
}

func TestGetResultByApplication(t *testing.T) {
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), newFakeAttemptRepo(completedAttempt()), newFakeApplicationRepo(testApplication()), time.Now())

	resp, err := svc.GetResultByApplication(testCandidateID, testApplicationID)
	if err != nil {
		t.Fatalf("GetResultByApplication: %v", err)
	}
	if resp.Result.Score != 12 {
		t.Errorf("Score = %d, want 12", resp.Result.Score)
	}
	if resp.Assessment.Title != "Backend Aptitude" {
		t.Errorf("Assessment.Title = %q", resp.Assessment.Title)
	}
}

func TestGetAssessmentResults(t *testing.T) {
	finished := completedAttempt()
	inProgress := inProgressAttempt()
	inProgress.ID = 2
	inProgress.ApplicationID = 11
	attempts := newFakeAttemptRepo(finished, inProgress)
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), attempts, newFakeApplicationRepo(), time.Now())

	resp, err := svc.GetAssessmentResults(testEmployerID, 1)
	if err != nil {
		t.Fatalf("GetAssessmentResults: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1 (in-progress attempts excluded)", len(resp.Results))
	}
	row := resp.Results[0]
	if row.AttemptID != finished.ID || row.Score == nil || *row.Score != 12 {
		t.Errorf("row = %+v, want the finished attempt with score 12", row)
	}
	if resp.Assessment.Title != "Backend Aptitude" {
		t.Errorf("Assessment.Title = %q", resp.Assessment.Title)
	}
}

func TestGetAssessmentResultsOtherEmployer(t *testing.T) {
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), newFakeAttemptRepo(completedAttempt()), newFakeApplicationRepo(), time.Now())

	_, err := svc.GetAssessmentResults(999, 1)
	wantKind(t, err, apperr.KindNotFound)
}

func TestGetAttemptDetails(t *testing.T) {
	attempt := completedAttempt()
	attempt.Captures = []model.Capture{{AttemptID: 1, Data: "data:image/jpeg;base64,xx"}}
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), newFakeAttemptRepo(attempt), newFakeApplicationRepo(), time.Now())

	resp, err := svc.GetAttemptDetails(testEmployerID, 1)
	if err != nil {
		t.Fatalf("GetAttemptDetails: %v", err)
	}
	if len(resp.Answers) != 3 {
		t.Errorf("answers = %d, want 3", len(resp.Answers))
	}
	if resp.CaptureCount != 1 {
		t.Errorf("CaptureCount = %d, want 1", resp.CaptureCount)
	}
	if resp.CandidateID != testCandidateID {
		t.Errorf("CandidateID = %d, want %d", resp.CandidateID, testCandidateID)
	}
}

func TestGetAttemptDetailsOtherEmployer(t *testing.T) {
	svc := newSubmissionServiceForTest(newFakeAssessmentRepo(testAssessment()), newFakeAttemptRepo(completedAttempt()), newFakeApplicationRepo(), time.Now())

	_, err := svc.GetAttemptDetails(999, 1)
	wantKind(t, err, apperr.KindForbidden)
}
