package service

import (
	"sort"

	"github.com/talentbridge/assessment/internal/model"
	"github.com/talentbridge/assessment/internal/repository"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mimic the behaviors the services lean on:
// gorm.ErrRecordNotFound for misses, the composite attempt key, and the
// copy-then-commit semantics of Mutate (fn failures leave the store untouched).

type fakeAssessmentRepo struct {
	assessments map[uint]*model.Assessment
	nextID      uint
}

func newFakeAssessmentRepo(assessments ...*model.Assessment) *fakeAssessmentRepo {
	f := &fakeAssessmentRepo{assessments: make(map[uint]*model.Assessment), nextID: 1}
	for _, a := range assessments {
		if a.ID == 0 {
			a.ID = f.nextID
		}
		if a.ID >= f.nextID {
			f.nextID = a.ID + 1
		}
		f.assessments[a.ID] = a
	}
	return f
}

func (f *fakeAssessmentRepo) Create(a *model.Assessment) error {
	if a.ID == 0 {
		a.ID = f.nextID
		f.nextID++
	}
	f.assessments[a.ID] = a
	return nil
}

func (f *fakeAssessmentRepo) FindByID(id uint) (*model.Assessment, error) {
	a, ok := f.assessments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeAssessmentRepo) FindByIDAndEmployer(id, employerID uint) (*model.Assessment, error) {
	a, ok := f.assessments[id]
	if !ok || a.EmployerID != employerID {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeAssessmentRepo) FindAllByEmployer(employerID uint) ([]model.Assessment, error) {
	var out []model.Assessment
	for _, a := range f.assessments {
		if a.EmployerID == employerID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out, nil
}

func (f *fakeAssessmentRepo) NextSerialNumber(employerID uint) (int, error) {
	max := 0
	for _, a := range f.assessments {
		if a.EmployerID == employerID && a.SerialNumber > max {
			max = a.SerialNumber
		}
	}
	return max + 1, nil
}

func (f *fakeAssessmentRepo) Replace(a *model.Assessment, questions []model.Question) error {
	a.Questions = questions
	f.assessments[a.ID] = a
	return nil
}

func (f *fakeAssessmentRepo) Delete(id, employerID uint) error {
	a, ok := f.assessments[id]
	if !ok || a.EmployerID != employerID {
		return gorm.ErrRecordNotFound
	}
	delete(f.assessments, id)
	return nil
}

type fakeAttemptRepo struct {
	attempts  map[uint]*model.Attempt
	nextID    uint
	createErr error
}

func newFakeAttemptRepo(attempts ...*model.Attempt) *fakeAttemptRepo {
	f := &fakeAttemptRepo{attempts: make(map[uint]*model.Attempt), nextID: 1}
	for _, a := range attempts {
		if a.ID == 0 {
			a.ID = f.nextID
		}
		if a.ID >= f.nextID {
			f.nextID = a.ID + 1
		}
		f.attempts[a.ID] = a
	}
	return f
}

func (f *fakeAttemptRepo) Create(attempt *model.Attempt) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.attempts {
		if existing.AssessmentID == attempt.AssessmentID &&
			existing.CandidateID == attempt.CandidateID &&
			existing.ApplicationID == attempt.ApplicationID {
			return gorm.ErrDuplicatedKey
		}
	}
	attempt.ID = f.nextID
	f.nextID++
	f.attempts[attempt.ID] = attempt
	return nil
}

func (f *fakeAttemptRepo) Update(attempt *model.Attempt) error {
	if _, ok := f.attempts[attempt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.attempts[attempt.ID] = attempt
	return nil
}

func (f *fakeAttemptRepo) FindByKey(assessmentID, candidateID, applicationID uint) (*model.Attempt, error) {
	for _, a := range f.attempts {
		if a.AssessmentID == assessmentID && a.CandidateID == candidateID && a.ApplicationID == applicationID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) FindByIDAndCandidate(id, candidateID uint) (*model.Attempt, error) {
	a, ok := f.attempts[id]
	if !ok || a.CandidateID != candidateID {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeAttemptRepo) FindByApplicationAndCandidate(applicationID, candidateID uint) (*model.Attempt, error) {
	for _, a := range f.attempts {
		if a.ApplicationID == applicationID && a.CandidateID == candidateID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAttemptRepo) FindFinishedByAssessment(assessmentID uint) ([]model.Attempt, error) {
	var out []model.Attempt
	for _, a := range f.attempts {
		if a.AssessmentID == assessmentID && a.Terminal() {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].EndTime, out[j].EndTime
		if ti == nil || tj == nil {
			return tj == nil
		}
		return ti.After(*tj)
	})
	return out, nil
}

func (f *fakeAttemptRepo) FindByIDWithDetails(id uint) (*model.Attempt, error) {
	a, ok := f.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	sort.Slice(a.Answers, func(i, j int) bool { return a.Answers[i].QuestionIndex < a.Answers[j].QuestionIndex })
	return a, nil
}

func (f *fakeAttemptRepo) Mutate(id, candidateID uint, fn func(attempt *model.Attempt) error) (*model.Attempt, error) {
	stored, ok := f.attempts[id]
	if !ok || stored.CandidateID != candidateID {
		return nil, gorm.ErrRecordNotFound
	}
	work := cloneAttempt(stored)
	if err := fn(work); err != nil {
		return nil, err
	}
	f.attempts[id] = work
	return work, nil
}

func cloneAttempt(a *model.Attempt) *model.Attempt {
	c := *a
	c.Answers = append([]model.Answer(nil), a.Answers...)
	c.Violations = append([]model.Violation(nil), a.Violations...)
	c.Captures = append([]model.Capture(nil), a.Captures...)
	return &c
}

type stateUpdate struct {
	applicationID uint
	state         repository.AssessmentStateUpdate
}

type fakeApplicationRepo struct {
	applications map[uint]*model.Application
	updates      []stateUpdate
	updateErr    error
}

func newFakeApplicationRepo(applications ...*model.Application) *fakeApplicationRepo {
	f := &fakeApplicationRepo{applications: make(map[uint]*model.Application)}
	for _, a := range applications {
		f.applications[a.ID] = a
	}
	return f
}

func (f *fakeApplicationRepo) FindByIDAndCandidate(id, candidateID uint) (*model.Application, error) {
	a, ok := f.applications[id]
	if !ok || a.CandidateID != candidateID {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeApplicationRepo) FindAvailableByCandidate(candidateID uint) ([]model.Application, error) {
	var out []model.Application
	for _, a := range f.applications {
		if a.CandidateID == candidateID && a.AssessmentStatus == model.ApplicationAssessmentAvailable {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeApplicationRepo) UpdateAssessmentState(id uint, state repository.AssessmentStateUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, stateUpdate{applicationID: id, state: state})
	if a, ok := f.applications[id]; ok {
		a.AssessmentStatus = state.Status
		a.AssessmentAttemptID = &state.AttemptID
		if state.Score != nil {
			a.AssessmentScore = state.Score
		}
		if state.Percentage != nil {
			a.AssessmentPercentage = state.Percentage
		}
		if state.Result != "" {
			a.AssessmentResult = state.Result
		}
	}
	return nil
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// mcqQuestion builds a four-option choice question at the given position.
func mcqQuestion(position, correct, marks int) model.Question {
	return model.Question{
		Position:      position,
		Text:          "pick one",
		Type:          model.QuestionTypeMCQ,
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: intPtr(correct),
		Marks:         marks,
	}
}

func subjectiveQuestion(position, marks int) model.Question {
	return model.Question{
		Position: position,
		Text:     "explain",
		Type:     model.QuestionTypeSubjective,
		Marks:    marks,
	}
}

func uploadQuestion(position, marks int) model.Question {
	return model.Question{
		Position: position,
		Text:     "attach your work",
		Type:     model.QuestionTypeUpload,
		Marks:    marks,
	}
}
