package service

import (
	"math"

	"github.com/talentbridge/assessment/internal/model"
)

// ScoreBreakdown is the outcome of walking stored answers against a question set.
type ScoreBreakdown struct {
	Score          int
	CorrectAnswers int
	TotalAnswered  int
}

// ScoreAnswers grades stored answers against the current question set.
// Answers whose index no longer resolves are skipped, which is how a
// definition edited mid-attempt degrades. Choice questions earn full marks
// only on an exact, in-range match; free-form questions earn full marks for
// any non-blank text or uploaded file, correctness pending manual review.
func ScoreAnswers(questions []model.Question, answers []model.Answer) ScoreBreakdown {
	var b ScoreBreakdown
	for i := range answers {
		ans := &answers[i]
		if ans.QuestionIndex < 0 || ans.QuestionIndex >= len(questions) {
			continue
		}
		q := &questions[ans.QuestionIndex]
		b.TotalAnswered++

		switch q.Type {
		case model.QuestionTypeMCQ, model.QuestionTypeVisualMCQ:
			if ans.SelectedAnswer == nil || q.CorrectAnswer == nil {
				continue
			}
			selected := *ans.SelectedAnswer
			if selected >= 0 && selected < len(q.Options) && selected == *q.CorrectAnswer {
				b.Score += q.MarksOrDefault()
				b.CorrectAnswers++
			}
		case model.QuestionTypeSubjective, model.QuestionTypeUpload, model.QuestionTypeImage:
			if ans.HasText() || ans.UploadedFile != nil {
				b.Score += q.MarksOrDefault()
				b.CorrectAnswers++
			}
		}
	}
	return b
}

// ScorePercentage returns score/totalMarks as a percentage rounded to two
// decimal places, 0 when there are no marks to earn.
func ScorePercentage(score, totalMarks int) float64 {
	if totalMarks <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(totalMarks)*100*100) / 100
}

// PassFail classifies a percentage against the assessment's passing threshold.
func PassFail(percentage float64, passingPercentage int) string {
	if passingPercentage <= 0 {
		passingPercentage = 60
	}
	if percentage >= float64(passingPercentage) {
		return "pass"
	}
	return "fail"
}
