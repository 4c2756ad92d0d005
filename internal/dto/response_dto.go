package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// QuestionResponseDTO is the employer-facing question view, answers included.
type QuestionResponseDTO struct {
	ID            uint     `json:"id"`
	Position      int      `json:"position"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	OptionImages  []string `json:"option_images,omitempty"`
	CorrectAnswer *int     `json:"correct_answer,omitempty"`
	Marks         int      `json:"marks"`
	Explanation   string   `json:"explanation,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
}

// AssessmentResponseDTO is the employer-facing assessment view.
type AssessmentResponseDTO struct {
	ID                uint                  `json:"id"`
	SerialNumber      int                   `json:"serial_number"`
	Title             string                `json:"title"`
	Type              string                `json:"type"`
	Designation       string                `json:"designation,omitempty"`
	CompanyName       string                `json:"company_name,omitempty"`
	Description       string                `json:"description,omitempty"`
	Instructions      string                `json:"instructions,omitempty"`
	TimerMinutes      int                   `json:"timer_minutes"`
	PassingPercentage int                   `json:"passing_percentage"`
	TotalQuestions    int                   `json:"total_questions"`
	Status            string                `json:"status"`
	Questions         []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// CandidateQuestionDTO is the candidate-facing question view. Correct answers
// and explanations are never serialized here.
type CandidateQuestionDTO struct {
	Position     int      `json:"position"`
	Text         string   `json:"text"`
	Type         string   `json:"type"`
	Options      []string `json:"options"`
	OptionImages []string `json:"option_images,omitempty"`
	Marks        int      `json:"marks"`
	ImageURL     string   `json:"image_url,omitempty"`
}

// CandidateAssessmentDTO is what a candidate sees before and while taking a test.
type CandidateAssessmentDTO struct {
	ID             uint                   `json:"id"`
	Title          string                 `json:"title"`
	Type           string                 `json:"type"`
	Description    string                 `json:"description,omitempty"`
	Instructions   string                 `json:"instructions,omitempty"`
	TimerMinutes   int                    `json:"timer_minutes"`
	TotalQuestions int                    `json:"total_questions"`
	Questions      []CandidateQuestionDTO `json:"questions"`
}

// AvailableAssessmentDTO annotates a candidate assessment with the
// application it was unlocked by.
type AvailableAssessmentDTO struct {
	CandidateAssessmentDTO
	JobTitle      string `json:"job_title"`
	JobID         uint   `json:"job_id"`
	ApplicationID uint   `json:"application_id"`
}

// StartAttemptResponseDTO echoes the state the client timer runs against.
type StartAttemptResponseDTO struct {
	AttemptID            uint      `json:"attempt_id"`
	AssessmentID         uint      `json:"assessment_id"`
	StartTime            time.Time `json:"start_time"`
	TimeRemainingSeconds int       `json:"time_remaining_seconds"`
	TotalMarks           int       `json:"total_marks"`
	CurrentQuestion      int       `json:"current_question"`
}

type AnswerSavedResponseDTO struct {
	AttemptID       uint `json:"attempt_id"`
	CurrentQuestion int  `json:"current_question"`
	AnswersCount    int  `json:"answers_count"`
}

type UploadedFileDTO struct {
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type CaptureResponseDTO struct {
	CaptureCount int    `json:"capture_count"`
	Message      string `json:"message"`
}

type ViolationResponseDTO struct {
	ViolationCount int `json:"violation_count"`
}

type ViolationDTO struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// SubmissionResultDTO is returned by attempt submission.
type SubmissionResultDTO struct {
	AttemptID      uint    `json:"attempt_id"`
	Score          int     `json:"score"`
	TotalMarks     int     `json:"total_marks"`
	Percentage     float64 `json:"percentage"`
	Result         string  `json:"result"`
	Status         string  `json:"status"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalQuestions int     `json:"total_questions"`
	TotalAnswered  int     `json:"total_answered"`
	Unanswered     int     `json:"unanswered"`
}

// ResultDTO is the candidate-facing finalized result.
type ResultDTO struct {
	Score          int            `json:"score"`
	TotalMarks     int            `json:"total_marks"`
	Percentage     float64        `json:"percentage"`
	Result         string         `json:"result"`
	CorrectAnswers int            `json:"correct_answers"`
	TotalQuestions int            `json:"total_questions"`
	Violations     []ViolationDTO `json:"violations"`
}

// ApplicationResultDTO pairs a result with the assessment it was earned on.
type ApplicationResultDTO struct {
	Result     ResultDTO            `json:"result"`
	Assessment AssessmentSummaryDTO `json:"assessment"`
}

type AssessmentSummaryDTO struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// AssessmentResultsDTO is the employer's results page: the assessment plus
// every finished attempt against it.
type AssessmentResultsDTO struct {
	Assessment AssessmentResponseDTO `json:"assessment"`
	Results    []AttemptSummaryDTO   `json:"results"`
}

// AttemptSummaryDTO is one row in the employer's results listing.
type AttemptSummaryDTO struct {
	AttemptID      uint       `json:"attempt_id"`
	CandidateID    uint       `json:"candidate_id"`
	ApplicationID  uint       `json:"application_id"`
	Status         string     `json:"status"`
	Score          *int       `json:"score,omitempty"`
	TotalMarks     int        `json:"total_marks"`
	Percentage     *float64   `json:"percentage,omitempty"`
	Result         string     `json:"result,omitempty"`
	ViolationCount int        `json:"violation_count"`
	EndTime        *time.Time `json:"end_time,omitempty"`
}

// AnswerDetailDTO is one stored answer in the employer's attempt drill-down.
type AnswerDetailDTO struct {
	QuestionIndex    int              `json:"question_index"`
	SelectedAnswer   *int             `json:"selected_answer,omitempty"`
	TextAnswer       *string          `json:"text_answer,omitempty"`
	UploadedFile     *UploadedFileDTO `json:"uploaded_file,omitempty"`
	TimeSpentSeconds int              `json:"time_spent_seconds"`
	AnsweredAt       time.Time        `json:"answered_at"`
}

// AttemptDetailDTO is the employer's full view of one attempt.
type AttemptDetailDTO struct {
	AttemptID     uint              `json:"attempt_id"`
	AssessmentID  uint              `json:"assessment_id"`
	CandidateID   uint              `json:"candidate_id"`
	ApplicationID uint              `json:"application_id"`
	JobID         uint              `json:"job_id"`
	Status        string            `json:"status"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       *time.Time        `json:"end_time,omitempty"`
	Score         *int              `json:"score,omitempty"`
	TotalMarks    int               `json:"total_marks"`
	Percentage    *float64          `json:"percentage,omitempty"`
	Result        string            `json:"result,omitempty"`
	Answers       []AnswerDetailDTO `json:"answers"`
	Violations    []ViolationDTO    `json:"violations"`
	CaptureCount  int               `json:"capture_count"`
}
