package dto

// QuestionCreateDTO is used within AssessmentCreateDTO for employer
// assessment creation and update.
type QuestionCreateDTO struct {
	Text          string   `json:"text" binding:"required"`
	Type          string   `json:"type" binding:"omitempty,oneof=mcq visual-mcq subjective upload image"`
	Options       []string `json:"options"`
	OptionImages  []string `json:"option_images"`
	CorrectAnswer *int     `json:"correct_answer"`
	Marks         int      `json:"marks" binding:"required,min=1"`
	Explanation   string   `json:"explanation"`
	ImageURL      string   `json:"image_url"`
}

// AssessmentCreateDTO is for an employer to create or replace an assessment
// with its full question set.
type AssessmentCreateDTO struct {
	Title             string              `json:"title" binding:"required"`
	Type              string              `json:"type"`
	Designation       string              `json:"designation"`
	CompanyName       string              `json:"company_name"`
	Description       string              `json:"description"`
	Instructions      string              `json:"instructions"`
	TimerMinutes      int                 `json:"timer_minutes"`
	PassingPercentage int                 `json:"passing_percentage"`
	Questions         []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}
