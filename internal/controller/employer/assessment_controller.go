package employer

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/talentbridge/assessment/internal/apperr"
	"github.com/talentbridge/assessment/internal/dto"
	"github.com/talentbridge/assessment/internal/middleware"
	"github.com/talentbridge/assessment/internal/service"
)

type AssessmentController struct {
	assessmentService service.AssessmentService
	submissionService service.SubmissionService
}

func NewAssessmentController(assessmentService service.AssessmentService, submissionService service.SubmissionService) *AssessmentController {
	return &AssessmentController{
		assessmentService: assessmentService,
		submissionService: submissionService,
	}
}

func respondError(ctx *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		ctx.JSON(status, dto.ErrorResponse{Message: "Internal server error", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(status, dto.ErrorResponse{Message: err.Error()})
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

// CreateAssessment godoc
// @Summary (Employer) Create a new assessment
// @Description Employer creates an assessment with its question set. MCQ questions require at least 2 options and a correct answer.
// @Tags Employer - Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assessment body dto.AssessmentCreateDTO true "Assessment data including questions"
// @Success 201 {object} dto.AssessmentResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /employer/assessments [post]
func (c *AssessmentController) CreateAssessment(ctx *gin.Context) {
	var req dto.AssessmentCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateAssessment: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.assessmentService.CreateAssessment(middleware.UserID(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetAssessments godoc
// @Summary (Employer) List own assessments
// @Tags Employer - Assessments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AssessmentResponseDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /employer/assessments [get]
func (c *AssessmentController) GetAssessments(ctx *gin.Context) {
	resp, err := c.assessmentService.GetAssessments(middleware.UserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAssessmentDetails godoc
// @Summary (Employer) Get one assessment with questions and answers
// @Tags Employer - Assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Success 200 {object} dto.AssessmentResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /employer/assessments/{id} [get]
func (c *AssessmentController) GetAssessmentDetails(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.assessmentService.GetAssessmentDetails(middleware.UserID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateAssessment godoc
// @Summary (Employer) Replace an assessment's metadata and question set
// @Description Edits apply immediately, including to attempts currently in progress; scoring always reads the current question set.
// @Tags Employer - Assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Param assessment body dto.AssessmentCreateDTO true "Replacement assessment data"
// @Success 200 {object} dto.AssessmentResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /employer/assessments/{id} [put]
func (c *AssessmentController) UpdateAssessment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssessmentCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.assessmentService.UpdateAssessment(middleware.UserID(ctx), id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteAssessment godoc
// @Summary (Employer) Delete an assessment
// @Tags Employer - Assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /employer/assessments/{id} [delete]
func (c *AssessmentController) DeleteAssessment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.assessmentService.DeleteAssessment(middleware.UserID(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Assessment deleted successfully"})
}

// GetAssessmentResults godoc
// @Summary (Employer) List finished attempts for an assessment
// @Description Returns every completed or expired attempt, newest first, with violation counts.
// @Tags Employer - Results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Success 200 {object} dto.AssessmentResultsDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /employer/assessments/{id}/results [get]
func (c *AssessmentController) GetAssessmentResults(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.submissionService.GetAssessmentResults(middleware.UserID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAttemptDetails godoc
// @Summary (Employer) Inspect one attempt
// @Description Full drill-down into a single attempt: answers, violations, capture count. Only the owning employer may read it.
// @Tags Employer - Results
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 403 {object} dto.ErrorResponse "Attempt belongs to another employer's assessment"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /employer/attempts/{attempt_id} [get]
func (c *AssessmentController) GetAttemptDetails(ctx *gin.Context) {
	attemptID, ok := pathID(ctx, "attempt_id")
	if !ok {
		return
	}
	resp, err := c.submissionService.GetAttemptDetails(middleware.UserID(ctx), attemptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
