package candidate

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/talentbridge/assessment/internal/apperr"
	"github.com/talentbridge/assessment/internal/dto"
	"github.com/talentbridge/assessment/internal/middleware"
	"github.com/talentbridge/assessment/internal/service"
)

type AttemptController struct {
	assessmentService service.AssessmentService
	attemptService    service.AttemptService
	submissionService service.SubmissionService
}

func NewAttemptController(
	assessmentService service.AssessmentService,
	attemptService service.AttemptService,
	submissionService service.SubmissionService,
) *AttemptController {
	return &AttemptController{
		assessmentService: assessmentService,
		attemptService:    attemptService,
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

// readUpload pulls a multipart file into memory for the service layer.
func readUpload(header *multipart.FileHeader) (service.FileUpload, error) {
	f, err := header.Open()
	if err != nil {
		return service.FileUpload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.FileUpload{}, err
	}
	return service.FileUpload{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Data:     data,
	}, nil
}

// GetAvailableAssessments godoc
// @Summary (Candidate) List assessments unlocked by applications
// @Description Assessments whose linked application is still in the available state. Correct answers are never included.
// @Tags Candidate - Assessments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AvailableAssessmentDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /available-assessments [get]
func (c *AttemptController) GetAvailableAssessments(ctx *gin.Context) {
	resp, err := c.assessmentService.GetAvailableAssessments(middleware.UserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAssessment godoc
// @Summary (Candidate) Fetch an assessment for taking
// @Tags Candidate - Assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assessment ID"
// @Success 200 {object} dto.CandidateAssessmentDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{id} [get]
func (c *AttemptController) GetAssessment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.assessmentService.GetAssessmentForCandidate(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// StartAttempt godoc
// @Summary (Candidate) Start or resume an attempt
// @Description Opens the attempt for this application, or resumes a clean in-progress one. Resuming resets the countdown. Completed and expired attempts cannot be retaken; a violation-flagged attempt is locked out entirely.
// @Tags Candidate - Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartAttemptRequest true "Assessment, job and application identifiers"
// @Success 200 {object} dto.StartAttemptResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Job ID mismatch or invalid input"
// @Failure 403 {object} dto.ErrorResponse "Attempt locked due to violations"
// @Failure 404 {object} dto.ErrorResponse "Assessment or application not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already finished"
// @Router /attempts/start [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Assessment ID, Job ID, and Application ID are required"})
		return
	}

	resp, err := c.attemptService.StartAttempt(middleware.UserID(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitAnswer godoc
// @Summary (Candidate) Save an answer
// @Description Upserts the answer for one question index; re-answering replaces the stored value.
// @Tags Candidate - Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitAnswerRequest true "Answer payload"
// @Success 200 {object} dto.AnswerSavedResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid answer or attempt not in progress"
// @Failure 404 {object} dto.ErrorResponse "Attempt or question not found"
// @Router /attempts/answer [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.attemptService.SubmitAnswer(middleware.UserID(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitFileAnswer godoc
// @Summary (Candidate) Upload a file answer
// @Description Stores an uploaded file as the answer for an upload/image question. Multipart form: file, attempt_id, question_index, time_spent.
// @Tags Candidate - Attempts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Answer file"
// @Param attempt_id formData int true "Attempt ID"
// @Param question_index formData int true "Question index"
// @Param time_spent formData int false "Seconds spent on the question"
// @Success 200 {object} dto.UploadedFileDTO
// @Failure 400 {object} dto.ErrorResponse "Missing file or wrong question type"
// @Failure 404 {object} dto.ErrorResponse "Attempt or question not found"
// @Router /attempts/file-answer [post]
func (c *AttemptController) SubmitFileAnswer(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "No file uploaded"})
		return
	}
	attemptID, err := strconv.ParseUint(ctx.PostForm("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Attempt ID is required"})
		return
	}
	questionIndex, err := strconv.Atoi(ctx.PostForm("question_index"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid question index"})
		return
	}
	timeSpent, _ := strconv.Atoi(ctx.PostForm("time_spent"))

	upload, err := readUpload(header)
	if err != nil {
		log.Error().Err(err).Msg("SubmitFileAnswer: failed to read uploaded file")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to read uploaded file"})
		return
	}

	resp, err := c.attemptService.SubmitFileAnswer(middleware.UserID(ctx), uint(attemptID), questionIndex, timeSpent, upload)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitCapture godoc
// @Summary (Candidate) Upload a proctoring snapshot
// @Description Appends one webcam capture to the attempt. Hard limit of 5 per attempt.
// @Tags Candidate - Attempts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Capture image"
// @Param attempt_id formData int true "Attempt ID"
// @Success 200 {object} dto.CaptureResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Missing capture or attempt not in progress"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Maximum captures reached"
// @Router /attempts/capture [post]
func (c *AttemptController) SubmitCapture(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "No capture uploaded"})
		return
	}
	attemptID, err := strconv.ParseUint(ctx.PostForm("attempt_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Attempt ID is required"})
		return
	}

	upload, err := readUpload(header)
	if err != nil {
		log.Error().Err(err).Msg("SubmitCapture: failed to read capture")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to read capture"})
		return
	}

	resp, err := c.attemptService.SubmitCapture(middleware.UserID(ctx), uint(attemptID), upload)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// RecordViolation godoc
// @Summary (Candidate) Report an integrity violation
// @Description Appends a violation event to the attempt's permanent log. A flagged attempt can never be restarted.
// @Tags Candidate - Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RecordViolationRequest true "Violation event"
// @Success 200 {object} dto.ViolationResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Attempt not in progress"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/violation [post]
func (c *AttemptController) RecordViolation(ctx *gin.Context) {
	var req dto.RecordViolationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Attempt ID and violation type are required"})
		return
	}

	resp, err := c.attemptService.RecordViolation(middleware.UserID(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitAttempt godoc
// @Summary (Candidate) Submit the attempt for grading
// @Description Scores the attempt against the current question set, applies the elapsed-time check and finalizes the record as completed or expired.
// @Tags Candidate - Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Attempt ID"
// @Param request body dto.SubmitAttemptRequest false "Client-batched violations"
// @Success 200 {object} dto.SubmissionResultDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already completed"
// @Router /attempts/{attempt_id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	attemptID, ok := pathID(ctx, "attempt_id")
	if !ok {
		return
	}
	// An empty body is a plain submit with no client-batched violations.
	var req dto.SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.submissionService.SubmitAttempt(middleware.UserID(ctx), attemptID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetResult godoc
// @Summary (Candidate) Fetch a finalized result
// @Description Only completed attempts have retrievable results; anything else reads as not found.
// @Tags Candidate - Results
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.ResultDTO
// @Failure 404 {object} dto.ErrorResponse "Result not found"
// @Router /attempts/{attempt_id}/result [get]
func (c *AttemptController) GetResult(ctx *gin.Context) {
	attemptID, ok := pathID(ctx, "attempt_id")
	if !ok {
		return
	}
	resp, err := c.submissionService.GetResult(middleware.UserID(ctx), attemptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetResultByApplication godoc
// @Summary (Candidate) Fetch a finalized result by application
// @Tags Candidate - Results
// @Produce json
// @Security BearerAuth
// @Param application_id path int true "Application ID"
// @Success 200 {object} dto.ApplicationResultDTO
// @Failure 404 {object} dto.ErrorResponse "Result not found"
// @Router /applications/{application_id}/result [get]
func (c *AttemptController) GetResultByApplication(ctx *gin.Context) {
	applicationID, ok := pathID(ctx, "application_id")
	if !ok {
		return
	}
	resp, err := c.submissionService.GetResultByApplication(middleware.UserID(ctx), applicationID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
