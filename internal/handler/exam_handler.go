package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlbertPrograms/nodecs-backend/internal/middleware"
	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/AlbertPrograms/nodecs-backend/internal/response"
	"github.com/AlbertPrograms/nodecs-backend/internal/service"
	"github.com/AlbertPrograms/nodecs-backend/internal/validator"
)

// ExamHandler handles the exam lifecycle endpoints: registration,
// session start and navigation, submission and finalization.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// GetAvailableExams godoc
// POST /api/v1/get-available-exams
// Lists exams the requester can still take, annotated with the
// registration window flags.
func (h *ExamHandler) GetAvailableExams(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	exams, err := h.examService.GetAvailableExams(c.Request.Context(), identity)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// Register godoc
// POST /api/v1/exam-registration
// Adds the requester to the exam roster. Closes 24 hours before the
// earliest start.
func (h *ExamHandler) Register(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ExamIDRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.examService.Register(c.Request.Context(), identity, req.ID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.Fail(c, http.StatusForbidden, response.ErrRegistrationClosed)
			return
		}
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"registered": true})
}

// Unregister godoc
// POST /api/v1/exam-unregistration
// Removes the requester from the roster. Closes 36 hours before the
// earliest start.
func (h *ExamHandler) Unregister(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ExamIDRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.examService.Unregister(c.Request.Context(), identity, req.ID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.Fail(c, http.StatusForbidden, response.ErrUnregistrationClosed)
			return
		}
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unregistered": true})
}

// Start godoc
// POST /api/v1/start-exam
// Opens the requester's exam session inside the start window.
func (h *ExamHandler) Start(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ExamIDRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.examService.Start(c.Request.Context(), identity, req.ID)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.Fail(c, http.StatusForbidden, response.ErrExamNotStartable)
			return
		}
		if errors.Is(err, service.ErrConflict) {
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
			return
		}
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// GetDetails godoc
// POST /api/v1/get-exam-details
// Returns the live session summary: task count, cursor, per-task
// successes and finish time.
func (h *ExamHandler) GetDetails(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	details, err := h.examService.Details(identity)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, details)
}

// GetInProgress godoc
// POST /api/v1/get-exam-in-progress
// Reports whether the requester has a live exam session. Clients call
// this on load to decide whether to resume the exam view.
func (h *ExamHandler) GetInProgress(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"in_progress": h.examService.InProgress(identity)})
}

// GetTask godoc
// POST /api/v1/get-exam-task
// Moves the active-task cursor to the requested index and returns that
// task with its saved code.
func (h *ExamHandler) GetTask(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SelectExamTaskRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.examService.SelectTask(c.Request.Context(), identity, req.Index)
	if err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			response.Fail(c, http.StatusBadRequest, response.ErrTaskIndexOutOfRange)
			return
		}
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// StoreProgress godoc
// POST /api/v1/store-exam-task-progress
// Saves editor content into the active task's slot.
func (h *ExamHandler) StoreProgress(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ExamCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.examService.StoreProgress(identity, req.Code); err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stored": true})
}

// Submit godoc
// POST /api/v1/submit-exam-task
// Grades the active task and records the verdict in its slot.
func (h *ExamHandler) Submit(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ExamCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.examService.Submit(c.Request.Context(), identity, req.Code)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, out)
}

// Finish godoc
// POST /api/v1/finish-exam
// Archives the session into the result store and ends it.
func (h *ExamHandler) Finish(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	result, err := h.examService.Finish(c.Request.Context(), identity)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
