package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlbertPrograms/nodecs-backend/internal/middleware"
	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/AlbertPrograms/nodecs-backend/internal/response"
	"github.com/AlbertPrograms/nodecs-backend/internal/service"
	"github.com/AlbertPrograms/nodecs-backend/internal/validator"
)

// TaskHandler handles practice and testing task endpoints. Exam-mode
// task requests are delegated to the exam session.
type TaskHandler struct {
	taskService *service.TaskService
	examService *service.ExamService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *service.TaskService, examService *service.ExamService) *TaskHandler {
	return &TaskHandler{taskService: taskService, examService: examService}
}

// GetTask godoc
// POST /api/v1/get-task
// Issues or resumes a task token for the requested mode. In exam mode
// the active exam task is returned instead, without minting a token.
func (h *TaskHandler) GetTask(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.GetTaskRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	mode := model.TaskMode(req.Mode)
	if !mode.Valid() {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidMode)
		return
	}

	if mode == model.ModeExam {
		view, err := h.examService.ActiveTask(c.Request.Context(), identity)
		if err != nil {
			failFromErr(c, err)
			return
		}
		response.Success(c, http.StatusOK, view)
		return
	}

	view, err := h.taskService.GetTask(c.Request.Context(), identity, mode, req.TaskID)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// StoreProgress godoc
// POST /api/v1/store-task-progress
// Saves editor content against a live task token.
func (h *TaskHandler) StoreProgress(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.TokenCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.taskService.StoreProgress(identity, req.Token, req.Code); err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stored": true})
}

// Submit godoc
// POST /api/v1/submit-task
// Grades the submitted code. A fully passing run consumes the token;
// a failing run keeps it alive with the submitted code saved.
func (h *TaskHandler) Submit(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.TokenCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	out, err := h.taskService.Submit(c.Request.Context(), identity, req.Token, req.Code)
	if err != nil {
		failFromErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, out)
}
