package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlbertPrograms/nodecs-backend/internal/middleware"
	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/AlbertPrograms/nodecs-backend/internal/response"
	"github.com/AlbertPrograms/nodecs-backend/internal/service"
)

// ResultHandler serves the archived, scored exam results.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// GetResults godoc
// POST /api/v1/get-exam-results
// Teachers and admins receive every archived result, students only
// their own, each scored against the owning exam's point values.
func (h *ResultHandler) GetResults(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.resultService.ListForRequester(c.Request.Context(), identity)
	if err != nil {
		failFromErr(c, err)
		return
	}

	if results == nil {
		results = []model.ScoredResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}
