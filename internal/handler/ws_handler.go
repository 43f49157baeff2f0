package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AlbertPrograms/nodecs-backend/internal/middleware"
	"github.com/AlbertPrograms/nodecs-backend/internal/service"
)

const clockInterval = time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the live exam clock over WebSocket.
type WSHandler struct {
	examService *service.ExamService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(examService *service.ExamService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		examService: examService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

type clockTick struct {
	ServerTime       time.Time `json:"server_time"`
	FinishTime       time.Time `json:"finish_time"`
	RemainingSeconds int       `json:"remaining_seconds"`
	TaskCount        int       `json:"task_count"`
	ActiveTaskIndex  int       `json:"active_task_index"`
	Successes        []bool    `json:"successes"`
}

// ExamClockStream godoc
// WS /ws/v1/exam-clock
// Pushes the authoritative session clock once per second so clients
// never trust local time. Closes when the session ends or expires.
func (h *WSHandler) ExamClockStream(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	details, err := h.examService.Details(identity)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no exam in progress"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("username", identity.Username).Logger()
	wsLog.Info().Time("finish", details.FinishTime).Msg("Exam clock connected")

	ticker := time.NewTicker(clockInterval)
	defer ticker.Stop()

	reqCtx := c.Request.Context()
	for {
		// Re-read each tick: the session may have been finished or
		// swept from another request.
		details, err := h.examService.Details(identity)
		if err != nil {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "exam ended"))
			return
		}

		now := time.Now()
		remaining := int(details.FinishTime.Sub(now).Seconds())
		if remaining < 0 {
			remaining = 0
		}

		tick := clockTick{
			ServerTime:       now,
			FinishTime:       details.FinishTime,
			RemainingSeconds: remaining,
			TaskCount:        details.TaskCount,
			ActiveTaskIndex:  details.ActiveTaskIndex,
			Successes:        details.Successes,
		}
		if err := conn.WriteJSON(tick); err != nil {
			wsLog.Debug().Msg("Exam clock disconnected")
			return
		}

		select {
		case <-reqCtx.Done():
			wsLog.Debug().Msg("Exam clock context closed")
			return
		case <-ticker.C:
		}
	}
}
