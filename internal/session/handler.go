package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartRequest optionally selects the group to mark attendance for.
type StartRequest struct {
	GroupID uint `json:"group_id"`
}

type SessionHandler struct {
	machine *Machine
	logger  *zap.Logger
}

// NewSessionHandler registers the session endpoints. Extra middleware, such
// as a rate limiter, applies to the start endpoint only.
func NewSessionHandler(router *gin.RouterGroup, machine *Machine, logger *zap.Logger, startMiddleware ...gin.HandlerFunc) *SessionHandler {
	h := &SessionHandler{machine: machine, logger: logger}
	router.POST("/attendance/session", append(startMiddleware, h.Start)...)
	router.GET("/attendance/session", h.View)
	router.GET("/attendance/session/result", h.Result)
	return h
}

// Start godoc
// @Summary      Start attendance session
// @Description  Accepts a scan and returns immediately; poll the result endpoint for the outcome
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Param        payload  body      StartRequest  false  "Group selection"
// @Success      202      {object}  StartResult
// @Failure      409      {object}  map[string]string
// @Failure      429      {object}  map[string]string
// @Router       /attendance/session [post]
func (h *SessionHandler) Start(c *gin.Context) {
	var req StartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
	}
	res, err := h.machine.Start(req.GroupID)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, res)
	case errors.Is(err, ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"status": "busy"})
	default:
		h.logger.Error("session start failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "could not start session"})
	}
}

// View godoc
// @Summary      Session phase
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  View
// @Router       /attendance/session [get]
func (h *SessionHandler) View(c *gin.Context) {
	c.JSON(http.StatusOK, h.machine.View())
}

// Result godoc
// @Summary      Session result
// @Description  Returns {status: none} until the current session publishes its outcome
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  Outcome
// @Router       /attendance/session/result [get]
func (h *SessionHandler) Result(c *gin.Context) {
	c.JSON(http.StatusOK, h.machine.Result())
}
