package training

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mehmetcc/face-attendance-service/internal/activity"
	"go.uber.org/zap"
)

// StartResponse is {status: started} or {status: busy}.
type StartResponse struct {
	Status string `json:"status"`
}

type TrainingHandler struct {
	job    *Job
	logger *zap.Logger
}

func NewTrainingHandler(router, admin *gin.RouterGroup, job *Job, logger *zap.Logger) *TrainingHandler {
	h := &TrainingHandler{job: job, logger: logger}
	router.GET("/training/status", h.Status)
	admin.POST("/training", h.Start)
	return h
}

// Start godoc
// @Summary      Retrain the recognition model
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      202  {object}  StartResponse
// @Failure      409  {object}  StartResponse
// @Router       /admin/training [post]
func (h *TrainingHandler) Start(c *gin.Context) {
	err := h.job.Start()
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, StartResponse{Status: "started"})
	case errors.Is(err, activity.ErrBusy):
		c.JSON(http.StatusConflict, StartResponse{Status: "busy"})
	default:
		h.logger.Error("training start failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start training"})
	}
}

// Status godoc
// @Summary      Training progress
// @Tags         training
// @Produce      json
// @Success      200  {object}  State
// @Router       /training/status [get]
func (h *TrainingHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.job.Status())
}
