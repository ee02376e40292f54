package ledger

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LedgerHandler struct {
	service LedgerService
	logger  *zap.Logger
}

func NewLedgerHandler(router *gin.RouterGroup, service LedgerService, logger *zap.Logger) *LedgerHandler {
	h := &LedgerHandler{service: service, logger: logger}
	router.GET("/attendance/records", h.Records)
	router.GET("/attendance/records.csv", h.ExportCSV)
	router.GET("/attendance/stats", h.Stats)
	return h
}

// StatsResponse is shaped for the dashboard chart: parallel day and count series.
type StatsResponse struct {
	Dates  []string `json:"dates"`
	Counts []int    `json:"counts"`
}

// Records godoc
// @Summary      List Attendance
// @Tags         attendance
// @Produce      json
// @Param        period  query     string  false  "daily, weekly or all"
// @Success      200     {array}   Record
// @Failure      400     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /attendance/records [get]
func (h *LedgerHandler) Records(c *gin.Context) {
	records, err := h.service.Records(c.Request.Context(), Period(c.DefaultQuery("period", string(Daily))))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, records)
	case errors.Is(err, ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list attendance"})
	}
}

// ExportCSV godoc
// @Summary      Export Attendance
// @Tags         attendance
// @Produce      text/csv
// @Param        period  query  string  false  "daily, weekly or all"
// @Success      200     {file} file
// @Failure      400     {object}  map[string]string
// @Router       /attendance/records.csv [get]
func (h *LedgerHandler) ExportCSV(c *gin.Context) {
	body, err := h.service.ExportCSV(c.Request.Context(), Period(c.DefaultQuery("period", string(All))))
	switch {
	case err == nil:
		c.Header("Content-Disposition", `attachment; filename="attendance.csv"`)
		c.Data(http.StatusOK, "text/csv", body)
	case errors.Is(err, ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export attendance"})
	}
}

// Stats godoc
// @Summary      Attendance per day
// @Description  Counts for the last 30 days, oldest first
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  StatsResponse
// @Failure      500  {object}  map[string]string
// @Router       /attendance/stats [get]
func (h *LedgerHandler) Stats(c *gin.Context) {
	counts, err := h.service.DailyCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
		return
	}
	resp := StatsResponse{Dates: make([]string, len(counts)), Counts: make([]int, len(counts))}
	for i, dc := range counts {
		resp.Dates[i] = dc.Day
		resp.Counts[i] = dc.Count
	}
	c.JSON(http.StatusOK, resp)
}
