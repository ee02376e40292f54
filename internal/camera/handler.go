package camera

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const mjpegBoundary = "frame"

type StreamHandler struct {
	live    *Live
	quality int
	logger  *zap.Logger
}

func NewStreamHandler(router *gin.RouterGroup, live *Live, logger *zap.Logger) *StreamHandler {
	h := &StreamHandler{live: live, quality: 70, logger: logger}
	router.GET("/camera/stream", h.Stream)
	return h
}

// Stream godoc
// @Summary      Live camera feed
// @Description  MJPEG stream of the frames read by the current session or enrollment capture. Ends when the camera is released.
// @Tags         camera
// @Produce      multipart/x-mixed-replace
// @Success      200
// @Failure      409  {object}  map[string]string
// @Router       /camera/stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	if !h.live.Active() {
		c.JSON(http.StatusConflict, gin.H{"error": ErrIdle.Error()})
		return
	}

	c.Header("Content-Type", "multipart/x-mixed-replace; boundary="+mjpegBoundary)
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	var (
		last uint64
		buf  bytes.Buffer
	)
	for {
		f, err := h.live.Next(ctx, last)
		if err != nil {
			if !errors.Is(err, ErrIdle) {
				h.logger.Debug("stream client gone", zap.Error(err))
			}
			return
		}
		last = f.Seq

		buf.Reset()
		if err := imaging.Encode(&buf, f.Image, imaging.JPEG, imaging.JPEGQuality(h.quality)); err != nil {
			h.logger.Warn("frame encode failed", zap.Uint64("seq", f.Seq), zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(c.Writer, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", mjpegBoundary, buf.Len()); err != nil {
			return
		}
		if _, err := c.Writer.Write(buf.Bytes()); err != nil {
			return
		}
		if _, err := c.Writer.Write([]byte("\r\n")); err != nil {
			return
		}
		c.Writer.Flush()
	}
}
