package enrollment

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mehmetcc/face-attendance-service/internal/activity"
	"github.com/mehmetcc/face-attendance-service/internal/person"
	"go.uber.org/zap"
)

const maxUploadFiles = 50

// CaptureResponse is returned when a burst capture is requested.
// @Description capture trigger result
type CaptureResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// UploadResponse reports how many uploaded images were kept.
type UploadResponse struct {
	Status string `json:"status"`
	Saved  int    `json:"saved"`
}

type faceURI struct {
	ID   string `uri:"id" binding:"required,max=64"`
	File string `uri:"file" binding:"required,max=128"`
}

type EnrollmentHandler struct {
	service EnrollmentService
	logger  *zap.Logger
}

// NewEnrollmentHandler registers capture endpoints on router and the image
// management endpoints on admin.
func NewEnrollmentHandler(router, admin *gin.RouterGroup, service EnrollmentService, logger *zap.Logger) *EnrollmentHandler {
	h := &EnrollmentHandler{service: service, logger: logger}
	router.POST("/persons/:id/capture", h.StartCapture)
	router.POST("/persons/:id/faces", h.Upload)
	router.GET("/enrollment/status", h.Status)

	admin.DELETE("/persons/:id", h.RemovePerson)
	admin.GET("/persons/:id/faces", h.Faces)
	admin.GET("/persons/:id/faces/:file", h.Face)
	admin.DELETE("/persons/:id/faces/:file", h.RemoveFace)
	return h
}

func captureError(c *gin.Context, code int, message string) {
	c.JSON(code, CaptureResponse{Status: "error", Message: message})
}

// StartCapture godoc
// @Summary      Capture enrollment images
// @Description  Saves a burst of frames for a saved person in the background; poll /enrollment/status
// @Tags         enrollment
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      202  {object}  CaptureResponse
// @Failure      404  {object}  CaptureResponse
// @Failure      409  {object}  CaptureResponse
// @Router       /persons/{id}/capture [post]
func (h *EnrollmentHandler) StartCapture(c *gin.Context) {
	id := c.Param("id")
	err := h.service.StartCapture(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, CaptureResponse{Status: "capturing"})
	case errors.Is(err, person.ErrPersonNotFound):
		captureError(c, http.StatusNotFound, "person not found")
	case errors.Is(err, activity.ErrBusy):
		captureError(c, http.StatusConflict, "camera busy")
	default:
		h.logger.Error("start capture failed", zap.String("user_id", id), zap.Error(err))
		captureError(c, http.StatusInternalServerError, "could not start capture")
	}
}

// Status godoc
// @Summary      Enrollment capture status
// @Tags         enrollment
// @Produce      json
// @Success      200  {object}  CaptureStatus
// @Router       /enrollment/status [get]
func (h *EnrollmentHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CaptureStatus())
}

// Upload godoc
// @Summary      Upload enrollment images
// @Tags         enrollment
// @Accept       multipart/form-data
// @Produce      json
// @Param        id      path      string  true  "User ID"
// @Param        images  formData  file    true  "face images"
// @Success      200     {object}  UploadResponse
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /persons/{id}/faces [post]
func (h *EnrollmentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 || len(files) > maxUploadFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": "between 1 and 50 images required"})
		return
	}

	readers := make([]io.Reader, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			continue
		}
		defer f.Close()
		readers = append(readers, f)
	}

	saved, err := h.service.Upload(c.Request.Context(), c.Param("id"), readers)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, UploadResponse{Status: "success", Saved: saved})
	case errors.Is(err, ErrNoImages):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, person.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
	case errors.Is(err, activity.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store images"})
	}
}

// RemovePerson godoc
// @Summary      Delete Person
// @Description  Removes the person with their attendance history and enrollment images
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/persons/{id} [delete]
func (h *EnrollmentHandler) RemovePerson(c *gin.Context) {
	err := h.service.RemovePerson(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, person.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
	case errors.Is(err, activity.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete person"})
	}
}

// Faces godoc
// @Summary      List enrollment images
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {array}   string
// @Failure      404  {object}  map[string]string
// @Router       /admin/persons/{id}/faces [get]
func (h *EnrollmentHandler) Faces(c *gin.Context) {
	names, err := h.service.Faces(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, names)
	case errors.Is(err, person.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list images"})
	}
}

// Face godoc
// @Summary      Fetch an enrollment image
// @Tags         admin
// @Security     BearerAuth
// @Produce      image/jpeg
// @Param        id    path  string  true  "User ID"
// @Param        file  path  string  true  "File name"
// @Success      200   {file}  file
// @Failure      404   {object}  map[string]string
// @Router       /admin/persons/{id}/faces/{file} [get]
func (h *EnrollmentHandler) Face(c *gin.Context) {
	var uri faceURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid path"})
		return
	}
	path, err := h.service.FacePath(uri.ID, uri.File)
	switch {
	case err == nil:
		c.File(path)
	case errors.Is(err, ErrFaceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidName), errors.Is(err, person.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read image"})
	}
}

// RemoveFace godoc
// @Summary      Delete an enrollment image
// @Tags         admin
// @Security     BearerAuth
// @Param        id    path  string  true  "User ID"
// @Param        file  path  string  true  "File name"
// @Success      204
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/persons/{id}/faces/{file} [delete]
func (h *EnrollmentHandler) RemoveFace(c *gin.Context) {
	var uri faceURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid path"})
		return
	}
	err := h.service.RemoveFace(c.Request.Context(), uri.ID, uri.File)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrFaceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidName), errors.Is(err, person.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, activity.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete image"})
	}
}
