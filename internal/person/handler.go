package person

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextUserKey is the key under which the authenticated claims are stored in Gin context.
const ContextUserKey = "user"

// CreatePersonRequest represents the payload for enrolling a new person.
// @Description payload to register a new person
// @Property user_id body string false "institutional id, generated when empty"
// @Property name    body string true  "display name"
// @Property role    body string false "student (default), teacher or admin"
type CreatePersonRequest struct {
	UserID string `json:"user_id" binding:"omitempty,max=64"`
	Name   string `json:"name" binding:"required,max=255"`
	Role   Role   `json:"role" binding:"omitempty,oneof=student teacher admin"`
}

// EnrollResponse is returned once the person record is saved.
// @Description enrollment result
type EnrollResponse struct {
	Status    string `json:"status"`
	StudentID string `json:"student_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// IDRequest represents a URI ID parameter.
type IDRequest struct {
	ID string `uri:"id" binding:"required,max=64"`
}

// PersonHandler handles HTTP requests for person resources.
type PersonHandler struct {
	router  *gin.RouterGroup
	service PersonService
	logger  *zap.Logger
}

// NewPersonHandler registers person endpoints on the given router group.
func NewPersonHandler(router *gin.RouterGroup, service PersonService, logger *zap.Logger) *PersonHandler {
	h := &PersonHandler{router: router, service: service, logger: logger}
	h.router.POST("/persons", h.CreatePerson)
	h.router.GET("/persons", h.ListPersons)
	h.router.GET("/persons/:id", h.ReadPersonByID)
	return h
}

func enrollError(c *gin.Context, code int, message string) {
	c.JSON(code, EnrollResponse{Status: "error", Message: message})
}

// CreatePerson godoc
// @Summary      Enroll Person
// @Description  Save a person record; face capture is triggered separately
// @Tags         persons
// @Accept       json
// @Produce      json
// @Param        payload  body      CreatePersonRequest  true  "Person payload"
// @Success      201      {object}  EnrollResponse
// @Failure      400      {object}  EnrollResponse
// @Failure      409      {object}  EnrollResponse
// @Failure      500      {object}  EnrollResponse
// @Router       /persons [post]
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create payload", zap.Error(err))
		enrollError(c, http.StatusBadRequest, "name required")
		return
	}
	p, err := h.service.CreatePerson(c.Request.Context(), req.UserID, req.Name, req.Role)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, EnrollResponse{Status: "success", StudentID: p.UserID})
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidRole), errors.Is(err, ErrInvalidID):
		enrollError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPersonAlreadyExists):
		enrollError(c, http.StatusConflict, "user id already registered")
	default:
		h.logger.Error("service.CreatePerson failed", zap.Error(err))
		enrollError(c, http.StatusInternalServerError, "could not save person")
	}
}

// ListPersons godoc
// @Summary      List Persons
// @Tags         persons
// @Produce      json
// @Param        role  query     string  false  "filter by role"
// @Success      200   {array}   Person
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /persons [get]
func (h *PersonHandler) ListPersons(c *gin.Context) {
	persons, err := h.service.ListPersons(c.Request.Context(), Role(c.Query("role")))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, persons)
	case errors.Is(err, ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list persons"})
	}
}

// ReadPersonByID godoc
// @Summary      Get Person by ID
// @Tags         persons
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  Person
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /persons/{id} [get]
func (h *PersonHandler) ReadPersonByID(c *gin.Context) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing id"})
		return
	}
	p, err := h.service.ReadPersonByID(c.Request.Context(), uri.ID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p)
	case errors.Is(err, ErrPersonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "person not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch person"})
	}
}
