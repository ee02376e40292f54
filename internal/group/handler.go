package group

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateGroupRequest represents the payload for creating a group.
type CreateGroupRequest struct {
	Name      string `json:"name" binding:"required,max=255"`
	TeacherID string `json:"teacher_id" binding:"required,max=64"`
}

// IDRequest represents a URI ID parameter.
type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

type GroupHandler struct {
	service GroupService
	logger  *zap.Logger
}

// NewGroupHandler registers public group endpoints on router and the
// destructive ones on admin.
func NewGroupHandler(router, admin *gin.RouterGroup, service GroupService, logger *zap.Logger) *GroupHandler {
	h := &GroupHandler{service: service, logger: logger}
	router.POST("/groups", h.CreateGroup)
	router.GET("/groups", h.ListGroups)
	router.GET("/groups/:id", h.ReadGroupByID)
	admin.DELETE("/groups/:id", h.DeleteGroup)
	return h
}

// CreateGroup godoc
// @Summary      Create Group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateGroupRequest  true  "Group payload"
// @Success      201      {object}  Group
// @Failure      400      {object}  map[string]string
// @Failure      422      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid group payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and teacher_id required"})
		return
	}
	g, err := h.service.CreateGroup(c.Request.Context(), req.Name, req.TeacherID)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, g)
	case errors.Is(err, ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrOwnerMissing), errors.Is(err, ErrOwnerRole):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
	}
}

// ListGroups godoc
// @Summary      List Groups
// @Tags         groups
// @Produce      json
// @Param        teacher_id  query  string  false  "filter by owner"
// @Success      200  {array}   Group
// @Failure      500  {object}  map[string]string
// @Router       /groups [get]
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.service.ListGroups(c.Request.Context(), c.Query("teacher_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list groups"})
		return
	}
	c.JSON(http.StatusOK, groups)
}

// ReadGroupByID godoc
// @Summary      Get Group
// @Tags         groups
// @Produce      json
// @Param        id   path      int  true  "Group ID"
// @Success      200  {object}  Group
// @Failure      404  {object}  map[string]string
// @Router       /groups/{id} [get]
func (h *GroupHandler) ReadGroupByID(c *gin.Context) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing id"})
		return
	}
	g, err := h.service.ReadGroupByID(c.Request.Context(), uri.ID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, g)
	case errors.Is(err, ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch group"})
	}
}

// DeleteGroup godoc
// @Summary      Delete Group
// @Description  Removes the group and its attendance history
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "Group ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /admin/groups/{id} [delete]
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	var uri IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing id"})
		return
	}
	err := h.service.DeleteGroup(c.Request.Context(), uri.ID)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete group"})
	}
}
