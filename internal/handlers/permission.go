package handlers

import (
	"net/http"

	"Tracker/internal/auth"
	dom "Tracker/internal/domain"
	"Tracker/internal/dto"
	"Tracker/internal/service"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	svc *service.TaskService
}

func NewPermissionHandler(svc *service.TaskService) *PermissionHandler {
	return &PermissionHandler{svc: svc}
}

// Set godoc
// @Summary      Share a task with a user
// @Description  Creates or overwrites the caller's grant for user_id. Owner only.
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                       true  "Task ID"
// @Param        body  body      dto.SetPermissionRequest  true  "Grant"
// @Success      200   {object}  dto.DetailResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /tasks/{id}/permissions [post]
func (h *PermissionHandler) Set(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SetPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, err := h.svc.SetPermission(c.Request.Context(), auth.UserIDFromContext(c), id, req.UserID, *req.CanRead, *req.CanUpdate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DetailResponse{Detail: "permissions updated"})
}

// List godoc
// @Summary      List grants on a task
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {array}   dto.PermissionResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /tasks/{id}/permissions [get]
func (h *PermissionHandler) List(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListPermissions(c.Request.Context(), auth.UserIDFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.PermissionResponse, len(list))
	for i, p := range list {
		out[i] = permissionToResponse(p)
	}
	c.JSON(http.StatusOK, out)
}

func permissionToResponse(p dom.Permission) dto.PermissionResponse {
	return dto.PermissionResponse{
		TaskID:    p.TaskID,
		UserID:    p.UserID,
		CanRead:   p.CanRead,
		CanUpdate: p.CanUpdate,
	}
}
