package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/collab-docs-api/internal/dto"
	apierrors "github.com/yukikurage/collab-docs-api/internal/errors"
	"github.com/yukikurage/collab-docs-api/internal/middleware"
	"github.com/yukikurage/collab-docs-api/internal/services"
	"github.com/yukikurage/collab-docs-api/internal/utils"
)

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
	adminListings    bool
}

// NewWorkspaceHandler creates a handler; adminListings lets /workspace/all span every owner.
func NewWorkspaceHandler(workspaceService *services.WorkspaceService, adminListings bool) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		adminListings:    adminListings,
	}
}

// CreateWorkspace creates a workspace owned by the caller
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateWorkspaceRequest struct {
		Name string `json:"name"`
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.Create(c.Request.Context(), identity, req.Name)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*workspace))
}

// ListAllWorkspaces returns every workspace when admin listings are on, otherwise the caller's own
func (h *WorkspaceHandler) ListAllWorkspaces(c *gin.Context) {
	if !h.adminListings {
		h.ListMyWorkspaces(c)
		return
	}

	params := utils.GetPaginationParams(c)
	workspaces, total, err := h.workspaceService.ListAll(c.Request.Context(), params)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceListResponse(workspaces, params, total))
}

// ListMyWorkspaces returns the workspaces owned by the caller
func (h *WorkspaceHandler) ListMyWorkspaces(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	workspaces, total, err := h.workspaceService.ListByOwner(c.Request.Context(), identity.UserID, params)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceListResponse(workspaces, params, total))
}

// GetWorkspace returns one workspace owned by the caller
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	identity, id, ok := identityAndID(c)
	if !ok {
		return
	}

	workspace, err := h.workspaceService.Get(c.Request.Context(), id, identity)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*workspace))
}

// UpdateWorkspace renames a workspace; the id travels in the body
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateWorkspaceRequest struct {
		ID   uint64 `json:"id" binding:"required"`
		Name string `json:"name"`
	}

	var req UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "A numeric workspace id is required")
		return
	}

	workspace, err := h.workspaceService.Update(c.Request.Context(), req.ID, identity, services.UpdateWorkspaceInput{
		Name: req.Name,
	})
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*workspace))
}

// DeleteWorkspace deletes a workspace owned by the caller
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	identity, id, ok := identityAndID(c)
	if !ok {
		return
	}

	if err := h.workspaceService.Delete(c.Request.Context(), id, identity); err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Workspace deleted successfully",
	})
}

// identityAndID reads the caller and the :id parameter, answering the request itself on failure
func identityAndID(c *gin.Context) (services.Identity, uint64, bool) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return services.Identity{}, 0, false
	}

	id, ok := middleware.GetIDParam(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid id")
		return services.Identity{}, 0, false
	}

	return identity, id, true
}

func respondWorkspaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidWorkspaceName),
		errors.Is(err, services.ErrWorkspaceNameTooLong):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrWorkspaceNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotWorkspaceOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrWorkspaceNotEmpty):
		apierrors.Conflict(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
