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

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// CreateDocument creates a document authored by the caller
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateDocumentRequest struct {
		Name        string `json:"name"`
		Content     string `json:"content"`
		WorkspaceID uint64 `json:"workspace_id"`
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	document, err := h.documentService.Create(c.Request.Context(), identity, services.CreateDocumentInput{
		Name:        req.Name,
		Content:     req.Content,
		WorkspaceID: req.WorkspaceID,
	})
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDocumentViewDTO(services.DocumentView{
		Document:    document,
		Permissions: services.DerivePermissions(identity, document),
	}))
}

// GetDocument returns a document with the caller's permissions
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	identity, id, ok := identityAndID(c)
	if !ok {
		return
	}

	view, err := h.documentService.Get(c.Request.Context(), id, identity)
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentViewDTO(*view))
}

// ListWorkspaceDocuments returns the documents of one workspace with per-document permissions
func (h *DocumentHandler) ListWorkspaceDocuments(c *gin.Context) {
	identity, workspaceID, ok := identityAndID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	views, total, err := h.documentService.ListByWorkspace(c.Request.Context(), workspaceID, identity, params)
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentViewListResponse(views, params, total))
}

// ListAllDocuments returns every document; only routed when admin listings are enabled
func (h *DocumentHandler) ListAllDocuments(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	documents, total, err := h.documentService.ListAll(c.Request.Context(), params)
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentListResponse(documents, params, total))
}

// ListMyDocuments returns the documents created by the caller
func (h *DocumentHandler) ListMyDocuments(c *gin.Context) {
	identity, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	documents, total, err := h.documentService.ListByAuthor(c.Request.Context(), identity.UserID, params)
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentListResponse(documents, params, total))
}

// UpdateDocument patches name and/or content
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	identity, id, ok := identityAndID(c)
	if !ok {
		return
	}

	type UpdateDocumentRequest struct {
		Name    *string `json:"name"`
		Content *string `json:"content"`
	}

	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	view, err := h.documentService.Update(c.Request.Context(), id, identity, services.UpdateDocumentInput{
		Name:    req.Name,
		Content: req.Content,
	})
	if err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentViewDTO(*view))
}

// DeleteDocument deletes a document the caller created or whose workspace they own
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	identity, id, ok := identityAndID(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), id, identity); err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Document deleted successfully",
	})
}

func respondDocumentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDocumentNameRequired),
		errors.Is(err, services.ErrDocumentNameTooLong),
		errors.Is(err, services.ErrWorkspaceIDRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrWorkspaceNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrDocumentEditDenied),
		errors.Is(err, services.ErrDocumentDeleteDenied),
		errors.Is(err, services.ErrDocumentCreateDenied):
		apierrors.Forbidden(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
