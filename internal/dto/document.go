package dto

import (
	"time"

	"github.com/yukikurage/collab-docs-api/internal/models"
	"github.com/yukikurage/collab-docs-api/internal/services"
	"github.com/yukikurage/collab-docs-api/internal/utils"
)

// PermissionsDTO carries the requester's rights on a document
type PermissionsDTO struct {
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	ReadOnly  bool `json:"read_only"`
}

// DocumentDTO represents a document in API responses
type DocumentDTO struct {
	ID               uint64          `json:"id"`
	Name             string          `json:"name"`
	Content          string          `json:"content"`
	WorkspaceID      uint64          `json:"workspace_id"`
	DocumentAuthorID uint64          `json:"document_author_id"`
	DocumentAuthor   *UserSummaryDTO `json:"document_author,omitempty"`
	Permissions      *PermissionsDTO `json:"permissions,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// DocumentListResponse represents a paginated list of documents
type DocumentListResponse struct {
	Documents  []DocumentDTO            `json:"documents"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToDocumentDTO converts a Document model without permissions
func ToDocumentDTO(document models.Document) DocumentDTO {
	return DocumentDTO{
		ID:               document.ID,
		Name:             document.Name,
		Content:          document.Content,
		WorkspaceID:      document.WorkspaceID,
		DocumentAuthorID: document.DocumentAuthorID,
		DocumentAuthor:   toUserSummary(document.DocumentAuthor),
		CreatedAt:        document.CreatedAt,
		UpdatedAt:        document.UpdatedAt,
	}
}

// ToDocumentViewDTO converts a document together with the requester's permissions
func ToDocumentViewDTO(view services.DocumentView) DocumentDTO {
	dto := ToDocumentDTO(*view.Document)
	dto.Permissions = &PermissionsDTO{
		CanEdit:   view.Permissions.CanEdit,
		CanDelete: view.Permissions.CanDelete,
		ReadOnly:  view.Permissions.ReadOnly,
	}
	return dto
}

// ToDocumentListResponse converts a page of documents
func ToDocumentListResponse(documents []models.Document, page utils.PaginationParams, total int64) DocumentListResponse {
	items := make([]DocumentDTO, len(documents))
	for i, document := range documents {
		items[i] = ToDocumentDTO(document)
	}

	return DocumentListResponse{
		Documents:  items,
		Pagination: page.Response(total),
	}
}

// ToDocumentViewListResponse converts a page of documents with permissions
func ToDocumentViewListResponse(views []services.DocumentView, page utils.PaginationParams, total int64) DocumentListResponse {
	items := make([]DocumentDTO, len(views))
	for i, view := range views {
		items[i] = ToDocumentViewDTO(view)
	}

	return DocumentListResponse{
		Documents:  items,
		Pagination: page.Response(total),
	}
}
