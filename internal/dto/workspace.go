package dto

import (
	"time"

	"github.com/yukikurage/collab-docs-api/internal/models"
	"github.com/yukikurage/collab-docs-api/internal/utils"
)

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID                uint64          `json:"id"`
	Name              string          `json:"name"`
	WorkspaceAuthorID uint64          `json:"workspace_author_id"`
	WorkspaceAuthor   *UserSummaryDTO `json:"workspace_author,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// WorkspaceListResponse represents a paginated list of workspaces
type WorkspaceListResponse struct {
	Workspaces []WorkspaceDTO           `json:"workspaces"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO
func ToWorkspaceDTO(workspace models.Workspace) WorkspaceDTO {
	return WorkspaceDTO{
		ID:                workspace.ID,
		Name:              workspace.Name,
		WorkspaceAuthorID: workspace.WorkspaceAuthorID,
		WorkspaceAuthor:   toUserSummary(workspace.WorkspaceAuthor),
		CreatedAt:         workspace.CreatedAt,
		UpdatedAt:         workspace.UpdatedAt,
	}
}

// ToWorkspaceListResponse converts a page of workspaces
func ToWorkspaceListResponse(workspaces []models.Workspace, page utils.PaginationParams, total int64) WorkspaceListResponse {
	items := make([]WorkspaceDTO, len(workspaces))
	for i, workspace := range workspaces {
		items[i] = ToWorkspaceDTO(workspace)
	}

	return WorkspaceListResponse{
		Workspaces: items,
		Pagination: page.Response(total),
	}
}
