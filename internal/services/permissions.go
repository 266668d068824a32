package services

import "github.com/yukikurage/collab-docs-api/internal/models"

// Permissions describes what an identity may do with one document.
type Permissions struct {
	CanEdit   bool
	CanDelete bool
	ReadOnly  bool
}

// DerivePermissions computes document permissions from the two authority relations:
// the document creator and the owner of the document's workspace may edit and delete,
// everyone else reads only. doc.Workspace must be preloaded; a missing workspace grants
// nothing through workspace ownership.
func DerivePermissions(identity Identity, doc *models.Document) Permissions {
	canEdit := isEffectiveEditor(identity, doc)
	return Permissions{
		CanEdit:   canEdit,
		CanDelete: canEdit,
		ReadOnly:  !canEdit,
	}
}

func isEffectiveEditor(identity Identity, doc *models.Document) bool {
	if doc == nil || identity.UserID == 0 {
		return false
	}
	if doc.IsAuthoredBy(identity.UserID) {
		return true
	}
	return doc.Workspace.ID == doc.WorkspaceID && doc.Workspace.IsOwnedBy(identity.UserID)
}
