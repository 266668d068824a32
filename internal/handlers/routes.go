package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/collab-docs-api/internal/middleware"
)

// Routes bundles everything RegisterRoutes needs.
type Routes struct {
	Users      *UserHandler
	Workspaces *WorkspaceHandler
	Documents  *DocumentHandler
	Health     *HealthHandler

	// RequireAuth guards every route except register and login
	RequireAuth gin.HandlerFunc
	// LoginLimiter throttles register and login; nil disables it
	LoginLimiter gin.HandlerFunc

	AdminListings bool
}

// RegisterRoutes mounts the API under /api and the health check at /health.
func RegisterRoutes(r *gin.Engine, rt Routes) {
	if rt.Health != nil {
		r.GET("/health", rt.Health.Health)
	}

	limit := rt.LoginLimiter
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	id := middleware.RequireIDParam("id")

	api := r.Group("/api")
	{
		user := api.Group("/user")
		{
			user.POST("/register", limit, rt.Users.Register)
			user.POST("/login", limit, rt.Users.Login)
			user.POST("/logout", rt.RequireAuth, rt.Users.Logout)
			user.GET("/me", rt.RequireAuth, rt.Users.Me)
			user.PUT("/update", rt.RequireAuth, rt.Users.Update)
			user.DELETE("/delete", rt.RequireAuth, rt.Users.Delete)
		}

		workspaces := api.Group("/workspace")
		workspaces.Use(rt.RequireAuth)
		{
			workspaces.POST("/create", rt.Workspaces.CreateWorkspace)
			workspaces.GET("/all", rt.Workspaces.ListAllWorkspaces)
			workspaces.GET("/author", rt.Workspaces.ListMyWorkspaces)
			workspaces.GET("/:id", id, rt.Workspaces.GetWorkspace)
			workspaces.PUT("/update", rt.Workspaces.UpdateWorkspace)
			workspaces.DELETE("/:id", id, rt.Workspaces.DeleteWorkspace)
		}

		documents := api.Group("/document")
		documents.Use(rt.RequireAuth)
		{
			documents.POST("/create", rt.Documents.CreateDocument)
			if rt.AdminListings {
				documents.GET("/all", rt.Documents.ListAllDocuments)
			}
			documents.GET("/author", rt.Documents.ListMyDocuments)
			documents.GET("/workspace/:id", id, rt.Documents.ListWorkspaceDocuments)
			documents.GET("/:id", id, rt.Documents.GetDocument)
			documents.PUT("/update/:id", id, rt.Documents.UpdateDocument)
			documents.DELETE("/:id", id, rt.Documents.DeleteDocument)
		}
	}
}
