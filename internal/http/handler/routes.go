package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"filehub/internal/auth"
	"filehub/internal/http/middleware"
	"filehub/internal/service"
)

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
// Handlers stay thin: input parsing and status mapping only, no business logic.
//
// Login and registration are open; everything else sits behind the Bearer
// token guard.
func RegisterRoutes(app *fiber.App, db *sql.DB, issuer *auth.TokenIssuer, authSvc service.AuthService, userSvc service.UserService, projectSvc service.ProjectService, docSvc service.DocumentService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/login", Login(authSvc))
	app.Post("/users", RegisterUser(userSvc))

	api := app.Group("", middleware.RequireAuth(issuer))

	api.Get("/users", ListUsers(userSvc))
	api.Get("/users/:id", GetUser(userSvc))
	api.Patch("/users/:id", UpdateUser(userSvc))
	api.Delete("/users/:id", DeleteUser(userSvc))

	api.Post("/projects", CreateProject(projectSvc))
	api.Get("/projects", ListProjects(projectSvc))
	api.Get("/projects/:id", GetProject(projectSvc))
	api.Put("/projects/:id", UpdateProject(projectSvc))
	api.Delete("/projects/:id", DeleteProject(projectSvc))
	api.Post("/projects/:id/members/:userId", AddMember(projectSvc))
	api.Delete("/projects/:id/members/:userId", RemoveMember(projectSvc))
	api.Post("/projects/:id/approvers", AddApprovers(projectSvc))
	api.Delete("/projects/:id/approvers/:userId", RemoveApprover(projectSvc))
	api.Get("/projects/:id/documents", ListProjectDocuments(docSvc))

	api.Post("/documents", SubmitDocument(docSvc))
	api.Post("/documents/:id/approve", ApproveDocument(docSvc))
	api.Post("/documents/:id/versions", SubmitNewVersion(docSvc))
	api.Get("/documents/:id", GetDocument(docSvc))
	api.Get("/documents/:id/download", DownloadDocument(docSvc))
}
