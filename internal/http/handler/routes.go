package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docarchive/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything under /documents and /tags runs behind auth.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, auth fiber.Handler) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	docs := app.Group("/documents", auth)
	docs.Get("/", ListDocuments(docSvc))
	docs.Post("/", UploadDocument(docSvc))
	// Registered before /:id so "search" is not taken for an id.
	docs.Get("/search", SearchDocuments(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Patch("/:id", UpdateDocument(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))
	docs.Get("/:id/download", DownloadDocument(docSvc))
	docs.Get("/:id/download/:name", DownloadNamed(docSvc))
	docs.Get("/:id/thumb", Thumbnail(docSvc))

	app.Get("/tags", auth, ListTags(docSvc))
}
