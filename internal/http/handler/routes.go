package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"testlab/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, userSvc service.UserService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/users", ListUsers(userSvc))
	app.Post("/users", RegisterUser(userSvc))
	app.Get("/users/:id", GetUser(userSvc))
	app.Delete("/users/:id", DeleteUser(userSvc))
	app.Post("/users/:id/avatar", UploadAvatar(userSvc))
	app.Get("/users/:id/avatar", GetAvatar(userSvc))
}
