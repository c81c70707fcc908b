package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/NotSimone/Kobo-Metadata/internal/config"
	"github.com/NotSimone/Kobo-Metadata/internal/http/handlers"
	"github.com/NotSimone/Kobo-Metadata/internal/resolver"
)

func NewServer(cfg config.Config, metadataResolver *resolver.Resolver) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())

	health := handlers.NewHealthHandler()
	metadata := handlers.NewMetadataHandler(metadataResolver)

	app.Get("/health", health.Check)
	app.Get("/v1/health", health.Check)

	v1 := app.Group("/v1")
	v1.Post("/metadata/resolve", metadata.Resolve)

	return app
}
