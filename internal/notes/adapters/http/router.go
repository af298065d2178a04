// Package http содержит компоненты HTTP сервера сервиса заметок.
package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/time/rate"

	"gonotes/internal/notes/adapters/http/auth"
	"gonotes/internal/notes/adapters/http/dto"
	"gonotes/internal/notes/adapters/http/health"
	"gonotes/internal/notes/adapters/http/middleware"
	"gonotes/internal/notes/adapters/http/notes"
	"gonotes/internal/notes/ports/api"
)

// ErrMsgEndpointNotFound - ответ на неизвестный маршрут API.
const ErrMsgEndpointNotFound = "API endpoint not found"

// Config задает параметры HTTP приложения.
type Config struct {
	AppName        string
	BodyLimit      int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	LoginRate      rate.Limit
	LoginBurst     int
}

// Services - сценарии, которые обслуживает HTTP API.
type Services struct {
	Auth   api.AuthService
	Notes  api.NoteService
	Health api.HealthChecker
}

// NewApp создает fiber приложение с маршрутами API.
func NewApp(cfg Config, svc Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: errorHandler,
	})

	SetupRouter(app, cfg, svc)
	return app
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, cfg Config, svc Services) {
	authHandler := auth.NewHandler(svc.Auth)
	notesHandler := notes.NewHandler(svc.Notes)
	healthHandler := health.NewHandler(svc.Health)
	loginLimiter := middleware.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst)

	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(middleware.NewTimeoutMiddleware(cfg.RequestTimeout))

	apiRoutes := app.Group("/api")

	// Публичные маршруты.
	apiRoutes.Use("/login", loginLimiter.Handler())
	apiRoutes.Post("/register", authHandler.Register)
	apiRoutes.Post("/login", authHandler.Login)
	apiRoutes.Get("/health", healthHandler.Health)

	// Маршруты заметок требуют токен.
	notesRoutes := apiRoutes.Group("/notes")
	notesRoutes.Use(middleware.NewAuthMiddleware(svc.Auth))
	notesRoutes.Get("/", notesHandler.ListNotes)
	notesRoutes.Post("/", notesHandler.CreateNote)
	notesRoutes.Get("/:id", notesHandler.GetNote)
	notesRoutes.Put("/:id", notesHandler.UpdateNote)
	notesRoutes.Delete("/:id", notesHandler.DeleteNote)

	apiRoutes.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: ErrMsgEndpointNotFound})
	})
}

func errorHandler(c fiber.Ctx, err error) error {
	code, msg := fiber.StatusInternalServerError, middleware.ErrMsgServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code, msg = fiberErr.Code, fiberErr.Message
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: msg})
}
