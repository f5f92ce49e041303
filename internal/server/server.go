// Package server exposes the HTTP JSON API consumed by the browser client.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/example/lembra/internal/ai"
	"github.com/example/lembra/internal/database"
	"github.com/example/lembra/internal/importer"
	"github.com/example/lembra/internal/study"
	"github.com/example/lembra/internal/words"
)

// Server wires the application services behind an echo router
type Server struct {
	echo       *echo.Echo
	log        *logrus.Logger
	cards      *database.CardRepository
	categories *database.CategoryRepository
	words      *words.Service
	importer   *importer.Importer
	client     *ai.Client
	creds      ai.CredentialStore
	sessions   *study.Registry
}

// New creates the server and registers all routes
func New(log *logrus.Logger, client *ai.Client, creds ai.CredentialStore, wordsSvc *words.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	cards := database.NewCardRepository()
	categories := database.NewCategoryRepository()

	s := &Server{
		echo:       e,
		log:        log,
		cards:      cards,
		categories: categories,
		words:      wordsSvc,
		importer:   importer.New(cards, categories),
		client:     client,
		creds:      creds,
		sessions:   study.NewRegistry(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")

	api.GET("/categories", s.listCategories)
	api.POST("/categories", s.createCategory)
	api.DELETE("/categories/:id", s.deleteCategory)

	api.GET("/cards", s.listCards)
	api.POST("/cards", s.createCard)
	api.DELETE("/cards/:id", s.deleteCard)
	api.DELETE("/cards", s.clearCards)
	api.POST("/cards/:id/answer", s.answerCard)

	api.POST("/import", s.importCards)

	api.GET("/words", s.listWords)
	api.POST("/words/toggle", s.toggleWord)

	api.POST("/study/sessions", s.startSession)
	api.GET("/study/sessions/:id", s.getSession)
	api.POST("/study/sessions/:id/reveal", s.revealSession)
	api.POST("/study/sessions/:id/answer", s.answerSession)
	api.POST("/study/sessions/:id/restart", s.restartSession)
	api.POST("/study/sessions/:id/roll", s.rollSession)
	api.DELETE("/study/sessions/:id", s.endSession)
	api.POST("/study/interesting", s.studyInteresting)

	api.PUT("/settings/apikey", s.setAPIKey)
	api.DELETE("/settings/apikey", s.clearAPIKey)
}

// Start begins serving on addr and blocks until shutdown
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// fail converts an error into a short user-facing JSON message. No failure
// escapes a handler unwrapped.
func (s *Server) fail(c echo.Context, err error) error {
	if errors.Is(err, ai.ErrNoAPIKey) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var exhausted *ai.ExhaustedError
	if errors.As(err, &exhausted) {
		s.log.WithError(err).Warn("generation failed")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to generate phrase, please try again"})
	}
	s.log.WithError(err).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
