package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"PostItBot/internal/auth"
	"PostItBot/internal/database"
	"PostItBot/internal/database/models"

	"github.com/gin-gonic/gin"
)

// NoteStore is the part of the note store exposed over HTTP.
type NoteStore interface {
	Create(ctx context.Context, question string, userID *int64, username *string) (*models.Note, error)
	List(ctx context.Context) ([]models.Note, error)
	Delete(ctx context.Context, id uint) (*models.Note, error)
	Stats(ctx context.Context) (database.Stats, error)
}

// BotStatus reports the Telegram bot state as "active" or "inactive".
type BotStatus interface {
	BotStatus() string
}

// Server is the notes HTTP API.
type Server struct {
	store  NoteStore
	guard  *auth.Guard
	bot    BotStatus
	router *gin.Engine
	now    func() time.Time
}

func NewServer(store NoteStore, guard *auth.Guard, bot BotStatus) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog(), corsMiddleware())

	s := &Server{
		store:  store,
		guard:  guard,
		bot:    bot,
		router: router,
		now:    time.Now,
	}

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/check-password", s.handleCheckPassword)
		api.GET("/notes", s.requirePassword(), s.handleListNotes)
		api.POST("/notes", s.handleCreateNote)
		api.DELETE("/notes/:id", s.requirePassword(), s.handleDeleteNote)
		api.GET("/stats", s.requirePassword(), s.handleStats)
	}

	return s
}

// MountWebhook routes Telegram webhook posts on path to h.
func (s *Server) MountWebhook(path string, h http.Handler) {
	s.router.POST(path, gin.WrapH(h))
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the router in an *http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// ListenAndServe runs srv and treats a graceful shutdown as success.
func ListenAndServe(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
