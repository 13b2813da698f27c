package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"PostItBot/internal/database"
	pmodels "PostItBot/pkg/models"

	"github.com/gin-gonic/gin"
)

const (
	msgRunning         = "Post-it Notes API + Telegram Bot"
	msgPasswordOK      = "Password is correct"
	msgPasswordInvalid = "Password is incorrect"
	msgNoteDeleted     = "Note deleted"
	msgNoteNotFound    = "Note not found"
)

func (s *Server) botStatus() string {
	if s.bot == nil {
		return "inactive"
	}
	return s.bot.BotStatus()
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, pmodels.StatusResponse{
		Message:     msgRunning,
		Status:      "running",
		TelegramBot: s.botStatus(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, pmodels.StatusResponse{
		Status:      "ok",
		Timestamp:   s.now().Format(time.RFC3339),
		TelegramBot: s.botStatus(),
	})
}

func (s *Server) handleCheckPassword(c *gin.Context) {
	var req pmodels.PasswordCheck
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pmodels.ErrorResponse{Detail: err.Error()})
		return
	}

	if !s.guard.Check(req.Password) {
		c.JSON(http.StatusUnauthorized, pmodels.PasswordCheckResponse{
			Authorized: false,
			Detail:     msgPasswordInvalid,
		})
		return
	}

	c.JSON(http.StatusOK, pmodels.PasswordCheckResponse{
		Authorized: true,
		Message:    msgPasswordOK,
	})
}

func (s *Server) handleListNotes(c *gin.Context) {
	notes, err := s.store.List(c.Request.Context())
	if err != nil {
		s.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pmodels.NewNoteResponses(notes))
}

func (s *Server) handleCreateNote(c *gin.Context) {
	var req pmodels.NoteCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, pmodels.ErrorResponse{Detail: err.Error()})
		return
	}

	note, err := s.store.Create(c.Request.Context(), req.Question, req.TelegramUserID, req.TelegramUsername)
	if err != nil {
		s.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pmodels.NewNoteResponse(note))
}

func (s *Server) handleDeleteNote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, pmodels.ErrorResponse{Detail: "invalid note id"})
		return
	}

	note, err := s.store.Delete(c.Request.Context(), uint(id))
	if err != nil {
		s.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pmodels.DeleteResponse{Message: msgNoteDeleted, ID: note.ID})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		s.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pmodels.StatsResponse{
		TotalNotes: stats.TotalNotes,
		TotalUsers: stats.TotalUsers,
		LastNote:   stats.LastNote,
		Timestamp:  s.now(),
	})
}

// storeError maps note store errors onto HTTP responses.
func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNoteNotFound) {
		c.JSON(http.StatusNotFound, pmodels.ErrorResponse{Detail: msgNoteNotFound})
		return
	}

	slog.Error("Note store failed", slog.String("path", c.Request.URL.Path), slog.Any("err", err))
	c.JSON(http.StatusInternalServerError, pmodels.ErrorResponse{Detail: err.Error()})
}
