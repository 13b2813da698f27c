package models

import (
	"time"

	dbmodels "PostItBot/internal/database/models"
)

// NoteCreate is the body of POST /api/notes.
type NoteCreate struct {
	Question         string  `json:"question" binding:"required"`
	TelegramUserID   *int64  `json:"telegram_user_id"`
	TelegramUsername *string `json:"telegram_username"`
}

type NoteResponse struct {
	ID               uint      `json:"id"`
	Question         string    `json:"question"`
	CreatedAt        time.Time `json:"created_at"`
	Color            string    `json:"color"`
	TelegramUserID   *int64    `json:"telegram_user_id"`
	TelegramUsername *string   `json:"telegram_username"`
}

func NewNoteResponse(note *dbmodels.Note) NoteResponse {
	return NoteResponse{
		ID:               note.ID,
		Question:         note.Question,
		CreatedAt:        note.CreatedAt,
		Color:            string(note.Color),
		TelegramUserID:   note.TelegramUserID,
		TelegramUsername: note.TelegramUsername,
	}
}

func NewNoteResponses(notes []dbmodels.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, NewNoteResponse(&notes[i]))
	}
	return out
}

type PasswordCheck struct {
	Password string `json:"password"`
}

type PasswordCheckResponse struct {
	Authorized bool   `json:"authorized"`
	Message    string `json:"message,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

type DeleteResponse struct {
	Message string `json:"message"`
	ID      uint   `json:"id"`
}

type StatsResponse struct {
	TotalNotes int64      `json:"total_notes"`
	TotalUsers int64      `json:"total_users"`
	LastNote   *time.Time `json:"last_note"`
	Timestamp  time.Time  `json:"timestamp"`
}

type StatusResponse struct {
	Message     string `json:"message,omitempty"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp,omitempty"`
	TelegramBot string `json:"telegram_bot"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
