package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
)

type messagePayload struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	ChildID     string `json:"child_id"`
	Subject     string `json:"subject" validate:"required"`
	Body        string `json:"body" validate:"required"`
}

// POST /messages — staff-authored message (validation fan-out messages are
// created by the report service, not here).
func CreateMessage(w http.ResponseWriter, r *http.Request) {
	var in messagePayload
	if !decodeJSON(w, r, &in) {
		return
	}
	msg := models.Message{
		SenderID:    ActorFrom(r).ProfileID,
		RecipientID: in.RecipientID,
		ChildID:     in.ChildID,
		Subject:     in.Subject,
		Body:        in.Body,
	}
	if err := db.Conn().Create(&msg).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// GET /messages?unread=1 — the caller's inbox.
func ListMessages(w http.ResponseWriter, r *http.Request) {
	tx := db.Conn().Where("recipient_id = ?", ActorFrom(r).ProfileID)
	if r.URL.Query().Get("unread") == "1" {
		tx = tx.Where("is_read = ?", false)
	}
	var msgs []models.Message
	if err := tx.Order("created_at DESC").Find(&msgs).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// POST /messages/{id}/read — recipients mark their own messages read.
func MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	var msg models.Message
	if err := db.Conn().First(&msg, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		serviceErr(w, err)
		return
	}
	if msg.RecipientID != ActorFrom(r).ProfileID {
		writeErr(w, http.StatusForbidden, "forbidden")
		return
	}
	msg.IsRead = true
	if err := db.Conn().Save(&msg).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
