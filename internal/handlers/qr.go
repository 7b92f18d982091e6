package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
	svc "github.com/lespetitsreves/lprds/internal/services"
)

// GET /qr/{code}.png — the badge image for a child's short code. The PNG
// carries the full encoded payload; the short code is only the lookup key.
func QRBadge(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.NotFound(w, r)
		return
	}
	var child models.Child
	if err := db.Conn().Where("code_qr_id = ?", code).First(&child).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	png, err := qrcode.Encode(svc.EncodeChildQR(child.ID), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
