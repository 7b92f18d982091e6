package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
)

// GET /me
func Me(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := db.Conn().First(&profile, "id = ?", ActorFrom(r).ProfileID).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type profilePayload struct {
	UserID    string `json:"user_id" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=admin secretary educator parent"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
}

// POST /profiles — link an external auth identity to a role.
func CreateProfile(w http.ResponseWriter, r *http.Request) {
	var in profilePayload
	if !decodeJSON(w, r, &in) {
		return
	}
	profile := models.Profile{
		UserID:    in.UserID,
		Role:      in.Role,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
	}
	if err := db.Conn().Create(&profile).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// GET /profiles?role=
func ListProfiles(w http.ResponseWriter, r *http.Request) {
	tx := db.Conn().Model(&models.Profile{})
	if v := r.URL.Query().Get("role"); v != "" {
		tx = tx.Where("role = ?", v)
	}
	var profiles []models.Profile
	if err := tx.Order("last_name ASC, first_name ASC").Find(&profiles).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// PUT /profiles/{id}
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.Profile
	if err := db.Conn().First(&profile, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		serviceErr(w, err)
		return
	}
	var in profilePayload
	if !decodeJSON(w, r, &in) {
		return
	}
	profile.UserID = in.UserID
	profile.Role = in.Role
	profile.FirstName = in.FirstName
	profile.LastName = in.LastName
	profile.Email = in.Email
	profile.Phone = in.Phone
	if err := db.Conn().Save(&profile).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
