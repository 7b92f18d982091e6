package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
)

type relationPayload struct {
	ParentID         string `json:"parent_id" validate:"required"`
	ChildID          string `json:"child_id" validate:"required"`
	Relationship     string `json:"relationship" validate:"required"`
	IsPrimaryContact bool   `json:"is_primary_contact"`
}

// POST /parent-children — link a parent profile to a child.
func CreateRelation(w http.ResponseWriter, r *http.Request) {
	var in relationPayload
	if !decodeJSON(w, r, &in) {
		return
	}
	rel := models.ParentChildRelation{
		ParentID:         in.ParentID,
		ChildID:          in.ChildID,
		Relationship:     in.Relationship,
		IsPrimaryContact: in.IsPrimaryContact,
	}
	if err := db.Conn().Create(&rel).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rel)
}

// DELETE /parent-children/{id}
func DeleteRelation(w http.ResponseWriter, r *http.Request) {
	var rel models.ParentChildRelation
	if err := db.Conn().First(&rel, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		serviceErr(w, err)
		return
	}
	if err := db.Conn().Delete(&rel).Error; err != nil {
		serviceErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /children/{id}/parents
func ChildParents(w http.ResponseWriter, r *http.Request) {
	var rels []models.ParentChildRelation
	if err := db.Conn().Where("child_id = ?", chi.URLParam(r, "id")).Find(&rels).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rels)
}
