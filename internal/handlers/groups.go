package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
	"github.com/lespetitsreves/lprds/internal/sections"
	svc "github.com/lespetitsreves/lprds/internal/services"
)

// GET /sections — the one section table, served by reference.
func ListSections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sections.All)
}

type groupPayload struct {
	Name               string `json:"name" validate:"required"`
	Section            string `json:"section" validate:"required"`
	Capacity           int    `json:"capacity" validate:"gte=0"`
	AssignedEducatorID string `json:"assigned_educator_id"`
	MinAgeMonths       int    `json:"min_age_months"`
	MaxAgeMonths       int    `json:"max_age_months"`
}

// POST /groups
func CreateGroup(w http.ResponseWriter, r *http.Request) {
	var in groupPayload
	if !decodeJSON(w, r, &in) {
		return
	}
	if !sections.Valid(in.Section) {
		writeErr(w, http.StatusBadRequest, "unknown section")
		return
	}
	if in.MinAgeMonths == 0 && in.MaxAgeMonths == 0 {
		if s, ok := sections.ByCode(in.Section); ok {
			in.MinAgeMonths, in.MaxAgeMonths = s.MinAgeMonths, s.MaxAgeMonths
		}
	}
	group := models.Group{
		Name:               in.Name,
		Section:            in.Section,
		Capacity:           in.Capacity,
		AssignedEducatorID: in.AssignedEducatorID,
		MinAgeMonths:       in.MinAgeMonths,
		MaxAgeMonths:       in.MaxAgeMonths,
	}
	if err := db.Conn().Create(&group).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// GET /groups?section=
func ListGroups(w http.ResponseWriter, r *http.Request) {
	tx := db.Conn().Model(&models.Group{})
	if s := r.URL.Query().Get("section"); s != "" {
		tx = tx.Where("section = ?", s)
	}
	var groups []models.Group
	if err := tx.Order("name ASC").Find(&groups).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// GET /groups/{id}
func GetGroup(w http.ResponseWriter, r *http.Request) {
	var group models.Group
	if err := db.Conn().First(&group, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// PUT /groups/{id}
func UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var group models.Group
	if err := db.Conn().First(&group, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		serviceErr(w, err)
		return
	}
	var in groupPayload
	if !decodeJSON(w, r, &in) {
		return
	}
	if !sections.Valid(in.Section) {
		writeErr(w, http.StatusBadRequest, "unknown section")
		return
	}
	group.Name = in.Name
	group.Section = in.Section
	group.Capacity = in.Capacity
	group.AssignedEducatorID = in.AssignedEducatorID
	group.MinAgeMonths = in.MinAgeMonths
	group.MaxAgeMonths = in.MaxAgeMonths
	if err := db.Conn().Save(&group).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// GET /groups/{id}/children
func GroupChildren(w http.ResponseWriter, r *http.Request) {
	children, err := svc.GroupChildren(db.Conn(), chi.URLParam(r, "id"))
	if err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

type assignPayload struct {
	ChildIDs []string `json:"child_ids" validate:"required"`
	Force    bool     `json:"force"`
}

// PUT /groups/{id}/children — the full selection; membership is reconciled
// against it.
func AssignGroupChildren(w http.ResponseWriter, r *http.Request) {
	var in assignPayload
	if !decodeJSON(w, r, &in) {
		return
	}
	groupID := chi.URLParam(r, "id")
	if err := svc.AssignChildren(db.Conn(), groupID, in.ChildIDs, in.Force); err != nil {
		serviceErr(w, err)
		return
	}
	children, err := svc.GroupChildren(db.Conn(), groupID)
	if err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}
