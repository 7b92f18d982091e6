package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
	"github.com/lespetitsreves/lprds/internal/sections"
	svc "github.com/lespetitsreves/lprds/internal/services"
)

type childPayload struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	BirthDate     string `json:"birth_date" validate:"required"`
	AdmissionDate string `json:"admission_date"`
	Section       string `json:"section" validate:"required"`
	Status        string `json:"status" validate:"omitempty,oneof=active inactive waiting_list"`

	Allergies     string         `json:"allergies"`
	MedicalNotes  string         `json:"medical_notes"`
	BehaviorNotes string         `json:"behavior_notes"`
	MedicalInfo   datatypes.JSON `json:"medical_info"`
	PhotoURL      string         `json:"photo_url"`

	// Enrollment requires at least one reachable guardian; they become the
	// child's first authorized pickup person.
	GuardianName  string `json:"guardian_name" validate:"required"`
	GuardianPhone string `json:"guardian_phone" validate:"required"`
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return t, err == nil
}

// POST /children — enrollment (admin/secretary).
func CreateChild(w http.ResponseWriter, r *http.Request) {
	var in childPayload
	if !decodeJSON(w, r, &in) {
		return
	}
	if !sections.Valid(in.Section) {
		writeErr(w, http.StatusBadRequest, "unknown section")
		return
	}
	birth, ok := parseDate(in.BirthDate)
	if !ok {
		writeErr(w, http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
		return
	}
	admission := time.Now()
	if in.AdmissionDate != "" {
		if admission, ok = parseDate(in.AdmissionDate); !ok {
			writeErr(w, http.StatusBadRequest, "admission_date must be YYYY-MM-DD")
			return
		}
	}
	status := in.Status
	if status == "" {
		status = models.ChildActive
	}

	child := models.Child{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		BirthDate:     birth,
		AdmissionDate: admission,
		Section:       in.Section,
		Status:        status,
		Allergies:     in.Allergies,
		MedicalNotes:  in.MedicalNotes,
		BehaviorNotes: in.BehaviorNotes,
		MedicalInfo:   in.MedicalInfo,
		PhotoURL:      in.PhotoURL,
		CodeQRID:      svc.GenerateUniqueCode(db.Conn()),
	}
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&child).Error; err != nil {
			return err
		}
		guardian := models.AuthorizedPerson{
			ChildID:      child.ID,
			Name:         in.GuardianName,
			Relationship: "tuteur",
			Phone:        in.GuardianPhone,
		}
		return tx.Create(&guardian).Error
	})
	if err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, child)
}

// GET /children?section=&status=&group_id=&q=
func ListChildren(w http.ResponseWriter, r *http.Request) {
	tx := db.Conn().Model(&models.Child{})

	if s := r.URL.Query().Get("section"); s != "" {
		tx = tx.Where("section = ?", s)
	}
	if s := r.URL.Query().Get("status"); s != "" {
		tx = tx.Where("status = ?", s)
	}
	if g := r.URL.Query().Get("group_id"); g != "" {
		tx = tx.Where("group_id = ?", g)
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like)
	}

	var children []models.Child
	if err := tx.Order("last_name ASC, first_name ASC").Find(&children).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

// GET /children/{id}
func GetChild(w http.ResponseWriter, r *http.Request) {
	var child models.Child
	if err := db.Conn().First(&child, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}

type childUpdatePayload struct {
	FirstName     *string         `json:"first_name"`
	LastName      *string         `json:"last_name"`
	Section       *string         `json:"section"`
	Status        *string         `json:"status" validate:"omitempty,oneof=active inactive waiting_list"`
	Allergies     *string         `json:"allergies"`
	MedicalNotes  *string         `json:"medical_notes"`
	BehaviorNotes *string         `json:"behavior_notes"`
	MedicalInfo   *datatypes.JSON `json:"medical_info"`
	PhotoURL      *string         `json:"photo_url"`
}

// PATCH /children/{id} — admin updates; soft retirement goes through status.
func UpdateChild(w http.ResponseWriter, r *http.Request) {
	var child models.Child
	if err := db.Conn().First(&child, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		serviceErr(w, err)
		return
	}
	var in childUpdatePayload
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Section != nil && !sections.Valid(*in.Section) {
		writeErr(w, http.StatusBadRequest, "unknown section")
		return
	}

	if in.FirstName != nil {
		child.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		child.LastName = *in.LastName
	}
	if in.Section != nil {
		child.Section = *in.Section
	}
	if in.Status != nil {
		child.Status = *in.Status
	}
	if in.Allergies != nil {
		child.Allergies = *in.Allergies
	}
	if in.MedicalNotes != nil {
		child.MedicalNotes = *in.MedicalNotes
	}
	if in.BehaviorNotes != nil {
		child.BehaviorNotes = *in.BehaviorNotes
	}
	if in.MedicalInfo != nil {
		child.MedicalInfo = *in.MedicalInfo
	}
	if in.PhotoURL != nil {
		child.PhotoURL = *in.PhotoURL
	}

	if err := db.Conn().Save(&child).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, child)
}

// GET /my/children — the caller's visible child set (parent or educator).
func MyChildren(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r)

	var (
		children []models.Child
		err      error
	)
	switch actor.Role {
	case models.RoleParent:
		children, err = svc.ParentChildren(db.Conn(), actor.ProfileID)
	case models.RoleEducator:
		children, err = svc.EducatorChildren(db.Conn(), actor.ProfileID)
	default:
		err = db.Conn().Order("last_name ASC, first_name ASC").Find(&children).Error
	}
	if err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}
