package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
)

type authorizedPersonPayload struct {
	Name         string `json:"name" validate:"required"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone" validate:"required"`
	IDDocument   string `json:"id_document"`
}

// POST /children/{id}/authorized-persons
func CreateAuthorizedPerson(w http.ResponseWriter, r *http.Request) {
	var in authorizedPersonPayload
	if !decodeJSON(w, r, &in) {
		return
	}
	p := models.AuthorizedPerson{
		ChildID:      chi.URLParam(r, "id"),
		Name:         in.Name,
		Relationship: in.Relationship,
		Phone:        in.Phone,
		IDDocument:   in.IDDocument,
	}
	if err := db.Conn().Create(&p).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GET /children/{id}/authorized-persons
func ListAuthorizedPersons(w http.ResponseWriter, r *http.Request) {
	var out []models.AuthorizedPerson
	if err := db.Conn().Where("child_id = ?", chi.URLParam(r, "id")).Find(&out).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DELETE /authorized-persons/{id}
func DeleteAuthorizedPerson(w http.ResponseWriter, r *http.Request) {
	res := db.Conn().Delete(&models.AuthorizedPerson{}, "id = ?", chi.URLParam(r, "id"))
	if res.Error != nil {
		serviceErr(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type medicalRecordPayload struct {
	RecordType   string `json:"record_type" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Practitioner string `json:"practitioner"`
	Notes        string `json:"notes"`
	DocumentURL  string `json:"document_url"`
}

// POST /children/{id}/medical-records
func CreateMedicalRecord(w http.ResponseWriter, r *http.Request) {
	var in medicalRecordPayload
	if !decodeJSON(w, r, &in) {
		return
	}
	rec := models.MedicalRecord{
		ChildID:      chi.URLParam(r, "id"),
		RecordType:   in.RecordType,
		Date:         in.Date,
		Practitioner: in.Practitioner,
		Notes:        in.Notes,
		DocumentURL:  in.DocumentURL,
	}
	if err := db.Conn().Create(&rec).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// GET /children/{id}/medical-records
func ListMedicalRecords(w http.ResponseWriter, r *http.Request) {
	var out []models.MedicalRecord
	if err := db.Conn().Where("child_id = ?", chi.URLParam(r, "id")).
		Order("date DESC").Find(&out).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
