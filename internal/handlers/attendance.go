package handlers

import (
	"net/http"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
	svc "github.com/lespetitsreves/lprds/internal/services"
)

type scanPayload struct {
	// Code is the scanner output: full badge payload or the printed short code.
	// ChildID may be sent instead when the UI already knows the child.
	Code     string `json:"code"`
	ChildID  string `json:"child_id"`
	ScanType string `json:"scan_type" validate:"required,oneof=arrival departure"`
}

// POST /attendance/scan
func ScanAttendance(w http.ResponseWriter, r *http.Request) {
	var in scanPayload
	if !decodeJSON(w, r, &in) {
		return
	}

	childID := in.ChildID
	if childID == "" {
		if in.Code == "" {
			writeErr(w, http.StatusBadRequest, "code or child_id required")
			return
		}
		child, err := svc.ResolveScan(db.Conn(), in.Code)
		if err != nil {
			serviceErr(w, err)
			return
		}
		childID = child.ID
	}

	att, err := svc.RecordScan(db.Conn(), ActorFrom(r), childID, in.ScanType)
	if err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

type absencePayload struct {
	ChildID string `json:"child_id" validate:"required"`
	Date    string `json:"date"`
	Reason  string `json:"reason"`
}

// POST /attendance/absent
func MarkAbsent(w http.ResponseWriter, r *http.Request) {
	var in absencePayload
	if !decodeJSON(w, r, &in) {
		return
	}
	att, err := svc.MarkAbsent(db.Conn(), ActorFrom(r), in.ChildID, in.Date, in.Reason)
	if err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

// GET /attendance?date=&child_id=&present=
func ListAttendance(w http.ResponseWriter, r *http.Request) {
	tx := db.Conn().Model(&models.DailyAttendance{})

	q := r.URL.Query()
	if v := q.Get("date"); v != "" {
		tx = tx.Where("date = ?", v)
	}
	if v := q.Get("child_id"); v != "" {
		tx = tx.Where("child_id = ?", v)
	}
	if v := q.Get("present"); v != "" {
		tx = tx.Where("is_present = ?", v == "true" || v == "1")
	}

	var rows []models.DailyAttendance
	if err := tx.Order("date DESC").Find(&rows).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GET /attendance/scans?child_id= — the immutable audit trail.
func ListScanLogs(w http.ResponseWriter, r *http.Request) {
	tx := db.Conn().Model(&models.QRScanLog{})
	if v := r.URL.Query().Get("child_id"); v != "" {
		tx = tx.Where("child_id = ?", v)
	}
	var logs []models.QRScanLog
	if err := tx.Order("scanned_at DESC").Limit(500).Find(&logs).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
