package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
	svc "github.com/lespetitsreves/lprds/internal/services"
)

type dailyReportPayload struct {
	ChildID string `json:"child_id" validate:"required"`
	Date    string `json:"date" validate:"required"`

	HealthStatus  string         `json:"health_status"`
	Activities    datatypes.JSON `json:"activities"`
	NapSlept      bool           `json:"nap_slept"`
	NapMinutes    int            `json:"nap_minutes" validate:"gte=0"`
	Meals         datatypes.JSON `json:"meals"`
	DiaperChanges int            `json:"diaper_changes" validate:"gte=0"`
	HygieneOK     bool           `json:"hygiene_ok"`
	Mood          datatypes.JSON `json:"mood"`
	Observations  string         `json:"observations"`
	MediaURLs     datatypes.JSON `json:"media_urls"`

	Submit bool `json:"submit"`
}

// POST /daily-reports — create or overwrite the (child, date) report.
func SaveDailyReport(w http.ResponseWriter, r *http.Request) {
	var in dailyReportPayload
	if !decodeJSON(w, r, &in) {
		return
	}
	report := models.DailyReport{
		ChildID:       in.ChildID,
		Date:          in.Date,
		HealthStatus:  in.HealthStatus,
		Activities:    in.Activities,
		NapSlept:      in.NapSlept,
		NapMinutes:    in.NapMinutes,
		Meals:         in.Meals,
		DiaperChanges: in.DiaperChanges,
		HygieneOK:     in.HygieneOK,
		Mood:          in.Mood,
		Observations:  in.Observations,
		MediaURLs:     in.MediaURLs,
	}
	saved, err := svc.SaveDailyReport(db.Conn(), ActorFrom(r), &report, in.Submit)
	if err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// scopeReports narrows a report query to what the actor may see. Staff see
// everything; educators their groups' children; parents only validated
// reports of children they are linked to.
func scopeReports(tx *gorm.DB, actor svc.Actor) (*gorm.DB, error) {
	switch actor.Role {
	case models.RoleEducator:
		children, err := svc.EducatorChildren(db.Conn(), actor.ProfileID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(children))
		for i, c := range children {
			ids[i] = c.ID
		}
		return tx.Where("child_id IN ?", ids), nil
	case models.RoleParent:
		children, err := svc.ParentChildren(db.Conn(), actor.ProfileID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(children))
		for i, c := range children {
			ids[i] = c.ID
		}
		return tx.Where("child_id IN ? AND is_validated = ?", ids, true), nil
	default:
		return tx, nil
	}
}

// GET /daily-reports?child_id=&date=&from=&to=&status=
func ListDailyReports(w http.ResponseWriter, r *http.Request) {
	tx, err := scopeReports(db.Conn().Model(&models.DailyReport{}), ActorFrom(r))
	if err != nil {
		serviceErr(w, err)
		return
	}
	q := r.URL.Query()
	if v := q.Get("child_id"); v != "" {
		tx = tx.Where("child_id = ?", v)
	}
	if v := q.Get("date"); v != "" {
		tx = tx.Where("date = ?", v)
	}
	if v := q.Get("from"); v != "" {
		tx = tx.Where("date >= ?", v)
	}
	if v := q.Get("to"); v != "" {
		tx = tx.Where("date <= ?", v)
	}
	if v := q.Get("status"); v != "" {
		tx = tx.Where("status = ?", v)
	}

	var reports []models.DailyReport
	if err := tx.Order("date DESC").Find(&reports).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// GET /daily-reports/{id}
func GetDailyReport(w http.ResponseWriter, r *http.Request) {
	var report models.DailyReport
	if err := db.Conn().First(&report, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		serviceErr(w, err)
		return
	}
	actor := ActorFrom(r)
	if actor.Role == models.RoleParent {
		linked, err := svc.LinkedToChild(db.Conn(), actor.ProfileID, report.ChildID)
		if err != nil {
			serviceErr(w, err)
			return
		}
		if !linked || !report.Review.IsValidated {
			writeErr(w, http.StatusForbidden, "forbidden")
			return
		}
	}
	writeJSON(w, http.StatusOK, report)
}

type validatePayload struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// POST /daily-reports/{id}/validate
func ValidateDailyReport(w http.ResponseWriter, r *http.Request) {
	var in validatePayload
	if !decodeJSON(w, r, &in) {
		return
	}
	report, err := svc.ValidateDailyReport(db.Conn(), ActorFrom(r), chi.URLParam(r, "id"), in.Approve, in.Note)
	if err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type weeklyReportPayload struct {
	ChildID     string `json:"child_id" validate:"required"`
	PeriodStart string `json:"period_start" validate:"required"`
	PeriodEnd   string `json:"period_end"`

	Progress   datatypes.JSON `json:"progress"`
	Highlights string         `json:"highlights"`
	Goals      string         `json:"goals"`
	Mood       datatypes.JSON `json:"mood"`
	MediaURLs  datatypes.JSON `json:"media_urls"`

	Submit bool `json:"submit"`
}

// POST /weekly-reports
func SaveWeeklyReport(w http.ResponseWriter, r *http.Request) {
	var in weeklyReportPayload
	if !decodeJSON(w, r, &in) {
		return
	}
	report := models.WeeklyReport{
		ChildID:     in.ChildID,
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		Progress:    in.Progress,
		Highlights:  in.Highlights,
		Goals:       in.Goals,
		Mood:        in.Mood,
		MediaURLs:   in.MediaURLs,
	}
	saved, err := svc.SaveWeeklyReport(db.Conn(), ActorFrom(r), &report, in.Submit)
	if err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// GET /weekly-reports?child_id=&status=
func ListWeeklyReports(w http.ResponseWriter, r *http.Request) {
	tx, err := scopeReports(db.Conn().Model(&models.WeeklyReport{}), ActorFrom(r))
	if err != nil {
		serviceErr(w, err)
		return
	}
	q := r.URL.Query()
	if v := q.Get("child_id"); v != "" {
		tx = tx.Where("child_id = ?", v)
	}
	if v := q.Get("status"); v != "" {
		tx = tx.Where("status = ?", v)
	}

	var reports []models.WeeklyReport
	if err := tx.Order("period_start DESC").Find(&reports).Error; err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// GET /weekly-reports/{id}
func GetWeeklyReport(w http.ResponseWriter, r *http.Request) {
	var report models.WeeklyReport
	if err := db.Conn().First(&report, "id = ?", chi.URLParam(r, "id")).Error; err != nil {
		serviceErr(w, err)
		return
	}
	actor := ActorFrom(r)
	if actor.Role == models.RoleParent {
		linked, err := svc.LinkedToChild(db.Conn(), actor.ProfileID, report.ChildID)
		if err != nil {
			serviceErr(w, err)
			return
		}
		if !linked || !report.Review.IsValidated {
			writeErr(w, http.StatusForbidden, "forbidden")
			return
		}
	}
	writeJSON(w, http.StatusOK, report)
}

// POST /weekly-reports/{id}/validate
func ValidateWeeklyReport(w http.ResponseWriter, r *http.Request) {
	var in validatePayload
	if !decodeJSON(w, r, &in) {
		return
	}
	report, err := svc.ValidateWeeklyReport(db.Conn(), ActorFrom(r), chi.URLParam(r, "id"), in.Approve, in.Note)
	if err != nil {
		serviceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
