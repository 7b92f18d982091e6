package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lespetitsreves/lprds/internal/models"
)

// Lifecycle: draft ⇄ pending → validated | rejected. Rejected reports are
// resubmitted by overwriting the same row; only the latest rejection reason is
// kept. Admin/secretary submitting a report skips pending and lands directly
// on validated (staff-authored reports self-validate).

func canAuthorReports(role string) bool {
	return role == models.RoleEducator || models.IsStaff(role)
}

// applyLifecycle mutates the review block for a save. Returns false when the
// report is already validated and must not change anymore.
func applyLifecycle(rv *models.ReviewState, actor Actor, submit bool) bool {
	if rv.Status == models.StatusValidated {
		return false
	}
	now := time.Now()
	switch {
	case !submit:
		rv.Status = models.StatusDraft
		rv.IsValidated = false
	case models.IsStaff(actor.Role):
		// Staff fast path: no pending state observed.
		rv.Status = models.StatusValidated
		rv.IsValidated = true
		rv.SubmittedAt = &now
		rv.ValidatedBy = actor.ProfileID
		rv.ValidatedAt = &now
	default:
		rv.Status = models.StatusPending
		rv.IsValidated = false
		rv.SubmittedAt = &now
	}
	return true
}

// SaveDailyReport upserts the report for (child, date) and applies the
// lifecycle. A rejected report is resubmitted through the same row; its
// rejection reason stays readable until the next rejection overwrites it.
func SaveDailyReport(gdb *gorm.DB, actor Actor, in *models.DailyReport, submit bool) (*models.DailyReport, error) {
	if !canAuthorReports(actor.Role) {
		return nil, ErrRoleNotAllowed
	}
	if in.ChildID == "" || in.Date == "" {
		return nil, fmt.Errorf("%w: child_id and date are required", ErrNotFound)
	}
	in.Mood = models.NormalizeMood(in.Mood).JSON()

	var out *models.DailyReport
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var existing models.DailyReport
		err := tx.Where("child_id = ? AND date = ?", in.ChildID, in.Date).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			report := *in
			report.ID = ""
			report.AuthorID = actor.ProfileID
			report.Review = models.ReviewState{}
			applyLifecycle(&report.Review, actor, submit)
			if err := tx.Create(&report).Error; err != nil {
				return err
			}
			out = &report
			return nil
		case err != nil:
			return err
		}

		if !applyLifecycle(&existing.Review, actor, submit) {
			return ErrAlreadyValidated
		}
		copyDailyContent(&existing, in)
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		out = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func copyDailyContent(dst, src *models.DailyReport) {
	dst.HealthStatus = src.HealthStatus
	dst.Activities = src.Activities
	dst.NapSlept = src.NapSlept
	dst.NapMinutes = src.NapMinutes
	dst.Meals = src.Meals
	dst.DiaperChanges = src.DiaperChanges
	dst.HygieneOK = src.HygieneOK
	dst.Mood = src.Mood
	dst.Observations = src.Observations
	dst.MediaURLs = src.MediaURLs
}

// ValidateDailyReport approves or rejects a submitted report. Approval and the
// parent notification fan-out run in one transaction: either the report is
// validated and every linked parent has a message, or nothing changed.
func ValidateDailyReport(gdb *gorm.DB, actor Actor, reportID string, approve bool, note string) (*models.DailyReport, error) {
	if !models.IsStaff(actor.Role) {
		return nil, ErrRoleNotAllowed
	}
	var out *models.DailyReport
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var report models.DailyReport
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := applyReview(tx, actor, &report.Review, approve, note,
			report.ChildID, fmt.Sprintf("Rapport du %s", report.Date)); err != nil {
			return err
		}
		if err := tx.Save(&report).Error; err != nil {
			return err
		}
		out = &report
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveWeeklyReport is the bi-monthly counterpart of SaveDailyReport, keyed by
// (child, period start).
func SaveWeeklyReport(gdb *gorm.DB, actor Actor, in *models.WeeklyReport, submit bool) (*models.WeeklyReport, error) {
	if !canAuthorReports(actor.Role) {
		return nil, ErrRoleNotAllowed
	}
	if in.ChildID == "" || in.PeriodStart == "" {
		return nil, fmt.Errorf("%w: child_id and period_start are required", ErrNotFound)
	}
	in.Mood = models.NormalizeMood(in.Mood).JSON()

	var out *models.WeeklyReport
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var existing models.WeeklyReport
		err := tx.Where("child_id = ? AND period_start = ?", in.ChildID, in.PeriodStart).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			report := *in
			report.ID = ""
			report.AuthorID = actor.ProfileID
			report.Review = models.ReviewState{}
			applyLifecycle(&report.Review, actor, submit)
			if err := tx.Create(&report).Error; err != nil {
				return err
			}
			out = &report
			return nil
		case err != nil:
			return err
		}

		if !applyLifecycle(&existing.Review, actor, submit) {
			return ErrAlreadyValidated
		}
		existing.PeriodEnd = in.PeriodEnd
		existing.Progress = in.Progress
		existing.Highlights = in.Highlights
		existing.Goals = in.Goals
		existing.Mood = in.Mood
		existing.MediaURLs = in.MediaURLs
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		out = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func ValidateWeeklyReport(gdb *gorm.DB, actor Actor, reportID string, approve bool, note string) (*models.WeeklyReport, error) {
	if !models.IsStaff(actor.Role) {
		return nil, ErrRoleNotAllowed
	}
	var out *models.WeeklyReport
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var report models.WeeklyReport
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := applyReview(tx, actor, &report.Review, approve, note,
			report.ChildID, fmt.Sprintf("Rapport de la période du %s", report.PeriodStart)); err != nil {
			return err
		}
		if err := tx.Save(&report).Error; err != nil {
			return err
		}
		out = &report
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyReview performs the validate/reject transition and, on approval, the
// per-parent message fan-out.
func applyReview(tx *gorm.DB, actor Actor, rv *models.ReviewState, approve bool, note, childID, subject string) error {
	if rv.Status == models.StatusValidated {
		return ErrAlreadyValidated
	}
	if rv.Status != models.StatusPending && rv.Status != models.StatusRejected {
		return ErrNotSubmitted
	}
	now := time.Now()
	rv.ValidatedBy = actor.ProfileID
	rv.ValidatedAt = &now
	if approve {
		rv.Status = models.StatusValidated
		rv.IsValidated = true
		rv.ValidationNote = note
		return notifyParents(tx, actor, childID, subject+" validé", note)
	}
	rv.Status = models.StatusRejected
	rv.IsValidated = false
	rv.RejectionReason = note
	return nil
}

// notifyParents writes one message per parent linked to the child.
func notifyParents(tx *gorm.DB, actor Actor, childID, subject, note string) error {
	var rels []models.ParentChildRelation
	if err := tx.Where("child_id = ?", childID).Find(&rels).Error; err != nil {
		return err
	}
	body := "Le rapport de votre enfant est disponible."
	if note != "" {
		body += "\n\n" + note
	}
	for _, rel := range rels {
		msg := models.Message{
			SenderID:    actor.ProfileID,
			RecipientID: rel.ParentID,
			ChildID:     childID,
			Subject:     subject,
			Body:        body,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
	}
	return nil
}
