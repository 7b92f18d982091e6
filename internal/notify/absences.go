// Package notify runs the background absence notifier: parents of a child
// marked absent get a message once, then the row's absence_notified flag is
// set so the next tick skips it.
package notify

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
)

// StartAbsenceLoop launches the ticker goroutine. Callers gate it on config
// (ABSENCE_NOTIFY=1) so dev servers stay quiet.
func StartAbsenceLoop(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := NotifyAbsences(db.Conn()); err != nil {
				log.Printf("absence notifier: %v", err)
			}
		}
	}()
}

// NotifyAbsences processes every un-notified absence up to today, so
// backdated rows and rows the last tick of the day missed still go out.
// Each row is handled in its own transaction: message fan-out and the
// notified flag commit together, and one bad row doesn't block the rest.
func NotifyAbsences(gdb *gorm.DB) error {
	today := time.Now().Format("2006-01-02")

	var rows []models.DailyAttendance
	if err := gdb.
		Where("date <= ? AND is_present = ? AND absence_notified = ?", today, false, false).
		Find(&rows).Error; err != nil {
		return err
	}

	for i := range rows {
		if err := notifyOne(gdb, &rows[i]); err != nil {
			log.Printf("absence notifier: child %s: %v", rows[i].ChildID, err)
		}
	}
	return nil
}

func notifyOne(gdb *gorm.DB, att *models.DailyAttendance) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var child models.Child
		if err := tx.First(&child, "id = ?", att.ChildID).Error; err != nil {
			return err
		}

		// Primary contacts first; fall back to all linked parents.
		var rels []models.ParentChildRelation
		if err := tx.Where("child_id = ? AND is_primary_contact = ?", att.ChildID, true).
			Find(&rels).Error; err != nil {
			return err
		}
		if len(rels) == 0 {
			if err := tx.Where("child_id = ?", att.ChildID).Find(&rels).Error; err != nil {
				return err
			}
		}

		body := fmt.Sprintf("%s %s a été marqué(e) absent(e) le %s.", child.FirstName, child.LastName, att.Date)
		if att.AbsenceReason != "" {
			body += "\nMotif : " + att.AbsenceReason
		}
		for _, rel := range rels {
			msg := models.Message{
				RecipientID: rel.ParentID,
				ChildID:     att.ChildID,
				Subject:     "Absence du " + att.Date,
				Body:        body,
			}
			if err := tx.Create(&msg).Error; err != nil {
				return err
			}
		}

		att.AbsenceNotified = true
		return tx.Save(att).Error
	})
}
