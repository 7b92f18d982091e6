package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lespetitsreves/lprds/internal/models"
)

// DateOf formats a time as the YYYY-MM-DD key attendance and daily reports
// are stored under.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// ResolveScan turns scanner input into a child. Input is either the full
// badge payload ("LPRDS:...") or the 5-char short code printed under it.
func ResolveScan(gdb *gorm.DB, input string) (*models.Child, error) {
	if id, err := DecodeChildQR(input); err == nil {
		var child models.Child
		if err := gdb.First(&child, "id = ?", id).Error; err == nil {
			return &child, nil
		}
	}
	var child models.Child
	if err := gdb.Where("code_qr_id = ?", input).First(&child).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &child, nil
}

// RecordScan upserts the (child, today) attendance row for an arrival or
// departure and appends an immutable audit entry. Repeat scans of the same
// type overwrite the timestamp — one row per child per day, last write wins.
func RecordScan(gdb *gorm.DB, actor Actor, childID, scanType string) (*models.DailyAttendance, error) {
	if scanType != models.ScanArrival && scanType != models.ScanDeparture {
		return nil, ErrInvalidScanType
	}
	now := time.Now()
	date := DateOf(now)

	var out *models.DailyAttendance
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var att models.DailyAttendance
		err := tx.Where("child_id = ? AND date = ?", childID, date).First(&att).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			att = models.DailyAttendance{ChildID: childID, Date: date}
		} else if err != nil {
			return err
		}

		if scanType == models.ScanArrival {
			att.ArrivalTime = &now
			att.ArrivalScannedBy = actor.ProfileID
		} else {
			att.DepartureTime = &now
			att.DepartureScannedBy = actor.ProfileID
		}
		att.IsPresent = true

		if err := tx.Save(&att).Error; err != nil {
			return err
		}
		log := models.QRScanLog{
			ChildID:   childID,
			ActorID:   actor.ProfileID,
			ScanType:  scanType,
			ScannedAt: now,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}
		out = &att
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAbsent flags the (child, date) row absent and eligible for the absence
// notifier. Earlier arrival/departure times are kept on purpose: "arrived,
// then was sent home" is a valid day and the times document it.
func MarkAbsent(gdb *gorm.DB, actor Actor, childID, date, reason string) (*models.DailyAttendance, error) {
	if date == "" {
		date = DateOf(time.Now())
	}
	var att models.DailyAttendance
	err := gdb.Where("child_id = ? AND date = ?", childID, date).First(&att).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		att = models.DailyAttendance{ChildID: childID, Date: date}
	} else if err != nil {
		return nil, err
	}

	att.IsPresent = false
	att.AbsenceNotified = false
	att.AbsenceReason = reason

	if err := gdb.Save(&att).Error; err != nil {
		return nil, err
	}
	return &att, nil
}
