package notify

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedAbsence(t *testing.T, gdb *gorm.DB, primaries, others int) (*models.Child, []string) {
	t.Helper()
	child := models.Child{FirstName: "Léo", LastName: "Dubois", Section: "grands"}
	if err := gdb.Create(&child).Error; err != nil {
		t.Fatalf("seed child: %v", err)
	}

	var parentIDs []string
	link := func(primary bool) {
		p := models.Profile{UserID: uuid.NewString(), Role: models.RoleParent}
		if err := gdb.Create(&p).Error; err != nil {
			t.Fatalf("seed parent: %v", err)
		}
		rel := models.ParentChildRelation{ParentID: p.ID, ChildID: child.ID, IsPrimaryContact: primary}
		if err := gdb.Create(&rel).Error; err != nil {
			t.Fatalf("seed relation: %v", err)
		}
		if primary || primaries == 0 {
			parentIDs = append(parentIDs, p.ID)
		}
	}
	for i := 0; i < primaries; i++ {
		link(true)
	}
	for i := 0; i < others; i++ {
		link(false)
	}

	att := models.DailyAttendance{
		ChildID:       child.ID,
		Date:          time.Now().Format("2006-01-02"),
		IsPresent:     false,
		AbsenceReason: "fièvre",
	}
	if err := gdb.Create(&att).Error; err != nil {
		t.Fatalf("seed attendance: %v", err)
	}
	return &child, parentIDs
}

func TestNotifyAbsencesMessagesPrimaryContacts(t *testing.T) {
	gdb := openTestDB(t)
	child, primaryIDs := seedAbsence(t, gdb, 1, 1)

	if err := NotifyAbsences(gdb); err != nil {
		t.Fatalf("notify: %v", err)
	}

	var msgs []models.Message
	if err := gdb.Where("child_id = ?", child.ID).Find(&msgs).Error; err != nil {
		t.Fatalf("load messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("want 1 message (primary contact only), got %d", len(msgs))
	}
	if msgs[0].RecipientID != primaryIDs[0] {
		t.Errorf("wrong recipient")
	}

	var att models.DailyAttendance
	if err := gdb.Where("child_id = ?", child.ID).First(&att).Error; err != nil {
		t.Fatalf("load attendance: %v", err)
	}
	if !att.AbsenceNotified {
		t.Error("absence_notified flag not set")
	}
}

func TestNotifyAbsencesFallsBackToAllParents(t *testing.T) {
	gdb := openTestDB(t)
	child, parentIDs := seedAbsence(t, gdb, 0, 2)

	if err := NotifyAbsences(gdb); err != nil {
		t.Fatalf("notify: %v", err)
	}

	var count int64
	gdb.Model(&models.Message{}).Where("child_id = ?", child.ID).Count(&count)
	if int(count) != len(parentIDs) {
		t.Errorf("want %d messages, got %d", len(parentIDs), count)
	}
}

func TestNotifyAbsencesPicksUpBackdatedRows(t *testing.T) {
	gdb := openTestDB(t)
	child, primaryIDs := seedAbsence(t, gdb, 1, 0)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	if err := gdb.Model(&models.DailyAttendance{}).
		Where("child_id = ?", child.ID).
		Update("date", yesterday).Error; err != nil {
		t.Fatalf("backdate attendance: %v", err)
	}

	if err := NotifyAbsences(gdb); err != nil {
		t.Fatalf("notify: %v", err)
	}

	var msgs []models.Message
	if err := gdb.Where("child_id = ?", child.ID).Find(&msgs).Error; err != nil {
		t.Fatalf("load messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("want 1 message for yesterday's absence, got %d", len(msgs))
	}
	if msgs[0].RecipientID != primaryIDs[0] {
		t.Errorf("wrong recipient")
	}
	if want := "Absence du " + yesterday; msgs[0].Subject != want {
		t.Errorf("subject = %q, want %q", msgs[0].Subject, want)
	}

	var att models.DailyAttendance
	if err := gdb.Where("child_id = ?", child.ID).First(&att).Error; err != nil {
		t.Fatalf("load attendance: %v", err)
	}
	if !att.AbsenceNotified {
		t.Error("absence_notified flag not set")
	}
}

func TestNotifyAbsencesIsIdempotent(t *testing.T) {
	gdb := openTestDB(t)
	child, _ := seedAbsence(t, gdb, 1, 0)

	if err := NotifyAbsences(gdb); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := NotifyAbsences(gdb); err != nil {
		t.Fatalf("second run: %v", err)
	}

	var count int64
	gdb.Model(&models.Message{}).Where("child_id = ?", child.ID).Count(&count)
	if count != 1 {
		t.Errorf("second run must not re-notify, got %d messages", count)
	}
}
