package services

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

// openTestDB returns an isolated in-file SQLite database in a temp directory.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dir := t.TempDir()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{
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

func seedChild(t *testing.T, gdb *gorm.DB) *models.Child {
	t.Helper()
	child := models.Child{
		FirstName: "Emma",
		LastName:  "Martin",
		BirthDate: time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC),
		Section:   "moyens",
		Status:    models.ChildActive,
	}
	if err := gdb.Create(&child).Error; err != nil {
		t.Fatalf("seed child: %v", err)
	}
	return &child
}

func seedProfile(t *testing.T, gdb *gorm.DB, role string) *models.Profile {
	t.Helper()
	p := models.Profile{UserID: "user-" + role + "-" + uuid.NewString(), Role: role}
	if err := gdb.Create(&p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return &p
}

func seedRelation(t *testing.T, gdb *gorm.DB, parentID, childID string, primary bool) *models.ParentChildRelation {
	t.Helper()
	rel := models.ParentChildRelation{
		ParentID:         parentID,
		ChildID:          childID,
		Relationship:     "mère",
		IsPrimaryContact: primary,
	}
	if err := gdb.Create(&rel).Error; err != nil {
		t.Fatalf("seed relation: %v", err)
	}
	return &rel
}
