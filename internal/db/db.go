package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lespetitsreves/lprds/internal/config"
	"github.com/lespetitsreves/lprds/internal/models"
)

var conn *gorm.DB

func Init(cfg *config.Config) error {
	var (
		gdb *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "postgres":
		gdb, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{})
	case "sqlite":
		gdb, err = gorm.Open(sqlite.Open(cfg.SqliteDSN()), &gorm.Config{})
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	conn = gdb

	if cfg.DBDriver == "sqlite" {
		// SQLite works best with a single writer; cap the pool accordingly.
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := Migrate(conn); err != nil {
		return err
	}

	log.Printf("database ready (%s)", cfg.DBDriver)
	return nil
}

// Migrate creates the schema plus the composite indexes GORM doesn't
// auto-create from struct tags. Tests call it directly against throwaway
// databases.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&models.Profile{},
		&models.Child{},
		&models.Group{},
		&models.DailyReport{},
		&models.WeeklyReport{},
		&models.DailyAttendance{},
		&models.QRScanLog{},
		&models.ParentChildRelation{},
		&models.Message{},
		&models.AuthorizedPerson{},
		&models.MedicalRecord{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	gdb.Exec("CREATE INDEX IF NOT EXISTS idx_daily_reports_status_date ON daily_reports(status, date)")
	gdb.Exec("CREATE INDEX IF NOT EXISTS idx_messages_recipient_read   ON messages(recipient_id, is_read)")
	gdb.Exec("CREATE INDEX IF NOT EXISTS idx_attendance_date_present   ON daily_attendance(date, is_present)")

	return nil
}

func Conn() *gorm.DB {
	return conn
}
