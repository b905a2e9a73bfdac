package database

import (
	"fmt"
	"time"

	"github.com/Eursukkul/event-booking/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema plus the seat-inventory constraint that backs the booking transaction.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Event{}, &models.Booking{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	err := db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_events_seat_inventory') THEN
				ALTER TABLE events ADD CONSTRAINT chk_events_seat_inventory
				CHECK (seats_available >= 0 AND seats_available <= total_seats);
			END IF;
		END $$
	`).Error
	if err != nil {
		return fmt.Errorf("add seat inventory constraint: %w", err)
	}

	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_user_created
		ON bookings (user_id, created_at DESC)
	`).Error
}
