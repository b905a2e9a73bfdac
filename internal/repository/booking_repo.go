package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/event-booking/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	FindByUser(ctx context.Context, userID uint, status *models.BookingStatus) ([]models.Booking, error)
	FindByEvent(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus) error
	CancelByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]models.Booking, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

// FindByID resolves the owner (id, name, email) and the event, even if the event was deleted.
func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("User", selectUserSummary).
		Preload("Event", unscoped).
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByUser(ctx context.Context, userID uint, status *models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).
		Preload("Event", unscoped).
		Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByEvent(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).
		Preload("User", selectUserSummary).
		Where("event_id = ?", eventID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus) error {
	updates := map[string]any{"status": status}
	if status == models.StatusCancelled {
		updates["cancelled_at"] = time.Now()
	}
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(updates).Error
}

// CancelByEvent cancels every confirmed booking of the event and returns the rows it changed.
func (r *bookingRepository) CancelByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]models.Booking, error) {
	var cancelled []models.Booking
	err := tx.WithContext(ctx).
		Model(&cancelled).
		Clauses(clause.Returning{}).
		Where("event_id = ? AND status = ?", eventID, models.StatusConfirmed).
		Updates(map[string]any{
			"status":       models.StatusCancelled,
			"cancelled_at": time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
