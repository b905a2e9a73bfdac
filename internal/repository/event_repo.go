package repository

import (
	"context"
	"strings"

	"github.com/Eursukkul/event-booking/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventFilter narrows Find. Empty fields are ignored.
type EventFilter struct {
	Category string
	Search   string
}

type EventRepository interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	Find(ctx context.Context, filter EventFilter) ([]models.Event, error)
	Update(ctx context.Context, tx *gorm.DB, event *models.Event) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ReserveSeats(ctx context.Context, tx *gorm.DB, id uint, seats int) (bool, error)
	ReleaseSeats(ctx context.Context, tx *gorm.DB, id uint, seats int) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("Organizer", selectUserSummary).
		First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given transaction.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Find(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	var events []models.Event
	q := r.db.WithContext(ctx).Preload("Organizer", selectUserSummary)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		q = q.Where("title ILIKE ?", "%"+escapeLike(filter.Search)+"%")
	}
	if err := q.Order("date ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Update writes the editable columns, including zero values.
func (r *eventRepository) Update(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return tx.WithContext(ctx).
		Model(event).
		Select("title", "description", "venue", "category", "date", "time", "price", "total_seats", "seats_available").
		Updates(event).Error
}

func (r *eventRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := tx.WithContext(ctx).Delete(&models.Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReserveSeats decrements seats_available by seats only if enough remain, as one statement.
// It reports false when the event is missing or short of seats.
func (r *eventRepository) ReserveSeats(ctx context.Context, tx *gorm.DB, id uint, seats int) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ? AND seats_available >= ?", id, seats).
		Update("seats_available", gorm.Expr("seats_available - ?", seats))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSeats gives seats back, never above total_seats. Soft-deleted events are included.
func (r *eventRepository) ReleaseSeats(ctx context.Context, tx *gorm.DB, id uint, seats int) error {
	return tx.WithContext(ctx).
		Unscoped().
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("seats_available", gorm.Expr("LEAST(total_seats, seats_available + ?)", seats)).Error
}

func selectUserSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
