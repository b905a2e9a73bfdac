package service

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/Eursukkul/event-booking/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// fakeDB is an in-memory store whose transactions are serialized and rolled back on error,
// which is the guarantee the row locks give the real repositories.
type fakeDB struct {
	mu       sync.Mutex
	events   map[uint]models.Event
	deleted  map[uint]bool
	bookings map[uint]models.Booking
	users    map[uint]models.User
	nextID   uint
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		events:   map[uint]models.Event{},
		deleted:  map[uint]bool{},
		bookings: map[uint]models.Booking{},
		users:    map[uint]models.User{},
	}
}

func (db *fakeDB) withTx(fn func(tx *gorm.DB) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	events := cloneMap(db.events)
	deleted := cloneMap(db.deleted)
	bookings := cloneMap(db.bookings)

	if err := fn(nil); err != nil {
		db.events, db.deleted, db.bookings = events, deleted, bookings
		return err
	}
	return nil
}

func (db *fakeDB) id() uint {
	db.nextID++
	return db.nextID
}

func (db *fakeDB) addEvent(e models.Event) *models.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	e.ID = db.id()
	db.events[e.ID] = e
	return &e
}

func (db *fakeDB) event(id uint) models.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.events[id]
}

func (db *fakeDB) booking(id uint) models.Booking {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.bookings[id]
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type fakeEvents struct{ db *fakeDB }

func (f *fakeEvents) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return f.db.withTx(fn)
}

func (f *fakeEvents) Create(ctx context.Context, event *models.Event) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	event.ID = f.db.id()
	f.db.events[event.ID] = *event
	return nil
}

func (f *fakeEvents) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.events[id]
	if !ok || f.db.deleted[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

// Called inside withTx, so the lock is already held.
func (f *fakeEvents) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	e, ok := f.db.events[id]
	if !ok || f.db.deleted[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (f *fakeEvents) Find(ctx context.Context, filter repository.EventFilter) ([]models.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Event
	for id, e := range f.db.events {
		if f.db.deleted[id] {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEvents) Update(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	f.db.events[event.ID] = *event
	return nil
}

func (f *fakeEvents) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.db.events[id]; !ok || f.db.deleted[id] {
		return gorm.ErrRecordNotFound
	}
	f.db.deleted[id] = true
	return nil
}

func (f *fakeEvents) ReserveSeats(ctx context.Context, tx *gorm.DB, id uint, seats int) (bool, error) {
	e, ok := f.db.events[id]
	if !ok || f.db.deleted[id] || e.SeatsAvailable < seats {
		return false, nil
	}
	e.SeatsAvailable -= seats
	f.db.events[id] = e
	return true, nil
}

func (f *fakeEvents) ReleaseSeats(ctx context.Context, tx *gorm.DB, id uint, seats int) error {
	e, ok := f.db.events[id]
	if !ok {
		return nil
	}
	e.SeatsAvailable = min(e.TotalSeats, e.SeatsAvailable+seats)
	f.db.events[id] = e
	return nil
}

type fakeBookings struct{ db *fakeDB }

func (f *fakeBookings) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return f.db.withTx(fn)
}

func (f *fakeBookings) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	booking.ID = f.db.id()
	booking.CreatedAt = time.Now().Add(time.Duration(booking.ID) * time.Millisecond)
	f.db.bookings[booking.ID] = *booking
	return nil
}

func (f *fakeBookings) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if e, ok := f.db.events[b.EventID]; ok {
		b.Event = &e
	}
	if u, ok := f.db.users[b.UserID]; ok {
		b.User = &u
	}
	return &b, nil
}

func (f *fakeBookings) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	b, ok := f.db.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (f *fakeBookings) find(match func(models.Booking) bool, status *models.BookingStatus) []models.Booking {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Booking
	for _, b := range f.db.bookings {
		if !match(b) || (status != nil && b.Status != *status) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeBookings) FindByUser(ctx context.Context, userID uint, status *models.BookingStatus) ([]models.Booking, error) {
	return f.find(func(b models.Booking) bool { return b.UserID == userID }, status), nil
}

func (f *fakeBookings) FindByEvent(ctx context.Context, eventID uint, status *models.BookingStatus) ([]models.Booking, error) {
	return f.find(func(b models.Booking) bool { return b.EventID == eventID }, status), nil
}

func (f *fakeBookings) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus) error {
	b := f.db.bookings[bookingID]
	b.Status = status
	f.db.bookings[bookingID] = b
	return nil
}

func (f *fakeBookings) CancelByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]models.Booking, error) {
	var out []models.Booking
	for id, b := range f.db.bookings {
		if b.EventID != eventID || b.Status != models.StatusConfirmed {
			continue
		}
		b.Status = models.StatusCancelled
		f.db.bookings[id] = b
		out = append(out, b)
	}
	return out, nil
}

// recordingPublisher collects routing keys.
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return p.err
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
