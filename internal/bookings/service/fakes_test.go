package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "crafthub/internal/bookings/errors"
	"crafthub/internal/bookings/validator"
	workshopserrors "crafthub/internal/workshops/errors"
	"crafthub/pkg/config"
	mongotx "crafthub/pkg/db/mongo"
	"crafthub/pkg/logger"
	"crafthub/pkg/model"
)

const (
	workshopID = "665f1b2c3d4e5f6a7b8c9d0e"
	otherShop  = "665f1b2c3d4e5f6a7b8c9d0f"
	missingID  = "665f1b2c3d4e5f6a7b8c9dff"
)

// memStore keeps bookings and seat counters together so a transaction can
// snapshot and roll back both, like a Mongo session would.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	bookings  map[string]model.Booking
	workshops map[string]model.Workshop
	seq       int

	createErr error
	refunds   int
}

func newMemStore() *memStore {
	return &memStore{
		bookings:  make(map[string]model.Booking),
		workshops: make(map[string]model.Workshop),
	}
}

func (m *memStore) addWorkshop(id string, places int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workshops[id] = model.Workshop{ID: id, Title: "Wheel throwing " + id[len(id)-2:], Places: places}
}

func (m *memStore) places(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workshops[id].Places
}

func (m *memStore) booking(id string) model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}

func (m *memStore) refundCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refunds
}

func (m *memStore) executeTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	bookings := make(map[string]model.Booking, len(m.bookings))
	for k, v := range m.bookings {
		bookings[k] = v
	}
	workshops := make(map[string]model.Workshop, len(m.workshops))
	for k, v := range m.workshops {
		workshops[k] = v
	}
	refunds, seq := m.refunds, m.seq
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.bookings, m.workshops, m.refunds, m.seq = bookings, workshops, refunds, seq
		m.mu.Unlock()
		return err
	}
	return nil
}

type fakeBookings struct{ *memStore }

func (f fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	b.ID = fmt.Sprintf("%024x", f.seq)
	f.bookings[b.ID] = *b
	return nil
}

func (f fakeBookings) FindByID(_ context.Context, id string) (*model.Booking, error) {
	if len(id) != 24 {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	return &b, nil
}

func (f fakeBookings) FindByIDs(_ context.Context, userID string, ids []string) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Booking
	for _, id := range ids {
		if b, ok := f.bookings[id]; ok && b.UserID == userID {
			out = append(out, &b)
		}
	}
	return out, nil
}

func (f fakeBookings) FindPendingByUser(_ context.Context, userID string) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.UserID == userID && b.Status == model.StatusPending {
			b := b
			out = append(out, &b)
		}
	}
	return out, nil
}

func (f fakeBookings) FindDue(_ context.Context, now time.Time, limit int) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.bookings {
		if len(out) == limit {
			break
		}
		if b.Status == model.StatusPending && !b.ExpiresAt.After(now) {
			b := b
			out = append(out, &b)
		}
	}
	return out, nil
}

func (f fakeBookings) TransitionFromPending(_ context.Context, id string, to model.BookingStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != model.StatusPending {
		return false, nil
	}
	if to == model.StatusConfirmed && b.ExpiresAt.Before(at) {
		return false, nil
	}
	b.Status = to
	b.SettledAt = &at
	f.bookings[id] = b
	return true, nil
}

func (f fakeBookings) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return f.executeTransaction(ctx, fn)
}

type fakeSeats struct{ *memStore }

func (f fakeSeats) ReserveSeats(_ context.Context, id string, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workshops[id]
	if !ok {
		return fmt.Errorf("%w: %s", workshopserrors.ErrNotFound, id)
	}
	if w.Places < n {
		return &workshopserrors.CapacityError{WorkshopID: id, Requested: n, Available: w.Places}
	}
	w.Places -= n
	f.workshops[id] = w
	return nil
}

func (f fakeSeats) ReleaseSeats(_ context.Context, id string, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workshops[id]
	if !ok {
		return fmt.Errorf("%w: %s", workshopserrors.ErrNotFound, id)
	}
	w.Places += n
	f.workshops[id] = w
	f.refunds++
	return nil
}

func (f fakeSeats) FindByIDs(_ context.Context, ids []string) ([]*model.Workshop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Workshop
	for _, id := range ids {
		if w, ok := f.workshops[id]; ok {
			out = append(out, &w)
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e model.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc       *bookingService
	store     *memStore
	publisher *recordingPublisher
	clock     *fakeClock
}

func newFixture() *fixture {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: &bytes.Buffer{}})
	cfg := &config.Config{
		Log:                 log,
		BookingHoldDuration: 5 * time.Minute,
		SweepBatchSize:      2,
	}

	store := newMemStore()
	publisher := &recordingPublisher{}
	clock := &fakeClock{t: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}

	svc := NewBookingService(
		fakeBookings{store},
		fakeSeats{store},
		publisher,
		validator.NewBookingValidator(log),
		cfg,
	).(*bookingService)
	svc.now = clock.Now

	return &fixture{svc: svc, store: store, publisher: publisher, clock: clock}
}

func actor(id string) model.Actor {
	return model.Actor{UserID: id, Role: model.RoleUser}
}

func hold(workshop string, quantity int) *model.HoldRequest {
	return &model.HoldRequest{WorkshopID: workshop, Quantity: &quantity}
}

var errInsertFailed = errors.New("insert failed")
