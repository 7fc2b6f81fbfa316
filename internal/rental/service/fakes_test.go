package service

import (
	"context"
	"errors"
	"sync"
	"time"

	rentalerrors "bikeshare/internal/rental/errors"
	"bikeshare/internal/rental/validator"
	"bikeshare/pkg/config"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"
)

type memoryRentals struct {
	mu        sync.Mutex
	byID      map[int64]*model.Rental
	nextID    int64
	createErr error
	finishErr error
}

func newMemoryRentals() *memoryRentals {
	return &memoryRentals{byID: map[int64]*model.Rental{}}
}

func (m *memoryRentals) Create(ctx context.Context, rental *model.Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range m.byID {
		if r.Status == model.RentalInProgress && (r.CyclistID == rental.CyclistID || r.BicycleID == rental.BicycleID) {
			return rentalerrors.ErrActiveRentalExists
		}
	}
	m.nextID++
	rental.ID = m.nextID
	stored := *rental
	m.byID[rental.ID] = &stored
	return nil
}

func (m *memoryRentals) FindByID(ctx context.Context, id int64) (*model.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, rentalerrors.ErrRentalNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memoryRentals) FindActiveByCyclist(ctx context.Context, cyclistID int64) (*model.Rental, error) {
	return m.findActive(func(r *model.Rental) bool { return r.CyclistID == cyclistID })
}

func (m *memoryRentals) FindActiveByBicycle(ctx context.Context, bicycleID int64) (*model.Rental, error) {
	return m.findActive(func(r *model.Rental) bool { return r.BicycleID == bicycleID })
}

func (m *memoryRentals) findActive(match func(*model.Rental) bool) (*model.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.Status == model.RentalInProgress && match(r) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, rentalerrors.ErrRentalNotFound
}

func (m *memoryRentals) Finish(ctx context.Context, id int64, endLockID int64, endTime time.Time, extraChargeID *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finishErr != nil {
		return m.finishErr
	}
	r, ok := m.byID[id]
	if !ok || r.Status != model.RentalInProgress {
		return rentalerrors.ErrRentalNotActive
	}
	r.EndLockID = &endLockID
	r.EndTime = &endTime
	r.ExtraChargeID = extraChargeID
	r.Status = model.RentalFinished
	return nil
}

func (m *memoryRentals) all() []*model.Rental {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Rental, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, r)
	}
	return out
}

type memoryCharges struct {
	byID      map[int64]*model.Charge
	nextID    int64
	createErr error
}

func newMemoryCharges() *memoryCharges {
	return &memoryCharges{byID: map[int64]*model.Charge{}}
}

func (m *memoryCharges) Create(ctx context.Context, charge *model.Charge) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	charge.ID = m.nextID
	stored := *charge
	m.byID[charge.ID] = &stored
	return nil
}

func (m *memoryCharges) FindByID(ctx context.Context, id int64) (*model.Charge, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, rentalerrors.ErrChargeNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memoryCharges) MarkReconciliationPending(ctx context.Context, id int64) error {
	c, ok := m.byID[id]
	if !ok {
		return rentalerrors.ErrChargeNotFound
	}
	c.ReconciliationPending = true
	return nil
}

func (m *memoryCharges) AttachGatewayCharge(ctx context.Context, id int64, gatewayID int64) error {
	c, ok := m.byID[id]
	if !ok {
		return rentalerrors.ErrChargeNotFound
	}
	c.GatewayID = &gatewayID
	return nil
}

func (m *memoryCharges) Cancel(ctx context.Context, id int64, at time.Time) error {
	c, ok := m.byID[id]
	if !ok || c.Status != model.ChargePending {
		return rentalerrors.ErrChargeNotFound
	}
	c.Status = model.ChargeCancelled
	c.FinalizedAt = &at
	return nil
}

func (m *memoryCharges) withKind(kind model.ChargeKind) []*model.Charge {
	var out []*model.Charge
	for _, c := range m.byID {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

type memoryCyclists map[int64]*model.Cyclist

func (m memoryCyclists) FindByID(ctx context.Context, id int64) (*model.Cyclist, error) {
	c, ok := m[id]
	if !ok {
		return nil, rentalerrors.ErrCyclistNotFound
	}
	return c, nil
}

type memoryCheckoutLocks struct {
	mu    sync.Mutex
	held  map[int64]string
	taken int
}

func newMemoryCheckoutLocks() *memoryCheckoutLocks {
	return &memoryCheckoutLocks{held: map[int64]string{}}
}

func (m *memoryCheckoutLocks) Acquire(ctx context.Context, lock *model.RentalLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[lock.ID]; ok {
		return rentalerrors.ErrCheckoutInProgress
	}
	m.held[lock.ID] = lock.Owner
	m.taken++
	return nil
}

func (m *memoryCheckoutLocks) Release(ctx context.Context, cyclistID int64, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[cyclistID] == owner {
		delete(m.held, cyclistID)
	}
	return nil
}

type equipmentCall struct {
	action string
	lockID int64
	bikeID int64
}

// fakeEquipment models docked bicycles as lock id -> bike id.
type fakeEquipment struct {
	docked    map[int64]int64
	unlockErr error
	lockErr   error
	calls     []equipmentCall
}

func (f *fakeEquipment) BikeAtLock(ctx context.Context, lockID int64) (*model.Bicycle, error) {
	bikeID, ok := f.docked[lockID]
	if !ok {
		return nil, apperrors.Business(apperrors.CodeNoBikeAtLock, "no bicycle docked")
	}
	return &model.Bicycle{ID: bikeID, Status: model.BicycleAvailable}, nil
}

func (f *fakeEquipment) Unlock(ctx context.Context, lockID, bikeID int64) error {
	f.calls = append(f.calls, equipmentCall{"unlock", lockID, bikeID})
	if f.unlockErr != nil {
		return f.unlockErr
	}
	delete(f.docked, lockID)
	return nil
}

func (f *fakeEquipment) Lock(ctx context.Context, lockID, bikeID int64) error {
	f.calls = append(f.calls, equipmentCall{"lock", lockID, bikeID})
	if f.lockErr != nil {
		return f.lockErr
	}
	f.docked[lockID] = bikeID
	return nil
}

func (f *fakeEquipment) Bicycle(ctx context.Context, bikeID int64) (*model.Bicycle, error) {
	return &model.Bicycle{ID: bikeID, Status: model.BicycleInUse}, nil
}

type fakePayments struct {
	status   model.ChargeStatus
	err      error
	nextID   int64
	charged  []float64
	enqueued []float64
	clock    *clock
}

func (f *fakePayments) Charge(ctx context.Context, amount float64, cyclistID int64) (*model.Charge, error) {
	f.charged = append(f.charged, amount)
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == "" {
		status = model.ChargePaid
	}
	return f.record(amount, cyclistID, status), nil
}

func (f *fakePayments) Enqueue(ctx context.Context, amount float64, cyclistID int64) (*model.Charge, error) {
	f.enqueued = append(f.enqueued, amount)
	return f.record(amount, cyclistID, model.ChargePending), nil
}

func (f *fakePayments) record(amount float64, cyclistID int64, status model.ChargeStatus) *model.Charge {
	f.nextID++
	now := f.clock.now()
	return &model.Charge{
		ID:          100 + f.nextID,
		Amount:      amount,
		CyclistID:   cyclistID,
		Status:      status,
		RequestedAt: now,
		FinalizedAt: &now,
	}
}

type sentEmail struct {
	to, subject, body string
}

type fakeNotifier struct {
	err  error
	sent []sentEmail
}

func (f *fakeNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentEmail{to, subject, body})
	return f.err
}

type fakeEvents struct {
	refundErr error
	refunds   []model.RefundRequestedEvent
	started   []model.RentalEvent
	finished  []model.RentalEvent
}

func (f *fakeEvents) RefundRequested(ctx context.Context, event model.RefundRequestedEvent, correlationID string) error {
	if f.refundErr != nil {
		return f.refundErr
	}
	f.refunds = append(f.refunds, event)
	return nil
}

func (f *fakeEvents) RentalStarted(ctx context.Context, event model.RentalEvent, correlationID string) error {
	f.started = append(f.started, event)
	return nil
}

func (f *fakeEvents) RentalFinished(ctx context.Context, event model.RentalEvent, correlationID string) error {
	f.finished = append(f.finished, event)
	return nil
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

var errBroken = errors.New("connection refused")

type rentalFixture struct {
	rentals   *memoryRentals
	charges   *memoryCharges
	cyclists  memoryCyclists
	locks     *memoryCheckoutLocks
	equipment *fakeEquipment
	payments  *fakePayments
	notifier  *fakeNotifier
	events    *fakeEvents
	clock     *clock
	cfg       *config.Config
}

// newRentalFixture starts with cyclist 1 (active) and bike 1 docked at lock 1.
func newRentalFixture() *rentalFixture {
	clk := &clock{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	return &rentalFixture{
		rentals: newMemoryRentals(),
		charges: newMemoryCharges(),
		cyclists: memoryCyclists{
			1: {ID: 1, Name: "Ana", Email: "ana@example.com", Status: model.CyclistActive},
			2: {ID: 2, Name: "Bruno", Email: "bruno@example.com", Status: model.CyclistAwaitingConfirmation},
		},
		locks:     newMemoryCheckoutLocks(),
		equipment: &fakeEquipment{docked: map[int64]int64{1: 1}},
		payments:  &fakePayments{clock: clk},
		notifier:  &fakeNotifier{},
		events:    &fakeEvents{},
		clock:     clk,
		cfg: &config.Config{
			Log:                     logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}),
			RentalBaseFee:           10,
			RentalFreeMinutes:       120,
			RentalExtraBlockMinutes: 30,
			RentalExtraBlockFee:     5,
			CheckoutLockTTL:         time.Minute,
		},
	}
}

func (f *rentalFixture) service() RentalService {
	return NewRentalService(f.rentals, f.charges, f.cyclists, f.locks, f.equipment, f.payments, f.notifier, f.events, validator.NewRentalValidator(f.cfg.Log), f.cfg, f.clock.now)
}
