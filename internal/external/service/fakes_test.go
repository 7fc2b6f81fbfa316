package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	externalerrors "bikeshare/internal/external/errors"
	"bikeshare/internal/external/validator"
	"bikeshare/pkg/config"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"
)

var errBroken = errors.New("connection reset by peer")

type memoryCharges struct {
	mu            sync.Mutex
	byID          map[int64]*model.Charge
	nextID        int64
	createErr     error
	transitionErr error
}

func newMemoryCharges() *memoryCharges {
	return &memoryCharges{byID: map[int64]*model.Charge{}}
}

func (m *memoryCharges) Create(ctx context.Context, charge *model.Charge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	m.mu.Lock()
	defer m.mu.Unlock()
	charge, ok := m.byID[id]
	if !ok {
		return nil, externalerrors.ErrChargeNotFound
	}
	copied := *charge
	return &copied, nil
}

func (m *memoryCharges) FindPending(ctx context.Context, limit int) ([]*model.Charge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*model.Charge
	for _, charge := range m.byID {
		if charge.Status == model.ChargePending {
			copied := *charge
			pending = append(pending, &copied)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (m *memoryCharges) Transition(ctx context.Context, id int64, from, to model.ChargeStatus, finalizedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transitionErr != nil {
		return m.transitionErr
	}
	charge, ok := m.byID[id]
	if !ok || charge.Status != from {
		return externalerrors.ErrStatusChanged
	}
	charge.Status = to
	charge.FinalizedAt = &finalizedAt
	return nil
}

func (m *memoryCharges) put(charge model.Charge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if charge.ID > m.nextID {
		m.nextID = charge.ID
	}
	m.byID[charge.ID] = &charge
}

func (m *memoryCharges) status(id int64) model.ChargeStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].Status
}

type memoryEmails struct {
	byID   map[int64]*model.Email
	nextID int64
}

func newMemoryEmails() *memoryEmails {
	return &memoryEmails{byID: map[int64]*model.Email{}}
}

func (m *memoryEmails) Create(ctx context.Context, email *model.Email) error {
	m.nextID++
	email.ID = m.nextID
	stored := *email
	m.byID[email.ID] = &stored
	return nil
}

func (m *memoryEmails) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	email, ok := m.byID[id]
	if !ok {
		return externalerrors.ErrEmailNotFound
	}
	email.Sent = true
	email.SentAt = &sentAt
	return nil
}

type memoryCardValidations struct {
	stored []model.CardValidation
}

func (m *memoryCardValidations) Create(ctx context.Context, validation *model.CardValidation) error {
	validation.ID = int64(len(m.stored) + 1)
	m.stored = append(m.stored, *validation)
	return nil
}

type fakeSender struct {
	err  error
	sent []*model.Email
}

func (f *fakeSender) Send(ctx context.Context, email *model.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

var fixedNow = time.Date(2026, time.October, 19, 14, 30, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{Log: logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})}
}

func testValidator(cfg *config.Config) *validator.ExternalValidator {
	return validator.NewExternalValidator(cfg.Log)
}

func newTestChargeService(repo *memoryCharges) *chargeService {
	cfg := testConfig()
	svc := NewChargeService(repo, testValidator(cfg), cfg).(*chargeService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}
