package service

import (
	"context"
	"sort"
	"sync"

	equipmenterrors "bikeshare/internal/equipment/errors"
	"bikeshare/internal/equipment/validator"
	"bikeshare/pkg/config"
	mongotx "bikeshare/pkg/db/mongo"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"
)

// In-memory repositories shared by the service tests.

type memoryBicycles struct {
	mu   sync.Mutex
	next int64
	data map[int64]model.Bicycle
}

func newMemoryBicycles(bikes ...model.Bicycle) *memoryBicycles {
	m := &memoryBicycles{data: map[int64]model.Bicycle{}}
	for _, b := range bikes {
		m.data[b.ID] = b
		m.next = max(m.next, b.ID)
	}
	return m
}

func (m *memoryBicycles) Create(ctx context.Context, bike *model.Bicycle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.data {
		if b.Number == bike.Number {
			return equipmenterrors.ErrDuplicateNumber
		}
	}
	m.next++
	bike.ID = m.next
	m.data[bike.ID] = *bike
	return nil
}

func (m *memoryBicycles) FindByID(ctx context.Context, id int64) (*model.Bicycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[id]
	if !ok {
		return nil, equipmenterrors.ErrBicycleNotFound
	}
	return &b, nil
}

func (m *memoryBicycles) FindByIDs(ctx context.Context, ids []int64) ([]*model.Bicycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Bicycle{}
	for _, id := range ids {
		if b, ok := m.data[id]; ok {
			out = append(out, &b)
		}
	}
	return out, nil
}

func (m *memoryBicycles) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Bicycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Bicycle{}
	for _, b := range m.data {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryBicycles) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data)), nil
}

func (m *memoryBicycles) Save(ctx context.Context, bike *model.Bicycle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[bike.ID]; !ok {
		return equipmenterrors.ErrBicycleNotFound
	}
	m.data[bike.ID] = *bike
	return nil
}

func (m *memoryBicycles) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return equipmenterrors.ErrBicycleNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *memoryBicycles) get(id int64) model.Bicycle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[id]
}

type memoryLocks struct {
	mu   sync.Mutex
	next int64
	data map[int64]model.Lock
}

func newMemoryLocks(locks ...model.Lock) *memoryLocks {
	m := &memoryLocks{data: map[int64]model.Lock{}}
	for _, l := range locks {
		m.data[l.ID] = l
		m.next = max(m.next, l.ID)
	}
	return m
}

func (m *memoryLocks) Create(ctx context.Context, lock *model.Lock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	lock.ID = m.next
	m.data[lock.ID] = *lock
	return nil
}

func (m *memoryLocks) FindByID(ctx context.Context, id int64) (*model.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.data[id]
	if !ok {
		return nil, equipmenterrors.ErrLockNotFound
	}
	return &l, nil
}

func (m *memoryLocks) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Lock{}
	for _, l := range m.data {
		l := l
		out = append(out, &l)
	}
	return out, nil
}

func (m *memoryLocks) FindByTotem(ctx context.Context, totemID int64) ([]*model.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Lock{}
	for _, l := range m.data {
		l := l
		if l.AttachedTo(totemID) {
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryLocks) FindByBicycle(ctx context.Context, bikeID int64) (*model.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.data {
		l := l
		if l.Holds(bikeID) {
			return &l, nil
		}
	}
	return nil, equipmenterrors.ErrLockNotFound
}

func (m *memoryLocks) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data)), nil
}

func (m *memoryLocks) Save(ctx context.Context, lock *model.Lock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[lock.ID]; !ok {
		return equipmenterrors.ErrLockNotFound
	}
	m.data[lock.ID] = *lock
	return nil
}

func (m *memoryLocks) DetachTotem(ctx context.Context, totemID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, l := range m.data {
		if l.AttachedTo(totemID) {
			l.TotemID = nil
			m.data[id] = l
			n++
		}
	}
	return n, nil
}

func (m *memoryLocks) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return equipmenterrors.ErrLockNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *memoryLocks) get(id int64) model.Lock {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[id]
}

type memoryTotems struct {
	mu   sync.Mutex
	next int64
	data map[int64]model.Totem
}

func newMemoryTotems(totems ...model.Totem) *memoryTotems {
	m := &memoryTotems{data: map[int64]model.Totem{}}
	for _, t := range totems {
		m.data[t.ID] = t
		m.next = max(m.next, t.ID)
	}
	return m
}

func (m *memoryTotems) Create(ctx context.Context, totem *model.Totem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	totem.ID = m.next
	m.data[totem.ID] = *totem
	return nil
}

func (m *memoryTotems) FindByID(ctx context.Context, id int64) (*model.Totem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.data[id]
	if !ok {
		return nil, equipmenterrors.ErrTotemNotFound
	}
	return &t, nil
}

func (m *memoryTotems) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Totem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Totem{}
	for _, t := range m.data {
		t := t
		out = append(out, &t)
	}
	return out, nil
}

func (m *memoryTotems) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data)), nil
}

func (m *memoryTotems) Save(ctx context.Context, totem *model.Totem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[totem.ID]; !ok {
		return equipmenterrors.ErrTotemNotFound
	}
	m.data[totem.ID] = *totem
	return nil
}

func (m *memoryTotems) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return equipmenterrors.ErrTotemNotFound
	}
	delete(m.data, id)
	return nil
}

type recordingAudit struct {
	mu      sync.Mutex
	records []*model.AuditRecord
}

func (r *recordingAudit) Record(ctx context.Context, record *model.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *recordingAudit) last() *model.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return nil
	}
	return r.records[len(r.records)-1]
}

type fixture struct {
	bikes  *memoryBicycles
	locks  *memoryLocks
	totems *memoryTotems
	audit  *recordingAudit
	cfg    *config.Config
	v      *validator.EquipmentValidator
	tx     mongotx.TransactionManager
}

func newFixture(bikes []model.Bicycle, locks []model.Lock, totems []model.Totem) *fixture {
	log := logger.New(logger.Config{Level: "info", Format: logger.JSON, Service: "test"})
	return &fixture{
		bikes:  newMemoryBicycles(bikes...),
		locks:  newMemoryLocks(locks...),
		totems: newMemoryTotems(totems...),
		audit:  &recordingAudit{},
		cfg:    &config.Config{Log: log},
		v:      validator.NewEquipmentValidator(log),
		tx:     mongotx.InlineTransactionManager{},
	}
}

func (f *fixture) bicycleService() BicycleService {
	return NewBicycleService(f.bikes, f.locks, f.audit, f.tx, f.v, f.cfg)
}

func (f *fixture) lockService() LockService {
	return NewLockService(f.locks, f.bikes, f.totems, f.audit, f.tx, f.v, f.cfg)
}

func (f *fixture) totemService() TotemService {
	return NewTotemService(f.totems, f.locks, f.bikes, f.tx, f.v, f.cfg)
}
