package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	equipmenterrors "bikeshare/internal/equipment/errors"
	"bikeshare/internal/equipment/repository"
	"bikeshare/internal/equipment/validator"
	"bikeshare/pkg/config"
	mongotx "bikeshare/pkg/db/mongo"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/model"
	"bikeshare/pkg/sanitizer"
)

// Actions accepted by the lock status endpoint.
const (
	ActionLock   = "TRANCAR"
	ActionUnlock = "DESTRANCAR"
)

type LockService interface {
	Create(ctx context.Context, lock *model.Lock) error
	GetByID(ctx context.Context, id int64) (*model.Lock, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Lock, int64, error)
	Update(ctx context.Context, id int64, updates *model.LockUpdate) (*model.Lock, error)
	Delete(ctx context.Context, id int64) error
	Lock(ctx context.Context, id int64, bikeID *int64) (*model.Lock, error)
	Unlock(ctx context.Context, id int64, bikeID *int64) (*model.Lock, error)
	ApplyAction(ctx context.Context, id int64, action string) (*model.Lock, error)
	BikeAtLock(ctx context.Context, id int64) (*model.Bicycle, error)
	JoinNetwork(ctx context.Context, req *model.JoinLockRequest) error
	Withdraw(ctx context.Context, req *model.WithdrawLockRequest) error
}

type lockService struct {
	locks     repository.LockRepository
	bikes     repository.BicycleRepository
	totems    repository.TotemRepository
	audit     AuditRecorder
	txManager mongotx.TransactionManager
	validator *validator.EquipmentValidator
	cfg       *config.Config
}

func NewLockService(
	locks repository.LockRepository,
	bikes repository.BicycleRepository,
	totems repository.TotemRepository,
	audit AuditRecorder,
	txManager mongotx.TransactionManager,
	validator *validator.EquipmentValidator,
	cfg *config.Config,
) LockService {
	return &lockService{
		locks:     locks,
		bikes:     bikes,
		totems:    totems,
		audit:     audit,
		txManager: txManager,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *lockService) Create(ctx context.Context, lock *model.Lock) error {
	if lock.Status == "" {
		lock.Status = model.LockNew
	}
	// Placement happens only through the network operations.
	lock.BicycleID = nil
	lock.TotemID = nil
	s.sanitize(lock)
	if err := s.validate(lock); err != nil {
		return err
	}

	if err := s.locks.Create(ctx, lock); err != nil {
		s.cfg.Log.Error("Failed to create lock", "number", lock.Number, "error", err)
		return toAppError(err, "create lock")
	}

	s.cfg.Log.Info("Lock created successfully", "id", lock.ID, "number", lock.Number)
	return nil
}

func (s *lockService) GetByID(ctx context.Context, id int64) (*model.Lock, error) {
	return loadLock(ctx, s.locks, id)
}

func (s *lockService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Lock, int64, error) {
	var count int64
	var locks []*model.Lock
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.locks.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count locks", "error", errCount)
			errCount = apperrors.Internal("Failed to count locks", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		locks, errFind = s.locks.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list locks", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve locks", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return locks, count, nil
}

func (s *lockService) Update(ctx context.Context, id int64, updates *model.LockUpdate) (*model.Lock, error) {
	if err := s.validator.Validate(updates); err != nil {
		s.cfg.Log.Warn("Lock update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := loadLock(ctx, s.locks, id)
	if err != nil {
		return nil, err
	}
	merged := s.mergeLockUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	if err := s.locks.Save(ctx, merged); err != nil {
		s.cfg.Log.Error("Failed to update lock", "id", id, "error", err)
		if errors.Is(err, equipmenterrors.ErrLockNotFound) {
			return nil, apperrors.NotFoundWithID("Lock", id)
		}
		return nil, toAppError(err, "update lock")
	}

	s.cfg.Log.Info("Lock updated successfully", "id", id)
	return merged, nil
}

func (s *lockService) Delete(ctx context.Context, id int64) error {
	lock, err := loadLock(ctx, s.locks, id)
	if err != nil {
		return err
	}
	if lock.HasBicycle() {
		return apperrors.Business(apperrors.CodeLockHasBike, "A lock holding a bicycle cannot be removed")
	}

	if err := s.locks.Delete(ctx, id); err != nil {
		if errors.Is(err, equipmenterrors.ErrLockNotFound) {
			return apperrors.NotFoundWithID("Lock", id)
		}
		return toAppError(err, "delete lock")
	}

	s.cfg.Log.Info("Lock deleted successfully", "id", id)
	return nil
}

// Lock closes the lock, docking bikeID when given. The bicycle only has to
// exist; whatever its status, it becomes DISPONIVEL.
func (s *lockService) Lock(ctx context.Context, id int64, bikeID *int64) (*model.Lock, error) {
	var result *model.Lock
	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		lock, err := loadLock(txCtx, s.locks, id)
		if err != nil {
			return err
		}
		nextLock, err := lock.Status.Close()
		if err != nil {
			return apperrors.Business(apperrors.CodeLockAlreadyLocked, "The lock is already locked").
				WithDetails(map[string]any{"tranca": lock.ID})
		}

		if bikeID != nil {
			bike, err := loadBicycle(txCtx, s.bikes, *bikeID)
			if err != nil {
				return err
			}
			nextBike, err := bike.Status.Dock()
			if err != nil {
				return invalidBikeStatus(bike, "a known bicycle status")
			}
			bike.Status = nextBike
			if err := s.bikes.Save(txCtx, bike); err != nil {
				return toAppError(err, "update bicycle")
			}
			lock.BicycleID = ptr(bike.ID)
		}

		lock.Status = nextLock
		if err := s.locks.Save(txCtx, lock); err != nil {
			return toAppError(err, "update lock")
		}
		result = lock
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Lock command rejected", "lock_id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Lock locked", "lock_id", id, "bike_id", result.BicycleID)
	return result, nil
}

// Unlock opens the lock. With bikeID the bicycle must be the one docked here
// and leaves EM_USO; without it the lock must be empty.
func (s *lockService) Unlock(ctx context.Context, id int64, bikeID *int64) (*model.Lock, error) {
	var result *model.Lock
	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		lock, err := loadLock(txCtx, s.locks, id)
		if err != nil {
			return err
		}
		nextLock, err := lock.Status.Open()
		if err != nil {
			return invalidLockStatus(lock, "a known lock status")
		}

		if bikeID != nil {
			if !lock.Holds(*bikeID) {
				return apperrors.Business(apperrors.CodeBikeNotAtLock, "The bicycle is not at this lock").
					WithDetails(map[string]any{"tranca": lock.ID, "bicicleta": *bikeID})
			}
			bike, err := loadBicycle(txCtx, s.bikes, *bikeID)
			if err != nil {
				return err
			}
			nextBike, err := bike.Status.Release()
			if err != nil {
				return invalidBikeStatus(bike, "a known bicycle status")
			}
			bike.Status = nextBike
			if err := s.bikes.Save(txCtx, bike); err != nil {
				return toAppError(err, "update bicycle")
			}
			lock.BicycleID = nil
		} else if lock.HasBicycle() {
			return apperrors.Business(apperrors.CodeLockHasBike, "The lock holds a bicycle; name it to release it").
				WithDetails(map[string]any{"tranca": lock.ID, "bicicleta": *lock.BicycleID})
		}

		lock.Status = nextLock
		if err := s.locks.Save(txCtx, lock); err != nil {
			return toAppError(err, "update lock")
		}
		result = lock
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Unlock command rejected", "lock_id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Lock unlocked", "lock_id", id, "bike_id", bikeID)
	return result, nil
}

func (s *lockService) ApplyAction(ctx context.Context, id int64, action string) (*model.Lock, error) {
	switch strings.ToUpper(action) {
	case ActionLock:
		return s.Lock(ctx, id, nil)
	case ActionUnlock:
		return s.Unlock(ctx, id, nil)
	default:
		if _, err := loadLock(ctx, s.locks, id); err != nil {
			return nil, err
		}
		return nil, apperrors.Business(apperrors.CodeInvalidTargetStatus,
			"Invalid action '"+action+"', expected TRANCAR or DESTRANCAR")
	}
}

func (s *lockService) BikeAtLock(ctx context.Context, id int64) (*model.Bicycle, error) {
	lock, err := loadLock(ctx, s.locks, id)
	if err != nil {
		return nil, err
	}
	if lock.Status != model.LockOccupied || !lock.HasBicycle() {
		return nil, apperrors.Business(apperrors.CodeNoBikeAtLock, "There is no bicycle at this lock").
			WithDetails(map[string]any{"tranca": lock.ID, "status": lock.Status})
	}
	return loadBicycle(ctx, s.bikes, *lock.BicycleID)
}

func (s *lockService) JoinNetwork(ctx context.Context, req *model.JoinLockRequest) error {
	if err := s.validate(req); err != nil {
		return err
	}

	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		lock, err := loadLock(txCtx, s.locks, req.LockID)
		if err != nil {
			return err
		}
		nextLock, err := lock.Status.Join()
		if err != nil {
			return invalidLockStatus(lock, "NOVA or EM_REPARO")
		}
		totem, err := loadTotem(txCtx, s.totems, req.TotemID)
		if err != nil {
			return err
		}

		details := map[string]any{"status_anterior": lock.Status}
		lock.TotemID = ptr(totem.ID)
		lock.Status = nextLock
		if err := s.locks.Save(txCtx, lock); err != nil {
			return toAppError(err, "update lock")
		}

		return s.audit.Record(txCtx, &model.AuditRecord{
			Action:          model.AuditJoinLock,
			EquipmentType:   model.EquipmentLock,
			EquipmentID:     lock.ID,
			EquipmentNumber: lock.Number,
			TechnicianID:    req.TechnicianID,
			LockID:          ptr(lock.ID),
			TotemID:         ptr(totem.ID),
			TargetStatus:    string(nextLock),
			Details:         details,
		})
	})
	if err != nil {
		s.cfg.Log.Warn("Lock join rejected", "lock_id", req.LockID, "totem_id", req.TotemID, "error", err)
		return err
	}

	s.cfg.Log.Info("Lock joined network",
		"lock_id", req.LockID,
		"totem_id", req.TotemID,
		"technician_id", req.TechnicianID,
	)
	return nil
}

func (s *lockService) Withdraw(ctx context.Context, req *model.WithdrawLockRequest) error {
	req.Target = model.LockStatus(strings.ToUpper(string(req.Target)))
	if err := s.validate(req); err != nil {
		return err
	}
	if !req.Target.IsWithdrawTarget() {
		return apperrors.Business(apperrors.CodeInvalidTargetStatus, "A lock can only be withdrawn to APOSENTADA or EM_REPARO")
	}

	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		lock, err := loadLock(txCtx, s.locks, req.LockID)
		if err != nil {
			return err
		}
		if !lock.AttachedTo(req.TotemID) {
			return apperrors.Business(apperrors.CodeLockNotInTotem, "The lock is not attached to this totem").
				WithDetails(map[string]any{"tranca": lock.ID, "totem": req.TotemID})
		}
		if lock.HasBicycle() {
			return apperrors.Business(apperrors.CodeLockHasBike, "Remove the bicycle before withdrawing the lock").
				WithDetails(map[string]any{"tranca": lock.ID, "bicicleta": *lock.BicycleID})
		}

		nextLock, err := lock.Status.Withdraw(req.Target)
		if err != nil {
			return invalidLockStatus(lock, "a known lock status")
		}
		details := map[string]any{"status_anterior": lock.Status}

		lock.TotemID = nil
		lock.Status = nextLock
		if err := s.locks.Save(txCtx, lock); err != nil {
			return toAppError(err, "update lock")
		}

		return s.audit.Record(txCtx, &model.AuditRecord{
			Action:          model.AuditWithdrawLock,
			EquipmentType:   model.EquipmentLock,
			EquipmentID:     lock.ID,
			EquipmentNumber: lock.Number,
			TechnicianID:    req.TechnicianID,
			LockID:          ptr(lock.ID),
			TotemID:         ptr(req.TotemID),
			TargetStatus:    string(req.Target),
			Details:         details,
		})
	})
	if err != nil {
		s.cfg.Log.Warn("Lock withdrawal rejected", "lock_id", req.LockID, "totem_id", req.TotemID, "error", err)
		return err
	}

	s.cfg.Log.Info("Lock withdrawn from network",
		"lock_id", req.LockID,
		"totem_id", req.TotemID,
		"technician_id", req.TechnicianID,
		"target", req.Target,
	)
	return nil
}

func (s *lockService) sanitize(l *model.Lock) {
	l.Location = sanitizer.TrimAndNormalize(l.Location)
	l.Model = sanitizer.TrimAndNormalize(l.Model)
	l.ManufactureYear = sanitizer.NormalizeYear(l.ManufactureYear)
}

func (s *lockService) mergeLockUpdates(existing *model.Lock, updates *model.LockUpdate) *model.Lock {
	merged := *existing

	if updates.Number != nil {
		merged.Number = *updates.Number
	}
	if updates.Location != "" {
		merged.Location = updates.Location
	}
	if updates.ManufactureYear != "" {
		merged.ManufactureYear = updates.ManufactureYear
	}
	if updates.Model != "" {
		merged.Model = updates.Model
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func (s *lockService) validate(v any) error {
	if err := s.validator.Validate(v); err != nil {
		s.cfg.Log.Warn("Lock validation failed", "error", err)
		return apperrors.Validation("Lock validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
