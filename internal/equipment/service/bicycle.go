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

type BicycleService interface {
	Create(ctx context.Context, bike *model.Bicycle) error
	GetByID(ctx context.Context, id int64) (*model.Bicycle, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Bicycle, int64, error)
	Update(ctx context.Context, id int64, updates *model.BicycleUpdate) (*model.Bicycle, error)
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status string) (*model.Bicycle, error)
	JoinNetwork(ctx context.Context, req *model.JoinBicycleRequest) error
	Withdraw(ctx context.Context, req *model.WithdrawBicycleRequest) error
}

type bicycleService struct {
	bikes     repository.BicycleRepository
	locks     repository.LockRepository
	audit     AuditRecorder
	txManager mongotx.TransactionManager
	validator *validator.EquipmentValidator
	cfg       *config.Config
}

func NewBicycleService(
	bikes repository.BicycleRepository,
	locks repository.LockRepository,
	audit AuditRecorder,
	txManager mongotx.TransactionManager,
	validator *validator.EquipmentValidator,
	cfg *config.Config,
) BicycleService {
	return &bicycleService{
		bikes:     bikes,
		locks:     locks,
		audit:     audit,
		txManager: txManager,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bicycleService) Create(ctx context.Context, bike *model.Bicycle) error {
	if bike.Status == "" {
		bike.Status = model.BicycleNew
	}
	s.sanitize(bike)
	if err := s.validate(bike); err != nil {
		return err
	}

	if err := s.bikes.Create(ctx, bike); err != nil {
		s.cfg.Log.Error("Failed to create bicycle", "number", bike.Number, "error", err)
		return toAppError(err, "create bicycle")
	}

	s.cfg.Log.Info("Bicycle created successfully", "id", bike.ID, "number", bike.Number)
	return nil
}

func (s *bicycleService) GetByID(ctx context.Context, id int64) (*model.Bicycle, error) {
	return loadBicycle(ctx, s.bikes, id)
}

func (s *bicycleService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Bicycle, int64, error) {
	var count int64
	var bikes []*model.Bicycle
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.bikes.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bicycles", "error", errCount)
			errCount = apperrors.Internal("Failed to count bicycles", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bikes, errFind = s.bikes.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bicycles", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bicycles", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bikes, count, nil
}

func (s *bicycleService) Update(ctx context.Context, id int64, updates *model.BicycleUpdate) (*model.Bicycle, error) {
	if err := s.validator.Validate(updates); err != nil {
		s.cfg.Log.Warn("Bicycle update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := loadBicycle(ctx, s.bikes, id)
	if err != nil {
		return nil, err
	}
	merged := s.mergeBicycleUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	if err := s.bikes.Save(ctx, merged); err != nil {
		s.cfg.Log.Error("Failed to update bicycle", "id", id, "error", err)
		if errors.Is(err, equipmenterrors.ErrBicycleNotFound) {
			return nil, apperrors.NotFoundWithID("Bicycle", id)
		}
		return nil, toAppError(err, "update bicycle")
	}

	s.cfg.Log.Info("Bicycle updated successfully", "id", id)
	return merged, nil
}

// Delete removes the bicycle and frees the lock it was docked at, if any.
func (s *bicycleService) Delete(ctx context.Context, id int64) error {
	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if _, err := loadBicycle(txCtx, s.bikes, id); err != nil {
			return err
		}

		lock, err := s.locks.FindByBicycle(txCtx, id)
		switch {
		case err == nil:
			next, err := lock.Status.Open()
			if err != nil {
				return invalidLockStatus(lock, "a known lock status")
			}
			lock.BicycleID = nil
			lock.Status = next
			if err := s.locks.Save(txCtx, lock); err != nil {
				return toAppError(err, "free lock")
			}
		case !errors.Is(err, equipmenterrors.ErrLockNotFound):
			return toAppError(err, "check lock")
		}

		if err := s.bikes.Delete(txCtx, id); err != nil {
			return toAppError(err, "delete bicycle")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Bicycle deleted successfully", "id", id)
	return nil
}

// SetStatus is the administrative override: any valid status is accepted.
func (s *bicycleService) SetStatus(ctx context.Context, id int64, status string) (*model.Bicycle, error) {
	target := model.BicycleStatus(strings.ToUpper(status))
	if !target.Valid() {
		return nil, apperrors.Business(apperrors.CodeInvalidTargetStatus, "Invalid bicycle status: "+status)
	}

	bike, err := loadBicycle(ctx, s.bikes, id)
	if err != nil {
		return nil, err
	}
	bike.Status = target
	if err := s.bikes.Save(ctx, bike); err != nil {
		return nil, toAppError(err, "update bicycle status")
	}

	s.cfg.Log.Info("Bicycle status changed", "id", id, "status", target)
	return bike, nil
}

func (s *bicycleService) JoinNetwork(ctx context.Context, req *model.JoinBicycleRequest) error {
	if err := s.validate(req); err != nil {
		return err
	}

	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		bike, err := loadBicycle(txCtx, s.bikes, req.BicycleID)
		if err != nil {
			return err
		}
		lock, err := loadLock(txCtx, s.locks, req.LockID)
		if err != nil {
			return err
		}

		nextBike, err := bike.Status.Join()
		if err != nil {
			return invalidBikeStatus(bike, "NOVA or EM_REPARO")
		}
		nextLock, err := lock.Status.Receive()
		if err != nil {
			return invalidLockStatus(lock, "LIVRE")
		}
		details := transitionDetails(bike.Status, lock.Status)

		bike.Status = nextBike
		lock.BicycleID = ptr(bike.ID)
		lock.Status = nextLock

		if err := s.bikes.Save(txCtx, bike); err != nil {
			return toAppError(err, "update bicycle")
		}
		if err := s.locks.Save(txCtx, lock); err != nil {
			return toAppError(err, "update lock")
		}

		return s.audit.Record(txCtx, &model.AuditRecord{
			Action:          model.AuditJoinBicycle,
			EquipmentType:   model.EquipmentBicycle,
			EquipmentID:     bike.ID,
			EquipmentNumber: bike.Number,
			TechnicianID:    req.TechnicianID,
			LockID:          ptr(lock.ID),
			TotemID:         lock.TotemID,
			TargetStatus:    string(nextBike),
			Details:         details,
		})
	})
	if err != nil {
		s.cfg.Log.Warn("Bicycle join rejected", "bike_id", req.BicycleID, "lock_id", req.LockID, "error", err)
		return err
	}

	s.cfg.Log.Info("Bicycle joined network",
		"bike_id", req.BicycleID,
		"lock_id", req.LockID,
		"technician_id", req.TechnicianID,
	)
	return nil
}

func (s *bicycleService) Withdraw(ctx context.Context, req *model.WithdrawBicycleRequest) error {
	req.Target = model.BicycleStatus(strings.ToUpper(string(req.Target)))
	if err := s.validate(req); err != nil {
		return err
	}
	if !req.Target.IsWithdrawTarget() {
		return apperrors.Business(apperrors.CodeInvalidTargetStatus, "A bicycle can only be withdrawn to APOSENTADA or EM_REPARO")
	}

	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		bike, err := loadBicycle(txCtx, s.bikes, req.BicycleID)
		if err != nil {
			return err
		}
		lock, err := loadLock(txCtx, s.locks, req.LockID)
		if err != nil {
			return err
		}

		if !lock.Holds(bike.ID) {
			return apperrors.Business(apperrors.CodeBikeNotInLock, "The bicycle is not docked at this lock").
				WithDetails(map[string]any{"bicicleta": bike.ID, "tranca": lock.ID})
		}

		nextBike, err := bike.Status.Withdraw(req.Target)
		if err != nil {
			return invalidBikeStatus(bike, "a known bicycle status")
		}
		nextLock, err := lock.Status.Open()
		if err != nil {
			return invalidLockStatus(lock, "a known lock status")
		}
		details := transitionDetails(bike.Status, lock.Status)

		bike.Status = nextBike
		lock.BicycleID = nil
		lock.Status = nextLock

		if err := s.bikes.Save(txCtx, bike); err != nil {
			return toAppError(err, "update bicycle")
		}
		if err := s.locks.Save(txCtx, lock); err != nil {
			return toAppError(err, "update lock")
		}

		return s.audit.Record(txCtx, &model.AuditRecord{
			Action:          model.AuditWithdrawBicycle,
			EquipmentType:   model.EquipmentBicycle,
			EquipmentID:     bike.ID,
			EquipmentNumber: bike.Number,
			TechnicianID:    req.TechnicianID,
			LockID:          ptr(lock.ID),
			TotemID:         lock.TotemID,
			TargetStatus:    string(req.Target),
			Details:         details,
		})
	})
	if err != nil {
		s.cfg.Log.Warn("Bicycle withdrawal rejected", "bike_id", req.BicycleID, "lock_id", req.LockID, "error", err)
		return err
	}

	s.cfg.Log.Info("Bicycle withdrawn from network",
		"bike_id", req.BicycleID,
		"lock_id", req.LockID,
		"technician_id", req.TechnicianID,
		"target", req.Target,
	)
	return nil
}

func (s *bicycleService) sanitize(b *model.Bicycle) {
	b.Brand = sanitizer.TrimAndNormalize(b.Brand)
	b.Model = sanitizer.TrimAndNormalize(b.Model)
	b.Year = sanitizer.NormalizeYear(b.Year)
}

func (s *bicycleService) mergeBicycleUpdates(existing *model.Bicycle, updates *model.BicycleUpdate) *model.Bicycle {
	merged := *existing

	if updates.Brand != "" {
		merged.Brand = updates.Brand
	}
	if updates.Model != "" {
		merged.Model = updates.Model
	}
	if updates.Year != "" {
		merged.Year = updates.Year
	}
	if updates.Number != nil {
		merged.Number = *updates.Number
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func (s *bicycleService) validate(v any) error {
	if err := s.validator.Validate(v); err != nil {
		s.cfg.Log.Warn("Bicycle validation failed", "error", err)
		return apperrors.Validation("Bicycle validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
