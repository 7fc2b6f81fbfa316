package service

import (
	"context"
	"errors"
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

type TotemService interface {
	Create(ctx context.Context, totem *model.Totem) error
	GetByID(ctx context.Context, id int64) (*model.Totem, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Totem, int64, error)
	Update(ctx context.Context, id int64, updates *model.TotemUpdate) (*model.Totem, error)
	Delete(ctx context.Context, id int64) error
	Locks(ctx context.Context, id int64) ([]*model.Lock, error)
	Bicycles(ctx context.Context, id int64) ([]*model.Bicycle, error)
}

type totemService struct {
	totems    repository.TotemRepository
	locks     repository.LockRepository
	bikes     repository.BicycleRepository
	txManager mongotx.TransactionManager
	validator *validator.EquipmentValidator
	cfg       *config.Config
}

func NewTotemService(
	totems repository.TotemRepository,
	locks repository.LockRepository,
	bikes repository.BicycleRepository,
	txManager mongotx.TransactionManager,
	validator *validator.EquipmentValidator,
	cfg *config.Config,
) TotemService {
	return &totemService{
		totems:    totems,
		locks:     locks,
		bikes:     bikes,
		txManager: txManager,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *totemService) Create(ctx context.Context, totem *model.Totem) error {
	s.sanitize(totem)
	if err := s.validate(totem); err != nil {
		return err
	}

	if err := s.totems.Create(ctx, totem); err != nil {
		s.cfg.Log.Error("Failed to create totem", "error", err)
		return toAppError(err, "create totem")
	}

	s.cfg.Log.Info("Totem created successfully", "id", totem.ID, "location", totem.Location)
	return nil
}

func (s *totemService) GetByID(ctx context.Context, id int64) (*model.Totem, error) {
	return loadTotem(ctx, s.totems, id)
}

func (s *totemService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Totem, int64, error) {
	var count int64
	var totems []*model.Totem
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.totems.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count totems", "error", errCount)
			errCount = apperrors.Internal("Failed to count totems", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		totems, errFind = s.totems.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list totems", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve totems", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return totems, count, nil
}

func (s *totemService) Update(ctx context.Context, id int64, updates *model.TotemUpdate) (*model.Totem, error) {
	if err := s.validator.Validate(updates); err != nil {
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	totem, err := loadTotem(ctx, s.totems, id)
	if err != nil {
		return nil, err
	}
	if updates.Location != "" {
		totem.Location = updates.Location
	}
	if updates.Description != nil {
		totem.Description = *updates.Description
	}
	s.sanitize(totem)
	if err := s.validate(totem); err != nil {
		return nil, err
	}

	if err := s.totems.Save(ctx, totem); err != nil {
		if errors.Is(err, equipmenterrors.ErrTotemNotFound) {
			return nil, apperrors.NotFoundWithID("Totem", id)
		}
		return nil, toAppError(err, "update totem")
	}

	s.cfg.Log.Info("Totem updated successfully", "id", id)
	return totem, nil
}

// Delete removes the totem and detaches its locks.
func (s *totemService) Delete(ctx context.Context, id int64) error {
	var detached int64
	err := s.txManager.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if _, err := loadTotem(txCtx, s.totems, id); err != nil {
			return err
		}
		n, err := s.locks.DetachTotem(txCtx, id)
		if err != nil {
			return toAppError(err, "detach locks")
		}
		detached = n
		if err := s.totems.Delete(txCtx, id); err != nil {
			return toAppError(err, "delete totem")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Totem deleted successfully", "id", id, "detached_locks", detached)
	return nil
}

func (s *totemService) Locks(ctx context.Context, id int64) ([]*model.Lock, error) {
	if _, err := loadTotem(ctx, s.totems, id); err != nil {
		return nil, err
	}
	locks, err := s.locks.FindByTotem(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve totem locks", err)
	}
	return locks, nil
}

// Bicycles lists the bicycles docked at the totem's locks.
func (s *totemService) Bicycles(ctx context.Context, id int64) ([]*model.Bicycle, error) {
	locks, err := s.Locks(ctx, id)
	if err != nil {
		return nil, err
	}

	var ids []int64
	for _, l := range locks {
		if l.HasBicycle() {
			ids = append(ids, *l.BicycleID)
		}
	}

	bikes, err := s.bikes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve totem bicycles", err)
	}
	return bikes, nil
}

func (s *totemService) sanitize(t *model.Totem) {
	t.Location = sanitizer.TrimAndNormalize(t.Location)
	t.Description = sanitizer.TrimAndNormalize(t.Description)
}

func (s *totemService) validate(t *model.Totem) error {
	if err := s.validator.Validate(t); err != nil {
		s.cfg.Log.Warn("Totem validation failed", "error", err)
		return apperrors.Validation("Totem validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
