package service

import (
	"context"
	"errors"
	"fmt"

	equipmenterrors "bikeshare/internal/equipment/errors"
	"bikeshare/internal/equipment/repository"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/model"
)

// AuditRecorder appends to the audit log. Records written with a
// transaction's context join that transaction.
type AuditRecorder interface {
	Record(ctx context.Context, record *model.AuditRecord) error
}

func toAppError(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, equipmenterrors.ErrDuplicateNumber):
		return apperrors.Business(apperrors.CodeDuplicateNumber, "An equipment with this number already exists")
	default:
		return apperrors.Internal("Failed to "+action, err)
	}
}

func loadBicycle(ctx context.Context, repo repository.BicycleRepository, id int64) (*model.Bicycle, error) {
	bike, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, equipmenterrors.ErrBicycleNotFound) {
			return nil, apperrors.NotFoundWithID("Bicycle", id)
		}
		return nil, apperrors.Internal("Failed to retrieve bicycle", err)
	}
	return bike, nil
}

func loadLock(ctx context.Context, repo repository.LockRepository, id int64) (*model.Lock, error) {
	lock, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, equipmenterrors.ErrLockNotFound) {
			return nil, apperrors.NotFoundWithID("Lock", id)
		}
		return nil, apperrors.Internal("Failed to retrieve lock", err)
	}
	return lock, nil
}

func loadTotem(ctx context.Context, repo repository.TotemRepository, id int64) (*model.Totem, error) {
	totem, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, equipmenterrors.ErrTotemNotFound) {
			return nil, apperrors.NotFoundWithID("Totem", id)
		}
		return nil, apperrors.Internal("Failed to retrieve totem", err)
	}
	return totem, nil
}

func invalidBikeStatus(bike *model.Bicycle, want string) error {
	return apperrors.Business(apperrors.CodeInvalidBikeStatus,
		fmt.Sprintf("Bicycle %d is %s, expected %s", bike.ID, bike.Status, want)).
		WithDetails(map[string]any{"bicicleta": bike.ID, "status": bike.Status})
}

func invalidLockStatus(lock *model.Lock, want string) error {
	return apperrors.Business(apperrors.CodeInvalidLockStatus,
		fmt.Sprintf("Lock %d is %s, expected %s", lock.ID, lock.Status, want)).
		WithDetails(map[string]any{"tranca": lock.ID, "status": lock.Status})
}

// transitionDetails keeps the statuses a technician action started from.
func transitionDetails(bike model.BicycleStatus, lock model.LockStatus) map[string]any {
	return map[string]any{
		"status_anterior":        bike,
		"status_anterior_tranca": lock,
	}
}

func ptr(v int64) *int64 {
	return &v
}
