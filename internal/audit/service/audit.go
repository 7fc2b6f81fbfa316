package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"bikeshare/internal/audit/repository"
	"bikeshare/pkg/config"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/model"
)

// CustodyWhenUnrecorded is the answer of WasRetrievedByTechnician when the
// equipment has no IN_REPAIR withdrawal on record.
const CustodyWhenUnrecorded = true

const DefaultRecentActions = 10

type AuditService interface {
	Record(ctx context.Context, record *model.AuditRecord) error
	Search(ctx context.Context, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditRecord, int64, error)
	RecentActions(ctx context.Context, equipmentType model.EquipmentType, equipmentID int64, limit int) ([]*model.AuditRecord, error)
	LastWithdrawal(ctx context.Context, equipmentType model.EquipmentType, equipmentID int64) (*model.AuditRecord, error)
	WasRetrievedByTechnician(ctx context.Context, equipmentType model.EquipmentType, equipmentID, technicianID int64) (bool, error)
}

type auditService struct {
	repo repository.AuditRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewAuditService(repo repository.AuditRepository, cfg *config.Config) AuditService {
	return &auditService{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *auditService) Record(ctx context.Context, record *model.AuditRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = s.now().UTC().Truncate(time.Millisecond)
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return apperrors.Internal("Failed to write audit record", err)
	}

	s.cfg.Log.Info("Audit record created",
		"id", record.ID,
		"action", record.Action,
		"equipment_type", record.EquipmentType,
		"equipment_id", record.EquipmentID,
		"technician_id", record.TechnicianID,
	)
	return nil
}

func (s *auditService) Search(ctx context.Context, filter model.AuditFilter, limit int, offset int64) ([]*model.AuditRecord, int64, error) {
	if filter.EquipmentType != "" && !filter.EquipmentType.Valid() {
		return nil, 0, apperrors.InvalidInput("invalid equipment type: " + string(filter.EquipmentType))
	}

	var count int64
	var records []*model.AuditRecord
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count audit records", "error", errCount)
			errCount = apperrors.Internal("Failed to count audit records", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		records, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list audit records", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve audit records", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return records, count, nil
}

func (s *auditService) RecentActions(ctx context.Context, equipmentType model.EquipmentType, equipmentID int64, limit int) ([]*model.AuditRecord, error) {
	if !equipmentType.Valid() {
		return nil, apperrors.InvalidInput("invalid equipment type: " + string(equipmentType))
	}
	if limit <= 0 {
		limit = DefaultRecentActions
	}

	records, err := s.repo.Find(ctx, model.AuditFilter{EquipmentType: equipmentType, EquipmentID: equipmentID}, limit, 0)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve audit records", err)
	}
	return records, nil
}

// LastWithdrawal returns the most recent withdrawal to IN_REPAIR of the
// equipment, or nil when there is none.
func (s *auditService) LastWithdrawal(ctx context.Context, equipmentType model.EquipmentType, equipmentID int64) (*model.AuditRecord, error) {
	if !equipmentType.Valid() {
		return nil, apperrors.InvalidInput("invalid equipment type: " + string(equipmentType))
	}

	record, err := s.repo.Latest(ctx, model.AuditFilter{
		EquipmentType: equipmentType,
		EquipmentID:   equipmentID,
		Action:        equipmentType.WithdrawalAction(),
		TargetStatus:  repairStatus(equipmentType),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, nil
		}
		return nil, apperrors.Internal("Failed to retrieve last withdrawal", err)
	}
	return record, nil
}

func (s *auditService) WasRetrievedByTechnician(ctx context.Context, equipmentType model.EquipmentType, equipmentID, technicianID int64) (bool, error) {
	record, err := s.LastWithdrawal(ctx, equipmentType, equipmentID)
	if err != nil {
		return false, err
	}
	if record == nil {
		s.cfg.Log.Info("No repair withdrawal on record, allowing custody",
			"equipment_type", equipmentType,
			"equipment_id", equipmentID,
			"technician_id", technicianID,
		)
		return CustodyWhenUnrecorded, nil
	}
	return record.TechnicianID == technicianID, nil
}

func repairStatus(t model.EquipmentType) string {
	if t == model.EquipmentLock {
		return string(model.LockInRepair)
	}
	return string(model.BicycleInRepair)
}
