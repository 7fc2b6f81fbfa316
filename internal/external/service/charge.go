package service

import (
	"context"
	"errors"
	"math"
	"time"

	externalerrors "bikeshare/internal/external/errors"
	"bikeshare/internal/external/repository"
	"bikeshare/internal/external/validator"
	"bikeshare/pkg/config"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/metrics"
	"bikeshare/pkg/model"
)

const DefaultQueueBatchSize = 100

// QueueResult summarizes one pass over the charge queue.
type QueueResult struct {
	Processed int             `json:"processadas"`
	Paid      int             `json:"pagas"`
	Failed    int             `json:"falhas"`
	Charges   []*model.Charge `json:"cobrancas"`
}

type ChargeService interface {
	Charge(ctx context.Context, req *model.ChargeRequest) (*model.Charge, error)
	Enqueue(ctx context.Context, req *model.ChargeRequest) (*model.Charge, error)
	GetByID(ctx context.Context, id int64) (*model.Charge, error)
	ProcessQueue(ctx context.Context) (*QueueResult, error)
	Refund(ctx context.Context, event *model.RefundRequestedEvent) (*model.Charge, error)
}

type chargeService struct {
	repo      repository.ChargeRepository
	validator *validator.ExternalValidator
	cfg       *config.Config
	batchSize int
	now       func() time.Time
}

func NewChargeService(repo repository.ChargeRepository, validator *validator.ExternalValidator, cfg *config.Config) ChargeService {
	return &chargeService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		batchSize: DefaultQueueBatchSize,
		now:       time.Now,
	}
}

// Charge settles a charge immediately. A decline is not an error: the charge
// is stored and returned with status FALHA.
func (s *chargeService) Charge(ctx context.Context, req *model.ChargeRequest) (*model.Charge, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.ChargePaid
	}
	if req.Amount < 0 {
		status = model.ChargeFailed
	}

	charge := s.newCharge(req, status)
	if err := s.repo.Create(ctx, charge); err != nil {
		return nil, apperrors.Internal("Failed to create charge", err)
	}

	s.cfg.Log.Info("Charge processed",
		"id", charge.ID,
		"cyclist_id", charge.CyclistID,
		"amount", charge.Amount,
		"status", charge.Status,
	)
	return charge, nil
}

// Enqueue stores a PENDENTE charge for the next queue run.
func (s *chargeService) Enqueue(ctx context.Context, req *model.ChargeRequest) (*model.Charge, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	charge := s.newCharge(req, model.ChargePending)
	if err := s.repo.Create(ctx, charge); err != nil {
		return nil, apperrors.Internal("Failed to enqueue charge", err)
	}

	metrics.RecordQueuedCharge(string(model.ChargePending))
	s.cfg.Log.Info("Charge queued",
		"id", charge.ID,
		"cyclist_id", charge.CyclistID,
		"amount", charge.Amount,
	)
	return charge, nil
}

func (s *chargeService) GetByID(ctx context.Context, id int64) (*model.Charge, error) {
	charge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, externalerrors.ErrChargeNotFound) {
			return nil, apperrors.NotFoundWithID("Charge", id)
		}
		return nil, apperrors.Internal("Failed to retrieve charge", err)
	}
	return charge, nil
}

// ProcessQueue settles pending charges. Positive amounts are paid, anything
// else fails. A charge another worker already settled is skipped.
func (s *chargeService) ProcessQueue(ctx context.Context) (*QueueResult, error) {
	pending, err := s.repo.FindPending(ctx, s.batchSize)
	if err != nil {
		return nil, apperrors.Internal("Failed to read charge queue", err)
	}

	result := &QueueResult{Charges: make([]*model.Charge, 0, len(pending))}
	for _, charge := range pending {
		if err := ctx.Err(); err != nil {
			return result, apperrors.Timeout("Charge queue processing interrupted")
		}

		target := model.ChargePaid
		if charge.Amount <= 0 {
			target = model.ChargeFailed
		}

		finalizedAt := s.now().UTC().Truncate(time.Millisecond)
		if err := s.repo.Transition(ctx, charge.ID, model.ChargePending, target, finalizedAt); err != nil {
			if errors.Is(err, externalerrors.ErrStatusChanged) {
				s.cfg.Log.Warn("Queued charge already settled", "id", charge.ID)
				continue
			}
			return result, apperrors.Internal("Failed to settle queued charge", err)
		}

		charge.Status = target
		charge.FinalizedAt = &finalizedAt
		result.Processed++
		if target == model.ChargePaid {
			result.Paid++
		} else {
			result.Failed++
		}
		result.Charges = append(result.Charges, charge)
		metrics.RecordQueuedCharge(string(target))
	}

	s.cfg.Log.Info("Charge queue processed",
		"processed", result.Processed,
		"paid", result.Paid,
		"failed", result.Failed,
	)
	return result, nil
}

// Refund cancels a paid charge. Refunding a charge that is already
// CANCELADA is a no-op so redelivered events are harmless.
func (s *chargeService) Refund(ctx context.Context, event *model.RefundRequestedEvent) (*model.Charge, error) {
	if event.GatewayChargeID == nil {
		return nil, apperrors.InvalidInput("Refund event carries no gateway charge id")
	}
	id := *event.GatewayChargeID

	charge, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch charge.Status {
	case model.ChargeCancelled:
		s.cfg.Log.Info("Charge already refunded", "id", id)
		return charge, nil
	case model.ChargePaid:
	default:
		return nil, apperrors.Business(apperrors.CodeChargeNotRefundable, "Only paid charges can be refunded").
			WithDetails(map[string]any{"id": id, "status": charge.Status})
	}

	finalizedAt := s.now().UTC().Truncate(time.Millisecond)
	if err := s.repo.Transition(ctx, id, model.ChargePaid, model.ChargeCancelled, finalizedAt); err != nil {
		if errors.Is(err, externalerrors.ErrStatusChanged) {
			return s.GetByID(ctx, id)
		}
		return nil, apperrors.Internal("Failed to refund charge", err)
	}

	charge.Status = model.ChargeCancelled
	charge.FinalizedAt = &finalizedAt
	s.cfg.Log.Info("Charge refunded",
		"id", id,
		"rental_charge_id", event.ChargeID,
		"cyclist_id", event.CyclistID,
		"reason", event.Reason,
	)
	return charge, nil
}

func (s *chargeService) validate(req *model.ChargeRequest) error {
	if err := s.validator.Validate(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			details := make(map[string]any, len(validationErrs))
			for _, ve := range validationErrs {
				details[ve.Field] = ve.Message
			}
			return apperrors.Validation("Invalid charge request", details)
		}
		return apperrors.InvalidInput(err.Error())
	}
	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return apperrors.Validation("Invalid charge request", map[string]any{"Amount": "Amount must be a finite number"})
	}
	return nil
}

func (s *chargeService) newCharge(req *model.ChargeRequest, status model.ChargeStatus) *model.Charge {
	now := s.now().UTC().Truncate(time.Millisecond)
	charge := &model.Charge{
		Amount:      req.Amount,
		CyclistID:   req.CyclistID,
		Status:      status,
		RequestedAt: now,
	}
	if status.IsFinal() {
		charge.FinalizedAt = &now
	}
	return charge
}
