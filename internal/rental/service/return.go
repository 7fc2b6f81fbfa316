package service

import (
	"context"
	"errors"
	"fmt"

	rentalerrors "bikeshare/internal/rental/errors"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/metrics"
	"bikeshare/pkg/model"
)

func (s *rentalService) findActiveRental(ctx context.Context, st *returnState) error {
	rental, err := s.rentals.FindActiveByBicycle(ctx, st.req.BicycleID)
	if err != nil {
		if errors.Is(err, rentalerrors.ErrRentalNotFound) {
			return apperrors.Business(apperrors.CodeNoActiveRental, "No rental in progress for this bicycle").
				WithDetails(map[string]any{"bicicleta": st.req.BicycleID})
		}
		return apperrors.Internal("Failed to retrieve rental", err)
	}
	st.rental = rental

	cyclist, err := s.cyclists.FindByID(ctx, rental.CyclistID)
	if err != nil {
		// The receipt is optional, the return is not.
		s.cfg.Log.Warn("Cyclist of active rental not found", "rental_id", rental.ID, "cyclist_id", rental.CyclistID, "error", err)
		return nil
	}
	st.cyclist = cyclist
	return nil
}

func (s *rentalService) price(_ context.Context, st *returnState) error {
	st.endTime = s.now()
	st.minutes = ElapsedMinutes(st.rental.StartTime, st.endTime)
	st.extra = s.fees.ExtraFee(st.minutes)
	return nil
}

// chargeExtraFee never blocks the return: a charge the gateway refuses is
// recorded as pending and queued once the rental is finished.
func (s *rentalService) chargeExtraFee(ctx context.Context, st *returnState) error {
	if st.extra <= 0 {
		return nil
	}
	metrics.RecordExtraFee(st.extra)

	charge := &model.Charge{
		Amount:      st.extra,
		CyclistID:   st.rental.CyclistID,
		Status:      model.ChargePending,
		RequestedAt: st.endTime,
		Kind:        model.ChargeExtraFee,
	}

	gateway, err := s.payments.Charge(ctx, st.extra, st.rental.CyclistID)
	if err == nil && gateway.Status == model.ChargePaid {
		charge.Status = model.ChargePaid
		charge.FinalizedAt = gateway.FinalizedAt
		charge.GatewayID = &gateway.ID
	} else {
		s.cfg.Log.Warn("Extra fee charge failed, it will be queued", "rental_id", st.rental.ID, "amount", st.extra, "error", err)
	}
	st.charge = charge
	return nil
}

func (s *rentalService) recordExtraCharge(ctx context.Context, st *returnState) error {
	if st.charge == nil {
		return nil
	}
	if err := s.charges.Create(ctx, st.charge); err != nil {
		return apperrors.Internal("Failed to record extra fee charge", err)
	}
	return nil
}

// cancelExtraCharge voids a pending record of an aborted return so a retry
// starts from a clean slate. Paid charges are left to refundExtraFee.
func (s *rentalService) cancelExtraCharge(ctx context.Context, st *returnState) error {
	if st.charge == nil || st.charge.ID == 0 || st.charge.Status != model.ChargePending {
		return nil
	}
	if err := s.charges.Cancel(ctx, st.charge.ID, s.now()); err != nil {
		return err
	}
	st.charge.Status = model.ChargeCancelled
	return nil
}

func (s *rentalService) refundExtraFee(ctx context.Context, st *returnState) error {
	return s.requestRefund(ctx, st.charge, "return aborted after extra fee payment")
}

// lock is mandatory: a bicycle that could not be locked is still rented.
func (s *rentalService) lock(ctx context.Context, st *returnState) error {
	if err := s.equipment.Lock(ctx, st.req.LockID, st.req.BicycleID); err != nil {
		return commandFailed("Failed to lock the bicycle", err)
	}
	return nil
}

// releaseBicycle hands the bicycle back to the cyclist when the rental could
// not be closed, so the return can be retried.
func (s *rentalService) releaseBicycle(ctx context.Context, st *returnState) error {
	return s.equipment.Unlock(ctx, st.req.LockID, st.req.BicycleID)
}

func (s *rentalService) finishRental(ctx context.Context, st *returnState) error {
	var extraChargeID *int64
	if st.charge != nil {
		extraChargeID = &st.charge.ID
	}

	if err := s.rentals.Finish(ctx, st.rental.ID, st.req.LockID, st.endTime, extraChargeID); err != nil {
		if errors.Is(err, rentalerrors.ErrRentalNotActive) {
			return apperrors.Business(apperrors.CodeNoActiveRental, "Rental was already finished")
		}
		return apperrors.Internal("Failed to finish rental", err)
	}

	endLockID := st.req.LockID
	endTime := st.endTime
	st.rental.EndLockID = &endLockID
	st.rental.EndTime = &endTime
	st.rental.ExtraChargeID = extraChargeID
	st.rental.Status = model.RentalFinished

	st.receipt = &model.ReturnReceipt{
		Rental:       st.rental,
		TotalAmount:  s.fees.Total(st.minutes),
		TotalMinutes: st.minutes,
		ExtraFee:     st.extra,
	}
	return nil
}

// queueExtraFee hands a refused extra fee to the gateway queue. It runs only
// after the rental is finished, so an aborted return never leaves a queued
// charge behind.
func (s *rentalService) queueExtraFee(ctx context.Context, st *returnState) error {
	if st.charge == nil || st.charge.Status != model.ChargePending {
		return nil
	}
	queued, err := s.payments.Enqueue(ctx, st.charge.Amount, st.charge.CyclistID)
	if err != nil {
		return fmt.Errorf("failed to queue extra fee charge %d: %w", st.charge.ID, err)
	}
	st.charge.GatewayID = &queued.ID
	if err := s.charges.AttachGatewayCharge(ctx, st.charge.ID, queued.ID); err != nil {
		return fmt.Errorf("failed to link charge %d to queued charge %d: %w", st.charge.ID, queued.ID, err)
	}
	return nil
}

func (s *rentalService) sendReturnReceipt(ctx context.Context, st *returnState) error {
	if st.cyclist == nil || st.cyclist.Email == "" {
		return nil
	}
	return s.notifier.SendEmail(ctx, st.cyclist.Email, SubjectReturn, returnReceipt(st.receipt, s.fees))
}

func (s *rentalService) publishRentalFinished(ctx context.Context, st *returnState) error {
	return s.events.RentalFinished(ctx, model.RentalEvent{
		RentalID:    st.rental.ID,
		CyclistID:   st.rental.CyclistID,
		BicycleID:   st.rental.BicycleID,
		LockID:      st.req.LockID,
		Status:      st.rental.Status,
		TotalAmount: st.receipt.TotalAmount,
		OccurredAt:  st.endTime,
	}, correlationID(ctx))
}
