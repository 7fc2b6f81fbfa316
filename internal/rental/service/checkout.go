package service

import (
	"context"
	"errors"

	rentalerrors "bikeshare/internal/rental/errors"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/model"
)

func (s *rentalService) verifyCyclist(ctx context.Context, st *checkoutState) error {
	cyclist, err := s.cyclists.FindByID(ctx, st.req.CyclistID)
	if err != nil {
		if errors.Is(err, rentalerrors.ErrCyclistNotFound) {
			return apperrors.Business(apperrors.CodeIneligibleCyclist, "Cyclist does not exist")
		}
		return apperrors.Internal("Failed to retrieve cyclist", err)
	}
	if !cyclist.Status.CanRent() {
		return apperrors.Business(apperrors.CodeIneligibleCyclist, "Cyclist is not allowed to rent").
			WithDetails(map[string]any{"status": cyclist.Status})
	}
	st.cyclist = cyclist
	return nil
}

func (s *rentalService) verifyNoActiveRental(ctx context.Context, st *checkoutState) error {
	active, err := s.activeRental(ctx, st.req.CyclistID)
	if err != nil {
		return err
	}
	if active != nil {
		return apperrors.Business(apperrors.CodeAlreadyRenting, "Cyclist already has a rental in progress").
			WithDetails(map[string]any{"aluguel": active.ID})
	}
	return nil
}

func (s *rentalService) locateBicycle(ctx context.Context, st *checkoutState) error {
	bike, err := s.equipment.BikeAtLock(ctx, st.req.StartLockID)
	if err != nil {
		return equipmentError("bike at lock", err)
	}
	st.bike = bike
	return nil
}

// chargeBaseFee charges the base fee. Any outcome other than a paid charge
// declines the checkout before anything is persisted.
func (s *rentalService) chargeBaseFee(ctx context.Context, st *checkoutState) error {
	gateway, err := s.payments.Charge(ctx, s.fees.BaseFee, st.cyclist.ID)
	if err != nil {
		s.cfg.Log.Warn("Base fee charge failed", "cyclist_id", st.cyclist.ID, "error", err)
		return apperrors.Business(apperrors.CodePaymentDeclined, "Payment was not authorized").WithCause(err)
	}
	if gateway.Status != model.ChargePaid {
		return apperrors.Business(apperrors.CodePaymentDeclined, "Payment was not authorized").
			WithDetails(map[string]any{"status": gateway.Status})
	}

	st.charge = &model.Charge{
		Amount:      gateway.Amount,
		CyclistID:   st.cyclist.ID,
		Status:      model.ChargePaid,
		RequestedAt: gateway.RequestedAt,
		FinalizedAt: gateway.FinalizedAt,
		Kind:        model.ChargeInitialRental,
		GatewayID:   &gateway.ID,
	}
	return nil
}

func (s *rentalService) recordBaseCharge(ctx context.Context, st *checkoutState) error {
	if err := s.charges.Create(ctx, st.charge); err != nil {
		return apperrors.Internal("Failed to record charge", err)
	}
	return nil
}

func (s *rentalService) refundBaseFee(ctx context.Context, st *checkoutState) error {
	return s.requestRefund(ctx, st.charge, "checkout aborted after payment")
}

func (s *rentalService) unlock(ctx context.Context, st *checkoutState) error {
	if err := s.equipment.Unlock(ctx, st.req.StartLockID, st.bike.ID); err != nil {
		return commandFailed("Failed to unlock the bicycle", err)
	}
	return nil
}

func (s *rentalService) relock(ctx context.Context, st *checkoutState) error {
	return s.equipment.Lock(ctx, st.req.StartLockID, st.bike.ID)
}

func (s *rentalService) persistRental(ctx context.Context, st *checkoutState) error {
	rental := &model.Rental{
		CyclistID:   st.cyclist.ID,
		StartLockID: st.req.StartLockID,
		BicycleID:   st.bike.ID,
		StartTime:   s.now(),
		ChargeID:    st.charge.ID,
		Status:      model.RentalInProgress,
	}
	if err := s.rentals.Create(ctx, rental); err != nil {
		if errors.Is(err, rentalerrors.ErrActiveRentalExists) {
			return apperrors.Business(apperrors.CodeAlreadyRenting, "Cyclist or bicycle already has a rental in progress")
		}
		return apperrors.Internal("Failed to create rental", err)
	}
	st.rental = rental
	return nil
}

func (s *rentalService) sendCheckoutReceipt(ctx context.Context, st *checkoutState) error {
	if st.cyclist.Email == "" {
		return nil
	}
	return s.notifier.SendEmail(ctx, st.cyclist.Email, SubjectCheckout, checkoutReceipt(st.rental, s.fees))
}

func (s *rentalService) publishRentalStarted(ctx context.Context, st *checkoutState) error {
	return s.events.RentalStarted(ctx, model.RentalEvent{
		RentalID:   st.rental.ID,
		CyclistID:  st.rental.CyclistID,
		BicycleID:  st.rental.BicycleID,
		LockID:     st.rental.StartLockID,
		Status:     st.rental.Status,
		OccurredAt: st.rental.StartTime,
	}, correlationID(ctx))
}

// requestRefund asks the gateway to reverse a collected charge. If the event
// cannot be published the local charge is flagged for reconciliation.
func (s *rentalService) requestRefund(ctx context.Context, charge *model.Charge, reason string) error {
	if charge == nil || charge.Status != model.ChargePaid {
		return nil
	}

	event := model.RefundRequestedEvent{
		ChargeID:        charge.ID,
		GatewayChargeID: charge.GatewayID,
		CyclistID:       charge.CyclistID,
		Amount:          charge.Amount,
		Reason:          reason,
		RequestedAt:     s.now(),
	}
	err := s.events.RefundRequested(ctx, event, correlationID(ctx))
	if err == nil {
		s.cfg.Log.Info("Refund requested", "charge_id", charge.ID, "cyclist_id", charge.CyclistID, "amount", charge.Amount)
		return nil
	}

	s.cfg.Log.Error("Failed to publish refund request, flagging charge for reconciliation",
		"charge_id", charge.ID,
		"error", err,
	)
	if charge.ID == 0 {
		return err
	}
	if flagErr := s.charges.MarkReconciliationPending(ctx, charge.ID); flagErr != nil {
		return errors.Join(err, flagErr)
	}
	charge.ReconciliationPending = true
	return nil
}
