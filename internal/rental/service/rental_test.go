package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtraFee(t *testing.T) {
	fees := FeePolicy{BaseFee: 10, FreeMinutes: 120, BlockMinutes: 30, BlockFee: 5}

	tests := []struct {
		minutes int64
		want    float64
	}{
		{minutes: 0, want: 0},
		{minutes: 45, want: 0},
		{minutes: 120, want: 0},
		{minutes: 121, want: 5},
		{minutes: 125, want: 5},
		{minutes: 150, want: 5},
		{minutes: 151, want: 10},
		{minutes: 180, want: 10},
		{minutes: 181, want: 15},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fees.ExtraFee(tt.minutes), "minutes=%d", tt.minutes)
		assert.Equal(t, 10+tt.want, fees.Total(tt.minutes), "minutes=%d", tt.minutes)
	}
}

func TestElapsedMinutes_Floors(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(45), ElapsedMinutes(start, start.Add(45*time.Minute+59*time.Second)))
	assert.Equal(t, int64(0), ElapsedMinutes(start, start.Add(30*time.Second)))
	assert.Equal(t, int64(0), ElapsedMinutes(start, start.Add(-time.Minute)))
}

func TestCheckoutThenReturn(t *testing.T) {
	f := newRentalFixture()
	svc := f.service()
	ctx := context.Background()

	rental, err := svc.Checkout(ctx, &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rental.CyclistID)
	assert.Equal(t, int64(1), rental.StartLockID)
	assert.Equal(t, int64(1), rental.BicycleID)
	assert.Equal(t, model.RentalInProgress, rental.Status)
	assert.Equal(t, []float64{10}, f.payments.charged)
	assert.Equal(t, []equipmentCall{{"unlock", 1, 1}}, f.equipment.calls)

	charge, err := f.charges.FindByID(ctx, rental.ChargeID)
	require.NoError(t, err)
	assert.Equal(t, model.ChargePaid, charge.Status)
	assert.Equal(t, model.ChargeInitialRental, charge.Kind)

	f.clock.advance(45 * time.Minute)

	receipt, err := svc.Return(ctx, &model.ReturnRequest{LockID: 2, BicycleID: 1})
	require.NoError(t, err)
	assert.Equal(t, 10.0, receipt.TotalAmount)
	assert.Equal(t, int64(45), receipt.TotalMinutes)
	assert.Equal(t, 0.0, receipt.ExtraFee)
	assert.Equal(t, model.RentalFinished, receipt.Rental.Status)
	require.NotNil(t, receipt.Rental.EndTime)
	assert.True(t, receipt.Rental.EndTime.After(receipt.Rental.StartTime))
	assert.Nil(t, receipt.Rental.ExtraChargeID)
	assert.Equal(t, []float64{10}, f.payments.charged, "no extra charge within the free period")

	stored, err := f.rentals.FindByID(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RentalFinished, stored.Status)
	assert.Equal(t, int64(2), *stored.EndLockID)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, SubjectCheckout, f.notifier.sent[0].subject)
	assert.Equal(t, SubjectReturn, f.notifier.sent[1].subject)
	assert.Contains(t, f.notifier.sent[1].body, "Total: R$ 10.00")
	assert.Len(t, f.events.started, 1)
	assert.Len(t, f.events.finished, 1)
	assert.Empty(t, f.locks.held, "checkout lock released")
}

func TestCheckout_IneligibleCyclist(t *testing.T) {
	for _, cyclistID := range []int64{2, 99} {
		f := newRentalFixture()

		_, err := f.service().Checkout(context.Background(), &model.CheckoutRequest{CyclistID: cyclistID, StartLockID: 1})

		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeIneligibleCyclist), "cyclist %d", cyclistID)
		assert.Empty(t, f.payments.charged)
		assert.Empty(t, f.charges.byID)
		assert.Empty(t, f.rentals.all())
	}
}

func TestCheckout_AlreadyRenting(t *testing.T) {
	f := newRentalFixture()
	f.equipment.docked[3] = 7
	svc := f.service()

	_, err := svc.Checkout(context.Background(), &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), &model.CheckoutRequest{CyclistID: 1, StartLockID: 3})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyRenting))
	assert.Len(t, f.rentals.all(), 1)
	assert.Equal(t, []float64{10}, f.payments.charged)
}

func TestCheckout_NoBikeAtLock(t *testing.T) {
	f := newRentalFixture()

	_, err := f.service().Checkout(context.Background(), &model.CheckoutRequest{CyclistID: 1, StartLockID: 5})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoBikeAtLock))
	assert.Empty(t, f.payments.charged)
}

func TestCheckout_PaymentDeclined(t *testing.T) {
	tests := []struct {
		name   string
		status model.ChargeStatus
		err    error
	}{
		{name: "gateway reports failure", status: model.ChargeFailed},
		{name: "gateway unreachable", err: errBroken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRentalFixture()
			f.payments.status = tt.status
			f.payments.err = tt.err

			_, err := f.service().Checkout(context.Background(), &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})

			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodePaymentDeclined))
			assert.Equal(t, http.StatusUnprocessableEntity, apperrors.AsAppError(err).StatusCode())
			assert.Empty(t, f.rentals.all())
			assert.Empty(t, f.charges.byID)
			assert.Empty(t, f.equipment.calls, "nothing unlocked")
			assert.Empty(t, f.events.refunds)

			active, err := f.rentals.FindActiveByCyclist(context.Background(), 1)
			assert.Nil(t, active)
			assert.Error(t, err)
		})
	}
}

func TestCheckout_UnlockFailureRefundsCharge(t *testing.T) {
	f := newRentalFixture()
	f.equipment.unlockErr = apperrors.Business(apperrors.CodeBikeNotAtLock, "bicycle is not at this lock")

	_, err := f.service().Checkout(context.Background(), &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEquipmentCommandFailed))
	assert.Empty(t, f.rentals.all())
	require.Len(t, f.events.refunds, 1)
	assert.Equal(t, 10.0, f.events.refunds[0].Amount)
	assert.Equal(t, int64(1), f.events.refunds[0].ChargeID)
	assert.Equal(t, []equipmentCall{{"unlock", 1, 1}}, f.equipment.calls, "failed unlock is not undone")
	assert.False(t, f.charges.byID[1].ReconciliationPending)
}

func TestCheckout_RefundPublishFailureFlagsCharge(t *testing.T) {
	f := newRentalFixture()
	f.equipment.unlockErr = errBroken
	f.events.refundErr = errBroken

	_, err := f.service().Checkout(context.Background(), &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEquipmentCommandFailed))
	require.Contains(t, f.charges.byID, int64(1))
	assert.True(t, f.charges.byID[1].ReconciliationPending)
}

func TestCheckout_PersistFailureRelocksAndRefunds(t *testing.T) {
	f := newRentalFixture()
	f.rentals.createErr = errBroken

	_, err := f.service().Checkout(context.Background(), &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.AsAppError(err).Code)
	assert.Equal(t, []equipmentCall{{"unlock", 1, 1}, {"lock", 1, 1}}, f.equipment.calls)
	assert.Len(t, f.events.refunds, 1)
	assert.Equal(t, int64(1), f.equipment.docked[1], "bicycle back at its lock")
}

func TestCheckout_EmailFailureStillSucceeds(t *testing.T) {
	f := newRentalFixture()
	f.notifier.err = errBroken

	rental, err := f.service().Checkout(context.Background(), &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})

	require.NoError(t, err)
	assert.Equal(t, model.RentalInProgress, rental.Status)
	assert.Len(t, f.notifier.sent, 1)
}

func TestCheckout_ConcurrentCheckoutRejected(t *testing.T) {
	f := newRentalFixture()
	f.locks.held[1] = "another-request"

	_, err := f.service().Checkout(context.Background(), &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperrors.AsAppError(err).StatusCode())
	assert.Empty(t, f.payments.charged)
	assert.Equal(t, "another-request", f.locks.held[1], "foreign lock untouched")
}

func TestReturn_ChargesExtraFee(t *testing.T) {
	f := newRentalFixture()
	svc := f.service()
	ctx := context.Background()

	_, err := svc.Checkout(ctx, &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})
	require.NoError(t, err)
	f.clock.advance(151 * time.Minute)

	receipt, err := svc.Return(ctx, &model.ReturnRequest{LockID: 1, BicycleID: 1})
	require.NoError(t, err)
	assert.Equal(t, 10.0, receipt.ExtraFee)
	assert.Equal(t, 20.0, receipt.TotalAmount)
	assert.Equal(t, int64(151), receipt.TotalMinutes)
	assert.Equal(t, []float64{10, 10}, f.payments.charged)

	require.NotNil(t, receipt.Rental.ExtraChargeID)
	extra, err := f.charges.FindByID(ctx, *receipt.Rental.ExtraChargeID)
	require.NoError(t, err)
	assert.Equal(t, model.ChargePaid, extra.Status)
	assert.Equal(t, model.ChargeExtraFee, extra.Kind)
	assert.Contains(t, f.notifier.sent[1].body, "Taxa extra: R$ 10.00")
}

func TestReturn_DeclinedExtraFeeIsQueued(t *testing.T) {
	f := newRentalFixture()
	svc := f.service()
	ctx := context.Background()

	_, err := svc.Checkout(ctx, &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})
	require.NoError(t, err)
	f.clock.advance(125 * time.Minute)
	f.payments.status = model.ChargeFailed

	receipt, err := svc.Return(ctx, &model.ReturnRequest{LockID: 2, BicycleID: 1})
	require.NoError(t, err)
	assert.Equal(t, 5.0, receipt.ExtraFee)
	assert.Equal(t, []float64{5}, f.payments.enqueued)
	assert.Equal(t, int64(1), f.equipment.docked[2], "bicycle locked despite failed payment")

	extra, err := f.charges.FindByID(ctx, *receipt.Rental.ExtraChargeID)
	require.NoError(t, err)
	assert.Equal(t, model.ChargePending, extra.Status)
}

func TestReturn_NoActiveRental(t *testing.T) {
	f := newRentalFixture()

	_, err := f.service().Return(context.Background(), &model.ReturnRequest{LockID: 2, BicycleID: 1})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoActiveRental))
	assert.Empty(t, f.equipment.calls)
}

func TestReturn_LockFailureRefundsExtraFee(t *testing.T) {
	f := newRentalFixture()
	svc := f.service()
	ctx := context.Background()

	rental, err := svc.Checkout(ctx, &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})
	require.NoError(t, err)
	f.clock.advance(200 * time.Minute)
	f.equipment.lockErr = errBroken

	_, err = svc.Return(ctx, &model.ReturnRequest{LockID: 2, BicycleID: 1})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEquipmentCommandFailed))
	require.Len(t, f.events.refunds, 1)
	assert.Equal(t, 15.0, f.events.refunds[0].Amount)

	stored, err := f.rentals.FindByID(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RentalInProgress, stored.Status)
}

func TestReturn_LockFailureAfterDeclinedFeeQueuesOnlyOnce(t *testing.T) {
	f := newRentalFixture()
	svc := f.service()
	ctx := context.Background()

	rental, err := svc.Checkout(ctx, &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})
	require.NoError(t, err)
	f.clock.advance(125 * time.Minute)
	f.payments.status = model.ChargeFailed
	f.equipment.lockErr = errBroken

	_, err = svc.Return(ctx, &model.ReturnRequest{LockID: 2, BicycleID: 1})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeEquipmentCommandFailed))
	assert.Empty(t, f.payments.enqueued, "nothing queued for an aborted return")

	aborted := f.charges.withKind(model.ChargeExtraFee)
	require.Len(t, aborted, 1)
	assert.Equal(t, model.ChargeCancelled, aborted[0].Status)

	f.equipment.lockErr = nil
	receipt, err := svc.Return(ctx, &model.ReturnRequest{LockID: 2, BicycleID: 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, f.payments.enqueued)
	assert.Empty(t, f.events.refunds)

	extra, err := f.charges.FindByID(ctx, *receipt.Rental.ExtraChargeID)
	require.NoError(t, err)
	assert.Equal(t, model.ChargePending, extra.Status)
	require.NotNil(t, extra.GatewayID)

	stored, err := f.rentals.FindByID(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RentalFinished, stored.Status)
}

func TestReturn_FinishFailureReleasesBicycle(t *testing.T) {
	f := newRentalFixture()
	svc := f.service()
	ctx := context.Background()

	rental, err := svc.Checkout(ctx, &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})
	require.NoError(t, err)
	f.clock.advance(30 * time.Minute)
	f.rentals.finishErr = errBroken

	_, err = svc.Return(ctx, &model.ReturnRequest{LockID: 2, BicycleID: 1})
	require.Error(t, err)
	assert.NotContains(t, f.equipment.docked, int64(2), "bicycle handed back to the cyclist")
	assert.Equal(t, []equipmentCall{
		{"unlock", 1, 1},
		{"lock", 2, 1},
		{"unlock", 2, 1},
	}, f.equipment.calls)

	f.rentals.finishErr = nil
	_, err = svc.Return(ctx, &model.ReturnRequest{LockID: 2, BicycleID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.equipment.docked[2])

	stored, err := f.rentals.FindByID(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RentalFinished, stored.Status)
}

func TestReturn_FinishFailureRefundsPaidExtraFee(t *testing.T) {
	f := newRentalFixture()
	svc := f.service()
	ctx := context.Background()

	_, err := svc.Checkout(ctx, &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})
	require.NoError(t, err)
	f.clock.advance(151 * time.Minute)
	f.rentals.finishErr = errBroken

	_, err = svc.Return(ctx, &model.ReturnRequest{LockID: 2, BicycleID: 1})
	require.Error(t, err)
	require.Len(t, f.events.refunds, 1)
	assert.Equal(t, 10.0, f.events.refunds[0].Amount)
	assert.Empty(t, f.payments.enqueued)

	paid := f.charges.withKind(model.ChargeExtraFee)
	require.Len(t, paid, 1)
	assert.Equal(t, model.ChargePaid, paid[0].Status, "a collected fee is refunded, not cancelled")
}

func TestCanRent(t *testing.T) {
	f := newRentalFixture()
	svc := f.service()
	ctx := context.Background()

	ok, err := svc.CanRent(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanRent(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok, "unconfirmed cyclist")

	_, err = svc.CanRent(ctx, 99)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.Checkout(ctx, &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})
	require.NoError(t, err)
	ok, err = svc.CanRent(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "already renting")
}

func TestRentedBicycle(t *testing.T) {
	f := newRentalFixture()
	svc := f.service()
	ctx := context.Background()

	bike, err := svc.RentedBicycle(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, bike)

	_, err = svc.Checkout(ctx, &model.CheckoutRequest{CyclistID: 1, StartLockID: 1})
	require.NoError(t, err)

	bike, err = svc.RentedBicycle(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, bike)
	assert.Equal(t, int64(1), bike.ID)
}

func TestGetByID_NotFound(t *testing.T) {
	_, err := newRentalFixture().service().GetByID(context.Background(), 42)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestCheckout_InvalidRequest(t *testing.T) {
	f := newRentalFixture()

	_, err := f.service().Checkout(context.Background(), &model.CheckoutRequest{CyclistID: 1})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Zero(t, f.locks.taken)
}
