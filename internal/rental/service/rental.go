package service

import (
	"context"
	"errors"
	"time"

	rentalerrors "bikeshare/internal/rental/errors"
	"bikeshare/internal/rental/repository"
	"bikeshare/internal/rental/saga"
	"bikeshare/internal/rental/validator"
	"bikeshare/pkg/config"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/middleware"
	"bikeshare/pkg/model"

	"github.com/google/uuid"
)

const (
	FlowCheckout = "checkout"
	FlowReturn   = "return"
)

type RentalService interface {
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.Rental, error)
	Return(ctx context.Context, req *model.ReturnRequest) (*model.ReturnReceipt, error)
	GetByID(ctx context.Context, id int64) (*model.Rental, error)
	CanRent(ctx context.Context, cyclistID int64) (bool, error)
	RentedBicycle(ctx context.Context, cyclistID int64) (*model.Bicycle, error)
}

type rentalService struct {
	rentals   repository.RentalRepository
	charges   repository.ChargeRepository
	cyclists  repository.CyclistRepository
	locks     repository.RentalLockRepository
	equipment EquipmentGateway
	payments  PaymentGateway
	notifier  Notifier
	events    EventEmitter
	validator *validator.RentalValidator
	fees      FeePolicy
	cfg       *config.Config
	now       func() time.Time

	checkoutFlow *saga.Engine[checkoutState]
	returnFlow   *saga.Engine[returnState]
}

type checkoutState struct {
	req     *model.CheckoutRequest
	cyclist *model.Cyclist
	bike    *model.Bicycle
	charge  *model.Charge
	rental  *model.Rental
}

type returnState struct {
	req     *model.ReturnRequest
	rental  *model.Rental
	cyclist *model.Cyclist
	minutes int64
	extra   float64
	charge  *model.Charge
	endTime time.Time
	receipt *model.ReturnReceipt
}

func NewRentalService(
	rentals repository.RentalRepository,
	charges repository.ChargeRepository,
	cyclists repository.CyclistRepository,
	locks repository.RentalLockRepository,
	equipment EquipmentGateway,
	payments PaymentGateway,
	notifier Notifier,
	events EventEmitter,
	validator *validator.RentalValidator,
	cfg *config.Config,
	now func() time.Time,
) RentalService {
	if now == nil {
		now = time.Now
	}
	s := &rentalService{
		rentals:   rentals,
		charges:   charges,
		cyclists:  cyclists,
		locks:     locks,
		equipment: equipment,
		payments:  payments,
		notifier:  notifier,
		events:    events,
		validator: validator,
		fees:      NewFeePolicy(cfg),
		cfg:       cfg,
		now:       now,
	}

	s.checkoutFlow = saga.NewEngine(cfg.Log, saga.NewFlow(FlowCheckout,
		saga.NewStep("verify-cyclist", s.verifyCyclist),
		saga.NewStep("verify-no-active-rental", s.verifyNoActiveRental),
		saga.NewStep("locate-bicycle", s.locateBicycle),
		saga.NewStep("charge-base-fee", s.chargeBaseFee).WithCompensation(s.refundBaseFee),
		saga.NewStep("record-charge", s.recordBaseCharge),
		saga.NewStep("unlock", s.unlock).WithCompensation(s.relock),
		saga.NewStep("persist-rental", s.persistRental),
		saga.NewStep("send-checkout-receipt", s.sendCheckoutReceipt).AsBestEffort(),
		saga.NewStep("publish-rental-started", s.publishRentalStarted).AsBestEffort(),
	))

	s.returnFlow = saga.NewEngine(cfg.Log, saga.NewFlow(FlowReturn,
		saga.NewStep("find-active-rental", s.findActiveRental),
		saga.NewStep("price", s.price),
		saga.NewStep("charge-extra-fee", s.chargeExtraFee).WithCompensation(s.refundExtraFee),
		saga.NewStep("record-extra-charge", s.recordExtraCharge).WithCompensation(s.cancelExtraCharge),
		saga.NewStep("lock", s.lock).WithCompensation(s.releaseBicycle),
		saga.NewStep("finish-rental", s.finishRental),
		saga.NewStep("queue-extra-fee", s.queueExtraFee).AsBestEffort(),
		saga.NewStep("send-return-receipt", s.sendReturnReceipt).AsBestEffort(),
		saga.NewStep("publish-rental-finished", s.publishRentalFinished).AsBestEffort(),
	))

	return s
}

// Checkout runs under a per-cyclist advisory lock so two concurrent
// checkouts by the same cyclist cannot both pass the active-rental check.
func (s *rentalService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.Rental, error) {
	if err := s.validate("Checkout", req); err != nil {
		return nil, err
	}

	owner, err := s.acquireCheckoutLock(ctx, req.CyclistID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.locks.Release(context.WithoutCancel(ctx), req.CyclistID, owner); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release checkout lock", "cyclist_id", req.CyclistID, "error", releaseErr)
		}
	}()

	state := &checkoutState{req: req}
	if err := s.checkoutFlow.Run(ctx, FlowCheckout, state); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Rental started successfully",
		"id", state.rental.ID,
		"cyclist_id", state.rental.CyclistID,
		"bike_id", state.rental.BicycleID,
		"lock_id", state.rental.StartLockID,
	)
	return state.rental, nil
}

func (s *rentalService) Return(ctx context.Context, req *model.ReturnRequest) (*model.ReturnReceipt, error) {
	if err := s.validate("Return", req); err != nil {
		return nil, err
	}

	state := &returnState{req: req}
	if err := s.returnFlow.Run(ctx, FlowReturn, state); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Rental finished successfully",
		"id", state.rental.ID,
		"bike_id", state.rental.BicycleID,
		"minutes", state.minutes,
		"extra_fee", state.extra,
	)
	return state.receipt, nil
}

func (s *rentalService) GetByID(ctx context.Context, id int64) (*model.Rental, error) {
	rental, err := s.rentals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, rentalerrors.ErrRentalNotFound) {
			return nil, apperrors.NotFoundWithID("Aluguel", id)
		}
		return nil, apperrors.Internal("Failed to retrieve rental", err)
	}
	return rental, nil
}

func (s *rentalService) CanRent(ctx context.Context, cyclistID int64) (bool, error) {
	cyclist, err := s.cyclists.FindByID(ctx, cyclistID)
	if err != nil {
		if errors.Is(err, rentalerrors.ErrCyclistNotFound) {
			return false, apperrors.NotFoundWithID("Ciclista", cyclistID)
		}
		return false, apperrors.Internal("Failed to retrieve cyclist", err)
	}
	if !cyclist.Status.CanRent() {
		return false, nil
	}

	active, err := s.activeRental(ctx, cyclistID)
	if err != nil {
		return false, err
	}
	return active == nil, nil
}

// RentedBicycle returns nil when the cyclist has nothing rented.
func (s *rentalService) RentedBicycle(ctx context.Context, cyclistID int64) (*model.Bicycle, error) {
	if _, err := s.cyclists.FindByID(ctx, cyclistID); err != nil {
		if errors.Is(err, rentalerrors.ErrCyclistNotFound) {
			return nil, apperrors.NotFoundWithID("Ciclista", cyclistID)
		}
		return nil, apperrors.Internal("Failed to retrieve cyclist", err)
	}

	active, err := s.activeRental(ctx, cyclistID)
	if err != nil || active == nil {
		return nil, err
	}

	bike, err := s.equipment.Bicycle(ctx, active.BicycleID)
	if err != nil {
		return nil, equipmentError("Failed to retrieve rented bicycle", err)
	}
	return bike, nil
}

func (s *rentalService) activeRental(ctx context.Context, cyclistID int64) (*model.Rental, error) {
	rental, err := s.rentals.FindActiveByCyclist(ctx, cyclistID)
	if err != nil {
		if errors.Is(err, rentalerrors.ErrRentalNotFound) {
			return nil, nil
		}
		return nil, apperrors.Internal("Failed to check active rentals", err)
	}
	return rental, nil
}

func (s *rentalService) acquireCheckoutLock(ctx context.Context, cyclistID int64) (string, error) {
	owner := uuid.NewString()
	lock := &model.RentalLock{
		ID:        cyclistID,
		Owner:     owner,
		ExpiresAt: s.now().Add(s.cfg.CheckoutLockTTL),
	}

	if err := s.locks.Acquire(ctx, lock); err != nil {
		if errors.Is(err, rentalerrors.ErrCheckoutInProgress) {
			return "", apperrors.Conflict("A checkout for this cyclist is already in progress. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire checkout lock", err)
	}
	return owner, nil
}

func (s *rentalService) validate(operation string, v any) error {
	if err := s.validator.Validate(v); err != nil {
		s.cfg.Log.Warn(operation+" validation failed", "error", err)
		return apperrors.Validation(operation+" validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// equipmentError keeps the equipment service's own AppErrors (business codes,
// NOT_FOUND) and reports transport failures as unavailability.
func equipmentError(message string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Unavailable("equipment").WithCause(err).WithDetails(map[string]any{"operation": message})
}

func commandFailed(message string, err error) error {
	return apperrors.Business(apperrors.CodeEquipmentCommandFailed, message).WithCause(err)
}

func correlationID(ctx context.Context) string {
	return middleware.RequestIDFromContext(ctx)
}
