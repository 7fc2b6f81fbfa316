package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bikeshare/internal/external/repository"
	"bikeshare/internal/external/validator"
	"bikeshare/pkg/config"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/model"
	"bikeshare/pkg/sanitizer"
)

const (
	MinCardDigits = 13
	MaxCardDigits = 19

	CardValidMessage = "Cartão válido"
)

type CardService interface {
	Validate(ctx context.Context, req *model.CardValidationRequest) (*model.CardValidation, error)
}

type cardService struct {
	repo      repository.CardValidationRepository
	validator *validator.ExternalValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewCardService(repo repository.CardValidationRepository, validator *validator.ExternalValidator, cfg *config.Config) CardService {
	return &cardService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Validate checks the card and records the outcome. An invalid card is a
// successful call whose result has valido=false.
func (s *cardService) Validate(ctx context.Context, req *model.CardValidationRequest) (*model.CardValidation, error) {
	if err := s.validator.Validate(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			details := make(map[string]any, len(validationErrs))
			for _, ve := range validationErrs {
				details[ve.Field] = ve.Message
			}
			return nil, apperrors.Validation("Invalid card validation request", details)
		}
		return nil, apperrors.InvalidInput(err.Error())
	}

	now := s.now().UTC()
	valid, message := CheckCard(req.Number, req.Expiry, req.CVV, now)

	result := &model.CardValidation{
		Number:      sanitizer.MaskCardNumber(req.Number),
		Holder:      sanitizer.TrimAndNormalize(req.Holder),
		Expiry:      sanitizer.NormalizeExpiry(req.Expiry),
		Valid:       valid,
		ValidatedAt: now.Truncate(time.Millisecond),
		Message:     message,
	}
	if err := s.repo.Create(ctx, result); err != nil {
		return nil, apperrors.Internal("Failed to record card validation", err)
	}

	s.cfg.Log.Info("Card validated",
		"id", result.ID,
		"number", result.Number,
		"valid", valid,
	)
	return result, nil
}

// CheckCard runs the number, expiry and CVV checks in order and reports the
// first failure.
func CheckCard(number, expiry, cvv string, now time.Time) (bool, string) {
	digits := sanitizer.NormalizeCardNumber(number)
	if digits == "" {
		return false, "Número do cartão deve conter apenas dígitos"
	}
	if len(digits) < MinCardDigits || len(digits) > MaxCardDigits {
		return false, fmt.Sprintf("Número do cartão deve ter entre %d e %d dígitos", MinCardDigits, MaxCardDigits)
	}
	if !luhn(digits) {
		return false, "Número do cartão inválido"
	}

	if msg := checkExpiry(sanitizer.NormalizeExpiry(expiry), now); msg != "" {
		return false, msg
	}

	cvv = sanitizer.TrimAndNormalize(cvv)
	if len(cvv) < 3 || len(cvv) > 4 || sanitizer.DigitsOnly(cvv) != cvv {
		return false, "CVV deve ter 3 ou 4 dígitos"
	}

	return true, CardValidMessage
}

func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// checkExpiry accepts MM/YY. The card is valid through the last day of its
// expiry month.
func checkExpiry(expiry string, now time.Time) string {
	if len(expiry) != 5 || expiry[2] != '/' {
		return "Validade deve estar no formato MM/AA"
	}
	month, err := strconv.Atoi(expiry[:2])
	if err != nil || sanitizer.DigitsOnly(expiry[:2]) != expiry[:2] {
		return "Validade deve estar no formato MM/AA"
	}
	year, err := strconv.Atoi(expiry[3:])
	if err != nil || sanitizer.DigitsOnly(expiry[3:]) != expiry[3:] {
		return "Validade deve estar no formato MM/AA"
	}
	if month < 1 || month > 12 {
		return "Mês de validade inválido"
	}

	firstOfNextMonth := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(firstOfNextMonth) {
		return "Cartão expirado"
	}
	return ""
}
