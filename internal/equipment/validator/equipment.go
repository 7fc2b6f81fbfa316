package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/go-playground/validator/v10"
)

// Equipment older than this is not accepted.
const minYear = 1900

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type EquipmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEquipmentValidator(log *logger.Logger) *EquipmentValidator {
	v := validator.New()

	custom := map[string]validator.Func{
		"year":           validateYear,
		"bicycle_status": validateBicycleStatus,
		"lock_status":    validateLockStatus,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	log.Info("Equipment validator initialized successfully")

	return &EquipmentValidator{
		validate: v,
		logger:   log,
	}
}

// validateYear accepts a four digit year between minYear and next year.
func validateYear(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if len(raw) != 4 {
		return false
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	return year >= minYear && year <= time.Now().Year()+1
}

func validateBicycleStatus(fl validator.FieldLevel) bool {
	return model.BicycleStatus(fl.Field().String()).Valid()
}

func validateLockStatus(fl validator.FieldLevel) bool {
	return model.LockStatus(fl.Field().String()).Valid()
}

// Validate checks any request or entity struct carrying validate tags.
func (v *EquipmentValidator) Validate(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *EquipmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "year":
			message = fmt.Sprintf("%s must be a four digit year between %d and next year", err.Field(), minYear)
		case "bicycle_status":
			message = fmt.Sprintf("%s is not a valid bicycle status", err.Field())
		case "lock_status":
			message = fmt.Sprintf("%s is not a valid lock status", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
