package validator

import (
	"errors"
	"fmt"
	"strings"

	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/go-playground/validator/v10"
)

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
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ExternalValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewExternalValidator(log *logger.Logger) *ExternalValidator {
	v := validator.New()
	if err := v.RegisterValidation("charge_status", validateChargeStatus); err != nil {
		log.Fatal("Failed to register validator", "tag", "charge_status", "error", err)
	}

	log.Info("External validator initialized successfully")

	return &ExternalValidator{
		validate: v,
		logger:   log,
	}
}

func validateChargeStatus(fl validator.FieldLevel) bool {
	return model.ChargeStatus(fl.Field().String()).Valid()
}

func (v *ExternalValidator) Validate(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "charge_status":
			message = fmt.Sprintf("%s is not a valid charge status", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
