package validator

import (
	"errors"
	"testing"

	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"
)

func TestValidate(t *testing.T) {
	v := NewRentalValidator(logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}))

	tests := []struct {
		name      string
		input     any
		wantErr   bool
		wantField string
	}{
		{name: "valid checkout", input: &model.CheckoutRequest{CyclistID: 1, StartLockID: 2}},
		{name: "checkout without lock", input: &model.CheckoutRequest{CyclistID: 1}, wantErr: true, wantField: "StartLockID"},
		{name: "valid return", input: &model.ReturnRequest{LockID: 3, BicycleID: 4}},
		{name: "return with negative bike", input: &model.ReturnRequest{LockID: 3, BicycleID: -1}, wantErr: true, wantField: "BicycleID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var errs ValidationErrors
			if !errors.As(err, &errs) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("field = %s, want %s", errs[0].Field, tt.wantField)
			}
		})
	}
}
