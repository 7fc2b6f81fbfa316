package consumer

import (
	"context"
	"errors"
	"testing"

	"bikeshare/internal/external/service"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/kafka"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChargeService struct {
	service.ChargeService
	refundFunc func(ctx context.Context, event *model.RefundRequestedEvent) (*model.Charge, error)
	refunds    []*model.RefundRequestedEvent
}

func (m *mockChargeService) Refund(ctx context.Context, event *model.RefundRequestedEvent) (*model.Charge, error) {
	m.refunds = append(m.refunds, event)
	if m.refundFunc != nil {
		return m.refundFunc(ctx, event)
	}
	return &model.Charge{ID: *event.GatewayChargeID, Status: model.ChargeCancelled}, nil
}

func newHandler(svc *mockChargeService) *RefundHandler {
	return NewRefundHandler(svc, logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}))
}

func refundMessage(t *testing.T, event any) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey("1").
		WithValue(event).
		WithEventType(model.EventChargeRefundRequested).
		Build()
	require.NoError(t, err)
	return msg
}

func classify(err error) kafka.ErrorType {
	var kafkaErr *kafka.KafkaError
	if errors.As(err, &kafkaErr) {
		return kafkaErr.Type
	}
	return kafka.ErrorTypeUnknown
}

func TestRefundHandler_AppliesRefund(t *testing.T) {
	svc := &mockChargeService{}
	gatewayID := int64(9)

	err := newHandler(svc).Handle(context.Background(), refundMessage(t, model.RefundRequestedEvent{ChargeID: 3, GatewayChargeID: &gatewayID, CyclistID: 1, Amount: 10}))

	require.NoError(t, err)
	require.Len(t, svc.refunds, 1)
	assert.Equal(t, int64(9), *svc.refunds[0].GatewayChargeID)
	assert.Equal(t, int64(3), svc.refunds[0].ChargeID)
}

func TestRefundHandler_IgnoresOtherEvents(t *testing.T) {
	svc := &mockChargeService{}
	msg, err := kafka.NewMessage().WithKey("1").WithValue(model.RentalEvent{RentalID: 1}).WithEventType(model.EventRentalStarted).Build()
	require.NoError(t, err)

	require.NoError(t, newHandler(svc).Handle(context.Background(), msg))
	assert.Empty(t, svc.refunds)
}

func TestRefundHandler_MalformedPayloadIsPermanent(t *testing.T) {
	svc := &mockChargeService{}
	msg := kafka.Message{
		Value:   []byte("{not json"),
		Headers: map[string]string{kafka.HeaderEventType: model.EventChargeRefundRequested},
	}

	err := newHandler(svc).Handle(context.Background(), msg)

	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, classify(err))
	assert.Empty(t, svc.refunds)
}

func TestRefundHandler_MissingGatewayIDIsPermanent(t *testing.T) {
	svc := &mockChargeService{}

	err := newHandler(svc).Handle(context.Background(), refundMessage(t, model.RefundRequestedEvent{ChargeID: 3}))

	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, classify(err))
}

func TestRefundHandler_ErrorClassification(t *testing.T) {
	gatewayID := int64(9)
	tests := []struct {
		name string
		err  error
		want kafka.ErrorType
	}{
		{name: "not refundable", err: apperrors.Business(apperrors.CodeChargeNotRefundable, "no"), want: kafka.ErrorTypePermanent},
		{name: "unknown charge", err: apperrors.NotFoundWithID("Charge", 9), want: kafka.ErrorTypePermanent},
		{name: "store failure", err: apperrors.Internal("Failed to refund charge", errors.New("timeout")), want: kafka.ErrorTypeTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockChargeService{refundFunc: func(ctx context.Context, event *model.RefundRequestedEvent) (*model.Charge, error) {
				return nil, tt.err
			}}

			err := newHandler(svc).Handle(context.Background(), refundMessage(t, model.RefundRequestedEvent{GatewayChargeID: &gatewayID}))

			require.Error(t, err)
			assert.Equal(t, tt.want, classify(err))
		})
	}
}
