package client

import (
	"context"
	"fmt"
	"time"

	"bikeshare/pkg/model"
)

type PaymentClient struct {
	http *HttpClient
}

func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	return &PaymentClient{http: NewHttpClientWithTimeout(baseURL, timeout)}
}

// Charge asks the gateway to bill the cyclist. A declined charge is not an
// error: the returned charge carries status FALHA. There is no retry.
func (c *PaymentClient) Charge(ctx context.Context, amount float64, cyclistID int64) (*model.Charge, error) {
	return c.submit(ctx, "/api/v1/cobranca", amount, cyclistID)
}

// Enqueue hands a charge to the gateway's retry queue; it comes back PENDENTE.
func (c *PaymentClient) Enqueue(ctx context.Context, amount float64, cyclistID int64) (*model.Charge, error) {
	return c.submit(ctx, "/api/v1/filaCobranca", amount, cyclistID)
}

func (c *PaymentClient) ValidateCard(ctx context.Context, req model.CardValidationRequest) (*model.CardValidation, error) {
	resp, err := c.http.POST(ctx, "/api/v1/validaCartaoDeCredito", req)
	if err != nil {
		return nil, fmt.Errorf("failed to validate card: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, AsError(resp)
	}

	var result model.CardValidation
	if err := resp.DecodeData(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *PaymentClient) submit(ctx context.Context, path string, amount float64, cyclistID int64) (*model.Charge, error) {
	resp, err := c.http.POST(ctx, path, model.ChargeRequest{Amount: amount, CyclistID: cyclistID})
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, AsError(resp)
	}

	var charge model.Charge
	if err := resp.DecodeData(&charge); err != nil {
		return nil, err
	}
	return &charge, nil
}
