package client

import (
	"context"
	"fmt"
	"time"

	"bikeshare/pkg/model"
)

// EquipmentClient talks to the equipment service on behalf of the rental
// workflows.
type EquipmentClient struct {
	http *HttpClient
}

func NewEquipmentClient(baseURL string, timeout time.Duration) *EquipmentClient {
	return &EquipmentClient{http: NewHttpClientWithTimeout(baseURL, timeout)}
}

// BikeAtLock returns the bicycle currently held by the lock. Business errors
// (NO_BIKE_AT_LOCK, NOT_FOUND) come back as AppErrors with the peer's code.
func (c *EquipmentClient) BikeAtLock(ctx context.Context, lockID int64) (*model.Bicycle, error) {
	resp, err := c.http.GET(ctx, fmt.Sprintf("/api/v1/tranca/id/%d/bicicleta", lockID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bicycle at lock %d: %w", lockID, err)
	}
	if !resp.IsSuccess() {
		return nil, AsError(resp)
	}

	var bike model.Bicycle
	if err := resp.DecodeData(&bike); err != nil {
		return nil, err
	}
	return &bike, nil
}

func (c *EquipmentClient) Unlock(ctx context.Context, lockID, bikeID int64) error {
	return c.command(ctx, lockID, "destrancar", bikeID)
}

func (c *EquipmentClient) Lock(ctx context.Context, lockID, bikeID int64) error {
	return c.command(ctx, lockID, "trancar", bikeID)
}

func (c *EquipmentClient) command(ctx context.Context, lockID int64, action string, bikeID int64) error {
	body := model.LockCommand{BicycleID: &bikeID}
	resp, err := c.http.POST(ctx, fmt.Sprintf("/api/v1/tranca/id/%d/%s", lockID, action), body)
	if err != nil {
		return fmt.Errorf("failed to %s lock %d: %w", action, lockID, err)
	}
	if !resp.IsSuccess() {
		return AsError(resp)
	}
	return nil
}

func (c *EquipmentClient) Bicycle(ctx context.Context, bikeID int64) (*model.Bicycle, error) {
	resp, err := c.http.GET(ctx, fmt.Sprintf("/api/v1/bicicleta/id/%d", bikeID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bicycle %d: %w", bikeID, err)
	}
	if !resp.IsSuccess() {
		return nil, AsError(resp)
	}

	var bike model.Bicycle
	if err := resp.DecodeData(&bike); err != nil {
		return nil, err
	}
	return &bike, nil
}
