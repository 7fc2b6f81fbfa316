package client

import (
	"context"
	"fmt"
	"time"

	"bikeshare/pkg/model"
)

type NotificationClient struct {
	http *HttpClient
}

func NewNotificationClient(baseURL string, timeout time.Duration) *NotificationClient {
	return &NotificationClient{http: NewHttpClientWithTimeout(baseURL, timeout)}
}

func (c *NotificationClient) SendEmail(ctx context.Context, to, subject, body string) error {
	resp, err := c.http.POST(ctx, "/api/v1/enviarEmail", model.EmailRequest{To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if !resp.IsSuccess() {
		return AsError(resp)
	}
	return nil
}
