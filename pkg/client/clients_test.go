package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "message": message})
}

func TestEquipmentClient_BikeAtLock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/tranca/id/7/bicicleta":
			writeData(w, http.StatusOK, model.Bicycle{ID: 3, Number: 300, Status: model.BicycleAvailable})
		case "/api/v1/tranca/id/8/bicicleta":
			writeErr(w, http.StatusUnprocessableEntity, apperrors.CodeNoBikeAtLock, "lock holds no bicycle")
		default:
			writeErr(w, http.StatusNotFound, apperrors.CodeNotFound, "Lock not found")
		}
	}))
	defer srv.Close()

	c := NewEquipmentClient(srv.URL, time.Second)

	bike, err := c.BikeAtLock(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), bike.ID)

	_, err = c.BikeAtLock(context.Background(), 8)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNoBikeAtLock))
	assert.Equal(t, http.StatusUnprocessableEntity, apperrors.AsAppError(err).StatusCode())

	_, err = c.BikeAtLock(context.Background(), 9)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestEquipmentClient_Commands(t *testing.T) {
	var gotPath string
	var gotBody model.LockCommand
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeData(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := NewEquipmentClient(srv.URL, time.Second)

	require.NoError(t, c.Unlock(context.Background(), 4, 11))
	assert.Equal(t, "/api/v1/tranca/id/4/destrancar", gotPath)
	require.NotNil(t, gotBody.BicycleID)
	assert.Equal(t, int64(11), *gotBody.BicycleID)

	require.NoError(t, c.Lock(context.Background(), 5, 11))
	assert.Equal(t, "/api/v1/tranca/id/5/trancar", gotPath)
}

func TestPaymentClient_Charge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req model.ChargeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		status := model.ChargePaid
		if r.URL.Path == "/api/v1/filaCobranca" {
			status = model.ChargePending
		}
		writeData(w, http.StatusCreated, model.Charge{ID: 1, Amount: req.Amount, CyclistID: req.CyclistID, Status: status})
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, time.Second)

	charge, err := c.Charge(context.Background(), 10, 42)
	require.NoError(t, err)
	assert.Equal(t, model.ChargePaid, charge.Status)
	assert.Equal(t, 10.0, charge.Amount)
	assert.Equal(t, int64(42), charge.CyclistID)

	queued, err := c.Enqueue(context.Background(), 5, 42)
	require.NoError(t, err)
	assert.Equal(t, model.ChargePending, queued.Status)
}

func TestPaymentClient_TimeoutIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeData(w, http.StatusCreated, model.Charge{ID: 1, Status: model.ChargePaid})
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, 20*time.Millisecond)

	_, err := c.Charge(context.Background(), 10, 1)
	require.Error(t, err)
	assert.False(t, apperrors.IsAppError(err))
}

func TestNotificationClient_SendEmail(t *testing.T) {
	var got model.EmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/enviarEmail", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeData(w, http.StatusOK, map[string]bool{"sucesso": true})
	}))
	defer srv.Close()

	c := NewNotificationClient(srv.URL, time.Second)

	require.NoError(t, c.SendEmail(context.Background(), "a@b.com", "Aluguel realizado", "body"))
	assert.Equal(t, "a@b.com", got.To)
	assert.Equal(t, "Aluguel realizado", got.Subject)
}

func TestNotificationClient_PeerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	err := NewNotificationClient(srv.URL, time.Second).SendEmail(context.Background(), "a@b.com", "s", "b")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, apperrors.AsAppError(err).StatusCode())
}

func TestPaymentClient_ValidateCard(t *testing.T) {
	var got model.CardValidationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/validaCartaoDeCredito" || r.Method != http.MethodPost {
			writeErr(w, http.StatusNotFound, apperrors.CodeNotFound, "route not found")
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		if got.Holder == "" {
			writeErr(w, http.StatusUnprocessableEntity, apperrors.CodeValidation, "nomePortador is required")
			return
		}
		writeData(w, http.StatusOK, model.CardValidation{
			ID:      4,
			Number:  "************1111",
			Holder:  got.Holder,
			Expiry:  got.Expiry,
			Valid:   got.Number == "4111111111111111",
			Message: "Cartão válido",
		})
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, time.Second)

	result, err := c.ValidateCard(context.Background(), model.CardValidationRequest{
		Number: "4111111111111111", Holder: "Ana Souza", Expiry: "12/30", CVV: "123",
	})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, int64(4), result.ID)
	assert.Equal(t, "************1111", result.Number)
	assert.Equal(t, "123", got.CVV, "cvv is forwarded to the gateway")

	_, err = c.ValidateCard(context.Background(), model.CardValidationRequest{Number: "4111111111111111", Expiry: "12/30", CVV: "123"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, http.StatusUnprocessableEntity, apperrors.AsAppError(err).StatusCode())
}

func TestPaymentClient_ValidateCardUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewPaymentClient(srv.URL, time.Second).ValidateCard(context.Background(), model.CardValidationRequest{Number: "4111111111111111"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to validate card")
}
