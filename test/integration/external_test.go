//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"bikeshare/pkg/model"
	"bikeshare/test/integration/testutil"
)

func TestExternal_ChargeQueue(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	resp := clients.External.POST(t, "/api/v1/filaCobranca", model.ChargeRequest{Amount: 15, CyclistID: 9})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var queued model.Charge
	resp.Data(t, &queued)
	if queued.Status != model.ChargePending {
		t.Fatalf("expected queued charge %s, got %s", model.ChargePending, queued.Status)
	}

	resp = clients.External.POST(t, "/api/v1/processaCobrancasEmFila", nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = clients.External.GET(t, fmt.Sprintf("/api/v1/cobranca/id/%d", queued.ID))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var settled model.Charge
	resp.Data(t, &settled)
	if settled.Status != model.ChargePaid {
		t.Errorf("expected settled charge %s, got %s", model.ChargePaid, settled.Status)
	}
	if settled.FinalizedAt == nil {
		t.Error("expected settled charge to carry horaFinalizacao")
	}
}

func TestExternal_CardValidation(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	tests := []struct {
		number string
		valid  bool
	}{
		{number: "4111 1111 1111 1111", valid: true},
		{number: "4111 1111 1111 1112", valid: false},
	}

	for _, tt := range tests {
		resp := clients.External.POST(t, "/api/v1/validaCartaoDeCredito", model.CardValidationRequest{
			Number: tt.number, Holder: "Ana", Expiry: "12/40", CVV: "123",
		})
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var result model.CardValidation
		resp.Data(t, &result)
		if result.Valid != tt.valid {
			t.Errorf("card %s: expected valido=%v, got %v (%s)", tt.number, tt.valid, result.Valid, result.Message)
		}
		if result.Number != "************"+tt.number[len(tt.number)-4:] {
			t.Errorf("expected masked number, got %s", result.Number)
		}
	}
}
