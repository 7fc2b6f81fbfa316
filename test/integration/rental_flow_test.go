//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"bikeshare/pkg/model"
	"bikeshare/test/integration/testutil"

	"go.mongodb.org/mongo-driver/bson"
)

func TestRental_CheckoutAndReturn(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	mongo.SeedCyclist(t, model.Cyclist{ID: 1, Name: "Ana", Email: "ana@example.com", Status: model.CyclistActive})
	lockID, bikeID := testutil.DockedBicycle(t, clients.Equipment, 101)

	resp := clients.Rental.GET(t, "/api/v1/ciclista/id/1/permiteAluguel")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var allowed bool
	resp.Data(t, &allowed)
	if !allowed {
		t.Fatal("expected active cyclist without rental to be allowed to rent")
	}

	resp = clients.Rental.POST(t, "/api/v1/aluguel", model.CheckoutRequest{CyclistID: 1, StartLockID: lockID})
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var rental model.Rental
	resp.Data(t, &rental)
	if rental.BicycleID != bikeID {
		t.Fatalf("expected bicycle %d, got %d", bikeID, rental.BicycleID)
	}
	if rental.Status != model.RentalInProgress {
		t.Fatalf("expected status %s, got %s", model.RentalInProgress, rental.Status)
	}

	resp = clients.Equipment.GET(t, testutil.BicyclePath(bikeID))
	var bike model.Bicycle
	resp.Data(t, &bike)
	if bike.Status != model.BicycleInUse {
		t.Errorf("expected bicycle %s after checkout, got %s", model.BicycleInUse, bike.Status)
	}

	resp = clients.Rental.POST(t, "/api/v1/aluguel", model.CheckoutRequest{CyclistID: 1, StartLockID: lockID})
	testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)
	if code := resp.ErrorCode(t); code != "ALREADY_RENTING" {
		t.Errorf("expected ALREADY_RENTING, got %s", code)
	}

	resp = clients.Rental.POST(t, "/api/v1/devolucao", model.ReturnRequest{LockID: lockID, BicycleID: bikeID})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var receipt model.ReturnReceipt
	resp.Data(t, &receipt)
	if receipt.ExtraFee != 0 {
		t.Errorf("expected no extra fee for an immediate return, got %.2f", receipt.ExtraFee)
	}
	if receipt.Rental.Status != model.RentalFinished {
		t.Errorf("expected rental %s, got %s", model.RentalFinished, receipt.Rental.Status)
	}

	resp = clients.Equipment.GET(t, testutil.LockPath(lockID))
	var lock model.Lock
	resp.Data(t, &lock)
	if lock.Status != model.LockOccupied || lock.BicycleID == nil || *lock.BicycleID != bikeID {
		t.Errorf("expected lock to hold bicycle %d again, got %+v", bikeID, lock)
	}

	if n := mongo.CountDocuments(t, "Cobrancas", bson.M{"ciclista": 1, "status": model.ChargePaid}); n != 1 {
		t.Errorf("expected one paid charge, found %d", n)
	}
	if n := mongo.CountDocuments(t, "Emails", bson.M{"destinatario": "ana@example.com"}); n != 2 {
		t.Errorf("expected checkout and return receipts, found %d", n)
	}
}

func TestRental_IneligibleCyclist(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	mongo.SeedCyclist(t, model.Cyclist{ID: 2, Name: "Bruno", Email: "bruno@example.com", Status: model.CyclistAwaitingConfirmation})
	lockID, _ := testutil.DockedBicycle(t, clients.Equipment, 202)

	resp := clients.Rental.POST(t, "/api/v1/aluguel", model.CheckoutRequest{CyclistID: 2, StartLockID: lockID})

	testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)
	if code := resp.ErrorCode(t); code != "INELIGIBLE_CYCLIST" {
		t.Errorf("expected INELIGIBLE_CYCLIST, got %s", code)
	}
	if n := mongo.CountDocuments(t, "Cobrancas", bson.M{}); n != 0 {
		t.Errorf("expected no charge for a rejected checkout, found %d", n)
	}
}

func TestRental_NoBikeAtLock(t *testing.T) {
	env := testutil.NewTestEnv()
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	mongo.SeedCyclist(t, model.Cyclist{ID: 3, Name: "Carla", Email: "carla@example.com", Status: model.CyclistActive})
	resp := clients.Equipment.POST(t, "/api/v1/tranca", testutil.NewLock(303))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var lock model.Lock
	resp.Data(t, &lock)

	resp = clients.Rental.POST(t, "/api/v1/aluguel", model.CheckoutRequest{CyclistID: 3, StartLockID: lock.ID})

	testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)
	if code := resp.ErrorCode(t); code != "NO_BIKE_AT_LOCK" {
		t.Errorf("expected NO_BIKE_AT_LOCK, got %s", code)
	}

	resp = clients.Rental.GET(t, fmt.Sprintf("/api/v1/ciclista/id/%d/bicicletaAlugada", 3))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
}
