//go:build integration

package testutil

import (
	"fmt"
	"net/http"
	"testing"

	"bikeshare/pkg/model"
)

const TechnicianID = 7

func NewBicycle(number int64) model.Bicycle {
	return model.Bicycle{
		Brand:  "Caloi",
		Model:  "Urbana",
		Year:   "2024",
		Number: number,
	}
}

func NewLock(number int64) model.Lock {
	return model.Lock{
		Number:          number,
		Location:        "-22.9068,-43.1729",
		ManufactureYear: "2023",
		Model:           "T-100",
	}
}

// DockedBicycle creates a totem, a lock joined to it and a bicycle joined to
// the lock, and returns the lock and bicycle ids.
func DockedBicycle(t *testing.T, equipment *Client, number int64) (lockID, bikeID int64) {
	t.Helper()

	resp := equipment.POST(t, "/api/v1/totem", model.Totem{Location: "Praça XV", Description: "Estação central"})
	AssertStatusCode(t, resp, http.StatusCreated)
	var totem model.Totem
	resp.Data(t, &totem)

	resp = equipment.POST(t, "/api/v1/tranca", NewLock(number))
	AssertStatusCode(t, resp, http.StatusCreated)
	var lock model.Lock
	resp.Data(t, &lock)

	resp = equipment.POST(t, "/api/v1/tranca/integrarNaRede", model.JoinLockRequest{
		LockID: lock.ID, TotemID: totem.ID, TechnicianID: TechnicianID,
	})
	AssertStatusCode(t, resp, http.StatusOK)

	resp = equipment.POST(t, "/api/v1/bicicleta", NewBicycle(number))
	AssertStatusCode(t, resp, http.StatusCreated)
	var bike model.Bicycle
	resp.Data(t, &bike)

	resp = equipment.POST(t, "/api/v1/bicicleta/integrarNaRede", model.JoinBicycleRequest{
		BicycleID: bike.ID, LockID: lock.ID, TechnicianID: TechnicianID,
	})
	AssertStatusCode(t, resp, http.StatusOK)

	return lock.ID, bike.ID
}

func LockPath(id int64) string {
	return fmt.Sprintf("/api/v1/tranca/id/%d", id)
}

func BicyclePath(id int64) string {
	return fmt.Sprintf("/api/v1/bicicleta/id/%d", id)
}
