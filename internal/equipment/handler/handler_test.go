package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bikeshare/internal/equipment/service"
	apperrors "bikeshare/pkg/errors"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBicycleService struct {
	service.BicycleService
	createFunc    func(ctx context.Context, bike *model.Bicycle) error
	getByIDFunc   func(ctx context.Context, id int64) (*model.Bicycle, error)
	setStatusFunc func(ctx context.Context, id int64, status string) (*model.Bicycle, error)
	joinFunc      func(ctx context.Context, req *model.JoinBicycleRequest) error
}

func (m *mockBicycleService) Create(ctx context.Context, bike *model.Bicycle) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, bike)
	}
	return nil
}

func (m *mockBicycleService) GetByID(ctx context.Context, id int64) (*model.Bicycle, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Bicycle{ID: id}, nil
}

func (m *mockBicycleService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Bicycle, int64, error) {
	return []*model.Bicycle{{ID: 1}, {ID: 2}}, 2, nil
}

func (m *mockBicycleService) SetStatus(ctx context.Context, id int64, status string) (*model.Bicycle, error) {
	if m.setStatusFunc != nil {
		return m.setStatusFunc(ctx, id, status)
	}
	return &model.Bicycle{ID: id, Status: model.BicycleStatus(status)}, nil
}

func (m *mockBicycleService) JoinNetwork(ctx context.Context, req *model.JoinBicycleRequest) error {
	if m.joinFunc != nil {
		return m.joinFunc(ctx, req)
	}
	return nil
}

type mockLockService struct {
	service.LockService
	lockFunc   func(ctx context.Context, id int64, bikeID *int64) (*model.Lock, error)
	unlockFunc func(ctx context.Context, id int64, bikeID *int64) (*model.Lock, error)
	bikeFunc   func(ctx context.Context, id int64) (*model.Bicycle, error)
}

func (m *mockLockService) Lock(ctx context.Context, id int64, bikeID *int64) (*model.Lock, error) {
	if m.lockFunc != nil {
		return m.lockFunc(ctx, id, bikeID)
	}
	return &model.Lock{ID: id, Status: model.LockOccupied, BicycleID: bikeID}, nil
}

func (m *mockLockService) Unlock(ctx context.Context, id int64, bikeID *int64) (*model.Lock, error) {
	if m.unlockFunc != nil {
		return m.unlockFunc(ctx, id, bikeID)
	}
	return &model.Lock{ID: id, Status: model.LockFree}, nil
}

func (m *mockLockService) BikeAtLock(ctx context.Context, id int64) (*model.Bicycle, error) {
	if m.bikeFunc != nil {
		return m.bikeFunc(ctx, id)
	}
	return &model.Bicycle{ID: 7}, nil
}

type mockTotemService struct {
	service.TotemService
}

func (m *mockTotemService) Locks(ctx context.Context, id int64) ([]*model.Lock, error) {
	return []*model.Lock{{ID: 1, TotemID: &id}}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func newEquipmentRouter(bikes *mockBicycleService, locks *mockLockService) *httprouter.Router {
	log := testLogger()
	router := httprouter.New()
	NewRegistry(
		NewBicycleHandler(bikes, log),
		NewLockHandler(locks, log),
		NewTotemHandler(&mockTotemService{}, log),
	).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestCreateBicycle(t *testing.T) {
	bikes := &mockBicycleService{
		createFunc: func(ctx context.Context, bike *model.Bicycle) error {
			bike.ID = 11
			bike.Status = model.BicycleNew
			return nil
		},
	}

	w := serve(newEquipmentRouter(bikes, &mockLockService{}), http.MethodPost, "/api/v1/bicicleta",
		`{"marca":"Caloi","modelo":"Urbana","ano":"2022","numero":5}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Data model.Bicycle `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, int64(11), body.Data.ID)
	assert.Equal(t, model.BicycleNew, body.Data.Status)
}

func TestCreateBicycle_MalformedBody(t *testing.T) {
	w := serve(newEquipmentRouter(&mockBicycleService{}, &mockLockService{}), http.MethodPost, "/api/v1/bicicleta", `{`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, w).Code)
}

func TestGetBicycle(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
	}{
		{name: "found", path: "/api/v1/bicicleta/id/3", wantStatus: http.StatusOK},
		{name: "not found", path: "/api/v1/bicicleta/id/3", err: apperrors.NotFoundWithID("Bicicleta", int64(3)), wantStatus: http.StatusNotFound},
		{name: "non numeric id", path: "/api/v1/bicicleta/id/abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bikes := &mockBicycleService{
				getByIDFunc: func(ctx context.Context, id int64) (*model.Bicycle, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.Bicycle{ID: id}, nil
				},
			}
			w := serve(newEquipmentRouter(bikes, &mockLockService{}), http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestListBicycles_Paginated(t *testing.T) {
	w := serve(newEquipmentRouter(&mockBicycleService{}, &mockLockService{}), http.MethodGet, "/api/v1/bicicleta?limit=2", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data       []model.Bicycle `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Len(t, body.Data, 2)
	assert.Equal(t, int64(2), body.TotalCount)
	assert.Equal(t, 2, body.Limit)
}

func TestSetBicycleStatus_PassesAction(t *testing.T) {
	var gotStatus string
	bikes := &mockBicycleService{
		setStatusFunc: func(ctx context.Context, id int64, status string) (*model.Bicycle, error) {
			gotStatus = status
			return &model.Bicycle{ID: id, Status: model.BicycleRepairRequested}, nil
		},
	}

	w := serve(newEquipmentRouter(bikes, &mockLockService{}), http.MethodPost, "/api/v1/bicicleta/id/4/status/REPARO_SOLICITADO", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "REPARO_SOLICITADO", gotStatus)
}

func TestJoinBicycle_BusinessErrorIs422(t *testing.T) {
	bikes := &mockBicycleService{
		joinFunc: func(ctx context.Context, req *model.JoinBicycleRequest) error {
			return apperrors.Business(apperrors.CodeInvalidBikeStatus, "bicycle cannot join the network")
		},
	}

	w := serve(newEquipmentRouter(bikes, &mockLockService{}), http.MethodPost, "/api/v1/bicicleta/integrarNaRede",
		`{"idTranca":1,"idBicicleta":2,"idFuncionario":3}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperrors.CodeInvalidBikeStatus, decodeError(t, w).Code)
}

func TestLockCommand_OptionalBody(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantBike *int64
		wantCode int
	}{
		{name: "lock with bicycle", path: "/api/v1/tranca/id/5/trancar", body: `{"bicicleta":9}`, wantBike: ptrTo(9), wantCode: http.StatusOK},
		{name: "lock without body", path: "/api/v1/tranca/id/5/trancar", wantCode: http.StatusOK},
		{name: "unlock without body", path: "/api/v1/tranca/id/5/destrancar", wantCode: http.StatusOK},
		{name: "malformed body", path: "/api/v1/tranca/id/5/trancar", body: `{"bicicleta":`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBike *int64
			var called bool
			record := func(ctx context.Context, id int64, bikeID *int64) (*model.Lock, error) {
				called = true
				gotBike = bikeID
				return &model.Lock{ID: id}, nil
			}
			locks := &mockLockService{lockFunc: record, unlockFunc: record}

			w := serve(newEquipmentRouter(&mockBicycleService{}, locks), http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				assert.False(t, called)
				return
			}
			assert.Equal(t, tt.wantBike, gotBike)
		})
	}
}

func TestBikeAtLock_NoBike(t *testing.T) {
	locks := &mockLockService{
		bikeFunc: func(ctx context.Context, id int64) (*model.Bicycle, error) {
			return nil, apperrors.Business(apperrors.CodeNoBikeAtLock, "no bicycle docked")
		},
	}

	w := serve(newEquipmentRouter(&mockBicycleService{}, locks), http.MethodGet, "/api/v1/tranca/id/5/bicicleta", "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperrors.CodeNoBikeAtLock, decodeError(t, w).Code)
}

func TestTotemLocks(t *testing.T) {
	w := serve(newEquipmentRouter(&mockBicycleService{}, &mockLockService{}), http.MethodGet, "/api/v1/totem/id/2/trancas", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []model.Lock `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, int64(2), *body.Data[0].TotemID)
}

func ptrTo(v int64) *int64 {
	return &v
}
