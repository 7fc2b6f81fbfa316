package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"bikeshare/internal/equipment/service"
	apperrors "bikeshare/pkg/errors"
	httputil "bikeshare/pkg/http"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type LockHandler struct {
	service service.LockService
	log     *logger.Logger
}

func NewLockHandler(service service.LockService, log *logger.Logger) *LockHandler {
	return &LockHandler{
		service: service,
		log:     log,
	}
}

func (h *LockHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var lock model.Lock
	if !decodeBody(h.log, w, r, "CreateLock", &lock) {
		return
	}

	if err := h.service.Create(r.Context(), &lock); err != nil {
		writeError(h.log, w, "CreateLock", err)
		return
	}

	writeCreated(h.log, w, "CreateLock", lock)
}

func (h *LockHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "GetLock", err)
		return
	}

	lock, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(h.log, w, "GetLock", err)
		return
	}

	writeSuccess(h.log, w, "GetLock", lock)
}

func (h *LockHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		writeError(h.log, w, "ListLocks", err)
		return
	}

	locks, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(h.log, w, "ListLocks", err)
		return
	}

	writePaginated(h.log, w, "ListLocks", locks, total, limit, offset)
}

func (h *LockHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "UpdateLock", err)
		return
	}

	var updates model.LockUpdate
	if !decodeBody(h.log, w, r, "UpdateLock", &updates) {
		return
	}

	lock, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		writeError(h.log, w, "UpdateLock", err)
		return
	}

	writeSuccess(h.log, w, "UpdateLock", lock)
}

func (h *LockHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "DeleteLock", err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(h.log, w, "DeleteLock", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *LockHandler) BikeAtLock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "BikeAtLock", err)
		return
	}

	bike, err := h.service.BikeAtLock(r.Context(), id)
	if err != nil {
		writeError(h.log, w, "BikeAtLock", err)
		return
	}

	writeSuccess(h.log, w, "BikeAtLock", bike)
}

func (h *LockHandler) Lock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.command(w, r, ps, "Lock", h.service.Lock)
}

func (h *LockHandler) Unlock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.command(w, r, ps, "Unlock", h.service.Unlock)
}

// command handles the lock/unlock endpoints, whose body is optional.
func (h *LockHandler) command(
	w http.ResponseWriter, r *http.Request, ps httprouter.Params, name string,
	run func(ctx context.Context, id int64, bikeID *int64) (*model.Lock, error),
) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, name, err)
		return
	}

	var cmd model.LockCommand
	if err := httputil.DecodeJSON(r, &cmd); err != nil && !errors.Is(err, io.EOF) {
		writeError(h.log, w, name, apperrors.InvalidInput("Invalid request body"))
		return
	}

	lock, err := run(r.Context(), id, cmd.BicycleID)
	if err != nil {
		writeError(h.log, w, name, err)
		return
	}

	writeSuccess(h.log, w, name, lock)
}

func (h *LockHandler) ApplyAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "LockAction", err)
		return
	}

	lock, err := h.service.ApplyAction(r.Context(), id, ps.ByName("acao"))
	if err != nil {
		writeError(h.log, w, "LockAction", err)
		return
	}

	writeSuccess(h.log, w, "LockAction", lock)
}

func (h *LockHandler) JoinNetwork(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.JoinLockRequest
	if !decodeBody(h.log, w, r, "JoinLock", &req) {
		return
	}

	if err := h.service.JoinNetwork(r.Context(), &req); err != nil {
		writeError(h.log, w, "JoinLock", err)
		return
	}

	writeSuccess(h.log, w, "JoinLock", map[string]string{"mensagem": "Tranca integrada na rede"})
}

func (h *LockHandler) Withdraw(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.WithdrawLockRequest
	if !decodeBody(h.log, w, r, "WithdrawLock", &req) {
		return
	}

	if err := h.service.Withdraw(r.Context(), &req); err != nil {
		writeError(h.log, w, "WithdrawLock", err)
		return
	}

	writeSuccess(h.log, w, "WithdrawLock", map[string]string{"mensagem": "Tranca retirada da rede"})
}

func (h *LockHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/tranca", h.Create)
	router.GET("/api/v1/tranca", h.GetAll)
	router.GET("/api/v1/tranca/id/:id", h.GetByID)
	router.PUT("/api/v1/tranca/id/:id", h.Update)
	router.DELETE("/api/v1/tranca/id/:id", h.Delete)
	router.GET("/api/v1/tranca/id/:id/bicicleta", h.BikeAtLock)
	router.POST("/api/v1/tranca/id/:id/trancar", h.Lock)
	router.POST("/api/v1/tranca/id/:id/destrancar", h.Unlock)
	router.POST("/api/v1/tranca/id/:id/status/:acao", h.ApplyAction)
	router.POST("/api/v1/tranca/integrarNaRede", h.JoinNetwork)
	router.POST("/api/v1/tranca/retirarDaRede", h.Withdraw)
}
