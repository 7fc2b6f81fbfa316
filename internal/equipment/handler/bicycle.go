package handler

import (
	"net/http"

	"bikeshare/internal/equipment/service"
	httputil "bikeshare/pkg/http"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BicycleHandler struct {
	service service.BicycleService
	log     *logger.Logger
}

func NewBicycleHandler(service service.BicycleService, log *logger.Logger) *BicycleHandler {
	return &BicycleHandler{
		service: service,
		log:     log,
	}
}

func (h *BicycleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var bike model.Bicycle
	if !decodeBody(h.log, w, r, "CreateBicycle", &bike) {
		return
	}

	if err := h.service.Create(r.Context(), &bike); err != nil {
		writeError(h.log, w, "CreateBicycle", err)
		return
	}

	writeCreated(h.log, w, "CreateBicycle", bike)
}

func (h *BicycleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "GetBicycle", err)
		return
	}

	bike, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(h.log, w, "GetBicycle", err)
		return
	}

	writeSuccess(h.log, w, "GetBicycle", bike)
}

func (h *BicycleHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		writeError(h.log, w, "ListBicycles", err)
		return
	}

	bikes, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(h.log, w, "ListBicycles", err)
		return
	}

	writePaginated(h.log, w, "ListBicycles", bikes, total, limit, offset)
}

func (h *BicycleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "UpdateBicycle", err)
		return
	}

	var updates model.BicycleUpdate
	if !decodeBody(h.log, w, r, "UpdateBicycle", &updates) {
		return
	}

	bike, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		writeError(h.log, w, "UpdateBicycle", err)
		return
	}

	writeSuccess(h.log, w, "UpdateBicycle", bike)
}

func (h *BicycleHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "DeleteBicycle", err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(h.log, w, "DeleteBicycle", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BicycleHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "SetBicycleStatus", err)
		return
	}

	bike, err := h.service.SetStatus(r.Context(), id, ps.ByName("acao"))
	if err != nil {
		writeError(h.log, w, "SetBicycleStatus", err)
		return
	}

	writeSuccess(h.log, w, "SetBicycleStatus", bike)
}

func (h *BicycleHandler) JoinNetwork(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.JoinBicycleRequest
	if !decodeBody(h.log, w, r, "JoinBicycle", &req) {
		return
	}

	if err := h.service.JoinNetwork(r.Context(), &req); err != nil {
		writeError(h.log, w, "JoinBicycle", err)
		return
	}

	writeSuccess(h.log, w, "JoinBicycle", map[string]string{"mensagem": "Bicicleta integrada na rede"})
}

func (h *BicycleHandler) Withdraw(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.WithdrawBicycleRequest
	if !decodeBody(h.log, w, r, "WithdrawBicycle", &req) {
		return
	}

	if err := h.service.Withdraw(r.Context(), &req); err != nil {
		writeError(h.log, w, "WithdrawBicycle", err)
		return
	}

	writeSuccess(h.log, w, "WithdrawBicycle", map[string]string{"mensagem": "Bicicleta retirada da rede"})
}

func (h *BicycleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bicicleta", h.Create)
	router.GET("/api/v1/bicicleta", h.GetAll)
	router.GET("/api/v1/bicicleta/id/:id", h.GetByID)
	router.PUT("/api/v1/bicicleta/id/:id", h.Update)
	router.DELETE("/api/v1/bicicleta/id/:id", h.Delete)
	router.POST("/api/v1/bicicleta/id/:id/status/:acao", h.SetStatus)
	router.POST("/api/v1/bicicleta/integrarNaRede", h.JoinNetwork)
	router.POST("/api/v1/bicicleta/retirarDaRede", h.Withdraw)
}
