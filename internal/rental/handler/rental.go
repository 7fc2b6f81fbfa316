package handler

import (
	"net/http"

	"bikeshare/internal/rental/service"
	httputil "bikeshare/pkg/http"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RentalHandler struct {
	service service.RentalService
	log     *logger.Logger
}

func NewRentalHandler(service service.RentalService, log *logger.Logger) *RentalHandler {
	return &RentalHandler{
		service: service,
		log:     log,
	}
}

func (h *RentalHandler) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CheckoutRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, "Checkout")
		return
	}

	rental, err := h.service.Checkout(r.Context(), &req)
	if err != nil {
		h.fail(w, "Checkout", err)
		return
	}

	if err := httputil.WriteCreated(w, rental); err != nil {
		h.log.Error("failed to write created response", "handler", "Checkout", "operation", "WriteCreated", "error", err)
	}
}

func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReturnRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, "Return")
		return
	}

	receipt, err := h.service.Return(r.Context(), &req)
	if err != nil {
		h.fail(w, "Return", err)
		return
	}

	h.ok(w, "Return", receipt)
}

func (h *RentalHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		h.fail(w, "GetRental", err)
		return
	}

	rental, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, "GetRental", err)
		return
	}

	h.ok(w, "GetRental", rental)
}

func (h *RentalHandler) CanRent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		h.fail(w, "CanRent", err)
		return
	}

	allowed, err := h.service.CanRent(r.Context(), id)
	if err != nil {
		h.fail(w, "CanRent", err)
		return
	}

	h.ok(w, "CanRent", allowed)
}

func (h *RentalHandler) RentedBicycle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		h.fail(w, "RentedBicycle", err)
		return
	}

	bike, err := h.service.RentedBicycle(r.Context(), id)
	if err != nil {
		h.fail(w, "RentedBicycle", err)
		return
	}

	h.ok(w, "RentedBicycle", bike)
}

func (h *RentalHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/aluguel", h.Checkout)
	router.GET("/api/v1/aluguel/id/:id", h.GetByID)
	router.POST("/api/v1/devolucao", h.Return)
	router.GET("/api/v1/ciclista/id/:id/permiteAluguel", h.CanRent)
	router.GET("/api/v1/ciclista/id/:id/bicicletaAlugada", h.RentedBicycle)
}

func (h *RentalHandler) ok(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *RentalHandler) fail(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RentalHandler) badRequest(w http.ResponseWriter, handler string) {
	if err := httputil.WriteBadRequest(w, "Invalid request body"); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteBadRequest", "error", err)
	}
}
