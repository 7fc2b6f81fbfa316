package handler

import (
	"net/http"

	"bikeshare/internal/external/service"
	httputil "bikeshare/pkg/http"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// ExternalHandler serves the charge gateway, card validation and e-mail
// endpoints. Every success answers 200, including stored charges.
type ExternalHandler struct {
	charges service.ChargeService
	cards   service.CardService
	emails  service.EmailService
	log     *logger.Logger
}

func NewExternalHandler(charges service.ChargeService, cards service.CardService, emails service.EmailService, log *logger.Logger) *ExternalHandler {
	return &ExternalHandler{
		charges: charges,
		cards:   cards,
		emails:  emails,
		log:     log,
	}
}

func (h *ExternalHandler) Charge(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ChargeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, "Charge")
		return
	}

	charge, err := h.charges.Charge(r.Context(), &req)
	if err != nil {
		h.fail(w, "Charge", err)
		return
	}

	h.ok(w, "Charge", charge)
}

func (h *ExternalHandler) GetCharge(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		h.fail(w, "GetCharge", err)
		return
	}

	charge, err := h.charges.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, "GetCharge", err)
		return
	}

	h.ok(w, "GetCharge", charge)
}

func (h *ExternalHandler) Enqueue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ChargeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, "Enqueue")
		return
	}

	charge, err := h.charges.Enqueue(r.Context(), &req)
	if err != nil {
		h.fail(w, "Enqueue", err)
		return
	}

	h.ok(w, "Enqueue", charge)
}

func (h *ExternalHandler) ProcessQueue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	result, err := h.charges.ProcessQueue(r.Context())
	if err != nil {
		h.fail(w, "ProcessQueue", err)
		return
	}

	h.ok(w, "ProcessQueue", result)
}

func (h *ExternalHandler) ValidateCard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CardValidationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, "ValidateCard")
		return
	}

	result, err := h.cards.Validate(r.Context(), &req)
	if err != nil {
		h.fail(w, "ValidateCard", err)
		return
	}

	h.ok(w, "ValidateCard", result)
}

func (h *ExternalHandler) SendEmail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.EmailRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, "SendEmail")
		return
	}

	email, err := h.emails.Send(r.Context(), &req)
	if err != nil {
		h.fail(w, "SendEmail", err)
		return
	}

	h.ok(w, "SendEmail", email)
}

func (h *ExternalHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/cobranca", h.Charge)
	router.GET("/api/v1/cobranca/id/:id", h.GetCharge)
	router.POST("/api/v1/filaCobranca", h.Enqueue)
	router.POST("/api/v1/processaCobrancasEmFila", h.ProcessQueue)
	router.POST("/api/v1/validaCartaoDeCredito", h.ValidateCard)
	router.POST("/api/v1/enviarEmail", h.SendEmail)
}

func (h *ExternalHandler) ok(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ExternalHandler) fail(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ExternalHandler) badRequest(w http.ResponseWriter, handler string) {
	if err := httputil.WriteBadRequest(w, "Invalid request body"); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteBadRequest", "error", err)
	}
}
