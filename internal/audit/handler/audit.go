package handler

import (
	"net/http"
	"strconv"
	"strings"

	"bikeshare/internal/audit/service"
	apperrors "bikeshare/pkg/errors"
	httputil "bikeshare/pkg/http"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AuditHandler struct {
	service service.AuditService
	log     *logger.Logger
}

func NewAuditHandler(service service.AuditService, log *logger.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		log:     log,
	}
}

type custodyResponse struct {
	EquipmentType model.EquipmentType `json:"tipoEquipamento"`
	EquipmentID   int64               `json:"idEquipamento"`
	TechnicianID  int64               `json:"idFuncionario"`
	Retrieved     bool                `json:"retiradoPeloFuncionario"`
}

func (h *AuditHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.fail(w, "Search", err)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.fail(w, "Search", err)
		return
	}

	records, total, err := h.service.Search(r.Context(), filter, limit, offset)
	if err != nil {
		h.fail(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, records, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *AuditHandler) RecentActions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	equipmentType, equipmentID, err := equipmentParams(ps)
	if err != nil {
		h.fail(w, "RecentActions", err)
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			h.fail(w, "RecentActions", apperrors.InvalidInput("invalid limit parameter: "+s))
			return
		}
	}

	records, err := h.service.RecentActions(r.Context(), equipmentType, equipmentID, limit)
	if err != nil {
		h.fail(w, "RecentActions", err)
		return
	}

	if err := httputil.WriteSuccess(w, records); err != nil {
		h.log.Error("failed to write success response", "handler", "RecentActions", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuditHandler) LastWithdrawal(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	equipmentType, equipmentID, err := equipmentParams(ps)
	if err != nil {
		h.fail(w, "LastWithdrawal", err)
		return
	}

	record, err := h.service.LastWithdrawal(r.Context(), equipmentType, equipmentID)
	if err != nil {
		h.fail(w, "LastWithdrawal", err)
		return
	}
	if record == nil {
		h.fail(w, "LastWithdrawal", apperrors.NotFoundWithID("Repair withdrawal", equipmentID))
		return
	}

	if err := httputil.WriteSuccess(w, record); err != nil {
		h.log.Error("failed to write success response", "handler", "LastWithdrawal", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuditHandler) Custody(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	equipmentType, equipmentID, err := equipmentParams(ps)
	if err != nil {
		h.fail(w, "Custody", err)
		return
	}
	technicianID, err := httputil.PathID(ps, "funcionario")
	if err != nil {
		h.fail(w, "Custody", err)
		return
	}

	ok, err := h.service.WasRetrievedByTechnician(r.Context(), equipmentType, equipmentID, technicianID)
	if err != nil {
		h.fail(w, "Custody", err)
		return
	}

	if err := httputil.WriteSuccess(w, custodyResponse{
		EquipmentType: equipmentType,
		EquipmentID:   equipmentID,
		TechnicianID:  technicianID,
		Retrieved:     ok,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Custody", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuditHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/auditoria", h.Search)
	router.GET("/api/v1/auditoria/equipamento/:tipo/:id", h.RecentActions)
	router.GET("/api/v1/auditoria/equipamento/:tipo/:id/ultimaRetirada", h.LastWithdrawal)
	router.GET("/api/v1/auditoria/equipamento/:tipo/:id/reparador/:funcionario", h.Custody)
}

func (h *AuditHandler) fail(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func equipmentParams(ps httprouter.Params) (model.EquipmentType, int64, error) {
	equipmentType := model.EquipmentType(strings.ToUpper(ps.ByName("tipo")))
	if !equipmentType.Valid() {
		return "", 0, apperrors.InvalidInput("invalid equipment type: " + ps.ByName("tipo"))
	}
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		return "", 0, err
	}
	return equipmentType, id, nil
}

func parseFilter(r *http.Request) (model.AuditFilter, error) {
	query := r.URL.Query()
	var filter model.AuditFilter
	var err error

	if filter.TechnicianID, err = httputil.QueryID(r, "funcionario"); err != nil {
		return filter, err
	}
	if filter.EquipmentID, err = httputil.QueryID(r, "idEquipamento"); err != nil {
		return filter, err
	}
	if s := query.Get("tipoEquipamento"); s != "" {
		filter.EquipmentType = model.EquipmentType(strings.ToUpper(s))
	}
	if s := query.Get("acao"); s != "" {
		filter.Action = model.AuditAction(strings.ToUpper(s))
	}
	filter.TargetStatus = strings.ToUpper(query.Get("statusDestino"))
	return filter, nil
}
