package handler

import (
	"net/http"

	"bikeshare/internal/equipment/service"
	httputil "bikeshare/pkg/http"
	"bikeshare/pkg/logger"
	"bikeshare/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TotemHandler struct {
	service service.TotemService
	log     *logger.Logger
}

func NewTotemHandler(service service.TotemService, log *logger.Logger) *TotemHandler {
	return &TotemHandler{
		service: service,
		log:     log,
	}
}

func (h *TotemHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var totem model.Totem
	if !decodeBody(h.log, w, r, "CreateTotem", &totem) {
		return
	}

	if err := h.service.Create(r.Context(), &totem); err != nil {
		writeError(h.log, w, "CreateTotem", err)
		return
	}

	writeCreated(h.log, w, "CreateTotem", totem)
}

func (h *TotemHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "GetTotem", err)
		return
	}

	totem, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(h.log, w, "GetTotem", err)
		return
	}

	writeSuccess(h.log, w, "GetTotem", totem)
}

func (h *TotemHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		writeError(h.log, w, "ListTotems", err)
		return
	}

	totems, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(h.log, w, "ListTotems", err)
		return
	}

	writePaginated(h.log, w, "ListTotems", totems, total, limit, offset)
}

func (h *TotemHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "UpdateTotem", err)
		return
	}

	var updates model.TotemUpdate
	if !decodeBody(h.log, w, r, "UpdateTotem", &updates) {
		return
	}

	totem, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		writeError(h.log, w, "UpdateTotem", err)
		return
	}

	writeSuccess(h.log, w, "UpdateTotem", totem)
}

func (h *TotemHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "DeleteTotem", err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(h.log, w, "DeleteTotem", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TotemHandler) Locks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "TotemLocks", err)
		return
	}

	locks, err := h.service.Locks(r.Context(), id)
	if err != nil {
		writeError(h.log, w, "TotemLocks", err)
		return
	}

	writeSuccess(h.log, w, "TotemLocks", locks)
}

func (h *TotemHandler) Bicycles(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.PathID(ps, "id")
	if err != nil {
		writeError(h.log, w, "TotemBicycles", err)
		return
	}

	bikes, err := h.service.Bicycles(r.Context(), id)
	if err != nil {
		writeError(h.log, w, "TotemBicycles", err)
		return
	}

	writeSuccess(h.log, w, "TotemBicycles", bikes)
}

func (h *TotemHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/totem", h.Create)
	router.GET("/api/v1/totem", h.GetAll)
	router.GET("/api/v1/totem/id/:id", h.GetByID)
	router.PUT("/api/v1/totem/id/:id", h.Update)
	router.DELETE("/api/v1/totem/id/:id", h.Delete)
	router.GET("/api/v1/totem/id/:id/trancas", h.Locks)
	router.GET("/api/v1/totem/id/:id/bicicletas", h.Bicycles)
}
