package handler

import (
	"net/http"

	"crafthub/internal/workshops/service"
	httputil "crafthub/pkg/http"
	"crafthub/pkg/logger"
	"crafthub/pkg/middleware"
	"crafthub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WorkshopHandler struct {
	service  service.WorkshopService
	comments service.CommentService
	log      *logger.Logger
}

func NewWorkshopHandler(service service.WorkshopService, comments service.CommentService, log *logger.Logger) *WorkshopHandler {
	return &WorkshopHandler{
		service:  service,
		comments: comments,
		log:      log,
	}
}

func (h *WorkshopHandler) ListPublic(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListPublic", err)
		return
	}

	workshops, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "ListPublic", err)
		return
	}

	if err := httputil.WritePaginated(w, workshops, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListPublic", "operation", "WritePaginated", "error", err)
	}
}

func (h *WorkshopHandler) GetPublic(w http.ResponseWriter, r *http.Request, id string) {
	workshop, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetPublic", err)
		return
	}
	h.writeSuccess(w, "GetPublic", workshop)
}

func (h *WorkshopHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	workshops, total, err := h.service.GetByArtisan(r.Context(), actor, limit, offset)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WritePaginated(w, workshops, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListMine", "operation", "WritePaginated", "error", err)
	}
}

func (h *WorkshopHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var workshop model.Workshop
	if err := httputil.DecodeJSON(r, &workshop); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), actor, &workshop); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, workshop); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *WorkshopHandler) GetOwned(w http.ResponseWriter, r *http.Request, id string) {
	actor, _ := middleware.ActorFromContext(r.Context())

	workshop, err := h.service.GetOwned(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, "GetOwned", err)
		return
	}
	h.writeSuccess(w, "GetOwned", workshop)
}

func (h *WorkshopHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var updates model.WorkshopUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	workshop, err := h.service.Update(r.Context(), actor, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	h.writeSuccess(w, "Update", workshop)
}

func (h *WorkshopHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *WorkshopHandler) UpdatePlaces(w http.ResponseWriter, r *http.Request, id string) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var adj model.PlacesAdjustment
	if err := httputil.DecodeJSON(r, &adj); err != nil {
		h.writeError(w, "UpdatePlaces", err)
		return
	}
	workshop, err := h.service.UpdatePlaces(r.Context(), actor, id, &adj)
	if err != nil {
		h.writeError(w, "UpdatePlaces", err)
		return
	}
	h.writeSuccess(w, "UpdatePlaces", workshop)
}

func (h *WorkshopHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *WorkshopHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}
