package handler

import (
	"net/http"

	httputil "crafthub/pkg/http"
	"crafthub/pkg/middleware"
	"crafthub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

func (h *WorkshopHandler) ListComments(w http.ResponseWriter, r *http.Request, workshopID string) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListComments", err)
		return
	}

	comments, total, err := h.comments.List(r.Context(), workshopID, limit, offset)
	if err != nil {
		h.writeError(w, "ListComments", err)
		return
	}

	if err := httputil.WritePaginated(w, comments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListComments", "operation", "WritePaginated", "error", err)
	}
}

func (h *WorkshopHandler) AddComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var in model.CommentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, "AddComment", err)
		return
	}

	comment, err := h.comments.Add(r.Context(), actor, ps.ByName("id"), &in)
	if err != nil {
		h.writeError(w, "AddComment", err)
		return
	}

	if err := httputil.WriteCreated(w, comment); err != nil {
		h.log.Error("failed to write created response", "handler", "AddComment", "operation", "WriteCreated", "error", err)
	}
}

func (h *WorkshopHandler) UpdateComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var in model.CommentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, "UpdateComment", err)
		return
	}

	comment, err := h.comments.Update(r.Context(), actor, ps.ByName("id"), ps.ByName("commentId"), &in)
	if err != nil {
		h.writeError(w, "UpdateComment", err)
		return
	}
	h.writeSuccess(w, "UpdateComment", comment)
}

func (h *WorkshopHandler) DeleteComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	if err := h.comments.Delete(r.Context(), actor, ps.ByName("id"), ps.ByName("commentId")); err != nil {
		h.writeError(w, "DeleteComment", err)
		return
	}
	httputil.WriteNoContent(w)
}
