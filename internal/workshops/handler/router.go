package handler

import (
	"net/http"

	apperrors "crafthub/pkg/errors"
	"crafthub/pkg/middleware"
	"crafthub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	publicSegment       = "public"
	updatePlacesSegment = "update-places"
	commentsSegment     = "comments"
)

// RegisterRoutes wires the workshop API. httprouter cannot hold a static
// segment and a wildcard at the same position, so /public and
// /update-places share the :id routes and are told apart here.
func (h *WorkshopHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/workshops", middleware.RequireAuth(h.log, h.ListMine))
	router.POST("/api/workshops", middleware.RequireRole(h.log, h.Create, model.RoleArtisan))

	router.GET("/api/workshops/:id", h.getByID)
	router.PUT("/api/workshops/:id", middleware.RequireAuth(h.log, h.Update))
	router.DELETE("/api/workshops/:id", middleware.RequireAuth(h.log, h.Delete))

	router.GET("/api/workshops/:id/:sub", h.getNested)
	router.POST("/api/workshops/:id/:sub", middleware.RequireAuth(h.log, h.postNested))
	router.PUT("/api/workshops/:id/:sub", middleware.RequireAuth(h.log, h.putNested))

	router.PUT("/api/workshops/:id/:sub/:commentId", middleware.RequireAuth(h.log, h.commentOnly(h.UpdateComment)))
	router.DELETE("/api/workshops/:id/:sub/:commentId", middleware.RequireAuth(h.log, h.commentOnly(h.DeleteComment)))
}

func (h *WorkshopHandler) getByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") == publicSegment {
		h.ListPublic(w, r, ps)
		return
	}
	middleware.RequireAuth(h.log, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		h.GetOwned(w, r, ps.ByName("id"))
	})(w, r, ps)
}

// getNested serves GET /api/workshops/public/:id and
// GET /api/workshops/:id/comments.
func (h *WorkshopHandler) getNested(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch {
	case ps.ByName("id") == publicSegment:
		h.GetPublic(w, r, ps.ByName("sub"))
	case ps.ByName("sub") == commentsSegment:
		h.ListComments(w, r, ps.ByName("id"))
	default:
		h.notFound(w, r)
	}
}

func (h *WorkshopHandler) postNested(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("sub") != commentsSegment {
		h.notFound(w, r)
		return
	}
	h.AddComment(w, r, ps)
}

// putNested serves PUT /api/workshops/update-places/:id.
func (h *WorkshopHandler) putNested(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") != updatePlacesSegment {
		h.notFound(w, r)
		return
	}
	h.UpdatePlaces(w, r, ps.ByName("sub"))
}

func (h *WorkshopHandler) commentOnly(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if ps.ByName("sub") != commentsSegment {
			h.notFound(w, r)
			return
		}
		next(w, r, ps)
	}
}

func (h *WorkshopHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, "Router", &apperrors.AppError{
		Code:       apperrors.CodeNotFound,
		Message:    "route not found: " + r.Method + " " + r.URL.Path,
		HTTPStatus: http.StatusNotFound,
	})
}
