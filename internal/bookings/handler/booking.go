package handler

import (
	"net/http"

	"crafthub/internal/bookings/service"
	apperrors "crafthub/pkg/errors"
	httputil "crafthub/pkg/http"
	"crafthub/pkg/logger"
	"crafthub/pkg/middleware"
	"crafthub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service       service.BookingService
	log           *logger.Logger
	webhookSecret string
}

// NewBookingHandler serves the booking API. The payment webhook is only
// mounted when webhookSecret is set.
func NewBookingHandler(service service.BookingService, log *logger.Logger, webhookSecret string) *BookingHandler {
	return &BookingHandler{
		service:       service,
		log:           log,
		webhookSecret: webhookSecret,
	}
}

func (h *BookingHandler) Hold(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req model.HoldRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Hold", err)
		return
	}

	booking, err := h.service.Hold(r.Context(), actor, &req)
	if err != nil {
		h.writeError(w, "Hold", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Hold", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) ListPending(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	bookings, err := h.service.ListPending(r.Context(), actor)
	if err != nil {
		h.writeError(w, "ListPending", err)
		return
	}
	h.writeSuccess(w, "ListPending", bookings)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	booking, err := h.service.Cancel(r.Context(), actor, ps.ByName("bookingId"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	h.writeSuccess(w, "Cancel", booking)
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req model.ConfirmRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	results, err := h.service.Confirm(r.Context(), actor, req.BookingIDs)
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}
	h.writeSuccess(w, "Confirm", results)
}

// PaymentWebhook is the synchronous twin of the payments consumer: the
// payment provider posts the same payment.succeeded payload.
func (h *BookingHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payment model.PaymentSucceeded
	if err := httputil.DecodeJSON(r, &payment); err != nil {
		h.writeError(w, "PaymentWebhook", err)
		return
	}
	if payment.UserID == "" {
		h.writeError(w, "PaymentWebhook", apperrors.InvalidInput("user_id is required"))
		return
	}

	actor := model.Actor{UserID: payment.UserID, Role: model.RoleUser}
	results, err := h.service.Confirm(r.Context(), actor, payment.BookingIDs)
	if err != nil {
		h.writeError(w, "PaymentWebhook", err)
		return
	}

	h.log.Info("Payment webhook applied",
		"payment_id", payment.PaymentID,
		"user_id", payment.UserID,
		"bookings", len(results),
	)
	h.writeSuccess(w, "PaymentWebhook", results)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings/add", middleware.RequireAuth(h.log, h.Hold))
	router.GET("/api/bookings", middleware.RequireAuth(h.log, h.ListPending))
	router.DELETE("/api/bookings/remove/:bookingId", middleware.RequireAuth(h.log, h.Cancel))
	router.POST("/api/bookings/confirm", middleware.RequireAuth(h.log, h.Confirm))

	if h.webhookSecret != "" {
		router.POST("/api/payments/webhook", middleware.PaymentSignature(h.webhookSecret, h.log, h.PaymentWebhook))
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}
