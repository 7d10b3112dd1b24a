package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "crafthub/internal/bookings/errors"
	"crafthub/internal/bookings/events"
	"crafthub/internal/bookings/repository"
	"crafthub/internal/bookings/validator"
	workshopserrors "crafthub/internal/workshops/errors"
	"crafthub/pkg/config"
	apperrors "crafthub/pkg/errors"
	"crafthub/pkg/model"
)

const publishTimeout = 5 * time.Second

type BookingService interface {
	Hold(ctx context.Context, actor model.Actor, req *model.HoldRequest) (*model.Booking, error)
	ListPending(ctx context.Context, actor model.Actor) ([]*model.Booking, error)
	Cancel(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	Confirm(ctx context.Context, actor model.Actor, bookingIDs []string) ([]model.ConfirmResult, error)

	// ExpireDue releases every hold that ended at or before now, batch
	// bookings at a time, and reports how many it expired.
	ExpireDue(ctx context.Context, now time.Time, batch int) (int, error)
}

// SeatCounter is the part of the workshop store that holds consume.
type SeatCounter interface {
	ReserveSeats(ctx context.Context, id string, n int) error
	ReleaseSeats(ctx context.Context, id string, n int) error
	FindByIDs(ctx context.Context, ids []string) ([]*model.Workshop, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	seats     SeatCounter
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	seats SeatCounter,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		seats:     seats,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}

func (s *bookingService) Hold(ctx context.Context, actor model.Actor, req *model.HoldRequest) (*model.Booking, error) {
	if actor.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if err := s.validator.ValidateHold(req); err != nil {
		return nil, validationError("Booking validation failed", err)
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	now := s.now()
	booking := &model.Booking{
		UserID:     actor.UserID,
		WorkshopID: req.WorkshopID,
		Quantity:   quantity,
		Status:     model.StatusPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.BookingHoldDuration),
	}
	if err := s.validator.Validate(booking); err != nil {
		return nil, validationError("Booking validation failed", err)
	}

	// Aborting the transaction gives the reserved seats back if the insert fails.
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.seats.ReserveSeats(txCtx, booking.WorkshopID, booking.Quantity); err != nil {
			return err
		}
		return s.repo.Create(txCtx, booking)
	})
	if err != nil {
		return nil, s.mapHoldError(err, booking)
	}

	s.cfg.Log.Info("Seats held",
		"booking_id", booking.ID,
		"user_id", booking.UserID,
		"workshop_id", booking.WorkshopID,
		"quantity", booking.Quantity,
		"expires_at", booking.ExpiresAt,
	)
	s.publish(ctx, model.EventBookingHeld, booking)

	return booking, nil
}

func (s *bookingService) ListPending(ctx context.Context, actor model.Actor) ([]*model.Booking, error) {
	bookings, err := s.repo.FindPendingByUser(ctx, actor.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to list pending bookings",
			"user_id", actor.UserID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	if len(bookings) == 0 {
		return []*model.Booking{}, nil
	}

	seen := make(map[string]struct{}, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.WorkshopID]; !ok {
			seen[b.WorkshopID] = struct{}{}
			ids = append(ids, b.WorkshopID)
		}
	}

	workshops, err := s.seats.FindByIDs(ctx, ids)
	if err != nil {
		// The holds themselves are still worth returning.
		s.cfg.Log.Warn("Failed to load workshops for pending bookings",
			"user_id", actor.UserID,
			"error", err,
		)
		return bookings, nil
	}

	byID := make(map[string]*model.Workshop, len(workshops))
	for _, w := range workshops {
		byID[w.ID] = w
	}
	for _, b := range bookings {
		if w, ok := byID[b.WorkshopID]; ok {
			b.Workshop = w.Summary()
		}
	}

	return bookings, nil
}

func (s *bookingService) Cancel(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve booking")
	}

	if !actor.CanManage(booking.UserID) {
		s.cfg.Log.Warn("Refused to cancel a booking owned by another user",
			"booking_id", id,
			"actor", actor.UserID,
		)
		return nil, apperrors.Forbidden("Booking belongs to another user")
	}

	if booking.Status.IsTerminal() {
		return nil, notPending(booking)
	}

	won, err := s.release(ctx, booking, model.StatusCancelled)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to cancel booking")
	}
	if !won {
		// Someone else settled it between the read and the transition.
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, s.mapError(err, id, "Failed to retrieve booking")
		}
		return nil, notPending(current)
	}

	return booking, nil
}

func (s *bookingService) Confirm(ctx context.Context, actor model.Actor, bookingIDs []string) ([]model.ConfirmResult, error) {
	if err := s.validator.ValidateConfirm(&model.ConfirmRequest{BookingIDs: bookingIDs}); err != nil {
		return nil, validationError("Confirmation validation failed", err)
	}

	bookings, err := s.repo.FindByIDs(ctx, actor.UserID, bookingIDs)
	if err != nil {
		return nil, s.mapError(err, "", "Failed to retrieve bookings")
	}

	byID := make(map[string]*model.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}

	results := make([]model.ConfirmResult, 0, len(bookingIDs))
	for _, id := range bookingIDs {
		booking, ok := byID[id]
		if !ok {
			results = append(results, model.ConfirmResult{BookingID: id, Outcome: model.OutcomeNotFound})
			continue
		}

		result, err := s.confirmOne(ctx, booking)
		if err != nil {
			s.cfg.Log.Error("Failed to confirm booking",
				"booking_id", id,
				"user_id", actor.UserID,
				"error", err,
			)
			return nil, apperrors.Internal("Failed to confirm bookings", err)
		}
		results = append(results, result)
	}

	return results, nil
}

// confirmOne settles a single hold: still running means confirmed, past its
// deadline means expired with the seats returned.
func (s *bookingService) confirmOne(ctx context.Context, booking *model.Booking) (model.ConfirmResult, error) {
	result := model.ConfirmResult{BookingID: booking.ID}

	if booking.Status.IsTerminal() {
		result.Outcome = model.OutcomeSkipped
		result.Status = booking.Status
		return result, nil
	}

	now := s.now()
	if !now.After(booking.ExpiresAt) {
		won, err := s.repo.TransitionFromPending(ctx, booking.ID, model.StatusConfirmed, now)
		if err != nil {
			return result, err
		}
		if won {
			booking.Status = model.StatusConfirmed
			booking.SettledAt = &now
			s.cfg.Log.Info("Booking confirmed",
				"booking_id", booking.ID,
				"user_id", booking.UserID,
				"workshop_id", booking.WorkshopID,
			)
			s.publish(ctx, model.EventBookingConfirmed, booking)
			result.Outcome = model.OutcomeConfirmed
			result.Status = model.StatusConfirmed
			return result, nil
		}

		current, err := s.repo.FindByID(ctx, booking.ID)
		if err != nil {
			return result, err
		}
		if current.Status.IsTerminal() {
			result.Outcome = model.OutcomeSkipped
			result.Status = current.Status
			return result, nil
		}
		// Still pending but the confirm guard refused it: the hold ran out
		// between the read and the write.
		booking = current
	}

	won, err := s.release(ctx, booking, model.StatusExpired)
	if err != nil {
		return result, err
	}
	if !won {
		current, err := s.repo.FindByID(ctx, booking.ID)
		if err != nil {
			return result, err
		}
		result.Outcome = model.OutcomeSkipped
		result.Status = current.Status
		return result, nil
	}

	result.Outcome = model.OutcomeExpired
	result.Status = model.StatusExpired
	return result, nil
}

func (s *bookingService) ExpireDue(ctx context.Context, now time.Time, batch int) (int, error) {
	if batch <= 0 {
		batch = s.cfg.SweepBatchSize
	}

	expired := 0
	for {
		due, err := s.repo.FindDue(ctx, now, batch)
		if err != nil {
			return expired, apperrors.Internal("Failed to find expired bookings", err)
		}
		if len(due) == 0 {
			return expired, nil
		}

		progressed := 0
		for _, booking := range due {
			if err := ctx.Err(); err != nil {
				return expired, err
			}
			won, err := s.release(ctx, booking, model.StatusExpired)
			if err != nil {
				s.cfg.Log.Error("Failed to expire booking",
					"booking_id", booking.ID,
					"workshop_id", booking.WorkshopID,
					"error", err,
				)
				continue
			}
			if won {
				expired++
				progressed++
			}
		}

		// A batch where nothing moved would be returned again unchanged.
		if len(due) < batch || progressed == 0 {
			return expired, nil
		}
	}
}

// release moves a pending booking to target and returns its seats to the
// workshop in the same transaction. Only the caller whose transition wins
// refunds, so racing sweeps, cancellations and late confirmations restore
// the seats exactly once. It reports whether this call won.
func (s *bookingService) release(ctx context.Context, booking *model.Booking, target model.BookingStatus) (bool, error) {
	if !target.ReleasesSeats() {
		return false, fmt.Errorf("status %s does not release seats", target)
	}
	at := s.now()

	var won bool
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		won = false
		ok, err := s.repo.TransitionFromPending(txCtx, booking.ID, target, at)
		if err != nil || !ok {
			return err
		}

		if err := s.seats.ReleaseSeats(txCtx, booking.WorkshopID, booking.Quantity); err != nil {
			if !errors.Is(err, workshopserrors.ErrNotFound) {
				return err
			}
			s.cfg.Log.Warn("Workshop gone, nothing to refund",
				"booking_id", booking.ID,
				"workshop_id", booking.WorkshopID,
			)
		}
		won = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	booking.Status = target
	booking.SettledAt = &at

	eventType := model.EventBookingExpired
	if target == model.StatusCancelled {
		eventType = model.EventBookingCancelled
	}
	s.cfg.Log.Info("Seats released",
		"booking_id", booking.ID,
		"workshop_id", booking.WorkshopID,
		"quantity", booking.Quantity,
		"status", target,
	)
	s.publish(ctx, eventType, booking)

	return true, nil
}

// publish runs after the state change is committed, so a broker failure is
// only logged.
func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, model.NewBookingEvent(eventType, booking, s.now())); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (s *bookingService) mapHoldError(err error, booking *model.Booking) error {
	var capacityErr *workshopserrors.CapacityError
	switch {
	case errors.As(err, &capacityErr):
		return apperrors.InsufficientCapacity(capacityErr.Requested, capacityErr.Available)
	case errors.Is(err, workshopserrors.ErrInsufficientCapacity):
		return apperrors.InsufficientCapacity(booking.Quantity, -1)
	case errors.Is(err, workshopserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Workshop", booking.WorkshopID)
	case errors.Is(err, workshopserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid workshop ID format")
	default:
		s.cfg.Log.Error("Failed to hold seats",
			"user_id", booking.UserID,
			"workshop_id", booking.WorkshopID,
			"quantity", booking.Quantity,
			"error", err,
		)
		return apperrors.Internal("Failed to create booking", err)
	}
}

func (s *bookingService) mapError(err error, id string, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func notPending(b *model.Booking) error {
	appErr := apperrors.Conflict("Only pending bookings can be cancelled").WithDetails(map[string]any{
		"status": b.Status,
	})
	appErr.Err = bookingserrors.ErrNotPending
	return appErr
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, map[string]any{"fields": verrs})
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
