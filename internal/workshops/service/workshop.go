package service

import (
	"context"
	"errors"
	"sync"

	workshopserrors "crafthub/internal/workshops/errors"
	"crafthub/internal/workshops/repository"
	"crafthub/internal/workshops/validator"
	"crafthub/pkg/config"
	apperrors "crafthub/pkg/errors"
	"crafthub/pkg/model"
	"crafthub/pkg/sanitizer"
)

type WorkshopService interface {
	Create(ctx context.Context, actor model.Actor, w *model.Workshop) error
	GetByID(ctx context.Context, id string) (*model.Workshop, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Workshop, int64, error)
	GetByArtisan(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Workshop, int64, error)
	GetOwned(ctx context.Context, actor model.Actor, id string) (*model.Workshop, error)
	Update(ctx context.Context, actor model.Actor, id string, updates *model.WorkshopUpdate) (*model.Workshop, error)
	Delete(ctx context.Context, actor model.Actor, id string) error

	// UpdatePlaces subtracts places seats from the workshop, or adds them
	// back when negative.
	UpdatePlaces(ctx context.Context, actor model.Actor, id string, adj *model.PlacesAdjustment) (*model.Workshop, error)
}

type workshopService struct {
	repo      repository.WorkshopRepository
	comments  repository.CommentRepository
	validator *validator.WorkshopValidator
	cfg       *config.Config
}

func NewWorkshopService(
	repo repository.WorkshopRepository,
	comments repository.CommentRepository,
	validator *validator.WorkshopValidator,
	cfg *config.Config,
) WorkshopService {
	return &workshopService{
		repo:      repo,
		comments:  comments,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *workshopService) Create(ctx context.Context, actor model.Actor, w *model.Workshop) error {
	w.ID = ""
	w.ArtisanID = actor.UserID
	sanitize(w)

	if err := s.validator.Validate(w); err != nil {
		s.cfg.Log.Warn("Workshop validation failed",
			"artisan_id", actor.UserID,
			"title", w.Title,
			"error", err,
		)
		return validationError("Workshop validation failed", err)
	}

	if err := s.repo.Create(ctx, w); err != nil {
		s.cfg.Log.Error("Failed to create workshop",
			"artisan_id", actor.UserID,
			"error", err,
		)
		return apperrors.Internal("Failed to create workshop", err)
	}

	s.cfg.Log.Info("Workshop created successfully",
		"id", w.ID,
		"artisan_id", w.ArtisanID,
		"places", w.Places,
	)
	return nil
}

func (s *workshopService) GetByID(ctx context.Context, id string) (*model.Workshop, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Workshop ID cannot be empty")
	}

	w, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve workshop")
	}
	return w, nil
}

func (s *workshopService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Workshop, int64, error) {
	return s.list(ctx, limit, offset,
		func(ctx context.Context) (int64, error) { return s.repo.Count(ctx) },
		func(ctx context.Context, limit int, offset int64) ([]*model.Workshop, error) {
			return s.repo.FindAll(ctx, limit, offset)
		},
	)
}

func (s *workshopService) GetByArtisan(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Workshop, int64, error) {
	return s.list(ctx, limit, offset,
		func(ctx context.Context) (int64, error) { return s.repo.CountByArtisan(ctx, actor.UserID) },
		func(ctx context.Context, limit int, offset int64) ([]*model.Workshop, error) {
			return s.repo.FindByArtisan(ctx, actor.UserID, limit, offset)
		},
	)
}

// list runs the count and the page query concurrently.
func (s *workshopService) list(
	ctx context.Context,
	limit int,
	offset int64,
	count func(ctx context.Context) (int64, error),
	find func(ctx context.Context, limit int, offset int64) ([]*model.Workshop, error),
) ([]*model.Workshop, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var total int64
	var workshops []*model.Workshop
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		total, errCount = count(ctx)
	}()
	go func() {
		defer wg.Done()
		workshops, errFind = find(ctx, limit, offset)
	}()
	wg.Wait()

	if errCount != nil {
		s.cfg.Log.Error("Failed to count workshops", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count workshops", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Error("Failed to list workshops",
			"limit", limit,
			"offset", offset,
			"error", errFind,
		)
		return nil, 0, apperrors.Internal("Failed to retrieve workshops", errFind)
	}
	if workshops == nil {
		workshops = []*model.Workshop{}
	}

	return workshops, total, nil
}

func (s *workshopService) GetOwned(ctx context.Context, actor model.Actor, id string) (*model.Workshop, error) {
	w, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(w.ArtisanID) {
		return nil, apperrors.Forbidden("Workshop belongs to another artisan")
	}
	return w, nil
}

func (s *workshopService) Update(ctx context.Context, actor model.Actor, id string, updates *model.WorkshopUpdate) (*model.Workshop, error) {
	existing, err := s.GetOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, validationError("Workshop update validation failed", err)
	}

	merged := mergeWorkshopUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		return nil, validationError("Workshop validation failed", err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		return nil, s.mapError(err, id, "Failed to update workshop")
	}

	s.cfg.Log.Info("Workshop updated successfully",
		"id", id,
		"actor", actor.UserID,
	)

	// places moves with concurrent holds, so the stored copy is authoritative.
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.cfg.Log.Warn("Failed to reload updated workshop", "id", id, "error", err)
		return merged, nil
	}
	return updated, nil
}

func (s *workshopService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if _, err := s.GetOwned(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, id, "Failed to delete workshop")
	}

	removed, err := s.comments.DeleteByWorkshop(ctx, id)
	if err != nil {
		s.cfg.Log.Warn("Workshop deleted but its comments were not",
			"id", id,
			"error", err,
		)
	}

	s.cfg.Log.Info("Workshop deleted successfully",
		"id", id,
		"actor", actor.UserID,
		"comments_removed", removed,
	)
	return nil
}

func (s *workshopService) UpdatePlaces(ctx context.Context, actor model.Actor, id string, adj *model.PlacesAdjustment) (*model.Workshop, error) {
	if adj == nil {
		adj = &model.PlacesAdjustment{}
	}
	if err := s.validator.ValidatePlaces(adj); err != nil {
		return nil, validationError("Places adjustment validation failed", err)
	}
	places := *adj.Places

	if _, err := s.GetOwned(ctx, actor, id); err != nil {
		return nil, err
	}

	w, err := s.repo.AdjustPlaces(ctx, id, -places)
	if err != nil {
		if errors.Is(err, workshopserrors.ErrNegativePlaces) {
			return nil, apperrors.Conflict("Workshop places cannot go below zero").WithDetails(map[string]any{
				"requested": places,
			})
		}
		return nil, s.mapError(err, id, "Failed to update workshop places")
	}

	s.cfg.Log.Info("Workshop places adjusted",
		"id", id,
		"actor", actor.UserID,
		"delta", -places,
		"places", w.Places,
	)
	return w, nil
}

func (s *workshopService) mapError(err error, id string, message string) error {
	switch {
	case errors.Is(err, workshopserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Workshop", id)
	case errors.Is(err, workshopserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid workshop ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func sanitize(w *model.Workshop) {
	w.Title = sanitizer.NormalizeTitle(w.Title)
	w.Description = sanitizer.NormalizeText(w.Description)
	w.Category = sanitizer.NormalizeCategory(w.Category)
	w.Location = sanitizer.NormalizeLocation(w.Location)
}

func mergeWorkshopUpdates(existing *model.Workshop, updates *model.WorkshopUpdate) *model.Workshop {
	merged := *existing
	if updates.Title != nil {
		merged.Title = *updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.Category != nil {
		merged.Category = *updates.Category
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Date != nil {
		merged.Date = *updates.Date
	}
	if updates.BookingTime != nil {
		merged.BookingTime = *updates.BookingTime
	}
	if updates.Duration != nil {
		merged.Duration = *updates.Duration
	}
	sanitize(&merged)
	return &merged
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, map[string]any{"fields": verrs})
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
