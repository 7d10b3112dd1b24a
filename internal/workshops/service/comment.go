package service

import (
	"context"
	"errors"

	workshopserrors "crafthub/internal/workshops/errors"
	"crafthub/internal/workshops/repository"
	"crafthub/internal/workshops/validator"
	"crafthub/pkg/config"
	apperrors "crafthub/pkg/errors"
	"crafthub/pkg/model"
	"crafthub/pkg/sanitizer"
)

type CommentService interface {
	Add(ctx context.Context, actor model.Actor, workshopID string, in *model.CommentInput) (*model.Comment, error)
	List(ctx context.Context, workshopID string, limit int, offset int64) ([]*model.Comment, int64, error)
	Update(ctx context.Context, actor model.Actor, workshopID, commentID string, in *model.CommentInput) (*model.Comment, error)
	Delete(ctx context.Context, actor model.Actor, workshopID, commentID string) error
}

type commentService struct {
	workshops repository.WorkshopRepository
	repo      repository.CommentRepository
	validator *validator.WorkshopValidator
	cfg       *config.Config
}

func NewCommentService(
	workshops repository.WorkshopRepository,
	repo repository.CommentRepository,
	validator *validator.WorkshopValidator,
	cfg *config.Config,
) CommentService {
	return &commentService{
		workshops: workshops,
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *commentService) Add(ctx context.Context, actor model.Actor, workshopID string, in *model.CommentInput) (*model.Comment, error) {
	if err := s.validator.ValidateComment(in); err != nil {
		return nil, validationError("Comment validation failed", err)
	}

	if _, err := s.workshops.FindByID(ctx, workshopID); err != nil {
		return nil, s.mapError(err, workshopID, "Failed to load workshop")
	}

	c := &model.Comment{
		WorkshopID: workshopID,
		UserID:     actor.UserID,
		Text:       sanitizer.NormalizeText(in.Text),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.cfg.Log.Error("Failed to create comment",
			"workshop_id", workshopID,
			"user_id", actor.UserID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to add comment", err)
	}

	s.cfg.Log.Info("Comment added",
		"id", c.ID,
		"workshop_id", workshopID,
		"user_id", actor.UserID,
	)
	return c, nil
}

func (s *commentService) List(ctx context.Context, workshopID string, limit int, offset int64) ([]*model.Comment, int64, error) {
	if _, err := s.workshops.FindByID(ctx, workshopID); err != nil {
		return nil, 0, s.mapError(err, workshopID, "Failed to load workshop")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	total, err := s.repo.CountByWorkshop(ctx, workshopID)
	if err != nil {
		s.cfg.Log.Error("Failed to count comments", "workshop_id", workshopID, "error", err)
		return nil, 0, apperrors.Internal("Failed to count comments", err)
	}

	comments, err := s.repo.FindByWorkshop(ctx, workshopID, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list comments", "workshop_id", workshopID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve comments", err)
	}
	if comments == nil {
		comments = []*model.Comment{}
	}
	return comments, total, nil
}

func (s *commentService) Update(ctx context.Context, actor model.Actor, workshopID, commentID string, in *model.CommentInput) (*model.Comment, error) {
	if err := s.validator.ValidateComment(in); err != nil {
		return nil, validationError("Comment validation failed", err)
	}

	if _, err := s.authored(ctx, actor, workshopID, commentID, false); err != nil {
		return nil, err
	}

	c, err := s.repo.UpdateText(ctx, commentID, sanitizer.NormalizeText(in.Text))
	if err != nil {
		return nil, s.mapError(err, commentID, "Failed to update comment")
	}

	s.cfg.Log.Info("Comment updated", "id", commentID, "user_id", actor.UserID)
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, actor model.Actor, workshopID, commentID string) error {
	if _, err := s.authored(ctx, actor, workshopID, commentID, true); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, commentID); err != nil {
		return s.mapError(err, commentID, "Failed to delete comment")
	}

	s.cfg.Log.Info("Comment deleted", "id", commentID, "user_id", actor.UserID)
	return nil
}

// authored loads a comment of the given workshop and checks the actor wrote
// it. Admins may delete but never edit someone else's words.
func (s *commentService) authored(ctx context.Context, actor model.Actor, workshopID, commentID string, adminAllowed bool) (*model.Comment, error) {
	c, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return nil, s.mapError(err, commentID, "Failed to load comment")
	}
	if c.WorkshopID != workshopID {
		return nil, apperrors.NotFoundWithID("Comment", commentID)
	}
	if c.UserID != actor.UserID && !(adminAllowed && actor.IsAdmin()) {
		return nil, apperrors.Forbidden("Only the author can change this comment")
	}
	return c, nil
}

func (s *commentService) mapError(err error, id string, message string) error {
	switch {
	case errors.Is(err, workshopserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Workshop", id)
	case errors.Is(err, workshopserrors.ErrCommentNotFound):
		return apperrors.NotFoundWithID("Comment", id)
	case errors.Is(err, workshopserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}
