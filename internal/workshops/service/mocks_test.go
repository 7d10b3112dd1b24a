package service

import (
	"context"
	"io"

	workshopserrors "crafthub/internal/workshops/errors"
	"crafthub/internal/workshops/validator"
	"crafthub/pkg/config"
	mongotx "crafthub/pkg/db/mongo"
	"crafthub/pkg/logger"
	"crafthub/pkg/model"
)

type mockWorkshopRepository struct {
	createFunc         func(ctx context.Context, w *model.Workshop) error
	findByIDFunc       func(ctx context.Context, id string) (*model.Workshop, error)
	findAllFunc        func(ctx context.Context, limit int, offset int64) ([]*model.Workshop, error)
	findByArtisanFunc  func(ctx context.Context, artisanID string, limit int, offset int64) ([]*model.Workshop, error)
	updateFunc         func(ctx context.Context, id string, w *model.Workshop) error
	deleteFunc         func(ctx context.Context, id string) error
	countFunc          func(ctx context.Context) (int64, error)
	countByArtisanFunc func(ctx context.Context, artisanID string) (int64, error)
	adjustPlacesFunc   func(ctx context.Context, id string, delta int) (*model.Workshop, error)
}

func (m *mockWorkshopRepository) Create(ctx context.Context, w *model.Workshop) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, w)
	}
	w.ID = "507f1f77bcf86cd799439011"
	return nil
}

func (m *mockWorkshopRepository) FindByID(ctx context.Context, id string) (*model.Workshop, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, workshopserrors.ErrNotFound
}

func (m *mockWorkshopRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Workshop, error) {
	return nil, nil
}

func (m *mockWorkshopRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Workshop, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockWorkshopRepository) FindByArtisan(ctx context.Context, artisanID string, limit int, offset int64) ([]*model.Workshop, error) {
	if m.findByArtisanFunc != nil {
		return m.findByArtisanFunc(ctx, artisanID, limit, offset)
	}
	return nil, nil
}

func (m *mockWorkshopRepository) Update(ctx context.Context, id string, w *model.Workshop) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, w)
	}
	return nil
}

func (m *mockWorkshopRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockWorkshopRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockWorkshopRepository) CountByArtisan(ctx context.Context, artisanID string) (int64, error) {
	if m.countByArtisanFunc != nil {
		return m.countByArtisanFunc(ctx, artisanID)
	}
	return 0, nil
}

func (m *mockWorkshopRepository) ReserveSeats(ctx context.Context, id string, n int) error {
	return nil
}

func (m *mockWorkshopRepository) ReleaseSeats(ctx context.Context, id string, n int) error {
	return nil
}

func (m *mockWorkshopRepository) AdjustPlaces(ctx context.Context, id string, delta int) (*model.Workshop, error) {
	if m.adjustPlacesFunc != nil {
		return m.adjustPlacesFunc(ctx, id, delta)
	}
	return nil, nil
}

func (m *mockWorkshopRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

type mockCommentRepository struct {
	createFunc           func(ctx context.Context, c *model.Comment) error
	findByIDFunc         func(ctx context.Context, id string) (*model.Comment, error)
	findByWorkshopFunc   func(ctx context.Context, workshopID string, limit int, offset int64) ([]*model.Comment, error)
	countByWorkshopFunc  func(ctx context.Context, workshopID string) (int64, error)
	updateTextFunc       func(ctx context.Context, id string, text string) (*model.Comment, error)
	deleteFunc           func(ctx context.Context, id string) error
	deleteByWorkshopFunc func(ctx context.Context, workshopID string) (int64, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, c *model.Comment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	c.ID = "c1"
	return nil
}

func (m *mockCommentRepository) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, workshopserrors.ErrCommentNotFound
}

func (m *mockCommentRepository) FindByWorkshop(ctx context.Context, workshopID string, limit int, offset int64) ([]*model.Comment, error) {
	if m.findByWorkshopFunc != nil {
		return m.findByWorkshopFunc(ctx, workshopID, limit, offset)
	}
	return nil, nil
}

func (m *mockCommentRepository) CountByWorkshop(ctx context.Context, workshopID string) (int64, error) {
	if m.countByWorkshopFunc != nil {
		return m.countByWorkshopFunc(ctx, workshopID)
	}
	return 0, nil
}

func (m *mockCommentRepository) UpdateText(ctx context.Context, id string, text string) (*model.Comment, error) {
	if m.updateTextFunc != nil {
		return m.updateTextFunc(ctx, id, text)
	}
	return &model.Comment{ID: id, Text: text}, nil
}

func (m *mockCommentRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockCommentRepository) DeleteByWorkshop(ctx context.Context, workshopID string) (int64, error) {
	if m.deleteByWorkshopFunc != nil {
		return m.deleteByWorkshopFunc(ctx, workshopID)
	}
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}

func newServices(repo *mockWorkshopRepository, comments *mockCommentRepository) (WorkshopService, CommentService) {
	v := validator.NewWorkshopValidator()
	cfg := testConfig()
	return NewWorkshopService(repo, comments, v, cfg), NewCommentService(repo, comments, v, cfg)
}

func ownedBy(artisanID string) func(ctx context.Context, id string) (*model.Workshop, error) {
	return func(ctx context.Context, id string) (*model.Workshop, error) {
		return &model.Workshop{ID: id, ArtisanID: artisanID, Title: "Weaving", Places: 5}, nil
	}
}
