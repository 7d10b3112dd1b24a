package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	workshopserrors "crafthub/internal/workshops/errors"
	apperrors "crafthub/pkg/errors"
	"crafthub/pkg/model"
)

const shopID = "507f1f77bcf86cd799439011"

func intPtr(v int) *int { return &v }

var (
	artisan = model.Actor{UserID: "artisan-1", Role: model.RoleArtisan}
	other   = model.Actor{UserID: "artisan-2", Role: model.RoleArtisan}
	admin   = model.Actor{UserID: "root", Role: model.RoleAdmin}
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.StatusCode()
}

func TestCreate_StampsOwner(t *testing.T) {
	var stored *model.Workshop
	repo := &mockWorkshopRepository{
		createFunc: func(ctx context.Context, w *model.Workshop) error {
			stored = w
			w.ID = shopID
			return nil
		},
	}
	svc, _ := newServices(repo, &mockCommentRepository{})

	w := &model.Workshop{ID: "spoofed", ArtisanID: "someone-else", Title: "  Glass blowing  ", Places: 4}
	if err := svc.Create(context.Background(), artisan, w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored == nil {
		t.Fatal("repository Create was not called")
	}
	if stored.ArtisanID != artisan.UserID {
		t.Errorf("expected artisan %q, got %q", artisan.UserID, stored.ArtisanID)
	}
	if stored.Title != "Glass blowing" {
		t.Errorf("expected trimmed title, got %q", stored.Title)
	}
	if w.ID != shopID {
		t.Errorf("expected repository id, got %q", w.ID)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	called := false
	repo := &mockWorkshopRepository{
		createFunc: func(ctx context.Context, w *model.Workshop) error {
			called = true
			return nil
		},
	}
	svc, _ := newServices(repo, &mockCommentRepository{})

	err := svc.Create(context.Background(), artisan, &model.Workshop{Title: "Clay", Places: -2})
	if got := statusOf(t, err); got != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", got)
	}
	if called {
		t.Error("repository must not be called for invalid input")
	}
}

func TestGetByID(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		repoErr    error
		wantStatus int
	}{
		{name: "found", id: shopID},
		{name: "empty id", id: "", wantStatus: http.StatusBadRequest},
		{name: "not found", id: shopID, repoErr: workshopserrors.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "invalid id", id: "nope", repoErr: workshopserrors.ErrInvalidID, wantStatus: http.StatusBadRequest},
		{name: "database down", id: shopID, repoErr: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockWorkshopRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Workshop, error) {
					if tt.repoErr != nil {
						return nil, tt.repoErr
					}
					return &model.Workshop{ID: id}, nil
				},
			}
			svc, _ := newServices(repo, &mockCommentRepository{})

			w, err := svc.GetByID(context.Background(), tt.id)
			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if w.ID != tt.id {
					t.Errorf("expected id %q, got %q", tt.id, w.ID)
				}
				return
			}
			if got := statusOf(t, err); got != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, got)
			}
		})
	}
}

func TestGetAll_NormalizesAndCounts(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	repo := &mockWorkshopRepository{
		countFunc: func(ctx context.Context) (int64, error) { return 42, nil },
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Workshop, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}
	svc, _ := newServices(repo, &mockCommentRepository{})

	workshops, total, err := svc.GetAll(context.Background(), -1, -10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 {
		t.Errorf("expected total 42, got %d", total)
	}
	if workshops == nil || len(workshops) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", workshops)
	}
	if gotLimit <= 0 {
		t.Errorf("expected normalized limit, got %d", gotLimit)
	}
	if gotOffset != 0 {
		t.Errorf("expected offset 0, got %d", gotOffset)
	}
}

func TestGetAll_CountFailure(t *testing.T) {
	repo := &mockWorkshopRepository{
		countFunc: func(ctx context.Context) (int64, error) { return 0, errors.New("timeout") },
	}
	svc, _ := newServices(repo, &mockCommentRepository{})

	_, _, err := svc.GetAll(context.Background(), 10, 0)
	if got := statusOf(t, err); got != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got)
	}
}

func TestGetByArtisan_ScopesToCaller(t *testing.T) {
	var gotArtisan string
	repo := &mockWorkshopRepository{
		findByArtisanFunc: func(ctx context.Context, artisanID string, limit int, offset int64) ([]*model.Workshop, error) {
			gotArtisan = artisanID
			return []*model.Workshop{{ID: shopID, ArtisanID: artisanID}}, nil
		},
		countByArtisanFunc: func(ctx context.Context, artisanID string) (int64, error) { return 1, nil },
	}
	svc, _ := newServices(repo, &mockCommentRepository{})

	workshops, total, err := svc.GetByArtisan(context.Background(), artisan, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotArtisan != artisan.UserID || total != 1 || len(workshops) != 1 {
		t.Errorf("unexpected result: artisan=%q total=%d len=%d", gotArtisan, total, len(workshops))
	}
}

func TestUpdate_Ownership(t *testing.T) {
	tests := []struct {
		name       string
		actor      model.Actor
		wantStatus int
	}{
		{name: "owner", actor: artisan},
		{name: "admin", actor: admin},
		{name: "other artisan", actor: other, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var updated *model.Workshop
			owned := ownedBy(artisan.UserID)
			repo := &mockWorkshopRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Workshop, error) {
					if updated != nil {
						stored := *updated
						return &stored, nil
					}
					return owned(ctx, id)
				},
				updateFunc: func(ctx context.Context, id string, w *model.Workshop) error {
					updated = w
					return nil
				},
			}
			svc, _ := newServices(repo, &mockCommentRepository{})

			title := "Advanced weaving"
			w, err := svc.Update(context.Background(), tt.actor, shopID, &model.WorkshopUpdate{Title: &title})
			if tt.wantStatus != 0 {
				if got := statusOf(t, err); got != tt.wantStatus {
					t.Errorf("expected %d, got %d", tt.wantStatus, got)
				}
				if updated != nil {
					t.Error("repository Update must not be called")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w.Title != title {
				t.Errorf("expected title %q, got %q", title, w.Title)
			}
			if w.Places != 5 {
				t.Errorf("update must not touch places, got %d", w.Places)
			}
		})
	}
}

func TestDelete_RemovesComments(t *testing.T) {
	var removedFor string
	repo := &mockWorkshopRepository{findByIDFunc: ownedBy(artisan.UserID)}
	comments := &mockCommentRepository{
		deleteByWorkshopFunc: func(ctx context.Context, workshopID string) (int64, error) {
			removedFor = workshopID
			return 3, nil
		},
	}
	svc, _ := newServices(repo, comments)

	if err := svc.Delete(context.Background(), artisan, shopID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removedFor != shopID {
		t.Errorf("expected comments removed for %q, got %q", shopID, removedFor)
	}
}

func TestDelete_CommentFailureIsNotFatal(t *testing.T) {
	repo := &mockWorkshopRepository{findByIDFunc: ownedBy(artisan.UserID)}
	comments := &mockCommentRepository{
		deleteByWorkshopFunc: func(ctx context.Context, workshopID string) (int64, error) {
			return 0, errors.New("write conflict")
		},
	}
	svc, _ := newServices(repo, comments)

	if err := svc.Delete(context.Background(), artisan, shopID); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestUpdate_ReturnsStoredCopy(t *testing.T) {
	stamped := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	reads := 0
	repo := &mockWorkshopRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Workshop, error) {
			reads++
			if reads == 1 {
				return &model.Workshop{ID: id, ArtisanID: artisan.UserID, Title: "Weaving", Places: 5}, nil
			}
			// A hold took three seats while the update was in flight.
			return &model.Workshop{ID: id, ArtisanID: artisan.UserID, Title: "Advanced weaving", Places: 2, UpdatedAt: stamped}, nil
		},
		updateFunc: func(ctx context.Context, id string, w *model.Workshop) error {
			return nil
		},
	}
	svc, _ := newServices(repo, &mockCommentRepository{})

	title := "Advanced weaving"
	w, err := svc.Update(context.Background(), artisan, shopID, &model.WorkshopUpdate{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.UpdatedAt.Equal(stamped) {
		t.Errorf("expected updated_at %v, got %v", stamped, w.UpdatedAt)
	}
	if w.Places != 2 {
		t.Errorf("expected stored places 2, got %d", w.Places)
	}
}

func TestUpdate_ReloadFailureKeepsMerged(t *testing.T) {
	reads := 0
	repo := &mockWorkshopRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Workshop, error) {
			reads++
			if reads == 1 {
				return &model.Workshop{ID: id, ArtisanID: artisan.UserID, Title: "Weaving", Places: 5}, nil
			}
			return nil, errors.New("connection reset")
		},
		updateFunc: func(ctx context.Context, id string, w *model.Workshop) error {
			return nil
		},
	}
	svc, _ := newServices(repo, &mockCommentRepository{})

	title := "Advanced weaving"
	w, err := svc.Update(context.Background(), artisan, shopID, &model.WorkshopUpdate{Title: &title})
	if err != nil {
		t.Fatalf("a committed update must not fail on reload, got %v", err)
	}
	if w.Title != title {
		t.Errorf("expected title %q, got %q", title, w.Title)
	}
}

func TestUpdatePlaces(t *testing.T) {
	tests := []struct {
		name       string
		actor      model.Actor
		places     *int
		repoErr    error
		wantDelta  int
		wantStatus int
	}{
		{name: "subtract", actor: artisan, places: intPtr(2), wantDelta: -2},
		{name: "add back", actor: artisan, places: intPtr(-3), wantDelta: 3},
		{name: "admin", actor: admin, places: intPtr(1), wantDelta: -1},
		{name: "below zero", actor: artisan, places: intPtr(9), repoErr: workshopserrors.ErrNegativePlaces, wantDelta: -9, wantStatus: http.StatusConflict},
		{name: "foreign workshop", actor: other, places: intPtr(1), wantStatus: http.StatusForbidden},
		{name: "missing amount", actor: artisan, wantStatus: http.StatusUnprocessableEntity},
		{name: "min int overflow", actor: artisan, places: intPtr(math.MinInt), wantStatus: http.StatusUnprocessableEntity},
		{name: "above bound", actor: artisan, places: intPtr(100001), wantStatus: http.StatusUnprocessableEntity},
		{name: "below bound", actor: artisan, places: intPtr(-100001), wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			var gotDelta int
			repo := &mockWorkshopRepository{
				findByIDFunc: ownedBy(artisan.UserID),
				adjustPlacesFunc: func(ctx context.Context, id string, delta int) (*model.Workshop, error) {
					calls.Add(1)
					gotDelta = delta
					if tt.repoErr != nil {
						return nil, tt.repoErr
					}
					return &model.Workshop{ID: id, Places: 5 + delta}, nil
				},
			}
			svc, _ := newServices(repo, &mockCommentRepository{})

			w, err := svc.UpdatePlaces(context.Background(), tt.actor, shopID, &model.PlacesAdjustment{Places: tt.places})
			if (tt.wantStatus == http.StatusForbidden || tt.wantStatus == http.StatusUnprocessableEntity) && calls.Load() != 0 {
				t.Error("AdjustPlaces must not run for a rejected adjustment")
			}
			if tt.wantStatus != 0 {
				if got := statusOf(t, err); got != tt.wantStatus {
					t.Errorf("expected %d, got %d", tt.wantStatus, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotDelta != tt.wantDelta {
				t.Errorf("expected delta %d, got %d", tt.wantDelta, gotDelta)
			}
			if w.Places != 5+tt.wantDelta {
				t.Errorf("expected %d places, got %d", 5+tt.wantDelta, w.Places)
			}
		})
	}
}
