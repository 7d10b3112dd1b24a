//go:build integration

package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"crafthub/pkg/client"
	"crafthub/pkg/model"
)

type WorkshopBuilder struct {
	w model.Workshop
}

func NewWorkshopBuilder() *WorkshopBuilder {
	return &WorkshopBuilder{
		w: model.Workshop{
			Title:       "Wheel throwing basics",
			Description: "Two hours at the wheel, clay included.",
			Price:       55,
			Category:    "pottery",
			Location:    "Lyon",
			Date:        time.Now().Add(14 * 24 * time.Hour).UTC().Truncate(time.Second),
			BookingTime: "14:00",
			Duration:    120,
			Places:      3,
		},
	}
}

func (b *WorkshopBuilder) WithTitle(title string) *WorkshopBuilder {
	b.w.Title = title
	return b
}

func (b *WorkshopBuilder) WithPlaces(places int) *WorkshopBuilder {
	b.w.Places = places
	return b
}

func (b *WorkshopBuilder) Build() *model.Workshop {
	w := b.w
	return &w
}

// CreateWorkshop posts w as the artisan client and returns the stored copy.
func CreateWorkshop(t *testing.T, artisan *client.APIClient, w *model.Workshop) *model.Workshop {
	t.Helper()
	resp, err := artisan.CreateWorkshop(context.Background(), w)
	if err != nil {
		t.Fatalf("create workshop: %v", err)
	}
	AssertStatusCode(t, resp, http.StatusCreated)

	created, err := client.DecodeWorkshop(resp)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return created
}

func AssertStatusCode(t *testing.T, resp *client.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d. Body: %s", expected, resp.StatusCode, string(resp.Body))
	}
}
