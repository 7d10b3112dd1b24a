package validator

import (
	"errors"
	"math"
	"strings"
	"testing"

	"crafthub/pkg/model"
)

func validWorkshop() *model.Workshop {
	return &model.Workshop{
		ArtisanID: "artisan-1",
		Title:     "Pottery for beginners",
		Price:     45,
		Duration:  120,
		Places:    8,
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestValidate(t *testing.T) {
	v := NewWorkshopValidator()

	tests := []struct {
		name      string
		mutate    func(w *model.Workshop)
		wantField string
	}{
		{name: "valid", mutate: func(w *model.Workshop) {}},
		{name: "zero places", mutate: func(w *model.Workshop) { w.Places = 0 }},
		{name: "negative places", mutate: func(w *model.Workshop) { w.Places = -1 }, wantField: "places"},
		{name: "negative price", mutate: func(w *model.Workshop) { w.Price = -0.5 }, wantField: "price"},
		{name: "missing title", mutate: func(w *model.Workshop) { w.Title = "" }, wantField: "title"},
		{name: "blank title", mutate: func(w *model.Workshop) { w.Title = "   " }, wantField: "title"},
		{name: "long title", mutate: func(w *model.Workshop) { w.Title = strings.Repeat("a", 201) }, wantField: "title"},
		{name: "missing artisan", mutate: func(w *model.Workshop) { w.ArtisanID = "" }, wantField: "artisan_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validWorkshop()
			tt.mutate(w)

			err := v.Validate(w)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if !hasField(verrs, tt.wantField) {
				t.Errorf("expected error on %q, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewWorkshopValidator()

	if err := v.ValidateUpdate(&model.WorkshopUpdate{}); err != nil {
		t.Errorf("empty update should be valid, got %v", err)
	}
	if err := v.ValidateUpdate(&model.WorkshopUpdate{Title: strPtr("x")}); err == nil {
		t.Error("expected error for one-letter title")
	}
	if err := v.ValidateUpdate(&model.WorkshopUpdate{Duration: intPtr(-5)}); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestValidatePlaces(t *testing.T) {
	v := NewWorkshopValidator()

	if err := v.ValidatePlaces(&model.PlacesAdjustment{}); err == nil {
		t.Error("expected error when places is missing")
	}
	if err := v.ValidatePlaces(&model.PlacesAdjustment{Places: intPtr(0)}); err != nil {
		t.Errorf("zero adjustment should be accepted, got %v", err)
	}
	if err := v.ValidatePlaces(&model.PlacesAdjustment{Places: intPtr(-3)}); err != nil {
		t.Errorf("negative adjustment adds seats back, got %v", err)
	}
	for _, n := range []int{100001, -100001, math.MinInt, math.MaxInt} {
		if err := v.ValidatePlaces(&model.PlacesAdjustment{Places: intPtr(n)}); err == nil {
			t.Errorf("adjustment %d should be out of bounds", n)
		}
	}
}

func TestValidateComment(t *testing.T) {
	v := NewWorkshopValidator()

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "valid", text: "Loved it"},
		{name: "empty", text: "", wantErr: true},
		{name: "whitespace", text: "  \n ", wantErr: true},
		{name: "max length", text: strings.Repeat("a", 1000)},
		{name: "too long", text: strings.Repeat("a", 1001), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateComment(&model.CommentInput{Text: tt.text})
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func hasField(errs ValidationErrors, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
