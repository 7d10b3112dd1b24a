package validator

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"crafthub/pkg/logger"
	"crafthub/pkg/model"
)

const validID = "665f1b2c3d4e5f6a7b8c9d0e"

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{Level: logger.ERROR, Output: &bytes.Buffer{}}))
}

func intPtr(i int) *int { return &i }

func TestValidateHold(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		req       model.HoldRequest
		wantField string
	}{
		{"valid without quantity", model.HoldRequest{WorkshopID: validID}, ""},
		{"valid with quantity", model.HoldRequest{WorkshopID: validID, Quantity: intPtr(3)}, ""},
		{"missing workshop", model.HoldRequest{}, "workshopId"},
		{"bad workshop id", model.HoldRequest{WorkshopID: "abc"}, "workshopId"},
		{"zero quantity", model.HoldRequest{WorkshopID: validID, Quantity: intPtr(0)}, "quantity"},
		{"negative quantity", model.HoldRequest{WorkshopID: validID, Quantity: intPtr(-2)}, "quantity"},
		{"too many seats", model.HoldRequest{WorkshopID: validID, Quantity: intPtr(101)}, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateHold(&tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateHold() unexpected error = %v", err)
				}
				return
			}
			assertField(t, err, tt.wantField)
		})
	}
}

func TestValidateConfirm(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateConfirm(&model.ConfirmRequest{BookingIDs: []string{validID}}); err != nil {
		t.Fatalf("ValidateConfirm() unexpected error = %v", err)
	}

	assertField(t, v.ValidateConfirm(&model.ConfirmRequest{}), "bookingIds")
	assertField(t, v.ValidateConfirm(&model.ConfirmRequest{BookingIDs: []string{validID, validID}}), "bookingIds")

	err := v.ValidateConfirm(&model.ConfirmRequest{BookingIDs: []string{"nope"}})
	if err == nil {
		t.Fatal("expected error for malformed booking id")
	}
}

func TestValidateBooking(t *testing.T) {
	v := newTestValidator()
	now := time.Now()
	b := &model.Booking{
		UserID:     "user-1",
		WorkshopID: validID,
		Quantity:   1,
		Status:     model.StatusPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(5 * time.Minute),
	}

	if err := v.Validate(b); err != nil {
		t.Fatalf("Validate() unexpected error = %v", err)
	}

	b.ExpiresAt = now.Add(-time.Second)
	assertField(t, v.Validate(b), "expires_at")
}

func assertField(t *testing.T, err error, field string) {
	t.Helper()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want ValidationErrors", err)
	}
	for _, e := range verrs {
		if e.Field == field {
			return
		}
	}
	t.Errorf("no error for field %q in %v", field, verrs)
}
