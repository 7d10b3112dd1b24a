package client

import (
	"context"
	"fmt"

	"crafthub/pkg/model"
)

func (c *APIClient) CreateWorkshop(ctx context.Context, w *model.Workshop) (*Response, error) {
	return c.POST(ctx, "/api/workshops", w)
}

func (c *APIClient) GetPublicWorkshop(ctx context.Context, id string) (*Response, error) {
	return c.GET(ctx, "/api/workshops/public/"+id)
}

func (c *APIClient) UpdatePlaces(ctx context.Context, id string, places int) (*Response, error) {
	return c.PUT(ctx, "/api/workshops/update-places/"+id, map[string]int{"places": places})
}

func (c *APIClient) HoldSeats(ctx context.Context, workshopID string, quantity int) (*Response, error) {
	return c.POST(ctx, "/api/bookings/add", model.HoldRequest{WorkshopID: workshopID, Quantity: &quantity})
}

func (c *APIClient) ListPending(ctx context.Context) (*Response, error) {
	return c.GET(ctx, "/api/bookings")
}

func (c *APIClient) CancelBooking(ctx context.Context, id string) (*Response, error) {
	return c.DELETE(ctx, "/api/bookings/remove/"+id)
}

func (c *APIClient) ConfirmBookings(ctx context.Context, ids ...string) (*Response, error) {
	return c.POST(ctx, "/api/bookings/confirm", model.ConfirmRequest{BookingIDs: ids})
}

// DecodeWorkshop reads a single workshop from a data envelope.
func DecodeWorkshop(resp *Response) (*model.Workshop, error) {
	var w model.Workshop
	if err := resp.DecodeData(&w); err != nil {
		return nil, fmt.Errorf("decode workshop: %w", err)
	}
	return &w, nil
}

func DecodeBooking(resp *Response) (*model.Booking, error) {
	var b model.Booking
	if err := resp.DecodeData(&b); err != nil {
		return nil, fmt.Errorf("decode booking: %w", err)
	}
	return &b, nil
}

func DecodeBookings(resp *Response) ([]*model.Booking, error) {
	var bookings []*model.Booking
	if err := resp.DecodeData(&bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

func DecodeConfirmResults(resp *Response) ([]model.ConfirmResult, error) {
	var results []model.ConfirmResult
	if err := resp.DecodeData(&results); err != nil {
		return nil, fmt.Errorf("decode confirm results: %w", err)
	}
	return results, nil
}
