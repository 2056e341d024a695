package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingService implements the BookingManager interface
type BookingService struct {
	store BookingStore
}

// NewBookingService creates a new booking service
func NewBookingService(store BookingStore) *BookingService {
	return &BookingService{
		store: store,
	}
}

// NewService creates a new booking service (alias for NewBookingService)
func NewService(store BookingStore) *BookingService {
	return NewBookingService(store)
}

// IsSlotAvailable reports whether the (date, time) slot is free
func (s *BookingService) IsSlotAvailable(ctx context.Context, date, timeStr string) (bool, error) {
	return s.store.IsSlotAvailable(ctx, date, timeStr)
}

// CreateBooking validates the request and persists a new booking
func (s *BookingService) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*Booking, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	if req.Phone == "" {
		return nil, fmt.Errorf("phone is required")
	}

	if req.Date == "" || req.Time == "" {
		return nil, fmt.Errorf("date and time are required")
	}

	booking := &Booking{
		UUID:      uuid.New(),
		Name:      req.Name,
		Phone:     req.Phone,
		Date:      req.Date,
		Time:      req.Time,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return booking, nil
}
