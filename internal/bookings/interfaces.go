package bookings

import "context"

// BookingManager defines the interface for booking operations
type BookingManager interface {
	IsSlotAvailable(ctx context.Context, date, time string) (bool, error)
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*Booking, error)
}

// BookingStore defines the interface for booking storage operations.
// Implementations must reject a second booking for an already occupied
// (date, time) slot, even under concurrent creates.
type BookingStore interface {
	IsSlotAvailable(ctx context.Context, date, time string) (bool, error)
	CreateBooking(ctx context.Context, booking *Booking) error
}
