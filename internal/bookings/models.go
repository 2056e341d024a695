package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Booking represents a confirmed appointment occupying a (date, time) slot.
// Date and Time are opaque strings in YYYY-MM-DD and HH:MM form; the engine
// validates them before they ever reach this package.
type Booking struct {
	UUID      uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBookingRequest represents a request to persist a new booking
type CreateBookingRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}
