package bookings

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryStore implements BookingStore interface with in-memory storage
type InMemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		bookings: make(map[string]*Booking),
	}
}

func slotKey(date, time string) string {
	return date + " " + time
}

// IsSlotAvailable reports whether no booking occupies the (date, time) slot
func (s *InMemoryStore) IsSlotAvailable(ctx context.Context, date, time string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.bookings[slotKey(date, time)]
	return !exists, nil
}

// CreateBooking persists a new booking, rejecting an occupied slot
func (s *InMemoryStore) CreateBooking(ctx context.Context, booking *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey(booking.Date, booking.Time)
	if _, exists := s.bookings[key]; exists {
		return fmt.Errorf("slot %s %s is already booked", booking.Date, booking.Time)
	}

	s.bookings[key] = booking
	return nil
}
