package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// PostgresStore implements BookingStore interface with PostgreSQL storage
type PostgresStore struct {
	db *bun.DB
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// BookingSchema represents the bookings table schema
type BookingSchema struct {
	bun.BaseModel `bun:"table:bookings,alias:b"`

	UUID      string    `bun:"uuid,pk,type:uuid,default:gen_random_uuid()" json:"uuid"`
	Name      string    `bun:"name,notnull" json:"name"`
	Phone     string    `bun:"phone,notnull" json:"phone"`
	Date      string    `bun:"date,notnull" json:"date"`
	Time      string    `bun:"time,notnull" json:"time"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// IsSlotAvailable reports whether no booking row exists for the (date, time) slot
func (s *PostgresStore) IsSlotAvailable(ctx context.Context, date, timeStr string) (bool, error) {
	count, err := s.db.NewSelect().
		Model((*BookingSchema)(nil)).
		Where("date = ?", date).
		Where("time = ?", timeStr).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check slot availability: %w", err)
	}

	return count == 0, nil
}

// CreateBooking persists a new booking. The unique index on (date, time)
// rejects a concurrent insert that filled the slot after the availability check.
func (s *PostgresStore) CreateBooking(ctx context.Context, booking *Booking) error {
	schema := &BookingSchema{
		UUID:      booking.UUID.String(),
		Name:      booking.Name,
		Phone:     booking.Phone,
		Date:      booking.Date,
		Time:      booking.Time,
		CreatedAt: booking.CreatedAt,
	}

	_, err := s.db.NewInsert().
		Model(schema).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}
