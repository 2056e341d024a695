package bookings

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// BookingIndexes holds the index definitions for the bookings table.
// The unique index on (date, time) is the last line of defense against
// two confirmations racing for the same slot.
var BookingIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_date_time ON bookings (date, time)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_phone ON bookings (phone)`,
}

// CreateTables creates all necessary tables for the booking store
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*BookingSchema)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}

	return nil
}

// CreateIndexes creates all necessary indexes for the booking store
func CreateIndexes(ctx context.Context, db *bun.DB) error {
	for _, indexSQL := range BookingIndexes {
		_, err := db.ExecContext(ctx, indexSQL)
		if err != nil {
			return fmt.Errorf("failed to create index with SQL %q: %w", indexSQL, err)
		}
	}

	return nil
}
