package repository

import (
	"context"

	"gorm.io/gorm"
)

const counterID = "document_number"

type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// NextSequence atomically claims the next sequence value for the given date.
// A date change resets the counter to 1 inside the same statement, so two
// allocators racing across midnight can never hand out the same value. The
// upsert syntax works on both postgres and sqlite.
func (r *CounterRepository) NextSequence(ctx context.Context, date string) (int, error) {
	var seq int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO document_counters (id, sequence_value, last_reset_date)
		VALUES (?, 1, ?)
		ON CONFLICT (id) DO UPDATE SET
			sequence_value = CASE
				WHEN document_counters.last_reset_date = excluded.last_reset_date
					THEN document_counters.sequence_value + 1
				ELSE 1
			END,
			last_reset_date = excluded.last_reset_date
		RETURNING sequence_value`,
		counterID, date,
	).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}
