package domain

// DocumentCounter is the singleton row backing document number allocation.
// sequence_value resets to 1 whenever last_reset_date differs from the
// current date; the increment itself happens in a single atomic upsert, never
// read-modify-write in application code.
type DocumentCounter struct {
	ID            string `gorm:"primaryKey"`
	SequenceValue int    `gorm:"column:sequence_value"`
	LastResetDate string `gorm:"column:last_reset_date"`
}

func (DocumentCounter) TableName() string { return "document_counters" }
