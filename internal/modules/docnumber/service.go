package docnumber

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"veriflow/internal/pkg/metrics"
)

// dateLayout renders dates as DD-MM-YYYY, the format embedded in every
// allocated document number.
const dateLayout = "02-01-2006"

// ValidFormat matches allocated numbers: zero-padded three digit sequence,
// a slash, then the allocation date.
var ValidFormat = regexp.MustCompile(`^\d{3}/\d{2}-\d{2}-\d{4}$`)

type CounterRepository interface {
	NextSequence(ctx context.Context, date string) (int, error)
}

type Service struct {
	counters CounterRepository
	now      func() time.Time
}

func NewService(counters CounterRepository) *Service {
	return &Service{counters: counters, now: time.Now}
}

// Allocate returns the next document number for today, e.g. "007/21-08-2026".
// Allocation failures propagate: handing out a placeholder number would
// collide with other records, so there is no fallback.
func (s *Service) Allocate(ctx context.Context) (string, error) {
	date := s.now().Format(dateLayout)

	seq, err := s.counters.NextSequence(ctx, date)
	if err != nil {
		return "", fmt.Errorf("allocate document number: %w", err)
	}

	metrics.NumbersAllocated.Inc()
	return fmt.Sprintf("%03d/%s", seq, date), nil
}
