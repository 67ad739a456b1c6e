package storage

import (
	"fmt"
	"time"

	"github.com/mharris/quotly/internal/constants"
)

// ValidateRange enforces the bounded-query rule shared by both drivers:
// both bounds present and well-formed, start <= end, and the span capped so
// a listing can never scan the whole history.
func ValidateRange(start, end string) error {
	if start == "" || end == "" {
		return ErrUnboundedRange
	}
	from, err := time.Parse(constants.DateFormat, start)
	if err != nil {
		return fmt.Errorf("invalid range start %q: %w", start, err)
	}
	to, err := time.Parse(constants.DateFormat, end)
	if err != nil {
		return fmt.Errorf("invalid range end %q: %w", end, err)
	}
	if to.Before(from) {
		return fmt.Errorf("range end %s precedes start %s", end, start)
	}
	if to.Sub(from) > constants.MaxRangeDays*24*time.Hour {
		return fmt.Errorf("%w: span exceeds %d days", ErrUnboundedRange, constants.MaxRangeDays)
	}
	return nil
}
