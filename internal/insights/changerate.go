package insights

import (
	"encoding/json"
	"fmt"
)

// ChangeRate is the period-over-period click change rate for one query.
// It is either a numeric percentage, or the distinguished "new entry" state
// for queries with zero comparison clicks and positive current clicks. The
// new state avoids the misleading +Inf/NaN a plain float would produce.
type ChangeRate struct {
	value float64
	isNew bool
}

// NumericRate returns a ChangeRate carrying a percentage value.
func NumericRate(percent float64) ChangeRate {
	return ChangeRate{value: percent}
}

// NewEntryRate returns the ChangeRate for a query absent from the comparison
// period.
func NewEntryRate() ChangeRate {
	return ChangeRate{isNew: true}
}

// IsNew reports whether the rate marks a new entry.
func (r ChangeRate) IsNew() bool { return r.isNew }

// Percent returns the numeric percentage. It is 0 for new entries; callers
// that care must check IsNew first.
func (r ChangeRate) Percent() float64 {
	if r.isNew {
		return 0
	}
	return r.value
}

// GreaterThan orders rates for descending-growth views: a new entry ranks
// above every numeric value, and two new entries are equal.
func (r ChangeRate) GreaterThan(other ChangeRate) bool {
	if r.isNew {
		return !other.isNew
	}
	if other.isNew {
		return false
	}
	return r.value > other.value
}

func (r ChangeRate) String() string {
	if r.isNew {
		return "NEW"
	}
	return fmt.Sprintf("%+.1f%%", r.value)
}

// MarshalJSON emits the literal string "new" for new entries and a plain
// number otherwise.
func (r ChangeRate) MarshalJSON() ([]byte, error) {
	if r.isNew {
		return json.Marshal("new")
	}
	return json.Marshal(r.value)
}

// UnmarshalJSON accepts either the "new" literal or a number.
func (r *ChangeRate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "new" {
			return fmt.Errorf("invalid change rate literal: %q", s)
		}
		*r = NewEntryRate()
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid change rate: %w", err)
	}
	*r = NumericRate(v)
	return nil
}
