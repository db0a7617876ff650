package inventory

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"backoffice/internal/core/types"
)

// Remaining is the quantity still available in a lot. Legacy lots may be
// untracked; they hold stock the allocator never depletes.
type Remaining struct {
	units   types.Quantity
	tracked bool
}

// Tracked returns a tracked remaining quantity.
func Tracked(n types.Quantity) Remaining { return Remaining{units: n, tracked: true} }

// Untracked returns the untracked variant.
func Untracked() Remaining { return Remaining{} }

// Units returns the tracked quantity and whether the lot is tracked.
func (r Remaining) Units() (types.Quantity, bool) { return r.units, r.tracked }

func (r Remaining) IsTracked() bool { return r.tracked }

// Available is the quantity the allocator may take.
func (r Remaining) Available() types.Quantity {
	if !r.tracked || r.units < 0 {
		return 0
	}
	return r.units
}

func (r Remaining) String() string {
	if !r.tracked {
		return "untracked"
	}
	return r.units.String()
}

func (r Remaining) MarshalJSON() ([]byte, error) {
	if !r.tracked {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(int64(r.units), 10)), nil
}

func (r *Remaining) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = Untracked()
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("remaining quantity: %w", err)
	}
	*r = Tracked(types.Quantity(n))
	return nil
}

// Scan implements sql.Scanner for a nullable BIGINT column.
func (r *Remaining) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = Untracked()
	case int64:
		*r = Tracked(types.Quantity(v))
	case int32:
		*r = Tracked(types.Quantity(v))
	default:
		return fmt.Errorf("cannot scan %T into Remaining", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (r Remaining) Value() (driver.Value, error) {
	if !r.tracked {
		return nil, nil
	}
	return int64(r.units), nil
}
