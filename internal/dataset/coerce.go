package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"synthgen/internal/notation"
)

// Recognized output representations. Anything else passes values through
// unchanged; an unknown representation is not an error.
const (
	ReprInt    = "int"
	ReprFloat  = "float"
	ReprString = "string"
	ReprDate   = "date"
)

// Coerce rewrites col.Values into the column's declared representation.
// Cells that do not fit the representation (a numeric missing code in a date
// column, a date in an int column) pass through unchanged, so injected
// markers survive coercion.
func Coerce(col *Column) {
	switch col.Repr {
	case ReprInt:
		for i, v := range col.Values {
			col.Values[i] = toInt(v)
		}
	case ReprFloat:
		for i, v := range col.Values {
			col.Values[i] = toFloat(v)
		}
	case ReprString:
		for i, v := range col.Values {
			col.Values[i] = CellString(v)
		}
	case ReprDate:
		for i, v := range col.Values {
			if s, ok := v.(string); ok {
				if t, err := time.Parse(notation.DateLayout, s); err == nil {
					col.Values[i] = t
				}
			}
		}
	}
}

func toInt(v any) any {
	switch x := v.(type) {
	case int:
		return x
	case float64:
		return int(math.Round(x))
	case string:
		if n, err := strconv.Atoi(x); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return int(math.Round(f))
		}
	}
	return v
}

func toFloat(v any) any {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return v
}

// CellString renders one cell the way every output surface should: dates in
// the notation layout, floats in their shortest round-trip form.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return x.Format(notation.DateLayout)
	}
	return fmt.Sprintf("%v", v)
}
