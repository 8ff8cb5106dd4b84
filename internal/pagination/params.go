// Package pagination normalizes GraphQL cursor-pagination parameters and
// aggregates multi-page fetches into a single logical page.
//
// Callers hand in a possibly inconsistent mix of offset, first, last, after,
// before, page_size, and max_pages. Normalize resolves that mix into a
// canonical form in which forward paging (first/after) and backward paging
// (last/before) are mutually exclusive. FetchAll walks a caller-supplied
// single-page fetcher forward through the result set up to a page budget.
package pagination

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// DefaultPageSize is the page size used when a cursor-paging request names
// no explicit size.
const DefaultPageSize = 10

// DefaultAggregateSize is the per-page size used by FetchAll when the caller
// requests multiple pages without an explicit first.
const DefaultAggregateSize = 50

// Params is a pagination request. Nil means the field was not supplied;
// pointer fields survive JSON round-trips without conflating zero values
// with absence.
type Params struct {
	Offset   *int    `json:"offset,omitempty"`
	First    *int    `json:"first,omitempty"`
	Last     *int    `json:"last,omitempty"`
	After    *string `json:"after,omitempty"`
	Before   *string `json:"before,omitempty"`
	PageSize *int    `json:"page_size,omitempty"`
	MaxPages *int    `json:"max_pages,omitempty"`
}

// Normalize resolves p into its canonical form:
//
//   - page_size fills an absent first, then drops out entirely
//   - offset is clamped to >= 0, first and last to >= 1
//   - empty-string cursors are treated as absent
//   - a present before always wins: last = last, else first, else 10,
//     and first/after are removed
//   - otherwise a present after selects forward paging: first defaults
//     to 10 and last/before are removed
//   - with no cursor, offset/first/last pass through unchanged
//
// Conflicting input is never an error; precedence decides. The output never
// carries both a forward-paging and a backward-paging field, and Normalize
// is a fixed point: Normalize(Normalize(p)) == Normalize(p).
func Normalize(p Params) Params {
	out := p

	if out.First == nil && out.PageSize != nil {
		out.First = out.PageSize
	}
	out.PageSize = nil

	if out.Offset != nil {
		out.Offset = Int(max(0, *out.Offset))
	}
	if out.First != nil {
		out.First = Int(max(1, *out.First))
	}
	if out.Last != nil {
		out.Last = Int(max(1, *out.Last))
	}
	if out.After != nil && *out.After == "" {
		out.After = nil
	}
	if out.Before != nil && *out.Before == "" {
		out.Before = nil
	}

	switch {
	case out.Before != nil:
		if out.Last == nil {
			if out.First != nil {
				out.Last = out.First
			} else {
				out.Last = Int(DefaultPageSize)
			}
		}
		out.First = nil
		out.After = nil
	case out.After != nil:
		if out.First == nil {
			out.First = Int(DefaultPageSize)
		}
		out.Last = nil
		out.Before = nil
	}

	return out
}

// FromRaw builds Params from a loosely-typed JSON object. Numeric fields
// accept any scalar number and floor toward negative infinity; cursor fields
// accept any scalar and stringify it. Unknown keys and unusable values are
// ignored, never rejected.
func FromRaw(raw map[string]any) Params {
	var p Params
	if v, ok := coerceInt(raw["offset"]); ok {
		p.Offset = Int(v)
	}
	if v, ok := coerceInt(raw["first"]); ok {
		p.First = Int(v)
	}
	if v, ok := coerceInt(raw["last"]); ok {
		p.Last = Int(v)
	}
	if v, ok := coerceInt(raw["page_size"]); ok {
		p.PageSize = Int(v)
	}
	if v, ok := coerceInt(raw["max_pages"]); ok {
		p.MaxPages = Int(v)
	}
	if v, ok := coerceCursor(raw["after"]); ok {
		p.After = Str(v)
	}
	if v, ok := coerceCursor(raw["before"]); ok {
		p.Before = Str(v)
	}
	return p
}

// coerceInt converts a scalar to an int, flooring fractional values.
func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(math.Floor(n)), true
	case float32:
		return int(math.Floor(float64(n))), true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return int(math.Floor(f)), true
		}
		return 0, false
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return int(math.Floor(f)), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// coerceCursor converts a scalar to an opaque cursor string. Strings pass
// through unchanged; other scalars are stringified.
func coerceCursor(v any) (string, bool) {
	switch c := v.(type) {
	case nil:
		return "", false
	case string:
		return c, true
	case json.Number:
		return c.String(), true
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64), true
	case int, int32, int64, bool:
		return fmt.Sprint(c), true
	default:
		return "", false
	}
}

// Int returns a pointer to v. Convenience for building Params literals.
func Int(v int) *int { return &v }

// Str returns a pointer to v. Convenience for building Params literals.
func Str(v string) *string { return &v }
