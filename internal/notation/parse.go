// Package notation parses the free-text notation used in variable metadata:
// bracketed ranges with per-bracket inclusivity, bare numeric literals, and a
// small set of fixed special tokens. It also resolves scope-qualified
// variable names (see name.go).
//
// The grammar is deliberately small. A specification string is one of:
//
//   - a special token: "skip", "copy", "otherwise" (case-insensitive), or any
//     string starting with "$" (a function reference, kept opaque);
//   - a bare numeric literal: "42", "-9", "3.5";
//   - a bracketed pair "B lhs , rhs B'" where B is "[" (inclusive) or "("
//     (exclusive), B' is "]" or ")" likewise, and either bound may be spelled
//     "inf", "+inf", "-inf" or "infinity" in any case.
//
// Whether a bracketed pair is read as numbers or as calendar dates is decided
// by the caller's Hint, never guessed from the string shape.
package notation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Hint tells Parse how to read the bounds of a bracketed pair.
type Hint int

const (
	// Numeric reads bounds as numbers (integer or continuous).
	Numeric Hint = iota
	// DateHint reads bounds as ISO dates in the DateLayout layout.
	DateHint
)

// DateLayout is the only bound layout accepted inside date ranges.
const DateLayout = "2006-01-02"

// Fixed special tokens. Matching is case-insensitive and ignores surrounding
// space; Parse returns the canonical lower-case form.
const (
	TokenSkip      = "skip"      // leave the variable unpopulated
	TokenCopy      = "copy"      // copy-through marker
	TokenOtherwise = "otherwise" // catch-all transform rule
	FuncPrefix     = "$"         // function reference, e.g. "$bmi([weight],[height])"
)

// Detail-row code prefixes. Rows whose code starts with MissPrefix describe a
// missing code; rows starting with ContamPrefix describe a contamination
// rule. Everything else is a population row.
const (
	MissPrefix   = "miss_"
	ContamPrefix = "contam_"
)

// Kind discriminates Descriptor variants.
type Kind int

const (
	KindSingle    Kind = iota // one numeric value
	KindIntSet                // enumerable integer range, materialized
	KindRange                 // continuous range, possibly unbounded
	KindDateRange             // calendar-date range, possibly open-ended
	KindToken                 // fixed special token
	KindFunction              // opaque function reference
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindIntSet:
		return "intset"
	case KindRange:
		return "range"
	case KindDateRange:
		return "daterange"
	case KindToken:
		return "token"
	case KindFunction:
		return "function"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Descriptor is the parsed form of one specification string. Only the fields
// belonging to its Kind are meaningful.
type Descriptor struct {
	Kind Kind

	// KindToken: the canonical token. KindFunction: the raw reference text.
	Token string

	// KindSingle.
	Value float64

	// KindIntSet: the full enumerated set, ascending.
	Set []int

	// KindRange: bounds are ±Inf when unbounded.
	Min, Max         float64
	MinIncl, MaxIncl bool

	// KindDateRange: a zero time means that side is open-ended.
	MinDate, MaxDate time.Time
}

// Transform reports whether the descriptor encodes a transform rule rather
// than an observable value (function references and "otherwise"). Such rows
// are excluded from generation.
func (d Descriptor) Transform() bool {
	return d.Kind == KindFunction || (d.Kind == KindToken && d.Token == TokenOtherwise)
}

// Error describes a specification string that Parse could not understand.
type Error struct {
	Spec string
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("notation: %s in %q", e.Msg, e.Spec) }

func parseErr(spec, format string, args ...any) error {
	return &Error{Spec: spec, Msg: fmt.Sprintf(format, args...)}
}

// Parse turns one specification string into a Descriptor.
//
// Priority order:
//  1. special tokens (including the "$" function prefix) pass through;
//  2. a bare numeric literal becomes KindSingle;
//  3. a bracketed pair becomes KindIntSet, KindRange or KindDateRange;
//  4. anything else is an *Error.
//
// For numeric pairs, any exclusive bound, decimal point or infinite bound
// makes the range continuous; otherwise it is an integer range and the full
// set is enumerated eagerly. Malformed input yields an error value, never a
// panic.
func Parse(s string, hint Hint) (Descriptor, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return Descriptor{}, parseErr(s, "empty specification")
	}

	if d, ok := parseToken(t); ok {
		return d, nil
	}

	if v, err := strconv.ParseFloat(t, 64); err == nil {
		return Descriptor{Kind: KindSingle, Value: v}, nil
	}

	open, close := t[0], t[len(t)-1]
	if open != '[' && open != '(' {
		return Descriptor{}, parseErr(s, "neither token, number nor bracketed pair")
	}
	if len(t) < 2 || (close != ']' && close != ')') {
		return Descriptor{}, parseErr(s, "unterminated bracket pair")
	}

	parts := strings.Split(t[1:len(t)-1], ",")
	if len(parts) != 2 {
		return Descriptor{}, parseErr(s, "want exactly one comma between bounds, got %d", len(parts)-1)
	}
	lhs, rhs := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if lhs == "" || rhs == "" {
		return Descriptor{}, parseErr(s, "empty bound")
	}
	minIncl, maxIncl := open == '[', close == ']'

	if hint == DateHint {
		return parseDatePair(s, lhs, rhs, minIncl, maxIncl)
	}
	return parseNumericPair(s, lhs, rhs, minIncl, maxIncl)
}

// isInf reports the infinity spellings and their sign.
func isInf(s string) (neg, ok bool) {
	switch strings.ToLower(s) {
	case "inf", "+inf", "infinity", "+infinity":
		return false, true
	case "-inf", "-infinity":
		return true, true
	}
	return false, false
}

func parseToken(t string) (Descriptor, bool) {
	if strings.HasPrefix(t, FuncPrefix) {
		return Descriptor{Kind: KindFunction, Token: t}, true
	}
	switch strings.ToLower(t) {
	case TokenSkip:
		return Descriptor{Kind: KindToken, Token: TokenSkip}, true
	case TokenCopy:
		return Descriptor{Kind: KindToken, Token: TokenCopy}, true
	case TokenOtherwise:
		return Descriptor{Kind: KindToken, Token: TokenOtherwise}, true
	}
	return Descriptor{}, false
}

func parseNumericPair(spec, lhs, rhs string, minIncl, maxIncl bool) (Descriptor, error) {
	lo, loInf, err := numericBound(spec, lhs)
	if err != nil {
		return Descriptor{}, err
	}
	hi, hiInf, err := numericBound(spec, rhs)
	if err != nil {
		return Descriptor{}, err
	}

	continuous := !minIncl || !maxIncl || loInf || hiInf ||
		strings.Contains(lhs, ".") || strings.Contains(rhs, ".")

	if continuous {
		if !loInf && !hiInf && lo > hi {
			return Descriptor{}, parseErr(spec, "lower bound %v above upper bound %v", lo, hi)
		}
		return Descriptor{
			Kind: KindRange,
			Min:  lo, Max: hi,
			MinIncl: minIncl, MaxIncl: maxIncl,
		}, nil
	}

	a, b := int(lo), int(hi)
	if a > b {
		return Descriptor{}, parseErr(spec, "lower bound %d above upper bound %d", a, b)
	}
	set := make([]int, 0, b-a+1)
	for v := a; v <= b; v++ {
		set = append(set, v)
	}
	return Descriptor{Kind: KindIntSet, Set: set, Min: lo, Max: hi, MinIncl: true, MaxIncl: true}, nil
}

func numericBound(spec, s string) (v float64, inf bool, err error) {
	if neg, ok := isInf(s); ok {
		if neg {
			return math.Inf(-1), true, nil
		}
		return math.Inf(1), true, nil
	}
	v, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, false, parseErr(spec, "bad numeric bound %q", s)
	}
	return v, false, nil
}

func parseDatePair(spec, lhs, rhs string, minIncl, maxIncl bool) (Descriptor, error) {
	d := Descriptor{Kind: KindDateRange, MinIncl: minIncl, MaxIncl: maxIncl}

	if _, ok := isInf(lhs); !ok {
		t, err := time.Parse(DateLayout, lhs)
		if err != nil {
			return Descriptor{}, parseErr(spec, "bad date bound %q (want %s)", lhs, DateLayout)
		}
		d.MinDate = t
	}
	if _, ok := isInf(rhs); !ok {
		t, err := time.Parse(DateLayout, rhs)
		if err != nil {
			return Descriptor{}, parseErr(spec, "bad date bound %q (want %s)", rhs, DateLayout)
		}
		d.MaxDate = t
	}
	if !d.MinDate.IsZero() && !d.MaxDate.IsZero() && d.MinDate.After(d.MaxDate) {
		return Descriptor{}, parseErr(spec, "date lower bound after upper bound")
	}
	return d, nil
}
