package notation

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func TestParseIntSet(t *testing.T) {
	d, err := Parse("[7,9]", Numeric)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if d.Kind != KindIntSet {
		t.Fatalf("kind = %v, want intset", d.Kind)
	}
	if !reflect.DeepEqual(d.Set, []int{7, 8, 9}) {
		t.Fatalf("set = %v, want [7 8 9]", d.Set)
	}
}

/*
TestParseContinuous verifies that an exclusive bound or a decimal point makes
a numeric pair continuous, with the inclusivity of each side taken from its
own bracket character.
*/
func TestParseContinuous(t *testing.T) {
	d, err := Parse("[18.5,25)", Numeric)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if d.Kind != KindRange {
		t.Fatalf("kind = %v, want range", d.Kind)
	}
	if d.Min != 18.5 || d.Max != 25 {
		t.Fatalf("bounds = [%v,%v], want [18.5,25]", d.Min, d.Max)
	}
	if !d.MinIncl || d.MaxIncl {
		t.Fatalf("inclusivity = (%v,%v), want (true,false)", d.MinIncl, d.MaxIncl)
	}
}

/*
TestParseBracketCombinations verifies every bracket combination round-trips
its inclusivity, including infinite bounds.
*/
func TestParseBracketCombinations(t *testing.T) {
	cases := []struct {
		in               string
		min, max         float64
		minIncl, maxIncl bool
	}{
		{"[1.5,2.5]", 1.5, 2.5, true, true},
		{"[1.5,2.5)", 1.5, 2.5, true, false},
		{"(1.5,2.5]", 1.5, 2.5, false, true},
		{"(1.5,2.5)", 1.5, 2.5, false, false},
		{"[-inf,10]", math.Inf(-1), 10, true, true},
		{"[0,inf)", 0, math.Inf(1), true, false},
		{"(-infinity, +infinity)", math.Inf(-1), math.Inf(1), false, false},
	}
	for _, c := range cases {
		d, err := Parse(c.in, Numeric)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", c.in, err)
		}
		if d.Kind != KindRange {
			t.Fatalf("Parse(%q) kind = %v, want range", c.in, d.Kind)
		}
		if d.Min != c.min || d.Max != c.max || d.MinIncl != c.minIncl || d.MaxIncl != c.maxIncl {
			t.Fatalf("Parse(%q) = %+v, want min=%v max=%v incl=(%v,%v)",
				c.in, d, c.min, c.max, c.minIncl, c.maxIncl)
		}
	}
}

func TestParseSingleValue(t *testing.T) {
	d, err := Parse("-9", Numeric)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if d.Kind != KindSingle || d.Value != -9 {
		t.Fatalf("got %+v, want single -9", d)
	}
}

/*
TestParseSpecialTokens verifies the fixed tokens pass through with their
canonical spelling and that function references stay opaque. "otherwise" and
function references must report Transform() true; skip and copy must not.
*/
func TestParseSpecialTokens(t *testing.T) {
	cases := []struct {
		in        string
		kind      Kind
		token     string
		transform bool
	}{
		{"skip", KindToken, TokenSkip, false},
		{" Copy ", KindToken, TokenCopy, false},
		{"OTHERWISE", KindToken, TokenOtherwise, true},
		{"$bmi([weight],[height])", KindFunction, "$bmi([weight],[height])", true},
	}
	for _, c := range cases {
		d, err := Parse(c.in, Numeric)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", c.in, err)
		}
		if d.Kind != c.kind || d.Token != c.token {
			t.Fatalf("Parse(%q) = %+v, want kind=%v token=%q", c.in, d, c.kind, c.token)
		}
		if d.Transform() != c.transform {
			t.Fatalf("Parse(%q).Transform() = %v, want %v", c.in, d.Transform(), c.transform)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	d, err := Parse("[2004-03-01,2008-12-31)", DateHint)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if d.Kind != KindDateRange {
		t.Fatalf("kind = %v, want daterange", d.Kind)
	}
	wantMin := time.Date(2004, 3, 1, 0, 0, 0, 0, time.UTC)
	wantMax := time.Date(2008, 12, 31, 0, 0, 0, 0, time.UTC)
	if !d.MinDate.Equal(wantMin) || !d.MaxDate.Equal(wantMax) {
		t.Fatalf("bounds = [%v,%v], want [%v,%v]", d.MinDate, d.MaxDate, wantMin, wantMax)
	}
	if !d.MinIncl || d.MaxIncl {
		t.Fatalf("inclusivity = (%v,%v), want (true,false)", d.MinIncl, d.MaxIncl)
	}
}

/*
TestParseDateOpenEnded verifies that an infinite upper bound on a date pair
leaves MaxDate zero; the sampler reads that as "one fixed date".
*/
func TestParseDateOpenEnded(t *testing.T) {
	d, err := Parse("[2004-03-01,inf]", DateHint)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if d.MinDate.IsZero() || !d.MaxDate.IsZero() {
		t.Fatalf("bounds = [%v,%v], want fixed min and zero max", d.MinDate, d.MaxDate)
	}
}

/*
TestParseMalformed verifies malformed input yields an *Error value, never a
panic, and that the hint never turns a bad string into a value.
*/
func TestParseMalformed(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"[7",
		"7]",
		"[7,8,9]",
		"[,9]",
		"[a,b]",
		"[9,7]",
		"[2004-13-40,inf]",
		"not a number",
	}
	for _, in := range bad {
		for _, hint := range []Hint{Numeric, DateHint} {
			d, err := Parse(in, hint)
			if err == nil {
				t.Fatalf("Parse(%q, %v) = %+v, want error", in, hint, d)
			}
			var ne *Error
			if !errors.As(err, &ne) {
				t.Fatalf("Parse(%q) error type = %T, want *Error", in, err)
			}
		}
	}
}

func TestParseIntSetReversed(t *testing.T) {
	if _, err := Parse("[9,7]", Numeric); err == nil {
		t.Fatalf("want error for reversed bounds")
	}
}
