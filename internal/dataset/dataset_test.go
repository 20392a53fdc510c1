package dataset

import (
	"testing"
	"time"
)

func TestAddAndOrder(t *testing.T) {
	d := New(3)
	for _, name := range []string{"b", "a", "c"} {
		if err := d.Add(&Column{Name: name, Values: []any{1, 2, 3}}); err != nil {
			t.Fatalf("Add(%q) returned error: %v", name, err)
		}
	}
	names := d.Names()
	if names[0] != "b" || names[1] != "a" || names[2] != "c" {
		t.Fatalf("order = %v, want insertion order [b a c]", names)
	}
	if d.Len() != 3 || d.Rows() != 3 {
		t.Fatalf("Len=%d Rows=%d, want 3/3", d.Len(), d.Rows())
	}
}

func TestAddRejectsDuplicateAndBadLength(t *testing.T) {
	d := New(2)
	if err := d.Add(&Column{Name: "x", Values: []any{1, 2}}); err != nil {
		t.Fatalf("first Add returned error: %v", err)
	}
	if err := d.Add(&Column{Name: "x", Values: []any{3, 4}}); err == nil {
		t.Fatalf("duplicate Add succeeded")
	}
	if err := d.Add(&Column{Name: "y", Values: []any{1}}); err == nil {
		t.Fatalf("short column accepted")
	}
}

func TestRow(t *testing.T) {
	d := New(2)
	_ = d.Add(&Column{Name: "a", Values: []any{1, 2}})
	_ = d.Add(&Column{Name: "b", Values: []any{"x", "y"}})
	row := d.Row(1)
	if len(row) != 2 || row[0] != 2 || row[1] != "y" {
		t.Fatalf("Row(1) = %#v, want [2 y]", row)
	}
}

/*
TestCoerce verifies each representation conversion and that cells which do
not fit pass through unchanged, so missing markers survive.
*/
func TestCoerce(t *testing.T) {
	ci := &Column{Name: "i", Repr: ReprInt, Values: []any{41.6, "7", "-9"}}
	Coerce(ci)
	if ci.Values[0] != 42 || ci.Values[1] != 7 || ci.Values[2] != -9 {
		t.Fatalf("int coercion = %#v", ci.Values)
	}

	cf := &Column{Name: "f", Repr: ReprFloat, Values: []any{3, "2.5", "n/a"}}
	Coerce(cf)
	if cf.Values[0] != 3.0 || cf.Values[1] != 2.5 || cf.Values[2] != "n/a" {
		t.Fatalf("float coercion = %#v", cf.Values)
	}

	day := time.Date(2004, 3, 1, 0, 0, 0, 0, time.UTC)
	cs := &Column{Name: "s", Repr: ReprString, Values: []any{day, 1.5, -9}}
	Coerce(cs)
	if cs.Values[0] != "2004-03-01" || cs.Values[1] != "1.5" || cs.Values[2] != "-9" {
		t.Fatalf("string coercion = %#v", cs.Values)
	}

	cd := &Column{Name: "d", Repr: ReprDate, Values: []any{"2004-03-01", -9, day}}
	Coerce(cd)
	if got, ok := cd.Values[0].(time.Time); !ok || !got.Equal(day) {
		t.Fatalf("date coercion left %#v", cd.Values[0])
	}
	if cd.Values[1] != -9 {
		t.Fatalf("numeric missing code changed: %#v", cd.Values[1])
	}
}

func TestCoerceUnknownReprPassThrough(t *testing.T) {
	c := &Column{Name: "x", Repr: "hexdump", Values: []any{1, "a"}}
	Coerce(c)
	if c.Values[0] != 1 || c.Values[1] != "a" {
		t.Fatalf("unknown representation mutated values: %#v", c.Values)
	}
}

/*
TestFingerprint verifies equal content hashes equal, and that renaming a
column or changing one cell changes the fingerprint.
*/
func TestFingerprint(t *testing.T) {
	build := func(name string, cell any) *Dataset {
		d := New(2)
		_ = d.Add(&Column{Name: name, Values: []any{cell, 2}})
		return d
	}
	a, b := build("v", 1), build("v", 1)
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("identical datasets hash differently")
	}
	if Fingerprint(a) == Fingerprint(build("w", 1)) {
		t.Fatalf("renamed column kept the fingerprint")
	}
	if Fingerprint(a) == Fingerprint(build("v", 9)) {
		t.Fatalf("changed cell kept the fingerprint")
	}
}
