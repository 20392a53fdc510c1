// Package survival handles the causally ordered date columns of a dataset:
// one entry date per row, further role dates anchored on it by per-row day
// offsets, and a censoring pass enforcing the ordering invariants. It only
// computes; the orchestration layer decides when columns are generated and
// appended.
package survival

import (
	"math/rand"
	"time"

	"synthgen/internal/dataset"
	"synthgen/internal/metadata"
)

// Group is the survival slice of a metadata set: the entry column and the
// role columns anchored on it, in metadata order.
type Group struct {
	Entry  *metadata.VariableSpec
	Others []*metadata.VariableSpec
}

// GroupRoles collects the survival-role variables of a set. The second
// return is false when the set declares none. The first variable carrying
// the entry role anchors the group.
func GroupRoles(set *metadata.Set) (Group, bool) {
	var g Group
	for i := range set.Variables {
		v := &set.Variables[i]
		switch {
		case v.Role == "":
		case v.Role == metadata.RoleEntry:
			if g.Entry == nil {
				g.Entry = v
			}
		default:
			g.Others = append(g.Others, v)
		}
	}
	return g, g.Entry != nil || len(g.Others) > 0
}

// Anchored draws one role column against the entry column: entry date plus a
// uniform day offset inside the role's window, subject to the role's event
// probability. Rows without an entry date and non-event rows stay missing.
// Returns the values and the number of rows that got a date.
func Anchored(rng *rand.Rand, entry []any, v *metadata.VariableSpec) ([]any, int) {
	out := make([]any, len(entry))
	events := 0
	span := v.MaxOffset - v.MinOffset
	for i, cell := range entry {
		t, ok := cell.(time.Time)
		if !ok {
			continue
		}
		if v.EventProb < 1 && rng.Float64() >= v.EventProb {
			continue
		}
		offset := v.MinOffset
		if span > 0 {
			offset += rng.Intn(span + 1)
		}
		out[i] = t.AddDate(0, 0, offset)
		events++
	}
	return out, events
}

// Stats counts what the censoring pass changed.
type Stats struct {
	PreEntry  int // non-entry dates before the row's entry, set missing
	PostDeath int // event dates censored because death came first
}

// Censor enforces the ordering invariants in place, after all role columns
// exist: a non-entry date strictly before its row's entry date is set
// missing, never moved forward; when a competing death date precedes the
// primary event date on a row, the event is censored for that row.
func Censor(ds *dataset.Dataset, g Group) Stats {
	var st Stats
	if g.Entry == nil {
		return st
	}
	entryCol, ok := ds.Get(g.Entry.Name)
	if !ok {
		return st
	}

	for _, v := range g.Others {
		col, ok := ds.Get(v.Name)
		if !ok {
			continue
		}
		for i, cell := range col.Values {
			t, ok := cell.(time.Time)
			if !ok {
				continue
			}
			e, ok := entryCol.Values[i].(time.Time)
			if !ok {
				continue
			}
			if t.Before(e) {
				col.Values[i] = nil
				st.PreEntry++
			}
		}
	}

	event := roleColumn(ds, g, metadata.RoleEvent)
	death := roleColumn(ds, g, metadata.RoleDeath)
	if event == nil || death == nil {
		return st
	}
	for i, cell := range event.Values {
		et, ok := cell.(time.Time)
		if !ok {
			continue
		}
		dt, ok := death.Values[i].(time.Time)
		if !ok {
			continue
		}
		if dt.Before(et) {
			event.Values[i] = nil
			st.PostDeath++
		}
	}
	return st
}

func roleColumn(ds *dataset.Dataset, g Group, role string) *dataset.Column {
	for _, v := range g.Others {
		if v.Role != role {
			continue
		}
		if col, ok := ds.Get(v.Name); ok {
			return col
		}
	}
	return nil
}
