package metadata

import (
	"strings"
	"testing"

	"synthgen/internal/config"
)

// issueAt reports whether issues contains an entry with the given severity
// whose message contains substr.
func issueAt(t *testing.T, issues []config.Issue, sev config.IssueSeverity, substr string) bool {
	t.Helper()
	for _, is := range issues {
		if is.Severity == sev && strings.Contains(is.Message, substr) {
			return true
		}
	}
	return false
}

func cleanSet() *Set {
	return NewSet(
		[]VariableSpec{
			{Name: "sex", Type: "categorical", Repr: "int"},
			{Name: "bmi", Type: "continuous", Repr: "float", Dist: "normal", Param1: 24, Param2: 4},
			{Name: "entry_date", Type: "date", Repr: "date", Range: "[2004-03-01,2008-06-30]", Role: RoleEntry},
			{Name: "death_date", Type: "date", Repr: "date", Role: RoleDeath, Anchor: "entry_date", MinOffset: 0, MaxOffset: 1800, EventProb: 0.1},
		},
		[]DetailRow{
			{Variable: "sex", Code: "1", Value: "male", Proportion: 0.5, HasProp: true},
			{Variable: "sex", Code: "2", Value: "female", Proportion: 0.5, HasProp: true},
			{Variable: "bmi", Code: "[12,60]"},
		},
	)
}

func TestValidateClean(t *testing.T) {
	t.Parallel()
	issues := Validate(cleanSet())
	if len(issues) != 0 {
		t.Fatalf("clean set produced issues: %v", issues)
	}
}

func TestValidateDuplicateName(t *testing.T) {
	t.Parallel()
	s := cleanSet()
	s.Variables = append(s.Variables, VariableSpec{Name: "sex", Type: "categorical"})
	s = NewSet(s.Variables, s.Details)

	issues := Validate(s)
	if !issueAt(t, issues, config.SeverityError, "duplicate variable") {
		t.Fatalf("no duplicate-name error in %v", issues)
	}
}

func TestValidateUnknownType(t *testing.T) {
	t.Parallel()
	s := cleanSet()
	s.Variables[0].Type = "fancy"
	issues := Validate(s)
	if !issueAt(t, issues, config.SeverityWarning, "unknown type") {
		t.Fatalf("no unknown-type warning in %v", issues)
	}
}

func TestValidateBadRange(t *testing.T) {
	t.Parallel()
	s := cleanSet()
	s.Variables[1].Range = "[60,12]"
	issues := Validate(s)
	if !issueAt(t, issues, config.SeverityWarning, "unparseable range") {
		t.Fatalf("no range warning in %v", issues)
	}
}

func TestValidateSurvival(t *testing.T) {
	t.Parallel()

	t.Run("role_on_non_date", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Variables[1].Role = RoleEvent
		if !issueAt(t, Validate(s), config.SeverityError, "non-date") {
			t.Fatalf("no error for role on continuous variable")
		}
	})

	t.Run("unknown_anchor", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Variables[3].Anchor = "nope"
		if !issueAt(t, Validate(s), config.SeverityError, "not a variable") {
			t.Fatalf("no error for unknown anchor")
		}
	})

	t.Run("anchor_without_entry_role", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Variables[3].Anchor = "sex"
		if !issueAt(t, Validate(s), config.SeverityError, "entry role") {
			t.Fatalf("no error for non-entry anchor")
		}
	})

	t.Run("missing_anchor_warns", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Variables[3].Anchor = ""
		if !issueAt(t, Validate(s), config.SeverityWarning, "no anchor") {
			t.Fatalf("no warning for missing anchor")
		}
	})

	t.Run("reversed_offsets", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Variables[3].MinOffset, s.Variables[3].MaxOffset = 10, 5
		if !issueAt(t, Validate(s), config.SeverityError, "offsets reversed") {
			t.Fatalf("no error for reversed offsets")
		}
	})

	t.Run("event_prob_out_of_range", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Variables[3].EventProb = 1.5
		if !issueAt(t, Validate(s), config.SeverityError, "event probability") {
			t.Fatalf("no error for event probability 1.5")
		}
	})
}

func TestValidateDerivedDeps(t *testing.T) {
	t.Parallel()
	s := cleanSet()
	s.Variables = append(s.Variables, VariableSpec{
		Name: "ratio", Type: "continuous",
		Derived: &Derivation{Script: "f([weight])", DependsOn: []string{"weight"}},
	})
	s = NewSet(s.Variables, s.Details)
	if !issueAt(t, Validate(s), config.SeverityWarning, "unknown variable") {
		t.Fatalf("no warning for dangling derived dependency")
	}
}

func TestValidateDetails(t *testing.T) {
	t.Parallel()

	t.Run("orphan_row", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Details = append(s.Details, DetailRow{Variable: "ghost", Code: "1"})
		if !issueAt(t, Validate(s), config.SeverityWarning, "unknown variable") {
			t.Fatalf("no warning for orphan detail row")
		}
	})

	t.Run("proportion_out_of_range", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Details[0].Proportion = 1.2
		if !issueAt(t, Validate(s), config.SeverityError, "outside [0,1]") {
			t.Fatalf("no error for proportion 1.2")
		}
	})

	t.Run("sum_off_renormalizes", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Details[0].Proportion = 0.2
		s.Details[1].Proportion = 0.2
		if !issueAt(t, Validate(s), config.SeverityWarning, "renormalized") {
			t.Fatalf("no renormalization warning")
		}
	})

	t.Run("sum_within_tolerance_silent", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Details[0].Proportion = 0.5002
		if issues := Validate(s); issueAt(t, issues, config.SeverityWarning, "renormalized") {
			t.Fatalf("tolerated deviation still warned: %v", issues)
		}
	})

	t.Run("bad_contamination_range", func(t *testing.T) {
		t.Parallel()
		s := cleanSet()
		s.Details = append(s.Details, DetailRow{
			Variable: "bmi", Code: "contam_above", Value: "(60,", Proportion: 0.01, HasProp: true,
		})
		if !issueAt(t, Validate(s), config.SeverityWarning, "contamination rule") {
			t.Fatalf("no warning for unparseable contamination range")
		}
	})
}
