package metadata

import (
	"fmt"
	"math"
	"strings"

	"synthgen/internal/config"
	"synthgen/internal/dataset"
	"synthgen/internal/notation"
	"synthgen/internal/weights"
)

// Validate lints a loaded (and scope-resolved) Set. It never mutates the
// set. Errors mark metadata a run should not start from; warnings mark spots
// where generation will degrade to a fallback.
func Validate(s *Set) []config.Issue {
	var issues []config.Issue

	seen := map[string]int{}
	for i, v := range s.Variables {
		path := fmt.Sprintf("variables[%d]", i)

		if first, dup := seen[v.Name]; dup {
			issues = append(issues, config.Issue{
				Severity: config.SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("duplicate variable %q (first at variables[%d]); only the first is generated", v.Name, first),
			})
		} else {
			seen[v.Name] = i
		}

		if _, ok := v.Kind(); !ok {
			issues = append(issues, config.Issue{
				Severity: config.SeverityWarning,
				Path:     path + ".type",
				Message:  fmt.Sprintf("unknown type %q for %q; variable will be skipped", v.Type, v.Name),
			})
		}

		issues = append(issues, validateRange(path, &v)...)
		issues = append(issues, validateSurvival(s, path, &v)...)
		issues = append(issues, validateDerived(s, path, &v)...)
		issues = append(issues, validateDetails(s, &v)...)
	}

	for i, d := range s.Details {
		if _, ok := s.Variable(d.Variable); !ok {
			issues = append(issues, config.Issue{
				Severity: config.SeverityWarning,
				Path:     fmt.Sprintf("details[%d].variable", i),
				Message:  fmt.Sprintf("detail row for unknown variable %q; row ignored", d.Variable),
			})
		}
		if d.HasProp && (d.Proportion < 0 || d.Proportion > 1) {
			issues = append(issues, config.Issue{
				Severity: config.SeverityError,
				Path:     fmt.Sprintf("details[%d].proportion", i),
				Message:  fmt.Sprintf("proportion %v outside [0,1] for %q", d.Proportion, d.Variable),
			})
		}
	}

	return issues
}

func validateRange(path string, v *VariableSpec) []config.Issue {
	if v.Range == "" {
		return nil
	}
	kind, _ := v.Kind()
	hint := notation.Numeric
	if kind == dataset.Date {
		hint = notation.DateHint
	}
	if _, err := notation.Parse(v.Range, hint); err != nil {
		return []config.Issue{{
			Severity: config.SeverityWarning,
			Path:     path + ".range",
			Message:  fmt.Sprintf("unparseable range for %q: %v; default population applies", v.Name, err),
		}}
	}
	return nil
}

func validateSurvival(s *Set, path string, v *VariableSpec) []config.Issue {
	if v.Role == "" {
		return nil
	}
	var issues []config.Issue
	if kind, ok := v.Kind(); ok && kind != dataset.Date {
		issues = append(issues, config.Issue{
			Severity: config.SeverityError,
			Path:     path + ".role",
			Message:  fmt.Sprintf("role %q on non-date variable %q", v.Role, v.Name),
		})
	}
	if v.Role != RoleEntry {
		anchor := v.Anchor
		if anchor == "" {
			issues = append(issues, config.Issue{
				Severity: config.SeverityWarning,
				Path:     path + ".anchor",
				Message:  fmt.Sprintf("%q has role %q but no anchor; the entry column of the set is assumed", v.Name, v.Role),
			})
		} else if av, ok := s.Variable(anchor); !ok {
			issues = append(issues, config.Issue{
				Severity: config.SeverityError,
				Path:     path + ".anchor",
				Message:  fmt.Sprintf("anchor %q of %q is not a variable", anchor, v.Name),
			})
		} else if av.Role != RoleEntry {
			issues = append(issues, config.Issue{
				Severity: config.SeverityError,
				Path:     path + ".anchor",
				Message:  fmt.Sprintf("anchor %q of %q does not carry the entry role", anchor, v.Name),
			})
		}
		if v.MaxOffset < v.MinOffset {
			issues = append(issues, config.Issue{
				Severity: config.SeverityError,
				Path:     path + ".max_offset",
				Message:  fmt.Sprintf("offsets reversed for %q: min %d, max %d", v.Name, v.MinOffset, v.MaxOffset),
			})
		}
		if v.EventProb < 0 || v.EventProb > 1 {
			issues = append(issues, config.Issue{
				Severity: config.SeverityError,
				Path:     path + ".event_prob",
				Message:  fmt.Sprintf("event probability %v outside [0,1] for %q", v.EventProb, v.Name),
			})
		}
	}
	return issues
}

func validateDerived(s *Set, path string, v *VariableSpec) []config.Issue {
	if v.Derived == nil {
		return nil
	}
	var issues []config.Issue
	for _, dep := range v.Derived.DependsOn {
		if _, ok := s.Variable(dep); !ok {
			issues = append(issues, config.Issue{
				Severity: config.SeverityWarning,
				Path:     path + ".script",
				Message:  fmt.Sprintf("derived %q depends on unknown variable %q", v.Name, dep),
			})
		}
	}
	return issues
}

// validateDetails runs each variable's rows through the proportion resolver,
// so the linter and the build judge sums with the same tolerance.
func validateDetails(s *Set, v *VariableSpec) []config.Issue {
	rows := s.WeightRows(v.Name)
	if len(rows) == 0 {
		return nil
	}
	resolved, err := weights.Resolve(rows)
	if err != nil {
		return []config.Issue{{
			Severity: config.SeverityError,
			Path:     "details." + v.Name,
			Message:  err.Error(),
		}}
	}
	var issues []config.Issue
	if resolved.Rescaled {
		issues = append(issues, config.Issue{
			Severity: config.SeverityWarning,
			Path:     "details." + v.Name,
			Message: fmt.Sprintf("proportions sum to %s, not 1.0; they will be renormalized",
				trimFloat(resolved.DeclaredSum)),
		})
	}
	for _, rule := range resolved.Contam {
		if strings.TrimSpace(rule.Value) == "" {
			continue
		}
		kind, _ := v.Kind()
		hint := notation.Numeric
		if kind == dataset.Date {
			hint = notation.DateHint
		}
		if _, perr := notation.Parse(rule.Value, hint); perr != nil {
			issues = append(issues, config.Issue{
				Severity: config.SeverityWarning,
				Path:     "details." + v.Name,
				Message:  fmt.Sprintf("contamination rule %q has unparseable range %q; generic implausible values apply", rule.Code, rule.Value),
			})
		}
	}
	return issues
}

func trimFloat(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.1f", f)
	}
	return fmt.Sprintf("%g", f)
}
