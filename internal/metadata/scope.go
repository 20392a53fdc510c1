package metadata

import (
	"fmt"

	"synthgen/internal/config"
	"synthgen/internal/notation"
)

// ForScope rewrites a multi-scope metadata set into the single-scope view
// one generation run works on: variable names, detail foreign keys, anchor
// references and derived dependencies all go through the scoped-name
// resolution. Variables whose name cannot be resolved for the scope are
// dropped with a warning issue; their detail rows go with them. The input
// set is not mutated.
func ForScope(s *Set, scope string) (*Set, []config.Issue) {
	var issues []config.Issue

	rename := map[string]string{}
	vars := make([]VariableSpec, 0, len(s.Variables))
	for i, v := range s.Variables {
		name, err := notation.ScopedName(v.Name, scope)
		if err != nil {
			issues = append(issues, config.Issue{
				Severity: config.SeverityWarning,
				Path:     fmt.Sprintf("variables[%d].name", i),
				Message:  fmt.Sprintf("no name for scope %q in %q; variable dropped", scope, v.Name),
			})
			continue
		}
		rename[v.Name] = name
		nv := v
		nv.Name = name
		if nv.Derived != nil {
			deps := make([]string, len(nv.Derived.DependsOn))
			for j, dep := range nv.Derived.DependsOn {
				deps[j] = resolveRef(dep, scope)
			}
			nv.Derived = &Derivation{Script: nv.Derived.Script, DependsOn: deps}
		}
		if nv.Anchor != "" {
			nv.Anchor = resolveRef(nv.Anchor, scope)
		}
		vars = append(vars, nv)
	}

	details := make([]DetailRow, 0, len(s.Details))
	for _, d := range s.Details {
		name, ok := rename[d.Variable]
		if !ok {
			// Either the variable was dropped above or the FK itself is
			// qualified; try resolving it directly.
			resolved, err := notation.ScopedName(d.Variable, scope)
			if err != nil {
				continue
			}
			name = resolved
		}
		nd := d
		nd.Variable = name
		details = append(details, nd)
	}

	return NewSet(vars, details), issues
}

// resolveRef resolves a possibly-qualified reference, falling back to the
// raw string when it does not resolve; the linter reports dangling ones.
func resolveRef(ref, scope string) string {
	if name, err := notation.ScopedName(ref, scope); err == nil {
		return name
	}
	return ref
}
