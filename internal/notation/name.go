package notation

import "strings"

// ScopedName extracts the variable name to use for one scope from a compound
// specification. A compound holds ";"-separated entries, each one of:
//
//	scope::name   an override for that scope
//	[name]        the scope-agnostic default
//
// Resolution is layered: an exact scope override wins, then the bracketed
// default, then, when the whole string carries no scoping punctuation at all,
// the string itself is the bare name. Anything else is an *Error. One
// specification can this way serve many scopes while any scope overrides the
// default.
func ScopedName(spec, scope string) (string, error) {
	t := strings.TrimSpace(spec)
	if t == "" {
		return "", parseErr(spec, "empty name specification")
	}

	if !strings.ContainsAny(t, ";[") && !strings.Contains(t, "::") {
		return t, nil
	}

	entries := strings.Split(t, ";")
	for _, e := range entries {
		e = strings.TrimSpace(e)
		sc, name, ok := strings.Cut(e, "::")
		if !ok {
			continue
		}
		if strings.TrimSpace(sc) == scope {
			name = strings.TrimSpace(name)
			if name == "" {
				return "", parseErr(spec, "empty name for scope %q", scope)
			}
			return name, nil
		}
	}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if strings.HasPrefix(e, "[") && strings.HasSuffix(e, "]") {
			name := strings.TrimSpace(e[1 : len(e)-1])
			if name == "" {
				return "", parseErr(spec, "empty bracketed default")
			}
			return name, nil
		}
	}
	return "", parseErr(spec, "no entry for scope %q and no default", scope)
}

// RefNames returns the bracketed variable names referenced inside s, in
// order of appearance, duplicates removed. It is how derived-variable
// dependencies are read out of a function reference such as
// "$bmi([weight],[height])".
func RefNames(s string) []string {
	var out []string
	seen := map[string]bool{}
	for {
		i := strings.IndexByte(s, '[')
		if i < 0 {
			return out
		}
		j := strings.IndexByte(s[i:], ']')
		if j < 0 {
			return out
		}
		name := strings.TrimSpace(s[i+1 : i+j])
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
		s = s[i+j+1:]
	}
}
