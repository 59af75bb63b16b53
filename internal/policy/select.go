package policy

// PickNonRepeating returns the first candidate not said verbatim in recent,
// or the first candidate when every one was already used.
func PickNonRepeating(candidates []string, recent []string) string {
	if len(candidates) == 0 {
		return ""
	}
	used := make(map[string]struct{}, len(recent))
	for _, r := range recent {
		used[r] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := used[c]; !ok {
			return c
		}
	}
	return candidates[0]
}

// without drops candidates containing any of the phrases; the input is kept if nothing would remain.
func without(candidates []string, phrases ...string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !containsAnyRaw(c, phrases) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return candidates
	}
	return out
}
