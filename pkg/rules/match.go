package rules

// Match returns the first usable rule whose datafile is exactly path and
// whose block starts at off. An empty path never matches.
func Match(rules []Rule, path string, off int64) (Rule, bool) {
	if path == "" {
		return Rule{}, false
	}
	for _, r := range rules {
		if !r.Usable() {
			continue
		}
		if r.Offset() == off && r.Path == path {
			return r, true
		}
	}
	return Rule{}, false
}
