package pipeline

import "strings"

// matchGlob reports whether path matches pattern, supporting the subset
// of glob syntax spec.md §4.8 names for the exclude plugins:
//
//	*    matches any run of characters within one path segment
//	**   matches any run of characters across segment boundaries
//	^/   (as a pattern prefix) anchors the match to the start of path
//	     instead of allowing it to match any trailing suffix segment
//
// A pattern with no anchor matches if it matches path in full OR matches
// any path suffix starting at a segment boundary (so "*.jcov" matches
// "a/b/x.jcov" as well as "x.jcov"), mirroring the glob exclude lists
// used by real module-linker resource filters.
func matchGlob(pattern, path string) bool {
	anchored := false
	if strings.HasPrefix(pattern, "^/") {
		anchored = true
		pattern = pattern[2:]
	}
	if anchored {
		return globMatch(pattern, path)
	}
	if globMatch(pattern, path) {
		return true
	}
	segs := strings.Split(path, "/")
	for i := 1; i < len(segs); i++ {
		if globMatch(pattern, strings.Join(segs[i:], "/")) {
			return true
		}
	}
	return false
}

// globMatch implements '*' and '**' glob matching over '/'-separated
// paths via a small recursive matcher (no backtracking library needed
// at this grammar's size).
func globMatch(pattern, s string) bool {
	return globMatchRec(pattern, s)
}

func globMatchRec(pattern, s string) bool {
	for {
		if pattern == "" {
			return s == ""
		}
		if strings.HasPrefix(pattern, "**") {
			rest := pattern[2:]
			rest = strings.TrimPrefix(rest, "/")
			if rest == "" {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatchRec(rest, s[i:]) {
					return true
				}
			}
			return false
		}
		if strings.HasPrefix(pattern, "*") {
			rest := pattern[1:]
			for i := 0; i <= len(s); i++ {
				if i > 0 && s[i-1] == '/' {
					break
				}
				if globMatchRec(rest, s[i:]) {
					return true
				}
			}
			return false
		}
		if s == "" {
			return false
		}
		if pattern[0] != s[0] {
			return false
		}
		pattern = pattern[1:]
		s = s[1:]
	}
}

// matchAny reports whether path matches any of the comma-separated
// globs in csv.
func matchAny(csv, path string) bool {
	for _, pat := range strings.Split(csv, ",") {
		pat = strings.TrimSpace(pat)
		if pat == "" {
			continue
		}
		if matchGlob(pat, path) {
			return true
		}
	}
	return false
}
