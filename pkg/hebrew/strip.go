// Package hebrew provides pure text transforms for Hebrew script,
// chiefly the removal of nikud and taamim combining marks.
package hebrew

import "strings"

// isMark reports whether r is a Hebrew combining mark: cantillation
// (U+0591..U+05AF), vowel points (U+05B0..U+05BD), plus the isolated
// points U+05BF, U+05C1, U+05C2, U+05C4, U+05C5 and U+05C7.
func isMark(r rune) bool {
	switch {
	case r >= 0x0591 && r <= 0x05AF:
		return true
	case r >= 0x05B0 && r <= 0x05BD:
		return true
	case r == 0x05BF:
		return true
	case r == 0x05C1 || r == 0x05C2:
		return true
	case r == 0x05C4 || r == 0x05C5:
		return true
	case r == 0x05C7:
		return true
	}
	return false
}

// HasDiacritics reports whether s contains any Hebrew combining mark.
func HasDiacritics(s string) bool {
	for _, r := range s {
		if isMark(r) {
			return true
		}
	}
	return false
}

// Strip removes every Hebrew combining mark from s. The consonantal
// text is left untouched, so Strip is idempotent and never grows the
// string. Returns s unchanged (no allocation) when it carries no marks.
func Strip(s string) string {
	if !HasDiacritics(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isMark(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
