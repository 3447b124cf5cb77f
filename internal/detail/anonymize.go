package detail

import "strings"

// MaskReviewer hides the middle of a reviewer identity for display.
// When the identity has a non-empty local part before an '@' (e-mail style),
// that local part is the base string; otherwise the whole identity is.
// The visible form is the first two characters, a literal "***", and the
// characters from index five on. Indices 2-4 are dropped outright, not
// replaced one for one, so a base shorter than five characters gets no tail
// at all ("ab" comes out as "ab***"). This fixed-offset slicing is how
// reviewer names have always rendered; it is preserved as-is rather than
// normalized for short names.
func MaskReviewer(identity string) string {
	s := identity
	if i := strings.IndexByte(identity, '@'); i > 0 {
		s = identity[:i]
	}
	r := []rune(s)
	head := r
	if len(r) > 2 {
		head = r[:2]
	}
	var tail []rune
	if len(r) > 5 {
		tail = r[5:]
	}
	return string(head) + "***" + string(tail)
}
