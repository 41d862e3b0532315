package pattern

import "unicode"

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// ValidCamelCase reports whether text can be read as a camel-case
// abbreviation: Java identifier characters only, and at least one upper-case
// letter after a lower-case start or two after an upper-case start.
func ValidCamelCase(text string) bool {
	if text == "" {
		return false
	}
	upper := 0
	lowerStart := false
	for i, r := range []rune(text) {
		if i == 0 {
			if !isIdentStart(r) {
				return false
			}
		} else if !isIdentPart(r) {
			return false
		}
		if unicode.IsUpper(r) {
			upper++
		}
		if i == 0 {
			lowerStart = upper == 0
		}
	}
	if lowerStart {
		return upper > 0
	}
	return upper > 1
}

// camelCaseMatch matches pattern against name part by part: every upper-case
// letter or digit of the pattern starts a new part that must begin at an
// upper-case letter or digit of name, and the lower-case letters after it
// must prefix that part. The first character and every upper-case letter
// must match exactly. Trailing parts of name may be left over.
func camelCaseMatch(pattern, name []rune) bool {
	if len(pattern) == 0 {
		return true
	}
	if len(name) == 0 || pattern[0] != name[0] {
		return false
	}

	p, n := 0, 0
	for {
		p++
		n++
		if p == len(pattern) {
			return true
		}
		if n == len(name) {
			return false
		}
		pc := pattern[p]
		if pc == name[n] {
			continue
		}
		// a mismatch is only allowed at the start of the next pattern part
		if !unicode.IsUpper(pc) && !unicode.IsDigit(pc) {
			return false
		}
		// skip the rest of the current name part
	skip:
		for {
			if n == len(name) {
				return false
			}
			nc := name[n]
			switch {
			case unicode.IsDigit(nc):
				if pc == nc {
					break skip
				}
				n++
			case isIdentPart(nc) && !unicode.IsUpper(nc):
				n++
			case pc != nc:
				return false
			default:
				break skip
			}
		}
	}
}
