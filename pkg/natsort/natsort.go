// Package natsort orders display labels the way an operator expects to read
// them: case-insensitively, with embedded digit runs compared by magnitude.
package natsort

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Compare returns a negative number when a sorts before b, a positive number
// when it sorts after, and zero when they are equal ignoring case.
//
// Digit runs compare by run length first and then lexicographically, so
// "VM9" < "VM10" and "VM10" > "VM2". Leading zeros count towards the length.
func Compare(a, b string) int {
	for a != "" && b != "" {
		ra, wa := utf8.DecodeRuneInString(a)
		rb, wb := utf8.DecodeRuneInString(b)

		if isDigit(ra) && isDigit(rb) {
			da := digitRun(a)
			db := digitRun(b)
			if len(da) != len(db) {
				return len(da) - len(db)
			}
			if da != db {
				if da < db {
					return -1
				}
				return 1
			}
			a, b = a[len(da):], b[len(db):]
			continue
		}

		la, lb := unicode.ToLower(ra), unicode.ToLower(rb)
		if la != lb {
			if la < lb {
				return -1
			}
			return 1
		}
		a, b = a[wa:], b[wb:]
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// Less reports whether a sorts strictly before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort orders labels in place. Equal labels keep their relative order.
func Sort(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		return Compare(labels[i], labels[j]) < 0
	})
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func digitRun(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
