package roster

import "strings"

// NaturalCompare compares strings treating runs of digits as numbers, so "25-a" < "25-b"
// and "9" < "10". Digit runs that compare equal numerically fall back to length, then bytes.
func NaturalCompare(a, b string) int {
	for a != "" && b != "" {
		ad, bd := isDigit(a[0]), isDigit(b[0])
		switch {
		case ad && bd:
			na, ra := splitRun(a, true)
			nb, rb := splitRun(b, true)
			if c := compareDigits(na, nb); c != 0 {
				return c
			}
			a, b = ra, rb
		case !ad && !bd:
			ta, ra := splitRun(a, false)
			tb, rb := splitRun(b, false)
			if c := strings.Compare(ta, tb); c != 0 {
				return c
			}
			a, b = ra, rb
		case ad:
			return -1
		default:
			return 1
		}
	}
	return len(a) - len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitRun(s string, digits bool) (run, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

func compareDigits(a, b string) int {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		return len(ta) - len(tb)
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	return len(a) - len(b)
}
