package validate

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxQuantity caps a single line so totals stay far from overflow.
const MaxQuantity = 1000

var (
	reID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reQ  = regexp.MustCompile(`^[A-Za-z0-9 _'.,/&-]{1,50}$`)
)

// ID validates a simple resource identifier (book/buyer/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Q validates a catalog search keyword: trims, enforces allowed characters and max length.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Quantity reports whether n is an acceptable line quantity.
func Quantity(n int) bool { return n >= 1 && n <= MaxQuantity }

// Limit parses a list limit, clamping to [1,max] and falling back to def.
func Limit(s string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	} // clamp to avoid abuse
	return n
}
