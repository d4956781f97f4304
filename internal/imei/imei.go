// Package imei validates IMEI serial numbers. Validation is a pure
// predicate: callers branch on the boolean, nothing is raised.
package imei

// Valid reports whether s is a well-formed 15-digit IMEI with a correct
// Luhn checksum. Only ASCII digits are accepted; locale digit forms fail.
func Valid(s string) bool {
	if len(s) != 15 {
		return false
	}
	sum := 0
	for i := 0; i < 15; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}
