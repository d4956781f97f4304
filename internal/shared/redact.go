package shared

import (
	"regexp"
)

const maskedPlaceholder = "[MASKED]"

// imeiPattern matches bare 15-digit runs, which in this tool are almost
// always IMEI serials. The lookaround-free form uses digit-boundary groups
// since Go's regexp has no lookbehind.
var imeiPattern = regexp.MustCompile(`(^|[^0-9])([0-9]{15})([^0-9]|$)`)

// MaskIMEI replaces 15-digit serial runs in s with a masked form that keeps
// the last four digits. Reports carry the full serial; logs must not.
func MaskIMEI(s string) string {
	if s == "" {
		return s
	}
	return imeiPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := imeiPattern.FindStringSubmatch(match)
		serial := sub[2]
		return sub[1] + "***********" + serial[11:] + sub[3]
	})
}

// MaskValue fully masks a value when its key names a device serial.
func MaskValue(key, value string) string {
	switch key {
	case "imei", "serial", "tac":
		return maskedPlaceholder
	}
	return value
}
