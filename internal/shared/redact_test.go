package shared

import "testing"

func TestMaskIMEI(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare serial", "490154203237518", "***********7518"},
		{"embedded", "imei=490154203237518 ok", "imei=***********7518 ok"},
		{"fourteen digits untouched", "49015420323751", "49015420323751"},
		{"sixteen digits untouched", "4901542032375188", "4901542032375188"},
		{"empty", "", ""},
		{"no digits", "hello", "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaskIMEI(tc.in); got != tc.want {
				t.Fatalf("MaskIMEI(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMaskValue(t *testing.T) {
	if got := MaskValue("imei", "490154203237518"); got != "[MASKED]" {
		t.Fatalf("imei value not masked: %q", got)
	}
	if got := MaskValue("model", "iPhone 15"); got != "iPhone 15" {
		t.Fatalf("model value should pass through: %q", got)
	}
}
