package units

import "testing"

func TestIsValid(t *testing.T) {
	for _, u := range ValidUnits {
		if !IsValid(u) {
			t.Errorf("IsValid(%q) = false", u)
		}
	}
	for _, u := range []string{"", "px", "m/s", "PXPS"} {
		if IsValid(u) {
			t.Errorf("IsValid(%q) = true", u)
		}
	}
}

func TestConvertVelocity(t *testing.T) {
	cases := []struct {
		name   string
		v      float64
		pitch  float64
		target string
		want   float64
	}{
		{"uncalibrated stays in px", 2.0, 0, UMPS, 2.0},
		{"negative pitch stays in px", 2.0, -1, UMPS, 2.0},
		{"pxps passthrough", 2.0, 6.5, PXPS, 2.0},
		{"micrometres", 2.0, 6.5, UMPS, 13.0},
		{"millimetres", 2000.0, 6.5, MMPS, 13.0},
		{"unknown unit stays in px", 2.0, 6.5, "furlongs", 2.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConvertVelocity(tc.v, tc.pitch, tc.target); got != tc.want {
				t.Errorf("ConvertVelocity(%v, %v, %q) = %v, want %v", tc.v, tc.pitch, tc.target, got, tc.want)
			}
		})
	}
}
