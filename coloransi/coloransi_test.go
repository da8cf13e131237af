package coloransi

import "testing"

func TestForegroundPalette(t *testing.T) {
	if got, want := Foreground(Red, "ff"), "\033[31mff\033[0m"; got != want {
		t.Errorf("Foreground(Red) = %q, want %q", got, want)
	}
	if got, want := Foreground(BrightBlack, "."), "\033[90m.\033[0m"; got != want {
		t.Errorf("Foreground(BrightBlack) = %q, want %q", got, want)
	}
}

func TestColorBackgroundOffset(t *testing.T) {
	// Background codes sit 10 above the foreground palette.
	if got, want := Color(Yellow, Black, "4a"), "\033[33m\033[40m4a\033[0m"; got != want {
		t.Errorf("Color(Yellow, Black) = %q, want %q", got, want)
	}
}

func TestForegroundRGB(t *testing.T) {
	if got, want := Foreground(RGB(255, 140, 0), "x"), "\033[38;2;255;140;0mx\033[0m"; got != want {
		t.Errorf("Foreground(RGB) = %q, want %q", got, want)
	}
}
