// Package coloransi emits the ANSI escape sequences hexdump colors its
// output with: foreground and foreground-over-background wrapping for
// the classic 8-color palette plus 24-bit RGB codes. Log tags use the
// gologger coloransi package; this one exists only for dump bodies.
package coloransi

import "fmt"

// ColorCode is an ANSI palette code in the low byte or a 24-bit RGB
// color in the upper three bytes. RGB values keep the low byte zero so
// the two encodings never collide.
type ColorCode uint32

// Palette codes used by the dump renderers.
const (
	Black  ColorCode = 30
	Red    ColorCode = 31
	Green  ColorCode = 32
	Yellow ColorCode = 33
	Cyan   ColorCode = 36
	White  ColorCode = 37

	// Bright variants sit 60 above their base code.
	BrightBlack ColorCode = Black + 60

	backgroundOffset ColorCode = 10
	rgbMask          ColorCode = 0xFFFFFF00
)

// RGB builds a 24-bit color code.
func RGB(r, g, b uint8) ColorCode {
	return ColorCode(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8)
}

func (c ColorCode) isRGB() bool {
	return c&rgbMask != 0
}

func (c ColorCode) rgb() (uint32, uint32, uint32) {
	return uint32(c>>24) & 0xff, uint32(c>>16) & 0xff, uint32(c>>8) & 0xff
}

const reset = "\033[0m"

func foregroundSeq(c ColorCode) string {
	if c.isRGB() {
		r, g, b := c.rgb()
		return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
	}
	return fmt.Sprintf("\033[%dm", c)
}

func backgroundSeq(c ColorCode) string {
	if c.isRGB() {
		r, g, b := c.rgb()
		return fmt.Sprintf("\033[48;2;%d;%d;%dm", r, g, b)
	}
	return fmt.Sprintf("\033[%dm", c+backgroundOffset)
}

// Foreground wraps text in the escape sequence for fg, reset at the end.
func Foreground(fg ColorCode, text string) string {
	return foregroundSeq(fg) + text + reset
}

// Color wraps text in fg over bg, reset at the end.
func Color(fg, bg ColorCode, text string) string {
	return foregroundSeq(fg) + backgroundSeq(bg) + text + reset
}
