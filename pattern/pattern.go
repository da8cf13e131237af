// Package pattern implements byte-signature parsing and scanning over
// process memory, plus the address resolution steps that turn a match
// into a usable static address (RIP-relative displacement decoding and
// pointer dereferencing).
//
// Signatures use the conventional text form: hex byte tokens separated
// by whitespace, with "?" or "??" marking wildcard positions, e.g.
//
//	48 8b 0d ?? ?? ?? ?? 99 33 c2
package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"soulmem/process"
)

// Parse compiles a text signature into an AOB. Tokens must be either a
// wildcard ("?" or "??") or exactly two hex digits; anything else is an
// error, as a silently skipped token would shift every later byte of
// the signature.
func Parse(signature string) (process.AOB, error) {
	fields := strings.Fields(signature)
	if len(fields) == 0 {
		return process.AOB{}, fmt.Errorf("empty pattern")
	}

	patternBytes := make([]byte, 0, len(fields))
	maskBytes := make([]byte, 0, len(fields))

	for _, tok := range fields {
		if tok == "?" || tok == "??" {
			patternBytes = append(patternBytes, 0x00)
			maskBytes = append(maskBytes, 0x00)
			continue
		}

		if len(tok) != 2 {
			return process.AOB{}, fmt.Errorf("invalid pattern token %q: want two hex digits or a wildcard", tok)
		}
		value, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return process.AOB{}, fmt.Errorf("invalid pattern token %q: %w", tok, err)
		}

		patternBytes = append(patternBytes, byte(value))
		maskBytes = append(maskBytes, 0xFF)
	}

	return process.AOB{Pattern: patternBytes, Mask: maskBytes}, nil
}

// MustParse is Parse for signatures known at compile time. It panics
// on a malformed signature and is meant for package-level presets.
func MustParse(signature string) process.AOB {
	aob, err := Parse(signature)
	if err != nil {
		panic(err)
	}
	return aob
}

// Format renders an AOB back into its canonical text form, lowercase
// hex with "??" wildcards.
func Format(aob process.AOB) string {
	var sb strings.Builder
	for i := range aob.Pattern {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if aob.Mask[i] == 0x00 {
			sb.WriteString("??")
		} else {
			fmt.Fprintf(&sb, "%02x", aob.Pattern[i])
		}
	}
	return sb.String()
}

// Find returns the lowest index in data where the pattern matches, or
// -1 when it does not occur.
func Find(data []byte, aob process.AOB) int {
	if !aob.IsValid() || len(data) < len(aob.Pattern) {
		return -1
	}

	for i := 0; i+len(aob.Pattern) <= len(data); i++ {
		if matchAt(data, i, aob) {
			return i
		}
	}
	return -1
}

// FindAll returns every index in data where the pattern matches, in
// ascending order. Matches may overlap.
func FindAll(data []byte, aob process.AOB) []int {
	if !aob.IsValid() || len(data) < len(aob.Pattern) {
		return nil
	}

	var matches []int
	for i := 0; i+len(aob.Pattern) <= len(data); i++ {
		if matchAt(data, i, aob) {
			matches = append(matches, i)
		}
	}
	return matches
}

func matchAt(data []byte, offset int, aob process.AOB) bool {
	for j := range aob.Pattern {
		if aob.Mask[j] == 0xFF && data[offset+j] != aob.Pattern[j] {
			return false
		}
	}
	return true
}
