// Package base36 implements the fixed 8-character base-36 identifier
// encoding used by the upstream service.
//
// Every persisted upstream ID is exactly eight lowercase base-36 digits.
// Decoded values fit comfortably in a uint64 (36^8 < 2^42), which leaves the
// high bits free for the external-token tagging scheme in pkg/extid.
package base36

import (
	"errors"
	"fmt"
	"strings"
)

// Length is the exact digit count of an encoded identifier.
const Length = 8

const base = 36

// Max is the largest value representable in Length base-36 digits.
const Max = uint64(base*base*base*base)*uint64(base*base*base*base) - 1 // 36^8 - 1

// Sentinel kinds for decode and encode errors.
var (
	ErrLength = errors.New("base36 id must be exactly 8 characters")
	ErrDigit  = errors.New("base36 id contains a non-base-36 character")
	ErrZero   = errors.New("base36 id decodes to zero, which is reserved for absent")
	ErrRange  = errors.New("value does not fit in 8 base-36 digits")
)

// Decode converts an 8-character base-36 string to its numeric value.
// It rejects zero: a persisted entity ID is guaranteed non-zero, and zero is
// reserved to mean "absent". Use DecodeAllowZero for optional fields.
func Decode(s string) (uint64, error) {
	n, err := DecodeAllowZero(s)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%q: %w", s, ErrZero)
	}
	return n, nil
}

// DecodeAllowZero is Decode without the non-zero requirement.
func DecodeAllowZero(s string) (uint64, error) {
	if len(s) != Length {
		return 0, fmt.Errorf("%q: %w", s, ErrLength)
	}
	var n uint64
	for _, c := range []byte(s) {
		d, ok := digitValue(c)
		if !ok {
			return 0, fmt.Errorf("%q: %w", s, ErrDigit)
		}
		n = n*base + uint64(d)
	}
	return n, nil
}

// Encode converts a numeric ID back to its canonical 8-character lowercase
// form. Values above Max cannot round-trip and are rejected.
func Encode(n uint64) (string, error) {
	if n > Max {
		return "", fmt.Errorf("%d: %w", n, ErrRange)
	}
	var buf [Length]byte
	for i := Length - 1; i >= 0; i-- {
		buf[i] = digitChar(byte(n % base))
		n /= base
	}
	return string(buf[:]), nil
}

// MustEncode is Encode for values already known to be in range, such as IDs
// produced by Decode. It panics on out-of-range input.
func MustEncode(n uint64) string {
	s, err := Encode(n)
	if err != nil {
		panic(err)
	}
	return s
}

func digitValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'z':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'Z':
		// The upstream emits lowercase but tolerates either on input.
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

func digitChar(d byte) byte {
	if d < 10 {
		return '0' + d
	}
	return 'a' + d - 10
}

// Normalize re-encodes s to canonical lowercase form, validating it in the
// process.
func Normalize(s string) (string, error) {
	n, err := Decode(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return MustEncode(n), nil
}
