// Package extid produces externally-stable opaque tokens for entity IDs.
//
// A token is the base64 (raw URL alphabet) encoding of a big-endian uint64
// whose high byte tags the entity kind and whose low 56 bits carry the
// numeric ID. Upstream IDs are 8 base-36 digits, so they always fit. Tokens
// round-trip losslessly per kind and are the only identifier shape that
// leaves the process.
package extid

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

// Kind tags the entity type inside a token.
type Kind uint8

// Tag values are part of the external contract and must never be renumbered.
const (
	KindGame     Kind = 0x01
	KindCategory Kind = 0x02
	KindLevel    Kind = 0x03
	KindUser     Kind = 0x04
	KindRun      Kind = 0x05
)

// idMask selects the 56 bits available for the numeric ID.
const idMask = uint64(1)<<56 - 1

// Sentinel kinds for token errors.
var (
	ErrBadToken    = errors.New("malformed external id token")
	ErrUnknownKind = errors.New("unknown entity kind tag")
	ErrZeroID      = errors.New("external id token carries a zero id")
	ErrIDRange     = errors.New("id does not fit in 56 bits")
)

func (k Kind) String() string {
	switch k {
	case KindGame:
		return "game"
	case KindCategory:
		return "category"
	case KindLevel:
		return "level"
	case KindUser:
		return "user"
	case KindRun:
		return "run"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) valid() bool {
	return k >= KindGame && k <= KindRun
}

// Make builds the opaque token for (id, kind).
func Make(id uint64, kind Kind) (string, error) {
	if !kind.valid() {
		return "", fmt.Errorf("%v: %w", kind, ErrUnknownKind)
	}
	if id == 0 {
		return "", ErrZeroID
	}
	if id&^idMask != 0 {
		return "", fmt.Errorf("%d: %w", id, ErrIDRange)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(kind)<<56|id)
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}

// Parse recovers (id, kind) from a token produced by Make.
func Parse(token string) (uint64, Kind, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, 0, fmt.Errorf("%q: %w", token, ErrBadToken)
	}
	if len(raw) != 8 {
		return 0, 0, fmt.Errorf("%q: %w", token, ErrBadToken)
	}
	packed := binary.BigEndian.Uint64(raw)
	kind := Kind(packed >> 56)
	id := packed & idMask
	if !kind.valid() {
		return 0, 0, fmt.Errorf("%q: %w", token, ErrUnknownKind)
	}
	if id == 0 {
		return 0, 0, fmt.Errorf("%q: %w", token, ErrZeroID)
	}
	return id, kind, nil
}
