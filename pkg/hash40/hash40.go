// Package hash40 implements the 40-bit hashed identifiers used as field and
// path keys throughout param files.
//
// A Hash40 packs a CRC-32 (IEEE) digest of a name into the low 32 bits and
// the byte length of the name into the next 8 bits:
//
//	hash40("stage") = (5 << 32) | crc32("stage")
//
// The engine stores these in place of field names, so every tool that talks
// to param files must produce bit-identical values for the same name.
package hash40

import (
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"
)

// Hash40 is a hashed identifier. Only the low 40 bits are significant.
type Hash40 uint64

// Compute hashes a name into its Hash40 identifier.
func Compute(name string) Hash40 {
	return Hash40(uint64(len(name)&0xff)<<32 | uint64(crc32.ChecksumIEEE([]byte(name))))
}

// Crc returns the CRC-32 digest portion.
func (h Hash40) Crc() uint32 {
	return uint32(h)
}

// Len returns the name length portion.
func (h Hash40) Len() uint8 {
	return uint8(h >> 32)
}

// String renders the raw hex form, e.g. "0x0590a4b771".
func (h Hash40) String() string {
	return fmt.Sprintf("0x%010x", uint64(h))
}

// Table resolves hashes back to canonical names. Implementations are
// read-only from the codec's point of view; a table shared across
// goroutines must be treated as an immutable snapshot.
type Table interface {
	Lookup(Hash40) (string, bool)
}

// ReverseTable is an optional extension for tables that can also map a
// name back to its hash without recomputing it.
type ReverseTable interface {
	Table
	ReverseLookup(name string) (Hash40, bool)
}

// MapTable is an in-memory Table backed by a plain map.
type MapTable map[Hash40]string

// Lookup implements Table.
func (t MapTable) Lookup(h Hash40) (string, bool) {
	name, ok := t[h]
	return name, ok
}

// Add inserts a name keyed by its computed hash and returns that hash.
func (t MapTable) Add(name string) Hash40 {
	h := Compute(name)
	t[h] = name
	return h
}

// labelPrefix marks the fallback rendering of an unresolved hash.
const labelPrefix = "hash40_0x"

// Label returns the resolved name for h, or the "hash40_0x..." fallback
// form when the table has no entry (or is nil). The fallback always parses
// back to the same hash via ParseLabel.
func Label(h Hash40, table Table) string {
	if table != nil {
		if name, ok := table.Lookup(h); ok {
			return name
		}
	}
	return labelPrefix + strconv.FormatUint(uint64(h), 16)
}

// ParseLabel is the inverse of Label. Hex forms ("hash40_0x1f" or "0x1f")
// decode directly; anything else is hashed as a literal name. A hex form
// with bad digits or a value wider than 40 bits fails with ErrInvalidLabel.
func ParseLabel(label string) (Hash40, error) {
	var hexPart string
	switch {
	case strings.HasPrefix(label, labelPrefix):
		hexPart = label[len(labelPrefix):]
	case strings.HasPrefix(label, "0x"):
		hexPart = label[2:]
	default:
		return Compute(label), nil
	}

	v, err := strconv.ParseUint(hexPart, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not valid hex", ErrInvalidLabel, label)
	}
	if v >= 1<<40 {
		return 0, fmt.Errorf("%w: %q exceeds 40 bits", ErrInvalidLabel, label)
	}
	return Hash40(v), nil
}

// Errors
var (
	ErrInvalidLabel = &LabelError{"invalid label"}
)

// LabelError represents a label parsing error
type LabelError struct {
	Message string
}

func (e *LabelError) Error() string {
	return e.Message
}
