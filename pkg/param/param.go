// Package param defines the in-memory tree model for param files.
//
// A tree is built from Value nodes: eight scalar kinds, hashed identifiers,
// strings, plus two container kinds. Lists hold anonymous ordered children;
// structs hold (Hash40, child) fields in the order the file stores them,
// which for canonical files is ascending hash order. Values are created by
// the codecs or by the constructor functions here, and mutated through the
// struct/list operations and the path API, which keep the ordering
// invariant intact.
package param

import (
	"fmt"

	"github.com/skadi-tools/paramkit/pkg/hash40"
)

// Kind identifies a node's type. The numeric values match the one-byte
// type tags in the binary format.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindI8
	KindU8
	KindI16
	KindU16
	KindI32
	KindU32
	KindFloat
	KindHash
	KindString
	KindList
	KindStruct
)

// String returns the kind's canonical name as used by the text form.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindI8:
		return "sbyte"
	case KindU8:
		return "byte"
	case KindI16:
		return "short"
	case KindU16:
		return "ushort"
	case KindI32:
		return "int"
	case KindU32:
		return "uint"
	case KindFloat:
		return "float"
	case KindHash:
		return "hash40"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// Field is one named entry of a struct node.
type Field struct {
	Hash  hash40.Hash40
	Value *Value
}

// Value is a single node of a param tree.
type Value struct {
	kind Kind

	boolVal  bool
	intVal   int32
	uintVal  uint32
	floatVal float32
	hashVal  hash40.Hash40
	strVal   string

	listVal   []*Value
	structVal []Field
}

// Errors
var (
	ErrTypeMismatch = &TreeError{"type mismatch"}
	ErrPathNotFound = &TreeError{"path not found"}
)

// TreeError represents a param tree access error
type TreeError struct {
	Message string
}

func (e *TreeError) Error() string {
	return e.Message
}

// ============================================================
// Constructors
// ============================================================

// Bool creates a boolean node.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// I8 creates a signed 8-bit node.
func I8(v int8) *Value {
	return &Value{kind: KindI8, intVal: int32(v)}
}

// U8 creates an unsigned 8-bit node.
func U8(v uint8) *Value {
	return &Value{kind: KindU8, uintVal: uint32(v)}
}

// I16 creates a signed 16-bit node.
func I16(v int16) *Value {
	return &Value{kind: KindI16, intVal: int32(v)}
}

// U16 creates an unsigned 16-bit node.
func U16(v uint16) *Value {
	return &Value{kind: KindU16, uintVal: uint32(v)}
}

// I32 creates a signed 32-bit node.
func I32(v int32) *Value {
	return &Value{kind: KindI32, intVal: v}
}

// U32 creates an unsigned 32-bit node.
func U32(v uint32) *Value {
	return &Value{kind: KindU32, uintVal: v}
}

// Float creates a 32-bit float node.
func Float(v float32) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Hash creates a hash40 node.
func Hash(v hash40.Hash40) *Value {
	return &Value{kind: KindHash, hashVal: v}
}

// Str creates a string node.
func Str(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// List creates a list node with the given children.
func List(children ...*Value) *Value {
	return &Value{kind: KindList, listVal: children}
}

// Struct creates a struct node with the given fields, keeping the order
// given. Use NewStruct plus Set when hash-sorted order should be enforced.
func Struct(fields ...Field) *Value {
	return &Value{kind: KindStruct, structVal: fields}
}

// NewStruct creates an empty struct node.
func NewStruct() *Value {
	return &Value{kind: KindStruct}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the node's kind.
func (v *Value) Kind() Kind {
	return v.kind
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, fmt.Errorf("%w: expected bool, got %s", ErrTypeMismatch, v.kind)
	}
	return v.boolVal, nil
}

// AsI8 returns the signed 8-bit payload.
func (v *Value) AsI8() (int8, error) {
	if v.kind != KindI8 {
		return 0, fmt.Errorf("%w: expected sbyte, got %s", ErrTypeMismatch, v.kind)
	}
	return int8(v.intVal), nil
}

// AsU8 returns the unsigned 8-bit payload.
func (v *Value) AsU8() (uint8, error) {
	if v.kind != KindU8 {
		return 0, fmt.Errorf("%w: expected byte, got %s", ErrTypeMismatch, v.kind)
	}
	return uint8(v.uintVal), nil
}

// AsI16 returns the signed 16-bit payload.
func (v *Value) AsI16() (int16, error) {
	if v.kind != KindI16 {
		return 0, fmt.Errorf("%w: expected short, got %s", ErrTypeMismatch, v.kind)
	}
	return int16(v.intVal), nil
}

// AsU16 returns the unsigned 16-bit payload.
func (v *Value) AsU16() (uint16, error) {
	if v.kind != KindU16 {
		return 0, fmt.Errorf("%w: expected ushort, got %s", ErrTypeMismatch, v.kind)
	}
	return uint16(v.uintVal), nil
}

// AsI32 returns the signed 32-bit payload.
func (v *Value) AsI32() (int32, error) {
	if v.kind != KindI32 {
		return 0, fmt.Errorf("%w: expected int, got %s", ErrTypeMismatch, v.kind)
	}
	return v.intVal, nil
}

// AsU32 returns the unsigned 32-bit payload.
func (v *Value) AsU32() (uint32, error) {
	if v.kind != KindU32 {
		return 0, fmt.Errorf("%w: expected uint, got %s", ErrTypeMismatch, v.kind)
	}
	return v.uintVal, nil
}

// AsFloat returns the 32-bit float payload.
func (v *Value) AsFloat() (float32, error) {
	if v.kind != KindFloat {
		return 0, fmt.Errorf("%w: expected float, got %s", ErrTypeMismatch, v.kind)
	}
	return v.floatVal, nil
}

// AsHash returns the hash40 payload.
func (v *Value) AsHash() (hash40.Hash40, error) {
	if v.kind != KindHash {
		return 0, fmt.Errorf("%w: expected hash40, got %s", ErrTypeMismatch, v.kind)
	}
	return v.hashVal, nil
}

// AsStr returns the string payload.
func (v *Value) AsStr() (string, error) {
	if v.kind != KindString {
		return "", fmt.Errorf("%w: expected string, got %s", ErrTypeMismatch, v.kind)
	}
	return v.strVal, nil
}

// Len returns the child count of a list or struct, 0 for scalars.
func (v *Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.listVal)
	case KindStruct:
		return len(v.structVal)
	default:
		return 0
	}
}

// ============================================================
// List operations
// ============================================================

// Children returns the child slice of a list node. Callers must not
// reorder it directly; use the mutation methods.
func (v *Value) Children() ([]*Value, error) {
	if v.kind != KindList {
		return nil, fmt.Errorf("%w: expected list, got %s", ErrTypeMismatch, v.kind)
	}
	return v.listVal, nil
}

// Index returns the i-th child of a list node.
func (v *Value) Index(i int) (*Value, error) {
	if v.kind != KindList {
		return nil, fmt.Errorf("%w: expected list, got %s", ErrTypeMismatch, v.kind)
	}
	if i < 0 || i >= len(v.listVal) {
		return nil, fmt.Errorf("%w: index %d out of range (len=%d)", ErrPathNotFound, i, len(v.listVal))
	}
	return v.listVal[i], nil
}

// Append adds a child to the end of a list node.
func (v *Value) Append(child *Value) error {
	if v.kind != KindList {
		return fmt.Errorf("%w: expected list, got %s", ErrTypeMismatch, v.kind)
	}
	v.listVal = append(v.listVal, child)
	return nil
}

// InsertAt inserts a child at position i of a list node. i may equal the
// current length, which appends.
func (v *Value) InsertAt(i int, child *Value) error {
	if v.kind != KindList {
		return fmt.Errorf("%w: expected list, got %s", ErrTypeMismatch, v.kind)
	}
	if i < 0 || i > len(v.listVal) {
		return fmt.Errorf("%w: index %d out of range (len=%d)", ErrPathNotFound, i, len(v.listVal))
	}
	v.listVal = append(v.listVal, nil)
	copy(v.listVal[i+1:], v.listVal[i:])
	v.listVal[i] = child
	return nil
}

// RemoveAt removes the i-th child of a list node.
func (v *Value) RemoveAt(i int) error {
	if v.kind != KindList {
		return fmt.Errorf("%w: expected list, got %s", ErrTypeMismatch, v.kind)
	}
	if i < 0 || i >= len(v.listVal) {
		return fmt.Errorf("%w: index %d out of range (len=%d)", ErrPathNotFound, i, len(v.listVal))
	}
	v.listVal = append(v.listVal[:i], v.listVal[i+1:]...)
	return nil
}

// ============================================================
// Struct operations
// ============================================================

// Fields returns the field slice of a struct node in stored order. Callers
// must not reorder it directly; use Set and Remove.
func (v *Value) Fields() ([]Field, error) {
	if v.kind != KindStruct {
		return nil, fmt.Errorf("%w: expected struct, got %s", ErrTypeMismatch, v.kind)
	}
	return v.structVal, nil
}

// Field returns the child named by h, if present.
func (v *Value) Field(h hash40.Hash40) (*Value, bool) {
	if v.kind != KindStruct {
		return nil, false
	}
	for _, f := range v.structVal {
		if f.Hash == h {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the field named by h, or inserts it at its hash-sorted
// position when absent. Existing fields never move, so files decoded with
// a legacy unsorted order keep that order.
func (v *Value) Set(h hash40.Hash40, child *Value) error {
	if v.kind != KindStruct {
		return fmt.Errorf("%w: expected struct, got %s", ErrTypeMismatch, v.kind)
	}
	for i := range v.structVal {
		if v.structVal[i].Hash == h {
			v.structVal[i].Value = child
			return nil
		}
	}
	pos := len(v.structVal)
	for i, f := range v.structVal {
		if f.Hash > h {
			pos = i
			break
		}
	}
	v.structVal = append(v.structVal, Field{})
	copy(v.structVal[pos+1:], v.structVal[pos:])
	v.structVal[pos] = Field{Hash: h, Value: child}
	return nil
}

// Remove deletes the field named by h.
func (v *Value) Remove(h hash40.Hash40) error {
	if v.kind != KindStruct {
		return fmt.Errorf("%w: expected struct, got %s", ErrTypeMismatch, v.kind)
	}
	for i := range v.structVal {
		if v.structVal[i].Hash == h {
			v.structVal = append(v.structVal[:i], v.structVal[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: no field %s", ErrPathNotFound, h)
}

// ============================================================
// Equality
// ============================================================

// Equal reports whether two trees have the same kinds, values, and child
// ordering. Struct field order is significant.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBool:
		return a.boolVal == b.boolVal
	case KindI8, KindI16, KindI32:
		return a.intVal == b.intVal
	case KindU8, KindU16, KindU32:
		return a.uintVal == b.uintVal
	case KindFloat:
		// Bit-level comparison matters for round trips; NaN payloads and
		// signed zero must survive unchanged.
		return a.floatVal == b.floatVal || (a.floatVal != a.floatVal && b.floatVal != b.floatVal)
	case KindHash:
		return a.hashVal == b.hashVal
	case KindString:
		return a.strVal == b.strVal
	case KindList:
		if len(a.listVal) != len(b.listVal) {
			return false
		}
		for i := range a.listVal {
			if !Equal(a.listVal[i], b.listVal[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		if len(a.structVal) != len(b.structVal) {
			return false
		}
		for i := range a.structVal {
			if a.structVal[i].Hash != b.structVal[i].Hash {
				return false
			}
			if !Equal(a.structVal[i].Value, b.structVal[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
