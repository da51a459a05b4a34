// Package prc implements the binary codec for param files.
//
// The codec maps the on-disk byte layout to a param.Value tree and back.
// Decoding is atomic: the caller receives either a complete tree or an
// error, never a partial result. Encoding an unmodified decoded tree
// reproduces the source file byte for byte.
//
// # File Layout
//
// All integers are little-endian. A file has four sections in order:
//
//	[Magic(8)][HashCount(4)][StringSize(4)][NodeCount(4)]  header
//	[Hash40(8)] × HashCount                                hash pool
//	[NUL-terminated UTF-8] × n, StringSize bytes total     string pool
//	depth-first tagged node stream                         nodes
//
// Fields:
//   - Magic: the bytes "paracobn"
//   - HashCount: number of hash pool entries
//   - StringSize: byte length of the string pool
//   - NodeCount: total number of nodes in the stream, root included
//
// # Node Stream
//
// Each node is a one-byte type tag followed by its payload:
//
//	 1 bool    u8 (0 or 1)
//	 2 sbyte   i8
//	 3 byte    u8
//	 4 short   i16
//	 5 ushort  u16
//	 6 int     i32
//	 7 uint    u32
//	 8 float   f32 (IEEE-754 bits)
//	 9 hash40  u32 index into the hash pool
//	10 string  u32 byte offset into the string pool
//	11 list    u32 child count, then the children
//	12 struct  u32 child count, then (u32 hash pool index, child) pairs
//
// The root node is always a struct. Struct children appear in the order
// the file stores them; the codec never re-sorts.
//
// # Pools
//
// Both pools are deduplicated. The encoder fills them in first-seen
// depth-first traversal order (for a struct: the field's hash before the
// field's value), which is the ordering the engine's own tooling produces
// and the reason unmodified trees re-encode byte-identically.
package prc
