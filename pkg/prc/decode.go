package prc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/skadi-tools/paramkit/pkg/hash40"
	"github.com/skadi-tools/paramkit/pkg/param"
)

// Magic identifies a param file.
var Magic = [8]byte{'p', 'a', 'r', 'a', 'c', 'o', 'b', 'n'}

const headerSize = 20

// One-byte node type tags. Values outside this range are fatal.
const (
	tagBool   = 1
	tagI8     = 2
	tagU8     = 3
	tagI16    = 4
	tagU16    = 5
	tagI32    = 6
	tagU32    = 7
	tagFloat  = 8
	tagHash   = 9
	tagString = 10
	tagList   = 11
	tagStruct = 12
)

// Errors
var (
	ErrMalformedHeader         = &FormatError{"malformed header"}
	ErrUnknownTypeTag          = &FormatError{"unknown type tag"}
	ErrPoolIndexOutOfRange     = &FormatError{"pool index out of range"}
	ErrTruncatedOrTrailingData = &FormatError{"truncated or trailing data"}
)

// FormatError represents a structural error in a param file
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

type decoder struct {
	data      []byte
	pos       int
	hashes    []hash40.Hash40
	pool      []byte
	nodeCount uint32
	nodesSeen uint32
}

// Decode parses a complete param file into its root struct node.
func Decode(data []byte) (*param.Value, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: file is %d bytes, header needs %d", ErrMalformedHeader, len(data), headerSize)
	}
	if !bytes.Equal(data[:8], Magic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrMalformedHeader, data[:8])
	}

	hashCount := binary.LittleEndian.Uint32(data[8:12])
	stringSize := binary.LittleEndian.Uint32(data[12:16])
	nodeCount := binary.LittleEndian.Uint32(data[16:20])

	hashEnd := int64(headerSize) + 8*int64(hashCount)
	poolEnd := hashEnd + int64(stringSize)
	if poolEnd > int64(len(data)) {
		return nil, fmt.Errorf("%w: pools end at %d but file is %d bytes", ErrTruncatedOrTrailingData, poolEnd, len(data))
	}

	hashes := make([]hash40.Hash40, hashCount)
	for i := range hashes {
		hashes[i] = hash40.Hash40(binary.LittleEndian.Uint64(data[headerSize+8*i:]))
	}

	d := &decoder{
		data:      data,
		pos:       int(poolEnd),
		hashes:    hashes,
		pool:      data[hashEnd:poolEnd],
		nodeCount: nodeCount,
	}

	if d.pos >= len(data) {
		return nil, fmt.Errorf("%w: node stream is empty", ErrTruncatedOrTrailingData)
	}
	if data[d.pos] != tagStruct {
		return nil, fmt.Errorf("%w: root node has tag %d, not a struct", ErrMalformedHeader, data[d.pos])
	}

	root, err := d.decodeNode()
	if err != nil {
		return nil, err
	}
	if d.pos != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after root node", ErrTruncatedOrTrailingData, len(data)-d.pos)
	}
	if d.nodesSeen != d.nodeCount {
		return nil, fmt.Errorf("%w: header claims %d nodes, stream holds %d", ErrTruncatedOrTrailingData, d.nodeCount, d.nodesSeen)
	}
	return root, nil
}

// Read decodes a param file from a fully buffered reader.
func Read(r io.Reader) (*param.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (d *decoder) decodeNode() (*param.Value, error) {
	tagPos := d.pos
	tag, err := d.readU8()
	if err != nil {
		return nil, err
	}
	d.nodesSeen++

	switch tag {
	case tagBool:
		v, err := d.readU8()
		if err != nil {
			return nil, err
		}
		return param.Bool(v != 0), nil
	case tagI8:
		v, err := d.readU8()
		if err != nil {
			return nil, err
		}
		return param.I8(int8(v)), nil
	case tagU8:
		v, err := d.readU8()
		if err != nil {
			return nil, err
		}
		return param.U8(v), nil
	case tagI16:
		v, err := d.readU16()
		if err != nil {
			return nil, err
		}
		return param.I16(int16(v)), nil
	case tagU16:
		v, err := d.readU16()
		if err != nil {
			return nil, err
		}
		return param.U16(v), nil
	case tagI32:
		v, err := d.readU32()
		if err != nil {
			return nil, err
		}
		return param.I32(int32(v)), nil
	case tagU32:
		v, err := d.readU32()
		if err != nil {
			return nil, err
		}
		return param.U32(v), nil
	case tagFloat:
		v, err := d.readU32()
		if err != nil {
			return nil, err
		}
		return param.Float(math.Float32frombits(v)), nil
	case tagHash:
		idx, err := d.readU32()
		if err != nil {
			return nil, err
		}
		if int(idx) >= len(d.hashes) {
			return nil, fmt.Errorf("%w: hash index %d at offset %d (pool holds %d)", ErrPoolIndexOutOfRange, idx, tagPos, len(d.hashes))
		}
		return param.Hash(d.hashes[idx]), nil
	case tagString:
		off, err := d.readU32()
		if err != nil {
			return nil, err
		}
		s, err := d.stringAt(off, tagPos)
		if err != nil {
			return nil, err
		}
		return param.Str(s), nil
	case tagList:
		count, err := d.readU32()
		if err != nil {
			return nil, err
		}
		children := make([]*param.Value, 0, d.boundedCap(count))
		for i := uint32(0); i < count; i++ {
			child, err := d.decodeNode()
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return param.List(children...), nil
	case tagStruct:
		count, err := d.readU32()
		if err != nil {
			return nil, err
		}
		fields := make([]param.Field, 0, d.boundedCap(count))
		for i := uint32(0); i < count; i++ {
			idxPos := d.pos
			idx, err := d.readU32()
			if err != nil {
				return nil, err
			}
			if int(idx) >= len(d.hashes) {
				return nil, fmt.Errorf("%w: hash index %d at offset %d (pool holds %d)", ErrPoolIndexOutOfRange, idx, idxPos, len(d.hashes))
			}
			child, err := d.decodeNode()
			if err != nil {
				return nil, err
			}
			fields = append(fields, param.Field{Hash: d.hashes[idx], Value: child})
		}
		return param.Struct(fields...), nil
	default:
		return nil, fmt.Errorf("%w: tag %d at offset %d", ErrUnknownTypeTag, tag, tagPos)
	}
}

// boundedCap limits preallocation so a lying child count cannot force a
// huge allocation before the stream runs dry.
func (d *decoder) boundedCap(count uint32) int {
	remaining := len(d.data) - d.pos
	if int64(count) > int64(remaining) {
		return remaining
	}
	return int(count)
}

func (d *decoder) stringAt(off uint32, nodePos int) (string, error) {
	if int64(off) >= int64(len(d.pool)) {
		return "", fmt.Errorf("%w: string offset %d at offset %d (pool is %d bytes)", ErrPoolIndexOutOfRange, off, nodePos, len(d.pool))
	}
	end := bytes.IndexByte(d.pool[off:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at pool offset %d", ErrPoolIndexOutOfRange, off)
	}
	return string(d.pool[off : int(off)+end]), nil
}

func (d *decoder) readU8() (uint8, error) {
	if d.pos+1 > len(d.data) {
		return 0, fmt.Errorf("%w: need 1 byte at offset %d", ErrTruncatedOrTrailingData, d.pos)
	}
	v := d.data[d.pos]
	d.pos++
	return v, nil
}

func (d *decoder) readU16() (uint16, error) {
	if d.pos+2 > len(d.data) {
		return 0, fmt.Errorf("%w: need 2 bytes at offset %d", ErrTruncatedOrTrailingData, d.pos)
	}
	v := binary.LittleEndian.Uint16(d.data[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *decoder) readU32() (uint32, error) {
	if d.pos+4 > len(d.data) {
		return 0, fmt.Errorf("%w: need 4 bytes at offset %d", ErrTruncatedOrTrailingData, d.pos)
	}
	v := binary.LittleEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}
