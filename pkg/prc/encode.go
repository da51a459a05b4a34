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

type encoder struct {
	hashes    []hash40.Hash40
	hashIndex map[hash40.Hash40]uint32

	strings   []string
	strOffset map[string]uint32
	strSize   uint32

	nodeCount uint32
}

// Encode serializes a tree rooted at a struct node into param file bytes.
// The pools are built in first-seen traversal order, so a tree decoded
// from a canonical file re-encodes to the identical bytes.
func Encode(root *param.Value) ([]byte, error) {
	if root == nil || root.Kind() != param.KindStruct {
		return nil, fmt.Errorf("prc: root node must be a struct")
	}

	e := &encoder{
		hashIndex: make(map[hash40.Hash40]uint32),
		strOffset: make(map[string]uint32),
	}
	e.collect(root)

	var buf bytes.Buffer
	buf.Grow(headerSize + 8*len(e.hashes) + int(e.strSize))

	buf.Write(Magic[:])
	writeU32(&buf, uint32(len(e.hashes)))
	writeU32(&buf, e.strSize)
	writeU32(&buf, e.nodeCount)

	for _, h := range e.hashes {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(h))
		buf.Write(b[:])
	}
	for _, s := range e.strings {
		buf.WriteString(s)
		buf.WriteByte(0)
	}

	e.emit(&buf, root)
	return buf.Bytes(), nil
}

// Write encodes root and writes the bytes to w. Sink failures propagate
// unchanged.
func Write(w io.Writer, root *param.Value) error {
	data, err := Encode(root)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// collect performs the pool-building pass: a depth-first walk recording
// every distinct hash and string in first-seen order. For structs the
// field's hash is recorded before its value is walked.
func (e *encoder) collect(v *param.Value) {
	e.nodeCount++
	switch v.Kind() {
	case param.KindHash:
		h, _ := v.AsHash()
		e.addHash(h)
	case param.KindString:
		s, _ := v.AsStr()
		e.addString(s)
	case param.KindList:
		children, _ := v.Children()
		for _, child := range children {
			e.collect(child)
		}
	case param.KindStruct:
		fields, _ := v.Fields()
		for _, f := range fields {
			e.addHash(f.Hash)
			e.collect(f.Value)
		}
	}
}

func (e *encoder) addHash(h hash40.Hash40) uint32 {
	if idx, ok := e.hashIndex[h]; ok {
		return idx
	}
	idx := uint32(len(e.hashes))
	e.hashes = append(e.hashes, h)
	e.hashIndex[h] = idx
	return idx
}

func (e *encoder) addString(s string) uint32 {
	if off, ok := e.strOffset[s]; ok {
		return off
	}
	off := e.strSize
	e.strings = append(e.strings, s)
	e.strOffset[s] = off
	e.strSize += uint32(len(s)) + 1
	return off
}

// emit performs the second pass, writing the node stream against the
// pools built by collect.
func (e *encoder) emit(buf *bytes.Buffer, v *param.Value) {
	switch v.Kind() {
	case param.KindBool:
		b, _ := v.AsBool()
		buf.WriteByte(tagBool)
		if b {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case param.KindI8:
		n, _ := v.AsI8()
		buf.WriteByte(tagI8)
		buf.WriteByte(byte(n))
	case param.KindU8:
		n, _ := v.AsU8()
		buf.WriteByte(tagU8)
		buf.WriteByte(n)
	case param.KindI16:
		n, _ := v.AsI16()
		buf.WriteByte(tagI16)
		writeU16(buf, uint16(n))
	case param.KindU16:
		n, _ := v.AsU16()
		buf.WriteByte(tagU16)
		writeU16(buf, n)
	case param.KindI32:
		n, _ := v.AsI32()
		buf.WriteByte(tagI32)
		writeU32(buf, uint32(n))
	case param.KindU32:
		n, _ := v.AsU32()
		buf.WriteByte(tagU32)
		writeU32(buf, n)
	case param.KindFloat:
		f, _ := v.AsFloat()
		buf.WriteByte(tagFloat)
		writeU32(buf, math.Float32bits(f))
	case param.KindHash:
		h, _ := v.AsHash()
		buf.WriteByte(tagHash)
		writeU32(buf, e.hashIndex[h])
	case param.KindString:
		s, _ := v.AsStr()
		buf.WriteByte(tagString)
		writeU32(buf, e.strOffset[s])
	case param.KindList:
		children, _ := v.Children()
		buf.WriteByte(tagList)
		writeU32(buf, uint32(len(children)))
		for _, child := range children {
			e.emit(buf, child)
		}
	case param.KindStruct:
		fields, _ := v.Fields()
		buf.WriteByte(tagStruct)
		writeU32(buf, uint32(len(fields)))
		for _, f := range fields {
			writeU32(buf, e.hashIndex[f.Hash])
			e.emit(buf, f.Value)
		}
	}
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
