// Package paramxml converts param trees to and from the XML editing
// format.
//
// Element names match the format's kind names (bool, sbyte, byte, short,
// ushort, int, uint, float, hash40, string, list, struct). A struct's
// children carry a hash attribute holding the field's resolved label or
// its hash40_0x... fallback; list children are positional and carry an
// index attribute on output for readability only. Struct children appear
// in tree order; the document never re-sorts them.
package paramxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/skadi-tools/paramkit/pkg/hash40"
	"github.com/skadi-tools/paramkit/pkg/param"
)

// Errors
var (
	ErrUnrecognizedTag    = &SyntaxError{"unrecognized tag"}
	ErrMalformedAttribute = &SyntaxError{"malformed attribute"}
	ErrInvalidLabel       = &SyntaxError{"invalid label"}
)

// SyntaxError represents an error in an XML param document
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) Error() string {
	return e.Message
}

// Encode renders a tree as an XML document. Field names resolve through
// table; unresolved hashes render in the hash40_0x... fallback form, which
// Decode parses back to the identical hash.
func Encode(root *param.Value, table hash40.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, root, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders a tree as an XML document to w.
func Write(w io.Writer, root *param.Value, table hash40.Table) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	decl := xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="utf-8"`)}
	if err := enc.EncodeToken(decl); err != nil {
		return err
	}
	if err := encodeValue(enc, root, nil, table); err != nil {
		return err
	}
	return enc.Flush()
}

func encodeValue(enc *xml.Encoder, v *param.Value, attrs []xml.Attr, table hash40.Table) error {
	start := xml.StartElement{
		Name: xml.Name{Local: v.Kind().String()},
		Attr: attrs,
	}

	switch v.Kind() {
	case param.KindList:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		children, _ := v.Children()
		for i, child := range children {
			attr := []xml.Attr{{Name: xml.Name{Local: "index"}, Value: strconv.Itoa(i)}}
			if err := encodeValue(enc, child, attr, table); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())

	case param.KindStruct:
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		fields, _ := v.Fields()
		for _, f := range fields {
			attr := []xml.Attr{{Name: xml.Name{Local: "hash"}, Value: hash40.Label(f.Hash, table)}}
			if err := encodeValue(enc, f.Value, attr, table); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())

	default:
		text, err := scalarText(v, table)
		if err != nil {
			return err
		}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if err := enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
		return enc.EncodeToken(start.End())
	}
}

// scalarText renders a scalar payload in its canonical literal form.
// Floats use the shortest representation that parses back to the exact
// same 32-bit value.
func scalarText(v *param.Value, table hash40.Table) (string, error) {
	switch v.Kind() {
	case param.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	case param.KindI8:
		n, _ := v.AsI8()
		return strconv.FormatInt(int64(n), 10), nil
	case param.KindU8:
		n, _ := v.AsU8()
		return strconv.FormatUint(uint64(n), 10), nil
	case param.KindI16:
		n, _ := v.AsI16()
		return strconv.FormatInt(int64(n), 10), nil
	case param.KindU16:
		n, _ := v.AsU16()
		return strconv.FormatUint(uint64(n), 10), nil
	case param.KindI32:
		n, _ := v.AsI32()
		return strconv.FormatInt(int64(n), 10), nil
	case param.KindU32:
		n, _ := v.AsU32()
		return strconv.FormatUint(uint64(n), 10), nil
	case param.KindFloat:
		f, _ := v.AsFloat()
		return strconv.FormatFloat(float64(f), 'g', -1, 32), nil
	case param.KindHash:
		h, _ := v.AsHash()
		return hash40.Label(h, table), nil
	case param.KindString:
		s, _ := v.AsStr()
		return s, nil
	default:
		return "", fmt.Errorf("paramxml: %s is not a scalar kind", v.Kind())
	}
}
