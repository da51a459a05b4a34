package paramxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/skadi-tools/paramkit/pkg/hash40"
	"github.com/skadi-tools/paramkit/pkg/param"
)

var kindByName = map[string]param.Kind{
	"bool":   param.KindBool,
	"sbyte":  param.KindI8,
	"byte":   param.KindU8,
	"short":  param.KindI16,
	"ushort": param.KindU16,
	"int":    param.KindI32,
	"uint":   param.KindU32,
	"float":  param.KindFloat,
	"hash40": param.KindHash,
	"string": param.KindString,
	"list":   param.KindList,
	"struct": param.KindStruct,
}

// Decode parses an XML document into a param tree. Field labels go
// through hash40.ParseLabel, so renamed labels and hex fallbacks both
// recover the original hashes.
func Decode(data []byte) (*param.Value, error) {
	return Read(bytes.NewReader(data))
}

// Read parses an XML document from r.
func Read(r io.Reader) (*param.Value, error) {
	dec := xml.NewDecoder(r)

	start, err := nextStart(dec)
	if err != nil {
		return nil, err
	}
	if start.Name.Local != "struct" {
		return nil, fmt.Errorf("%w: root element is <%s>, expected <struct>", ErrUnrecognizedTag, start.Name.Local)
	}
	root, err := decodeElement(dec, *start)
	if err != nil {
		return nil, err
	}

	// Anything but whitespace or comments after the root is an error.
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return root, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("%w: text after root element", ErrUnrecognizedTag)
			}
		case xml.Comment, xml.ProcInst:
		default:
			return nil, fmt.Errorf("%w: content after root element", ErrUnrecognizedTag)
		}
	}
}

// nextStart skips the declaration, comments, and whitespace up to the
// first element.
func nextStart(dec *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return &t, nil
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("%w: text before root element", ErrUnrecognizedTag)
			}
		case xml.ProcInst, xml.Comment, xml.Directive:
		default:
			return nil, fmt.Errorf("%w: unexpected document content", ErrUnrecognizedTag)
		}
	}
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (*param.Value, error) {
	kind, ok := kindByName[start.Name.Local]
	if !ok {
		return nil, fmt.Errorf("%w: <%s>", ErrUnrecognizedTag, start.Name.Local)
	}

	switch kind {
	case param.KindStruct:
		return decodeStruct(dec, start)
	case param.KindList:
		return decodeList(dec, start)
	default:
		return decodeScalar(dec, start, kind)
	}
}

func decodeStruct(dec *xml.Decoder, start xml.StartElement) (*param.Value, error) {
	var fields []param.Field
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			label, ok := fieldLabel(t)
			if !ok {
				return nil, fmt.Errorf("%w: <%s> inside <struct> has no hash attribute", ErrMalformedAttribute, t.Name.Local)
			}
			h, err := hash40.ParseLabel(label)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
			}
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			fields = append(fields, param.Field{Hash: h, Value: child})
		case xml.EndElement:
			return param.Struct(fields...), nil
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("%w: unexpected text inside <struct>", ErrMalformedAttribute)
			}
		case xml.Comment:
		default:
			return nil, fmt.Errorf("%w: unexpected content inside <struct>", ErrUnrecognizedTag)
		}
	}
}

func decodeList(dec *xml.Decoder, start xml.StartElement) (*param.Value, error) {
	var children []*param.Value
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		case xml.EndElement:
			return param.List(children...), nil
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return nil, fmt.Errorf("%w: unexpected text inside <list>", ErrMalformedAttribute)
			}
		case xml.Comment:
		default:
			return nil, fmt.Errorf("%w: unexpected content inside <list>", ErrUnrecognizedTag)
		}
	}
}

func decodeScalar(dec *xml.Decoder, start xml.StartElement, kind param.Kind) (*param.Value, error) {
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			return parseScalar(kind, text.String())
		case xml.Comment:
		default:
			return nil, fmt.Errorf("%w: unexpected content inside <%s>", ErrMalformedAttribute, start.Name.Local)
		}
	}
}

func parseScalar(kind param.Kind, text string) (*param.Value, error) {
	if kind != param.KindString {
		text = strings.TrimSpace(text)
	}
	switch kind {
	case param.KindBool:
		switch text {
		case "true", "1":
			return param.Bool(true), nil
		case "false", "0":
			return param.Bool(false), nil
		}
		return nil, fmt.Errorf("%w: %q is not a bool", ErrMalformedAttribute, text)
	case param.KindI8:
		n, err := strconv.ParseInt(text, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an sbyte", ErrMalformedAttribute, text)
		}
		return param.I8(int8(n)), nil
	case param.KindU8:
		n, err := strconv.ParseUint(text, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a byte", ErrMalformedAttribute, text)
		}
		return param.U8(uint8(n)), nil
	case param.KindI16:
		n, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a short", ErrMalformedAttribute, text)
		}
		return param.I16(int16(n)), nil
	case param.KindU16:
		n, err := strconv.ParseUint(text, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a ushort", ErrMalformedAttribute, text)
		}
		return param.U16(uint16(n)), nil
	case param.KindI32:
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an int", ErrMalformedAttribute, text)
		}
		return param.I32(int32(n)), nil
	case param.KindU32:
		n, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a uint", ErrMalformedAttribute, text)
		}
		return param.U32(uint32(n)), nil
	case param.KindFloat:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a float", ErrMalformedAttribute, text)
		}
		return param.Float(float32(f)), nil
	case param.KindHash:
		h, err := hash40.ParseLabel(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLabel, text)
		}
		return param.Hash(h), nil
	case param.KindString:
		return param.Str(text), nil
	default:
		return nil, fmt.Errorf("%w: <%s> is not a scalar", ErrUnrecognizedTag, kind)
	}
}

// fieldLabel pulls the field name from a struct child's attributes. The
// writer emits "hash"; "name" is accepted for hand-edited documents.
func fieldLabel(start xml.StartElement) (string, bool) {
	for _, attr := range start.Attr {
		if attr.Name.Local == "hash" || attr.Name.Local == "name" {
			return attr.Value, true
		}
	}
	return "", false
}
