package prc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/skadi-tools/paramkit/pkg/hash40"
	"github.com/skadi-tools/paramkit/pkg/param"
)

// fileBuilder assembles raw param files for decoder tests.
type fileBuilder struct {
	hashes  []uint64
	strings []byte
	stream  []byte
}

func (b *fileBuilder) u8(v uint8) *fileBuilder {
	b.stream = append(b.stream, v)
	return b
}

func (b *fileBuilder) u32(v uint32) *fileBuilder {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], v)
	b.stream = append(b.stream, raw[:]...)
	return b
}

func (b *fileBuilder) bytes(nodeCount uint32) []byte {
	var buf bytes.Buffer
	buf.Write(Magic[:])
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], uint32(len(b.hashes)))
	buf.Write(raw[:])
	binary.LittleEndian.PutUint32(raw[:], uint32(len(b.strings)))
	buf.Write(raw[:])
	binary.LittleEndian.PutUint32(raw[:], nodeCount)
	buf.Write(raw[:])
	for _, h := range b.hashes {
		var h8 [8]byte
		binary.LittleEndian.PutUint64(h8[:], h)
		buf.Write(h8[:])
	}
	buf.Write(b.strings)
	buf.Write(b.stream)
	return buf.Bytes()
}

func buildSample(t *testing.T) *param.Value {
	t.Helper()

	root := param.NewStruct()
	set := func(name string, v *param.Value) {
		if err := root.Set(hash40.Compute(name), v); err != nil {
			t.Fatal(err)
		}
	}
	set("enabled", param.Bool(true))
	set("count", param.I8(-3))
	set("flags", param.U8(0xff))
	set("offset_x", param.I16(-512))
	set("frame", param.U16(60))
	set("score", param.I32(-100000))
	set("mask", param.U32(0xdeadbeef))
	set("size", param.Float(3.5))
	set("motion", param.Hash(hash40.Compute("wait")))
	set("name", param.Str("mario"))
	set("values", param.List(param.I32(1), param.I32(-2), param.I32(300)))

	inner := param.NewStruct()
	if err := inner.Set(hash40.Compute("name"), param.Str("mario")); err != nil {
		t.Fatal(err)
	}
	set("echo", inner)
	return root
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	root := buildSample(t)

	data, err := Encode(root)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !param.Equal(root, decoded) {
		t.Fatal("decoded tree differs from original")
	}

	again, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatal("re-encoded bytes differ from first encoding")
	}
}

func TestEncode_TwoFieldScenario(t *testing.T) {
	// A struct with size=3.5 and enabled=true must survive
	// encode → decode → encode byte-identically.
	root := param.NewStruct()
	if err := root.Set(hash40.Compute("size"), param.Float(3.5)); err != nil {
		t.Fatal(err)
	}
	if err := root.Set(hash40.Compute("enabled"), param.Bool(true)); err != nil {
		t.Fatal(err)
	}

	data, err := Encode(root)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Encode(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Fatal("round trip is not byte-exact")
	}
}

func TestEncode_ListOrderPreserved(t *testing.T) {
	root := param.NewStruct()
	if err := root.Set(hash40.Compute("values"), param.List(param.I32(1), param.I32(-2), param.I32(300))); err != nil {
		t.Fatal(err)
	}

	data, err := Encode(root)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	list, err := decoded.Get("values")
	if err != nil {
		t.Fatal(err)
	}
	want := []int32{1, -2, 300}
	children, _ := list.Children()
	if len(children) != len(want) {
		t.Fatalf("list len = %d, want %d", len(children), len(want))
	}
	for i, w := range want {
		got, err := children[i].AsI32()
		if err != nil || got != w {
			t.Errorf("element %d = (%d, %v), want %d", i, got, err, w)
		}
	}
}

func TestEncode_PoolsDeduplicated(t *testing.T) {
	// "shared" appears in two string nodes and "ident" is both a field
	// name and a hash value; each pool entry must appear exactly once.
	root := param.NewStruct()
	h := hash40.Compute("ident")
	if err := root.Set(hash40.Compute("a"), param.Str("shared")); err != nil {
		t.Fatal(err)
	}
	if err := root.Set(hash40.Compute("b"), param.Str("shared")); err != nil {
		t.Fatal(err)
	}
	if err := root.Set(h, param.Hash(h)); err != nil {
		t.Fatal(err)
	}

	data, err := Encode(root)
	if err != nil {
		t.Fatal(err)
	}

	hashCount := binary.LittleEndian.Uint32(data[8:12])
	stringSize := binary.LittleEndian.Uint32(data[12:16])

	// Field hashes a, b, ident; the hash value node reuses ident's entry.
	if hashCount != 3 {
		t.Errorf("hashCount = %d, want 3", hashCount)
	}
	if stringSize != uint32(len("shared")+1) {
		t.Errorf("stringSize = %d, want %d", stringSize, len("shared")+1)
	}
}

func TestDecode_HandBuiltFile(t *testing.T) {
	b := &fileBuilder{
		hashes:  []uint64{0xa, 0xb, 0xc},
		strings: []byte("mario\x00"),
	}
	b.u8(tagStruct).u32(3)
	b.u32(0).u8(tagBool).u8(1)
	b.u32(1).u8(tagI32).u32(0xfffffffe) // -2
	b.u32(2).u8(tagString).u32(0)

	root, err := Decode(b.bytes(4))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	fields, err := root.Fields()
	if err != nil {
		t.Fatal(err)
	}
	if len(fields) != 3 {
		t.Fatalf("field count = %d, want 3", len(fields))
	}
	if v, _ := fields[0].Value.AsBool(); v != true {
		t.Error("field 0 != true")
	}
	if v, _ := fields[1].Value.AsI32(); v != -2 {
		t.Errorf("field 1 = %d, want -2", v)
	}
	if v, _ := fields[2].Value.AsStr(); v != "mario" {
		t.Errorf("field 2 = %q, want mario", v)
	}
}

func TestDecode_Errors(t *testing.T) {
	valid, err := Encode(buildTinyStruct(t))
	if err != nil {
		t.Fatal(err)
	}

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "AAAAAAAA")

	truncated := valid[:len(valid)-1]

	trailing := append(append([]byte(nil), valid...), 0x00)

	// Header claims one more node than the stream holds.
	lyingCount := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(lyingCount[16:], binary.LittleEndian.Uint32(valid[16:])+1)

	unknownTag := (&fileBuilder{hashes: []uint64{0xa}}).
		u8(tagStruct).u32(1).u32(0).u8(99).bytes(2)

	hashOOR := (&fileBuilder{hashes: []uint64{0xa}}).
		u8(tagStruct).u32(1).u32(0).u8(tagHash).u32(7).bytes(2)

	fieldIdxOOR := (&fileBuilder{hashes: []uint64{0xa}}).
		u8(tagStruct).u32(1).u32(9).u8(tagBool).u8(0).bytes(2)

	strOOR := (&fileBuilder{hashes: []uint64{0xa}, strings: []byte("x\x00")}).
		u8(tagStruct).u32(1).u32(0).u8(tagString).u32(40).bytes(2)

	unterminated := (&fileBuilder{hashes: []uint64{0xa}, strings: []byte("xy")}).
		u8(tagStruct).u32(1).u32(0).u8(tagString).u32(0).bytes(2)

	rootNotStruct := (&fileBuilder{}).u8(tagBool).u8(1).bytes(1)

	testCases := []struct {
		name string
		data []byte
		want error
	}{
		{"empty input", nil, ErrMalformedHeader},
		{"short header", []byte("paracob"), ErrMalformedHeader},
		{"bad magic", badMagic, ErrMalformedHeader},
		{"root not struct", rootNotStruct, ErrMalformedHeader},
		{"truncated stream", truncated, ErrTruncatedOrTrailingData},
		{"trailing bytes", trailing, ErrTruncatedOrTrailingData},
		{"node count mismatch", lyingCount, ErrTruncatedOrTrailingData},
		{"unknown tag", unknownTag, ErrUnknownTypeTag},
		{"hash index out of range", hashOOR, ErrPoolIndexOutOfRange},
		{"field hash index out of range", fieldIdxOOR, ErrPoolIndexOutOfRange},
		{"string offset out of range", strOOR, ErrPoolIndexOutOfRange},
		{"unterminated string", unterminated, ErrPoolIndexOutOfRange},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := Decode(tc.data)
			if !errors.Is(err, tc.want) {
				t.Errorf("Decode = %v, want %v", err, tc.want)
			}
			if tree != nil {
				t.Error("failed decode returned a tree")
			}
		})
	}
}

func TestEncode_RootMustBeStruct(t *testing.T) {
	if _, err := Encode(param.I32(1)); err == nil {
		t.Error("expected error encoding a non-struct root")
	}
	if _, err := Encode(nil); err == nil {
		t.Error("expected error encoding a nil root")
	}
}

func buildTinyStruct(t *testing.T) *param.Value {
	t.Helper()
	root := param.NewStruct()
	if err := root.Set(hash40.Compute("size"), param.Float(3.5)); err != nil {
		t.Fatal(err)
	}
	if err := root.Set(hash40.Compute("enabled"), param.Bool(true)); err != nil {
		t.Fatal(err)
	}
	return root
}
