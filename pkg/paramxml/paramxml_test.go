package paramxml

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/skadi-tools/paramkit/pkg/hash40"
	"github.com/skadi-tools/paramkit/pkg/param"
	"github.com/skadi-tools/paramkit/pkg/prc"
)

func buildTree(t *testing.T) *param.Value {
	t.Helper()

	root := param.NewStruct()
	set := func(name string, v *param.Value) {
		if err := root.Set(hash40.Compute(name), v); err != nil {
			t.Fatal(err)
		}
	}
	set("enabled", param.Bool(true))
	set("size", param.Float(3.5))
	set("precise", param.Float(0.1)) // no short decimal form in binary32
	set("count", param.I8(-3))
	set("frame", param.U16(60))
	set("score", param.I32(-100000))
	set("mask", param.U32(0xdeadbeef))
	set("motion", param.Hash(hash40.Compute("wait")))
	set("name", param.Str("mario & luigi <br>"))
	set("values", param.List(param.I32(1), param.I32(-2), param.I32(300)))
	set("empty_list", param.List())
	set("empty_struct", param.NewStruct())
	return root
}

func TestTextRoundTrip_EmptyTable(t *testing.T) {
	root := buildTree(t)

	doc, err := Encode(root, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, doc)
	}
	if !param.Equal(root, decoded) {
		t.Fatalf("tree changed through text round trip\n%s", doc)
	}
}

func TestTextRoundTrip_WithTable(t *testing.T) {
	table := hash40.MapTable{}
	for _, name := range []string{"enabled", "size", "values", "motion", "wait"} {
		table.Add(name)
	}

	root := buildTree(t)
	doc, err := Encode(root, table)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(doc), `hash="enabled"`) {
		t.Errorf("resolved label missing from document:\n%s", doc)
	}

	decoded, err := Decode(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !param.Equal(root, decoded) {
		t.Fatal("tree changed through labeled text round trip")
	}
}

func TestBinaryThroughTextRoundTrip(t *testing.T) {
	// binary → tree → text → tree → binary must be byte-exact, with or
	// without a lookup table.
	root := param.NewStruct()
	if err := root.Set(hash40.Compute("size"), param.Float(3.5)); err != nil {
		t.Fatal(err)
	}
	if err := root.Set(hash40.Compute("enabled"), param.Bool(true)); err != nil {
		t.Fatal(err)
	}

	original, err := prc.Encode(root)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name  string
		table hash40.Table
	}{
		{"empty table", nil},
		{"resolved labels", hash40.MapTable{
			hash40.Compute("size"):    "size",
			hash40.Compute("enabled"): "enabled",
		}},
		{"renamed label", hash40.MapTable{
			// A renamed label must still hash back to the on-disk id.
			hash40.Compute("size"): "size",
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := prc.Decode(original)
			if err != nil {
				t.Fatal(err)
			}
			doc, err := Encode(tree, tc.table)
			if err != nil {
				t.Fatal(err)
			}
			if tc.table == nil && !strings.Contains(string(doc), "hash40_0x") {
				t.Errorf("expected hex fallback labels in document:\n%s", doc)
			}
			reparsed, err := Decode(doc)
			if err != nil {
				t.Fatalf("Decode: %v\n%s", err, doc)
			}
			final, err := prc.Encode(reparsed)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(original, final) {
				t.Fatal("binary output changed after passing through text")
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "root not struct",
			doc:  `<list></list>`,
			want: ErrUnrecognizedTag,
		},
		{
			name: "unknown element",
			doc:  `<struct><frog hash="a">1</frog></struct>`,
			want: ErrUnrecognizedTag,
		},
		{
			name: "missing hash attribute",
			doc:  `<struct><int>1</int></struct>`,
			want: ErrMalformedAttribute,
		},
		{
			name: "non-numeric int",
			doc:  `<struct><int hash="a">abc</int></struct>`,
			want: ErrMalformedAttribute,
		},
		{
			name: "int overflow",
			doc:  `<struct><byte hash="a">300</byte></struct>`,
			want: ErrMalformedAttribute,
		},
		{
			name: "bad bool",
			doc:  `<struct><bool hash="a">yes</bool></struct>`,
			want: ErrMalformedAttribute,
		},
		{
			name: "bad hash attribute hex",
			doc:  `<struct><int hash="hash40_0xzz">1</int></struct>`,
			want: ErrInvalidLabel,
		},
		{
			name: "bad hash40 payload",
			doc:  `<struct><hash40 hash="a">0xnope</hash40></struct>`,
			want: ErrInvalidLabel,
		},
		{
			name: "text inside struct",
			doc:  `<struct>stray</struct>`,
			want: ErrMalformedAttribute,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := Decode([]byte(tc.doc))
			if !errors.Is(err, tc.want) {
				t.Errorf("Decode = %v, want %v", err, tc.want)
			}
			if tree != nil {
				t.Error("failed decode returned a tree")
			}
		})
	}
}

func TestDecode_NameAttributeAccepted(t *testing.T) {
	doc := `<struct><int name="count">5</int></struct>`
	tree, err := Decode([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	v, ok := tree.Field(hash40.Compute("count"))
	if !ok {
		t.Fatal("field count not found")
	}
	if n, _ := v.AsI32(); n != 5 {
		t.Errorf("count = %d, want 5", n)
	}
}

func TestDecode_SelfClosedContainers(t *testing.T) {
	doc := `<struct><list hash="a"/><struct hash="b"/></struct>`
	tree, err := Decode([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 2 {
		t.Fatalf("len = %d, want 2", tree.Len())
	}
	fields, _ := tree.Fields()
	if fields[0].Value.Kind() != param.KindList || fields[0].Value.Len() != 0 {
		t.Error("first field is not an empty list")
	}
	if fields[1].Value.Kind() != param.KindStruct || fields[1].Value.Len() != 0 {
		t.Error("second field is not an empty struct")
	}
}

func TestEncode_DocumentShape(t *testing.T) {
	root := param.NewStruct()
	if err := root.Set(hash40.Compute("values"), param.List(param.Bool(true))); err != nil {
		t.Fatal(err)
	}

	table := hash40.MapTable{}
	table.Add("values")

	doc, err := Encode(root, table)
	if err != nil {
		t.Fatal(err)
	}
	text := string(doc)

	if !strings.HasPrefix(text, `<?xml version="1.0" encoding="utf-8"?>`) {
		t.Errorf("missing declaration:\n%s", text)
	}
	if !strings.Contains(text, `<list hash="values">`) {
		t.Errorf("missing labeled list element:\n%s", text)
	}
	if !strings.Contains(text, `<bool index="0">true</bool>`) {
		t.Errorf("missing indexed list child:\n%s", text)
	}
}
