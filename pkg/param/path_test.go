package param

import (
	"errors"
	"testing"

	"github.com/skadi-tools/paramkit/pkg/hash40"
)

func buildFighter(t *testing.T) *Value {
	t.Helper()

	hitbox := NewStruct()
	if err := hitbox.Set(hash40.Compute("size"), Float(3.5)); err != nil {
		t.Fatal(err)
	}
	if err := hitbox.Set(hash40.Compute("damage"), U16(12)); err != nil {
		t.Fatal(err)
	}

	fighter := NewStruct()
	if err := fighter.Set(hash40.Compute("name"), Str("mario")); err != nil {
		t.Fatal(err)
	}
	if err := fighter.Set(hash40.Compute("hitboxes"), List(hitbox)); err != nil {
		t.Fatal(err)
	}

	root := NewStruct()
	if err := root.Set(hash40.Compute("fighter"), fighter); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestGet(t *testing.T) {
	root := buildFighter(t)

	v, err := root.Get("fighter.hitboxes[0].size")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	f, err := v.AsFloat()
	if err != nil || f != 3.5 {
		t.Errorf("size = (%v, %v), want 3.5", f, err)
	}

	// Fallback hex labels address the same field.
	hexPath := "fighter.hitboxes[0]." + hash40.Label(hash40.Compute("size"), nil)
	if _, err := root.Get(hexPath); err != nil {
		t.Errorf("Get via hex label: %v", err)
	}
}

func TestGet_Errors(t *testing.T) {
	root := buildFighter(t)

	testCases := []struct {
		name string
		path string
		want error
	}{
		{"missing field", "fighter.speed", ErrPathNotFound},
		{"index on struct", "fighter[0]", ErrTypeMismatch},
		{"field on list", "fighter.hitboxes.size", ErrTypeMismatch},
		{"field on scalar", "fighter.name.length", ErrTypeMismatch},
		{"index out of range", "fighter.hitboxes[3]", ErrPathNotFound},
		{"empty path", "", ErrPathNotFound},
		{"bad index", "fighter.hitboxes[x]", ErrPathNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := root.Get(tc.path)
			if !errors.Is(err, tc.want) {
				t.Errorf("Get(%q) = %v, want %v", tc.path, err, tc.want)
			}
		})
	}
}

func TestSetPath(t *testing.T) {
	root := buildFighter(t)

	// Replace an existing scalar.
	if err := root.SetPath("fighter.hitboxes[0].size", Float(5.0)); err != nil {
		t.Fatal(err)
	}
	v, _ := root.Get("fighter.hitboxes[0].size")
	if f, _ := v.AsFloat(); f != 5.0 {
		t.Errorf("size after set = %v, want 5.0", f)
	}

	// Insert a new field; the parent struct must stay sorted.
	if err := root.SetPath("fighter.weight", Float(98)); err != nil {
		t.Fatal(err)
	}
	fighter, _ := root.Get("fighter")
	fields, _ := fighter.Fields()
	for i := 1; i < len(fields); i++ {
		if fields[i-1].Hash >= fields[i].Hash {
			t.Fatalf("fighter fields unsorted after insert at %d", i)
		}
	}

	// Out-of-range list index does not grow the list.
	err := root.SetPath("fighter.hitboxes[5]", NewStruct())
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("SetPath out of range = %v, want ErrPathNotFound", err)
	}
}

func TestRemovePath(t *testing.T) {
	root := buildFighter(t)

	if err := root.RemovePath("fighter.hitboxes[0].damage"); err != nil {
		t.Fatal(err)
	}
	if _, err := root.Get("fighter.hitboxes[0].damage"); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("removed field still resolves: %v", err)
	}

	if err := root.RemovePath("fighter.hitboxes[0]"); err != nil {
		t.Fatal(err)
	}
	hitboxes, _ := root.Get("fighter.hitboxes")
	if hitboxes.Len() != 0 {
		t.Errorf("hitboxes len = %d, want 0", hitboxes.Len())
	}

	if err := root.RemovePath("fighter.nope"); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("RemovePath missing = %v, want ErrPathNotFound", err)
	}
}
