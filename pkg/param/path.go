package param

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skadi-tools/paramkit/pkg/hash40"
)

// Path addressing over a tree.
//
// A path is a dotted sequence of struct field names with optional list
// indices, e.g. "fighter.hitboxes[2].size". Field names go through
// hash40.ParseLabel, so both resolved names and "hash40_0x..." fallback
// labels address the same field.

type pathStep struct {
	name    string
	index   int
	isIndex bool
}

func (s pathStep) String() string {
	if s.isIndex {
		return fmt.Sprintf("[%d]", s.index)
	}
	return s.name
}

// parsePath splits a path string into steps. Syntax errors report as
// ErrPathNotFound since no node can be addressed by a malformed path.
func parsePath(path string) ([]pathStep, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrPathNotFound)
	}
	var steps []pathStep
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrPathNotFound, path)
		}
		name := seg
		var indices []int
		for {
			open := strings.IndexByte(name, '[')
			if open < 0 {
				break
			}
			closing := strings.IndexByte(name[open:], ']')
			if closing < 0 {
				return nil, fmt.Errorf("%w: unclosed index in %q", ErrPathNotFound, seg)
			}
			idx, err := strconv.Atoi(name[open+1 : open+closing])
			if err != nil {
				return nil, fmt.Errorf("%w: bad index in %q", ErrPathNotFound, seg)
			}
			indices = append(indices, idx)
			name = name[:open] + name[open+closing+1:]
		}
		if name != "" {
			steps = append(steps, pathStep{name: name})
		}
		for _, idx := range indices {
			steps = append(steps, pathStep{index: idx, isIndex: true})
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrPathNotFound)
	}
	return steps, nil
}

// walk resolves one step against a node.
func walk(v *Value, s pathStep) (*Value, error) {
	if s.isIndex {
		if v.kind != KindList {
			return nil, fmt.Errorf("%w: indexing a %s node", ErrTypeMismatch, v.kind)
		}
		return v.Index(s.index)
	}
	if v.kind != KindStruct {
		return nil, fmt.Errorf("%w: field access on a %s node", ErrTypeMismatch, v.kind)
	}
	h, err := hash40.ParseLabel(s.name)
	if err != nil {
		return nil, fmt.Errorf("%w: bad field label %q", ErrPathNotFound, s.name)
	}
	child, ok := v.Field(h)
	if !ok {
		return nil, fmt.Errorf("%w: no field %q", ErrPathNotFound, s.name)
	}
	return child, nil
}

// Get returns the node addressed by path.
func (v *Value) Get(path string) (*Value, error) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	cur := v
	for _, s := range steps {
		cur, err = walk(cur, s)
		if err != nil {
			return nil, fmt.Errorf("at %q: %w", s, err)
		}
	}
	return cur, nil
}

// SetPath replaces the node addressed by path with child. The final step
// may name a struct field that does not exist yet, in which case it is
// inserted at its hash-sorted position; a list index must already be in
// range.
func (v *Value) SetPath(path string, child *Value) error {
	steps, err := parsePath(path)
	if err != nil {
		return err
	}
	parent := v
	for _, s := range steps[:len(steps)-1] {
		parent, err = walk(parent, s)
		if err != nil {
			return fmt.Errorf("at %q: %w", s, err)
		}
	}

	last := steps[len(steps)-1]
	if last.isIndex {
		if parent.kind != KindList {
			return fmt.Errorf("%w: indexing a %s node", ErrTypeMismatch, parent.kind)
		}
		if last.index < 0 || last.index >= len(parent.listVal) {
			return fmt.Errorf("%w: index %d out of range (len=%d)", ErrPathNotFound, last.index, len(parent.listVal))
		}
		parent.listVal[last.index] = child
		return nil
	}
	if parent.kind != KindStruct {
		return fmt.Errorf("%w: field access on a %s node", ErrTypeMismatch, parent.kind)
	}
	h, err := hash40.ParseLabel(last.name)
	if err != nil {
		return fmt.Errorf("%w: bad field label %q", ErrPathNotFound, last.name)
	}
	return parent.Set(h, child)
}

// RemovePath deletes the node addressed by path from its parent.
func (v *Value) RemovePath(path string) error {
	steps, err := parsePath(path)
	if err != nil {
		return err
	}
	parent := v
	for _, s := range steps[:len(steps)-1] {
		parent, err = walk(parent, s)
		if err != nil {
			return fmt.Errorf("at %q: %w", s, err)
		}
	}

	last := steps[len(steps)-1]
	if last.isIndex {
		return parent.RemoveAt(last.index)
	}
	if parent.kind != KindStruct {
		return fmt.Errorf("%w: field access on a %s node", ErrTypeMismatch, parent.kind)
	}
	h, err := hash40.ParseLabel(last.name)
	if err != nil {
		return fmt.Errorf("%w: bad field label %q", ErrPathNotFound, last.name)
	}
	return parent.Remove(h)
}
