package vegalite

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is wrapped by every validation failure.
var ErrInvalidSpec = errors.New("invalid spec")

// fieldSet tracks the fields available at a point in the pipeline. An open
// set stands for a source whose columns are not known up front.
type fieldSet struct {
	open  bool
	names map[string]bool
}

func newFieldSet(names ...string) fieldSet {
	s := fieldSet{names: make(map[string]bool, len(names))}
	for _, n := range names {
		s.names[n] = true
	}
	return s
}

func openFieldSet() fieldSet {
	return fieldSet{open: true, names: map[string]bool{}}
}

func (s fieldSet) with(name string) fieldSet {
	out := fieldSet{open: s.open, names: make(map[string]bool, len(s.names)+1)}
	for n := range s.names {
		out.names[n] = true
	}
	out.names[name] = true
	return out
}

// has reports whether name can be read. In an open set any name is readable
// except one a later step has yet to derive.
func (s fieldSet) has(name string, derived map[string]bool) bool {
	if s.names[name] {
		return true
	}
	return s.open && !derived[name]
}

// Validate checks the spec's structure and that every transform step and
// encoding channel only reads fields that exist at that point.
func (s *Spec) Validate() error {
	return s.validate(openFieldSet())
}

// ValidateColumns is Validate against a source with known columns.
func (s *Spec) ValidateColumns(columns []string) error {
	return s.validate(newFieldSet(columns...))
}

func (s *Spec) validate(avail fieldSet) error {
	if s == nil {
		return fmt.Errorf("%w: nil spec", ErrInvalidSpec)
	}
	if s.Schema == "" {
		return fmt.Errorf("%w: missing $schema", ErrInvalidSpec)
	}
	if s.Data == nil || s.Data.URL == "" {
		return fmt.Errorf("%w: missing data url", ErrInvalidSpec)
	}
	switch {
	case s.Mark == nil && len(s.Layer) == 0:
		return fmt.Errorf("%w: no mark or layers", ErrInvalidSpec)
	case s.Mark != nil && len(s.Layer) > 0:
		return fmt.Errorf("%w: both mark and layers set", ErrInvalidSpec)
	}

	derived := make(map[string]bool)
	for _, step := range s.Transform {
		if step == nil {
			continue
		}
		for _, name := range step.outputs() {
			derived[name] = true
		}
	}

	for i, step := range s.Transform {
		if step == nil {
			return fmt.Errorf("%w: step %d is nil", ErrInvalidSpec, i)
		}
		if err := step.check(); err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrInvalidSpec, i, err)
		}
		for _, name := range step.reads() {
			if !avail.has(name, derived) {
				return fmt.Errorf("%w: step %d (%s) reads %q before it exists", ErrInvalidSpec, i, step.Kind(), name)
			}
		}
		avail = step.next(avail)
	}

	for _, m := range s.Marks() {
		if m.Type == "" {
			return fmt.Errorf("%w: mark without type", ErrInvalidSpec)
		}
	}
	for _, enc := range s.Encodings() {
		if enc == nil {
			return fmt.Errorf("%w: missing encoding", ErrInvalidSpec)
		}
		for _, ch := range enc.Channels() {
			if ch.Type == "" {
				return fmt.Errorf("%w: channel %q has no type", ErrInvalidSpec, ch.Field)
			}
			if ch.Field != "" && !avail.has(ch.Field, derived) {
				return fmt.Errorf("%w: encoding reads unknown field %q", ErrInvalidSpec, ch.Field)
			}
		}
	}
	return nil
}
