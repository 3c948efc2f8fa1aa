// Package script loads and replays YAML scripts of list mutations against a
// flattening register and a mapped register built over it.
//
// A script names the initial sections of an outer list and a sequence of
// steps. Each step mutates either the outer list or one of its sections:
//
//	name: shuffle
//	sections:
//	  - [1, 2]
//	  - [3]
//	steps:
//	  - op: insert_section
//	    index: 1
//	    items: [4]
//	  - op: move_item
//	    section: 0
//	    from: 0
//	    to: 1
package script

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidScript is returned when a script fails validation.
	ErrInvalidScript = errors.New("script: invalid script")

	// ErrUnknownOp is returned for a step whose op is not recognised.
	ErrUnknownOp = errors.New("script: unknown op")

	// ErrNoSuchSection is returned when a step targets a section index the
	// outer list does not have.
	ErrNoSuchSection = errors.New("script: no such section")
)

// Op names a step.
type Op string

const (
	OpAddSection     Op = "add_section"
	OpInsertSection  Op = "insert_section"
	OpRemoveSections Op = "remove_sections"
	OpMoveSection    Op = "move_section"
	OpReplaceSection Op = "replace_section"
	OpResetSections  Op = "reset_sections"
	OpAddItems       Op = "add_items"
	OpInsertItems    Op = "insert_items"
	OpRemoveItems    Op = "remove_items"
	OpMoveItem       Op = "move_item"
	OpSetItem        Op = "set_item"
	OpResetItems     Op = "reset_items"
)

// Known reports whether o is a recognised op.
func (o Op) Known() bool {
	switch o {
	case OpAddSection, OpInsertSection, OpRemoveSections, OpMoveSection,
		OpReplaceSection, OpResetSections, OpAddItems, OpInsertItems,
		OpRemoveItems, OpMoveItem, OpSetItem, OpResetItems:
		return true
	}
	return false
}

// outer reports whether o mutates the outer list rather than a section.
func (o Op) outer() bool {
	switch o {
	case OpAddSection, OpInsertSection, OpRemoveSections, OpMoveSection,
		OpReplaceSection, OpResetSections:
		return true
	}
	return false
}

// Script is a replay script.
type Script struct {
	Name     string  `yaml:"name"`
	Sections [][]int `yaml:"sections"`
	Steps    []Step  `yaml:"steps"`
}

// Step is one mutation. Which fields apply depends on Op.
type Step struct {
	Op       Op      `yaml:"op"`
	Section  int     `yaml:"section"`
	Index    int     `yaml:"index"`
	Count    int     `yaml:"count"`
	From     int     `yaml:"from"`
	To       int     `yaml:"to"`
	Value    int     `yaml:"value"`
	Items    []int   `yaml:"items"`
	Sections [][]int `yaml:"sections"`
}

func (s Step) String() string {
	switch s.Op {
	case OpAddSection:
		return fmt.Sprintf("%s %v", s.Op, s.Items)
	case OpAddItems, OpResetItems:
		return fmt.Sprintf("%s section=%d %v", s.Op, s.Section, s.Items)
	case OpInsertSection, OpReplaceSection:
		return fmt.Sprintf("%s index=%d %v", s.Op, s.Index, s.Items)
	case OpRemoveSections:
		return fmt.Sprintf("%s index=%d count=%d", s.Op, s.Index, s.Count)
	case OpMoveSection:
		return fmt.Sprintf("%s from=%d to=%d", s.Op, s.From, s.To)
	case OpResetSections:
		return fmt.Sprintf("%s %v", s.Op, s.Sections)
	case OpInsertItems:
		return fmt.Sprintf("%s section=%d index=%d %v", s.Op, s.Section, s.Index, s.Items)
	case OpRemoveItems:
		return fmt.Sprintf("%s section=%d index=%d count=%d", s.Op, s.Section, s.Index, s.Count)
	case OpMoveItem:
		return fmt.Sprintf("%s section=%d from=%d to=%d", s.Op, s.Section, s.From, s.To)
	case OpSetItem:
		return fmt.Sprintf("%s section=%d index=%d value=%d", s.Op, s.Section, s.Index, s.Value)
	default:
		return string(s.Op)
	}
}

// Load decodes a script from r and validates it.
func Load(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks everything that can be checked without running the
// script. Positions are only known at replay time and are checked then.
func (s *Script) Validate() error {
	var errs []error
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScript, errors.Join(errs...))
	}
	return nil
}

func (s Step) validate() error {
	if !s.Op.Known() {
		return fmt.Errorf("%w %q", ErrUnknownOp, s.Op)
	}
	if !s.Op.outer() && s.Section < 0 {
		return fmt.Errorf("negative section %d", s.Section)
	}
	switch s.Op {
	case OpRemoveSections, OpRemoveItems:
		if s.Count < 1 {
			return fmt.Errorf("%s needs a count of at least 1, got %d", s.Op, s.Count)
		}
	case OpAddItems, OpInsertItems:
		if len(s.Items) == 0 {
			return fmt.Errorf("%s needs at least one item", s.Op)
		}
	}
	return nil
}
