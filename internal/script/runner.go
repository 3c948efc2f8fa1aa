package script

import (
	"fmt"
	"strconv"

	"github.com/golang/glog"
	"golang.org/x/exp/slices"

	"github.com/hasbyte1/go-live-collections/collections"
)

// Register names used in events, logs and metrics.
const (
	FlatRegister   = "flat"
	LabelsRegister = "labels"
)

type section = *collections.ObservableSlice[int]

// Label is the transform of the mapped register.
func Label(n int) string { return "#" + strconv.Itoa(n) }

// Event is one change published by a register during a step.
type Event struct {
	Register string `json:"register"`
	Kind     string `json:"kind"`
	OldIndex int    `json:"old_index"`
	NewIndex int    `json:"new_index"`
	Text     string `json:"text"`
}

func eventOf[T any](register string, e collections.ChangeEvent[T]) Event {
	return Event{
		Register: register,
		Kind:     e.Kind.String(),
		OldIndex: e.OldIndex,
		NewIndex: e.NewIndex,
		Text:     e.String(),
	}
}

// Result is the outcome of one step.
type Result struct {
	Index  int      `json:"index"`
	Step   string   `json:"step"`
	Events []Event  `json:"events"`
	Flat   []int    `json:"flat"`
	Labels []string `json:"labels"`

	// Rebuilt is the flat list computed from scratch from the sections.
	Rebuilt []int `json:"rebuilt"`

	IncrementalDigest string `json:"incremental_digest"`
	RebuiltDigest     string `json:"rebuilt_digest"`

	// Consistent reports whether both registers agree with Rebuilt.
	Consistent bool `json:"consistent"`
}

// Runner replays a script. It owns an outer list of sections, a flattening
// register over it and a mapped register over the flattening.
type Runner struct {
	script *Script
	outer  *collections.ObservableSlice[section]
	flat   *collections.Flattening[section, int]
	labels *collections.Mapped[int, string]
	next   int
	events []Event
}

// NewRunner builds the lists and registers for s. metrics may be nil.
func NewRunner(s *Script, metrics *collections.Metrics) (*Runner, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil script", ErrInvalidScript)
	}

	r := &Runner{
		script: s,
		outer:  collections.NewObservableSlice(newSections(s.Sections)...),
	}

	flat, err := collections.NewFlattening[section, int](r.outer,
		collections.WithName(FlatRegister), collections.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}
	flat.Subscribe(func(e collections.ChangeEvent[int]) {
		r.events = append(r.events, eventOf(FlatRegister, e))
	})

	labels, err := collections.NewMapped[int, string](flat, Label,
		collections.WithName(LabelsRegister), collections.WithMetrics(metrics))
	if err != nil {
		flat.Dispose()
		return nil, err
	}
	labels.Subscribe(func(e collections.ChangeEvent[string]) {
		r.events = append(r.events, eventOf(LabelsRegister, e))
	})
	r.flat, r.labels = flat, labels
	return r, nil
}

// Run replays every remaining step and returns their results. It stops at
// the first step that fails.
func (r *Runner) Run() ([]Result, error) {
	var results []Result
	for r.next < len(r.script.Steps) {
		res, err := r.Step()
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Done reports whether every step has been replayed.
func (r *Runner) Done() bool {
	return r.next >= len(r.script.Steps)
}

// Step replays the next step.
func (r *Runner) Step() (Result, error) {
	if r.Done() {
		return Result{}, fmt.Errorf("script: no steps left")
	}
	i := r.next
	step := r.script.Steps[i]
	r.next++

	r.events = nil
	if err := r.apply(step); err != nil {
		return Result{}, fmt.Errorf("step %d (%s): %w", i, step, err)
	}

	res := r.snapshot()
	res.Index = i
	res.Step = step.String()
	res.Events = r.events
	glog.V(1).Infof("script: step %d %s: %d events, consistent=%t", i, step, len(res.Events), res.Consistent)
	return res, nil
}

// State returns the current state without replaying anything.
func (r *Runner) State() Result {
	res := r.snapshot()
	res.Index = -1
	return res
}

// Close disposes the registers.
func (r *Runner) Close() {
	r.labels.Dispose()
	r.flat.Dispose()
}

func (r *Runner) snapshot() Result {
	rebuilt := collections.FlattenAll[section, int](r.outer)
	res := Result{
		Flat:    r.flat.All(),
		Labels:  r.labels.All(),
		Rebuilt: rebuilt,
	}
	res.IncrementalDigest = Digest(res.Flat)
	res.RebuiltDigest = Digest(rebuilt)
	res.Consistent = res.IncrementalDigest == res.RebuiltDigest &&
		slices.Equal(res.Labels, collections.MapAll(collections.Static(rebuilt...), Label))
	return res
}

func (r *Runner) apply(step Step) error {
	switch step.Op {
	case OpAddSection:
		return r.outer.Add(collections.NewObservableSlice(step.Items...))
	case OpInsertSection:
		return r.outer.Insert(step.Index, collections.NewObservableSlice(step.Items...))
	case OpRemoveSections:
		return r.outer.RemoveRange(step.Index, step.Count)
	case OpMoveSection:
		return r.outer.Move(step.From, step.To)
	case OpReplaceSection:
		return r.outer.Set(step.Index, collections.NewObservableSlice(step.Items...))
	case OpResetSections:
		return r.outer.ReplaceAll(newSections(step.Sections)...)
	}

	s, ok := r.outer.Get(step.Section)
	if !ok {
		return fmt.Errorf("%w: %d of %d", ErrNoSuchSection, step.Section, r.outer.Count())
	}
	switch step.Op {
	case OpAddItems:
		return s.Add(step.Items...)
	case OpInsertItems:
		return s.Insert(step.Index, step.Items...)
	case OpRemoveItems:
		return s.RemoveRange(step.Index, step.Count)
	case OpMoveItem:
		return s.Move(step.From, step.To)
	case OpSetItem:
		return s.Set(step.Index, step.Value)
	case OpResetItems:
		return s.ReplaceAll(step.Items...)
	default:
		return fmt.Errorf("%w %q", ErrUnknownOp, step.Op)
	}
}

func newSections(parts [][]int) []section {
	out := make([]section, len(parts))
	for i, items := range parts {
		out[i] = collections.NewObservableSlice(items...)
	}
	return out
}
