package navigator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/validate"
	"github.com/govtech-bb/formflow/pkg/values"
)

// State is the complete walk state for one form session. It is a value:
// Apply returns a new State and never mutates its input, so callers can keep
// snapshots for undo or storage without defensive copies.
type State struct {
	Position  string
	Values    values.Map
	Errors    validate.Result
	Submitted bool
	Reference string
}

// NewState positions a fresh walk at the form's first visible step.
func NewState(form schema.Form) State {
	first, _ := Current(form, values.Map{}, "")
	return State{Position: first.ID, Values: values.Map{}}
}

// Action is a state transition request handled by Apply.
type Action interface{ isAction() }

// SetValue writes one field value at a dotted path.
type SetValue struct {
	Path  string
	Value any
}

// NextStep validates the current step and advances when it passes.
type NextStep struct{}

// PreviousStep moves back one visible step without validating.
type PreviousStep struct{}

// JumpTo moves directly to a visible step instance (check-your-answers
// "Change" links).
type JumpTo struct{ ID string }

// MarkSubmitted records a successful submission and moves the walk to the
// confirmation sentinel; this is the only route to it.
type MarkSubmitted struct{ Reference string }

func (SetValue) isAction()      {}
func (NextStep) isAction()      {}
func (PreviousStep) isAction()  {}
func (JumpTo) isAction()        {}
func (MarkSubmitted) isAction() {}

// Apply is the pure reducer over walk state. Unknown actions are an error so
// new action types cannot be silently dropped.
func Apply(form schema.Form, state State, action Action, opts ...validate.Option) (State, error) {
	next := state
	next.Values = values.Clone(state.Values)
	if next.Values == nil {
		next.Values = values.Map{}
	}

	switch a := action.(type) {
	case SetValue:
		values.Set(next.Values, a.Path, a.Value)
		propagateShared(form, next.Values, a.Path)
		return next, nil

	case NextStep:
		tr := Next(form, next.Values, next.Position, opts...)
		next.Position = tr.Position
		next.Errors = tr.Errors
		return next, nil

	case PreviousStep:
		tr := Previous(form, next.Values, next.Position)
		next.Position = tr.Position
		next.Errors = validate.Result{}
		return next, nil

	case JumpTo:
		tr, err := GoTo(form, next.Values, a.ID)
		if err != nil {
			return state, err
		}
		next.Position = tr.Position
		next.Errors = validate.Result{}
		return next, nil

	case MarkSubmitted:
		next.Submitted = true
		next.Reference = a.Reference
		if _, ok := form.StepByID(schema.StepConfirmation); ok {
			next.Position = schema.StepConfirmation
		}
		next.Errors = validate.Result{}
		return next, nil

	default:
		return state, fmt.Errorf("navigator: unhandled action %T", action)
	}
}

// propagateShared keeps every entry of a repeatable group aligned on its
// shared fields after a write inside the group. Shared fields hold one
// answer for the whole group (the school all children attend) while
// remaining addressable per entry: a write to the shared field itself is
// copied everywhere, and a write that grows the group backfills the new
// entry from whichever entry already holds the answer.
func propagateShared(form schema.Form, vals values.Map, path string) {
	for _, step := range form.Steps {
		rep := step.Repeatable
		if rep == nil || len(rep.SharedFields) == 0 {
			continue
		}
		prefix := rep.ArrayFieldName + "."
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		dot := strings.Index(rest, ".")
		if dot < 0 {
			continue
		}
		entry := rest[:dot]
		if _, err := strconv.Atoi(entry); err != nil {
			continue
		}
		relative := rest[dot+1:]
		count := len(values.Entries(vals, rep.ArrayFieldName))
		for _, shared := range rep.SharedFields {
			src, found := values.Get(vals, prefix+entry+"."+shared)
			if relative != shared && !found {
				for i := 0; i < count; i++ {
					if v, ok := values.Get(vals, prefix+strconv.Itoa(i)+"."+shared); ok {
						src, found = v, true
						break
					}
				}
			}
			if !found {
				continue
			}
			for i := 0; i < count; i++ {
				values.Set(vals, prefix+strconv.Itoa(i)+"."+shared, src)
			}
		}
	}
}
