// Package navigator walks the ordered step list of a form schema: it
// expands repeatable steps into per-entry virtual steps, filters steps whose
// conditions fail, and computes forward/backward transitions. Conditions are
// re-evaluated fresh on every transition because earlier answers can change
// later visibility.
package navigator

import (
	"fmt"
	"strconv"

	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/validate"
	"github.com/govtech-bb/formflow/pkg/values"
	"github.com/govtech-bb/formflow/pkg/visibility"
)

// StepInstance is one renderable screen after expansion. A repeatable step
// contributes one instance per array entry, each bound to its EntryIndex;
// plain steps carry EntryIndex -1.
type StepInstance struct {
	Step       schema.Step
	EntryIndex int
	ID         string
	StepOrder  int
}

// Repeated reports whether the instance is bound to an array entry.
func (si StepInstance) Repeated() bool { return si.EntryIndex >= 0 }

// FieldPrefix returns the dotted prefix entry-bound field names resolve
// under, or "" for plain steps.
func (si StepInstance) FieldPrefix() string {
	if !si.Repeated() {
		return ""
	}
	return si.Step.Repeatable.ArrayFieldName + "." + strconv.Itoa(si.EntryIndex) + "."
}

// Expand computes the visible step sequence for the current form values.
// Steps whose condition fails are skipped, never reordered. A repeatable
// step expands to max(1, len(entries)) instances, clamped to MaxItems;
// entries beyond the limit are never shown or validated. A repeatable step
// that also carries a condition appears once per entry where the
// entry-relative condition holds (the guardian-style sub-step).
func Expand(form schema.Form, vals values.Map) []StepInstance {
	instances := make([]StepInstance, 0, len(form.Steps))
	for order, step := range form.Steps {
		if rep := step.Repeatable; rep != nil {
			n := len(values.Entries(vals, rep.ArrayFieldName))
			if n < 1 {
				n = 1
			}
			if n > rep.MaxItems {
				n = rep.MaxItems
			}
			for i := 0; i < n; i++ {
				if !visibility.VisibleForEntry(step.ConditionalOn, vals, rep.ArrayFieldName, i) {
					continue
				}
				instances = append(instances, StepInstance{
					Step:       step,
					EntryIndex: i,
					ID:         step.ID + "-" + strconv.Itoa(i+1),
					StepOrder:  order,
				})
			}
			continue
		}

		if !visibility.Visible(step.ConditionalOn, vals) {
			continue
		}
		instances = append(instances, StepInstance{
			Step:       step,
			EntryIndex: -1,
			ID:         step.ID,
			StepOrder:  order,
		})
	}
	return instances
}

// indexOf returns the position of an instance id, or -1.
func indexOf(instances []StepInstance, id string) int {
	for i, inst := range instances {
		if inst.ID == id {
			return i
		}
	}
	return -1
}

// Current resolves a stored position against a fresh expansion. When the
// positioned instance has become invisible (the user changed an earlier
// answer), the walk slides forward to the nearest following visible
// instance, so a step whose condition is false is never rendered.
func Current(form schema.Form, vals values.Map, position string) (StepInstance, int) {
	instances := Expand(form, vals)
	if len(instances) == 0 {
		return StepInstance{}, -1
	}
	if position == "" {
		return instances[0], 0
	}
	if idx := indexOf(instances, position); idx >= 0 {
		return instances[idx], idx
	}

	// The instance vanished. Recover its ordinal in the authored step list
	// and slide to the first surviving instance at or after it.
	order := stepOrderOf(form, position)
	for i, inst := range instances {
		if inst.StepOrder >= order {
			return instances[i], i
		}
	}
	last := len(instances) - 1
	return instances[last], last
}

func stepOrderOf(form schema.Form, position string) int {
	for order, step := range form.Steps {
		if step.ID == position {
			return order
		}
		if step.Repeatable != nil {
			// repeated instances use "<id>-<n>" ids
			for i := 0; i < step.Repeatable.MaxItems; i++ {
				if position == step.ID+"-"+strconv.Itoa(i+1) {
					return order
				}
			}
		}
	}
	return 0
}

// Transition is the outcome of a navigation request.
type Transition struct {
	Position string
	Errors   validate.Result
	Moved    bool
}

// Next validates the current instance and, when it passes, advances to the
// next visible instance computed against the updated form values. On
// validation failure the walk stays put and surfaces the errors. The
// confirmation sentinel is never reachable through Next; only a successful
// submission moves there.
func Next(form schema.Form, vals values.Map, position string, opts ...validate.Option) Transition {
	current, idx := Current(form, vals, position)
	if idx < 0 {
		return Transition{Position: position}
	}

	var result validate.Result
	if current.Repeated() {
		rep := current.Step.Repeatable
		result = validate.Entry(current.Step, vals, rep.ArrayFieldName, current.EntryIndex, opts...)
	} else {
		result = validate.Step(current.Step, vals, opts...)
	}
	if !result.Valid() {
		return Transition{Position: current.ID, Errors: result}
	}

	instances := Expand(form, vals)
	for i := idx + 1; i < len(instances); i++ {
		if instances[i].Step.ID == schema.StepConfirmation {
			break
		}
		return Transition{Position: instances[i].ID, Moved: true}
	}
	return Transition{Position: current.ID}
}

// Previous moves to the prior visible instance without validating: back
// navigation never blocks on errors.
func Previous(form schema.Form, vals values.Map, position string) Transition {
	current, idx := Current(form, vals, position)
	if idx <= 0 {
		return Transition{Position: current.ID}
	}
	instances := Expand(form, vals)
	return Transition{Position: instances[idx-1].ID, Moved: true}
}

// ValidateForm runs every visible instance's rules in sequence order,
// producing the whole-form error list the submission endpoint checks before
// accepting a payload. Sentinel steps without fields contribute nothing.
func ValidateForm(form schema.Form, vals values.Map, opts ...validate.Option) validate.Result {
	combined := validate.Result{ByField: make(map[string]string)}
	for _, inst := range Expand(form, vals) {
		if inst.Step.ID == schema.StepConfirmation {
			continue
		}
		var res validate.Result
		if inst.Repeated() {
			rep := inst.Step.Repeatable
			res = validate.Entry(inst.Step, vals, rep.ArrayFieldName, inst.EntryIndex, opts...)
		} else {
			res = validate.Step(inst.Step, vals, opts...)
		}
		combined.Errors = append(combined.Errors, res.Errors...)
		for field, msg := range res.ByField {
			if _, exists := combined.ByField[field]; !exists {
				combined.ByField[field] = msg
			}
		}
	}
	return combined
}

// GoTo jumps directly to a visible instance, enabling "Change" links from
// the check-your-answers step. Jumping to an invisible or unknown instance
// is an error.
func GoTo(form schema.Form, vals values.Map, id string) (Transition, error) {
	instances := Expand(form, vals)
	if idx := indexOf(instances, id); idx >= 0 {
		return Transition{Position: id, Moved: true}, nil
	}
	return Transition{}, fmt.Errorf("navigator: step %q is not visible", id)
}
