package prompt

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/govtech-bb/formflow/pkg/declaration"
	"github.com/govtech-bb/formflow/pkg/navigator"
	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/validate"
	"github.com/govtech-bb/formflow/pkg/visibility"
	"github.com/govtech-bb/formflow/pkg/values"
)

// Walker drives one form session on a terminal, step by step, with the same
// navigation and validation rules the server applies.
type Walker struct {
	form   schema.Form
	driver PromptDriver
	clock  func() time.Time
}

// NewWalker builds a walker for the given form.
func NewWalker(form schema.Form, driver PromptDriver) *Walker {
	return &Walker{form: form, driver: driver, clock: time.Now}
}

// Run walks every visible step and returns the collected values. A failing
// step is re-prompted until it validates; back-tracking happens from the
// check-your-answers summary.
func (w *Walker) Run(ctx context.Context) (values.Map, error) {
	vals := values.Map{}

	instances := navigator.Expand(w.form, vals)
	if len(instances) == 0 {
		return nil, fmt.Errorf("prompt: form %q has no visible steps", w.form.ID)
	}
	pos := instances[0].ID

	for {
		inst, idx := navigator.Current(w.form, vals, pos)
		if idx < 0 {
			return vals, nil
		}
		pos = inst.ID

		switch {
		case inst.Step.ID == schema.StepConfirmation:
			return vals, nil

		case inst.Step.ID == schema.StepCheckYourAnswers:
			done, err := w.reviewAnswers(ctx, vals)
			if err != nil {
				return nil, err
			}
			if !done {
				continue
			}

		case inst.Step.ID == schema.StepDeclaration:
			if err := w.declare(ctx, vals); err != nil {
				return nil, err
			}

		default:
			if err := w.promptStep(ctx, inst, vals); err != nil {
				return nil, err
			}
		}

		tr := navigator.Next(w.form, vals, pos)
		if !tr.Errors.Valid() {
			for _, fe := range tr.Errors.Errors {
				if err := w.driver.Info(ctx, "✗ "+fe.Message); err != nil {
					return nil, err
				}
			}
			continue
		}
		if !tr.Moved {
			return vals, nil
		}
		pos = tr.Position

		if err := w.maybeAddAnother(ctx, inst, vals, &pos); err != nil {
			return nil, err
		}
	}
}

func (w *Walker) promptStep(ctx context.Context, inst navigator.StepInstance, vals values.Map) error {
	if inst.Step.Title != "" {
		title := inst.Step.Title
		if inst.Repeated() {
			title = fmt.Sprintf("%s (%d)", title, inst.EntryIndex+1)
		}
		if err := w.driver.Info(ctx, "\n== "+title); err != nil {
			return err
		}
	}

	for _, field := range inst.Step.Fields {
		if !w.fieldVisible(field, inst, vals) {
			continue
		}
		if inst.Repeated() && inst.EntryIndex > 0 && isShared(inst.Step.Repeatable, field.Name) {
			continue
		}
		if err := w.promptField(ctx, field, inst.FieldPrefix(), vals); err != nil {
			return err
		}
	}
	if inst.Repeated() {
		w.syncSharedFields(inst, vals)
	}
	return nil
}

func isShared(rep *schema.RepeatableSpec, name string) bool {
	for _, shared := range rep.SharedFields {
		if shared == name {
			return true
		}
	}
	return false
}

// syncSharedFields copies the group's shared answers onto every entry so a
// later entry never starts without them and an edit reaches all entries.
func (w *Walker) syncSharedFields(inst navigator.StepInstance, vals values.Map) {
	rep := inst.Step.Repeatable
	if len(rep.SharedFields) == 0 {
		return
	}
	count := len(values.Entries(vals, rep.ArrayFieldName))
	for _, shared := range rep.SharedFields {
		v, ok := values.Get(vals, inst.FieldPrefix()+shared)
		for i := 0; !ok && i < count; i++ {
			v, ok = values.Get(vals, rep.ArrayFieldName+"."+strconv.Itoa(i)+"."+shared)
		}
		if !ok {
			continue
		}
		for i := 0; i < count; i++ {
			values.Set(vals, rep.ArrayFieldName+"."+strconv.Itoa(i)+"."+shared, v)
		}
	}
}

func (w *Walker) fieldVisible(field schema.Field, inst navigator.StepInstance, vals values.Map) bool {
	if inst.Repeated() {
		return visibility.VisibleForEntry(field.ConditionalOn, vals, inst.Step.Repeatable.ArrayFieldName, inst.EntryIndex)
	}
	return visibility.Visible(field.ConditionalOn, vals)
}

func (w *Walker) promptField(ctx context.Context, field schema.Field, prefix string, vals values.Map) error {
	path := prefix + field.Name
	message := field.Label
	if message == "" {
		message = field.Name
	}

	switch field.Type {
	case schema.FieldSelect, schema.FieldRadio:
		labels := optionLabels(field.Options)
		idx, err := w.driver.Select(ctx, SelectConfig{Message: message, Options: labels, Help: field.Hint})
		if err != nil {
			return err
		}
		if idx >= 0 {
			values.Set(vals, path, field.Options[idx].Value)
		}

	case schema.FieldCheckboxGroup:
		labels := optionLabels(field.Options)
		picked, err := w.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Help: field.Hint})
		if err != nil {
			return err
		}
		var out []string
		for _, i := range picked {
			out = append(out, field.Options[i].Value)
		}
		values.Set(vals, path, out)

	case schema.FieldCheckbox:
		ok, err := w.driver.Confirm(ctx, ConfirmConfig{Message: message, Help: field.Hint})
		if err != nil {
			return err
		}
		values.Set(vals, path, ok)

	case schema.FieldDate:
		for _, part := range []string{"day", "month", "year"} {
			in, err := w.driver.Input(ctx, InputConfig{Message: message + " (" + part + ")"})
			if err != nil {
				return err
			}
			values.Set(vals, path+"."+part, in)
		}

	case schema.FieldTextarea:
		in, err := w.driver.TextArea(ctx, InputConfig{Message: message, Help: field.Hint})
		if err != nil {
			return err
		}
		values.Set(vals, path, in)

	case schema.FieldShowHide:
		open, err := w.driver.Confirm(ctx, ConfirmConfig{Message: field.ShowHide.Summary, Help: field.ShowHide.Description})
		if err != nil {
			return err
		}
		values.Set(vals, prefix+field.ShowHide.StateFieldName, open)
		if open {
			for _, nested := range field.ShowHide.Fields {
				if err := w.promptField(ctx, nested, prefix, vals); err != nil {
					return err
				}
			}
		}

	default:
		existing, _ := values.Get(vals, path)
		in, err := w.driver.Input(ctx, InputConfig{Message: message, Help: field.Hint, Default: values.CoerceString(existing)})
		if err != nil {
			return err
		}
		values.Set(vals, path, in)
	}
	return nil
}

// maybeAddAnother offers another entry after the last instance of a
// repeatable group completes, up to the group's limit.
func (w *Walker) maybeAddAnother(ctx context.Context, inst navigator.StepInstance, vals values.Map, pos *string) error {
	rep := inst.Step.Repeatable
	if rep == nil || rep.SkipAddAnother {
		return nil
	}

	entries := len(values.Entries(vals, rep.ArrayFieldName))
	if entries == 0 {
		entries = 1
	}
	if inst.EntryIndex != entries-1 || entries >= rep.MaxItems {
		return nil
	}

	label := rep.AddAnotherLabel
	if label == "" {
		label = "Add another?"
	}
	again, err := w.driver.Confirm(ctx, ConfirmConfig{Message: label})
	if err != nil {
		return err
	}
	if !again {
		return nil
	}

	if len(inst.Step.Fields) > 0 {
		seed := fmt.Sprintf("%s.%d.%s", rep.ArrayFieldName, entries, inst.Step.Fields[0].Name)
		values.Set(vals, seed, "")
	}
	*pos = inst.Step.ID + "-" + strconv.Itoa(entries+1)
	return nil
}

// reviewAnswers prints the summary and lets the user jump back to fix a
// step. Returns true when the user confirms everything is correct.
func (w *Walker) reviewAnswers(ctx context.Context, vals values.Map) (bool, error) {
	if err := w.driver.Info(ctx, "\n== Check your answers"); err != nil {
		return false, err
	}

	var editable []navigator.StepInstance
	for _, inst := range navigator.Expand(w.form, vals) {
		if inst.Step.Terminal() {
			continue
		}
		editable = append(editable, inst)
		for _, field := range inst.Step.Fields {
			if !w.fieldVisible(field, inst, vals) {
				continue
			}
			raw, _ := values.Get(vals, inst.FieldPrefix()+field.Name)
			val := values.CoerceString(raw)
			if err := w.driver.Info(ctx, fmt.Sprintf("  %s: %s", field.Label, val)); err != nil {
				return false, err
			}
		}
	}

	ok, err := w.driver.Confirm(ctx, ConfirmConfig{Message: "Is this information correct?", Default: true})
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	titles := make([]string, 0, len(editable))
	for _, inst := range editable {
		title := inst.Step.Title
		if inst.Repeated() {
			title = fmt.Sprintf("%s (%d)", title, inst.EntryIndex+1)
		}
		titles = append(titles, title)
	}
	idx, err := w.driver.Select(ctx, SelectConfig{Message: "Which step would you like to change?", Options: titles})
	if err != nil {
		return false, err
	}
	if idx < 0 || idx >= len(editable) {
		return false, nil
	}

	target := editable[idx]
	for {
		if err := w.promptStep(ctx, target, vals); err != nil {
			return false, err
		}
		res := w.validateInstance(target, vals)
		if res.Valid() {
			return false, nil
		}
		for _, fe := range res.Errors {
			if err := w.driver.Info(ctx, "✗ "+fe.Message); err != nil {
				return false, err
			}
		}
	}
}

func (w *Walker) validateInstance(inst navigator.StepInstance, vals values.Map) validate.Result {
	if inst.Repeated() {
		return validate.Entry(inst.Step, vals, inst.Step.Repeatable.ArrayFieldName, inst.EntryIndex)
	}
	return validate.Step(inst.Step, vals)
}

// declare shows the derived declaration and asks for agreement. Declining
// aborts the walk rather than submitting an unagreed application.
func (w *Walker) declare(ctx context.Context, vals values.Map) error {
	name := declaration.FullName(vals, declaration.DefaultPrefix)
	lines := []string{
		"\n== Declaration",
		"I declare that the information I have given is true and complete.",
	}
	if name != "" {
		lines = append(lines, "Name: "+name)
	}
	lines = append(lines, "Date: "+declaration.Today(w.clock))

	for _, line := range lines {
		if err := w.driver.Info(ctx, line); err != nil {
			return err
		}
	}

	ok, err := w.driver.Confirm(ctx, ConfirmConfig{Message: "Do you agree?"})
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}

func optionLabels(options []schema.Option) []string {
	labels := make([]string, 0, len(options))
	for _, opt := range options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		labels = append(labels, label)
	}
	return labels
}
