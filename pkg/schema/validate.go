package schema

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	errFormIDMissing = errors.New("schema: form id is required")
	errNoSteps       = errors.New("schema: form requires at least one step")
)

// Validate checks a form document's integrity: non-empty identifiers, unique
// step ids, unique dot-paths across all steps (two fields may never write the
// same path), compilable patterns, and sane repeatable metadata.
func Validate(form Form) error {
	if form.ID == "" {
		return errFormIDMissing
	}
	if len(form.Steps) == 0 {
		return errNoSteps
	}

	stepIDs := make(map[string]struct{}, len(form.Steps))
	paths := make(map[string]string)

	for _, step := range form.Steps {
		if step.ID == "" {
			return fmt.Errorf("schema: form %q has a step with no id", form.ID)
		}
		if _, dup := stepIDs[step.ID]; dup {
			return fmt.Errorf("schema: form %q defines duplicate step id %q", form.ID, step.ID)
		}
		stepIDs[step.ID] = struct{}{}

		if rep := step.Repeatable; rep != nil {
			if rep.ArrayFieldName == "" {
				return fmt.Errorf("schema: step %q repeatable requires arrayFieldName", step.ID)
			}
			if rep.MaxItems < 1 {
				return fmt.Errorf("schema: step %q repeatable maxItems must be at least 1", step.ID)
			}
		}

		if err := validateCondition(step.ConditionalOn, step.ID); err != nil {
			return err
		}

		for _, field := range step.Fields {
			if err := validateField(field, step, paths); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateField(field Field, step Step, paths map[string]string) error {
	if field.Name == "" {
		return fmt.Errorf("schema: step %q has a field with no name", step.ID)
	}
	if !field.Type.Known() {
		return fmt.Errorf("schema: step %q field %q has unknown type %q", step.ID, field.Name, field.Type)
	}

	// Repeatable steps use entry-relative names, so the same relative path in
	// two repeatable steps is legal; absolute paths must stay unique.
	key := field.Name
	if step.Repeatable != nil {
		key = step.Repeatable.ArrayFieldName + "[]." + field.Name
	}
	if owner, dup := paths[key]; dup && owner != step.ID {
		return fmt.Errorf("schema: field path %q declared in both step %q and step %q", field.Name, owner, step.ID)
	}
	paths[key] = step.ID

	if p := field.Validation.Pattern; p != nil {
		if _, err := regexp.Compile(p.Value); err != nil {
			return fmt.Errorf("schema: step %q field %q pattern: %w", step.ID, field.Name, err)
		}
	}

	if err := validateCondition(field.ConditionalOn, step.ID); err != nil {
		return err
	}

	if sh := field.ShowHide; sh != nil {
		if sh.StateFieldName == "" {
			return fmt.Errorf("schema: step %q field %q showHide requires stateFieldName", step.ID, field.Name)
		}
		for _, nested := range sh.Fields {
			if err := validateField(nested, step, paths); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateCondition(cond *Condition, stepID string) error {
	if cond == nil {
		return nil
	}
	if cond.IsOr() {
		for _, sub := range cond.Or {
			if sub.IsOr() {
				return fmt.Errorf("schema: step %q condition nests or inside or", stepID)
			}
			if sub.Field == "" {
				return fmt.Errorf("schema: step %q condition has a sub-condition with no field", stepID)
			}
		}
		return nil
	}
	if cond.Field == "" {
		return fmt.Errorf("schema: step %q condition requires a field", stepID)
	}
	return nil
}
