package navigator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/values"
)

func TestApplySetValueDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	form := branchingForm()
	before := NewState(form)

	after, err := Apply(form, before, SetValue{Path: "contact.email", Value: "a@b.com"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got, _ := values.Get(after.Values, "contact.email"); got != "a@b.com" {
		t.Fatalf("expected value written, got %v", got)
	}
	if _, ok := values.Get(before.Values, "contact.email"); ok {
		t.Fatalf("expected input state untouched")
	}
}

func TestApplyNextStepKeepsErrors(t *testing.T) {
	t.Parallel()

	form := branchingForm()
	state := NewState(form)

	state, err := Apply(form, state, NextStep{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if state.Position != "applying-for-yourself" {
		t.Fatalf("expected walk to stay put, at %q", state.Position)
	}
	if state.Errors.ByField["applyingForYourself"] == "" {
		t.Fatalf("expected required error to surface, got %v", state.Errors)
	}

	state, err = Apply(form, state, SetValue{Path: "applyingForYourself", Value: "yes"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	state, err = Apply(form, state, NextStep{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if state.Position != "contact" || !state.Errors.Valid() {
		t.Fatalf("expected clean advance to contact, got %q %v", state.Position, state.Errors)
	}
}

func TestApplyPreviousClearsErrors(t *testing.T) {
	t.Parallel()

	form := branchingForm()
	state := State{Position: "contact", Values: values.Map{"applyingForYourself": "yes"}}

	state, err := Apply(form, state, NextStep{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if state.Errors.Valid() {
		t.Fatalf("expected email error before going back")
	}

	state, err = Apply(form, state, PreviousStep{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if state.Position != "applying-for-yourself" || !state.Errors.Valid() {
		t.Fatalf("expected errors cleared on back, got %q %v", state.Position, state.Errors)
	}
}

func TestApplyJumpToInvisibleStepFails(t *testing.T) {
	t.Parallel()

	form := branchingForm()
	state := State{Position: "contact", Values: values.Map{"applyingForYourself": "yes"}}

	if _, err := Apply(form, state, JumpTo{ID: "their-details"}); err == nil {
		t.Fatalf("expected jump to hidden step to fail")
	}

	next, err := Apply(form, state, JumpTo{ID: schema.StepCheckYourAnswers})
	if err != nil || next.Position != schema.StepCheckYourAnswers {
		t.Fatalf("expected jump to check-your-answers, got %q err=%v", next.Position, err)
	}
}

func TestApplyMarkSubmitted(t *testing.T) {
	t.Parallel()

	form := branchingForm()
	state := State{Position: schema.StepDeclaration, Values: values.Map{}}

	state, err := Apply(form, state, MarkSubmitted{Reference: "ABC-123"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !state.Submitted || state.Reference != "ABC-123" || state.Position != schema.StepConfirmation {
		t.Fatalf("unexpected submitted state: %+v", state)
	}
}

func TestApplyUnknownAction(t *testing.T) {
	t.Parallel()

	if _, err := Apply(branchingForm(), State{}, nil); err == nil {
		t.Fatalf("expected unhandled action error")
	}
}

func TestSharedFieldPropagation(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID: "primary-school-textbook-grant",
		Steps: []schema.Step{
			{ID: "child-details",
				Repeatable: &schema.RepeatableSpec{
					ArrayFieldName: "beneficiaries",
					MaxItems:       4,
					SharedFields:   []string{"schoolName"},
				},
				Fields: []schema.Field{
					{Name: "firstName", Label: "First name", Type: schema.FieldText},
					{Name: "schoolName", Label: "School", Type: schema.FieldText},
				}},
		},
	}

	state := State{Position: "child-details-1", Values: values.Map{}}
	actions := []Action{
		SetValue{Path: "beneficiaries.0.firstName", Value: "Ava"},
		SetValue{Path: "beneficiaries.1.firstName", Value: "Ben"},
		SetValue{Path: "beneficiaries.1.schoolName", Value: "St. Giles Primary"},
	}
	for _, a := range actions {
		var err error
		state, err = Apply(form, state, a)
		if err != nil {
			t.Fatalf("apply %T: %v", a, err)
		}
	}

	want := []string{"St. Giles Primary", "St. Giles Primary"}
	var got []string
	for _, entry := range values.Entries(state.Values, "beneficiaries") {
		got = append(got, values.CoerceString(entry["schoolName"]))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("shared field not propagated (-want +got):\n%s", diff)
	}
}

func TestSharedFieldBackfillsNewEntry(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID: "primary-school-textbook-grant",
		Steps: []schema.Step{
			{ID: "child-details",
				Repeatable: &schema.RepeatableSpec{
					ArrayFieldName: "beneficiaries",
					MaxItems:       4,
					SharedFields:   []string{"schoolName"},
				},
				Fields: []schema.Field{
					{Name: "firstName", Label: "First name", Type: schema.FieldText},
					{Name: "schoolName", Label: "School", Type: schema.FieldText},
				}},
		},
	}

	// The shared answer lands while only one entry exists; a later write
	// that grows the group must carry it onto the new entry.
	state := State{Position: "child-details-1", Values: values.Map{}}
	actions := []Action{
		SetValue{Path: "beneficiaries.0.firstName", Value: "Ava"},
		SetValue{Path: "beneficiaries.0.schoolName", Value: "St. Giles Primary"},
		SetValue{Path: "beneficiaries.1.firstName", Value: "Ben"},
	}
	for _, a := range actions {
		var err error
		state, err = Apply(form, state, a)
		if err != nil {
			t.Fatalf("apply %T: %v", a, err)
		}
	}

	got, ok := values.Get(state.Values, "beneficiaries.1.schoolName")
	if !ok {
		t.Fatal("second entry has no schoolName")
	}
	if diff := cmp.Diff("St. Giles Primary", values.CoerceString(got)); diff != "" {
		t.Fatalf("backfilled value mismatch (-want +got):\n%s", diff)
	}
}
