package navigator

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/values"
)

func branchingForm() schema.Form {
	return schema.Form{
		ID: "get-marriage-certificate",
		Steps: []schema.Step{
			{ID: "applying-for-yourself", Title: "Who is this for?", Fields: []schema.Field{
				{Name: "applyingForYourself", Label: "Applying for yourself?", Type: schema.FieldRadio,
					Validation: schema.ValidationSpec{Required: "Select an option"}},
			}},
			{ID: "their-details", Title: "Their details",
				ConditionalOn: &schema.Condition{Field: "applyingForYourself", Value: "no"},
				Fields: []schema.Field{
					{Name: "subject.firstName", Label: "First name", Type: schema.FieldText,
						Validation: schema.ValidationSpec{Required: "First name is required"}},
				}},
			{ID: "contact", Title: "Contact", Fields: []schema.Field{
				{Name: "contact.email", Label: "Email", Type: schema.FieldEmail,
					Validation: schema.ValidationSpec{Required: "Email address is required"}},
			}},
			{ID: schema.StepCheckYourAnswers, Title: "Check your answers"},
			{ID: schema.StepDeclaration, Title: "Declaration"},
			{ID: schema.StepConfirmation, Title: "Application submitted"},
		},
	}
}

func repeatableForm() schema.Form {
	return schema.Form{
		ID: "primary-school-textbook-grant",
		Steps: []schema.Step{
			{ID: "child-details", Title: "Child details",
				Repeatable: &schema.RepeatableSpec{ArrayFieldName: "beneficiaries", MaxItems: 2},
				Fields: []schema.Field{
					{Name: "firstName", Label: "First name", Type: schema.FieldText,
						Validation: schema.ValidationSpec{Required: "First name is required"}},
				}},
			{ID: "guardian-details", Title: "Your relationship",
				Repeatable:    &schema.RepeatableSpec{ArrayFieldName: "beneficiaries", MaxItems: 2},
				ConditionalOn: &schema.Condition{Field: "isParentOrGuardian", Value: "no"},
				Fields: []schema.Field{
					{Name: "relationshipDescription", Label: "Relationship", Type: schema.FieldText,
						Validation: schema.ValidationSpec{Required: "Describe your relationship"}},
				}},
			{ID: schema.StepCheckYourAnswers, Title: "Check your answers"},
		},
	}
}

func TestExpandSkipsFailedConditions(t *testing.T) {
	t.Parallel()

	form := branchingForm()

	ids := func(vals values.Map) []string {
		var out []string
		for _, inst := range Expand(form, vals) {
			out = append(out, inst.ID)
		}
		return out
	}

	got := ids(values.Map{"applyingForYourself": "yes"})
	want := []string{"applying-for-yourself", "contact", "check-your-answers", "declaration", "confirmation"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visible steps mismatch (-want +got):\n%s", diff)
	}

	got = ids(values.Map{"applyingForYourself": "no"})
	want = []string{"applying-for-yourself", "their-details", "contact", "check-your-answers", "declaration", "confirmation"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visible steps mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandRepeatable(t *testing.T) {
	t.Parallel()

	form := repeatableForm()

	// No entries yet: one virtual step.
	instances := Expand(form, values.Map{})
	if instances[0].ID != "child-details-1" || instances[0].EntryIndex != 0 {
		t.Fatalf("expected single child-details-1 instance, got %+v", instances[0])
	}

	state := values.Map{}
	values.Set(state, "beneficiaries.0.firstName", "Ava")
	values.Set(state, "beneficiaries.0.isParentOrGuardian", "yes")
	values.Set(state, "beneficiaries.1.firstName", "Ben")
	values.Set(state, "beneficiaries.1.isParentOrGuardian", "no")

	var ids []string
	for _, inst := range Expand(form, state) {
		ids = append(ids, inst.ID)
	}
	// guardian-details appears only for the entry answering "no".
	want := []string{"child-details-1", "child-details-2", "guardian-details-2", "check-your-answers"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("instances mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandClampsToMaxItems(t *testing.T) {
	t.Parallel()

	form := repeatableForm()
	state := values.Map{}
	for i := 0; i < 3; i++ {
		values.Set(state, fmt.Sprintf("beneficiaries.%d.firstName", i), "Kid")
	}

	count := 0
	for _, inst := range Expand(form, state) {
		if inst.Step.ID == "child-details" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected clamp to maxItems=2 virtual steps, got %d", count)
	}
}

func TestNextBlocksOnValidation(t *testing.T) {
	t.Parallel()

	form := branchingForm()

	tr := Next(form, values.Map{}, "applying-for-yourself")
	if tr.Moved {
		t.Fatalf("expected walk to stay on invalid step")
	}
	if len(tr.Errors.Errors) != 1 || tr.Errors.Errors[0].Field != "applyingForYourself" {
		t.Fatalf("expected required error, got %v", tr.Errors.Errors)
	}

	tr = Next(form, values.Map{"applyingForYourself": "yes"}, "applying-for-yourself")
	if !tr.Moved || tr.Position != "contact" {
		t.Fatalf("expected move to contact (their-details skipped), got %+v", tr)
	}
}

func TestNextNeverReachesConfirmation(t *testing.T) {
	t.Parallel()

	form := branchingForm()
	state := values.Map{"applyingForYourself": "yes", "contact": map[string]any{"email": "a@b.com"}}

	tr := Next(form, state, schema.StepDeclaration)
	if tr.Moved || tr.Position != schema.StepDeclaration {
		t.Fatalf("expected declaration to be the last reachable step, got %+v", tr)
	}
}

func TestPreviousNeverValidates(t *testing.T) {
	t.Parallel()

	form := branchingForm()

	// contact step is invalid (no email) but back navigation still moves.
	tr := Previous(form, values.Map{"applyingForYourself": "yes"}, "contact")
	if !tr.Moved || tr.Position != "applying-for-yourself" {
		t.Fatalf("expected move back without validation, got %+v", tr)
	}
	if len(tr.Errors.Errors) != 0 {
		t.Fatalf("expected no errors on back navigation, got %v", tr.Errors.Errors)
	}

	tr = Previous(form, values.Map{}, "applying-for-yourself")
	if tr.Moved {
		t.Fatalf("expected first step to stay put")
	}
}

func TestCurrentSlidesOffInvisibleStep(t *testing.T) {
	t.Parallel()

	form := branchingForm()

	// The user reached their-details, went back, and changed the answer so
	// the step is no longer visible.
	inst, idx := Current(form, values.Map{"applyingForYourself": "yes"}, "their-details")
	if idx < 0 || inst.ID != "contact" {
		t.Fatalf("expected walk to slide to contact, got %+v", inst)
	}
}

func TestGoTo(t *testing.T) {
	t.Parallel()

	form := branchingForm()
	state := values.Map{"applyingForYourself": "no"}

	tr, err := GoTo(form, state, "their-details")
	if err != nil || tr.Position != "their-details" {
		t.Fatalf("expected jump to visible step, got %+v err=%v", tr, err)
	}

	if _, err := GoTo(form, values.Map{"applyingForYourself": "yes"}, "their-details"); err == nil {
		t.Fatalf("expected jump to invisible step to fail")
	}
}

func TestValidateFormCollectsAllErrors(t *testing.T) {
	t.Parallel()

	form := branchingForm()
	res := ValidateForm(form, values.Map{"applyingForYourself": "no"})

	var fields []string
	for _, e := range res.Errors {
		fields = append(fields, e.Field)
	}
	want := []string{"subject.firstName", "contact.email"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("whole-form error order mismatch (-want +got):\n%s", diff)
	}
}
