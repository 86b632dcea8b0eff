package visibility

import (
	"testing"

	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/values"
)

func TestVisibleNilCondition(t *testing.T) {
	t.Parallel()

	states := []values.Map{
		nil,
		{},
		{"a": "x"},
		{"a": map[string]any{"b": "y"}},
	}
	for _, state := range states {
		if !Visible(nil, state) {
			t.Fatalf("expected nil condition to always be visible (state %v)", state)
		}
	}
}

func TestVisibleEquality(t *testing.T) {
	t.Parallel()

	cond := &schema.Condition{Field: "a", Value: "x"}

	if !Visible(cond, values.Map{"a": "x"}) {
		t.Fatalf("expected visible for matching value")
	}
	if Visible(cond, values.Map{"a": "y"}) {
		t.Fatalf("expected hidden for non-matching value")
	}
	if Visible(cond, values.Map{}) {
		t.Fatalf("expected hidden for missing value")
	}
}

func TestVisibleDottedPath(t *testing.T) {
	t.Parallel()

	cond := &schema.Condition{Field: "applicant.hasOtherFirstName", Value: "yes"}
	state := values.Map{
		"applicant": map[string]any{"hasOtherFirstName": "yes"},
	}
	if !Visible(cond, state) {
		t.Fatalf("expected dotted-path condition to match nested value")
	}
}

func TestVisibleNumericCoercion(t *testing.T) {
	t.Parallel()

	cond := &schema.Condition{Field: "order.copies", Value: "0"}
	if !Visible(cond, values.Map{"order": map[string]any{"copies": 0}}) {
		t.Fatalf("expected numeric 0 to match literal \"0\"")
	}
	if Visible(cond, values.Map{"order": map[string]any{"copies": 1}}) {
		t.Fatalf("expected numeric 1 not to match literal \"0\"")
	}
}

func TestVisibleOr(t *testing.T) {
	t.Parallel()

	cond := &schema.Condition{Or: []schema.Condition{
		{Field: "a", Value: "x"},
		{Field: "b", Value: "y"},
	}}

	if !Visible(cond, values.Map{"b": "y"}) {
		t.Fatalf("expected or condition visible when any sub-condition holds")
	}
	if Visible(cond, values.Map{"a": "z", "b": "z"}) {
		t.Fatalf("expected or condition hidden when no sub-condition holds")
	}

	empty := &schema.Condition{Or: []schema.Condition{}}
	if Visible(empty, values.Map{"a": "x"}) {
		t.Fatalf("expected empty or to be false")
	}
}

func TestVisibleForEntry(t *testing.T) {
	t.Parallel()

	cond := &schema.Condition{Field: "isParentOrGuardian", Value: "no"}
	state := values.Map{
		"beneficiaries": []any{
			map[string]any{"isParentOrGuardian": "yes"},
			map[string]any{"isParentOrGuardian": "no"},
		},
	}

	if VisibleForEntry(cond, state, "beneficiaries", 0) {
		t.Fatalf("expected entry 0 condition false")
	}
	if !VisibleForEntry(cond, state, "beneficiaries", 1) {
		t.Fatalf("expected entry 1 condition true")
	}
}

func TestVisibleForEntryAbsoluteFallback(t *testing.T) {
	t.Parallel()

	cond := &schema.Condition{Field: "applicant.role", Value: "guardian"}
	state := values.Map{
		"applicant":     map[string]any{"role": "guardian"},
		"beneficiaries": []any{map[string]any{}},
	}
	if !VisibleForEntry(cond, state, "beneficiaries", 0) {
		t.Fatalf("expected absolute fallback to resolve applicant.role")
	}
}
