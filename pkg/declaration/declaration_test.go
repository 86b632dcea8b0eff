package declaration

import (
	"testing"
	"time"

	"github.com/govtech-bb/formflow/pkg/values"
)

func TestFullName(t *testing.T) {
	t.Parallel()

	state := values.Map{"applicant": map[string]any{
		"firstName": "Jane",
		"lastName":  "Doe",
	}}
	if got := FullName(state, ""); got != "Jane Doe" {
		t.Fatalf("expected %q, got %q", "Jane Doe", got)
	}

	values.Set(state, "applicant.middleName", "Q")
	if got := FullName(state, "applicant"); got != "Jane Q Doe" {
		t.Fatalf("expected %q, got %q", "Jane Q Doe", got)
	}
}

func TestFullNameSkipsBlankParts(t *testing.T) {
	t.Parallel()

	state := values.Map{"applicant": map[string]any{
		"firstName":  "Jane",
		"middleName": "   ",
		"lastName":   "Doe",
	}}
	if got := FullName(state, ""); got != "Jane Doe" {
		t.Fatalf("expected blank middle name skipped, got %q", got)
	}

	if got := FullName(values.Map{}, ""); got != "" {
		t.Fatalf("expected empty name for empty state, got %q", got)
	}
}

func TestToday(t *testing.T) {
	t.Parallel()

	clock := func() time.Time { return time.Date(2026, 1, 5, 23, 59, 0, 0, time.UTC) }
	if got := Today(clock); got != "05/01/2026" {
		t.Fatalf("expected 05/01/2026, got %q", got)
	}
}
