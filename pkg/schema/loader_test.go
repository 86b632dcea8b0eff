package schema

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const minimalJSON = `{
  "id": "get-birth-certificate",
  "title": "Get a birth certificate",
  "serviceType": "birth-certificate",
  "steps": [
    {
      "id": "applicant-details",
      "title": "Your details",
      "fields": [
        {
          "name": "applicant.firstName",
          "label": "First name",
          "type": "text",
          "validation": {
            "required": "First name is required",
            "minLength": {"value": 2, "message": "First name must be at least 2 characters"}
          }
        },
        {
          "name": "applicant.middleName",
          "label": "Middle name(s)",
          "type": "text",
          "validation": {"required": false}
        }
      ]
    }
  ]
}`

const minimalYAML = `
id: get-birth-certificate
title: Get a birth certificate
serviceType: birth-certificate
steps:
  - id: applicant-details
    title: Your details
    fields:
      - name: applicant.firstName
        label: First name
        type: text
        validation:
          required: First name is required
          minLength:
            value: 2
            message: First name must be at least 2 characters
      - name: applicant.middleName
        label: Middle name(s)
        type: text
        validation:
          required: false
`

func TestLoadJSONAndYAMLAgree(t *testing.T) {
	t.Parallel()

	fromJSON, err := Load([]byte(minimalJSON))
	if err != nil {
		t.Fatalf("load JSON: %v", err)
	}
	fromYAML, err := Load([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("load YAML: %v", err)
	}

	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Fatalf("JSON and YAML documents disagree (-json +yaml):\n%s", diff)
	}

	if fromJSON.ID != "get-birth-certificate" {
		t.Fatalf("unexpected form id %q", fromJSON.ID)
	}
	first := fromJSON.Steps[0].Fields[0]
	if !first.Validation.Required.Set() {
		t.Fatalf("expected firstName to be required")
	}
	if got := first.Validation.Required.Message(); got != "First name is required" {
		t.Fatalf("unexpected required message %q", got)
	}
	if fromJSON.Steps[0].Fields[1].Validation.Required.Set() {
		t.Fatalf("expected required: false to decode as not required")
	}
}

func TestLoadSanitisesDisplayText(t *testing.T) {
	t.Parallel()

	doc := `{
  "id": "f",
  "title": "Apply <script>alert(1)</script>now",
  "steps": [
    {"id": "s", "title": "Step", "fields": [
      {"name": "a", "label": "<b>Name</b>", "hint": "plain hint", "type": "text", "validation": {"required": false}}
    ]}
  ]
}`
	form, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.Contains(form.Title, "<script>") {
		t.Fatalf("expected script tags stripped, got %q", form.Title)
	}
	if got := form.Steps[0].Fields[0].Label; got != "Name" {
		t.Fatalf("expected markup stripped from label, got %q", got)
	}
	if got := form.Steps[0].Fields[0].Hint; got != "plain hint" {
		t.Fatalf("expected hint untouched, got %q", got)
	}
}

func TestLoadRejectsMalformedDocuments(t *testing.T) {
	t.Parallel()

	if _, err := Load([]byte("   ")); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := Load([]byte(`{"id": "f", "steps": [}`)); err == nil {
		t.Fatalf("expected error for invalid document")
	}
	if _, err := Load([]byte(`{"id": "", "steps": [{"id": "s", "title": "t", "fields": []}]}`)); err == nil {
		t.Fatalf("expected error for missing form id")
	}
}

func TestValidateRejectsDuplicatePaths(t *testing.T) {
	t.Parallel()

	form := Form{
		ID: "f",
		Steps: []Step{
			{ID: "one", Title: "One", Fields: []Field{{Name: "applicant.email", Type: FieldEmail}}},
			{ID: "two", Title: "Two", Fields: []Field{{Name: "applicant.email", Type: FieldText}}},
		},
	}
	err := Validate(form)
	if err == nil {
		t.Fatalf("expected duplicate path error")
	}
	if !strings.Contains(err.Error(), "applicant.email") {
		t.Fatalf("expected error to name the path, got %v", err)
	}
}

func TestValidateRejectsBadRepeatable(t *testing.T) {
	t.Parallel()

	form := Form{
		ID: "f",
		Steps: []Step{{
			ID:         "children",
			Title:      "Children",
			Repeatable: &RepeatableSpec{ArrayFieldName: "children", MaxItems: 0},
			Fields:     []Field{{Name: "firstName", Type: FieldText}},
		}},
	}
	if err := Validate(form); err == nil {
		t.Fatalf("expected maxItems error")
	}
}

func TestValidateRejectsBadPattern(t *testing.T) {
	t.Parallel()

	form := Form{
		ID: "f",
		Steps: []Step{{
			ID:    "s",
			Title: "S",
			Fields: []Field{{
				Name: "id", Type: FieldText,
				Validation: ValidationSpec{Pattern: &PatternRule{Value: "([", Message: "bad"}},
			}},
		}},
	}
	if err := Validate(form); err == nil {
		t.Fatalf("expected pattern compile error")
	}
}

func TestRequiredRuleRejectsTrue(t *testing.T) {
	t.Parallel()

	doc := `{"id": "f", "steps": [{"id": "s", "title": "t", "fields": [
      {"name": "a", "label": "A", "type": "text", "validation": {"required": true}}
    ]}]}`
	if _, err := Load([]byte(doc)); err == nil {
		t.Fatalf("expected required: true to be rejected")
	}
}
