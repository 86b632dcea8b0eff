// Package schema defines the declarative form documents the engine
// interprets: ordered steps, their fields, validation rules, conditional
// visibility predicates, and repeatable-group metadata. Documents are inert
// data authored in JSON or YAML; the navigator and validation runner give
// them behaviour.
package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldType enumerates the supported input kinds. Interpreters switch
// exhaustively over these values.
type FieldType string

const (
	FieldText          FieldType = "text"
	FieldEmail         FieldType = "email"
	FieldTel           FieldType = "tel"
	FieldNumber        FieldType = "number"
	FieldDate          FieldType = "date"
	FieldSelect        FieldType = "select"
	FieldRadio         FieldType = "radio"
	FieldCheckbox      FieldType = "checkbox"
	FieldTextarea      FieldType = "textarea"
	FieldFile          FieldType = "file"
	FieldShowHide      FieldType = "showHide"
	FieldArray         FieldType = "fieldArray"
	FieldCheckboxGroup FieldType = "checkboxGroup"
)

// Known reports whether ft is one of the declared field types.
func (ft FieldType) Known() bool {
	switch ft {
	case FieldText, FieldEmail, FieldTel, FieldNumber, FieldDate, FieldSelect,
		FieldRadio, FieldCheckbox, FieldTextarea, FieldFile, FieldShowHide,
		FieldArray, FieldCheckboxGroup:
		return true
	default:
		return false
	}
}

// Condition gates the visibility of a step or field on already-collected
// answers. A leaf condition compares the value at Field against Value; an Or
// condition is the disjunction of its sub-conditions. The corpus never nests
// deeper than one level.
type Condition struct {
	Field string      `json:"field,omitempty" yaml:"field,omitempty"`
	Value string      `json:"value,omitempty" yaml:"value,omitempty"`
	Or    []Condition `json:"or,omitempty" yaml:"or,omitempty"`
}

// IsOr reports whether the condition is a disjunction rather than a leaf.
func (c Condition) IsOr() bool { return c.Or != nil }

// Option is a select/radio choice.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// RequiredRule carries the error message for a required field. Schema
// documents write either a message string or the literal false; false decodes
// to the empty rule.
type RequiredRule string

// Set reports whether the field is required.
func (r RequiredRule) Set() bool { return r != "" }

// Message returns the configured error message.
func (r RequiredRule) Message() string { return string(r) }

// UnmarshalJSON accepts a message string or the boolean false.
func (r *RequiredRule) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			return fmt.Errorf("schema: required must be a message string or false")
		}
		*r = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("schema: required must be a message string or false: %w", err)
	}
	*r = RequiredRule(s)
	return nil
}

// UnmarshalYAML accepts a message string or the boolean false.
func (r *RequiredRule) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		if b {
			return fmt.Errorf("schema: required must be a message string or false")
		}
		*r = ""
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("schema: required must be a message string or false: %w", err)
	}
	*r = RequiredRule(s)
	return nil
}

// LengthRule bounds a string's length.
type LengthRule struct {
	Value   int    `json:"value" yaml:"value"`
	Message string `json:"message" yaml:"message"`
}

// PatternRule matches the whole value against a regular expression. Schema
// patterns are authored anchored; the runner anchors unanchored ones.
type PatternRule struct {
	Value   string `json:"value" yaml:"value"`
	Message string `json:"message" yaml:"message"`
}

// NumberRule bounds a numeric value.
type NumberRule struct {
	Value   float64 `json:"value" yaml:"value"`
	Message string  `json:"message" yaml:"message"`
}

// DateCheck selects the temporal constraint applied to a date field.
type DateCheck string

const (
	// DatePast rejects today and any future date.
	DatePast DateCheck = "past"
	// DatePastOrToday rejects only future dates.
	DatePastOrToday DateCheck = "pastOrToday"
)

// DateRule applies a temporal constraint to a date field.
type DateRule struct {
	Type    DateCheck `json:"type" yaml:"type"`
	Message string    `json:"message,omitempty" yaml:"message,omitempty"`
}

// ValidationSpec is the per-field rule set evaluated by the validation
// runner. Absent rules are skipped.
type ValidationSpec struct {
	Required  RequiredRule `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength *LengthRule  `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *LengthRule  `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   *PatternRule `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min       *NumberRule  `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *NumberRule  `json:"max,omitempty" yaml:"max,omitempty"`
	Date      *DateRule    `json:"date,omitempty" yaml:"date,omitempty"`
}

// ShowHideSpec declares a collapsible alternative input group (the
// ID-number / passport-number pattern). StateFieldName tracks the open
// toggle in form state; Fields validate only while it is open.
type ShowHideSpec struct {
	Summary        string  `json:"summary" yaml:"summary"`
	Description    string  `json:"description,omitempty" yaml:"description,omitempty"`
	StateFieldName string  `json:"stateFieldName" yaml:"stateFieldName"`
	Fields         []Field `json:"fields" yaml:"fields"`
}

// Field models one input inside a step. Name is a dotted path into the form
// value tree; within a repeatable step names are relative to the entry and
// the navigator prefixes them with "<arrayField>.<index>.".
type Field struct {
	Name          string         `json:"name" yaml:"name"`
	Label         string         `json:"label" yaml:"label"`
	Hint          string         `json:"hint,omitempty" yaml:"hint,omitempty"`
	Type          FieldType      `json:"type" yaml:"type"`
	Placeholder   string         `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Validation    ValidationSpec `json:"validation" yaml:"validation"`
	Options       []Option       `json:"options,omitempty" yaml:"options,omitempty"`
	Rows          int            `json:"rows,omitempty" yaml:"rows,omitempty"`
	ConditionalOn *Condition     `json:"conditionalOn,omitempty" yaml:"conditionalOn,omitempty"`
	ShowHide      *ShowHideSpec  `json:"showHide,omitempty" yaml:"showHide,omitempty"`

	// SkipValidationWhenShowHideOpen names a boolean state field whose
	// truthiness suppresses this field's required/pattern checks (the user
	// is filling in the alternative input instead).
	SkipValidationWhenShowHideOpen string `json:"skipValidationWhenShowHideOpen,omitempty" yaml:"skipValidationWhenShowHideOpen,omitempty"`
}

// RepeatableSpec declares that a step's fields repeat once per entry in an
// array-valued form field, up to MaxItems entries.
type RepeatableSpec struct {
	ArrayFieldName  string   `json:"arrayFieldName" yaml:"arrayFieldName"`
	MaxItems        int      `json:"maxItems" yaml:"maxItems"`
	AddAnotherLabel string   `json:"addAnotherLabel,omitempty" yaml:"addAnotherLabel,omitempty"`
	SharedFields    []string `json:"sharedFields,omitempty" yaml:"sharedFields,omitempty"`
	SkipAddAnother  bool     `json:"skipAddAnother,omitempty" yaml:"skipAddAnother,omitempty"`
}

// Step is one screen of a multi-step form. Order within Form.Steps is fixed
// at authoring time; the navigator only ever skips steps, never reorders
// them.
type Step struct {
	ID             string          `json:"id" yaml:"id"`
	Title          string          `json:"title" yaml:"title"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	Fields         []Field         `json:"fields" yaml:"fields"`
	ConditionalOn  *Condition      `json:"conditionalOn,omitempty" yaml:"conditionalOn,omitempty"`
	Repeatable     *RepeatableSpec `json:"repeatable,omitempty" yaml:"repeatable,omitempty"`
	EnableFeedback bool            `json:"enableFeedback,omitempty" yaml:"enableFeedback,omitempty"`
}

// Terminal step ids. These are fixed sentinels, always last in a form's
// sequence; "confirmation" is reachable only through a successful
// submission.
const (
	StepCheckYourAnswers = "check-your-answers"
	StepDeclaration      = "declaration"
	StepConfirmation     = "confirmation"
)

// Terminal reports whether the step is one of the fixed sentinel steps.
func (s Step) Terminal() bool {
	switch s.ID {
	case StepCheckYourAnswers, StepDeclaration, StepConfirmation:
		return true
	default:
		return false
	}
}

// Form is a complete schema document.
type Form struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// ServiceType keys the payment service configuration when the form
	// collects payment; empty for free services.
	ServiceType string `json:"serviceType,omitempty" yaml:"serviceType,omitempty"`

	Steps []Step `json:"steps" yaml:"steps"`
}

// StepByID returns the step with the given id.
func (f Form) StepByID(id string) (Step, bool) {
	for _, s := range f.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}
