// Package formflow re-exports the multi-step form engine's core types so
// applications can depend on one import for the common path: load a schema,
// walk its steps, validate, and hand off to payment and submission.
package formflow

import (
	"github.com/govtech-bb/formflow/pkg/navigator"
	"github.com/govtech-bb/formflow/pkg/payment"
	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/validate"
	"github.com/govtech-bb/formflow/pkg/values"
)

// Form is a complete form definition.
type Form = schema.Form

// Step is one page of a form.
type Step = schema.Step

// Field is one input within a step.
type Field = schema.Field

// Condition gates a step or field on an earlier answer.
type Condition = schema.Condition

// Values is the flat-to-nested answer store for one session.
type Values = values.Map

// State is the complete walk state handled by Apply.
type State = navigator.State

// Action is a state transition request.
type Action = navigator.Action

// Result collects validation errors in declaration order.
type Result = validate.Result

// FieldError is one field's first validation failure.
type FieldError = validate.FieldError

// PaymentProvider abstracts the payment gateway.
type PaymentProvider = payment.Provider

// Reducer actions, re-exported for callers driving sessions through Apply.
type (
	SetValue      = navigator.SetValue
	NextStep      = navigator.NextStep
	PreviousStep  = navigator.PreviousStep
	JumpTo        = navigator.JumpTo
	MarkSubmitted = navigator.MarkSubmitted
)

// LoadFile reads, sanitises and validates a form document.
func LoadFile(path string) (Form, error) {
	return schema.LoadFile(path)
}

// LoadDir loads every form document under dir, keyed by form id.
func LoadDir(dir string) (map[string]Form, error) {
	return schema.LoadDir(dir)
}

// NewSession positions a fresh walk at the form's first visible step.
func NewSession(form Form) State {
	return navigator.NewState(form)
}

// Apply advances a session by one action and returns the new state.
func Apply(form Form, state State, action Action) (State, error) {
	return navigator.Apply(form, state, action)
}

// ValidateForm runs whole-form validation over every visible step instance.
func ValidateForm(form Form, vals Values) Result {
	return navigator.ValidateForm(form, vals)
}
