// Package validate runs a step's declared rules against the current form
// values and produces the ordered error list rendered in the page error
// summary plus a per-field map for inline messages. Validation errors are
// values, never Go errors: a failing field is a normal outcome, not a fault.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/values"
	"github.com/govtech-bb/formflow/pkg/visibility"
)

// FieldError is one validation failure, addressed by the field's full
// dotted path so error summaries can link to the input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is rebuilt from scratch on every validation pass; callers must not
// mutate it incrementally. Errors preserves field declaration order within
// the step; ByField keeps at most one message per field for inline display.
type Result struct {
	Errors  []FieldError      `json:"errors,omitempty"`
	ByField map[string]string `json:"byField,omitempty"`
}

// Valid reports whether the pass produced no errors.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Option adjusts a validation pass.
type Option func(*runner)

// WithClock fixes the reference time for date rules. Tests pin it; callers
// default to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(r *runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

type runner struct {
	vals   values.Map
	prefix string
	entry  int
	clock  func() time.Time
	result Result
}

// Step validates every field in the step against the form values.
func Step(step schema.Step, vals values.Map, opts ...Option) Result {
	r := newRunner(vals, "", -1, opts)
	r.fields(step.Fields)
	return r.result
}

// Entry validates one repeated-entry instance of a repeatable step. Field
// names are resolved and reported under "<arrayField>.<index>.".
func Entry(step schema.Step, vals values.Map, arrayField string, index int, opts ...Option) Result {
	prefix := arrayField + "." + strconv.Itoa(index) + "."
	r := newRunner(vals, prefix, index, opts)
	r.fields(step.Fields)
	return r.result
}

func newRunner(vals values.Map, prefix string, entry int, opts []Option) *runner {
	r := &runner{
		vals:   vals,
		prefix: prefix,
		entry:  entry,
		clock:  time.Now,
		result: Result{ByField: make(map[string]string)},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *runner) fields(fields []schema.Field) {
	for _, field := range fields {
		r.field(field)
	}
}

func (r *runner) field(field schema.Field) {
	if !r.fieldVisible(field) {
		return
	}

	if field.Type == schema.FieldShowHide {
		if field.ShowHide == nil {
			return
		}
		// Nested fields only validate while the toggle is open.
		if r.truthy(field.ShowHide.StateFieldName) {
			r.fields(field.ShowHide.Fields)
		}
		return
	}

	path := r.prefix + field.Name
	value, _ := values.Get(r.vals, path)

	// Mutual exclusion with the show/hide alternative: while the alternative
	// is open this field's required and pattern rules are suppressed, so only
	// the active branch's errors surface.
	suppressed := field.SkipValidationWhenShowHideOpen != "" &&
		r.truthy(field.SkipValidationWhenShowHideOpen)

	spec := field.Validation

	if spec.Required.Set() && !suppressed && values.IsEmpty(value) {
		r.add(path, spec.Required.Message())
		return
	}
	if values.IsEmpty(value) {
		return
	}

	text := values.CoerceString(value)

	if spec.MinLength != nil && len([]rune(text)) < spec.MinLength.Value {
		r.add(path, spec.MinLength.Message)
		return
	}
	if spec.MaxLength != nil && len([]rune(text)) > spec.MaxLength.Value {
		r.add(path, spec.MaxLength.Message)
		return
	}
	if spec.Pattern != nil && !suppressed {
		if !matchAnchored(spec.Pattern.Value, text) {
			r.add(path, spec.Pattern.Message)
			return
		}
	}
	// A value that cannot be read as a number fails the bound outright;
	// otherwise "abc" would satisfy any numeric minimum.
	if spec.Min != nil {
		if n, ok := values.CoerceNumber(value); !ok || n < spec.Min.Value {
			r.add(path, spec.Min.Message)
			return
		}
	}
	if spec.Max != nil {
		if n, ok := values.CoerceNumber(value); !ok || n > spec.Max.Value {
			r.add(path, spec.Max.Message)
			return
		}
	}
	if spec.Date != nil {
		if msg, ok := r.checkDate(*spec.Date, value); !ok {
			r.add(path, msg)
			return
		}
	}
}

func (r *runner) fieldVisible(field schema.Field) bool {
	if field.ConditionalOn == nil {
		return true
	}
	if r.entry >= 0 {
		arrayField := strings.TrimSuffix(r.prefix, "."+strconv.Itoa(r.entry)+".")
		return visibility.VisibleForEntry(field.ConditionalOn, r.vals, arrayField, r.entry)
	}
	return visibility.Visible(field.ConditionalOn, r.vals)
}

func (r *runner) truthy(path string) bool {
	// Relative state fields resolve inside the current entry first.
	if r.prefix != "" {
		if v, ok := values.Get(r.vals, r.prefix+path); ok {
			return values.Truthy(v)
		}
	}
	v, _ := values.Get(r.vals, path)
	return values.Truthy(v)
}

func (r *runner) add(field, message string) {
	r.result.Errors = append(r.result.Errors, FieldError{Field: field, Message: message})
	if _, exists := r.result.ByField[field]; !exists {
		r.result.ByField[field] = message
	}
}

func matchAnchored(pattern, text string) bool {
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^" + pattern
	}
	if !strings.HasSuffix(pattern, "$") {
		pattern += "$"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		// Schema validation rejects uncompilable patterns at load time; an
		// unexpected failure here must not pass bad input silently.
		return false
	}
	return re.MatchString(text)
}
