// Package visibility decides whether a step or field should be shown given
// the answers collected so far. Evaluation is pure and cheap enough to run
// on every transition without memoisation.
package visibility

import (
	"strconv"

	"github.com/govtech-bb/formflow/pkg/schema"
	"github.com/govtech-bb/formflow/pkg/values"
)

// Visible evaluates a condition against the form value tree. A nil condition
// is always visible. A leaf condition compares the stored value, coerced to
// its canonical string form, against the literal (so numeric 0 matches "0").
// An or condition is true iff any sub-condition is true; the empty
// disjunction is false.
func Visible(cond *schema.Condition, vals values.Map) bool {
	if cond == nil {
		return true
	}
	return eval(*cond, vals)
}

func eval(cond schema.Condition, vals values.Map) bool {
	if cond.IsOr() {
		for _, sub := range cond.Or {
			if eval(sub, vals) {
				return true
			}
		}
		return false
	}
	v, _ := values.Get(vals, cond.Field)
	return values.CoerceString(v) == cond.Value
}

// VisibleForEntry evaluates a condition in the scope of one repeated entry:
// the condition's field resolves inside "<arrayField>.<index>." first and
// falls back to an absolute lookup, so guardian-style per-entry sub-steps
// can reference sibling answers by their relative name.
func VisibleForEntry(cond *schema.Condition, vals values.Map, arrayField string, index int) bool {
	if cond == nil {
		return true
	}
	return evalEntry(*cond, vals, arrayField, index)
}

func evalEntry(cond schema.Condition, vals values.Map, arrayField string, index int) bool {
	if cond.IsOr() {
		for _, sub := range cond.Or {
			if evalEntry(sub, vals, arrayField, index) {
				return true
			}
		}
		return false
	}

	scoped := arrayField + "." + strconv.Itoa(index) + "." + cond.Field
	if v, ok := values.Get(vals, scoped); ok {
		return values.CoerceString(v) == cond.Value
	}
	v, _ := values.Get(vals, cond.Field)
	return values.CoerceString(v) == cond.Value
}
