// Package declaration derives the display-only values shown on a form's
// terminal declaration step: the applicant's full name assembled from
// whichever name parts the form collected, and today's date. Derived values
// are never validated; they exist so the signer sees who is declaring and
// when.
package declaration

import (
	"fmt"
	"strings"
	"time"

	"github.com/govtech-bb/formflow/pkg/values"
)

// DefaultPrefix is the applicant sub-object most schemas collect name parts
// under.
const DefaultPrefix = "applicant"

// FullName joins the nonempty first, middle, and last name parts found under
// prefix with single spaces. Forms that omit middle names simply contribute
// fewer parts.
func FullName(vals values.Map, prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	parts := make([]string, 0, 3)
	for _, field := range []string{"firstName", "middleName", "lastName"} {
		v, _ := values.Get(vals, prefix+"."+field)
		if s := strings.TrimSpace(values.CoerceString(v)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Today formats the clock's current date as DD/MM/YYYY.
func Today(clock func() time.Time) string {
	if clock == nil {
		clock = time.Now
	}
	t := clock()
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}
