package schema

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Schema documents are authored by content teams and may arrive through a
// form-builder UI, so display strings are stripped of markup before they
// reach any renderer.
func sanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(textSanitizer().Sanitize(trimmed))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

func sanitizeForm(form *Form) {
	form.Title = sanitizeText(form.Title)
	form.Description = sanitizeText(form.Description)
	for i := range form.Steps {
		sanitizeStep(&form.Steps[i])
	}
}

func sanitizeStep(step *Step) {
	step.Title = sanitizeText(step.Title)
	step.Description = sanitizeText(step.Description)
	for i := range step.Fields {
		sanitizeField(&step.Fields[i])
	}
}

func sanitizeField(field *Field) {
	field.Label = sanitizeText(field.Label)
	field.Hint = sanitizeText(field.Hint)
	field.Placeholder = sanitizeText(field.Placeholder)
	for i := range field.Options {
		field.Options[i].Label = sanitizeText(field.Options[i].Label)
	}
	if field.ShowHide != nil {
		field.ShowHide.Summary = sanitizeText(field.ShowHide.Summary)
		field.ShowHide.Description = sanitizeText(field.ShowHide.Description)
		for i := range field.ShowHide.Fields {
			sanitizeField(&field.ShowHide.Fields[i])
		}
	}
}
