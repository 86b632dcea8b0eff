// Package testsupport carries shared form fixtures and loading helpers for
// tests across the module.
package testsupport

import (
	"testing"

	"github.com/govtech-bb/formflow/pkg/schema"
)

// MustLoadForm reads and validates a form document, failing the test on any
// error. Helpers fail via t.Fatalf to keep contract tests concise.
func MustLoadForm(t *testing.T, path string) schema.Form {
	t.Helper()

	form, err := schema.LoadFile(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// TextbookGrantForm is the canonical repeatable-step fixture: one applicant,
// up to four children, a guardian sub-step per child where the applicant is
// not the parent, and mutually exclusive identity documents.
func TextbookGrantForm() schema.Form {
	return schema.Form{
		ID:          "primary-school-textbook-grant",
		Title:       "Apply for the primary school textbook grant",
		ServiceType: "textbook-grant",
		Steps: []schema.Step{
			{ID: "your-details", Title: "Your details", Fields: []schema.Field{
				{Name: "applicant.firstName", Label: "First name", Type: schema.FieldText,
					Validation: schema.ValidationSpec{Required: "Enter your first name"}},
				{Name: "applicant.lastName", Label: "Last name", Type: schema.FieldText,
					Validation: schema.ValidationSpec{Required: "Enter your last name"}},
				{Name: "applicant.email", Label: "Email address", Type: schema.FieldEmail,
					Validation: schema.ValidationSpec{Required: "Enter your email address"}},
			}},
			{ID: "child-details", Title: "Child details",
				Repeatable: &schema.RepeatableSpec{
					ArrayFieldName:  "beneficiaries",
					MaxItems:        4,
					AddAnotherLabel: "Add another child?",
				},
				Fields: []schema.Field{
					{Name: "firstName", Label: "Child's first name", Type: schema.FieldText,
						Validation: schema.ValidationSpec{Required: "Enter the child's first name"}},
					{Name: "lastName", Label: "Child's last name", Type: schema.FieldText,
						Validation: schema.ValidationSpec{Required: "Enter the child's last name"}},
					{Name: "dateOfBirth", Label: "Date of birth", Type: schema.FieldDate,
						Validation: schema.ValidationSpec{
							Required: "Enter the child's date of birth",
							Date:     &schema.DateRule{Type: schema.DatePast, Message: "Date of birth must be in the past"},
						}},
					{Name: "isParentOrGuardian", Label: "Are you this child's parent or guardian?", Type: schema.FieldRadio,
						Options: []schema.Option{
							{Value: "yes", Label: "Yes"},
							{Value: "no", Label: "No"},
						},
						Validation: schema.ValidationSpec{Required: "Select yes or no"}},
					{Name: "idToggle", Type: schema.FieldShowHide,
						ShowHide: &schema.ShowHideSpec{
							Summary:        "Use a passport instead of a national ID",
							StateFieldName: "hasPassport",
							Fields: []schema.Field{
								{Name: "passportNumber", Label: "Passport number", Type: schema.FieldText,
									Validation: schema.ValidationSpec{Required: "Enter the passport number"}},
							},
						}},
					{Name: "nationalId", Label: "National ID number", Type: schema.FieldText,
						SkipValidationWhenShowHideOpen: "hasPassport",
						Validation:                     schema.ValidationSpec{Required: "Enter the national ID number"}},
				}},
			{ID: "guardian-details", Title: "Your relationship to the child",
				Repeatable: &schema.RepeatableSpec{
					ArrayFieldName: "beneficiaries",
					MaxItems:       4,
					SkipAddAnother: true,
				},
				ConditionalOn: &schema.Condition{Field: "isParentOrGuardian", Value: "no"},
				Fields: []schema.Field{
					{Name: "relationshipDescription", Label: "Describe your relationship", Type: schema.FieldTextarea,
						Validation: schema.ValidationSpec{Required: "Describe your relationship to the child"}},
				}},
			{ID: schema.StepCheckYourAnswers, Title: "Check your answers"},
			{ID: schema.StepDeclaration, Title: "Declaration"},
			{ID: schema.StepConfirmation, Title: "Application submitted"},
		},
	}
}

// BirthCertificateForm is the canonical paid-service fixture with a
// conditional branch for third-party applications.
func BirthCertificateForm() schema.Form {
	return schema.Form{
		ID:          "birth-certificate",
		Title:       "Order a birth certificate",
		ServiceType: "birth-certificate",
		Steps: []schema.Step{
			{ID: "applying-for-yourself", Title: "Who is this certificate for?", Fields: []schema.Field{
				{Name: "applyingForYourself", Label: "Are you applying for yourself?", Type: schema.FieldRadio,
					Options: []schema.Option{
						{Value: "yes", Label: "Yes"},
						{Value: "no", Label: "Someone else"},
					},
					Validation: schema.ValidationSpec{Required: "Select who the certificate is for"}},
			}},
			{ID: "subject-details", Title: "Their details",
				ConditionalOn: &schema.Condition{Field: "applyingForYourself", Value: "no"},
				Fields: []schema.Field{
					{Name: "subject.firstName", Label: "Their first name", Type: schema.FieldText,
						Validation: schema.ValidationSpec{Required: "Enter their first name"}},
					{Name: "subject.lastName", Label: "Their last name", Type: schema.FieldText,
						Validation: schema.ValidationSpec{Required: "Enter their last name"}},
				}},
			{ID: "your-details", Title: "Your details", Fields: []schema.Field{
				{Name: "applicant.firstName", Label: "First name", Type: schema.FieldText,
					Validation: schema.ValidationSpec{Required: "Enter your first name"}},
				{Name: "applicant.lastName", Label: "Last name", Type: schema.FieldText,
					Validation: schema.ValidationSpec{Required: "Enter your last name"}},
				{Name: "applicant.email", Label: "Email address", Type: schema.FieldEmail,
					Validation: schema.ValidationSpec{
						Required: "Enter your email address",
						Pattern:  &schema.PatternRule{Value: `[^@\s]+@[^@\s]+\.[^@\s]+`, Message: "Enter a valid email address"},
					}},
			}},
			{ID: schema.StepCheckYourAnswers, Title: "Check your answers"},
			{ID: schema.StepDeclaration, Title: "Declaration"},
			{ID: schema.StepConfirmation, Title: "Order placed"},
		},
	}
}
