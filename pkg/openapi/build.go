// Package openapi exports a form definition as an OpenAPI 3 document
// describing its submission endpoint, so backend teams can generate clients
// and validators from the same schema the portal renders.
package openapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/govtech-bb/formflow/pkg/schema"
)

// BuildDocument renders form as an OpenAPI 3 document with a single
// operation, POST /forms/{id}/submit. The request body schema mirrors the
// form's dot-paths: nested objects for dotted names, arrays for repeatable
// groups.
func BuildDocument(form schema.Form) (*openapi3.T, error) {
	if form.ID == "" {
		return nil, errors.New("openapi: form id is required")
	}

	body, err := requestSchema(form)
	if err != nil {
		return nil, err
	}

	op := &openapi3.Operation{
		OperationID: "submit-" + form.ID,
		Summary:     "Submit " + form.Title,
		Description: form.Description,
		Tags:        []string{"submissions"},
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchema(body),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(200, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Submission accepted").
					WithJSONSchema(resultSchema()),
			}),
			openapi3.WithStatus(422, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Validation failed").
					WithJSONSchema(validationErrorSchema()),
			}),
		),
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   form.Title,
			Version: "1.0.0",
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/forms/"+form.ID+"/submit", &openapi3.PathItem{Post: op}),
		),
	}
	return doc, nil
}

// requestSchema folds every field of every step into one object schema.
// Conditional fields and steps still appear (the payload may or may not
// carry them) but are never marked required.
func requestSchema(form schema.Form) (*openapi3.Schema, error) {
	root := openapi3.NewObjectSchema()

	for _, step := range form.Steps {
		if step.Terminal() {
			continue
		}

		target := root
		if rep := step.Repeatable; rep != nil {
			target = repeatableItemSchema(root, rep)
		}

		for _, field := range step.Fields {
			if err := addField(target, field, step.ConditionalOn == nil); err != nil {
				return nil, fmt.Errorf("openapi: step %q: %w", step.ID, err)
			}
		}
	}
	return root, nil
}

// repeatableItemSchema finds or creates the array property for a repeatable
// group and returns its item schema. Two repeatable steps sharing one
// array field contribute to the same item object.
func repeatableItemSchema(root *openapi3.Schema, rep *schema.RepeatableSpec) *openapi3.Schema {
	if existing, ok := root.Properties[rep.ArrayFieldName]; ok && existing.Value != nil {
		return existing.Value.Items.Value
	}

	item := openapi3.NewObjectSchema()
	arr := openapi3.NewArraySchema().WithItems(item)
	max := uint64(rep.MaxItems)
	arr.MaxItems = &max
	root.WithPropertyRef(rep.ArrayFieldName, openapi3.NewSchemaRef("", arr))
	return item
}

func addField(target *openapi3.Schema, field schema.Field, stepUnconditional bool) error {
	prop, err := fieldSchema(field)
	if err != nil {
		return err
	}

	parts := strings.Split(field.Name, ".")
	obj := target
	for _, part := range parts[:len(parts)-1] {
		obj = childObject(obj, part)
	}
	leaf := parts[len(parts)-1]
	obj.WithPropertyRef(leaf, openapi3.NewSchemaRef("", prop))

	// Required only when the field is always visible.
	if field.Validation.Required.Set() && field.ConditionalOn == nil && stepUnconditional {
		obj.Required = append(obj.Required, leaf)
	}
	return nil
}

func childObject(parent *openapi3.Schema, name string) *openapi3.Schema {
	if existing, ok := parent.Properties[name]; ok && existing.Value != nil {
		return existing.Value
	}
	child := openapi3.NewObjectSchema()
	parent.WithPropertyRef(name, openapi3.NewSchemaRef("", child))
	return child
}

func fieldSchema(field schema.Field) (*openapi3.Schema, error) {
	var s *openapi3.Schema

	switch field.Type {
	case schema.FieldNumber:
		s = openapi3.NewFloat64Schema()
		if field.Validation.Min != nil {
			s.Min = &field.Validation.Min.Value
		}
		if field.Validation.Max != nil {
			s.Max = &field.Validation.Max.Value
		}

	case schema.FieldCheckbox:
		s = openapi3.NewBoolSchema()

	case schema.FieldDate:
		s = openapi3.NewObjectSchema().
			WithProperty("day", openapi3.NewStringSchema()).
			WithProperty("month", openapi3.NewStringSchema()).
			WithProperty("year", openapi3.NewStringSchema())

	case schema.FieldCheckboxGroup:
		item := openapi3.NewStringSchema()
		item.Enum = optionEnum(field.Options)
		s = openapi3.NewArraySchema().WithItems(item)

	case schema.FieldSelect, schema.FieldRadio:
		s = openapi3.NewStringSchema()
		s.Enum = optionEnum(field.Options)

	case schema.FieldEmail:
		s = openapi3.NewStringSchema().WithFormat("email")

	case schema.FieldText, schema.FieldTel, schema.FieldTextarea, schema.FieldFile:
		s = openapi3.NewStringSchema()

	case schema.FieldShowHide:
		// The toggle itself is a boolean flag; its nested fields are
		// flattened alongside it.
		s = openapi3.NewBoolSchema()

	case schema.FieldArray:
		s = openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())

	default:
		return nil, fmt.Errorf("field %q has unsupported type %q", field.Name, field.Type)
	}

	if field.Label != "" {
		s.Title = field.Label
	}
	if field.Type == schema.FieldText || field.Type == schema.FieldTextarea || field.Type == schema.FieldTel {
		if field.Validation.MinLength != nil {
			s.MinLength = uint64(field.Validation.MinLength.Value)
		}
		if field.Validation.MaxLength != nil {
			max := uint64(field.Validation.MaxLength.Value)
			s.MaxLength = &max
		}
		if field.Validation.Pattern != nil {
			s.Pattern = field.Validation.Pattern.Value
		}
	}
	return s, nil
}

func optionEnum(options []schema.Option) []any {
	if len(options) == 0 {
		return nil
	}
	enum := make([]any, 0, len(options))
	for _, opt := range options {
		enum = append(enum, opt.Value)
	}
	return enum
}

func resultSchema() *openapi3.Schema {
	data := openapi3.NewObjectSchema().
		WithProperty("submissionId", openapi3.NewStringSchema()).
		WithProperty("formId", openapi3.NewStringSchema()).
		WithProperty("status", openapi3.NewStringSchema()).
		WithProperty("referenceNumber", openapi3.NewStringSchema()).
		WithProperty("paymentRequired", openapi3.NewBoolSchema()).
		WithProperty("paymentUrl", openapi3.NewStringSchema()).
		WithProperty("amount", openapi3.NewFloat64Schema())

	return openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("data", data)
}

func validationErrorSchema() *openapi3.Schema {
	item := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema())
	item.Required = []string{"field", "message"}

	return openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("errors", openapi3.NewArraySchema().WithItems(item))
}
