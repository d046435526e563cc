package schema

import (
	"maps"
	"slices"

	"github.com/aretw0/automate/pkg/domain"
)

// Field declares one input of an action.
type Field struct {
	Name        string
	Type        Type
	Title       string
	Description string
	// Default is used when the input is absent. A field without a default is required.
	Default any
}

// Required reports whether the field must be supplied by the caller.
func (f Field) Required() bool {
	return f.Default == nil
}

// Schema is the ordered list of declared inputs.
type Schema []Field

// Lookup returns the field with the given name.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Apply fills defaults and validates data against the schema.
// It returns a new map; data is not modified. Unknown keys are rejected.
func (s Schema) Apply(data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s))
	var errs []error

	for _, f := range s {
		value, exists := data[f.Name]
		if !exists || value == nil {
			if f.Required() {
				errs = append(errs, &ValidationError{Key: f.Name, Reason: "required"})
				continue
			}
			value = f.Default
		}

		if err := f.Type.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    f.Name,
				Reason: err.Error(),
				Value:  value,
			})
			continue
		}
		out[f.Name] = value
	}

	for _, key := range slices.Sorted(maps.Keys(data)) {
		if _, ok := s.Lookup(key); !ok {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: "unknown field",
				Value:  data[key],
			})
		}
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return out, nil
}

// Info converts the schema into display metadata.
func (s Schema) Info() []domain.InputField {
	fields := make([]domain.InputField, 0, len(s))
	for _, f := range s {
		fields = append(fields, domain.InputField{
			Name:        f.Name,
			Type:        f.Type.Name(),
			Title:       f.Title,
			Description: f.Description,
			Default:     f.Default,
			Required:    f.Required(),
		})
	}
	return fields
}
