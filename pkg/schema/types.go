package schema

import (
	"fmt"
	"reflect"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// NonNegativeIntType validates integers >= 0.
type NonNegativeIntType struct {
	IntType
}

func (t *NonNegativeIntType) Name() string { return "uint" }

func (t *NonNegativeIntType) Validate(value any) error {
	if err := t.IntType.Validate(value); err != nil {
		return err
	}
	if reflect.ValueOf(value).Convert(reflect.TypeOf(float64(0))).Float() < 0 {
		return fmt.Errorf("must be >= 0")
	}
	return nil
}

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// NonNegativeInt creates a validator for integers that must be >= 0.
func NonNegativeInt() Type { return &NonNegativeIntType{} }
