// Package schema provides the declared input schema of actions.
//
// A Schema is an ordered list of fields, each with a Type, an optional default
// and display metadata. Apply fills defaults and validates raw inputs, returning
// field-level errors that name the offending key.
//
// Basic usage:
//
//	inputs := schema.Schema{
//	    {Name: "stop_condition", Type: schema.String(), Default: "False"},
//	    {Name: "loop_interval_time", Type: schema.NonNegativeInt(), Default: 0},
//	}
//
//	values, err := inputs.Apply(map[string]any{"stop_condition": "done == true"})
//	if err != nil {
//	    var verr *schema.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Println("bad field:", verr.Key)
//	    }
//	}
package schema
