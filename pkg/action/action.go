package action

import (
	"context"
	"fmt"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/aretw0/automate/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// KeyActionList is the reserved input name for nested actions.
const KeyActionList = "action_list"

// Runnable is a unit that can be executed to completion.
type Runnable interface {
	Run(ctx context.Context) error
}

// Action is a named, describable unit of automation with bound inputs.
type Action interface {
	Runnable
	Name() string
	Description() string
}

// BuildFunc constructs an action from validated inputs and its nested actions.
type BuildFunc func(inputs map[string]any, body *List) (Action, error)

// Definition describes an action type.
type Definition struct {
	Name        string
	Description string
	Schema      schema.Schema
	// Container marks actions that accept a nested action list.
	Container bool
	Build     BuildFunc
}

// Info returns the display metadata of the action type.
func (d Definition) Info() domain.ActionInfo {
	return domain.ActionInfo{
		Name:        d.Name,
		Description: d.Description,
		Inputs:      d.Schema.Info(),
	}
}

// New validates inputs against the schema and constructs the action.
// Validation failures are reported as *schema.ValidationError values naming the field.
func (d Definition) New(inputs map[string]any, children ...Action) (Action, error) {
	values, err := d.Schema.Apply(inputs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name, err)
	}

	if len(children) > 0 && !d.Container {
		return nil, fmt.Errorf("%s: %w", d.Name, &schema.AggregateError{Errors: []error{
			&schema.ValidationError{Key: KeyActionList, Reason: "action does not accept nested actions"},
		}})
	}

	return d.Build(values, NewList(children...))
}

// decodeInputs maps validated inputs onto a typed input struct.
func decodeInputs(values map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}
