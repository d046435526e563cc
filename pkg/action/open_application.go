package action

import (
	"context"
	"fmt"

	"github.com/aretw0/automate/pkg/schema"
)

// OpenApplicationName is the registry name of the open-application action.
const OpenApplicationName = "open_application"

// Launcher starts an external program without waiting for it to exit.
// Failures to resolve or spawn the program are reported as *domain.LaunchError.
type Launcher interface {
	Launch(ctx context.Context, path string) error
}

// OpenApplicationInput holds the declared inputs of the open-application action.
type OpenApplicationInput struct {
	Path string `mapstructure:"path"`
}

// OpenApplicationSchema declares the open-application inputs.
var OpenApplicationSchema = schema.Schema{
	{
		Name:        "path",
		Type:        schema.String(),
		Title:       "Path",
		Description: "Executable path or application alias",
	},
}

// OpenApplicationAction launches the program at Path. It never waits for the
// program and never retries a failed launch.
type OpenApplicationAction struct {
	input    OpenApplicationInput
	launcher Launcher
}

// NewOpenApplication creates the action.
func NewOpenApplication(input OpenApplicationInput, launcher Launcher) *OpenApplicationAction {
	return &OpenApplicationAction{input: input, launcher: launcher}
}

// OpenApplicationDefinition returns the registry definition of the action.
func OpenApplicationDefinition(launcher Launcher) Definition {
	return Definition{
		Name:        OpenApplicationName,
		Description: "Open the application at the given path",
		Schema:      OpenApplicationSchema,
		Build: func(inputs map[string]any, _ *List) (Action, error) {
			var in OpenApplicationInput
			if err := decodeInputs(inputs, &in); err != nil {
				return nil, fmt.Errorf("decode open_application inputs: %w", err)
			}
			if in.Path == "" {
				return nil, &schema.AggregateError{Errors: []error{
					&schema.ValidationError{Key: "path", Reason: "must not be empty"},
				}}
			}
			return NewOpenApplication(in, launcher), nil
		},
	}
}

func (a *OpenApplicationAction) Name() string        { return OpenApplicationName }
func (a *OpenApplicationAction) Description() string { return "open " + a.input.Path }

// Run launches the application and returns as soon as it has been spawned.
func (a *OpenApplicationAction) Run(ctx context.Context) error {
	return a.launcher.Launch(ctx, a.input.Path)
}
