package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/automate/internal/config"
	"github.com/aretw0/automate/internal/logging"
)

// ActionsOptions contains the configuration for the actions command.
type ActionsOptions struct {
	ConfigPath string
	Query      string
	JSON       bool
	Out        io.Writer
}

// ListActions prints the registered actions matching Query.
func ListActions(ctx context.Context, opts ActionsOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	stack, err := buildStack(ctx, cfg, logging.NewNop())
	if err != nil {
		return err
	}
	defer stack.Close()

	infos := stack.Assistant.Session().Suggest(opts.Query)
	if opts.JSON {
		enc := json.NewEncoder(opts.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	for _, info := range infos {
		fmt.Fprintf(opts.Out, "/%s\n    %s\n", info.Name, info.Description)
		for _, in := range info.Inputs {
			line := fmt.Sprintf("    - %s (%s)", in.Name, in.Type)
			if in.Description != "" {
				line += ": " + in.Description
			}
			fmt.Fprintln(opts.Out, strings.TrimRight(line, " "))
		}
	}
	return nil
}
