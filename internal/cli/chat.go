package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/automate"
	"github.com/aretw0/automate/internal/config"
	"github.com/aretw0/automate/internal/presentation/tui"
	"github.com/aretw0/automate/pkg/chat"
	"github.com/aretw0/automate/pkg/domain"
	"golang.org/x/term"
)

// ChatOptions contains all the configuration for the chat command.
type ChatOptions struct {
	ConfigPath string
	Debug      bool
	NoBanner   bool

	In  io.Reader
	Out io.Writer
}

// RunChat runs the interactive conversation until EOF, "exit" or a signal.
// Piped input is processed line by line and the command returns once all work
// it started has finished.
func RunChat(ctx context.Context, opts ChatOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.LogLevel, opts.Debug)

	interactive := isTerminal(opts.In) && isTerminal(opts.Out)
	sinkOpts := []tui.SinkOption{tui.WithUserEcho(!interactive)}
	if interactive {
		sinkOpts = append(sinkOpts, tui.WithRenderer(tui.NewRenderer(terminalWidth(opts.Out))))
	}
	sink := tui.NewSink(opts.Out, sinkOpts...)

	stack, err := buildStack(ctx, cfg, logger, automate.WithSink(sink))
	if err != nil {
		return err
	}
	defer func() {
		if err := stack.Close(); err != nil {
			logger.Warn("shutdown failed", "error", err)
		}
	}()

	if interactive && !opts.NoBanner {
		tui.PrintBanner(opts.Out, automate.Version)
	}
	if err := stack.Assistant.Welcome(ctx); err != nil {
		return err
	}

	lines := readLines(ctx, opts.In)
	for {
		if interactive {
			fmt.Fprint(opts.Out, "> ")
		}

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(opts.Out)
			printSystemMessage(opts.Out, "Interrupted.")
			return handleExecutionError(ctx.Err())
		case line, ok = <-lines:
		}
		if !ok {
			stack.Assistant.Wait()
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "exit" || input == "quit" {
			printSystemMessage(opts.Out, "Bye!")
			return nil
		}

		resp, err := stack.Assistant.HandleInput(ctx, input)
		if err != nil {
			printSystemMessage(opts.Out, "%v", err)
			continue
		}
		if resp.Outcome == chat.OutcomeSuggestions {
			printSuggestions(opts.Out, resp.Suggestions)
		}
	}
}

// readLines feeds lines from r until EOF or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func printSuggestions(w io.Writer, infos []domain.ActionInfo) {
	if len(infos) == 0 {
		printSystemMessage(w, "No matching actions.")
		return
	}
	for _, info := range infos {
		fmt.Fprintf(w, "  /%-18s %s\n", info.Name, info.Description)
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(v any) int {
	f, ok := v.(*os.File)
	if !ok {
		return 80
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
