package chat

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCommand is returned for slash commands that cannot be parsed.
var ErrInvalidCommand = errors.New("invalid command")

// Command is a parsed slash command.
type Command struct {
	Name   string
	Inputs map[string]any
	// Raw holds the unparsed argument text by key.
	Raw map[string]string
	// Bare is true when no arguments followed the name.
	Bare bool
}

// ParseCommand parses "/name key=value ...". Values are YAML scalars unless quoted,
// so count=3 is an int and flag=true a bool, while path="3" stays a string.
func ParseCommand(text string) (Command, error) {
	body, ok := strings.CutPrefix(strings.TrimSpace(text), "/")
	if !ok {
		return Command{}, fmt.Errorf("%w: missing leading slash", ErrInvalidCommand)
	}

	tokens, err := splitArgs(body)
	if err != nil {
		return Command{}, err
	}
	if len(tokens) == 0 {
		return Command{Bare: true}, nil
	}

	cmd := Command{Name: tokens[0].text, Bare: len(tokens) == 1}
	if len(tokens) == 1 {
		return cmd, nil
	}

	cmd.Inputs = make(map[string]any, len(tokens)-1)
	cmd.Raw = make(map[string]string, len(tokens)-1)
	for _, tok := range tokens[1:] {
		key, raw, found := strings.Cut(tok.text, "=")
		if !found || key == "" {
			return Command{}, fmt.Errorf("%w: expected key=value, got %q", ErrInvalidCommand, tok.text)
		}
		cmd.Raw[key] = raw
		if tok.quoted {
			cmd.Inputs[key] = raw
			continue
		}
		cmd.Inputs[key] = scalar(raw)
	}
	return cmd, nil
}

func scalar(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	switch v.(type) {
	case map[string]any, []any:
		return raw
	}
	return v
}

type token struct {
	text   string
	quoted bool
}

// splitArgs splits on whitespace, keeping single- or double-quoted runs together.
func splitArgs(s string) ([]token, error) {
	var (
		tokens  []token
		cur     strings.Builder
		quote   rune
		quoted  bool
		inToken bool
	)
	flush := func() {
		if inToken {
			tokens = append(tokens, token{text: cur.String(), quoted: quoted})
		}
		cur.Reset()
		quoted = false
		inToken = false
	}

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			quoted = true
			inToken = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote", ErrInvalidCommand)
	}
	flush()
	return tokens, nil
}
