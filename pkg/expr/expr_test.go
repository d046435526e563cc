package expr

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluate(source string, vars map[string]any) (bool, error) {
	c, err := Compile(source)
	if err != nil {
		return false, err
	}
	return c.Eval(vars)
}

func TestEval(t *testing.T) {
	vars := map[string]any{
		"status":  "done",
		"count":   3,
		"ratio":   0.5,
		"ready":   true,
		"page":    map[string]any{"title": "Inbox", "unread": 2},
		"items":   []any{"a", "b"},
		"big":     json.Number("12"),
		"retries": 1,
	}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"literal false", "False", false},
		{"literal true", "true", true},
		{"string equality", `status == "done"`, true},
		{"single quoted string", `status == 'done'`, true},
		{"numeric comparison", "count >= 3", true},
		{"float comparison", "ratio < 0.25", false},
		{"python connectives", "ready and not (count > 5)", true},
		{"hcl connectives", "ready && count > 5 || status != \"done\"", false},
		{"attribute access", "page.unread == 2", true},
		{"index access", `items[1] == "b"`, true},
		{"json number", "big > 10", true},
		{"conditional", `ready ? count == 3 : false`, true},
		{"keyword as attribute", `page.title != "or"`, true},
		{"not binds below comparison", `not status == 'done'`, false},
		{"not before and", `not status == 'open' and ready`, true},
		{"not inside parentheses", `ready and (not count > 5)`, true},
		{"subtraction without spaces", "retries-1 == 0", true},
		{"subtraction on attribute", "page.unread-2 == 0", true},
		{"exponent literal", "ratio > 1e-3", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluate(tt.expr, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_UndefinedVariableIsExpressionError(t *testing.T) {
	_, err := evaluate("finished == true", map[string]any{"status": "done"})

	var exprErr *domain.ExpressionError
	require.True(t, errors.As(err, &exprErr), "want ExpressionError, got %v", err)
	assert.Equal(t, "finished == true", exprErr.Expr)
}

func TestEval_EmptyNamespace(t *testing.T) {
	_, err := evaluate("done", nil)

	var exprErr *domain.ExpressionError
	assert.True(t, errors.As(err, &exprErr))
}

func TestEval_NoFunctionCalls(t *testing.T) {
	_, err := evaluate(`length(items) > 0`, map[string]any{"items": []any{1}})

	var exprErr *domain.ExpressionError
	assert.True(t, errors.As(err, &exprErr), "function calls must not be available")
}

func TestEval_NonBoolResult(t *testing.T) {
	_, err := evaluate("count + 1", map[string]any{"count": 1})

	var exprErr *domain.ExpressionError
	require.True(t, errors.As(err, &exprErr))
	assert.Contains(t, exprErr.Error(), "must evaluate to bool")
}

func TestCompile_SyntaxErrors(t *testing.T) {
	for _, src := range []string{"status ==", "'unterminated", "a = 1", "__import__('os').system('ls')"} {
		t.Run(src, func(t *testing.T) {
			c, err := Compile(src)
			if err == nil {
				// Some inputs parse but must still fail at evaluation time.
				_, err = c.Eval(map[string]any{"status": "x", "a": 1})
			}
			var exprErr *domain.ExpressionError
			assert.True(t, errors.As(err, &exprErr), "want ExpressionError for %q, got %v", src, err)
		})
	}
}

func TestCondition_Variables(t *testing.T) {
	c := MustCompile("page.unread > 0 and status == 'new' or page.title == 'x'")
	assert.ElementsMatch(t, []string{"page", "status"}, c.Variables())
	assert.Equal(t, "page.unread > 0 and status == 'new' or page.title == 'x'", c.String())
}

func TestRewriteDialect(t *testing.T) {
	tests := map[string]string{
		`a and b`:              `a && b`,
		`not a or b`:           `!(a) || b`,
		`not status == 'done'`: `!(status == "done")`,
		`not (a or b) and c`:   `!((a || b)) && c`,
		`not not done`:         `!(!(done))`,
		`[not a, b]`:           `[!(a), b]`,
		`ready ? not a : b`:    `ready ? !(a) : b`,
		`retries-1 == 0`:       `retries - 1 == 0`,
		`page.unread-1 > 0`:    `page.unread - 1 > 0`,
		`ratio > 1e-3`:         `ratio > 1e-3`,
		`x == 'it''s'`:         `x == "it""s"`,
		`x == 'say "hi"'`:      `x == "say \"hi\""`,
		`x == "and"`:           `x == "and"`,
		`obj.not == None`:      `obj.not == null`,
		`android == True`:      `android == true`,
	}

	for in, want := range tests {
		got, err := rewriteDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
