package expr

import (
	"errors"
	"fmt"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

const filename = "stop_condition"

// Condition is a compiled boolean expression.
type Condition struct {
	source string
	expr   hclsyntax.Expression
}

// Compile parses a condition. Syntax errors are reported as *domain.ExpressionError.
func Compile(source string) (*Condition, error) {
	rewritten, err := rewriteDialect(source)
	if err != nil {
		return nil, &domain.ExpressionError{Expr: source, Err: err}
	}

	parsed, diags := hclsyntax.ParseExpression([]byte(rewritten), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, &domain.ExpressionError{Expr: source, Err: diags}
	}

	return &Condition{source: source, expr: parsed}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string) *Condition {
	c, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the condition as written by the user.
func (c *Condition) String() string {
	return c.source
}

// Variables lists the root variable names the condition reads.
func (c *Condition) Variables() []string {
	var names []string
	seen := make(map[string]bool)
	for _, traversal := range c.expr.Variables() {
		name := traversal.RootName()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Eval evaluates the condition with vars as the only namespace.
// A reference to a key absent from vars is an error, never false.
func (c *Condition) Eval(vars map[string]any) (bool, error) {
	ctx := &hcl.EvalContext{
		Variables: toCtyVariables(vars),
	}

	val, diags := c.expr.Value(ctx)
	if diags.HasErrors() {
		return false, &domain.ExpressionError{Expr: c.source, Err: diags}
	}

	if !val.IsKnown() || val.IsNull() {
		return false, &domain.ExpressionError{Expr: c.source, Err: errors.New("condition evaluated to null")}
	}
	if !val.Type().Equals(cty.Bool) {
		return false, &domain.ExpressionError{
			Expr: c.source,
			Err:  fmt.Errorf("condition must evaluate to bool, got %s", val.Type().FriendlyName()),
		}
	}

	return val.True(), nil
}
