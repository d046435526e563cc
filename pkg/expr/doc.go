// Package expr evaluates loop stop conditions in a restricted expression language.
//
// Conditions use the HCL native expression syntax: literals, variable lookups,
// attribute and index traversal, comparisons, arithmetic, the boolean connectives
// &&, || and !, and the conditional operator. The only variables in scope are the
// keys of the output mapping and no functions are available, so a condition can
// read state but never execute code.
//
// For compatibility with conditions written for the original Python tooling, the
// keywords and, or, not, True, False and None, and single-quoted strings, are
// accepted and rewritten before parsing. "not" keeps its Python precedence, so
// "not status == 'done'" negates the whole comparison. Chained comparisons such
// as "0 < x < 10" are not supported; write "0 < x and x < 10" instead.
//
//	cond, err := expr.Compile("status == 'done' and retries < 3")
//	if err != nil {
//	    return err
//	}
//	stop, err := cond.Eval(map[string]any{"status": "done", "retries": 1})
package expr
