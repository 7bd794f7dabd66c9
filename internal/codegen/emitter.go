package codegen

import (
	"fmt"
	"strings"

	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/ir"
)

const indentUnit = "    "

// emitter is the line/indent text builder owned by one translation. It
// accumulates a deduplicated preamble and an indented body, and carries the
// translation-scoped hoisting state plus a sticky first error.
type emitter struct {
	model   *ir.Model
	backend string

	preamble []string
	seen     map[string]bool
	lines    []string
	depth    int

	// hoisted maps the canonical string of a hoisted sub-expression to the
	// temporary bound for it. Valid for one statement; tmpCount runs for the
	// whole translation so temporaries never collide.
	hoisted  map[string]string
	tmpCount int

	err error
}

func newEmitter(m *ir.Model, backend string) emitter {
	return emitter{
		model:   m,
		backend: backend,
		seen:    map[string]bool{},
		hoisted: map[string]string{},
	}
}

func (e *emitter) linef(format string, args ...any) {
	e.lines = append(e.lines, strings.Repeat(indentUnit, e.depth)+fmt.Sprintf(format, args...))
}

func (e *emitter) blank() {
	e.lines = append(e.lines, "")
}

// preambleOnce appends line to the preamble unless already present.
func (e *emitter) preambleOnce(line string) {
	if e.seen[line] {
		return
	}
	e.seen[line] = true
	e.preamble = append(e.preamble, line)
}

func (e *emitter) indented(fn func()) {
	e.depth++
	fn()
	e.depth--
}

// failf records the first fatal lowering failure. Emission keeps running
// after a failure; finalize discards the text and returns the error.
func (e *emitter) failf(construct string, pos ast.Position, format string, args ...any) {
	if e.err != nil {
		return
	}
	e.err = &ir.CodegenError{
		Backend:   e.backend,
		Construct: construct,
		Position:  pos,
		Message:   fmt.Sprintf(format, args...),
	}
}

// beginStmt clears the per-statement hoist bindings.
func (e *emitter) beginStmt() {
	if len(e.hoisted) > 0 {
		e.hoisted = map[string]string{}
	}
}

// hoistShared binds every non-deterministic sub-expression that would be
// emitted in more than one of the given positions to a single temporary,
// emitting one assignment line per binding. render must be the calling
// backend's expression renderer; subsequent renders of the bound expression
// resolve to the temporary through the hoisted map.
func (e *emitter) hoistShared(uses []ir.Expr, render func(ir.Expr) string) {
	counts := map[string]int{}
	exprs := map[string]ir.Expr{}
	var order []string

	for _, use := range uses {
		ir.WalkExpr(use, func(node ir.Expr) bool {
			// Only the outermost non-deterministic node of each use is a
			// hoist candidate; a bare variable reference needs no temporary.
			if !e.model.Nondeterministic(node) {
				return false
			}
			if _, bare := node.(*ir.VarRef); bare {
				return false
			}
			key := ir.ExprString(node)
			if counts[key] == 0 {
				exprs[key] = node
				order = append(order, key)
			}
			counts[key]++
			return false
		})
	}

	for _, key := range order {
		if counts[key] < 2 {
			continue
		}
		name := fmt.Sprintf("__tmp%d", e.tmpCount)
		e.tmpCount++
		value := render(exprs[key])
		e.linef("%s = %s", name, value)
		e.hoisted[key] = name
	}
}

// finalize renders preamble + body, or returns the first recorded error.
func (e *emitter) finalize() (string, error) {
	if e.err != nil {
		return "", e.err
	}
	var b strings.Builder
	for _, l := range e.preamble {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if len(e.preamble) > 0 {
		b.WriteByte('\n')
	}
	for _, l := range e.lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
