package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/ir"
)

// juliaEmitter renders the expression and control-flow surface shared by
// the Julia targets: one-based index shifts, truncating casts on tagged
// indices, operator spelling, and the half-open to inclusive loop-bound
// rewrite. Distribution lowering stays with the concrete backends.
type juliaEmitter struct {
	emitter
}

// block emits a statement list. special handles the backend-specific
// statement kinds first and reports whether it consumed the statement;
// everything it declines falls through to the shared lowering.
func (e *juliaEmitter) block(stmts []ir.Stmt, special func(ir.Stmt) bool) {
	for _, s := range stmts {
		e.beginStmt()
		if special(s) {
			continue
		}
		switch v := s.(type) {
		case *ir.AssignStmt:
			e.linef("%s = %s", e.expr(v.Target), e.expr(v.Value))
		case *ir.IfStmt:
			e.linef("if %s", e.expr(v.Cond))
			e.indented(func() { e.block(v.Then, special) })
			if len(v.Else) > 0 {
				e.linef("else")
				e.indented(func() { e.block(v.Else, special) })
			}
			e.linef("end")
		case *ir.ForStmt:
			e.linef("for %s = %s", v.Var, e.loopRange(v))
			e.indented(func() { e.block(v.Body, special) })
			e.linef("end")
		case *ir.ReturnStmt:
			if v.Value != nil {
				e.linef("return %s", e.expr(v.Value))
			} else {
				e.linef("return")
			}
		case *ir.BreakStmt:
			e.linef("break")
		case *ir.ContinueStmt:
			e.linef("continue")
		default:
			e.failf(fmt.Sprintf("%T", s), s.Pos(), "unsupported statement kind")
		}
	}
}

// loopRange rewrites the zero-based half-open loop bounds into Julia's
// inclusive range: the stop bound moves by one toward the start.
func (e *juliaEmitter) loopRange(v *ir.ForStmt) string {
	adjust := "-"
	if stepNegative(v.Step) {
		adjust = "+"
	}
	return fmt.Sprintf("%s:%s:(%s) %s 1",
		e.expr(v.Start), e.expr(v.Step), e.expr(v.Stop), adjust)
}

func stepNegative(step ir.Expr) bool {
	switch x := step.(type) {
	case *ir.Lit:
		switch x.Kind {
		case ast.IntLit:
			return x.IntVal < 0
		case ast.FloatLit:
			return x.FloatVal < 0
		}
	case *ir.UnaryExpr:
		return x.Op == ast.OpNeg
	}
	return false
}

func (e *juliaEmitter) expr(x ir.Expr) string {
	if x == nil {
		return ""
	}
	if name, ok := e.hoisted[ir.ExprString(x)]; ok {
		return name
	}
	switch v := x.(type) {
	case *ir.Lit:
		return juliaLit(v)
	case *ir.VarRef:
		return v.Name
	case *ir.IndexExpr:
		return e.indexExpr(v)
	case *ir.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", e.expr(v.Left), juliaBinOp(v.Op), e.expr(v.Right))
	case *ir.UnaryExpr:
		switch v.Op {
		case ast.OpNot:
			return fmt.Sprintf("!(%s)", e.expr(v.Operand))
		case ast.OpNeg:
			return fmt.Sprintf("-(%s)", e.expr(v.Operand))
		default:
			return fmt.Sprintf("+(%s)", e.expr(v.Operand))
		}
	case *ir.CallExpr:
		return e.call(v)
	case *ir.RangeExpr:
		return e.sliceExpr(v)
	default:
		e.failf(fmt.Sprintf("%T", x), x.Pos(), "unsupported expression kind")
		return ""
	}
}

// indexExpr shifts every zero-based index to one-based and wraps tagged
// indices in a truncating cast, since Julia arrays reject float indices.
func (e *juliaEmitter) indexExpr(v *ir.IndexExpr) string {
	parts := make([]string, len(v.Indices))
	for i, idx := range v.Indices {
		if r, ok := idx.(*ir.RangeExpr); ok {
			parts[i] = e.sliceExpr(r)
			continue
		}
		s := e.expr(idx)
		if i < len(v.Trunc) && v.Trunc[i] {
			s = fmt.Sprintf("Int(trunc(%s))", s)
		}
		if v.NeedsOffset {
			s = fmt.Sprintf("(%s)+1", s)
		}
		parts[i] = s
	}
	return fmt.Sprintf("%s[%s]", e.expr(v.Base), strings.Join(parts, ", "))
}

// sliceExpr renders a range in index position. A zero-based half-open
// slice maps to a one-based inclusive Julia range; the bare ":" selects
// the whole dimension.
func (e *juliaEmitter) sliceExpr(v *ir.RangeExpr) string {
	if v.Start == nil && v.Stop == nil && v.Step == nil {
		return ":"
	}
	lo := "1"
	if v.Start != nil {
		lo = fmt.Sprintf("(%s)+1", e.expr(v.Start))
	}
	step := "1"
	if v.Step != nil {
		step = e.expr(v.Step)
	}
	hi := "end"
	if v.Stop != nil {
		hi = e.expr(v.Stop)
	}
	return fmt.Sprintf("%s:%s:%s", lo, step, hi)
}

func (e *juliaEmitter) call(v *ir.CallExpr) string {
	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		args[i] = e.expr(a)
	}
	joined := strings.Join(args, ", ")
	switch v.Name {
	case "len":
		return fmt.Sprintf("length(%s)", joined)
	case "vector", "matrix":
		return fmt.Sprintf("zeros(%s)", joined)
	default:
		// abs, min, max, sum, round keep their names.
		return fmt.Sprintf("%s(%s)", v.Name, joined)
	}
}

func juliaBinOp(op ast.BinOpKind) string {
	switch op {
	case ast.OpPow:
		return "^"
	case ast.OpAnd:
		return "&&"
	case ast.OpOr:
		return "||"
	default:
		return string(op)
	}
}

func juliaLit(l *ir.Lit) string {
	switch l.Kind {
	case ast.FloatLit:
		return strconv.FormatFloat(l.FloatVal, 'g', -1, 64)
	case ast.BoolLit:
		return strconv.FormatBool(l.BoolVal)
	case ast.StringLit:
		return strconv.Quote(l.StrVal)
	default:
		return strconv.FormatInt(l.IntVal, 10)
	}
}
