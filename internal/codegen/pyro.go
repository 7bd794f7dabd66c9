package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/ir"
)

// pyroGenerator lowers to Pyro: named addressing through pyro.sample,
// zero-based indexing carried through unchanged, observations passed as
// the obs keyword.
type pyroGenerator struct{}

func (pyroGenerator) Descriptor() ir.BackendDescriptor {
	d, _ := ir.LookupBackend("pyro")
	return d
}

func (pyroGenerator) EmitProgram(m *ir.Model) (string, error) {
	e := &pyroEmitter{newEmitter(m, "pyro")}
	e.preambleOnce("import pyro")
	e.preambleOnce("import pyro.distributions as dist")
	e.linef("def %s(%s):", m.Name, strings.Join(m.Params, ", "))
	e.indented(func() { e.pyBlock(m.Body) })
	return e.finalize()
}

type pyroEmitter struct {
	emitter
}

func (e *pyroEmitter) pyBlock(stmts []ir.Stmt) {
	if len(stmts) == 0 {
		e.linef("pass")
		return
	}
	for _, s := range stmts {
		e.beginStmt()
		e.pyStmt(s)
	}
}

func (e *pyroEmitter) pyStmt(s ir.Stmt) {
	switch v := s.(type) {
	case *ir.AssignStmt:
		e.linef("%s = %s", e.expr(v.Target), e.expr(v.Value))

	case *ir.SampleStmt:
		e.hoistShared(append(addrUses(v.Addr), distUses(v.Dist)...), e.expr)
		e.linef("%s = pyro.sample(%s, %s)", e.expr(v.Target), e.address(v.Addr), e.dist(v.Dist))

	case *ir.ObserveStmt:
		e.hoistShared(append(addrUses(v.Addr), distUses(v.Dist)...), e.expr)
		e.linef("pyro.sample(%s, %s, obs=%s)", e.address(v.Addr), e.dist(v.Dist), e.expr(v.Value))

	case *ir.IfStmt:
		e.linef("if %s:", e.expr(v.Cond))
		e.indented(func() { e.pyBlock(v.Then) })
		if len(v.Else) > 0 {
			e.linef("else:")
			e.indented(func() { e.pyBlock(v.Else) })
		}

	case *ir.ForStmt:
		if plateLoop(v) {
			e.linef("for %s in pyro.plate(\"%s_plate_%d\", %s):",
				v.Var, v.Var, v.Position.Line, e.expr(v.Stop))
		} else {
			e.linef("for %s in range(%s, %s, %s):",
				v.Var, e.expr(v.Start), e.expr(v.Stop), e.expr(v.Step))
		}
		e.indented(func() { e.pyBlock(v.Body) })

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

// plateLoop reports whether the loop lowers to a sequential pyro.plate:
// unit step from zero and at least one random choice in the body. The
// plate name carries the source line so nested or repeated loops over the
// same index stay distinct.
func plateLoop(v *ir.ForStmt) bool {
	if !intLit(v.Start, 0) || !intLit(v.Step, 1) {
		return false
	}
	found := false
	ir.WalkStmts(v.Body, func(s ir.Stmt) {
		switch s.(type) {
		case *ir.SampleStmt, *ir.ObserveStmt:
			found = true
		}
	})
	return found
}

func intLit(e ir.Expr, val int64) bool {
	lit, ok := e.(*ir.Lit)
	return ok && lit.Kind == ast.IntLit && lit.IntVal == val
}

// address renders the choice name as a Python string, with an f-string
// when the template has index interpolations.
func (e *pyroEmitter) address(a ir.Address) string {
	base := addressBase(a.Base)
	if len(a.Indices) == 0 {
		return fmt.Sprintf("%q", base)
	}
	parts := make([]string, len(a.Indices))
	for i, idx := range a.Indices {
		parts[i] = fmt.Sprintf("{%s}", e.expr(idx))
	}
	return fmt.Sprintf("f\"%s[%s]\"", base, strings.Join(parts, ","))
}

func (e *pyroEmitter) expr(x ir.Expr) string {
	if x == nil {
		return ""
	}
	if name, ok := e.hoisted[ir.ExprString(x)]; ok {
		return name
	}
	switch v := x.(type) {
	case *ir.Lit:
		return pyLit(v)
	case *ir.VarRef:
		return v.Name
	case *ir.IndexExpr:
		// Zero-based host arrays: the offset tag is ignored, and torch
		// tensor indexing coerces, so the truncation tag is too.
		parts := make([]string, len(v.Indices))
		for i, idx := range v.Indices {
			if r, ok := idx.(*ir.RangeExpr); ok {
				parts[i] = e.sliceExpr(r)
				continue
			}
			parts[i] = e.expr(idx)
		}
		return fmt.Sprintf("%s[%s]", e.expr(v.Base), strings.Join(parts, ", "))
	case *ir.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", e.expr(v.Left), v.Op, e.expr(v.Right))
	case *ir.UnaryExpr:
		switch v.Op {
		case ast.OpNot:
			return fmt.Sprintf("(not %s)", e.expr(v.Operand))
		case ast.OpNeg:
			return fmt.Sprintf("(-%s)", e.expr(v.Operand))
		default:
			return fmt.Sprintf("(+%s)", e.expr(v.Operand))
		}
	case *ir.CallExpr:
		return e.call(v)
	case *ir.RangeExpr:
		return fmt.Sprintf("range(%s, %s, %s)", e.expr(v.Start), e.expr(v.Stop), e.expr(v.Step))
	default:
		e.failf(fmt.Sprintf("%T", x), x.Pos(), "unsupported expression kind")
		return ""
	}
}

func (e *pyroEmitter) sliceExpr(v *ir.RangeExpr) string {
	if v.Start == nil && v.Stop == nil && v.Step == nil {
		return ":"
	}
	lo, hi, step := "", "", ""
	if v.Start != nil {
		lo = e.expr(v.Start)
	}
	if v.Stop != nil {
		hi = e.expr(v.Stop)
	}
	if v.Step != nil {
		step = ":" + e.expr(v.Step)
	}
	return fmt.Sprintf("%s:%s%s", lo, hi, step)
}

func (e *pyroEmitter) call(v *ir.CallExpr) string {
	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		args[i] = e.expr(a)
	}
	joined := strings.Join(args, ", ")
	switch v.Name {
	case "vector", "matrix":
		e.preambleOnce("import torch")
		return fmt.Sprintf("torch.zeros(%s)", joined)
	default:
		// len, abs, min, max, sum, round are Python builtins.
		return fmt.Sprintf("%s(%s)", v.Name, joined)
	}
}

func (e *pyroEmitter) dist(d *ir.Dist) string {
	if d.Trunc != nil {
		e.failf(ir.TruncatedName, d.Position, "Pyro cannot express truncated sampling")
	}

	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = e.expr(a)
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return "0"
	}

	switch d.Desc.Name {
	case "DiscreteUniform":
		e.failf(d.Desc.Name, d.Position, "Pyro has no bounded discrete uniform distribution")
		return d.Desc.Name
	case "Dirichlet":
		e.preambleOnce("import torch")
		return fmt.Sprintf("dist.Dirichlet(torch.full((%s,), %s))", arg(1), arg(0))
	default:
		// The remaining catalog names match Pyro's distribution classes,
		// positional parameters included.
		return fmt.Sprintf("dist.%s(%s)", d.Desc.Name, strings.Join(args, ", "))
	}
}

func pyLit(l *ir.Lit) string {
	switch l.Kind {
	case ast.FloatLit:
		return strconv.FormatFloat(l.FloatVal, 'g', -1, 64)
	case ast.BoolLit:
		if l.BoolVal {
			return "True"
		}
		return "False"
	case ast.StringLit:
		return strconv.Quote(l.StrVal)
	default:
		return strconv.FormatInt(l.IntVal, 10)
	}
}
