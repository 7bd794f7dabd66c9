// Package testutil provides compact AST constructors for tests. Builders
// carry a line number where the checks under test read positions; column
// stays zero unless a test needs it.
package testutil

import (
	"github.com/pythia-ppl/pythia/internal/ast"
)

// At builds a position on the given line.
func At(line int) ast.Position {
	return ast.Position{Line: line, Column: 1}
}

// Model assembles a program from a name, parameter names, and a body.
func Model(name string, params []string, body ...ast.Statement) *ast.Program {
	ps := make([]ast.Param, len(params))
	for i, p := range params {
		ps[i] = ast.Param{Name: p, Position: At(1)}
	}
	return &ast.Program{Name: name, Params: ps, Body: body}
}

func Int(v int64) *ast.Literal {
	return &ast.Literal{Kind: ast.IntLit, IntVal: v}
}

func Float(v float64) *ast.Literal {
	return &ast.Literal{Kind: ast.FloatLit, FloatVal: v}
}

func Bool(v bool) *ast.Literal {
	return &ast.Literal{Kind: ast.BoolLit, BoolVal: v}
}

func Str(v string) *ast.Literal {
	return &ast.Literal{Kind: ast.StringLit, StrVal: v}
}

func Ref(name string) *ast.VariableRef {
	return &ast.VariableRef{Name: name}
}

// Idx subscripts a named base: Idx("x", Ref("i")) is x[i].
func Idx(base string, indices ...ast.Expression) *ast.Index {
	return &ast.Index{Base: Ref(base), Indices: indices}
}

func Bin(op ast.BinOpKind, left, right ast.Expression) *ast.BinaryOp {
	return &ast.BinaryOp{Op: op, Left: left, Right: right}
}

func Un(op ast.UnOpKind, operand ast.Expression) *ast.UnaryOp {
	return &ast.UnaryOp{Op: op, Operand: operand}
}

func CallExpr(name string, args ...ast.Expression) *ast.Call {
	return &ast.Call{Name: name, Args: args}
}

// Slice is a range in index position; nil parts select defaults, so
// Slice(nil, nil, nil) is the full-dimension ":".
func Slice(start, stop, step ast.Expression) *ast.Range {
	return &ast.Range{Start: start, Stop: stop, Step: step}
}

func Assign(line int, target, value ast.Expression) *ast.Assign {
	return &ast.Assign{Position: At(line), Target: target, Value: value}
}

func Sample(line int, target ast.Expression, dist *ast.Call) *ast.Sample {
	return &ast.Sample{Position: At(line), Target: target, Dist: dist}
}

func Observe(line int, value ast.Expression, dist *ast.Call) *ast.Observe {
	return &ast.Observe{Position: At(line), Value: value, Dist: dist}
}

func If(line int, cond ast.Expression, then ...ast.Statement) *ast.If {
	return &ast.If{Position: At(line), Cond: cond, Then: then}
}

func IfElse(line int, cond ast.Expression, then, els []ast.Statement) *ast.If {
	return &ast.If{Position: At(line), Cond: cond, Then: then, Else: els}
}

// Loop is a unit-step loop over start:1:stop.
func Loop(line int, v string, start, stop ast.Expression, body ...ast.Statement) *ast.For {
	return &ast.For{Position: At(line), Var: v, Start: start, Stop: stop, Step: Int(1), Body: body}
}

// LoopStep is Loop with an explicit step expression.
func LoopStep(line int, v string, start, stop, step ast.Expression, body ...ast.Statement) *ast.For {
	return &ast.For{Position: At(line), Var: v, Start: start, Stop: stop, Step: step, Body: body}
}

func Return(line int, value ast.Expression) *ast.Return {
	return &ast.Return{Position: At(line), Value: value}
}
