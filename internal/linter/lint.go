// Package linter runs the semantic and portability check battery over a
// parsed model. Checks are independent and fail-soft: every check runs
// even after earlier ones found problems, and all findings come back in
// one pass so a caller sees the full error set at once.
//
// The linter never mutates the AST and keeps no state between runs; its
// only output is the returned Result.
package linter

import (
	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/ir"
	"github.com/pythia-ppl/pythia/internal/resolver"
)

// Result is one lint run's output: the accumulated diagnostics plus the
// symbol table, which the IR builder reuses so resolution happens once.
type Result struct {
	Diagnostics []Diagnostic
	Symbols     *resolver.SymbolTable
}

// HasErrors reports whether translation must be refused.
func (r *Result) HasErrors() bool {
	return HasErrors(r.Diagnostics)
}

// Lint validates a program. backendName selects the target for portability
// checks; pass "" to run only the backend-independent battery.
func Lint(prog *ast.Program, backendName string) *Result {
	symbols, unresolved := resolver.Resolve(prog)

	l := &linter{prog: prog, symbols: symbols}

	for _, u := range unresolved {
		l.report(errorAt(ErrUndefinedReference, u.Position, "undefined reference %q", u.Name))
	}

	l.checkRedeclarations()
	l.checkDistributions()
	l.checkIndices()
	l.checkObservedImmutability()
	if backendName != "" {
		if backend, ok := ir.LookupBackend(backendName); ok {
			l.checkPortability(backend)
		}
	}

	return &Result{Diagnostics: l.diags, Symbols: symbols}
}

type linter struct {
	prog    *ast.Program
	symbols *resolver.SymbolTable
	diags   []Diagnostic
}

func (l *linter) report(d Diagnostic) {
	l.diags = append(l.diags, d)
}

// checkRedeclarations flags names declared with conflicting shape or role
// in two different statements. Element writes into a declared container
// (x[i] = ... after x = vector(n)) are not redeclarations.
func (l *linter) checkRedeclarations() {
	for _, name := range l.symbols.Names() {
		sym := l.symbols.Lookup(name)
		if len(sym.Decls) < 2 {
			continue
		}
		first := sym.Decls[0]
		for _, decl := range sym.Decls[1:] {
			if shapeConflict(first.Shape, decl.Shape) {
				l.report(errorAt(ErrRedeclaration, decl.Position,
					"%q redeclared as %s, previously declared as %s",
					name, decl.Shape.Kind, first.Shape.Kind))
				continue
			}
			if !first.Indexed && !decl.Indexed && first.Role != decl.Role {
				l.report(errorAt(ErrRedeclaration, decl.Position,
					"%q redeclared as %s, previously declared as %s",
					name, decl.Role, first.Role))
			}
		}
	}
}

// shapeConflict reports whether two inferred shapes are irreconcilable.
// Unknown matches anything; an indexed write into a vector or matrix
// infers the element container, so equal kinds never conflict.
func shapeConflict(a, b resolver.Shape) bool {
	if a.Kind == resolver.ShapeUnknown || b.Kind == resolver.ShapeUnknown {
		return false
	}
	return a.Kind != b.Kind
}

// checkDistributions validates every distribution call: catalog membership,
// arity, argument shape, and placement.
func (l *linter) checkDistributions() {
	ast.WalkStmts(l.prog.Body, func(s ast.Statement) {
		var dist *ast.Call
		switch x := s.(type) {
		case *ast.Sample:
			dist = x.Dist
		case *ast.Observe:
			dist = x.Dist
		}
		if dist != nil {
			l.checkDistCall(dist)
		}

		// Distribution names appearing in ordinary expressions are
		// misplaced; they only draw inside sample/observe.
		for _, e := range ast.Expressions(s) {
			if e == dist {
				continue
			}
			ast.WalkExpr(e, func(node ast.Expression) bool {
				if call, ok := node.(*ast.Call); ok && ir.IsDistribution(call.Name) {
					l.report(errorAt(ErrMisplacedDistribution, call.Position,
						"distribution %q used outside a sample or observe statement", call.Name))
				}
				return true
			})
		}
	})
}

func (l *linter) checkDistCall(call *ast.Call) {
	if call.Name == ir.TruncatedName {
		if len(call.Args) == 0 {
			l.report(errorAt(ErrDistributionArity, call.Position,
				"%s requires a wrapped distribution", ir.TruncatedName))
			return
		}
		inner, ok := call.Args[0].(*ast.Call)
		if !ok {
			l.report(errorAt(ErrUnknownDistribution, call.Position,
				"%s requires a distribution as its first argument", ir.TruncatedName))
			return
		}
		l.checkDistCall(inner)
		return
	}

	desc, ok := ir.LookupDistribution(call.Name)
	if !ok {
		l.report(errorAt(ErrUnknownDistribution, call.Position,
			"unknown distribution %q", call.Name))
		return
	}
	if len(call.Args) != desc.Arity() {
		l.report(errorAt(ErrDistributionArity, call.Position,
			"%s expects %d argument(s), got %d", desc.Name, desc.Arity(), len(call.Args)))
	}

	for i, arg := range call.Args {
		if i >= len(desc.Params) {
			break
		}
		role := desc.Params[i]
		if role == ir.ParamProbVector || role == ir.ParamConcentration {
			continue
		}
		if ref, ok := arg.(*ast.VariableRef); ok {
			if sym := l.symbols.Lookup(ref.Name); sym != nil && sym.Shape.Kind == resolver.ShapeVector {
				l.report(warningAt(WarnArgumentShape, ref.Position,
					"%s parameter %d (%s) expects a scalar, %q is a vector",
					desc.Name, i+1, role, ref.Name))
			}
		}
	}
}

// checkIndices validates every index expression in the program.
func (l *linter) checkIndices() {
	ast.WalkStmts(l.prog.Body, func(s ast.Statement) {
		for _, e := range ast.Expressions(s) {
			ast.WalkExpr(e, func(node ast.Expression) bool {
				if idx, ok := node.(*ast.Index); ok {
					l.checkIndex(idx)
				}
				return true
			})
		}
	})
}

func (l *linter) checkIndex(idx *ast.Index) {
	baseName, _ := ast.BaseName(idx.Base)
	var baseSym *resolver.Symbol
	if baseName != "" {
		baseSym = l.symbols.Lookup(baseName)
	}

	for dim, index := range idx.Indices {
		switch x := index.(type) {
		case *ast.Literal:
			switch x.Kind {
			case ast.FloatLit:
				l.report(errorAt(ErrNonIntegerIndex, x.Position,
					"non-integer index %s into %q", ast.ExprString(x), baseName))
			case ast.IntLit:
				if x.IntVal < 0 {
					l.report(errorAt(ErrIndexOutOfRange, x.Position,
						"index %d into %q is negative", x.IntVal, baseName))
					continue
				}
				if size, ok := staticDim(baseSym, dim); ok && x.IntVal >= size {
					l.report(errorAt(ErrIndexOutOfRange, x.Position,
						"index %d into %q exceeds size %d", x.IntVal, baseName, size))
				}
			}
		case *ast.VariableRef:
			sym := l.symbols.Lookup(x.Name)
			if sym == nil || !sym.IsLoopVar || baseSym == nil {
				continue
			}
			if baseSym.Shape.Kind != resolver.ShapeVector || baseSym.Shape.Len == nil || sym.LoopStop == nil {
				continue
			}
			if ast.ExprString(sym.LoopStop) != ast.ExprString(baseSym.Shape.Len) {
				l.report(warningAt(WarnIndexBounds, x.Position,
					"loop bound %s of %q does not match length %s of %q",
					ast.ExprString(sym.LoopStop), x.Name,
					ast.ExprString(baseSym.Shape.Len), baseName))
			}
		}
	}
}

// staticDim extracts the literal size of one dimension of a symbol's
// shape: a vector's length for dimension 0, a matrix's rows and columns
// for dimensions 0 and 1.
func staticDim(sym *resolver.Symbol, dim int) (int64, bool) {
	if sym == nil {
		return 0, false
	}
	var size ast.Expression
	switch sym.Shape.Kind {
	case resolver.ShapeVector:
		if dim == 0 {
			size = sym.Shape.Len
		}
	case resolver.ShapeMatrix:
		switch dim {
		case 0:
			size = sym.Shape.Rows
		case 1:
			size = sym.Shape.Cols
		}
	}
	lit, ok := size.(*ast.Literal)
	if !ok || lit.Kind != ast.IntLit {
		return 0, false
	}
	return lit.IntVal, true
}

// checkObservedImmutability flags assignments to a name after an observe
// statement constrained it.
func (l *linter) checkObservedImmutability() {
	ast.WalkStmts(l.prog.Body, func(s ast.Statement) {
		assign, ok := s.(*ast.Assign)
		if !ok {
			return
		}
		name, ok := ast.BaseName(assign.Target)
		if !ok {
			return
		}
		sym := l.symbols.Lookup(name)
		if sym == nil || !sym.Observed {
			return
		}
		if positionAfter(assign.Position, sym.ObservePos) {
			l.report(errorAt(ErrObservedImmutable, assign.Position,
				"%q was observed at line %d and may not be reassigned", name, sym.ObservePos.Line))
		}
	})
}

func positionAfter(a, b ast.Position) bool {
	if a.Line != b.Line {
		return a.Line > b.Line
	}
	return a.Column > b.Column
}

// checkPortability verifies every distribution against the requested
// backend's support set. Rewritable constructs warn; missing equivalents
// are errors. Findings carry the backend tag.
func (l *linter) checkPortability(backend ir.BackendDescriptor) {
	seenAt := func(call *ast.Call, name string) {
		switch backend.DistributionSupport(name) {
		case ir.SupportNone:
			d := errorAt(ErrUnsupportedDistribution, call.Position,
				"%s has no equivalent for %q", backend.Target, name)
			d.Backend = backend.Name
			l.report(d)
		case ir.SupportWarn:
			d := warningAt(WarnRewriteRequired, call.Position,
				"%q is lowered through a rewrite with caveats on %s", name, backend.Target)
			d.Backend = backend.Name
			l.report(d)
		}
	}

	ast.WalkStmts(l.prog.Body, func(s ast.Statement) {
		var dist *ast.Call
		switch x := s.(type) {
		case *ast.Sample:
			dist = x.Dist
		case *ast.Observe:
			dist = x.Dist
		}
		if dist == nil {
			return
		}
		if dist.Name == ir.TruncatedName {
			seenAt(dist, ir.TruncatedName)
			if len(dist.Args) > 0 {
				if inner, ok := dist.Args[0].(*ast.Call); ok && ir.IsDistribution(inner.Name) {
					seenAt(inner, inner.Name)
				}
			}
			return
		}
		if ir.IsDistribution(dist.Name) {
			seenAt(dist, dist.Name)
		}
	})
}
