package ir

import (
	"fmt"

	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/resolver"
)

// Build lowers a linted AST into the IR. It assumes the program produced
// zero error-severity diagnostics; it still fails fast with a CodegenError
// on conditions the linter cannot rule out, such as a distribution name
// missing from the catalog.
//
// The returned model is independent per call and never mutated afterwards.
func Build(prog *ast.Program, symbols *resolver.SymbolTable) (*Model, error) {
	b := &builder{symbols: symbols}

	body, err := b.buildBlock(prog.Body)
	if err != nil {
		return nil, err
	}

	params := make([]string, len(prog.Params))
	for i, p := range prog.Params {
		params[i] = p.Name
	}

	roles := make(map[string]resolver.Role, len(symbols.Names()))
	for _, name := range symbols.Names() {
		roles[name] = finalRole(symbols.Lookup(name))
	}

	return &Model{
		Name:   prog.Name,
		Params: params,
		Body:   body,
		Roles:  roles,
	}, nil
}

// finalRole fixes a symbol's role: a name that is the subject of an
// observe statement is Observed; a name any declaration samples into is
// Latent, which covers containers declared deterministically and then
// filled element by element; everything else keeps its declared role.
func finalRole(sym *resolver.Symbol) resolver.Role {
	if sym.Observed {
		return resolver.RoleObserved
	}
	for _, d := range sym.Decls {
		if d.Role == resolver.RoleLatent {
			return resolver.RoleLatent
		}
	}
	return sym.Role
}

type builder struct {
	symbols *resolver.SymbolTable
	// loops holds the enclosing loop variables, outermost first, while the
	// builder walks a loop body. Address synthesis reads it.
	loops []string
}

func (b *builder) buildBlock(stmts []ast.Statement) ([]Stmt, error) {
	out := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		built, err := b.buildStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}

func (b *builder) buildStmt(s ast.Statement) (Stmt, error) {
	switch x := s.(type) {
	case *ast.Assign:
		target, err := b.buildExpr(x.Target)
		if err != nil {
			return nil, err
		}
		value, err := b.buildExpr(x.Value)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Position: x.Position, Target: target, Value: value}, nil

	case *ast.Sample:
		target, err := b.buildExpr(x.Target)
		if err != nil {
			return nil, err
		}
		dist, err := b.buildDist(x.Dist)
		if err != nil {
			return nil, err
		}
		addr, err := b.buildAddress(x.Target, x.Position)
		if err != nil {
			return nil, err
		}
		role := resolver.RoleLatent
		if name, ok := ast.BaseName(x.Target); ok {
			if sym := b.symbols.Lookup(name); sym != nil {
				role = finalRole(sym)
			}
		}
		return &SampleStmt{Position: x.Position, Target: target, Addr: addr, Role: role, Dist: dist}, nil

	case *ast.Observe:
		value, err := b.buildExpr(x.Value)
		if err != nil {
			return nil, err
		}
		dist, err := b.buildDist(x.Dist)
		if err != nil {
			return nil, err
		}
		addr, err := b.buildAddress(x.Value, x.Position)
		if err != nil {
			return nil, err
		}
		return &ObserveStmt{Position: x.Position, Value: value, Addr: addr, Dist: dist}, nil

	case *ast.If:
		cond, err := b.buildExpr(x.Cond)
		if err != nil {
			return nil, err
		}
		then, err := b.buildBlock(x.Then)
		if err != nil {
			return nil, err
		}
		els, err := b.buildBlock(x.Else)
		if err != nil {
			return nil, err
		}
		return &IfStmt{Position: x.Position, Cond: cond, Then: then, Else: els}, nil

	case *ast.For:
		start, err := b.buildExpr(x.Start)
		if err != nil {
			return nil, err
		}
		stop, err := b.buildExpr(x.Stop)
		if err != nil {
			return nil, err
		}
		step, err := b.buildExpr(x.Step)
		if err != nil {
			return nil, err
		}
		b.loops = append(b.loops, x.Var)
		body, err := b.buildBlock(x.Body)
		b.loops = b.loops[:len(b.loops)-1]
		if err != nil {
			return nil, err
		}
		return &ForStmt{Position: x.Position, Var: x.Var, Start: start, Stop: stop, Step: step, Body: body}, nil

	case *ast.Return:
		var value Expr
		if x.Value != nil {
			var err error
			value, err = b.buildExpr(x.Value)
			if err != nil {
				return nil, err
			}
		}
		return &ReturnStmt{Position: x.Position, Value: value}, nil

	case *ast.Break:
		return &BreakStmt{Position: x.Position}, nil

	case *ast.Continue:
		return &ContinueStmt{Position: x.Position}, nil

	default:
		return nil, &CodegenError{
			Construct: fmt.Sprintf("%T", s),
			Position:  s.Pos(),
			Message:   "unsupported statement kind",
		}
	}
}

func (b *builder) buildExpr(e ast.Expression) (Expr, error) {
	switch x := e.(type) {
	case *ast.Literal:
		return &Lit{Position: x.Position, Kind: x.Kind, IntVal: x.IntVal, FloatVal: x.FloatVal, BoolVal: x.BoolVal, StrVal: x.StrVal}, nil

	case *ast.VariableRef:
		return &VarRef{Position: x.Position, Name: x.Name}, nil

	case *ast.Index:
		base, err := b.buildExpr(x.Base)
		if err != nil {
			return nil, err
		}
		indices := make([]Expr, len(x.Indices))
		trunc := make([]bool, len(x.Indices))
		for i, idx := range x.Indices {
			built, err := b.buildExpr(idx)
			if err != nil {
				return nil, err
			}
			indices[i] = built
			trunc[i] = b.indexNeedsTrunc(idx)
		}
		return &IndexExpr{
			Position:    x.Position,
			Base:        base,
			Indices:     indices,
			NeedsOffset: true,
			Trunc:       trunc,
		}, nil

	case *ast.BinaryOp:
		left, err := b.buildExpr(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.buildExpr(x.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Position: x.Position, Op: x.Op, Left: left, Right: right}, nil

	case *ast.UnaryOp:
		operand, err := b.buildExpr(x.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Position: x.Position, Op: x.Op, Operand: operand}, nil

	case *ast.Call:
		if IsDistribution(x.Name) {
			// Distribution calls are only legal as the distribution
			// argument of sample/observe, which buildDist handles.
			return nil, &CodegenError{
				Construct: x.Name,
				Position:  x.Position,
				Message:   "distribution call outside a sample or observe statement",
			}
		}
		args := make([]Expr, len(x.Args))
		for i, arg := range x.Args {
			built, err := b.buildExpr(arg)
			if err != nil {
				return nil, err
			}
			args[i] = built
		}
		return &CallExpr{Position: x.Position, Name: x.Name, Args: args}, nil

	case *ast.Range:
		// All three parts are optional; a bare ":" slice has none.
		start, err := b.buildOptional(x.Start)
		if err != nil {
			return nil, err
		}
		stop, err := b.buildOptional(x.Stop)
		if err != nil {
			return nil, err
		}
		step, err := b.buildOptional(x.Step)
		if err != nil {
			return nil, err
		}
		return &RangeExpr{Position: x.Position, Start: start, Stop: stop, Step: step}, nil

	default:
		return nil, &CodegenError{
			Construct: fmt.Sprintf("%T", e),
			Position:  e.Pos(),
			Message:   "unsupported expression kind",
		}
	}
}

func (b *builder) buildOptional(e ast.Expression) (Expr, error) {
	if e == nil {
		return nil, nil
	}
	return b.buildExpr(e)
}

// buildDist canonicalizes a distribution call, unwrapping the truncation
// wrapper when present.
func (b *builder) buildDist(call *ast.Call) (*Dist, error) {
	if call == nil {
		return nil, &CodegenError{Construct: "sample", Message: "missing distribution"}
	}

	if call.Name == TruncatedName {
		if len(call.Args) < 1 {
			return nil, &CodegenError{
				Construct: TruncatedName,
				Position:  call.Position,
				Message:   "truncation wrapper requires a wrapped distribution",
			}
		}
		inner, ok := call.Args[0].(*ast.Call)
		if !ok {
			return nil, &CodegenError{
				Construct: TruncatedName,
				Position:  call.Position,
				Message:   "first argument must be a distribution call",
			}
		}
		dist, err := b.buildDist(inner)
		if err != nil {
			return nil, err
		}
		trunc := &Truncation{}
		if len(call.Args) >= 2 {
			lo, err := b.buildExpr(call.Args[1])
			if err != nil {
				return nil, err
			}
			trunc.Lo = lo
		}
		if len(call.Args) >= 3 {
			hi, err := b.buildExpr(call.Args[2])
			if err != nil {
				return nil, err
			}
			trunc.Hi = hi
		}
		dist.Trunc = trunc
		return dist, nil
	}

	desc, ok := LookupDistribution(call.Name)
	if !ok {
		return nil, &CodegenError{
			Construct: call.Name,
			Position:  call.Position,
			Message:   "unknown distribution",
		}
	}

	args := make([]Expr, len(call.Args))
	for i, arg := range call.Args {
		built, err := b.buildExpr(arg)
		if err != nil {
			return nil, err
		}
		args[i] = built
	}
	return &Dist{Position: call.Position, Desc: desc, Args: args}, nil
}

// buildAddress synthesizes the address template for a sample/observe
// subject: the target's base name plus its index expressions, extended
// with every enclosing loop variable the indices do not already mention.
// Extension keeps explicit addresses pairwise distinct across loop
// iterations even when the target itself is loop-invariant. pos is the
// owning statement's position, the anchor for fallback addresses.
func (b *builder) buildAddress(target ast.Expression, pos ast.Position) (Address, error) {
	switch t := target.(type) {
	case *ast.VariableRef:
		return Address{Base: t.Name, Indices: b.missingLoopIndices(nil)}, nil
	case *ast.Index:
		base, ok := ast.BaseName(t)
		if !ok {
			return Address{}, &CodegenError{
				Construct: "address",
				Position:  t.Position,
				Message:   "cannot derive an address from the statement target",
			}
		}
		indices := make([]Expr, len(t.Indices))
		for i, idx := range t.Indices {
			built, err := b.buildExpr(idx)
			if err != nil {
				return Address{}, err
			}
			indices[i] = built
		}
		return Address{Base: base, Indices: append(indices, b.missingLoopIndices(t.Indices)...)}, nil
	default:
		// Observing a computed expression gets a positional fallback
		// address; the value itself carries the data.
		return Address{Base: fmt.Sprintf("observe_%d_%d", pos.Line, pos.Column), Indices: b.missingLoopIndices(nil)}, nil
	}
}

// missingLoopIndices returns a reference for each enclosing loop variable
// that none of the explicit index expressions mentions, outermost first.
func (b *builder) missingLoopIndices(indices []ast.Expression) []Expr {
	var out []Expr
	for _, loopVar := range b.loops {
		mentioned := false
		for _, idx := range indices {
			ast.WalkExpr(idx, func(node ast.Expression) bool {
				if ref, ok := node.(*ast.VariableRef); ok && ref.Name == loopVar {
					mentioned = true
					return false
				}
				return true
			})
			if mentioned {
				break
			}
		}
		if !mentioned {
			out = append(out, &VarRef{Name: loopVar})
		}
	}
	return out
}

// indexNeedsTrunc reports whether the index expression is fed by a sampled
// value from a nominally-discrete distribution stored in a real container.
func (b *builder) indexNeedsTrunc(index ast.Expression) bool {
	needs := false
	ast.WalkExpr(index, func(node ast.Expression) bool {
		ref, ok := node.(*ast.VariableRef)
		if !ok {
			return true
		}
		sym := b.symbols.Lookup(ref.Name)
		if sym == nil {
			return true
		}
		for _, decl := range sym.Decls {
			if decl.Dist == "" {
				continue
			}
			if desc, ok := LookupDistribution(decl.Dist); ok && desc.Discrete {
				needs = true
				return false
			}
		}
		return true
	})
	return needs
}
