// Package resolver builds the symbol table for a parsed model.
//
// Resolution walks the statement body in declaration order. Loop bodies and
// conditional branches open child scopes that see enclosing bindings but
// cannot shadow them; the only implicitly declared names are loop indices.
// Resolution is fail-soft: every unresolved reference is collected and
// reported, never just the first.
package resolver

import (
	"github.com/pythia-ppl/pythia/internal/ast"
)

// Role classifies how a symbol participates in the model.
type Role int

const (
	// RoleDeterministic marks plain computed values and model inputs.
	RoleDeterministic Role = iota
	// RoleLatent marks random draws with no supplied value.
	RoleLatent
	// RoleObserved marks random draws constrained to data.
	RoleObserved
)

func (r Role) String() string {
	switch r {
	case RoleLatent:
		return "latent"
	case RoleObserved:
		return "observed"
	default:
		return "deterministic"
	}
}

// ShapeKind discriminates inferred symbol shapes.
type ShapeKind int

const (
	ShapeUnknown ShapeKind = iota
	ShapeScalar
	ShapeVector
	ShapeMatrix
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeScalar:
		return "scalar"
	case ShapeVector:
		return "vector"
	case ShapeMatrix:
		return "matrix"
	default:
		return "unknown"
	}
}

// Shape is the inferred shape of a symbol. Len holds the length expression
// for vectors; Rows/Cols hold the dimension expressions for matrices.
type Shape struct {
	Kind ShapeKind
	Len  ast.Expression
	Rows ast.Expression
	Cols ast.Expression
}

// Decl records one statement that declares (or re-declares) a symbol,
// with the shape and role that statement implies. The linter compares
// these entries to flag conflicting redeclarations.
type Decl struct {
	Position ast.Position
	Shape    Shape
	Role     Role
	// Indexed marks element writes (x[i] = ...) as opposed to whole-name
	// declarations; the redeclaration check treats the two differently.
	Indexed bool
	// Dist is the distribution name when the declaration is a Sample,
	// empty otherwise. The IR builder consults it for truncation tagging.
	Dist string
}

// Symbol is one resolved name. Role and Shape come from the first
// declaring statement; later declarations are kept in Decls for the
// linter's redeclaration check.
type Symbol struct {
	Name  string
	Role  Role
	Shape Shape
	Decls []Decl

	// IsParam marks model inputs.
	IsParam bool
	// IsLoopVar marks loop indices; LoopStart/LoopStop carry the bounds
	// of the innermost range that binds the variable.
	IsLoopVar bool
	LoopStart ast.Expression
	LoopStop  ast.Expression

	// Observed is set when the symbol appears as the subject of an
	// Observe statement. ObservePos locates the first such statement.
	Observed   bool
	ObservePos ast.Position
}

// Unresolved records a reference that did not resolve to any symbol
// visible from its lexical scope.
type Unresolved struct {
	Name     string
	Position ast.Position
}

// SymbolTable holds every symbol declared by a program, in declaration
// order. It is built once by Resolve and read-only afterwards.
type SymbolTable struct {
	symbols map[string]*Symbol
	order   []string
}

// Lookup returns the symbol for name, or nil.
func (t *SymbolTable) Lookup(name string) *Symbol {
	return t.symbols[name]
}

// Names returns all symbol names in declaration order.
func (t *SymbolTable) Names() []string {
	return t.order
}

func (t *SymbolTable) declare(name string) *Symbol {
	if sym, ok := t.symbols[name]; ok {
		return sym
	}
	sym := &Symbol{Name: name}
	t.symbols[name] = sym
	t.order = append(t.order, name)
	return sym
}

// scope is one lexical scope during resolution. Child scopes see parent
// bindings; bindings made in a child stay visible only within it.
type scope struct {
	parent *scope
	names  map[string]bool
}

func (s *scope) visible(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.names[name] {
			return true
		}
	}
	return false
}

func (s *scope) bind(name string) {
	s.names[name] = true
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: map[string]bool{}}
}

// builtins are callable by name without being declared.
var builtins = map[string]bool{
	"len":    true,
	"abs":    true,
	"min":    true,
	"max":    true,
	"sum":    true,
	"round":  true,
	"vector": true,
	"matrix": true,
}

// IsBuiltin reports whether name is a builtin function of the source
// language (as opposed to a distribution or a user symbol).
func IsBuiltin(name string) bool {
	return builtins[name]
}

type resolution struct {
	table      *SymbolTable
	unresolved []Unresolved
}

// Resolve walks the program and produces its symbol table plus every
// unresolved reference found. The table is still returned when references
// fail to resolve, so the linter can run its remaining checks.
func Resolve(prog *ast.Program) (*SymbolTable, []Unresolved) {
	r := &resolution{table: &SymbolTable{symbols: map[string]*Symbol{}}}

	global := newScope(nil)
	for _, p := range prog.Params {
		sym := r.table.declare(p.Name)
		sym.IsParam = true
		sym.Role = RoleDeterministic
		sym.Shape = Shape{Kind: ShapeUnknown}
		sym.Decls = append(sym.Decls, Decl{Position: p.Position, Shape: sym.Shape, Role: sym.Role})
		global.bind(p.Name)
	}

	r.resolveBlock(prog.Body, global)
	return r.table, r.unresolved
}

func (r *resolution) resolveBlock(stmts []ast.Statement, sc *scope) {
	for _, s := range stmts {
		r.resolveStmt(s, sc)
	}
}

func (r *resolution) resolveStmt(s ast.Statement, sc *scope) {
	switch x := s.(type) {
	case *ast.Assign:
		r.resolveTarget(x.Target, sc, x.Position)
		r.resolveExpr(x.Value, sc, x.Position)
		r.declareTarget(x.Target, declShape(x.Target, x.Value, sc, r.table), RoleDeterministic, "", x.Position, sc)

	case *ast.Sample:
		r.resolveTarget(x.Target, sc, x.Position)
		r.resolveExpr(x.Dist, sc, x.Position)
		dist := ""
		if x.Dist != nil {
			dist = x.Dist.Name
		}
		r.declareTarget(x.Target, declShape(x.Target, x.Dist, sc, r.table), RoleLatent, dist, x.Position, sc)

	case *ast.Observe:
		r.resolveExpr(x.Value, sc, x.Position)
		r.resolveExpr(x.Dist, sc, x.Position)
		if name, ok := ast.BaseName(x.Value); ok {
			if sym := r.table.Lookup(name); sym != nil && !sym.Observed {
				sym.Observed = true
				sym.ObservePos = x.Position
			}
		}

	case *ast.If:
		r.resolveExpr(x.Cond, sc, x.Position)
		r.resolveBlock(x.Then, newScope(sc))
		r.resolveBlock(x.Else, newScope(sc))

	case *ast.For:
		r.resolveExpr(x.Start, sc, x.Position)
		r.resolveExpr(x.Stop, sc, x.Position)
		r.resolveExpr(x.Step, sc, x.Position)
		body := newScope(sc)
		sym := r.table.declare(x.Var)
		if len(sym.Decls) == 0 {
			sym.Role = RoleDeterministic
			sym.Shape = Shape{Kind: ShapeScalar}
			sym.IsLoopVar = true
			sym.Decls = append(sym.Decls, Decl{Position: x.Position, Shape: sym.Shape, Role: sym.Role})
		}
		sym.LoopStart = x.Start
		sym.LoopStop = x.Stop
		body.bind(x.Var)
		r.resolveBlock(x.Body, body)

	case *ast.Return:
		if x.Value != nil {
			r.resolveExpr(x.Value, sc, x.Position)
		}

	case *ast.Break, *ast.Continue:
		// Nothing to resolve.
	}
}

// resolveTarget resolves only the index sub-expressions of an assignment
// target; the base name is being declared, not referenced.
func (r *resolution) resolveTarget(target ast.Expression, sc *scope, pos ast.Position) {
	if idx, ok := target.(*ast.Index); ok {
		for _, e := range idx.Indices {
			r.resolveExpr(e, sc, pos)
		}
		// Multi-level bases (x[i][j]) re-enter as targets.
		if _, isRef := idx.Base.(*ast.VariableRef); !isRef {
			r.resolveTarget(idx.Base, sc, pos)
		}
	}
}

// resolveExpr collects unresolved references. pos is the enclosing
// statement's position, used when a reference carries no position of its
// own so diagnostics still point at a source line.
func (r *resolution) resolveExpr(e ast.Expression, sc *scope, pos ast.Position) {
	ast.WalkExpr(e, func(node ast.Expression) bool {
		if ref, ok := node.(*ast.VariableRef); ok {
			if !sc.visible(ref.Name) {
				at := ref.Position
				if at.Line == 0 {
					at = pos
				}
				r.unresolved = append(r.unresolved, Unresolved{Name: ref.Name, Position: at})
			}
		}
		return true
	})
}

func (r *resolution) declareTarget(target ast.Expression, shape Shape, role Role, dist string, pos ast.Position, sc *scope) {
	name, ok := ast.BaseName(target)
	if !ok {
		return
	}
	_, indexed := target.(*ast.Index)
	sym := r.table.declare(name)
	first := len(sym.Decls) == 0
	sym.Decls = append(sym.Decls, Decl{Position: pos, Shape: shape, Role: role, Indexed: indexed, Dist: dist})
	if first {
		sym.Role = role
		sym.Shape = shape
	}
	sc.bind(name)
}

// declShape infers the shape a declaring statement implies for its target.
func declShape(target, value ast.Expression, sc *scope, table *SymbolTable) Shape {
	switch t := target.(type) {
	case *ast.Index:
		// name[i] over a known loop range declares a vector of that
		// range's length; name[i, j] declares a matrix.
		if len(t.Indices) >= 2 {
			return Shape{
				Kind: ShapeMatrix,
				Rows: loopStop(t.Indices[0], table),
				Cols: loopStop(t.Indices[1], table),
			}
		}
		return Shape{Kind: ShapeVector, Len: loopStop(t.Indices[0], table)}
	case *ast.VariableRef:
		_ = t
		return valueShape(value)
	default:
		return Shape{Kind: ShapeUnknown}
	}
}

// loopStop returns the stop bound when the index expression is a loop
// variable with known bounds, nil otherwise.
func loopStop(index ast.Expression, table *SymbolTable) ast.Expression {
	ref, ok := index.(*ast.VariableRef)
	if !ok {
		return nil
	}
	sym := table.Lookup(ref.Name)
	if sym == nil || !sym.IsLoopVar {
		return nil
	}
	return sym.LoopStop
}

// valueShape infers the shape implied by the right-hand side of a scalar
// target declaration.
func valueShape(value ast.Expression) Shape {
	call, ok := value.(*ast.Call)
	if !ok {
		return Shape{Kind: ShapeScalar}
	}
	switch call.Name {
	case "vector":
		var length ast.Expression
		if len(call.Args) >= 1 {
			length = call.Args[0]
		}
		return Shape{Kind: ShapeVector, Len: length}
	case "matrix":
		var rows, cols ast.Expression
		if len(call.Args) >= 2 {
			rows, cols = call.Args[0], call.Args[1]
		}
		return Shape{Kind: ShapeMatrix, Rows: rows, Cols: cols}
	case "Dirichlet":
		// A Dirichlet draw is a concentration-length vector.
		var length ast.Expression
		if len(call.Args) >= 2 {
			length = call.Args[1]
		}
		return Shape{Kind: ShapeVector, Len: length}
	default:
		return Shape{Kind: ShapeScalar}
	}
}
