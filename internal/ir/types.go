package ir

import (
	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/resolver"
)

// Model is the immutable translation unit consumed by backend generators.
type Model struct {
	Name   string
	Params []string
	Body   []Stmt

	// Roles maps every symbol name to its finalized role. Backends use it
	// to decide which sub-expressions are non-deterministic (hoisting) and
	// which sample statements the constraint aggregator must omit.
	Roles map[string]resolver.Role
}

// Role returns the finalized role of name, defaulting to deterministic
// for loop variables and other undeclared helpers.
func (m *Model) Role(name string) resolver.Role {
	return m.Roles[name]
}

// Stmt is the closed statement set of the IR.
//
// Sealed interface; the marker method keeps lowering switches exhaustive.
type Stmt interface {
	Pos() ast.Position
	stmtNode()
}

// Expr is the closed expression set of the IR.
type Expr interface {
	Pos() ast.Position
	exprNode()
}

// AssignStmt is a deterministic assignment.
type AssignStmt struct {
	Position ast.Position
	Target   Expr
	Value    Expr
}

// SampleStmt binds a target to a random draw. Addr is the address template
// synthesized from the target name and its index expressions; explicit- and
// named-addressing backends render it, implicit backends ignore it.
type SampleStmt struct {
	Position ast.Position
	Target   Expr
	Addr     Address
	Role     resolver.Role
	Dist     *Dist
}

// ObserveStmt constrains a value expression to data.
type ObserveStmt struct {
	Position ast.Position
	Value    Expr
	Addr     Address
	Dist     *Dist
}

// IfStmt is a two-armed conditional.
type IfStmt struct {
	Position ast.Position
	Cond     Expr
	Then     []Stmt
	Else     []Stmt
}

// ForStmt is a bounded integer loop, zero-based half-open like the source.
type ForStmt struct {
	Position ast.Position
	Var      string
	Start    Expr
	Stop     Expr
	Step     Expr
	Body     []Stmt
}

// ReturnStmt ends the model body; Value may be nil.
type ReturnStmt struct {
	Position ast.Position
	Value    Expr
}

// BreakStmt exits the innermost loop.
type BreakStmt struct {
	Position ast.Position
}

// ContinueStmt skips to the next loop iteration.
type ContinueStmt struct {
	Position ast.Position
}

func (s *AssignStmt) Pos() ast.Position   { return s.Position }
func (s *SampleStmt) Pos() ast.Position   { return s.Position }
func (s *ObserveStmt) Pos() ast.Position  { return s.Position }
func (s *IfStmt) Pos() ast.Position       { return s.Position }
func (s *ForStmt) Pos() ast.Position      { return s.Position }
func (s *ReturnStmt) Pos() ast.Position   { return s.Position }
func (s *BreakStmt) Pos() ast.Position    { return s.Position }
func (s *ContinueStmt) Pos() ast.Position { return s.Position }

func (*AssignStmt) stmtNode()   {}
func (*SampleStmt) stmtNode()   {}
func (*ObserveStmt) stmtNode()  {}
func (*IfStmt) stmtNode()       {}
func (*ForStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}

// Lit is a constant.
type Lit struct {
	Position ast.Position
	Kind     ast.LitKind
	IntVal   int64
	FloatVal float64
	BoolVal  bool
	StrVal   string
}

// VarRef names a symbol.
type VarRef struct {
	Position ast.Position
	Name     string
}

// IndexExpr subscripts a base expression.
//
// NeedsOffset is set on every index node during the build: source indices
// are zero-based while one-based backends must shift them. The tag is a
// fact, not a rewrite; each backend applies or ignores it.
//
// RequiresTrunc is set when an index sub-expression is fed by a sampled
// value that is nominally discrete but stored in a real-typed container.
// Backends whose host arrays reject non-integer indices emit a truncating
// cast; backends with implicit coercion ignore the tag.
type IndexExpr struct {
	Position    ast.Position
	Base        Expr
	Indices     []Expr
	NeedsOffset bool
	// Trunc parallels Indices; Trunc[i] marks the one index that needs
	// the cast. RequiresTrunc reports whether any entry is set.
	Trunc []bool
}

// RequiresTrunc reports whether any index carries the truncation tag.
func (e *IndexExpr) RequiresTrunc() bool {
	for _, t := range e.Trunc {
		if t {
			return true
		}
	}
	return false
}

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Position ast.Position
	Op       ast.BinOpKind
	Left     Expr
	Right    Expr
}

// UnaryExpr applies a unary operator.
type UnaryExpr struct {
	Position ast.Position
	Op       ast.UnOpKind
	Operand  Expr
}

// CallExpr invokes a builtin function. Distribution calls never appear
// here; they are canonicalized into Dist during the build.
type CallExpr struct {
	Position ast.Position
	Name     string
	Args     []Expr
}

// RangeExpr is an integer range start:step:stop.
type RangeExpr struct {
	Position ast.Position
	Start    Expr
	Stop     Expr
	Step     Expr
}

func (e *Lit) Pos() ast.Position        { return e.Position }
func (e *VarRef) Pos() ast.Position     { return e.Position }
func (e *IndexExpr) Pos() ast.Position  { return e.Position }
func (e *BinaryExpr) Pos() ast.Position { return e.Position }
func (e *UnaryExpr) Pos() ast.Position  { return e.Position }
func (e *CallExpr) Pos() ast.Position   { return e.Position }
func (e *RangeExpr) Pos() ast.Position  { return e.Position }

func (*Lit) exprNode()        {}
func (*VarRef) exprNode()     {}
func (*IndexExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}
func (*RangeExpr) exprNode()  {}

// Address is the address template of one random choice: the target's base
// name plus the index expressions of the target, evaluated per iteration
// at generation time. Two choices sharing a Base are distinguished by
// their index values, which is what makes addresses pairwise distinct
// across loop iterations.
type Address struct {
	Base    string
	Indices []Expr
}

// Dist is a canonicalized distribution call. Trunc is non-nil when the
// source wrapped the call in the truncation wrapper.
type Dist struct {
	Position ast.Position
	Desc     *Descriptor
	Args     []Expr
	Trunc    *Truncation
}

// Truncation bounds a wrapped distribution. Either bound may be nil.
type Truncation struct {
	Lo Expr
	Hi Expr
}

// Nondeterministic reports whether the expression's value depends on a
// latent draw, directly or through an indexed container. Backends use it
// to decide which shared sub-expressions must be hoisted into a single
// temporary per iteration.
func (m *Model) Nondeterministic(e Expr) bool {
	found := false
	WalkExpr(e, func(node Expr) bool {
		if ref, ok := node.(*VarRef); ok {
			if m.Role(ref.Name) == resolver.RoleLatent {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// WalkStmts calls fn for every statement in stmts, recursing into
// conditional arms and loop bodies. fn runs before descending.
func WalkStmts(stmts []Stmt, fn func(Stmt)) {
	for _, s := range stmts {
		fn(s)
		switch x := s.(type) {
		case *IfStmt:
			WalkStmts(x.Then, fn)
			WalkStmts(x.Else, fn)
		case *ForStmt:
			WalkStmts(x.Body, fn)
		}
	}
}

// WalkExpr calls fn for e and every nested expression, outermost first,
// stopping early when fn returns false.
func WalkExpr(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch x := e.(type) {
	case *IndexExpr:
		WalkExpr(x.Base, fn)
		for _, idx := range x.Indices {
			WalkExpr(idx, fn)
		}
	case *BinaryExpr:
		WalkExpr(x.Left, fn)
		WalkExpr(x.Right, fn)
	case *UnaryExpr:
		WalkExpr(x.Operand, fn)
	case *CallExpr:
		for _, arg := range x.Args {
			WalkExpr(arg, fn)
		}
	case *RangeExpr:
		WalkExpr(x.Start, fn)
		WalkExpr(x.Stop, fn)
		WalkExpr(x.Step, fn)
	}
}
