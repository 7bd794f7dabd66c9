package ast

// Position locates a node in the original model source.
// Line and Column are 1-based; the zero value means "unknown".
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsValid reports whether the position carries real source information.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Node is the common interface of all AST nodes.
type Node interface {
	Pos() Position
}

// Program is a parsed probabilistic model: an ordered statement body plus
// the model's declared free inputs.
type Program struct {
	Name   string
	Params []Param
	Body   []Statement
}

// Param is one declared model input.
type Param struct {
	Name     string
	Position Position
}

func (p Param) Pos() Position { return p.Position }

// Statement is the closed set of statement variants.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and forces
// every backend to handle every variant in its type switch.
type Statement interface {
	Node
	stmtNode()
}

// Expression is the closed set of expression variants.
//
// Sealed like Statement; see the note there.
type Expression interface {
	Node
	exprNode()
}

// Assign is a deterministic assignment: target = value.
// Target is either a VariableRef or an Index over one.
type Assign struct {
	Position Position
	Target   Expression
	Value    Expression
}

// Sample binds a name to a random draw: target ~ Dist(args).
// Whether the target is latent or observed is decided during IR
// construction, not by the parser.
type Sample struct {
	Position Position
	Target   Expression
	Dist     *Call
}

// Observe constrains an expression to supplied data: observe(value, Dist(args)).
type Observe struct {
	Position Position
	Value    Expression
	Dist     *Call
}

// If is a two-armed conditional. Else may be empty.
type If struct {
	Position Position
	Cond     Expression
	Then     []Statement
	Else     []Statement
}

// For is a bounded loop over the integer range start:step:stop
// (inclusive start, exclusive stop, zero-based like the source language).
type For struct {
	Position Position
	Var      string
	Start    Expression
	Stop     Expression
	Step     Expression
	Body     []Statement
}

// Return ends the model body. Value may be nil.
type Return struct {
	Position Position
	Value    Expression
}

// Break exits the innermost loop.
type Break struct {
	Position Position
}

// Continue skips to the next iteration of the innermost loop.
type Continue struct {
	Position Position
}

func (s *Assign) Pos() Position   { return s.Position }
func (s *Sample) Pos() Position   { return s.Position }
func (s *Observe) Pos() Position  { return s.Position }
func (s *If) Pos() Position       { return s.Position }
func (s *For) Pos() Position      { return s.Position }
func (s *Return) Pos() Position   { return s.Position }
func (s *Break) Pos() Position    { return s.Position }
func (s *Continue) Pos() Position { return s.Position }

func (*Assign) stmtNode()   {}
func (*Sample) stmtNode()   {}
func (*Observe) stmtNode()  {}
func (*If) stmtNode()       {}
func (*For) stmtNode()      {}
func (*Return) stmtNode()   {}
func (*Break) stmtNode()    {}
func (*Continue) stmtNode() {}

// LitKind discriminates literal values.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	BoolLit
	StringLit
)

// Literal is a constant value.
type Literal struct {
	Position Position
	Kind     LitKind
	IntVal   int64
	FloatVal float64
	BoolVal  bool
	StrVal   string
}

// VariableRef names a symbol in the enclosing lexical scope.
type VariableRef struct {
	Position Position
	Name     string
}

// Index subscripts a base expression with one index per dimension.
// Source indices are zero-based.
type Index struct {
	Position Position
	Base     Expression
	Indices  []Expression
}

// BinOpKind is the fixed operator set of the source language.
type BinOpKind string

const (
	OpAdd BinOpKind = "+"
	OpSub BinOpKind = "-"
	OpMul BinOpKind = "*"
	OpDiv BinOpKind = "/"
	OpMod BinOpKind = "%"
	OpPow BinOpKind = "**"
	OpEq  BinOpKind = "=="
	OpNe  BinOpKind = "!="
	OpLt  BinOpKind = "<"
	OpLe  BinOpKind = "<="
	OpGt  BinOpKind = ">"
	OpGe  BinOpKind = ">="
	OpAnd BinOpKind = "and"
	OpOr  BinOpKind = "or"
)

// BinaryOp applies a binary operator.
type BinaryOp struct {
	Position Position
	Op       BinOpKind
	Left     Expression
	Right    Expression
}

// UnOpKind is the unary operator set.
type UnOpKind string

const (
	OpNeg UnOpKind = "-"
	OpPos UnOpKind = "+"
	OpNot UnOpKind = "not"
)

// UnaryOp applies a unary operator.
type UnaryOp struct {
	Position Position
	Op       UnOpKind
	Operand  Expression
}

// Call invokes a distribution or builtin function by name.
type Call struct {
	Position Position
	Name     string
	Args     []Expression
}

// Range is an integer range expression start:step:stop.
type Range struct {
	Position Position
	Start    Expression
	Stop     Expression
	Step     Expression
}

func (e *Literal) Pos() Position     { return e.Position }
func (e *VariableRef) Pos() Position { return e.Position }
func (e *Index) Pos() Position       { return e.Position }
func (e *BinaryOp) Pos() Position    { return e.Position }
func (e *UnaryOp) Pos() Position     { return e.Position }
func (e *Call) Pos() Position        { return e.Position }
func (e *Range) Pos() Position       { return e.Position }

// PosOf returns n's position, or the zero position when n is nil. Optional
// expressions such as Return values and range parts may be absent.
func PosOf(n Node) Position {
	if n == nil {
		return Position{}
	}
	return n.Pos()
}

func (*Literal) exprNode()     {}
func (*VariableRef) exprNode() {}
func (*Index) exprNode()       {}
func (*BinaryOp) exprNode()    {}
func (*UnaryOp) exprNode()     {}
func (*Call) exprNode()        {}
func (*Range) exprNode()       {}
