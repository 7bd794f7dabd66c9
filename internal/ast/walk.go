package ast

// WalkExpr calls fn for e and every expression nested inside it,
// outermost first. Traversal stops early when fn returns false.
func WalkExpr(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch x := e.(type) {
	case *Index:
		WalkExpr(x.Base, fn)
		for _, idx := range x.Indices {
			WalkExpr(idx, fn)
		}
	case *BinaryOp:
		WalkExpr(x.Left, fn)
		WalkExpr(x.Right, fn)
	case *UnaryOp:
		WalkExpr(x.Operand, fn)
	case *Call:
		for _, arg := range x.Args {
			WalkExpr(arg, fn)
		}
	case *Range:
		WalkExpr(x.Start, fn)
		WalkExpr(x.Stop, fn)
		WalkExpr(x.Step, fn)
	}
}

// WalkStmts calls fn for every statement in the block and, recursively,
// in every nested block. fn runs before descending into children.
func WalkStmts(stmts []Statement, fn func(Statement)) {
	for _, s := range stmts {
		fn(s)
		switch x := s.(type) {
		case *If:
			WalkStmts(x.Then, fn)
			WalkStmts(x.Else, fn)
		case *For:
			WalkStmts(x.Body, fn)
		}
	}
}

// Expressions returns every expression appearing directly in the statement
// (not those of nested statements).
func Expressions(s Statement) []Expression {
	switch x := s.(type) {
	case *Assign:
		return []Expression{x.Target, x.Value}
	case *Sample:
		return []Expression{x.Target, x.Dist}
	case *Observe:
		return []Expression{x.Value, x.Dist}
	case *If:
		return []Expression{x.Cond}
	case *For:
		return []Expression{x.Start, x.Stop, x.Step}
	case *Return:
		if x.Value != nil {
			return []Expression{x.Value}
		}
	}
	return nil
}

// BaseName returns the variable name at the root of an assignment or sample
// target (the name itself for a VariableRef, the indexed base for an Index).
// The second result is false when the expression is not a valid target.
func BaseName(target Expression) (string, bool) {
	switch t := target.(type) {
	case *VariableRef:
		return t.Name, true
	case *Index:
		return BaseName(t.Base)
	default:
		return "", false
	}
}
