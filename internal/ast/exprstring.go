package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ExprString renders an expression in a fixed, source-like notation. The
// linter compares bound expressions structurally by comparing these
// renderings, and diagnostics quote them.
func ExprString(e Expression) string {
	switch x := e.(type) {
	case nil:
		return ""
	case *Literal:
		switch x.Kind {
		case FloatLit:
			return strconv.FormatFloat(x.FloatVal, 'g', -1, 64)
		case BoolLit:
			return strconv.FormatBool(x.BoolVal)
		case StringLit:
			return strconv.Quote(x.StrVal)
		default:
			return strconv.FormatInt(x.IntVal, 10)
		}
	case *VariableRef:
		return x.Name
	case *Index:
		parts := make([]string, len(x.Indices))
		for i, idx := range x.Indices {
			parts[i] = ExprString(idx)
		}
		return fmt.Sprintf("%s[%s]", ExprString(x.Base), strings.Join(parts, ", "))
	case *BinaryOp:
		return fmt.Sprintf("(%s %s %s)", ExprString(x.Left), x.Op, ExprString(x.Right))
	case *UnaryOp:
		return fmt.Sprintf("(%s %s)", x.Op, ExprString(x.Operand))
	case *Call:
		parts := make([]string, len(x.Args))
		for i, arg := range x.Args {
			parts[i] = ExprString(arg)
		}
		return fmt.Sprintf("%s(%s)", x.Name, strings.Join(parts, ", "))
	case *Range:
		return fmt.Sprintf("%s:%s:%s", ExprString(x.Start), ExprString(x.Step), ExprString(x.Stop))
	default:
		return fmt.Sprintf("%T", e)
	}
}
