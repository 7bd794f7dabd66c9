package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pythia-ppl/pythia/internal/ast"
)

// ExprString renders an expression in a fixed, backend-neutral notation.
// Backends key hoisted temporaries on it (structural equality by string),
// and error messages use it to name offending sub-expressions.
func ExprString(e Expr) string {
	switch x := e.(type) {
	case nil:
		return ""
	case *Lit:
		return litString(x)
	case *VarRef:
		return x.Name
	case *IndexExpr:
		parts := make([]string, len(x.Indices))
		for i, idx := range x.Indices {
			parts[i] = ExprString(idx)
		}
		return fmt.Sprintf("%s[%s]", ExprString(x.Base), strings.Join(parts, ", "))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", ExprString(x.Left), x.Op, ExprString(x.Right))
	case *UnaryExpr:
		return fmt.Sprintf("(%s %s)", x.Op, ExprString(x.Operand))
	case *CallExpr:
		parts := make([]string, len(x.Args))
		for i, arg := range x.Args {
			parts[i] = ExprString(arg)
		}
		return fmt.Sprintf("%s(%s)", x.Name, strings.Join(parts, ", "))
	case *RangeExpr:
		return fmt.Sprintf("%s:%s:%s", ExprString(x.Start), ExprString(x.Step), ExprString(x.Stop))
	default:
		return fmt.Sprintf("%T", e)
	}
}

func litString(l *Lit) string {
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
