package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/testutil"
)

func TestExprString(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expression
		want string
	}{
		{"nil", nil, ""},
		{"int", testutil.Int(42), "42"},
		{"negative int", testutil.Int(-3), "-3"},
		{"float", testutil.Float(0.5), "0.5"},
		{"bool", testutil.Bool(true), "true"},
		{"string", testutil.Str("a"), `"a"`},
		{"var", testutil.Ref("x"), "x"},
		{"index", testutil.Idx("x", testutil.Ref("i")), "x[i]"},
		{"matrix index", testutil.Idx("m", testutil.Ref("i"), testutil.Ref("j")), "m[i, j]"},
		{"binary", testutil.Bin(ast.OpSub, testutil.Ref("t"), testutil.Int(1)), "(t - 1)"},
		{
			"nested binary",
			testutil.Bin(ast.OpMul, testutil.Bin(ast.OpAdd, testutil.Ref("a"), testutil.Ref("b")), testutil.Int(2)),
			"((a + b) * 2)",
		},
		{"unary", testutil.Un(ast.OpNot, testutil.Ref("ok")), "(not ok)"},
		{"call", testutil.CallExpr("len", testutil.Ref("xs")), "len(xs)"},
		{"range", testutil.Slice(testutil.Int(0), testutil.Ref("n"), testutil.Int(2)), "0:2:n"},
		{"bare range", testutil.Slice(nil, nil, nil), "::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ast.ExprString(tt.expr))
		})
	}
}

func TestExprStringIsStructural(t *testing.T) {
	// Structurally equal expressions built separately must render equal;
	// hoisting keys on this property.
	a := testutil.Idx("trans", testutil.Idx("s", testutil.Bin(ast.OpSub, testutil.Ref("t"), testutil.Int(1))), testutil.Slice(nil, nil, nil))
	b := testutil.Idx("trans", testutil.Idx("s", testutil.Bin(ast.OpSub, testutil.Ref("t"), testutil.Int(1))), testutil.Slice(nil, nil, nil))
	assert.Equal(t, ast.ExprString(a), ast.ExprString(b))

	c := testutil.Idx("trans", testutil.Idx("s", testutil.Ref("t")), testutil.Slice(nil, nil, nil))
	assert.NotEqual(t, ast.ExprString(a), ast.ExprString(c))
}
