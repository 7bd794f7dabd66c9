package compiler_test

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/compiler"
)

func compileModel(t *testing.T, doc, path string) (*ast.Program, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(doc)
	require.NoError(t, v.Err())
	return compiler.CompileModel(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileModel(t *testing.T) {
	doc := `
model: coin: {
	params: ["data", "n"]
	body: [
		{
			kind: "sample"
			line: 2
			col:  5
			target: {kind: "var", name: "p"}
			dist: {
				kind: "call"
				name: "Uniform"
				args: [
					{kind: "float", value: 0.0},
					{kind: "float", value: 1.0},
				]
			}
		},
		{
			kind:  "for"
			line:  3
			var:   "i"
			start: {kind: "int", value: 0}
			stop: {kind: "var", name: "n"}
			body: [
				{
					kind: "observe"
					line: 4
					value: {kind: "index", base: {kind: "var", name: "data"}, indices: [{kind: "var", name: "i"}]}
					dist: {kind: "call", name: "Bernoulli", args: [{kind: "var", name: "p"}]}
				},
			]
		},
	]
}
`
	prog, err := compileModel(t, doc, "model.coin")
	require.NoError(t, err)

	assert.Equal(t, "coin", prog.Name)
	require.Len(t, prog.Params, 2)
	assert.Equal(t, "data", prog.Params[0].Name)

	require.Len(t, prog.Body, 2)

	sample, ok := prog.Body[0].(*ast.Sample)
	require.True(t, ok)
	assert.Equal(t, ast.Position{Line: 2, Column: 5}, sample.Position)
	assert.Equal(t, "p", sample.Target.(*ast.VariableRef).Name)
	assert.Equal(t, "Uniform", sample.Dist.Name)
	require.Len(t, sample.Dist.Args, 2)
	lit := sample.Dist.Args[1].(*ast.Literal)
	assert.Equal(t, ast.FloatLit, lit.Kind)
	assert.Equal(t, 1.0, lit.FloatVal)

	loop, ok := prog.Body[1].(*ast.For)
	require.True(t, ok)
	assert.Equal(t, "i", loop.Var)
	// Absent step defaults to a unit literal.
	step, ok := loop.Step.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, ast.IntLit, step.Kind)
	assert.Equal(t, int64(1), step.IntVal)

	obs, ok := loop.Body[0].(*ast.Observe)
	require.True(t, ok)
	assert.Equal(t, "data[i]", ast.ExprString(obs.Value))
}

func TestCompileModelNameField(t *testing.T) {
	doc := `
model: labeled: {
	name: "actual"
	body: [{kind: "return"}]
}
`
	prog, err := compileModel(t, doc, "model.labeled")
	require.NoError(t, err)
	assert.Equal(t, "actual", prog.Name)
}

func TestCompileModelStatements(t *testing.T) {
	doc := `
model: kinds: {
	body: [
		{kind: "assign", target: {kind: "var", name: "x"}, value: {kind: "int", value: 1}},
		{
			kind: "if"
			cond: {kind: "bool", value: true}
			then: [{kind: "break"}]
			else: [{kind: "continue"}]
		},
		{kind: "return", value: {kind: "var", name: "x"}},
	]
}
`
	prog, err := compileModel(t, doc, "model.kinds")
	require.NoError(t, err)
	require.Len(t, prog.Body, 3)

	_, ok := prog.Body[0].(*ast.Assign)
	assert.True(t, ok)

	cond, ok := prog.Body[1].(*ast.If)
	require.True(t, ok)
	_, ok = cond.Then[0].(*ast.Break)
	assert.True(t, ok)
	_, ok = cond.Else[0].(*ast.Continue)
	assert.True(t, ok)

	ret, ok := prog.Body[2].(*ast.Return)
	require.True(t, ok)
	assert.Equal(t, "x", ast.ExprString(ret.Value))
}

func TestCompileModelExpressions(t *testing.T) {
	doc := `
model: exprs: {
	body: [
		{
			kind: "assign"
			target: {kind: "var", name: "x"}
			value: {
				kind: "binary"
				op:   "*"
				left: {
					kind: "unary"
					op:   "-"
					operand: {kind: "var", name: "a"}
				}
				right: {
					kind: "call"
					name: "len"
					args: [{
						kind: "index"
						base: {kind: "var", name: "xs"}
						indices: [{kind: "range", start: {kind: "int", value: 0}, stop: {kind: "var", name: "n"}}]
					}]
				}
			}
		},
	]
}
`
	prog, err := compileModel(t, doc, "model.exprs")
	require.NoError(t, err)

	assign := prog.Body[0].(*ast.Assign)
	assert.Equal(t, "((- a) * len(xs[0::n]))", ast.ExprString(assign.Value))
}

func TestCompileModelErrors(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "missing body",
			doc:   `model: m: {params: ["n"]}`,
			field: "body",
		},
		{
			name:  "missing statement kind",
			doc:   `model: m: {body: [{target: {kind: "var", name: "x"}}]}`,
			field: "kind",
		},
		{
			name:  "unknown statement kind",
			doc:   `model: m: {body: [{kind: "loop"}]}`,
			field: "kind",
		},
		{
			name:  "sample without dist",
			doc:   `model: m: {body: [{kind: "sample", target: {kind: "var", name: "x"}}]}`,
			field: "dist",
		},
		{
			name:  "dist not a call",
			doc:   `model: m: {body: [{kind: "sample", target: {kind: "var", name: "x"}, dist: {kind: "var", name: "d"}}]}`,
			field: "dist",
		},
		{
			name:  "index without indices",
			doc:   `model: m: {body: [{kind: "assign", target: {kind: "var", name: "x"}, value: {kind: "index", base: {kind: "var", name: "xs"}}}]}`,
			field: "indices",
		},
		{
			name:  "unknown expression kind",
			doc:   `model: m: {body: [{kind: "assign", target: {kind: "var", name: "x"}, value: {kind: "tuple"}}]}`,
			field: "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileModel(t, tt.doc, "model.m")
			require.Error(t, err)

			var cerr *compiler.CompileError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestCompileModelMissingName(t *testing.T) {
	// A value with no struct label and no name field cannot be named.
	ctx := cuecontext.New()
	v := ctx.CompileString(`{body: [{kind: "return"}]}`)
	require.NoError(t, v.Err())

	_, err := compiler.CompileModel(v)
	require.Error(t, err)

	var cerr *compiler.CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "name", cerr.Field)
}
