package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/ir"
	"github.com/pythia-ppl/pythia/internal/resolver"
	"github.com/pythia-ppl/pythia/internal/testutil"
)

func build(t *testing.T, prog *ast.Program) *ir.Model {
	t.Helper()
	symbols, unresolved := resolver.Resolve(prog)
	require.Empty(t, unresolved)
	m, err := ir.Build(prog, symbols)
	require.NoError(t, err)
	return m
}

func normal01() *ast.Call {
	return testutil.CallExpr("Normal", testutil.Int(0), testutil.Int(1))
}

func TestBuildRoles(t *testing.T) {
	prog := testutil.Model("m", []string{"data", "n"},
		testutil.Assign(2, testutil.Ref("s"), testutil.CallExpr("vector", testutil.Ref("n"))),
		testutil.Loop(3, "i", testutil.Int(0), testutil.Ref("n"),
			testutil.Sample(4, testutil.Idx("s", testutil.Ref("i")),
				testutil.CallExpr("Categorical", testutil.Ref("data"))),
			testutil.Observe(5, testutil.Idx("data", testutil.Ref("i")), normal01()),
		),
	)
	m := build(t, prog)

	// A container declared deterministically and filled by element samples
	// is latent; an observed subject is observed regardless of sampling.
	assert.Equal(t, resolver.RoleLatent, m.Roles["s"])
	assert.Equal(t, resolver.RoleObserved, m.Roles["data"])
	assert.Equal(t, resolver.RoleDeterministic, m.Roles["n"])
	assert.Equal(t, resolver.RoleDeterministic, m.Roles["i"])
}

func TestBuildSampleStmt(t *testing.T) {
	prog := testutil.Model("m", nil,
		testutil.Sample(2, testutil.Ref("x"), normal01()),
	)
	m := build(t, prog)

	require.Len(t, m.Body, 1)
	s, ok := m.Body[0].(*ir.SampleStmt)
	require.True(t, ok)
	assert.Equal(t, resolver.RoleLatent, s.Role)
	assert.Equal(t, "x", s.Addr.Base)
	assert.Empty(t, s.Addr.Indices)
	assert.Equal(t, "Normal", s.Dist.Desc.Name)
	assert.Nil(t, s.Dist.Trunc)
}

func TestBuildIndexedAddress(t *testing.T) {
	prog := testutil.Model("m", []string{"n"},
		testutil.Loop(2, "i", testutil.Int(0), testutil.Ref("n"),
			testutil.Sample(3, testutil.Idx("x", testutil.Ref("i")), normal01()),
		),
	)
	m := build(t, prog)

	loop, ok := m.Body[0].(*ir.ForStmt)
	require.True(t, ok)
	s, ok := loop.Body[0].(*ir.SampleStmt)
	require.True(t, ok)
	assert.Equal(t, "x", s.Addr.Base)
	require.Len(t, s.Addr.Indices, 1)
	assert.Equal(t, "i", ir.ExprString(s.Addr.Indices[0]))
}

func TestBuildLoopScopedAddresses(t *testing.T) {
	// Targets that do not mention the loop index get it appended to the
	// address so addresses stay pairwise distinct across iterations.
	value := &ast.BinaryOp{Op: ast.OpAdd, Left: testutil.Ref("x"), Right: testutil.Int(1)}
	prog := testutil.Model("m", []string{"n"},
		testutil.Loop(2, "i", testutil.Int(0), testutil.Ref("n"),
			testutil.Sample(3, testutil.Ref("x"), normal01()),
			testutil.Observe(4, value, normal01()),
		),
	)
	m := build(t, prog)

	loop := m.Body[0].(*ir.ForStmt)

	s := loop.Body[0].(*ir.SampleStmt)
	assert.Equal(t, "x", s.Addr.Base)
	require.Len(t, s.Addr.Indices, 1)
	assert.Equal(t, "i", ir.ExprString(s.Addr.Indices[0]))

	o := loop.Body[1].(*ir.ObserveStmt)
	assert.Equal(t, "observe_4_1", o.Addr.Base)
	require.Len(t, o.Addr.Indices, 1)
	assert.Equal(t, "i", ir.ExprString(o.Addr.Indices[0]))
}

func TestBuildNestedLoopAddresses(t *testing.T) {
	prog := testutil.Model("m", []string{"n"},
		testutil.Loop(2, "i", testutil.Int(0), testutil.Ref("n"),
			testutil.Loop(3, "j", testutil.Int(0), testutil.Ref("n"),
				testutil.Sample(4, testutil.Idx("x", testutil.Ref("j")), normal01()),
			),
		),
	)
	m := build(t, prog)

	outer := m.Body[0].(*ir.ForStmt)
	inner := outer.Body[0].(*ir.ForStmt)
	s := inner.Body[0].(*ir.SampleStmt)

	// The explicit subscript covers j; the uncovered outer index follows.
	require.Len(t, s.Addr.Indices, 2)
	assert.Equal(t, "j", ir.ExprString(s.Addr.Indices[0]))
	assert.Equal(t, "i", ir.ExprString(s.Addr.Indices[1]))
}

func TestBuildFallbackAddress(t *testing.T) {
	value := &ast.BinaryOp{Op: ast.OpAdd, Left: testutil.Ref("x"), Right: testutil.Int(1)}
	prog := testutil.Model("m", []string{"x"},
		testutil.Observe(4, value, normal01()),
	)
	m := build(t, prog)

	o, ok := m.Body[0].(*ir.ObserveStmt)
	require.True(t, ok)
	assert.Equal(t, "observe_4_1", o.Addr.Base)
}

func TestBuildTruncationTags(t *testing.T) {
	// s is filled from a discrete distribution, so indices fed by it carry
	// the truncation tag; literal and loop-variable indices do not.
	prog := testutil.Model("m", []string{"trans", "mu", "n"},
		testutil.Assign(2, testutil.Ref("s"), testutil.CallExpr("vector", testutil.Ref("n"))),
		testutil.Loop(3, "t", testutil.Int(0), testutil.Ref("n"),
			testutil.Sample(4, testutil.Idx("s", testutil.Ref("t")),
				testutil.CallExpr("Categorical",
					testutil.Idx("trans", testutil.Idx("s", testutil.Bin(ast.OpSub, testutil.Ref("t"), testutil.Int(1))), testutil.Slice(nil, nil, nil)))),
			testutil.Assign(5, testutil.Ref("level"),
				testutil.Idx("mu", testutil.Idx("s", testutil.Ref("t")))),
		),
	)
	m := build(t, prog)

	loop := m.Body[1].(*ir.ForStmt)

	sample := loop.Body[0].(*ir.SampleStmt)
	probs := sample.Dist.Args[0].(*ir.IndexExpr)
	require.Len(t, probs.Trunc, 2)
	assert.True(t, probs.Trunc[0], "index fed by a discrete draw needs the cast")
	assert.False(t, probs.Trunc[1], "slice index needs no cast")
	assert.True(t, probs.RequiresTrunc())
	assert.True(t, probs.NeedsOffset)

	inner := probs.Indices[0].(*ir.IndexExpr)
	require.Len(t, inner.Trunc, 1)
	assert.False(t, inner.Trunc[0], "loop arithmetic needs no cast")

	assign := loop.Body[1].(*ir.AssignStmt)
	mu := assign.Value.(*ir.IndexExpr)
	require.Len(t, mu.Trunc, 1)
	assert.True(t, mu.Trunc[0])

	target := sample.Target.(*ir.IndexExpr)
	assert.False(t, target.RequiresTrunc(), "the write target index is the loop variable")
}

func TestBuildTruncatedDist(t *testing.T) {
	prog := testutil.Model("m", nil,
		testutil.Sample(2, testutil.Ref("x"),
			testutil.CallExpr("Truncated", normal01(), testutil.Int(0), testutil.Int(5))),
	)
	m := build(t, prog)

	s := m.Body[0].(*ir.SampleStmt)
	assert.Equal(t, "Normal", s.Dist.Desc.Name)
	require.NotNil(t, s.Dist.Trunc)
	assert.Equal(t, "0", ir.ExprString(s.Dist.Trunc.Lo))
	assert.Equal(t, "5", ir.ExprString(s.Dist.Trunc.Hi))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name      string
		prog      *ast.Program
		construct string
	}{
		{
			name: "unknown distribution",
			prog: testutil.Model("m", nil,
				testutil.Sample(2, testutil.Ref("x"), testutil.CallExpr("Gaussion", testutil.Int(0)))),
			construct: "Gaussion",
		},
		{
			name: "distribution call in expression position",
			prog: testutil.Model("m", nil,
				testutil.Assign(2, testutil.Ref("x"), normal01())),
			construct: "Normal",
		},
		{
			name: "truncated without wrapped distribution",
			prog: testutil.Model("m", nil,
				testutil.Sample(2, testutil.Ref("x"), testutil.CallExpr("Truncated"))),
			construct: "Truncated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbols, _ := resolver.Resolve(tt.prog)
			_, err := ir.Build(tt.prog, symbols)
			require.Error(t, err)

			var cerr *ir.CodegenError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.construct, cerr.Construct)
			assert.Empty(t, cerr.Backend)
		})
	}
}

func TestNondeterministic(t *testing.T) {
	prog := testutil.Model("m", []string{"n"},
		testutil.Sample(2, testutil.Ref("z"), normal01()),
	)
	m := build(t, prog)

	assert.True(t, m.Nondeterministic(&ir.VarRef{Name: "z"}))
	assert.False(t, m.Nondeterministic(&ir.VarRef{Name: "n"}))
	assert.False(t, m.Nondeterministic(&ir.Lit{Kind: ast.IntLit, IntVal: 1}))

	// Any expression containing a latent reference is non-deterministic.
	expr := &ir.CallExpr{Name: "softmax", Args: []ir.Expr{&ir.VarRef{Name: "z"}}}
	assert.True(t, m.Nondeterministic(expr))
}

func TestBackendRegistry(t *testing.T) {
	assert.Equal(t, []string{"gen", "pyro", "turing"}, ir.BackendNames())

	turing, ok := ir.LookupBackend("turing")
	require.True(t, ok)
	assert.Equal(t, 1, turing.IndexBase)
	assert.Equal(t, ir.AddressingImplicit, turing.Addressing)
	assert.Equal(t, ir.SupportNative, turing.TruncationSupport)

	gen, ok := ir.LookupBackend("gen")
	require.True(t, ok)
	assert.Equal(t, ir.AddressingExplicit, gen.Addressing)
	assert.Equal(t, ir.SupportNone, gen.TruncationSupport)
	assert.Equal(t, ir.SupportNone, gen.DistributionSupport("StudentT"))
	assert.Equal(t, ir.SupportNone, gen.DistributionSupport(ir.TruncatedName))
	assert.Equal(t, ir.SupportWarn, gen.DistributionSupport("Categorical"))

	pyro, ok := ir.LookupBackend("pyro")
	require.True(t, ok)
	assert.Equal(t, 0, pyro.IndexBase)
	assert.Equal(t, ir.SupportNative, pyro.DistributionSupport("HalfNormal"))
	assert.Equal(t, ir.SupportNative, pyro.DistributionSupport("HalfCauchy"))
	assert.Equal(t, ir.SupportNone, pyro.DistributionSupport("DiscreteUniform"))
	assert.Equal(t, ir.SupportNone, pyro.DistributionSupport("NotInCatalog"))

	_, ok = ir.LookupBackend("stan")
	assert.False(t, ok)
}

func TestCatalog(t *testing.T) {
	normal, ok := ir.LookupDistribution("Normal")
	require.True(t, ok)
	assert.Equal(t, 2, normal.Arity())
	assert.False(t, normal.Discrete)

	cat, ok := ir.LookupDistribution("Categorical")
	require.True(t, ok)
	assert.True(t, cat.Discrete)

	dir, ok := ir.LookupDistribution("Dirichlet")
	require.True(t, ok)
	assert.True(t, dir.VectorValued)

	assert.True(t, ir.IsDistribution(ir.TruncatedName))
	assert.False(t, ir.IsDistribution("vector"))
}

func TestCodegenErrorFormat(t *testing.T) {
	err := &ir.CodegenError{
		Backend:   "gen",
		Construct: "Truncated",
		Position:  ast.Position{Line: 7, Column: 2},
		Message:   "no truncated sampling primitive",
	}
	assert.Equal(t, "7:2: gen: Truncated: no truncated sampling primitive", err.Error())

	err = &ir.CodegenError{Construct: "Gaussion", Message: "unknown distribution"}
	assert.Equal(t, "Gaussion: unknown distribution", err.Error())
}
