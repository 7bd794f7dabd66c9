package codegen

import (
	"fmt"
	"strings"

	"github.com/pythia-ppl/pythia/internal/ir"
	"github.com/pythia-ppl/pythia/internal/resolver"
)

// constraintsVar is the global choice map the aggregator function fills.
const constraintsVar = "__observe_constraints"

const labeledCategoricalDef = "@dist labeled_categorical(labels, probs) = labels[categorical(probs)]"

// genGenerator lowers to Gen.jl: every random choice carries an explicit
// string address, and the emitted unit is a model function plus a
// structurally parallel aggregator function that fills a global constraint
// map with one entry per observation.
type genGenerator struct{}

func (genGenerator) Descriptor() ir.BackendDescriptor {
	d, _ := ir.LookupBackend("gen")
	return d
}

func (genGenerator) EmitProgram(m *ir.Model) (string, error) {
	e := &genEmitter{juliaEmitter: juliaEmitter{newEmitter(m, "gen")}}
	e.preambleOnce("using Gen")

	e.linef("@gen function %s(%s)", m.Name, strings.Join(m.Params, ", "))
	e.indented(func() { e.block(m.Body, e.modelStmt) })
	e.linef("end")

	e.blank()
	e.linef("%s = Gen.choicemap()", constraintsVar)
	e.blank()
	e.linef("function %s_observations(%s)", m.Name, strings.Join(m.Params, ", "))
	e.indented(func() { e.block(m.Body, e.aggregatorStmt) })
	e.linef("end")

	return e.finalize()
}

type genEmitter struct {
	juliaEmitter
}

// modelStmt lowers the random-choice statements of the model function.
// Addresses and distribution arguments share one hoisting pass, so a
// non-deterministic sub-expression used by both is computed once.
func (e *genEmitter) modelStmt(s ir.Stmt) bool {
	switch v := s.(type) {
	case *ir.SampleStmt:
		e.hoistShared(append(addrUses(v.Addr), distUses(v.Dist)...), e.expr)
		e.linef("%s = {%s} ~ %s", e.expr(v.Target), e.address(v.Addr), e.dist(v.Dist))
		return true
	case *ir.ObserveStmt:
		e.hoistShared(append(addrUses(v.Addr), distUses(v.Dist)...), e.expr)
		e.linef("{%s} ~ %s", e.address(v.Addr), e.dist(v.Dist))
		return true
	}
	return false
}

// aggregatorStmt re-walks the model body with identical loop and branch
// structure, keeping deterministic assignments (control flow may depend on
// them), dropping latent samples, and turning every observation into one
// constraint-map assignment under the same address the model emits.
func (e *genEmitter) aggregatorStmt(s ir.Stmt) bool {
	switch v := s.(type) {
	case *ir.SampleStmt:
		if v.Role == resolver.RoleLatent {
			return true
		}
		e.linef("%s[%s] = %s", constraintsVar, e.address(v.Addr), e.expr(v.Target))
		return true
	case *ir.ObserveStmt:
		e.linef("%s[%s] = %s", constraintsVar, e.address(v.Addr), e.expr(v.Value))
		return true
	case *ir.ReturnStmt:
		// The aggregator's only product is the filled constraint map.
		e.linef("return")
		return true
	}
	return false
}

// address renders the address template as a Julia string literal with one
// interpolation per index, e.g. "x[$(i),$(j)]". Index values stay
// zero-based; they are choice identifiers, not array accesses.
func (e *genEmitter) address(a ir.Address) string {
	base := addressBase(a.Base)
	if len(a.Indices) == 0 {
		return fmt.Sprintf("%q", base)
	}
	parts := make([]string, len(a.Indices))
	for i, idx := range a.Indices {
		parts[i] = fmt.Sprintf("$(%s)", e.expr(idx))
	}
	return fmt.Sprintf("\"%s[%s]\"", base, strings.Join(parts, ","))
}

var genDistNames = map[string]string{
	"Normal":          "normal",
	"Cauchy":          "cauchy",
	"Beta":            "beta",
	"Uniform":         "uniform",
	"Exponential":     "exponential",
	"Bernoulli":       "bernoulli",
	"Binomial":        "binom",
	"Poisson":         "poisson",
	"Geometric":       "geometric",
	"DiscreteUniform": "uniform_discrete",
}

func (e *genEmitter) dist(d *ir.Dist) string {
	if d.Trunc != nil {
		e.failf(ir.TruncatedName, d.Position, "Gen.jl has no truncated sampling primitive")
	}

	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = e.expr(a)
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return "0"
	}

	if name, ok := genDistNames[d.Desc.Name]; ok {
		return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
	}
	switch d.Desc.Name {
	case "Gamma":
		// Gen's gamma takes scale, the catalog rate.
		return fmt.Sprintf("gamma(%s, 1 / (%s))", arg(0), arg(1))
	case "Categorical":
		e.preambleOnce(labeledCategoricalDef)
		return fmt.Sprintf("labeled_categorical(0:length(%s) - 1, %s)", arg(0), arg(0))
	case "Dirichlet":
		return fmt.Sprintf("dirichlet(ones(%s) * (%s))", arg(1), arg(0))
	default:
		e.failf(d.Desc.Name, d.Position, "no Gen.jl equivalent")
		return d.Desc.Name
	}
}
