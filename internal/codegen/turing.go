package codegen

import (
	"fmt"
	"strings"

	"github.com/pythia-ppl/pythia/internal/ir"
)

// turingGenerator lowers to Turing.jl: implicit addressing (the bound name
// is the choice identifier), one-based indexing, observe as a tilde over
// the data expression.
type turingGenerator struct{}

func (turingGenerator) Descriptor() ir.BackendDescriptor {
	d, _ := ir.LookupBackend("turing")
	return d
}

func (turingGenerator) EmitProgram(m *ir.Model) (string, error) {
	e := &turingEmitter{juliaEmitter{newEmitter(m, "turing")}}
	e.preambleOnce("using Turing")
	e.linef("@model function %s(%s)", m.Name, strings.Join(m.Params, ", "))
	e.indented(func() { e.block(m.Body, e.choiceStmt) })
	e.linef("end")
	return e.finalize()
}

type turingEmitter struct {
	juliaEmitter
}

func (e *turingEmitter) choiceStmt(s ir.Stmt) bool {
	switch v := s.(type) {
	case *ir.SampleStmt:
		e.hoistShared(distUses(v.Dist), e.expr)
		e.linef("%s ~ %s", e.expr(v.Target), e.dist(v.Dist))
		return true
	case *ir.ObserveStmt:
		e.hoistShared(distUses(v.Dist), e.expr)
		e.linef("%s ~ %s", e.expr(v.Value), e.dist(v.Dist))
		return true
	}
	return false
}

func (e *turingEmitter) dist(d *ir.Dist) string {
	core := e.distCore(d)
	if d.Trunc != nil {
		lo, hi := "-Inf", "Inf"
		if d.Trunc.Lo != nil {
			lo = e.expr(d.Trunc.Lo)
		}
		if d.Trunc.Hi != nil {
			hi = e.expr(d.Trunc.Hi)
		}
		return fmt.Sprintf("truncated(%s, %s, %s)", core, lo, hi)
	}
	return core
}

func (e *turingEmitter) distCore(d *ir.Dist) string {
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

	switch d.Desc.Name {
	case "Normal", "Cauchy", "Beta", "Uniform", "Bernoulli",
		"Binomial", "Poisson", "Geometric", "DiscreteUniform":
		return fmt.Sprintf("%s(%s)", d.Desc.Name, strings.Join(args, ", "))
	case "Gamma":
		// Distributions.jl parameterizes Gamma by scale, the catalog by rate.
		return fmt.Sprintf("Gamma(%s, 1 / (%s))", arg(0), arg(1))
	case "Exponential":
		return fmt.Sprintf("Exponential(1 / (%s))", arg(0))
	case "HalfNormal":
		return fmt.Sprintf("truncated(Normal(0, %s), 0, Inf)", arg(0))
	case "HalfCauchy":
		return fmt.Sprintf("truncated(Cauchy(0, %s), 0, Inf)", arg(0))
	case "StudentT":
		return fmt.Sprintf("TDist(%s)", arg(0))
	case "Categorical":
		// Zero-based support keeps stored draws aligned with source
		// indexing; plain Categorical would shift them by one.
		return fmt.Sprintf("DiscreteNonParametric(0:length(%s) - 1, %s)", arg(0), arg(0))
	case "Dirichlet":
		return fmt.Sprintf("Dirichlet(%s, %s)", arg(1), arg(0))
	default:
		e.failf(d.Desc.Name, d.Position, "no Turing.jl lowering")
		return d.Desc.Name
	}
}
