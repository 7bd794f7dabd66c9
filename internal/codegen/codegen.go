// Package codegen lowers IR models into source text for the registered
// target frameworks.
//
// Generators are stateless across calls: EmitProgram builds a fresh emitter
// per translation, so translations of one model by different backends may
// run concurrently. A fatal lowering failure surfaces as *ir.CodegenError
// carrying the backend name and source position; it aborts only the one
// translation in progress.
package codegen

import (
	"fmt"
	"strings"

	"github.com/pythia-ppl/pythia/internal/ir"
)

// Generator lowers one IR model into target source text.
type Generator interface {
	// Descriptor returns the lowering contract this generator implements.
	Descriptor() ir.BackendDescriptor
	// EmitProgram renders the model. The model is never mutated.
	EmitProgram(m *ir.Model) (string, error)
}

// New returns the generator registered under name.
func New(name string) (Generator, error) {
	switch name {
	case "turing":
		return turingGenerator{}, nil
	case "gen":
		return genGenerator{}, nil
	case "pyro":
		return pyroGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (have %s)",
			name, strings.Join(ir.BackendNames(), ", "))
	}
}

// Translate is the one-shot form of New + EmitProgram.
func Translate(m *ir.Model, backend string) (string, error) {
	g, err := New(backend)
	if err != nil {
		return "", err
	}
	return g.EmitProgram(m)
}

// distUses lists every expression position the lowered distribution will
// emit. Lowerings that render an argument twice, such as the labeled
// categorical helpers, list it twice so the hoisting pass sees the
// duplication.
func distUses(d *ir.Dist) []ir.Expr {
	uses := make([]ir.Expr, 0, len(d.Args)+3)
	uses = append(uses, d.Args...)
	if d.Desc.Name == "Categorical" && len(d.Args) > 0 {
		uses = append(uses, d.Args[0])
	}
	if d.Trunc != nil {
		if d.Trunc.Lo != nil {
			uses = append(uses, d.Trunc.Lo)
		}
		if d.Trunc.Hi != nil {
			uses = append(uses, d.Trunc.Hi)
		}
	}
	return uses
}

// addrUses lists the index expressions an address template will emit.
func addrUses(a ir.Address) []ir.Expr {
	return append([]ir.Expr(nil), a.Indices...)
}
