package harness

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/codegen"
	"github.com/pythia-ppl/pythia/internal/compiler"
	"github.com/pythia-ppl/pythia/internal/ir"
	"github.com/pythia-ppl/pythia/internal/linter"
)

// Result is the outcome of running one scenario.
type Result struct {
	Scenario string

	// Diagnostics holds the union of lint findings across the requested
	// backends: the backend-independent battery once, plus each backend's
	// portability findings.
	Diagnostics []linter.Diagnostic

	// Refused reports whether translation was refused for error-severity
	// findings.
	Refused bool

	// Emitted maps backend name to emitted source; empty when refused or
	// when the backend's lowering failed.
	Emitted map[string]string

	// LoweringErrors maps backend name to its fatal lowering failure, for
	// scenarios that exercise CodegenError paths.
	LoweringErrors map[string]error
}

// Run executes one scenario: decode the fixture, lint once per backend,
// translate for every backend unless lint errors refuse it.
func Run(scenario *Scenario) (*Result, error) {
	prog, err := LoadModelFixture(scenario.ModelPath())
	if err != nil {
		return nil, err
	}

	result := &Result{
		Scenario:       scenario.Name,
		Emitted:        map[string]string{},
		LoweringErrors: map[string]error{},
	}

	// The backend-independent battery reports once; portability findings
	// accumulate per backend.
	base := linter.Lint(prog, "")
	result.Diagnostics = append(result.Diagnostics, base.Diagnostics...)
	for _, backend := range scenario.Backends {
		res := linter.Lint(prog, backend)
		for _, d := range res.Diagnostics {
			if d.Backend != "" {
				result.Diagnostics = append(result.Diagnostics, d)
			}
		}
	}

	if linter.HasErrors(result.Diagnostics) {
		result.Refused = true
		return result, nil
	}

	model, err := ir.Build(prog, base.Symbols)
	if err != nil {
		return nil, fmt.Errorf("building IR for %s: %w", scenario.Name, err)
	}

	for _, backend := range scenario.Backends {
		code, err := codegen.Translate(model, backend)
		if err != nil {
			result.LoweringErrors[backend] = err
			continue
		}
		result.Emitted[backend] = code
	}

	return result, nil
}

// LoadModelFixture decodes the first model in a single CUE fixture file.
func LoadModelFixture(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model fixture: %w", err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data)
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compiling model fixture %s: %w", path, err)
	}

	modelsVal := value.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return nil, fmt.Errorf("model fixture %s has no model field", path)
	}
	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterating models in %s: %w", path, err)
	}
	if !iter.Next() {
		return nil, fmt.Errorf("model fixture %s is empty", path)
	}
	return compiler.CompileModel(iter.Value())
}
