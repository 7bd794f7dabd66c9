package linter

import (
	"fmt"

	"github.com/pythia-ppl/pythia/internal/ast"
)

// Severity of a diagnostic. Only Error-severity entries refuse translation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Lint diagnostic codes.
const (
	// Scope errors (L100-L199)
	ErrUndefinedReference = "L101" // reference does not resolve in any enclosing scope

	// Semantic errors (L200-L299)
	ErrRedeclaration         = "L201" // conflicting shape or role across declarations
	ErrDistributionArity     = "L202" // wrong argument count for a distribution
	ErrUnknownDistribution   = "L203" // distribution name not in the canonical catalog
	ErrIndexOutOfRange       = "L204" // literal index provably outside [0, length)
	ErrNonIntegerIndex       = "L205" // float literal used as an index
	ErrMisplacedDistribution = "L206" // distribution call outside sample/observe
	ErrObservedImmutable     = "L207" // assignment to a name after it was observed
	WarnIndexBounds          = "L210" // loop bounds do not match the indexed length
	WarnArgumentShape        = "L211" // vector-shaped argument for a scalar parameter

	// Portability (L300-L399)
	ErrUnsupportedDistribution = "L301" // no equivalent on the requested backend
	WarnRewriteRequired        = "L302" // equivalent rewrite exists but has caveats
)

// Diagnostic is one lint finding. Backend is set only on portability
// findings, which are scoped to a single requested target.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
	Backend  string   `json:"backend,omitempty"`
}

func (d Diagnostic) String() string {
	tag := ""
	if d.Backend != "" {
		tag = fmt.Sprintf(" [%s]", d.Backend)
	}
	return fmt.Sprintf("%4d:%d: %s: [%s]%s %s", d.Line, d.Column, d.Severity, d.Code, tag, d.Message)
}

func errorAt(code string, pos ast.Position, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Line:     pos.Line,
		Column:   pos.Column,
		Message:  fmt.Sprintf(format, args...),
	}
}

func warningAt(code string, pos ast.Position, format string, args ...any) Diagnostic {
	d := errorAt(code, pos, format, args...)
	d.Severity = SeverityWarning
	return d
}

// HasErrors reports whether any diagnostic is error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
