package ir

import (
	"fmt"

	"github.com/pythia-ppl/pythia/internal/ast"
)

// CodegenError is a fatal lowering failure: an unknown distribution or a
// construct the requested backend cannot express. It aborts the one
// translation in progress; sibling backend translations and the IR itself
// are unaffected.
type CodegenError struct {
	// Backend is the target that failed, empty when the failure happened
	// during IR construction.
	Backend   string
	Construct string
	Position  ast.Position
	Message   string
}

func (e *CodegenError) Error() string {
	where := ""
	if e.Position.IsValid() {
		where = fmt.Sprintf("%d:%d: ", e.Position.Line, e.Position.Column)
	}
	if e.Backend != "" {
		return fmt.Sprintf("%s%s: %s: %s", where, e.Backend, e.Construct, e.Message)
	}
	return fmt.Sprintf("%s%s: %s", where, e.Construct, e.Message)
}
