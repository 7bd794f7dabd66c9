package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/pythia-ppl/pythia/internal/ast"
)

// CompileModel parses a CUE value into an AST program.
//
// The CUE value should be the model struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`model: coin: { ... }`)
//	prog, err := CompileModel(v.LookupPath(cue.ParsePath("model.coin")))
func CompileModel(v cue.Value) (*ast.Program, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	prog := &ast.Program{}

	// Model name comes from the struct label (the path selector); an
	// explicit "name" field wins when present.
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		prog.Name = selectorString(labels[len(labels)-1])
	}
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		prog.Name = name
	}
	if prog.Name == "" {
		return nil, &CompileError{
			Field:   "name",
			Message: "model name is required",
			Pos:     v.Pos(),
		}
	}

	params, err := parseParams(v)
	if err != nil {
		return nil, err
	}
	prog.Params = params

	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if !bodyVal.Exists() {
		return nil, &CompileError{
			Field:   "body",
			Message: "model body is required",
			Pos:     v.Pos(),
		}
	}
	body, err := parseBlock(bodyVal)
	if err != nil {
		return nil, err
	}
	prog.Body = body

	return prog, nil
}

// selectorString renders a path selector without CUE quoting.
func selectorString(sel cue.Selector) string {
	if sel.Type() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

func parseParams(v cue.Value) ([]ast.Param, error) {
	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if !paramsVal.Exists() {
		return nil, nil
	}
	iter, err := paramsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var params []ast.Param
	for iter.Next() {
		item := iter.Value()
		name, err := item.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		params = append(params, ast.Param{Name: name, Position: position(item)})
	}
	return params, nil
}

func parseBlock(v cue.Value) ([]ast.Statement, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var stmts []ast.Statement
	for iter.Next() {
		s, err := parseStatement(iter.Value())
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

// parseStatement decodes one kind-discriminated statement node.
func parseStatement(v cue.Value) (ast.Statement, error) {
	kind, err := nodeKind(v)
	if err != nil {
		return nil, err
	}
	pos := nodePosition(v)

	switch kind {
	case "assign":
		target, err := parseField(v, "target")
		if err != nil {
			return nil, err
		}
		value, err := parseField(v, "value")
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Position: pos, Target: target, Value: value}, nil

	case "sample":
		target, err := parseField(v, "target")
		if err != nil {
			return nil, err
		}
		dist, err := parseDistField(v)
		if err != nil {
			return nil, err
		}
		return &ast.Sample{Position: pos, Target: target, Dist: dist}, nil

	case "observe":
		value, err := parseField(v, "value")
		if err != nil {
			return nil, err
		}
		dist, err := parseDistField(v)
		if err != nil {
			return nil, err
		}
		return &ast.Observe{Position: pos, Value: value, Dist: dist}, nil

	case "if":
		cond, err := parseField(v, "cond")
		if err != nil {
			return nil, err
		}
		then, err := parseBlockField(v, "then", true)
		if err != nil {
			return nil, err
		}
		els, err := parseBlockField(v, "else", false)
		if err != nil {
			return nil, err
		}
		return &ast.If{Position: pos, Cond: cond, Then: then, Else: els}, nil

	case "for":
		varVal := v.LookupPath(cue.ParsePath("var"))
		if !varVal.Exists() {
			return nil, missingField(v, "var")
		}
		loopVar, err := varVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		start, err := parseField(v, "start")
		if err != nil {
			return nil, err
		}
		stop, err := parseField(v, "stop")
		if err != nil {
			return nil, err
		}
		step, err := parseOptionalField(v, "step")
		if err != nil {
			return nil, err
		}
		if step == nil {
			step = &ast.Literal{Position: pos, Kind: ast.IntLit, IntVal: 1}
		}
		body, err := parseBlockField(v, "body", true)
		if err != nil {
			return nil, err
		}
		return &ast.For{Position: pos, Var: loopVar, Start: start, Stop: stop, Step: step, Body: body}, nil

	case "return":
		value, err := parseOptionalField(v, "value")
		if err != nil {
			return nil, err
		}
		return &ast.Return{Position: pos, Value: value}, nil

	case "break":
		return &ast.Break{Position: pos}, nil

	case "continue":
		return &ast.Continue{Position: pos}, nil

	default:
		return nil, &CompileError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown statement kind %q", kind),
			Pos:     v.Pos(),
		}
	}
}

// parseExpression decodes one kind-discriminated expression node.
func parseExpression(v cue.Value) (ast.Expression, error) {
	kind, err := nodeKind(v)
	if err != nil {
		return nil, err
	}
	pos := nodePosition(v)

	switch kind {
	case "int":
		n, err := v.LookupPath(cue.ParsePath("value")).Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.Literal{Position: pos, Kind: ast.IntLit, IntVal: n}, nil

	case "float":
		f, err := v.LookupPath(cue.ParsePath("value")).Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.Literal{Position: pos, Kind: ast.FloatLit, FloatVal: f}, nil

	case "bool":
		b, err := v.LookupPath(cue.ParsePath("value")).Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.Literal{Position: pos, Kind: ast.BoolLit, BoolVal: b}, nil

	case "string":
		s, err := v.LookupPath(cue.ParsePath("value")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.Literal{Position: pos, Kind: ast.StringLit, StrVal: s}, nil

	case "var":
		name, err := v.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &ast.VariableRef{Position: pos, Name: name}, nil

	case "index":
		base, err := parseField(v, "base")
		if err != nil {
			return nil, err
		}
		indices, err := parseExprList(v, "indices")
		if err != nil {
			return nil, err
		}
		if len(indices) == 0 {
			return nil, &CompileError{
				Field:   "indices",
				Message: "index node requires at least one index",
				Pos:     v.Pos(),
			}
		}
		return &ast.Index{Position: pos, Base: base, Indices: indices}, nil

	case "binary":
		op, err := v.LookupPath(cue.ParsePath("op")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		left, err := parseField(v, "left")
		if err != nil {
			return nil, err
		}
		right, err := parseField(v, "right")
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Position: pos, Op: ast.BinOpKind(op), Left: left, Right: right}, nil

	case "unary":
		op, err := v.LookupPath(cue.ParsePath("op")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		operand, err := parseField(v, "operand")
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Position: pos, Op: ast.UnOpKind(op), Operand: operand}, nil

	case "call":
		return parseCall(v)

	case "range":
		start, err := parseOptionalField(v, "start")
		if err != nil {
			return nil, err
		}
		stop, err := parseOptionalField(v, "stop")
		if err != nil {
			return nil, err
		}
		step, err := parseOptionalField(v, "step")
		if err != nil {
			return nil, err
		}
		return &ast.Range{Position: pos, Start: start, Stop: stop, Step: step}, nil

	default:
		return nil, &CompileError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown expression kind %q", kind),
			Pos:     v.Pos(),
		}
	}
}

func parseCall(v cue.Value) (*ast.Call, error) {
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	args, err := parseExprList(v, "args")
	if err != nil {
		return nil, err
	}
	return &ast.Call{Position: nodePosition(v), Name: name, Args: args}, nil
}

// parseDistField decodes the "dist" field, which must be a call node.
func parseDistField(v cue.Value) (*ast.Call, error) {
	distVal := v.LookupPath(cue.ParsePath("dist"))
	if !distVal.Exists() {
		return nil, missingField(v, "dist")
	}
	kind, err := nodeKind(distVal)
	if err != nil {
		return nil, err
	}
	if kind != "call" {
		return nil, &CompileError{
			Field:   "dist",
			Message: fmt.Sprintf("dist must be a call node, got %q", kind),
			Pos:     distVal.Pos(),
		}
	}
	return parseCall(distVal)
}

func parseField(v cue.Value, field string) (ast.Expression, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, missingField(v, field)
	}
	return parseExpression(fv)
}

func parseOptionalField(v cue.Value, field string) (ast.Expression, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	return parseExpression(fv)
}

func parseExprList(v cue.Value, field string) ([]ast.Expression, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []ast.Expression
	for iter.Next() {
		e, err := parseExpression(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func parseBlockField(v cue.Value, field string, required bool) ([]ast.Statement, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		if required {
			return nil, missingField(v, field)
		}
		return nil, nil
	}
	return parseBlock(fv)
}

func nodeKind(v cue.Value) (string, error) {
	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return "", missingField(v, "kind")
	}
	kind, err := kindVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return kind, nil
}

// nodePosition reads the frontend-reported source position of the construct
// ("line"/"col" fields, 1-based). Absent fields leave the zero position.
func nodePosition(v cue.Value) ast.Position {
	var pos ast.Position
	if lineVal := v.LookupPath(cue.ParsePath("line")); lineVal.Exists() {
		if n, err := lineVal.Int64(); err == nil {
			pos.Line = int(n)
		}
	}
	if colVal := v.LookupPath(cue.ParsePath("col")); colVal.Exists() {
		if n, err := colVal.Int64(); err == nil {
			pos.Column = int(n)
		}
	}
	return pos
}

// position is nodePosition with the CUE document position as fallback, for
// nodes the frontend did not annotate.
func position(v cue.Value) ast.Position {
	pos := nodePosition(v)
	if pos.IsValid() {
		return pos
	}
	if p := v.Pos(); p.IsValid() {
		return ast.Position{Line: p.Line(), Column: p.Column()}
	}
	return pos
}

func missingField(v cue.Value, field string) error {
	return &CompileError{
		Field:   field,
		Message: field + " is required",
		Pos:     v.Pos(),
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
