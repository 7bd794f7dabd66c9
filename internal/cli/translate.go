package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pythia-ppl/pythia/internal/ast"
	"github.com/pythia-ppl/pythia/internal/codegen"
	"github.com/pythia-ppl/pythia/internal/ir"
	"github.com/pythia-ppl/pythia/internal/linter"
	"github.com/pythia-ppl/pythia/internal/store"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Backends  []string
	OutputDir string
	StorePath string
}

// Translation is one (model, backend) emission.
type Translation struct {
	Model       string              `json:"model"`
	Backend     string              `json:"backend"`
	Code        string              `json:"code,omitempty"`
	Diagnostics []linter.Diagnostic `json:"diagnostics,omitempty"`
	Refused     bool                `json:"refused,omitempty"`
	RunID       string              `json:"run_id,omitempty"`
	File        string              `json:"file,omitempty"`
}

// backendFileExt maps backend names to emitted file extensions.
var backendFileExt = map[string]string{
	"turing": ".jl",
	"gen":    ".jl",
	"pyro":   ".py",
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <model-dir>",
		Short: "Translate models to one or more backends",
		Long: `Decode, lint, and translate every model in a directory.

A model with error-severity lint findings is refused for every requested
backend; warnings are reported and translation proceeds. Each backend
translation is independent: a lowering failure on one backend does not
stop the others.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Backends, "backend", "b", []string{"turing"},
		"backend to translate to (repeatable)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "",
		"directory to write emitted sources into")
	cmd.Flags().StringVar(&opts.StorePath, "store", "",
		"sqlite database recording translation runs")

	return cmd
}

func runTranslate(opts *TranslateOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	for _, name := range opts.Backends {
		if _, ok := ir.LookupBackend(name); !ok {
			formatter.Error(ErrCodeBadBackend, fmt.Sprintf("unknown backend %q", name), ir.BackendNames())
			return NewExitError(ExitCommandError, "unknown backend")
		}
	}

	result, loadErrors := LoadModels(dir, LoadModeCollectAll)
	if result == nil && len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}
	if len(loadErrors) > 0 {
		details := make([]string, len(loadErrors))
		for i, e := range loadErrors {
			details[i] = e.Error()
		}
		formatter.Error(ErrCodeCompile, "interchange decode failed", details)
		return NewExitError(ExitCommandError, "interchange decode failed")
	}

	var runStore *store.Store
	if opts.StorePath != "" {
		var err error
		runStore, err = store.Open(opts.StorePath)
		if err != nil {
			formatter.Error(ErrCodeStore, fmt.Sprintf("opening store: %v", err), nil)
			return NewExitError(ExitCommandError, "opening store")
		}
		defer runStore.Close()
	}

	sourceHash := store.SourceHash(result.Source)
	var translations []Translation
	refused := false

	for _, prog := range result.Programs {
		for _, backendName := range opts.Backends {
			formatter.VerboseLog("Translating %s for %s", prog.Name, backendName)
			t := translateOne(prog, backendName)
			t.Model = prog.Name
			t.Backend = backendName
			if t.Refused {
				refused = true
			}

			if opts.OutputDir != "" && t.Code != "" {
				path, err := writeEmitted(opts.OutputDir, prog.Name, backendName, t.Code)
				if err != nil {
					formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", path, err), nil)
					return NewExitError(ExitCommandError, "writing emitted source")
				}
				t.File = path
			}

			if runStore != nil {
				runID, err := recordRun(cmd, runStore, sourceHash, t)
				if err != nil {
					formatter.Error(ErrCodeStore, fmt.Sprintf("recording run: %v", err), nil)
					return NewExitError(ExitCommandError, "recording run")
				}
				t.RunID = runID
			}

			translations = append(translations, t)
		}
	}

	if err := outputTranslations(formatter, translations); err != nil {
		return err
	}
	if refused {
		return NewExitError(ExitFailure, "translation refused")
	}
	return nil
}

// translateOne lints and lowers one model for one backend. Lint errors
// refuse the translation; a lowering failure surfaces as an error-severity
// diagnostic scoped to the backend.
func translateOne(prog *ast.Program, backendName string) Translation {
	res := linter.Lint(prog, backendName)
	t := Translation{Diagnostics: res.Diagnostics}
	if res.HasErrors() {
		t.Refused = true
		return t
	}

	model, err := ir.Build(prog, res.Symbols)
	if err != nil {
		t.Diagnostics = append(t.Diagnostics, codegenDiagnostic(err, backendName))
		t.Refused = true
		return t
	}

	code, err := codegen.Translate(model, backendName)
	if err != nil {
		t.Diagnostics = append(t.Diagnostics, codegenDiagnostic(err, backendName))
		t.Refused = true
		return t
	}
	t.Code = code
	return t
}

// codegenDiagnostic wraps a lowering failure in the diagnostic shape so
// text and JSON output stay uniform across lint and codegen findings.
func codegenDiagnostic(err error, backendName string) linter.Diagnostic {
	d := linter.Diagnostic{
		Severity: linter.SeverityError,
		Code:     "C001",
		Message:  err.Error(),
		Backend:  backendName,
	}
	var cerr *ir.CodegenError
	if errors.As(err, &cerr) {
		d.Line = cerr.Position.Line
		d.Column = cerr.Position.Column
		d.Message = fmt.Sprintf("%s: %s", cerr.Construct, cerr.Message)
	}
	return d
}

// writeEmitted writes one emitted source under dir as <model>_<backend><ext>.
func writeEmitted(dir, model, backendName, code string) (string, error) {
	ext := backendFileExt[backendName]
	path := filepath.Join(dir, fmt.Sprintf("%s_%s%s", model, backendName, ext))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, err
	}
	return path, os.WriteFile(path, []byte(code), 0o644)
}

// recordRun persists one translation in the run store.
func recordRun(cmd *cobra.Command, s *store.Store, sourceHash string, t Translation) (string, error) {
	diagJSON, err := json.Marshal(t.Diagnostics)
	if err != nil {
		return "", err
	}
	run := store.Run{
		ID:          store.NewRunID(),
		Model:       t.Model,
		SourceHash:  sourceHash,
		Backend:     t.Backend,
		Diagnostics: string(diagJSON),
		Code:        t.Code,
	}
	if err := s.WriteRun(cmd.Context(), run); err != nil {
		return "", err
	}
	return run.ID, nil
}

func outputTranslations(formatter *OutputFormatter, translations []Translation) error {
	if formatter.Format == "json" {
		return formatter.Success(translations)
	}
	for _, t := range translations {
		if t.Refused {
			fmt.Fprintf(formatter.Writer, "== %s [%s]: refused\n", t.Model, t.Backend)
		} else {
			fmt.Fprintf(formatter.Writer, "== %s [%s]\n", t.Model, t.Backend)
		}
		for _, d := range t.Diagnostics {
			fmt.Fprintf(formatter.Writer, "  %s\n", d)
		}
		if t.File != "" {
			fmt.Fprintf(formatter.Writer, "  wrote %s\n", t.File)
		} else if t.Code != "" {
			fmt.Fprintln(formatter.Writer, t.Code)
		}
	}
	return nil
}
