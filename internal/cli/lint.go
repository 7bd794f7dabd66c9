package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pythia-ppl/pythia/internal/linter"
)

// LintOptions holds flags for the lint command.
type LintOptions struct {
	*RootOptions
	Backend string // optional portability target
}

// LintReport is one model's lint outcome.
type LintReport struct {
	Model       string              `json:"model"`
	Diagnostics []linter.Diagnostic `json:"diagnostics"`
	Errors      int                 `json:"errors"`
	Warnings    int                 `json:"warnings"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "lint <model-dir>",
		Short: "Run the semantic check battery over every model in a directory",
		Long: `Decode the CUE interchange documents in a directory, resolve scopes,
and run every lint check. All findings are reported in one pass; the exit
code is 1 when any finding has error severity.

With --backend the portability checks for that target run as well.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "", "also run portability checks for this backend")

	return cmd
}

func runLint(opts *LintOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, loadErrors := LoadModels(dir, LoadModeCollectAll)
	if result == nil && len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)
	if len(loadErrors) > 0 {
		details := make([]string, len(loadErrors))
		for i, e := range loadErrors {
			details[i] = e.Error()
		}
		formatter.Error(ErrCodeCompile, "interchange decode failed", details)
		return NewExitError(ExitCommandError, "interchange decode failed")
	}

	reports := make([]LintReport, 0, len(result.Programs))
	failed := false
	for _, prog := range result.Programs {
		formatter.VerboseLog("Linting model: %s", prog.Name)
		res := linter.Lint(prog, opts.Backend)
		report := LintReport{Model: prog.Name, Diagnostics: res.Diagnostics}
		for _, d := range res.Diagnostics {
			if d.Severity == linter.SeverityError {
				report.Errors++
			} else {
				report.Warnings++
			}
		}
		if report.Errors > 0 {
			failed = true
		}
		reports = append(reports, report)
	}

	if err := outputLintReports(formatter, reports); err != nil {
		return err
	}
	if failed {
		return NewExitError(ExitFailure, "lint found errors")
	}
	return nil
}

func outputLintReports(formatter *OutputFormatter, reports []LintReport) error {
	if formatter.Format == "json" {
		return formatter.Success(reports)
	}
	for _, r := range reports {
		fmt.Fprintf(formatter.Writer, "%s: %d error(s), %d warning(s)\n", r.Model, r.Errors, r.Warnings)
		for _, d := range r.Diagnostics {
			fmt.Fprintf(formatter.Writer, "  %s\n", d)
		}
	}
	return nil
}

// outputLoadError reports a fatal load failure and converts it to the
// command-error exit code.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		formatter.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, loadErr.Message)
	}
	formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return NewExitError(ExitCommandError, err.Error())
}
