package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pythia-ppl/pythia/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	StorePath string
	Model     string
	Limit     int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recorded translation runs, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.StorePath, "store", "pythia.db", "sqlite database holding translation runs")
	cmd.Flags().StringVar(&opts.Model, "model", "", "only list runs for this model")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 = all)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := store.Open(opts.StorePath)
	if err != nil {
		formatter.Error(ErrCodeStore, fmt.Sprintf("opening store: %v", err), nil)
		return NewExitError(ExitCommandError, "opening store")
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), opts.Model, opts.Limit)
	if err != nil {
		formatter.Error(ErrCodeStore, fmt.Sprintf("listing runs: %v", err), nil)
		return NewExitError(ExitCommandError, "listing runs")
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}
	for _, run := range runs {
		fmt.Fprintf(formatter.Writer, "%s  %-12s %-8s %s\n",
			run.ID, run.Model, run.Backend, run.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	StorePath string
}

// NewShowCommand creates the show command, which prints one recorded run's
// artifacts.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "show <run-id>",
		Short:         "Show one recorded translation run",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.StorePath, "store", "pythia.db", "sqlite database holding translation runs")

	return cmd
}

func runShow(opts *ShowOptions, id string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := store.Open(opts.StorePath)
	if err != nil {
		formatter.Error(ErrCodeStore, fmt.Sprintf("opening store: %v", err), nil)
		return NewExitError(ExitCommandError, "opening store")
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), id)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return NewExitError(ExitCommandError, "fetching run")
	}

	if formatter.Format == "json" {
		return formatter.Success(run)
	}
	fmt.Fprintf(formatter.Writer, "run      %s\n", run.ID)
	fmt.Fprintf(formatter.Writer, "model    %s\n", run.Model)
	fmt.Fprintf(formatter.Writer, "backend  %s\n", run.Backend)
	fmt.Fprintf(formatter.Writer, "source   %s\n", run.SourceHash)
	fmt.Fprintf(formatter.Writer, "created  %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	if run.Diagnostics != "" && run.Diagnostics != "[]" {
		fmt.Fprintf(formatter.Writer, "diagnostics: %s\n", run.Diagnostics)
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprint(formatter.Writer, run.Code)
	return nil
}
