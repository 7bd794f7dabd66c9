package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pythia-ppl/pythia/internal/ir"
)

// BackendInfo is the reported shape of one backend descriptor.
type BackendInfo struct {
	Name        string   `json:"name"`
	Target      string   `json:"target"`
	IndexBase   int      `json:"index_base"`
	Addressing  string   `json:"addressing"`
	Unsupported []string `json:"unsupported,omitempty"`
}

// NewBackendsCommand creates the backends command.
func NewBackendsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "backends",
		Short:         "List registered translation backends",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			infos := make([]BackendInfo, 0, len(ir.Backends))
			for _, name := range ir.BackendNames() {
				b, _ := ir.LookupBackend(name)
				infos = append(infos, describeBackend(b))
			}

			if formatter.Format == "json" {
				return formatter.Success(infos)
			}
			for _, info := range infos {
				fmt.Fprintf(formatter.Writer, "%-8s %-12s index base %d, %s addressing\n",
					info.Name, info.Target, info.IndexBase, info.Addressing)
				if len(info.Unsupported) > 0 {
					fmt.Fprintf(formatter.Writer, "         unsupported: %v\n", info.Unsupported)
				}
			}
			return nil
		},
	}
}

func describeBackend(b ir.BackendDescriptor) BackendInfo {
	info := BackendInfo{
		Name:       b.Name,
		Target:     b.Target,
		IndexBase:  b.IndexBase,
		Addressing: b.Addressing.String(),
	}
	for name, support := range b.Distributions {
		if support == ir.SupportNone {
			info.Unsupported = append(info.Unsupported, name)
		}
	}
	if b.TruncationSupport == ir.SupportNone {
		info.Unsupported = append(info.Unsupported, ir.TruncatedName)
	}
	sort.Strings(info.Unsupported)
	return info
}
