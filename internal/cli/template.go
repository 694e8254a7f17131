package cli

import (
	"fmt"
	"sort"

	"github.com/imqueue/imq-cli/internal/command"
	"github.com/imqueue/imq-cli/internal/templates"
	"github.com/imqueue/imq-cli/internal/ui"
	"github.com/spf13/cobra"
)

func init() {
	templateCmd.AddCommand(templateListCmd)
	rootCmd.AddCommand(templateCmd)
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Inspect service templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "Update the shared template cache and list its templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		console := ui.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())
		resolver, err := templates.NewResolver(command.Exec{}, ui.NewTerminal(), console)
		if err != nil {
			return err
		}

		found, err := resolver.List(cmd.Context())
		if err != nil {
			return err
		}
		names := make([]string, 0, len(found))
		for name := range found {
			names = append(names, name)
		}
		sort.Strings(names)

		out := cmd.OutOrStdout()
		for _, name := range names {
			fmt.Fprintf(out, "%-20s %s\n", name, found[name])
		}
		return nil
	},
}
