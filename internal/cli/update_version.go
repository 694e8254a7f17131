package cli

import (
	"context"
	"fmt"

	"github.com/imqueue/imq-cli/internal/branding"
	"github.com/imqueue/imq-cli/internal/command"
	"github.com/imqueue/imq-cli/internal/gitops"
	"github.com/imqueue/imq-cli/internal/ui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func init() {
	updateVersionCmd.Flags().StringP("branch", "b", gitops.DefaultBranch, "Branch to check out and pull before bumping")
	updateVersionCmd.Flags().StringP("npm-version", "n", gitops.DefaultBump, "npm version argument (major, minor, patch, prerelease)")
	serviceCmd.AddCommand(updateVersionCmd)
}

var updateVersionCmd = &cobra.Command{
	Use:   "update-version <path>",
	Short: "Bump the version of services under a path and push the tags",
	Long: `Bump the version of the service at <path>, or of every service directly
under it, and push the new version tag, triggering CI builds.

For each service the branch is checked out and pulled, "npm version" is run
and the result is pushed with --follow-tags. A failing service is reported
and the remaining ones are still updated.

Examples:
  ` + branding.CLIName() + ` service update-version ./services
  ` + branding.CLIName() + ` service update-version . -b develop -n patch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")
		bump, _ := cmd.Flags().GetString("npm-version")

		runner := command.Exec{}
		if err := command.Require(runner, "git", "npm"); err != nil {
			return err
		}
		dirs, err := gitops.ServiceDirs(afero.NewOsFs(), args[0])
		if err != nil {
			return err
		}
		if len(dirs) == 0 {
			return fmt.Errorf("no services found under %s", args[0])
		}

		console := ui.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())
		committer := &gitops.Committer{Runner: runner}
		return updateVersions(cmd.Context(), committer, console, dirs, gitops.Release{Branch: branch, Bump: bump})
	},
}

// updateVersions bumps each service in turn and reports how many failed.
func updateVersions(ctx context.Context, g *gitops.Committer, console *ui.Console, dirs []string, r gitops.Release) error {
	var failed int
	for _, dir := range dirs {
		console.Info("Service: %s", dir)
		if err := g.BumpVersion(ctx, dir, r); err != nil {
			console.PrintError(err, false)
			failed++
			continue
		}
		console.Success("Done!")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d services failed to update", failed, len(dirs))
	}
	return nil
}
