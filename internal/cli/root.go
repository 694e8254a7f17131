package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/imqueue/imq-cli/internal/branding"
	"github.com/imqueue/imq-cli/internal/service"
	"github.com/imqueue/imq-cli/internal/ui"
	"github.com/imqueue/imq-cli/internal/updater"
	"github.com/imqueue/imq-cli/internal/userdata"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
	noColor bool
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print debug logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds new microservices from templates and provisions
their GitHub repository, Travis CI builds and Docker Hub publishing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColor()
		}
		if cmd.Name() == "version" {
			return
		}

		// Non-blocking banner from cached release check.
		if dir, err := userdata.GetCacheDir(); err == nil {
			updater.New(buildVersion).CheckAndPrintBanner(os.Stderr, dir)
		}
	},
}

// Execute runs the root command with build info injected via ldflags.
// Errors are printed here unless the pipeline already reported them.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	// Interrupt cancels the running pipeline, which then rolls back.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var reported *service.ReportedError
		if !errors.As(err, &reported) {
			ui.NewConsole(os.Stdout, os.Stderr).PrintError(err, false)
		}
	}
	return err
}
