package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/xctools/internal/acknowledgements"
	"github.com/StinkyLord/xctools/internal/config"
	"github.com/StinkyLord/xctools/internal/contributors"
	"github.com/StinkyLord/xctools/internal/derived"
	"github.com/StinkyLord/xctools/internal/logger"
	"github.com/StinkyLord/xctools/internal/packages"
	"github.com/StinkyLord/xctools/internal/shell"
)

var (
	flagAppName         string
	flagOutput          string
	flagFormat          string
	flagDerivedDataPath string
	flagRepo            string
	flagHistoryBackend  string
	flagDropUnmatched   bool
)

var successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))

var acknowledgementsCmd = &cobra.Command{
	Use:   "acknowledgements",
	Short: "Generate acknowledgements for Swift packages and contributors",
	Long: `Generate a JSON acknowledgements file for an Xcode project.

Packages are read from the most recent DerivedData build of the app
(SourcePackages/workspace-state.json and the license file of every checkout).
Contributors are mined from the git history of the current repository.

Examples:
  xctools acknowledgements --app-name MyApp --output Resources/
  xctools acknowledgements -a MyApp -o Credits.json --history-backend native
  xctools acknowledgements -a MyApp -o - --format cyclonedx`,
	Args: cobra.NoArgs,
	RunE: runAcknowledgements,
}

func init() {
	f := acknowledgementsCmd.Flags()
	f.StringVarP(&flagAppName, "app-name", "a", "", "Name of the app (the DerivedData directory prefix)")
	f.StringVarP(&flagOutput, "output", "o", "", "Output file or existing directory (use '-' for stdout)")
	f.StringVar(&flagFormat, "format", string(acknowledgements.FormatAcknowledgements),
		"Output format: acknowledgements, cyclonedx")
	f.StringVar(&flagDerivedDataPath, "derived-data-path", "",
		"DerivedData base directory (overrides the Xcode preference)")
	f.StringVar(&flagRepo, "repo", ".", "Git working tree to mine contributors from")
	f.StringVar(&flagHistoryBackend, "history-backend", config.HistoryCLI,
		"How to read git history: cli (git binary) or native (go-git)")
	f.BoolVar(&flagDropUnmatched, "drop-unmatched-contributors", false,
		"Discard contributors whose first name collides with another without merging")

	_ = acknowledgementsCmd.MarkFlagRequired("app-name")
	_ = acknowledgementsCmd.MarkFlagRequired("output")
}

func runAcknowledgements(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)
	log.Debug("xctools", "version", toolVersion, "app", flagAppName, "output", flagOutput)

	fsys := afero.NewOsFs()
	runner := shell.NewExecRunner()

	g := acknowledgements.New(fsys, preferenceChain(fsys, runner), history(runner), contributors.Aliases(cfg.AliasTable()))
	g.Packages = packages.NewReader(fsys, cfg.LicensePatterns)
	g.Reconciler = contributors.Reconciler{DropUnmatched: cfg.DropUnmatchedContributors}
	g.Writer.Stdout = cmd.OutOrStdout()
	g.Format = acknowledgements.Format(flagFormat)
	g.ToolVersion = toolVersion

	msg, err := g.Generate(ctx, flagAppName, flagOutput)
	if err != nil {
		return err
	}
	if flagOutput == "-" {
		// stdout carries the report itself.
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(msg))
	return nil
}

// preferenceChain resolves the DerivedData override from, in order, the
// derived_data_path setting, `defaults read` and the Xcode plist.
func preferenceChain(fsys afero.Fs, runner shell.Runner) derived.PreferenceChain {
	chain := derived.PreferenceChain{
		derived.StaticPreference(cfg.DerivedDataPath),
		&derived.DefaultsPreference{Runner: runner},
	}
	if home, err := os.UserHomeDir(); err == nil {
		chain = append(chain, derived.NewPlistPreference(fsys, home))
	}
	return chain
}

func history(runner shell.Runner) contributors.History {
	if cfg.HistoryBackend == config.HistoryNative {
		return &contributors.NativeHistory{RepoDir: cfg.Repo}
	}
	return &contributors.GitCLIHistory{Runner: runner, RepoDir: cfg.Repo}
}
