package cmd

import (
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/StinkyLord/xctools/internal/config"
	"github.com/StinkyLord/xctools/internal/logger"
)

const toolVersion = "1.0.0"

var (
	flagConfig   string
	flagLogLevel string
	flagLogJSON  bool

	// cfg is resolved in PersistentPreRunE before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "xctools",
	Short: "Tooling for Xcode projects",
	Long: `xctools collects information from Xcode projects and their build
artifacts.

Commands:
  • acknowledgements  — credit Swift packages (name, author, URL, license)
                        and the project's git contributors in one JSON file`,
	Version:           toolVersion,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $HOME/"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(acknowledgementsCmd)
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

// setup loads the configuration and installs the logger on the command
// context.
func setup(cmd *cobra.Command, _ []string) error {
	settings := viper.New()
	if err := bindFlags(settings, cmd.Flags()); err != nil {
		return err
	}
	loaded, err := config.Load(settings, flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	level := logger.ParseLevel(cfg.LogLevel)
	logger.Init(&logger.Config{
		Level:      level,
		Output:     cmd.ErrOrStderr(),
		JSON:       cfg.LogJSON,
		AddSource:  level == charmlog.DebugLevel,
		TimeFormat: "15:04:05",
	})
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), logger.Default()))

	if flagConfig != "" {
		logger.Debug("loaded config file", "path", flagConfig)
	}
	return nil
}

// flagKeys maps settings keys to the flags that override them.
var flagKeys = map[string]string{
	config.KeyLogLevel:        "log-level",
	config.KeyLogJSON:         "log-json",
	config.KeyDerivedDataPath: "derived-data-path",
	config.KeyRepo:            "repo",
	config.KeyHistoryBackend:  "history-backend",
	config.KeyDropUnmatched:   "drop-unmatched-contributors",
}

// bindFlags binds every flag of flags that has a settings key. Flags the
// running command does not define are skipped.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}
