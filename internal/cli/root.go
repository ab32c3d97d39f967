package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/franckalain/nutrisnap/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "nutrisnap",
		Short: "Food photo analysis with generative models",
		Long: `Nutrisnap identifies the dish in a food photo, estimates its nutrition,
rates how healthy it is and suggests healthier alternatives.

Run it as a web server or analyse images straight from the command line.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			path := opts.configPath
			if path == "" {
				path = config.GetConfigPath()
			}
			cfg, err := config.LoadConfig(path)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			opts.cfg = cfg

			logLevel := slog.LevelInfo
			if opts.verbose || cfg.Server.Debug {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
			slog.SetDefault(logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newBatchCmd(opts))

	return cmd
}
