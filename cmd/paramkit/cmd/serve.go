/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/skadi-tools/paramkit/pkg/api"
	"github.com/skadi-tools/paramkit/pkg/config"
	"github.com/skadi-tools/paramkit/pkg/hash40"
	"github.com/skadi-tools/paramkit/pkg/labels"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP conversion service",
	Long: `Start the paramkit HTTP service. It exposes the binary and XML
codecs as authenticated endpoints plus a hash label lookup, with
Prometheus metrics on /metrics.

Examples:
  paramkit serve --config ~/.config/paramkit/config.yaml
  paramkit serve --port 8090 --labels ParamLabels.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		var cfg *config.Config
		if config.ConfigExists(configPath) {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
		} else {
			cfg = config.DefaultConfig()
		}

		// Flags override the file
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if path, _ := cmd.Flags().GetString("labels"); path != "" {
			cfg.LabelsPath = path
		}

		generated := cfg.Security.APIKey == "auto"
		if err := cfg.ResolveAPIKey(); err != nil {
			return fmt.Errorf("failed to resolve API key: %w", err)
		}
		if generated {
			cmd.Printf("Generated API key: %s\n", cfg.Security.APIKey)
		}

		setupLogging(cfg.Logging.Level)

		table := hash40.MapTable{}
		if cfg.LabelsPath != "" {
			loaded, err := labels.LoadFile(cfg.LabelsPath)
			if err != nil {
				return fmt.Errorf("failed to load labels: %w", err)
			}
			table = loaded
			slog.Info("label dictionary loaded", "path", cfg.LabelsPath, "entries", len(table))
		}

		return api.StartServer(table, api.ServerConfig{
			Bind:   cfg.Bind,
			Port:   cfg.Port,
			APIKey: cfg.Security.APIKey,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "Path to config file")
	serveCmd.Flags().IntP("port", "p", 8090, "Port to listen on")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
