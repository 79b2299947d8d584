// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lorekeep/lorekeep/internal/config"
	"github.com/lorekeep/lorekeep/internal/session"
	"github.com/lorekeep/lorekeep/internal/store"
	_ "github.com/lorekeep/lorekeep/internal/store/sqlite"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

// NewRootCmd creates the root lorekeep command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lorekeep",
		Short:         "Lorekeep — personal knowledge graph engine",
		Long:          "Lorekeep stores a personal knowledge graph of notes and their connections, and serves it to the canvas UI.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	// Global flags — these map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("data-dir", "", "path to data directory")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	// Register subcommands
	root.AddCommand(
		newInitCmd(),
		newServeCmd(),
		newStatsCmd(),
		newExportCmd(),
		newImportCmd(),
		newValidateCmd(),
		newPathCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return lkerr.Errorf(lkerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// Auto-discover lorekeep.yaml from standard locations.
		// Note: SetConfigType is intentionally omitted. When set, Viper
		// falls back to trying the bare config name without extension,
		// which collides with the ./lorekeep binary in the project root.
		v.SetConfigName("lorekeep")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lorekeep")
		v.AddConfigPath("/etc/lorekeep")
		// No config file is fine — defaults and env vars still apply.
		// Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return lkerr.Errorf(lkerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			// No config found anywhere — bootstrap a default to ~/.config/lorekeep/.
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return lkerr.Errorf(lkerr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	// Bind persistent flags to viper keys.
	if err := v.BindPFlag("data_dir", cmd.Root().PersistentFlags().Lookup("data-dir")); err != nil {
		return lkerr.Errorf(lkerr.CodeCLISetupFailure, "binding data-dir flag: %w", err)
	}
	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return lkerr.Errorf(lkerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}

// loadConfig materialises the effective configuration from the global viper.
func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}

// newLogger builds the slog logger from log config; --verbose forces debug.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// openGraph acquires the shared store handle for a CLI command. The
// caller must Release the returned manager when done.
func openGraph(cfg *config.Config, logger *slog.Logger) (*session.Manager, store.GraphStore, error) {
	if err := config.EnsureDataDir(cfg); err != nil {
		return nil, nil, err
	}

	m := session.NewManager(&store.StorageConfig{
		Backend:  cfg.Storage.Backend,
		Database: cfg.Storage.Database,
	}, cfg.DatabasePath(), logger)

	gs, err := m.Acquire()
	if err != nil {
		return nil, nil, err
	}
	return m, gs, nil
}
