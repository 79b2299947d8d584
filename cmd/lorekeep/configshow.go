// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long:  "Print the configuration after applying flag, environment, file, and default precedence.",
		RunE:  runConfigShow,
	})

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	view := map[string]any{
		"data_dir": cfg.DataDir,
		"storage": map[string]any{
			"backend":  cfg.Storage.Backend,
			"database": cfg.Storage.Database,
		},
		"server": map[string]any{
			"listen":       cfg.Server.Listen,
			"cors_origins": cfg.Server.CORSOrigins,
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
	}

	data, err := yaml.Marshal(view)
	if err != nil {
		return lkerr.Wrapf(err, lkerr.CodeCLISetupFailure, "encoding config")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
