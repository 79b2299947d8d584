// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show graph statistics",
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, gs, err := openGraph(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = m.Release() }()

	stats, err := gs.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, labelStyle.Render("database")+"  "+cfg.DatabasePath())
	fmt.Fprintf(out, "%s     %d\n", labelStyle.Render("nodes"), stats.NodeCount)
	fmt.Fprintf(out, "%s     %d\n", labelStyle.Render("edges"), stats.EdgeCount)
	return nil
}
