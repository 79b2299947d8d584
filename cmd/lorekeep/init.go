// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// --- lipgloss styles ---

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialise the config file and graph database",
		Long:  "Write the default config file if missing, create the data directory, and initialise the graph database schema.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Lorekeep setup"))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	// Opening the store runs the schema migration.
	m, _, err := openGraph(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = m.Release() }()

	fmt.Fprintln(out, successStyle.Render("✓")+" data directory  "+dimStyle.Render(cfg.DataDir))
	fmt.Fprintln(out, successStyle.Render("✓")+" graph database  "+dimStyle.Render(cfg.DatabasePath()))
	fmt.Fprintln(out)
	fmt.Fprintln(out, labelStyle.Render("Next:")+" run "+dimStyle.Render("lorekeep serve")+" to start the graph API.")
	return nil
}
