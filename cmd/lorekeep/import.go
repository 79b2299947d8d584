// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lorekeep/lorekeep/internal/store"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Import a snapshot into the graph",
		Long:  "Load a JSON snapshot. Replace mode empties the graph first; merge mode updates existing ids and inserts the rest.",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}

	cmd.Flags().String("mode", "replace", "reconciliation mode: replace or merge")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return lkerr.Wrapf(err, lkerr.CodeCLIInputInvalid, "reading snapshot %s", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, gs, err := openGraph(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = m.Release() }()

	mode, _ := cmd.Flags().GetString("mode")
	result := gs.ImportJSON(cmd.Context(), data, store.ImportMode(mode))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "imported %d nodes, %d edges\n", result.NodesImported, result.EdgesImported)
	for _, msg := range result.Errors {
		fmt.Fprintln(out, errorStyle.Render("!")+" "+msg)
	}
	if !result.Success {
		return lkerr.Errorf(lkerr.CodeCLIInputInvalid, "import finished with %d problem(s)", len(result.Errors))
	}

	fmt.Fprintln(out, successStyle.Render("✓")+" import complete")
	return nil
}
