// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lorekeep/lorekeep/internal/store"
	lkerr "github.com/lorekeep/lorekeep/pkg/errors"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the graph as snapshot JSON",
		Long:  "Write the full graph as a JSON snapshot to a file or stdout.",
		RunE:  runExport,
	}

	cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	cmd.Flags().Bool("no-metadata", false, "omit the version metadata block")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, gs, err := openGraph(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = m.Release() }()

	noMeta, _ := cmd.Flags().GetBool("no-metadata")
	snap, err := gs.Export(cmd.Context(), store.ExportOptions{IncludeMetadata: !noMeta})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return lkerr.Wrapf(err, lkerr.CodeCLISetupFailure, "encoding snapshot")
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(output, data, 0o600); err != nil {
		return lkerr.Wrapf(err, lkerr.CodeCLISetupFailure, "writing snapshot to %s", output)
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓")+" exported "+
		fmt.Sprintf("%d nodes, %d edges to %s", len(snap.Data.Nodes), len(snap.Data.Edges), output))
	return nil
}
