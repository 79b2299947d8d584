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

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <snapshot.json>",
		Short: "Validate snapshot JSON without importing",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return lkerr.Wrapf(err, lkerr.CodeCLIInputInvalid, "reading snapshot %s", args[0])
	}

	v := store.ValidateSnapshot(data)

	out := cmd.OutOrStdout()
	if v.Version != "" {
		fmt.Fprintln(out, labelStyle.Render("version")+"  "+v.Version)
	}
	fmt.Fprintf(out, "%s    %d\n", labelStyle.Render("nodes"), v.NodeCount)
	fmt.Fprintf(out, "%s    %d\n", labelStyle.Render("edges"), v.EdgeCount)
	for _, msg := range v.Errors {
		fmt.Fprintln(out, errorStyle.Render("!")+" "+msg)
	}

	if !v.Valid {
		return lkerr.Errorf(lkerr.CodeCLIInputInvalid, "snapshot is invalid: %d problem(s)", len(v.Errors))
	}
	fmt.Fprintln(out, successStyle.Render("✓")+" snapshot is valid")
	return nil
}
