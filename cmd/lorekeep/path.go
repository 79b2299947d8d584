// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path <from-id> <to-id>",
		Short: "Find a shortest directed path between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE:  runPath,
	}

	cmd.Flags().Int("max-depth", 10, "maximum number of hops to search")

	return cmd
}

func runPath(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m, gs, err := openGraph(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = m.Release() }()

	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	path, err := gs.FindPath(cmd.Context(), args[0], args[1], maxDepth)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(path) == 0 {
		fmt.Fprintf(out, "no path from %s to %s within %d hops\n", args[0], args[1], maxDepth)
		return nil
	}

	for _, e := range path {
		src, dst := "?", "?"
		if e.SourceID != nil {
			src = *e.SourceID
		}
		if e.TargetID != nil {
			dst = *e.TargetID
		}
		fmt.Fprintf(out, "%s %s %s\n", src, dimStyle.Render("-["+e.Type+"]->"), dst)
	}
	return nil
}
