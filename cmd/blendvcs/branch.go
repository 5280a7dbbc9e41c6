// Copyright 2026 The Blendvcs Authors
// This file is part of Blendvcs.
//
// Blendvcs is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Blendvcs is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Blendvcs. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newBranchNewCmd() *cobra.Command {
	flags := &repoFlags{}

	cmd := &cobra.Command{
		Use:   "branch-new <name>",
		Short: "Create a new branch from main's tip and switch to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer facade.Close()

			result, err := facade.CreateBranch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "switched to new branch %s\n", result.CurrentBranchName)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newBranchSwitchCmd() *cobra.Command {
	flags := &repoFlags{}

	cmd := &cobra.Command{
		Use:   "branch-switch <name>",
		Short: "Switch to an existing branch and restore --file to its tip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer facade.Close()

			result, err := facade.SwitchToBranch(cmd.Context(), flags.file, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "switched to %s\n", result.CurrentBranchName)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newBranchDeleteCmd() *cobra.Command {
	flags := &repoFlags{}

	cmd := &cobra.Command{
		Use:   "branch-delete <name>",
		Short: "Delete a branch and every checkpoint recorded on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer facade.Close()

			_, err = facade.DeleteBranch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted branch %s\n", args[0])
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newBranchesCmd() *cobra.Command {
	flags := &repoFlags{}

	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List every branch and its tip",
		RunE: func(cmd *cobra.Command, _ []string) error {
			facade, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer facade.Close()

			result, err := facade.Connect(cmd.Context())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"branch", "tip", "current"})
			for _, b := range result.Branches {
				current := ""
				if b.Name == result.CurrentBranchName {
					current = "*"
				}
				t.AppendRow(table.Row{b.Name, shortHash(b.Tip), current})
			}
			t.Render()
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
