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

	"github.com/spf13/cobra"
)

func newCheckpointCmd() *cobra.Command {
	flags := &repoFlags{}
	var message string

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Checkpoint --file's current contents onto the current branch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			facade, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer facade.Close()

			result, err := facade.CreateCheckpoint(cmd.Context(), flags.file, message, flags.authorName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checkpoint %s on %s\n", result.CurrentCheckpointHash, result.CurrentBranchName)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&message, "message", "m", "", "checkpoint message")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	flags := &repoFlags{}

	cmd := &cobra.Command{
		Use:   "restore <commit-hash>",
		Short: "Restore --file to a previous checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			facade, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer facade.Close()

			result, err := facade.RestoreCheckpoint(cmd.Context(), flags.file, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s on %s\n", result.CurrentCheckpointHash, result.CurrentBranchName)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newTimelineCmd() *cobra.Command {
	flags := &repoFlags{}

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Write main's tip into a sibling file next to --file, without touching HEAD",
		RunE: func(cmd *cobra.Command, _ []string) error {
			facade, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer facade.Close()

			path, err := facade.BlendFileFromTimeline(cmd.Context(), flags.file)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
