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

func newInitCmd() *cobra.Command {
	flags := &repoFlags{}
	var projectID string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new repository tracking --file's current contents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			facade, err := flags.open(cmd)
			if err != nil {
				return err
			}
			defer facade.Close()

			result, err := facade.Init(cmd.Context(), flags.file, projectID, flags.authorName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized repository at %s\ncurrent branch: %s\nHEAD: %s\n",
				flags.resolvedRepoPath(), result.CurrentBranchName, result.CurrentCheckpointHash)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&projectID, "project-id", "", "project identifier (default: generated)")
	return cmd
}
