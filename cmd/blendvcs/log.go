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
	"os"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	flags := &repoFlags{}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List checkpoints on the current branch, newest first",
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
			t.AppendHeader(table.Row{"hash", "branch", "date", "message"})
			for _, c := range result.CheckpointsOnCurrent {
				mark := ""
				if c.Hash == result.CurrentCheckpointHash {
					mark = " (HEAD)"
				}
				t.AppendRow(table.Row{
					shortHash(c.Hash) + mark,
					c.Branch,
					time.Unix(c.Date, 0).Format(time.RFC3339),
					c.Message,
				})
			}
			t.Render()
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// formatSize renders a byte count in human-readable units; the `stats`
// command uses it to display the repository database's size.
func formatSize(n int64) string {
	return datasize.ByteSize(n).HumanReadable()
}
