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
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blendvcs/blendvcs/internal/buildinfo"
	"github.com/blendvcs/blendvcs/repo"
)

// repoFlags are the flags common to every subcommand that opens a
// repository: the working file being tracked, and the sidecar repository
// database path (defaulting to filePath + ".blendvcs").
type repoFlags struct {
	file       string
	repoPath   string
	authorName string
}

func (f *repoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "path to the tracked working file")
	cmd.Flags().StringVar(&f.repoPath, "repo", "", "path to the repository database (default: <file>.blendvcs)")
	cmd.Flags().StringVar(&f.authorName, "author", defaultAuthor(), "author name recorded on new checkpoints")
}

func (f *repoFlags) resolvedRepoPath() string {
	if f.repoPath != "" {
		return f.repoPath
	}
	return f.file + ".blendvcs"
}

func defaultAuthor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

func (f *repoFlags) open(cmd *cobra.Command) (*repo.Facade, error) {
	if f.file == "" {
		return nil, fmt.Errorf("--file is required")
	}
	facade, err := repo.Open(cmd.Context(), f.resolvedRepoPath())
	if err != nil {
		return nil, err
	}
	logger, _ := zap.NewProduction()
	facade.SetLogger(logger.Sugar())
	return facade, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "blendvcs",
		Short:         "Content-addressed checkpointing for monolithic binary documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newCheckpointCmd())
	cmd.AddCommand(newRestoreCmd())
	cmd.AddCommand(newLogCmd())
	cmd.AddCommand(newBranchesCmd())
	cmd.AddCommand(newBranchNewCmd())
	cmd.AddCommand(newBranchSwitchCmd())
	cmd.AddCommand(newBranchDeleteCmd())
	cmd.AddCommand(newTimelineCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
