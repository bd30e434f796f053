package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/config"
	"github.com/piggybank-dev/piggybank/internal/gitops"
	"github.com/piggybank-dev/piggybank/internal/kv"
)

func newInitCommand(a *app) *cobra.Command {
	var backend string
	var git bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a data directory with a default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flag := a.homeFlag
			if len(args) > 0 {
				flag = args[0]
			}
			dir, err := config.ResolveHome(flag)
			if err != nil {
				return err
			}
			return runInit(cmd, dir, backend, git)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", kv.BackendDir, "storage backend: dir or sqlite")
	cmd.Flags().BoolVar(&git, "git", false, "track the data directory in git and commit after every change")

	return cmd
}

func runInit(cmd *cobra.Command, dir, backend string, git bool) error {
	if config.File(dir) != "" {
		return fmt.Errorf("%s is already initialized", dir)
	}
	if backend == kv.BackendMemory {
		return fmt.Errorf("the memory backend keeps nothing between runs; use %s or %s", kv.BackendDir, kv.BackendSQLite)
	}

	cfg := config.Default()
	cfg.Storage.Backend = backend
	cfg.Git.AutoCommit = git
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := config.Save(filepath.Join(dir, config.YAMLFile), cfg); err != nil {
		return err
	}

	gitignore := config.EnvFile + "\n"
	if backend == kv.BackendSQLite {
		gitignore += "*.db-journal\n*.db-wal\n*.db-shm\n"
	}
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	out := cmd.OutOrStdout()
	if !git {
		fmt.Fprintf(out, "Initialized piggybank data directory at %s\n", dir)
		return nil
	}

	ctx := cmd.Context()
	if err := gitops.Init(ctx, dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(ctx, dir, "init: piggybank data directory", author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	fmt.Fprintf(out, "Initialized piggybank data directory at %s (%s)\n", dir, hash)
	return nil
}
