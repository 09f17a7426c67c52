// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/bwmdecode/config"
	"github.com/katalvlaran/bwmdecode/store"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	storePath  string

	file   *config.File
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "bwmdecode",
		Short:         "Cross-validated neural decoding over sessions and pseudo sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "bwmdecode.yaml", "run configuration file")
	root.PersistentFlags().StringVar(&a.storePath, "store", "", "result database directory (overrides store.path)")

	root.AddCommand(newRunCmd(a), newBatchCmd(a), newShowCmd(a))
	return root
}

// load reads the config file and builds the logger. Logs go to stderr so
// that stdout stays machine readable.
func (a *app) load(cmd *cobra.Command) error {
	f, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.storePath != "" {
		f.Store.Path = a.storePath
		f.Store.InMemory = false
	}
	a.file = f
	a.logger = f.Log.Logger(cmd.ErrOrStderr())
	a.logger.Debug("configuration loaded", slog.String("path", a.configPath))
	return nil
}

func (a *app) openStore() (*store.Store, error) {
	cfg := store.DefaultConfig(a.file.Store.Path)
	cfg.InMemory = a.file.Store.InMemory
	cfg.Logger = a.logger
	s, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}
