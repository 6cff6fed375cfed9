package main

import (
	"context"
	"fmt"

	"github.com/nao1215/torfox/internal/supervisor"
	"github.com/spf13/cobra"
)

// NewKillCmd creates the kill command.
func NewKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill",
		Short: "Terminate leftover Tor Browser and Firefox processes",
		Long: `Kill terminates every process that belongs to the browser toolchain:
firefox, geckodriver, phantomjs, java, javaw and jqs.

Processes still running after the grace period are asked once more.
Running it with nothing to terminate is harmless.`,
		Args: cobra.NoArgs,
		RunE: runKillCmd,
	}
}

func runKillCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)

	sup := supervisor.New(
		supervisor.WithKillGrace(cfg.KillGrace),
		supervisor.WithLogger(logger),
	)
	if err := sup.KillRelated(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Related processes terminated.")
	return nil
}
