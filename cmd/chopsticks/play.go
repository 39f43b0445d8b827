package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tkahng/chopsticks/shell"
)

func newPlayCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a hot-seat match in this terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			// nolint:errcheck
			defer s.Close()

			sh, err := shell.New(shell.Config{
				In:          cmd.InOrStdin(),
				Out:         cmd.OutOrStdout(),
				Gateway:     s,
				Logger:      a.logger,
				ClearScreen: a.cfg.ClearScreen,
			})
			if err != nil {
				return err
			}

			err = sh.Run(ctx)
			if errors.Is(err, shell.ErrInputClosed) {
				a.logger.Info("input closed, leaving the match")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&a.cfg.ClearScreen, "clear", a.cfg.ClearScreen, "Clear the terminal before each board (env: CHOPSTICKS_CLEAR_SCREEN)")
	return cmd
}
