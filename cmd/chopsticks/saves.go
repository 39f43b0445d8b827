package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSavesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "Inspect saved matches",
	}
	cmd.AddCommand(newSavesListCmd(a))
	cmd.AddCommand(newSavesShowCmd(a))
	return cmd
}

func newSavesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List save ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			// nolint:errcheck
			defer s.Close()

			ids, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newSavesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved match as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			// nolint:errcheck
			defer s.Close()

			snap, err := s.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
}
