package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

func newKeygenCmd(rt *session) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new key and write it to the key file",
		Long: `Generate a new random key and write it to the key file.

Envelopes sealed under a previous key cannot be opened after the key is
replaced, so an existing key file is only overwritten with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := rt.store.Path()
			if !force {
				_, err := os.Stat(path)
				if err == nil {
					return fmt.Errorf("key file %s already exists, use --force to replace it", path)
				}
				if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("failed checking key file: %w", err)
				}
			}

			if err := rt.service.GenerateKey(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing key file")
	return cmd
}
