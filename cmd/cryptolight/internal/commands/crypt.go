package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// ioFlags names the input and output of encrypt and decrypt.
// An empty name or "-" means stdin or stdout.
type ioFlags struct {
	input  string
	output string
}

func (f *ioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Input file (default stdin)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default stdout)")
}

func newEncryptCmd(rt *session) *cobra.Command {
	f := &ioFlags{}
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt input into an envelope",
		Long:  "Encrypt input with the current key. The output is the raw envelope: IV followed by the ciphertext.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plaintext, err := readInput(cmd, f.input)
			if err != nil {
				return err
			}
			envelope, err := rt.service.Encrypt(cmd.Context(), plaintext)
			clear(plaintext)
			if err != nil {
				return err
			}
			return writeOutput(cmd, f.output, envelope)
		},
	}
	f.register(cmd)
	return cmd
}

func newDecryptCmd(rt *session) *cobra.Command {
	f := &ioFlags{}
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt an envelope",
		Long:  "Decrypt an envelope produced by encrypt with the same key and primitive.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envelope, err := readInput(cmd, f.input)
			if err != nil {
				return err
			}
			plaintext, err := rt.service.Decrypt(cmd.Context(), envelope)
			if err != nil {
				return err
			}
			defer clear(plaintext)
			return writeOutput(cmd, f.output, plaintext)
		},
	}
	f.register(cmd)
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed reading input: %w", err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("failed writing stdout: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		return fmt.Errorf("failed writing output: %w", err)
	}
	return nil
}
