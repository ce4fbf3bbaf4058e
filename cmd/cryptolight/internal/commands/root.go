// Package commands implements the cryptolight command tree.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/rbaliyan/cryptolight"
	"github.com/rbaliyan/cryptolight/internal/config"
	"github.com/rbaliyan/cryptolight/internal/logger"
	"github.com/spf13/cobra"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	keyFile    string
	primitive  string
	logLevel   string
}

// session is built before each subcommand runs.
type session struct {
	settings *config.Settings
	logger   *slog.Logger
	store    *cryptolight.FileKeyStore
	service  *cryptolight.Service
	close    func() error
}

// NewRootCmd returns the cryptolight command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	rt := &session{}

	rootCmd := &cobra.Command{
		Use:   "cryptolight",
		Short: "Lightweight block cipher encryption",
		Long: `cryptolight encrypts and decrypts data with a lightweight block cipher
(SPECK-128 by default) in CBC mode with PKCS#7 padding.

A single key is kept in a file, by default in the per-user configuration
folder. Run "cryptolight keygen" once before encrypting.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd, flags)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Settings file (default "+config.DefaultConfigPath()+")")
	pf.StringVar(&flags.keyFile, "key-file", "", "Key file (overrides the settings file)")
	pf.StringVar(&flags.primitive, "primitive", "", fmt.Sprintf("Block cipher, one of %v (overrides the settings file)", cryptolight.PrimitiveNames()))
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warning or error (overrides the settings file)")

	for _, sub := range []*cobra.Command{
		newKeygenCmd(rt),
		newEncryptCmd(rt),
		newDecryptCmd(rt),
	} {
		sub.RunE = rt.closing(sub.RunE)
		rootCmd.AddCommand(sub)
	}
	return rootCmd
}

// closing wraps run so the logger is released whether or not it fails.
// cobra skips post-run hooks after an error.
func (rt *session) closing(run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := rt.release(); err == nil {
				err = cerr
			}
		}()
		return run(cmd, args)
	}
}

// release closes the logger once.
func (rt *session) release() error {
	if rt.close == nil {
		return nil
	}
	closeFn := rt.close
	rt.close = nil
	return closeFn()
}

func (rt *session) init(cmd *cobra.Command, flags *rootFlags) error {
	settings, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}

	pf := cmd.Flags()
	if pf.Changed("key-file") {
		settings.KeyFile = flags.keyFile
	}
	if pf.Changed("primitive") {
		settings.Primitive = flags.primitive
	}
	if pf.Changed("log-level") {
		settings.Logging.Level = flags.logLevel
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	log, closeLog, err := logger.New(&settings.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	prim, err := cryptolight.PrimitiveByName(settings.Primitive)
	if err != nil {
		_ = closeLog()
		return err
	}
	c, err := cryptolight.NewCipher(prim)
	if err != nil {
		_ = closeLog()
		return err
	}
	store, err := cryptolight.NewFileKeyStore(settings.KeyFile, c.KeySize())
	if err != nil {
		_ = closeLog()
		return err
	}
	svc, err := cryptolight.NewService(store, c, cryptolight.WithLogger(log))
	if err != nil {
		_ = closeLog()
		return err
	}

	rt.settings = settings
	rt.logger = log
	rt.store = store
	rt.service = svc
	rt.close = closeLog

	log.Debug("settings loaded",
		slog.String("primitive", prim.Name()),
		slog.String("key_file", store.Path()),
	)
	return nil
}
