package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gomarket/pkg/storage"
	"github.com/mesh-intelligence/gomarket/pkg/types"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize gomarket storage",
		Long:  "Create the configuration and data directories, write config.yaml if missing,\nthen initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	cfg, err := storeConfig(a.viper, a.flags)
	if err != nil {
		return err
	}

	written, err := writeConfigIfMissing(a.configDir, cfg)
	if err != nil {
		return fmt.Errorf("%w: write config: %w", types.ErrStorageIO, err)
	}
	if written {
		a.log.WithField("path", filepath.Join(a.configDir, configFileExt)).Info("config written")
	}

	// Attach then Detach creates the data directory and backend files.
	backend, err := storage.Attach(cfg)
	if err != nil {
		return fmt.Errorf("%w: initialize storage: %w", types.ErrStorageIO, err)
	}
	if err := backend.Detach(); err != nil {
		return fmt.Errorf("%w: finalize storage: %w", types.ErrStorageIO, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "gomarket initialized successfully")
	return nil
}
