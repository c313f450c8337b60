package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalemi-dev/observer-lab/catalog"
	"github.com/aalemi-dev/observer-lab/logger"
	"github.com/aalemi-dev/observer-lab/registry"
)

func newPublishCmd(root *rootOptions) *cobra.Command {
	var snapshotPath, key string

	cmd := &cobra.Command{
		Use:   "publish --snapshot FILE",
		Short: "Upload a snapshot to the object store serve loads it from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.envFile)
			if err != nil {
				return err
			}
			snap, err := registry.LoadFile(snapshotPath)
			if err != nil {
				return err
			}

			storeCfg := cfg.Registry.ObjectStore
			if key != "" {
				storeCfg.Key = key
			}
			if storeCfg.Bucket == "" {
				return fmt.Errorf("OBSERVER_SNAPSHOT_S3_BUCKET is not set")
			}
			store, err := registry.NewObjectStore(storeCfg)
			if err != nil {
				return err
			}
			store.WithLogger(logger.NewLoggerClient(cfg.Logger).Named("registry"))

			if err := store.Publish(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d observers to %s/%s\n",
				len(snap.Definitions), storeCfg.Bucket, storeCfg.Key)
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "observer registry snapshot (.yaml or .json)")
	cmd.Flags().StringVar(&key, "key", "", "object key, overriding OBSERVER_SNAPSHOT_S3_KEY")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var (
		snapshotPath string
		migrate      bool
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import --snapshot FILE",
		Short: "Store the classes of a snapshot in the metadata catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root.envFile)
			if err != nil {
				return err
			}
			snap, err := registry.LoadFile(snapshotPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			c, err := catalog.New(cfg.Catalog)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			c.WithLogger(logger.NewLoggerClient(cfg.Logger).Named("catalog"))

			if migrate || cfg.Catalog.AutoMigrate {
				if err := c.Migrate(ctx); err != nil {
					return err
				}
			}
			if err := c.Save(ctx, snap.Classes...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d classes\n", len(snap.Classes))
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "snapshot whose classes are imported")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the catalog tables first")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall time limit")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}
