package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voltline/site/internal/platform/config"
	"github.com/voltline/site/internal/seed"
)

func newSeedCommand(envFile *string) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load a YAML fixture into the configured store",
		Long: `Creates the categories, documents, FAQs, products and sections listed in
the fixture. Records go through the same validation as the admin API.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *envFile, args[0], actor)
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "seed", "Actor id recorded on created products")
	return cmd
}

func runSeed(ctx context.Context, envFile, path, actor string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	defer file.Close()

	fixture, err := seed.Parse(file)
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx, "seed", envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Store.Driver == config.StoreMemory {
		a.logger.Warn("seeding the in-memory store only lasts for this process")
	}

	content, err := a.contentServices()
	if err != nil {
		return err
	}

	summary, err := seed.Load(ctx, seed.Services{
		Catalog:  content.catalog,
		Products: content.products,
		Sections: content.sections,
	}, fixture, actor)
	if err != nil {
		a.logger.Error("seed failed", zap.Stringer("created", summary), zap.Error(err))
		return err
	}
	a.logger.Info("seed complete", zap.String("fixture", path), zap.Stringer("created", summary))
	return nil
}
