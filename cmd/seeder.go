package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/vaccination-registry/internal/seed"
	"github.com/frahmantamala/vaccination-registry/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with a demo tenant",
		Long:  `Seed one tenant with its navigation tree, the Administrador, Enfermera and Auditor roles and users, catalogs and insumos.`,
		RunE:  runSeed,
	}
	seedClear    bool
	seedEmpresa  string
	seedPassword string
)

func init() {
	seedCmd.Flags().BoolVar(&seedClear, "clear", false, "delete every row before seeding")
	seedCmd.Flags().StringVar(&seedEmpresa, "empresa", "DEMO", "codigo of the tenant to seed")
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "password for the seeded users")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	stores, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer stores.Close()

	res, err := seed.Run(ctx, stores.Gorm, seed.Options{
		EmpresaCodigo: seedEmpresa,
		Password:      seedPassword,
		BCryptCost:    cfg.Security.BCryptCost,
		Clear:         seedClear,
	}, logger.LoggerWrapper())
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	fmt.Printf("Seeded empresa %s (id %d)\n", seedEmpresa, res.EmpresaID)
	for name, id := range res.Users {
		fmt.Printf("  user %-10s id %d\n", name, id)
	}
	return nil
}
