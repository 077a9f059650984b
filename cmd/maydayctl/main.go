package main

import (
	"context"
	"fmt"
	"os"

	"mayday/coordinator/internal/config"
	"mayday/coordinator/internal/db"
	"mayday/coordinator/internal/logging"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// App holds what every subcommand needs.
type App struct {
	cfg *config.Config
	orm *gorm.DB
	ctx context.Context
}

var (
	configPath string
	app        *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "maydayctl",
		Short:         "Operator tooling for the mayday coordinator",
		Long:          `Runs schema migrations and one-off maintenance against the coordinator database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults to environment)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(closeEventCmd())
	rootCmd.AddCommand(reconcileUsersCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// initApp loads configuration and opens the database.
func initApp(ctx context.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		return err
	}

	orm, err := db.InitORM(cfg.Database)
	if err != nil {
		return err
	}

	app = &App{cfg: cfg, orm: orm, ctx: ctx}
	return nil
}
