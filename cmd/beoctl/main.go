package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"beo-inventory-backend/config"
	"beo-inventory-backend/internal/cli"
)

func main() {
	_ = godotenv.Load()

	env := &cli.Env{}

	rootCmd := &cobra.Command{
		Use:   "beoctl",
		Short: "Operator tool for the orthopedic lending inventory",
		Long: `beoctl runs maintenance tasks against the inventory database:
schema migration, consistency checks, repairs and history lookups.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			loaded, err := config.Load(path)
			switch {
			case errors.Is(err, os.ErrNotExist):
				loaded = config.Default()
			case err != nil:
				return fmt.Errorf("failed to load configuration from %s: %w", path, err)
			}
			*env = *cli.NewEnv(loaded)
			return nil
		},
	}

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config/config.yaml"
	}
	rootCmd.PersistentFlags().String("config", defaultPath, "path to the configuration file")

	rootCmd.AddCommand(cli.MigrateCmd(env))
	rootCmd.AddCommand(cli.CheckCmd(env))
	rootCmd.AddCommand(cli.RepairCmd(env))
	rootCmd.AddCommand(cli.HistoryCmd(env))
	rootCmd.AddCommand(cli.OverdueCmd(env))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
