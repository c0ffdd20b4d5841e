package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"beo-inventory-backend/internal/db"
)

// MigrateCmd returns the migrate command.
func MigrateCmd(env *Env) *cobra.Command {
	var skipSeed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := env.open()
			if err != nil {
				return err
			}
			if err := db.Migrate(gormDB); err != nil {
				return err
			}
			if env.Config.Database.EnforceSingleActiveLoan {
				if err := db.ApplyConstraints(gormDB); err != nil {
					return err
				}
			}
			if !skipSeed {
				if err := db.Seed(gormDB, env.Config.Lending); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", okColor.Sprint("OK"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "do not insert default categories and location")
	return cmd
}
