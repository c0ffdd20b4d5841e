package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"beo-inventory-backend/internal/store"
)

// OverdueCmd returns the overdue command.
func OverdueCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List active loans past their expected return date",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := env.open()
			if err != nil {
				return err
			}
			now := time.Now()
			loans, err := store.NewGormStore(gormDB).ListOverdueLoans(cmd.Context(), now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(loans) == 0 {
				fmt.Fprintf(out, "%s no overdue loans\n", okColor.Sprint("OK"))
				return nil
			}
			for _, l := range loans {
				days := int(now.Sub(l.ExpectedReturnDate).Hours() / 24)
				fmt.Fprintf(out, "%s item %d beneficiary %d due %s %s\n",
					l.ID, l.ItemID, l.BeneficiaryID, l.ExpectedReturnDate.Format("2006-01-02"),
					warnColor.Sprintf("(%d days late)", days))
			}
			return nil
		},
	}
}
