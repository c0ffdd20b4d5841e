package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"beo-inventory-backend/internal/integrity"
	"beo-inventory-backend/internal/lending"
)

// RepairCmd returns the repair command.
func RepairCmd(env *Env) *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Check, then repair every divergence that can be fixed automatically",
		Long: `Run the consistency check and hand the report to the repair procedure.
Duplicate active loans are never repaired; they are listed for an
operator to resolve by hand.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if operator == "" {
				return fmt.Errorf("--operator is required")
			}
			gormDB, err := env.open()
			if err != nil {
				return err
			}

			report, err := integrity.NewChecker(gormDB).CheckIntegrity(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderReport(out, report)
			if report.Empty() {
				return nil
			}

			repairer := integrity.NewRepairer(lending.NewEngine(gormDB))
			repairLog, err := repairer.Repair(cmd.Context(), report, operator)
			if repairLog != nil {
				renderRepairLog(out, repairLog)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&operator, "operator", "", "name recorded in the status history")
	return cmd
}

func renderRepairLog(out io.Writer, l *integrity.RepairLog) {
	fmt.Fprintf(out, "\nRepair run %s by %s\n", l.RunID, l.Operator)
	for _, a := range l.Actions {
		fmt.Fprintf(out, "  %s %-22s %s", outcomeLabel(a.Outcome), a.Divergence.Category, describe(a.Divergence))
		if a.Detail != "" {
			fmt.Fprintf(out, " %s", dimColor.Sprint("("+a.Detail+")"))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%d repaired, %d skipped, %d unresolvable, %d failed\n",
		l.Count(integrity.OutcomeRepaired), l.Count(integrity.OutcomeSkipped),
		l.Count(integrity.OutcomeUnresolvable), l.Count(integrity.OutcomeFailed))
}

func outcomeLabel(o integrity.Outcome) string {
	label := fmt.Sprintf("%-12s", o)
	switch o {
	case integrity.OutcomeRepaired:
		return okColor.Sprint(label)
	case integrity.OutcomeSkipped:
		return dimColor.Sprint(label)
	case integrity.OutcomeUnresolvable:
		return warnColor.Sprint(label)
	}
	return badColor.Sprint(label)
}
