package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"beo-inventory-backend/internal/integrity"
)

// ErrDivergences is returned by check --strict when the data is inconsistent.
var ErrDivergences = errors.New("divergences found")

// CheckCmd returns the check command.
func CheckCmd(env *Env) *cobra.Command {
	var (
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report divergences between items, loans, history and location counts",
		Long: `Run the consistency check once and print the report.
Nothing is modified. With --strict the command exits non-zero when
any divergence is found, which suits cron and CI jobs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := env.open()
			if err != nil {
				return err
			}
			report, err := integrity.NewChecker(gormDB).CheckIntegrity(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				renderReport(out, report)
			}

			if strict && !report.Empty() {
				return ErrDivergences
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when divergences are found")
	return cmd
}

func renderReport(out io.Writer, report *integrity.Report) {
	if report.Empty() {
		fmt.Fprintf(out, "%s no divergences\n", okColor.Sprint("OK"))
		return
	}

	fmt.Fprintf(out, "%s %d divergence(s)\n", badColor.Sprint("FOUND"), len(report.Divergences))
	for _, d := range report.Divergences {
		fmt.Fprintf(out, "  %-22s %s\n", warnColor.Sprint(d.Category), describe(d))
	}
}

func describe(d integrity.Divergence) string {
	switch d.Category {
	case integrity.LocationCountDrift:
		return fmt.Sprintf("location %d: stored %d, counted %d", d.LocationID, d.DetectedCount, d.ExpectedCount)
	case integrity.DuplicateActiveLoan:
		return fmt.Sprintf("item %s (%d): active loans %v", d.ItemCode, d.ItemID, d.ActiveLoanIDs)
	}
	s := fmt.Sprintf("item %s (%d): %s", d.ItemCode, d.ItemID, d.DetectedStatus)
	if d.ExpectedStatus != "" {
		s += " -> " + string(d.ExpectedStatus)
	}
	return s
}
