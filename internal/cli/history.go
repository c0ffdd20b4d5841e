package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"beo-inventory-backend/internal/store"
)

// HistoryCmd returns the history command.
func HistoryCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "history <item-id>",
		Short: "Print the status history of an item, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			gormDB, err := env.open()
			if err != nil {
				return err
			}

			s := store.NewGormStore(gormDB)
			item, err := s.GetItem(cmd.Context(), itemID)
			if err != nil {
				return err
			}
			entries, err := s.ListStatusHistory(cmd.Context(), itemID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s [%s]\n", item.Code, item.Name, item.Status)
			for _, h := range entries {
				prior := string(h.PriorStatus)
				if prior == "" {
					prior = "-"
				}
				fmt.Fprintf(out, "  %s  %-11s -> %-11s %-20s %s",
					h.ChangedAt.Format(time.RFC3339), prior, h.NewStatus, h.Reason, dimColor.Sprint(h.Operator))
				if h.LoanID != nil {
					fmt.Fprintf(out, "  loan %s", *h.LoanID)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
