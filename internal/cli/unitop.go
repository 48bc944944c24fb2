package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// jobView mirrors adminapi's jobView for decoding.
type jobView struct {
	ID            int64  `json:"id"`
	CorrelationID string `json:"correlation_id"`
	Unit          string `json:"unit"`
	Op            string `json:"op"`
	State         string `json:"state"`
}

type transactionView struct {
	ID        string    `json:"id"`
	Objective *jobView  `json:"objective,omitempty"`
	Jobs      []jobView `json:"jobs"`
}

// newUnitOpCmd builds a "<use> <unit>" command that POSTs to
// /api/v1/units/{unit}/{path} and prints the resulting transaction.
func newUnitOpCmd(use, path, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <unit>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit := args[0]
			resp, err := client.Post(fmt.Sprintf("/api/v1/units/%s/%s", unit, path), nil)
			if err != nil {
				return fmt.Errorf("%s %s: %w", path, unit, err)
			}

			var tx transactionView
			if err := json.Unmarshal(resp.Data, &tx); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Transaction %s queued:\n", tx.ID)
			for _, j := range tx.Jobs {
				fmt.Printf("  %-30s %-10s %s\n", j.Unit, j.Op, j.State)
			}
			return nil
		},
	}
}
