package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newListUnitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-units",
		Short: "List every unit known to the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/units/")
			if err != nil {
				return fmt.Errorf("list units: %w", err)
			}

			var units []unitView
			if err := json.Unmarshal(resp.Data, &units); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(units) == 0 {
				fmt.Println("No units known.")
				return nil
			}

			fmt.Printf("%-30s  %-12s  %s\n", "UNIT", "TYPE", "STATE")
			fmt.Printf("%-30s  %-12s  %s\n", "----", "----", "-----")
			for _, u := range units {
				fmt.Printf("%-30s  %-12s  %s\n", u.Principal, u.Type, u.State)
			}
			return nil
		},
	}
}
