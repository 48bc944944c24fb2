package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type edgeView struct {
	To       string `json:"to"`
	Relation string `json:"relation"`
}

type unitView struct {
	Principal string     `json:"principal"`
	Aliases   []string   `json:"aliases"`
	Type      string     `json:"type"`
	State     string     `json:"state"`
	OutEdges  []edgeView `json:"out_edges"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <unit>",
		Short: "Show a unit's current state and declared edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit := args[0]
			resp, err := client.Get("/api/v1/units/" + unit + "/")
			if err != nil {
				return fmt.Errorf("get unit: %w", err)
			}

			var uv unitView
			if err := json.Unmarshal(resp.Data, &uv); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Unit:    %s\n", uv.Principal)
			if len(uv.Aliases) > 1 {
				fmt.Printf("Aliases: %v\n", uv.Aliases)
			}
			fmt.Printf("Type:    %s\n", uv.Type)
			fmt.Printf("State:   %s\n", uv.State)
			if len(uv.OutEdges) > 0 {
				fmt.Println("Edges:")
				for _, e := range uv.OutEdges {
					fmt.Printf("  -> %-30s %s\n", e.To, e.Relation)
				}
			}
			return nil
		},
	}
}
