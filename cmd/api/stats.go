package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"vet-clinic/internal/domain/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Imprime los números del dashboard como JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := loadApp()
		if err != nil {
			fatal("Invalid configuration", err)
		}

		ctx := context.Background()
		store, err := rt.openStore(ctx, false)
		if err != nil {
			fatal("Failed to open storage", err)
		}
		defer store.Close()

		snap, err := stats.NewService(store.Stats(), rt.loc).Compute(ctx)
		if err != nil {
			fatal("Failed to compute stats", err)
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(stats.ToResponse(snap)); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
