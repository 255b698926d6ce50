package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vet-clinic/internal/adapters/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Crea el schema en postgres o sqlite (idempotente)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := loadApp()
		if err != nil {
			fatal("Invalid configuration", err)
		}

		if rt.cfg.Storage.Driver == storage.DriverMemory {
			fmt.Println("Driver memory: nothing to migrate")
			return
		}

		store, err := rt.openStore(context.Background(), true)
		if err != nil {
			fatal("Migration failed", err)
		}
		defer store.Close()

		fmt.Printf("Schema ready (%s)\n", rt.cfg.Storage.Driver)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
