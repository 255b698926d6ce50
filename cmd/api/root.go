package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vet-clinic/internal/adapters/storage"
	"vet-clinic/internal/platform/config"
	"vet-clinic/internal/platform/logger"
)

var (
	configPath string
	verbose    bool
)

// rootCmd sin subcomando levanta el servidor HTTP.
var rootCmd = &cobra.Command{
	Use:   "vet-clinic",
	Short: "API de gestión de una clínica veterinaria",
	Long: `vet-clinic expone dueños, mascotas, citas y un dashboard por HTTP.
Sin subcomando se comporta como "serve".`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Archivo YAML de configuración (default $VETCLINIC_CONFIG o ./vetclinic.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Logs en nivel debug")
}

// app agrupa lo que comparten los subcomandos.
type app struct {
	cfg *config.Config
	log logger.Logger
	loc *time.Location
}

func loadApp() (*app, error) {
	if configPath != "" {
		if err := os.Setenv(config.EnvConfigPath, configPath); err != nil {
			return nil, err
		}
	}

	cfg, path, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if verbose {
		level = logger.Debug
	}
	log := logger.New(logger.Options{
		Level:  level,
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App,
		Output: os.Stderr,
	})
	if path != "" {
		log.Debug("config file loaded", map[string]any{"path": path})
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, loc: loc}, nil
}

func (rt *app) openStore(ctx context.Context, migrate bool) (storage.Store, error) {
	return storage.Open(ctx, storage.Options{
		Driver:     rt.cfg.Storage.Driver,
		DSN:        rt.cfg.Storage.DSN,
		SQLitePath: rt.cfg.Storage.SQLitePath,
		Migrate:    migrate,
	})
}
