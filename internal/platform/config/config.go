// Package config carga la configuración del servicio.
//
// Orden de precedencia (el último gana):
//  1. defaults
//  2. archivo YAML: $VETCLINIC_CONFIG o ./vetclinic.yaml
//  3. variables de entorno (un .env en el directorio actual se carga primero, sin pisar las existentes)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath     = "VETCLINIC_CONFIG"
	DefaultConfigPath = "./vetclinic.yaml"
)

type Config struct {
	App     string        `yaml:"app"`
	Port    string        `yaml:"port"`
	Storage StorageConfig `yaml:"storage"`
	Clinic  ClinicConfig  `yaml:"clinic"`
	Log     LogConfig     `yaml:"log"`
}

type StorageConfig struct {
	// Driver: memory | postgres | sqlite
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`
}

type ClinicConfig struct {
	// Timezone IANA con la que se calcula "hoy". Vacío = zona local del servidor.
	Timezone string `yaml:"timezone"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		App:  "vet-clinic",
		Port: "8080",
		Storage: StorageConfig{
			Driver:     "memory",
			SQLitePath: "./vetclinic.db",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load arma la configuración completa. Devuelve también el path del YAML usado ("" si ninguno).
func Load() (*Config, string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	path := FindConfigPath()
	if path != "" {
		var err error
		cfg, err = LoadFromPath(path)
		if err != nil {
			return nil, path, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// FindConfigPath devuelve el primer archivo de configuración que exista.
func FindConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

// LoadFromPath lee el YAML sobre los defaults (lo que falte queda con el default).
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(&c.App, "APP_NAME")
	set(&c.Port, "PORT")
	set(&c.Storage.Driver, "STORAGE_DRIVER")
	set(&c.Storage.DSN, "DB_DSN")
	set(&c.Storage.SQLitePath, "SQLITE_PATH")
	set(&c.Clinic.Timezone, "CLINIC_TIMEZONE")
	set(&c.Log.Level, "LOG_LEVEL")
	set(&c.Log.Format, "LOG_FORMAT")
}

func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "memory", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return errors.New("config: DB_DSN is required when STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q (memory|postgres|sqlite)", c.Storage.Driver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("config: port is required")
	}
	return nil
}

// Location resuelve la zona horaria de la clínica.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Clinic.Timezone)
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: invalid clinic timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Addr es la dirección de escucha del server HTTP.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
