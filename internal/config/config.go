package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// NetCDF reader backends.
const (
	BackendNetCDFC = "netcdf-c"
	BackendNative  = "native"
)

// Config holds server configuration.
type Config struct {
	Port               string
	DataDir            string
	Backend            string
	CORSAllowedOrigins []string
	LogLevel           slog.Level
}

// ErrInvalidEnvVar reports an environment variable whose value cannot be used.
type ErrInvalidEnvVar struct {
	Name   string
	Value  string
	Reason string
}

func (e *ErrInvalidEnvVar) Error() string {
	return fmt.Sprintf("invalid environment variable %s=%q: %s", e.Name, e.Value, e.Reason)
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. A missing file is reported as an error for
// the caller to log.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		DataDir: getEnv("DATA_DIR", "./data"),
	}

	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return nil, &ErrInvalidEnvVar{Name: "PORT", Value: cfg.Port, Reason: "must be a TCP port number"}
	}

	cfg.Backend, err = ParseBackend(getEnv("NETCDF_BACKEND", BackendNetCDFC))
	if err != nil {
		return nil, err
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	level := getEnv("LOG_LEVEL", "info")
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, &ErrInvalidEnvVar{Name: "LOG_LEVEL", Value: level, Reason: "must be debug, info, warn or error"}
	}

	return cfg, nil
}

// ParseBackend validates a NETCDF_BACKEND value. It is the single check for
// backend names; store.New calls it too.
func ParseBackend(s string) (string, error) {
	switch s {
	case BackendNetCDFC, BackendNative:
		return s, nil
	}
	return "", &ErrInvalidEnvVar{Name: "NETCDF_BACKEND", Value: s, Reason: "must be netcdf-c or native"}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
