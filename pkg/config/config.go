// Package config loads typed settings from environment variables, seeded
// from the dotenv file named by -env or, failing that, ./.env.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	envFilePath string
	parseOnce   sync.Once
)

// MustNew is New for start-up code, where a bad setting is fatal.
func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New fills a T from variables named PREFIX_FIELD. Errors carry the prefix
// so the failing section stands out among the several main loads.
func New[T any](prefix string) (*T, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("load %s config: %w", section(prefix), err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("load %s config: %w", section(prefix), err)
	}
	return &conf, nil
}

func section(prefix string) string {
	if p := strings.TrimSpace(prefix); p != "" {
		return strings.ToUpper(p)
	}
	return "application"
}

func loadEnvFile() error {
	if path := resolveEnvPath(); path != "" {
		if err := exportEnvironment(path); err != nil {
			return fmt.Errorf("env file %s: %w", path, err)
		}
		return nil
	}
	return exportEnvironmentIfExists(".env")
}

func resolveEnvPath() string {
	parseOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFilePath, "env", "", "path to .env file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})
	return strings.TrimSpace(envFilePath)
}

func exportEnvironmentIfExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(path)
}

// exportEnvironment copies the file's keys into the process environment.
// Variables already set in the real environment win over the file.
func exportEnvironment(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}
	return nil
}
