package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DuckDBConfig points at the analytics database the artifacts are exported to.
type DuckDBConfig struct {
	DBPath string `json:"dbPath" yaml:"dbPath"`
}

func (d *DuckDBConfig) Validate() []error {
	var errs = make([]error, 0)
	if d.DBPath == "" {
		errs = append(errs, errors.Errorf("duckdb dbPath must not be empty"))
		return errs
	}

	dir := filepath.Dir(d.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		errs = append(errs, errors.Errorf("create duckdb directory: %v", err))
	}

	return errs
}

func NewDefaultDuckDBConfig() *DuckDBConfig {
	return &DuckDBConfig{
		DBPath: "./data/results/enrichment.duckdb",
	}
}

func (d *DuckDBConfig) DSN() string {
	return d.DBPath
}
