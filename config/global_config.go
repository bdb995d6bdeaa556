package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type IConfig interface {
	Validate() []error
}

type GlobalConfig struct {
	MySQLConfig    *MySQLConfig    `json:"mysql" yaml:"mysql"`
	DuckDBConfig   *DuckDBConfig   `json:"duckdb" yaml:"duckdb"`
	LLMConfig      *LLMConfig      `json:"llm" yaml:"llm"`
	PipelineConfig *PipelineConfig `json:"pipeline" yaml:"pipeline"`
	LogConfig      *LogConfig      `json:"log" yaml:"log"`
}

func (g *GlobalConfig) Validate() []error {
	var errs = make([]error, 0)
	for _, c := range []IConfig{g.MySQLConfig, g.DuckDBConfig, g.LLMConfig, g.PipelineConfig, g.LogConfig} {
		if isNilConfig(c) {
			continue
		}
		if es := c.Validate(); len(es) > 0 {
			errs = append(errs, es...)
		}
	}
	if g.PipelineConfig == nil {
		errs = append(errs, errors.New("pipeline config is required"))
	}
	return errs
}

// isNilConfig guards against typed nil pointers stored in the interface.
func isNilConfig(c IConfig) bool {
	switch v := c.(type) {
	case *MySQLConfig:
		return v == nil
	case *DuckDBConfig:
		return v == nil
	case *LLMConfig:
		return v == nil
	case *PipelineConfig:
		return v == nil
	case *LogConfig:
		return v == nil
	}
	return c == nil
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		MySQLConfig:    NewDefaultMySQLConfig(),
		DuckDBConfig:   NewDefaultDuckDBConfig(),
		LLMConfig:      NewDefaultLLMConfig(),
		PipelineConfig: NewDefaultPipelineConfig(),
		LogConfig:      NewDefaultLogConfig(),
	}
}

func TryLoadFromDisk(configFilePath string) (*GlobalConfig, error) {
	_, err := os.Stat(configFilePath)
	if err != nil {
		return nil, err
	}
	dir, file := filepath.Split(configFilePath)
	fileType := filepath.Ext(file)
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(strings.TrimSuffix(file, fileType))
	v.SetConfigType(strings.TrimPrefix(fileType, "."))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
		return nil, errors.Errorf("parse config file: %s", err.Error())
	}
	cfg := NewDefaultGlobalConfig()
	if err := v.Unmarshal(cfg, func(config *mapstructure.DecoderConfig) {
		config.TagName = strings.TrimPrefix(fileType, ".")
	}); err != nil {
		return nil, err
	}
	if cfg.LLMConfig != nil && cfg.LLMConfig.APIKey == "" {
		cfg.LLMConfig.APIKey = os.Getenv(cfg.LLMConfig.APIKeyEnv)
	}
	return cfg, nil
}
