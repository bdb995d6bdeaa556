package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// MySQLConfig describes the relational store holding the raw designs and entity lists.
type MySQLConfig struct {
	Host     string   `json:"host" yaml:"host"`
	Port     int      `json:"port" yaml:"port"`
	User     string   `json:"user" yaml:"user"`
	Password string   `json:"password" yaml:"password"`
	Database string   `json:"database" yaml:"database"`
	Replicas []string `json:"replicas" yaml:"replicas"` // extra read-only DSNs
	MaxIdle  int      `json:"maxIdle" yaml:"maxIdle"`
	MaxOpen  int      `json:"maxOpen" yaml:"maxOpen"`
}

func (m *MySQLConfig) Validate() []error {
	var errs = make([]error, 0)
	if m.Host == "" {
		errs = append(errs, errors.New("mysql host must not be empty"))
	}
	if m.Port <= 0 || m.Port > 65535 {
		errs = append(errs, errors.Errorf("mysql port %d out of range", m.Port))
	}
	if m.Database == "" {
		errs = append(errs, errors.New("mysql database must not be empty"))
	}
	return errs
}

func NewDefaultMySQLConfig() *MySQLConfig {
	return &MySQLConfig{
		Host:     "127.0.0.1",
		Port:     3306,
		User:     "root",
		Database: "nlp_challenge",
		MaxIdle:  2,
		MaxOpen:  4,
	}
}

func (m *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.User, m.Password, m.Host, m.Port, m.Database)
}
