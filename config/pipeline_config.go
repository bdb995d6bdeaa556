package config

import (
	"github.com/pkg/errors"
)

// PipelineConfig holds the on-disk layout of caches, artifacts and batch files.
type PipelineConfig struct {
	IDCol              string `json:"idCol" yaml:"idCol"`
	DesignCol          string `json:"designCol" yaml:"designCol"`
	CSVPath            string `json:"csvPath" yaml:"csvPath"`
	CSVDesignsFilename string `json:"csvDesignsFilename" yaml:"csvDesignsFilename"`
	JSONPath           string `json:"jsonPath" yaml:"jsonPath"`
	TmpPath            string `json:"tmpPath" yaml:"tmpPath"`
	LedgerFilename     string `json:"ledgerFilename" yaml:"ledgerFilename"`
	LedgerScope        string `json:"ledgerScope" yaml:"ledgerScope"` // step | ledger
	BatchSize          int    `json:"batchSize" yaml:"batchSize"`
}

func (p *PipelineConfig) Validate() []error {
	var errs = make([]error, 0)
	if p.CSVPath == "" || p.CSVDesignsFilename == "" {
		errs = append(errs, errors.New("pipeline csvPath and csvDesignsFilename must be set"))
	}
	if p.JSONPath == "" {
		errs = append(errs, errors.New("pipeline jsonPath must be set"))
	}
	if p.TmpPath == "" {
		errs = append(errs, errors.New("pipeline tmpPath must be set"))
	}
	if p.LedgerFilename == "" {
		errs = append(errs, errors.New("pipeline ledgerFilename must be set"))
	}
	switch p.LedgerScope {
	case "", "step", "ledger":
	default:
		errs = append(errs, errors.Errorf("pipeline ledgerScope must be step or ledger, got %q", p.LedgerScope))
	}
	if p.BatchSize <= 0 {
		errs = append(errs, errors.Errorf("pipeline batchSize must be positive, got %d", p.BatchSize))
	}
	return errs
}

func NewDefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		IDCol:              "id",
		DesignCol:          "design_en",
		CSVPath:            "./data/source/lists/csv",
		CSVDesignsFilename: "annotated_designs.csv",
		JSONPath:           "./data/results/json",
		TmpPath:            "./data/results/tmp",
		LedgerFilename:     "batch_jobs.json",
		LedgerScope:        "step",
		BatchSize:          10,
	}
}
