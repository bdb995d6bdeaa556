package service

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"coin-design-enrich/config"
	"coin-design-enrich/pkg/model"
	"coin-design-enrich/pkg/preprocess"
)

// ErrDesignNotFound is returned by QueryDesign for an unknown id.
var ErrDesignNotFound = errors.New("design not found")

var csvHeader = []string{"id", "design_en", "design_en_orig", "annotations"}

// DesignSource yields the raw designs and the entity dictionary.
type DesignSource interface {
	Designs(ctx context.Context) ([]model.Design, error)
	Entities(ctx context.Context) ([]model.EntityRow, error)
}

// DesignLoader serves annotated designs from the CSV cache, building the
// cache from the source on first use.
type DesignLoader struct {
	cfg    *config.PipelineConfig
	source DesignSource
}

func NewDesignLoader(cfg *config.PipelineConfig, source DesignSource) *DesignLoader {
	return &DesignLoader{cfg: cfg, source: source}
}

// CachePath is where the annotated designs are cached.
func (l *DesignLoader) CachePath() string {
	return filepath.Join(l.cfg.CSVPath, l.cfg.CSVDesignsFilename)
}

// Load reads the cache if present, otherwise preprocesses the source and writes the cache.
func (l *DesignLoader) Load(ctx context.Context) ([]model.Design, error) {
	path := l.CachePath()
	zap.S().Infof("checking if file %s exists", path)
	if _, err := os.Stat(path); err == nil {
		designs, err := ReadDesignsCSV(path)
		if err != nil {
			return nil, err
		}
		zap.S().Infof("loaded %d designs from %s", len(designs), path)
		return designs, nil
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	zap.S().Info("design cache does not exist, loading from database and running preprocessing")
	designs, err := l.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	return designs, nil
}

// Rebuild preprocesses the source designs and overwrites the cache.
func (l *DesignLoader) Rebuild(ctx context.Context) ([]model.Design, error) {
	if l.source == nil {
		return nil, errors.New("no design source configured")
	}
	raw, err := l.source.Designs(ctx)
	if err != nil {
		return nil, err
	}
	entities, err := l.source.Entities(ctx)
	if err != nil {
		return nil, err
	}
	designs := preprocess.Prepare(raw, entities)
	if err := WriteDesignsCSV(l.CachePath(), designs); err != nil {
		return nil, err
	}
	zap.S().Infof("preprocessed designs saved to %s", l.CachePath())
	return designs, nil
}

// ReadDesignsCSV reads a design cache. Columns are located by header name.
func ReadDesignsCSV(path string) ([]model.Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "read header of %s", path)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, name := range []string{"id", "design_en", "annotations"} {
		if _, ok := col[name]; !ok {
			return nil, errors.Errorf("%s: missing column %q", path, name)
		}
	}
	origCol, hasOrig := col["design_en_orig"]

	var designs []model.Design
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", path, line)
		}
		id, err := strconv.Atoi(rec[col["id"]])
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d: id", path, line)
		}
		spans, err := preprocess.ParseAnnotations(rec[col["annotations"]])
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d: annotations", path, line)
		}
		d := model.Design{ID: id, DesignEn: rec[col["design_en"]], Annotations: spans}
		if hasOrig {
			d.DesignEnOrig = rec[origCol]
		}
		designs = append(designs, d)
	}
	return designs, nil
}

// WriteDesignsCSV writes the design cache, creating its directory.
func WriteDesignsCSV(path string, designs []model.Design) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create csv directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "write csv header")
	}
	for _, d := range designs {
		row := []string{
			strconv.Itoa(d.ID),
			d.DesignEn,
			d.DesignEnOrig,
			preprocess.FormatAnnotations(d.Annotations),
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "write design %d", d.ID)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "flush csv")
	}
	return f.Close()
}

// DesignView is the summary printed by the query command. Strings holds the
// annotated surfaces and Objects their classes, index aligned.
type DesignView struct {
	ID         int      `json:"id"`
	FullDesign string   `json:"full_design"`
	Strings    []string `json:"strings"`
	Objects    []string `json:"objects"`
}

// QueryDesign looks up one design and its annotated mentions.
func QueryDesign(designs []model.Design, id int) (DesignView, error) {
	for _, d := range designs {
		if d.ID != id {
			continue
		}
		mentions := preprocess.ListOfStrings(d)
		return DesignView{
			ID:         d.ID,
			FullDesign: d.DesignEn,
			Strings:    mentions.Surfaces(),
			Objects:    mentions.Classes(),
		}, nil
	}
	return DesignView{}, errors.Wrapf(ErrDesignNotFound, "id %d", id)
}
