package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Well-known artifact file names, one per pipeline stage.
const (
	EnhancedDesigns     = "enhanced_designs.json"
	ValidatedEntities   = "validated_entities.json"
	SubjectObjectPairs  = "subject_object_pairs.json"
	ValidatedPairs      = "validated_pairs.json"
	PairsWithPredicates = "subject_object_pairs_with_predicates.json"
	ValidatedTriples    = "validated_triples.json"
)

func readRaw(path string) ([]json.RawMessage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, errors.Wrapf(err, "decode artifact %s", path)
	}
	return rows, nil
}

// Read decodes the artifact at path into rows of T. A missing file yields no rows.
func Read[T any](path string) ([]T, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}
		return nil, errors.Wrapf(err, "read artifact %s", path)
	}
	var rows []T
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, errors.Wrapf(err, "decode artifact %s", path)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// writeAtomic replaces path with b through a temp file in the same directory.
func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create artifact directory")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp artifact")
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "write temp artifact")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "close temp artifact")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "replace artifact")
	}
	return nil
}
