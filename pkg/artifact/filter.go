package artifact

import (
	"os"
	"path/filepath"

	"coin-design-enrich/pkg/model"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// FilterProcessed drops the rows whose key already appears as a design_id in
// the artifact at path. If the artifact does not exist yet every row is
// returned and the artifact directory is created.
func FilterProcessed[T any](rows []T, key func(T) int, path string) ([]T, error) {
	recs, err := Read[model.Record](path)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, errors.Wrap(err, "create artifact directory")
			}
			zap.S().Infof("artifact %s does not exist, nothing filtered", path)
			return rows, nil
		}
	}

	done := make(map[int]struct{}, len(recs))
	for i, rec := range recs {
		raw, ok := rec[model.DesignIDField]
		if !ok || raw == nil {
			zap.S().Warnf("artifact %s row %d: no design_id", path, i)
			continue
		}
		id, err := cast.ToIntE(raw)
		if err != nil {
			zap.S().Warnf("artifact %s row %d: unusable design_id %v", path, i, raw)
			continue
		}
		done[id] = struct{}{}
	}

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if _, ok := done[key(r)]; !ok {
			out = append(out, r)
		}
	}
	zap.S().Infof("%d of %d rows still to process against %s", len(out), len(rows), filepath.Base(path))
	return out, nil
}

// FilterPendingPredicates drops the pairs whose (design_id, s_o_id) already
// carries a non-null predicate in the artifact at path. The literal "NULL"
// counts as an answer.
func FilterPendingPredicates(pairs []model.Pair, path string) ([]model.Pair, error) {
	recs, err := Read[model.Record](path)
	if err != nil {
		return nil, err
	}
	answered := make(map[model.PairKey]struct{}, len(recs))
	for _, rec := range recs {
		if p, ok := rec["predicate"]; !ok || p == nil {
			continue
		}
		raw, ok := rec[model.DesignIDField]
		if !ok || raw == nil {
			continue
		}
		id, err := cast.ToIntE(raw)
		if err != nil {
			continue
		}
		soID, err := cast.ToStringE(rec["s_o_id"])
		if err != nil {
			continue
		}
		answered[model.PairKey{DesignID: id, SOID: soID}] = struct{}{}
	}

	out := make([]model.Pair, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := answered[p.Key()]; !ok {
			out = append(out, p)
		}
	}
	zap.S().Infof("%d of %d pairs still need a predicate", len(out), len(pairs))
	return out, nil
}
