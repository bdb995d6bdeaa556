package service

import (
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"coin-design-enrich/pkg/artifact"
	"coin-design-enrich/pkg/model"
	"coin-design-enrich/pkg/preprocess"
	"coin-design-enrich/pkg/prompt"
)

type Step string

const (
	StepEnhance          Step = "enhance"
	StepValidateEntities Step = "validate_entities"
	StepPairs            Step = "pairs"
	StepValidatePairs    Step = "validate_pairs"
	StepPredicates       Step = "predicates"
	StepValidateTriples  Step = "validate_triples"
)

// Steps lists the stages in pipeline order.
var Steps = []Step{
	StepEnhance,
	StepValidateEntities,
	StepPairs,
	StepValidatePairs,
	StepPredicates,
	StepValidateTriples,
}

func ParseStep(s string) (Step, error) {
	for _, st := range Steps {
		if string(st) == s {
			return st, nil
		}
	}
	return "", errors.Errorf("unknown step %q, want one of %v", s, Steps)
}

// stage binds a step to its input join, its prompt builder and its artifact.
type stage struct {
	step     Step
	artifact string
	// build returns the prompts for rows not yet in the artifact and how many rows they cover.
	build func(dir string, designs map[int]model.Design, batchSize int) ([]string, int, error)
	// merge decodes records, drops rows already in the artifact and appends the rest.
	merge func(dir string, records []model.Record) (int, error)
}

var stages = map[Step]stage{
	StepEnhance: {
		step:     StepEnhance,
		artifact: artifact.EnhancedDesigns,
		build:    buildEnhance,
		merge:    mergeByDesign[model.EnhancedDesign](artifact.EnhancedDesigns, func(r model.EnhancedDesign) int { return r.DesignID }),
	},
	StepValidateEntities: {
		step:     StepValidateEntities,
		artifact: artifact.ValidatedEntities,
		build:    buildValidateEntities,
		merge:    mergeByDesign[model.EntityValidation](artifact.ValidatedEntities, func(r model.EntityValidation) int { return r.DesignID }),
	},
	StepPairs: {
		step:     StepPairs,
		artifact: artifact.SubjectObjectPairs,
		build:    buildPairs,
		merge:    mergePairs,
	},
	StepValidatePairs: {
		step:     StepValidatePairs,
		artifact: artifact.ValidatedPairs,
		build:    buildValidatePairs,
		merge:    mergeByDesign[model.PairValidation](artifact.ValidatedPairs, func(r model.PairValidation) int { return r.DesignID }),
	},
	StepPredicates: {
		step:     StepPredicates,
		artifact: artifact.PairsWithPredicates,
		build:    buildPredicates,
		merge:    mergePredicates,
	},
	StepValidateTriples: {
		step:     StepValidateTriples,
		artifact: artifact.ValidatedTriples,
		build:    buildValidateTriples,
		merge:    mergeByDesign[model.TripleValidation](artifact.ValidatedTriples, func(r model.TripleValidation) int { return r.DesignID }),
	},
}

func indexDesigns(designs []model.Design) map[int]model.Design {
	m := make(map[int]model.Design, len(designs))
	for _, d := range designs {
		m[d.ID] = d
	}
	return m
}

func buildEnhance(dir string, designs map[int]model.Design, batchSize int) ([]string, int, error) {
	rows := make([]prompt.EnhanceInput, 0, len(designs))
	for _, d := range sortedDesigns(designs) {
		rows = append(rows, prompt.EnhanceInput{
			DesignID:      d.ID,
			Design:        d.DesignEn,
			ListOfStrings: preprocess.ListOfStrings(d),
		})
	}
	pending, err := artifact.FilterProcessed(rows, func(r prompt.EnhanceInput) int { return r.DesignID },
		filepath.Join(dir, artifact.EnhancedDesigns))
	if err != nil {
		return nil, 0, err
	}
	prompts, err := prompt.EnhanceEntities(pending, batchSize)
	return prompts, len(pending), err
}

func buildValidateEntities(dir string, designs map[int]model.Design, batchSize int) ([]string, int, error) {
	enhanced, err := artifact.Read[model.EnhancedDesign](filepath.Join(dir, artifact.EnhancedDesigns))
	if err != nil {
		return nil, 0, err
	}
	rows := make([]prompt.EntityCheckInput, 0, len(enhanced))
	for _, e := range enhanced {
		d, ok := designs[e.DesignID]
		if !ok {
			zap.S().Warnf("enhanced design %d has no source design, skipped", e.DesignID)
			continue
		}
		rows = append(rows, prompt.EntityCheckInput{
			DesignID: d.ID,
			Design:   d.DesignEn,
			Original: preprocess.ListOfStrings(d),
			Enhanced: e.NewListOfStrings,
		})
	}
	pending, err := artifact.FilterProcessed(rows, func(r prompt.EntityCheckInput) int { return r.DesignID },
		filepath.Join(dir, artifact.ValidatedEntities))
	if err != nil {
		return nil, 0, err
	}
	prompts, err := prompt.ValidateEntities(pending, batchSize)
	return prompts, len(pending), err
}

func buildPairs(dir string, designs map[int]model.Design, batchSize int) ([]string, int, error) {
	enhanced, err := artifact.Read[model.EnhancedDesign](filepath.Join(dir, artifact.EnhancedDesigns))
	if err != nil {
		return nil, 0, err
	}
	rows := make([]prompt.PairsInput, 0, len(enhanced))
	for _, e := range enhanced {
		d, ok := designs[e.DesignID]
		if !ok {
			zap.S().Warnf("enhanced design %d has no source design, skipped", e.DesignID)
			continue
		}
		rows = append(rows, prompt.PairsInput{DesignID: d.ID, Design: d.DesignEn, Entities: e.NewListOfStrings})
	}
	pending, err := artifact.FilterProcessed(rows, func(r prompt.PairsInput) int { return r.DesignID },
		filepath.Join(dir, artifact.SubjectObjectPairs))
	if err != nil {
		return nil, 0, err
	}
	prompts, err := prompt.FindPairs(pending, batchSize)
	return prompts, len(pending), err
}

// joinPairs attaches design texts to pairs. NULL pairs carry no relation and are left out.
func joinPairs(pairs []model.Pair, designs map[int]model.Design) []prompt.PairInput {
	rows := make([]prompt.PairInput, 0, len(pairs))
	for _, p := range pairs {
		if p.IsNull() {
			continue
		}
		d, ok := designs[p.DesignID]
		if !ok {
			zap.S().Warnf("pair %d/%s has no source design, skipped", p.DesignID, p.SOID)
			continue
		}
		rows = append(rows, prompt.PairInput{Pair: p, Design: d.DesignEn})
	}
	return rows
}

func buildValidatePairs(dir string, designs map[int]model.Design, batchSize int) ([]string, int, error) {
	pairs, err := artifact.Read[model.Pair](filepath.Join(dir, artifact.SubjectObjectPairs))
	if err != nil {
		return nil, 0, err
	}
	pending, err := artifact.FilterProcessed(joinPairs(pairs, designs), func(r prompt.PairInput) int { return r.DesignID },
		filepath.Join(dir, artifact.ValidatedPairs))
	if err != nil {
		return nil, 0, err
	}
	prompts, err := prompt.ValidatePairs(pending, batchSize)
	return prompts, len(pending), err
}

func buildPredicates(dir string, designs map[int]model.Design, batchSize int) ([]string, int, error) {
	pairs, err := artifact.Read[model.Pair](filepath.Join(dir, artifact.SubjectObjectPairs))
	if err != nil {
		return nil, 0, err
	}
	pendingPairs, err := artifact.FilterPendingPredicates(pairs, filepath.Join(dir, artifact.PairsWithPredicates))
	if err != nil {
		return nil, 0, err
	}
	rows := joinPairs(pendingPairs, designs)
	prompts, err := prompt.FindPredicates(rows, batchSize)
	return prompts, len(rows), err
}

func buildValidateTriples(dir string, designs map[int]model.Design, batchSize int) ([]string, int, error) {
	triples, err := artifact.Read[model.Triple](filepath.Join(dir, artifact.PairsWithPredicates))
	if err != nil {
		return nil, 0, err
	}
	rows := make([]prompt.TripleInput, 0, len(triples))
	for _, t := range triples {
		d, ok := designs[t.DesignID]
		if !ok {
			zap.S().Warnf("triple %d/%s has no source design, skipped", t.DesignID, t.SOID)
			continue
		}
		rows = append(rows, prompt.TripleInput{Triple: t, Design: d.DesignEn})
	}
	pending, err := artifact.FilterProcessed(rows, func(r prompt.TripleInput) int { return r.DesignID },
		filepath.Join(dir, artifact.ValidatedTriples))
	if err != nil {
		return nil, 0, err
	}
	prompts, err := prompt.ValidateTriples(pending, batchSize)
	return prompts, len(pending), err
}

func decode[T any](records []model.Record) []T {
	decoded := model.DecodeRecords[T](records)
	for _, err := range decoded.Rejected {
		zap.S().Warnf("rejected record: %v", err)
	}
	return decoded.Rows
}

func mergeByDesign[T any](name string, key func(T) int) func(string, []model.Record) (int, error) {
	return func(dir string, records []model.Record) (int, error) {
		path := filepath.Join(dir, name)
		rows, err := artifact.FilterProcessed(decode[T](records), key, path)
		if err != nil {
			return 0, err
		}
		if len(rows) == 0 {
			zap.S().Infof("no new rows for %s", name)
			return 0, nil
		}
		return artifact.Append(path, rows)
	}
}

func mergePairs(dir string, records []model.Record) (int, error) {
	pairs := decode[model.Pair](records)
	for _, k := range model.CheckPairIDs(pairs) {
		zap.S().Warnf("duplicate pair id %d/%s", k.DesignID, k.SOID)
	}
	path := filepath.Join(dir, artifact.SubjectObjectPairs)
	rows, err := artifact.FilterProcessed(pairs, func(p model.Pair) int { return p.DesignID }, path)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return artifact.Append(path, rows)
}

// mergePredicates joins predicate answers to their pairs and appends the triples
// whose pair has no predicate yet.
func mergePredicates(dir string, records []model.Record) (int, error) {
	pairs, err := artifact.Read[model.Pair](filepath.Join(dir, artifact.SubjectObjectPairs))
	if err != nil {
		return 0, err
	}
	byKey := make(map[model.PairKey]model.Pair, len(pairs))
	for _, p := range pairs {
		byKey[p.Key()] = p
	}

	triples := make([]model.Triple, 0, len(records))
	seen := make(map[model.PairKey]struct{}, len(records))
	for _, a := range decode[model.PredicateAssignment](records) {
		k := model.PairKey{DesignID: a.DesignID, SOID: a.SOID}
		p, ok := byKey[k]
		if !ok {
			zap.S().Warnf("predicate for unknown pair %d/%s, skipped", a.DesignID, a.SOID)
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		triples = append(triples, model.NewTriple(p, a.Predicate))
	}

	path := filepath.Join(dir, artifact.PairsWithPredicates)
	answered := make([]model.Pair, 0, len(triples))
	for _, t := range triples {
		answered = append(answered, t.Pair)
	}
	pending, err := artifact.FilterPendingPredicates(answered, path)
	if err != nil {
		return 0, err
	}
	keep := make(map[model.PairKey]struct{}, len(pending))
	for _, p := range pending {
		keep[p.Key()] = struct{}{}
	}
	rows := triples[:0]
	for _, t := range triples {
		if _, ok := keep[t.Key()]; ok {
			rows = append(rows, t)
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return artifact.Append(path, rows)
}
