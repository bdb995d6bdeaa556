package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"coin-design-enrich/pkg/model"
)

// EnhanceInput is one design with its dictionary mentions.
type EnhanceInput struct {
	DesignID      int
	Design        string
	ListOfStrings model.EntityList
}

// EntityCheckInput pairs the dictionary mentions with the model's enhanced list.
type EntityCheckInput struct {
	DesignID int
	Design   string
	Original model.EntityList
	Enhanced model.EntityList
}

// PairsInput is one design with its enhanced mentions.
type PairsInput struct {
	DesignID int
	Design   string
	Entities model.EntityList
}

// PairInput is one subject-object pair with its design text.
type PairInput struct {
	model.Pair
	Design string
}

// TripleInput is one triple with its design text.
type TripleInput struct {
	model.Triple
	Design string
}

var funcs = template.FuncMap{
	"tuples": Tuples,
}

var (
	enhanceTmpl          = template.Must(template.New("enhance").Funcs(funcs).Parse(enhanceText))
	validateEntitiesTmpl = template.Must(template.New("validate_entities").Funcs(funcs).Parse(validateEntitiesText))
	pairsTmpl            = template.Must(template.New("pairs").Funcs(funcs).Parse(pairsText))
	validatePairsTmpl    = template.Must(template.New("validate_pairs").Funcs(funcs).Parse(validatePairsText))
	predicatesTmpl       = template.Must(template.New("predicates").Funcs(funcs).Parse(predicatesText))
	validateTriplesTmpl  = template.Must(template.New("validate_triples").Funcs(funcs).Parse(validateTriplesText))
)

// Tuples renders mentions the way the prompts show them: [("Eros", "PERSON"), ("oar", "OBJECT")].
func Tuples(l model.EntityList) string {
	parts := make([]string, 0, len(l))
	for _, m := range l {
		parts = append(parts, fmt.Sprintf("(%q, %q)", m.Surface(), m.Class()))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Chunks splits rows into consecutive groups of at most size rows.
func Chunks[T any](rows []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	out := make([][]T, 0, (len(rows)+size-1)/size)
	for i := 0; i < len(rows); i += size {
		end := min(i+size, len(rows))
		out = append(out, rows[i:end])
	}
	return out
}

func render[T any](tmpl *template.Template, rows []T, batchSize int) ([]string, error) {
	chunks := Chunks(rows, batchSize)
	prompts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		var b strings.Builder
		if err := tmpl.Execute(&b, chunk); err != nil {
			return nil, errors.Wrapf(err, "render %s prompt %d", tmpl.Name(), i)
		}
		prompts = append(prompts, b.String())
	}
	return prompts, nil
}

func EnhanceEntities(rows []EnhanceInput, batchSize int) ([]string, error) {
	return render(enhanceTmpl, rows, batchSize)
}

func ValidateEntities(rows []EntityCheckInput, batchSize int) ([]string, error) {
	return render(validateEntitiesTmpl, rows, batchSize)
}

func FindPairs(rows []PairsInput, batchSize int) ([]string, error) {
	return render(pairsTmpl, rows, batchSize)
}

func ValidatePairs(rows []PairInput, batchSize int) ([]string, error) {
	return render(validatePairsTmpl, rows, batchSize)
}

func FindPredicates(rows []PairInput, batchSize int) ([]string, error) {
	return render(predicatesTmpl, rows, batchSize)
}

func ValidateTriples(rows []TripleInput, batchSize int) ([]string, error) {
	return render(validateTriplesTmpl, rows, batchSize)
}
