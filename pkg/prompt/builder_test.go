package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-design-enrich/pkg/model"
)

func TestChunks(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunks(rows, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, Chunks(rows, 10))
	assert.Empty(t, Chunks([]int{}, 3))
	assert.Len(t, Chunks(rows, 0), 5)
}

func TestTuples(t *testing.T) {
	l := model.EntityList{
		model.NewMention("Eros", model.ClassPerson),
		model.NewMention("oar", model.ClassObject),
	}
	assert.Equal(t, `[("Eros", "PERSON"), ("oar", "OBJECT")]`, Tuples(l))
	assert.Equal(t, "[]", Tuples(nil))
}

func TestEnhanceEntities(t *testing.T) {
	rows := make([]EnhanceInput, 0, 25)
	for i := 1; i <= 25; i++ {
		rows = append(rows, EnhanceInput{
			DesignID:      i,
			Design:        "Apollo holding lyre",
			ListOfStrings: model.EntityList{model.NewMention("Apollo", model.ClassPerson)},
		})
	}
	prompts, err := EnhanceEntities(rows, 10)
	require.NoError(t, err)
	require.Len(t, prompts, 3)

	assert.Contains(t, prompts[0], "design_id: 1, ")
	assert.Contains(t, prompts[0], "design_id: 10, ")
	assert.NotContains(t, prompts[0], "design_id: 11, ")
	assert.Contains(t, prompts[2], "design_id: 25, ")
	assert.Equal(t, 5, strings.Count(prompts[2], `Original Design: "Apollo holding lyre"`))
	assert.Contains(t, prompts[0], `Original List of Strings: [("Apollo", "PERSON")]`)
}

func TestValidateEntities(t *testing.T) {
	prompts, err := ValidateEntities([]EntityCheckInput{{
		DesignID: 8,
		Design:   "Prize amphora on ornamental stand",
		Original: model.EntityList{model.NewMention("amphora", model.ClassObject)},
		Enhanced: model.EntityList{model.NewMention("amphora", model.ClassObject), model.NewMention("stand", model.ClassObject)},
	}}, 10)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `Enhanced List of Strings: [("amphora", "OBJECT"), ("stand", "OBJECT")]`)
	assert.Contains(t, prompts[0], `Design: "Prize amphora on ornamental stand"`)
}

func TestPairPrompts(t *testing.T) {
	pair := model.Pair{DesignID: 478, SOID: "a", Subject: "Eros", SubjectClass: "PERSON", Object: "dolphin", ObjectClass: "ANIMAL"}
	rows := []PairInput{{Pair: pair, Design: "Eros seated on dolphin"}}

	prompts, err := ValidatePairs(rows, 5)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `Subject: "Eros" (PERSON)`)
	assert.Contains(t, prompts[0], `s_o_id: "a"`)

	prompts, err = FindPredicates(rows, 5)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Object: dolphin (ANIMAL)")

	found, err := FindPairs([]PairsInput{{DesignID: 478, Design: "Eros seated on dolphin", Entities: model.EntityList{model.NewMention("Eros", "PERSON")}}}, 5)
	require.NoError(t, err)
	assert.Contains(t, found[0], `List of Strings: [("Eros", "PERSON")]`)
}

func TestValidateTriples(t *testing.T) {
	pair := model.Pair{DesignID: 53, SOID: "a", Subject: "Apollo", SubjectClass: "PERSON", Object: "wreath", ObjectClass: "OBJECT"}
	rows := []TripleInput{
		{Triple: model.NewTriple(pair, "wearing"), Design: "Wreath head of Apollo"},
		{Triple: model.Triple{Pair: pair}, Design: "Wreath head of Apollo"},
	}
	prompts, err := ValidateTriples(rows, 1)
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "Predicate: wearing,")
	assert.Contains(t, prompts[1], "Predicate: NULL,")
}

func TestEmptyInputBuildsNoPrompts(t *testing.T) {
	prompts, err := FindPairs(nil, 10)
	require.NoError(t, err)
	assert.Empty(t, prompts)
}
