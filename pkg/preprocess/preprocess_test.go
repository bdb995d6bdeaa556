package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-design-enrich/pkg/model"
)

func strPtr(s string) *string { return &s }

func testEntities() []model.EntityRow {
	return []model.EntityRow{
		{ID: 1, NameEn: "Apollo", AlternativeNamesEn: strPtr("Apollon, Phoebus"), Class: model.ClassPerson},
		{ID: 2, NameEn: "Ptolemy I", AlternativeNamesEn: strPtr("Ptolemy I., Ptolemy Soter"), Class: model.ClassPerson},
		{ID: 3, NameEn: "horse", Class: model.ClassAnimal},
		{ID: 4, NameEn: "man", Class: model.ClassPerson},
		{ID: 5, NameEn: "lyre", AlternativeNamesEn: strPtr("kithara"), Class: model.ClassObject},
		{ID: 6, NameEn: "laurel branch", AlternativeNamesEn: strPtr("laurel"), Class: model.ClassPlant},
	}
}

func TestBuildRules(t *testing.T) {
	rules := BuildRules(testEntities())
	require.GreaterOrEqual(t, len(rules), 2)
	assert.Equal(t, Rule{Alt: "horseman", Canonical: "horse man"}, rules[0])
	assert.Equal(t, Rule{Alt: "horsemen", Canonical: "horse men"}, rules[1])
	assert.Contains(t, rules, Rule{Alt: "Phoebus", Canonical: "Apollo"})
	assert.Contains(t, rules, Rule{Alt: "Ptolemy I.", Canonical: "Ptolemy I"})
	assert.Contains(t, rules, Rule{Alt: "kithara", Canonical: "lyre"})
}

func TestBuildRulesIsPure(t *testing.T) {
	entities := testEntities()
	first := BuildRules(entities)
	second := BuildRules(entities)
	assert.Equal(t, first, second)
	assert.Len(t, BuildRules(nil), 2)
}

func TestBuildRulesLaterMappingWins(t *testing.T) {
	rules := BuildRules([]model.EntityRow{
		{NameEn: "Zeus", AlternativeNamesEn: strPtr("Jupiter")},
		{NameEn: "Iuppiter", AlternativeNamesEn: strPtr("Jupiter")},
	})
	require.Len(t, rules, 3)
	assert.Equal(t, Rule{Alt: "Jupiter", Canonical: "Iuppiter"}, rules[2])
}

func TestRejectRomanSuffix(t *testing.T) {
	rules := RejectRomanSuffix(BuildRules(testEntities()))
	for _, r := range rules {
		assert.False(t, HasRomanSuffix(r.Alt), r.Alt)
	}
	assert.Contains(t, rules, Rule{Alt: "Ptolemy Soter", Canonical: "Ptolemy I"})
	assert.True(t, HasRomanSuffix("Antiochus IV. Epiphanes"))
	assert.False(t, HasRomanSuffix("Antiochus IV"))
}

func TestPreprocessorApply(t *testing.T) {
	p := NewPreprocessor(RejectRomanSuffix(BuildRules(testEntities())))
	cases := []struct {
		in, want string
	}{
		{"Phoebus holding kithara", "Apollo holding lyre"},
		{"horseman riding right", "horse man riding right"},
		{"two horsemen", "two horse men"},
		{"horsemanship", "horsemanship"},
		{"Apollon, laureate", "Apollo, laureate"},
		{"Ptolemy Soter right", "Ptolemy I right"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, p.Apply(c.in), c.in)
	}
	assert.Equal(t, "unchanged", NewPreprocessor(nil).Apply("unchanged"))
}

func TestCleanAndStrip(t *testing.T) {
	assert.Equal(t, "Bust of Ptolemy I right", CleanDesignText("Bust of Ptolemy I. right"))
	assert.Equal(t, "Antiochus III and Antiochus IV", CleanDesignText("Antiochus III. and Antiochus IV."))
	assert.Equal(t, "Head of Apollo laureate", StripMarks("Head of Apollo (laureate?)"))
}

func TestAnnotate(t *testing.T) {
	a := NewAnnotator(testEntities())
	spans := a.Annotate("Apollo holding laurel branch and lyre")
	assert.Equal(t, []model.Annotation{
		{Start: 0, End: 6, Label: model.ClassPerson},
		{Start: 15, End: 28, Label: model.ClassPlant},
		{Start: 33, End: 37, Label: model.ClassObject},
	}, spans)

	assert.Empty(t, a.Annotate("Legend in exergue"))
	assert.Empty(t, NewAnnotator(nil).Annotate("Apollo"))
}

func TestAnnotateWholeWordsAndAdjacent(t *testing.T) {
	a := NewAnnotator(testEntities())
	spans := a.Annotate("horse man")
	assert.Equal(t, []model.Annotation{
		{Start: 0, End: 5, Label: model.ClassAnimal},
		{Start: 6, End: 9, Label: model.ClassPerson},
	}, spans)
	assert.Empty(t, a.Annotate("horses mane"))
}

func TestAnnotateRuneOffsets(t *testing.T) {
	a := NewAnnotator(testEntities())
	spans := a.Annotate("Büste Apollo")
	require.Len(t, spans, 1)
	assert.Equal(t, 6, spans[0].Start)
	assert.Equal(t, 12, spans[0].End)
}

func TestListOfStrings(t *testing.T) {
	d := model.Design{
		ID:       7,
		DesignEn: "Büste Apollo with lyre",
		Annotations: []model.Annotation{
			{Start: 6, End: 12, Label: model.ClassPerson},
			{Start: 18, End: 22, Label: model.ClassObject},
			{Start: 30, End: 40, Label: model.ClassObject},
		},
	}
	assert.Equal(t, model.EntityList{
		model.NewMention("Apollo", model.ClassPerson),
		model.NewMention("lyre", model.ClassObject),
	}, ListOfStrings(d))
}

func TestAnnotationLiteral(t *testing.T) {
	spans := []model.Annotation{
		{Start: 0, End: 9, Label: "PERSON"},
		{Start: 12, End: 15, Label: "OBJECT"},
	}
	lit := FormatAnnotations(spans)
	assert.Equal(t, "[(0, 9, 'PERSON'), (12, 15, 'OBJECT')]", lit)

	parsed, err := ParseAnnotations(lit)
	require.NoError(t, err)
	assert.Equal(t, spans, parsed)

	parsed, err = ParseAnnotations(`[[0, 9, "PERSON"]]`)
	require.NoError(t, err)
	assert.Equal(t, spans[:1], parsed)

	parsed, err = ParseAnnotations("[]")
	require.NoError(t, err)
	assert.Empty(t, parsed)
	assert.Equal(t, "[]", FormatAnnotations(nil))

	_, err = ParseAnnotations("(0, 9, 'PERSON')")
	assert.Error(t, err)
	_, err = ParseAnnotations("[(9, 0, 'PERSON')]")
	assert.Error(t, err)
	_, err = ParseAnnotations("[garbage]")
	assert.Error(t, err)
}

func TestParseAnnotationsRejectsDamagedTuples(t *testing.T) {
	for _, lit := range []string{
		"[(0, 9, 'PERSON'), (12, x, 'OBJECT')]",
		"[junk (0, 9, 'PERSON')]",
		"[(0, 9, 'PERSON') (12, 15, 'OBJECT')]",
		"[(0, 9, 'PERSON'), oops]",
		`[(0, 9, 'PERSON")]`,
	} {
		_, err := ParseAnnotations(lit)
		assert.Error(t, err, lit)
	}

	parsed, err := ParseAnnotations("[ (0, 9, 'PERSON') ,(12, 15, \"OBJECT\"), ]")
	require.NoError(t, err)
	assert.Equal(t, []model.Annotation{
		{Start: 0, End: 9, Label: "PERSON"},
		{Start: 12, End: 15, Label: "OBJECT"},
	}, parsed)
}

func TestPrepare(t *testing.T) {
	designs := []model.Design{
		{ID: 1, DesignEn: "Phoebus (laureate) holding kithara"},
		{ID: 2, DesignEn: "Legend in four lines"},
		{ID: 3, DesignEn: "Bust of Ptolemy I. right"},
	}
	out := Prepare(designs, testEntities())
	require.Len(t, out, 2)

	assert.Equal(t, 1, out[0].ID)
	assert.Equal(t, "Apollo laureate holding lyre", out[0].DesignEn)
	assert.Equal(t, "Phoebus (laureate) holding kithara", out[0].DesignEnOrig)
	assert.Equal(t, model.EntityList{
		model.NewMention("Apollo", model.ClassPerson),
		model.NewMention("lyre", model.ClassObject),
	}, ListOfStrings(out[0]))

	assert.Equal(t, 3, out[1].ID)
	assert.Equal(t, "Bust of Ptolemy I right", out[1].DesignEn)
	require.Len(t, out[1].Annotations, 1)
	assert.Equal(t, "PERSON", out[1].Annotations[0].Label)
}
