package preprocess

import (
	"go.uber.org/zap"

	"coin-design-enrich/pkg/model"
)

// Prepare annotates designs, drops the ones without entities, rewrites the
// rest into canonical form and annotates them again. DesignEnOrig keeps the
// text as loaded.
func Prepare(designs []model.Design, entities []model.EntityRow) []model.Design {
	annotator := NewAnnotator(entities)
	rules := RejectRomanSuffix(BuildRules(entities))
	pre := NewPreprocessor(rules)
	zap.S().Infof("preprocess: %d designs, %d entities, %d rules", len(designs), len(entities), len(rules))

	out := make([]model.Design, 0, len(designs))
	var droppedRaw, droppedClean int
	for _, d := range designs {
		if len(annotator.Annotate(d.DesignEn)) == 0 {
			droppedRaw++
			continue
		}
		orig := d.DesignEn
		if d.DesignEnOrig != "" {
			orig = d.DesignEnOrig
		}
		text := StripMarks(pre.Apply(CleanDesignText(d.DesignEn)))
		spans := annotator.Annotate(text)
		if len(spans) == 0 {
			droppedClean++
			continue
		}
		out = append(out, model.Design{
			ID:           d.ID,
			DesignEn:     text,
			DesignEnOrig: orig,
			Annotations:  spans,
		})
	}
	zap.S().Infof("preprocess: kept %d designs, dropped %d unannotated and %d after cleaning",
		len(out), droppedRaw, droppedClean)
	return out
}
