package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-design-enrich/pkg/artifact"
	"coin-design-enrich/pkg/db"
	"coin-design-enrich/pkg/model"
)

func TestExportToDuckDB(t *testing.T) {
	dir := t.TempDir()
	pair := model.Pair{DesignID: 478, SOID: "a", Subject: "Eros", SubjectClass: "PERSON", Object: "dolphin", ObjectClass: "ANIMAL"}
	writeArtifact(t, dir, artifact.PairsWithPredicates, []model.Triple{
		model.NewTriple(pair, "seated_on"),
		{Pair: model.Pair{DesignID: 53, SOID: "a", Subject: "Apollo", SubjectClass: "PERSON", Object: "wreath", ObjectClass: "OBJECT"}},
	})
	writeArtifact(t, dir, artifact.ValidatedTriples, []model.TripleValidation{
		{DesignID: 478, SOID: "a", ValidityPred: 1, CommentPred: "Correct and meaningful SPO triple.", ImplicitPred: "NULL"},
	})
	writeArtifact(t, dir, artifact.EnhancedDesigns, []model.EnhancedDesign{
		{DesignID: 478, NewListOfStrings: model.EntityList{model.NewMention("Eros", "PERSON")}},
	})

	conn, err := db.OpenDuckDB("")
	require.NoError(t, err)
	defer conn.Close()

	svc := NewExportService(conn, dir)
	ctx := context.Background()
	counts, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts["spo_triples"])
	assert.Equal(t, 1, counts["triple_validations"])
	assert.Equal(t, 1, counts["enhanced_designs"])
	assert.Equal(t, 0, counts["pair_validations"])

	var id, predicate string
	require.NoError(t, conn.QueryRowContext(ctx,
		"SELECT id, predicate FROM spo_triples WHERE design_id = 53").Scan(&id, &predicate))
	assert.Equal(t, model.Null, predicate)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	var list string
	require.NoError(t, conn.QueryRowContext(ctx,
		"SELECT new_list_of_strings FROM enhanced_designs WHERE design_id = 478").Scan(&list))
	var decoded model.EntityList
	require.NoError(t, decoded.Scan(list))
	assert.Equal(t, model.EntityList{model.NewMention("Eros", "PERSON")}, decoded)

	// a second export replaces the tables instead of appending
	_, err = svc.Export(ctx)
	require.NoError(t, err)
	n, err := svc.GetTableCount(ctx, "spo_triples")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.GetTableCount(ctx, "users; DROP TABLE spo_triples")
	assert.Error(t, err)
}

func TestExportWithoutConnection(t *testing.T) {
	_, err := NewExportService(nil, t.TempDir()).Export(context.Background())
	assert.Error(t, err)
}
