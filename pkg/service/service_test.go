package service

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-design-enrich/config"
	"coin-design-enrich/pkg/artifact"
	"coin-design-enrich/pkg/batch"
	"coin-design-enrich/pkg/llm"
	"coin-design-enrich/pkg/model"
	"coin-design-enrich/pkg/repair"
)

func strPtr(s string) *string { return &s }

type fakeSource struct {
	designs  []model.Design
	entities []model.EntityRow
	calls    int
}

func (f *fakeSource) Designs(context.Context) ([]model.Design, error) {
	f.calls++
	return f.designs, nil
}

func (f *fakeSource) Entities(context.Context) ([]model.EntityRow, error) {
	return f.entities, nil
}

func testConfig(t *testing.T) *config.GlobalConfig {
	t.Helper()
	root := t.TempDir()
	cfg := config.NewDefaultGlobalConfig()
	cfg.PipelineConfig.CSVPath = filepath.Join(root, "csv")
	cfg.PipelineConfig.JSONPath = filepath.Join(root, "json")
	cfg.PipelineConfig.TmpPath = filepath.Join(root, "tmp")
	cfg.PipelineConfig.BatchSize = 2
	cfg.LLMConfig.APIKey = "sk-test"
	return cfg
}

func testDesigns() []model.Design {
	return []model.Design{
		{ID: 1, DesignEn: "Apollo holding lyre", Annotations: []model.Annotation{{Start: 0, End: 6, Label: "PERSON"}, {Start: 15, End: 19, Label: "OBJECT"}}},
		{ID: 2, DesignEn: "Eros on dolphin", Annotations: []model.Annotation{{Start: 0, End: 4, Label: "PERSON"}, {Start: 8, End: 15, Label: "ANIMAL"}}},
		{ID: 3, DesignEn: "Owl standing right", Annotations: []model.Annotation{{Start: 0, End: 3, Label: "ANIMAL"}}},
	}
}

func TestDesignLoaderBuildsAndReusesCache(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{
		designs: []model.Design{
			{ID: 10, DesignEn: "Phoebus (laureate) holding kithara"},
			{ID: 11, DesignEn: "Legend in four lines"},
		},
		entities: []model.EntityRow{
			{NameEn: "Apollo", AlternativeNamesEn: strPtr("Phoebus"), Class: model.ClassPerson},
			{NameEn: "lyre", AlternativeNamesEn: strPtr("kithara"), Class: model.ClassObject},
		},
	}
	loader := NewDesignLoader(cfg.PipelineConfig, src)

	designs, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, designs, 1)
	assert.Equal(t, "Apollo laureate holding lyre", designs[0].DesignEn)
	assert.FileExists(t, loader.CachePath())

	again, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, designs, again)
}

func TestDesignsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "designs.csv")
	in := testDesigns()
	in[0].DesignEnOrig = `Apollo, "the archer", holding lyre`
	require.NoError(t, WriteDesignsCSV(path, in))

	out, err := ReadDesignsCSV(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadDesignsCSVMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "designs.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,design_en\n1,Owl\n"), 0o644))
	_, err := ReadDesignsCSV(path)
	assert.Error(t, err)
}

func TestQueryDesign(t *testing.T) {
	view, err := QueryDesign(testDesigns(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Eros on dolphin", view.FullDesign)
	assert.Equal(t, []string{"Eros", "dolphin"}, view.Strings)
	assert.Equal(t, []string{"PERSON", "ANIMAL"}, view.Objects)

	_, err = QueryDesign(testDesigns(), 99)
	assert.ErrorIs(t, err, ErrDesignNotFound)
}

func TestParseStep(t *testing.T) {
	for _, s := range Steps {
		got, err := ParseStep(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStep("bogus")
	assert.Error(t, err)
}

type fakeStreamer struct {
	replies []string
	prompts []string
}

func (f *fakeStreamer) Stream(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func TestRunEnhanceThenFilter(t *testing.T) {
	cfg := testConfig(t)
	s := &fakeStreamer{replies: []string{
		"```json\n[{\"design_id\": \"1\", \"new_list_of_strings\": [(\"Apollo\", \"PERSON\"), (\"lyre\", \"OBJECT\")]}, " +
			"{\"design_id\": 2, \"new_list_of_strings\": [[\"Eros\", \"PERSON\"]]}]\n```",
	}}
	p, err := NewPipeline(cfg, testDesigns(), WithStreamer(s))
	require.NoError(t, err)

	merged, err := p.Run(context.Background(), StepEnhance, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, merged)
	require.Len(t, s.prompts, 1)
	assert.Contains(t, s.prompts[0], "design_id: 1,")
	assert.Contains(t, s.prompts[0], "design_id: 2,")

	rows, err := artifact.Read[model.EnhancedDesign](filepath.Join(cfg.PipelineConfig.JSONPath, artifact.EnhancedDesigns))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].DesignID)
	assert.Equal(t, model.NewMention("lyre", "OBJECT"), rows[0].NewListOfStrings[1])

	prompts, err := p.Prompts(StepEnhance)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "design_id: 3,")
	assert.NotContains(t, prompts[0], "design_id: 1,")
}

func TestRunEmptyResponseIsFatal(t *testing.T) {
	cfg := testConfig(t)
	p, err := NewPipeline(cfg, testDesigns(), WithStreamer(&fakeStreamer{replies: []string{"   "}}))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), StepEnhance, 0, 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.NoFileExists(t, filepath.Join(cfg.PipelineConfig.JSONPath, artifact.EnhancedDesigns))
}

func TestRunMalformedResponseIsFatal(t *testing.T) {
	cfg := testConfig(t)
	p, err := NewPipeline(cfg, testDesigns(), WithStreamer(&fakeStreamer{replies: []string{"I cannot help with that."}}))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), StepEnhance, 0, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestRunRespectsLock(t *testing.T) {
	cfg := testConfig(t)
	unlock, err := artifact.Lock(cfg.PipelineConfig.JSONPath)
	require.NoError(t, err)
	defer unlock()

	p, err := NewPipeline(cfg, testDesigns(), WithStreamer(&fakeStreamer{}))
	require.NoError(t, err)
	_, err = p.Run(context.Background(), StepEnhance, 0, 1)
	assert.ErrorIs(t, err, artifact.ErrLocked)
}

func writeArtifact(t *testing.T, dir, name string, rows any) {
	t.Helper()
	b, err := json.MarshalIndent(rows, "", "    ")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
}

func TestPredicatesStage(t *testing.T) {
	cfg := testConfig(t)
	dir := cfg.PipelineConfig.JSONPath
	pairs := []model.Pair{
		{DesignID: 1, SOID: "a", Subject: "Apollo", SubjectClass: "PERSON", Object: "lyre", ObjectClass: "OBJECT"},
		{DesignID: 2, SOID: "a", Subject: "Eros", SubjectClass: "PERSON", Object: "dolphin", ObjectClass: "ANIMAL"},
		{DesignID: 3, SOID: "a", Subject: "NULL", SubjectClass: "NULL", Object: "NULL", ObjectClass: "NULL"},
	}
	writeArtifact(t, dir, artifact.SubjectObjectPairs, pairs)
	writeArtifact(t, dir, artifact.PairsWithPredicates, []model.Triple{model.NewTriple(pairs[0], "holding")})

	s := &fakeStreamer{replies: []string{
		`[{"design_id": 2, "s_o_id": "a", "predicate": "seated_on"}, {"design_id": 1, "s_o_id": "a", "predicate": "playing"}, {"design_id": 7, "s_o_id": "z", "predicate": "x"}]`,
	}}
	p, err := NewPipeline(cfg, testDesigns(), WithStreamer(s))
	require.NoError(t, err)

	merged, err := p.Run(context.Background(), StepPredicates, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, merged)
	require.Len(t, s.prompts, 1)
	assert.Contains(t, s.prompts[0], "Subject: Eros (PERSON)")
	assert.NotContains(t, s.prompts[0], "Subject: Apollo (PERSON)")
	assert.NotContains(t, s.prompts[0], "design_id: 3,")

	triples, err := artifact.Read[model.Triple](filepath.Join(dir, artifact.PairsWithPredicates))
	require.NoError(t, err)
	require.Len(t, triples, 2)
	assert.Equal(t, "holding", triples[0].PredicateOrNull())
	assert.Equal(t, 2, triples[1].DesignID)
	assert.Equal(t, "seated_on", triples[1].PredicateOrNull())
	assert.Equal(t, "dolphin", triples[1].Object)
}

func TestValidateStagesJoinArtifacts(t *testing.T) {
	cfg := testConfig(t)
	dir := cfg.PipelineConfig.JSONPath
	writeArtifact(t, dir, artifact.EnhancedDesigns, []model.EnhancedDesign{
		{DesignID: 1, NewListOfStrings: model.EntityList{model.NewMention("Apollo", "PERSON")}},
		{DesignID: 42, NewListOfStrings: model.EntityList{model.NewMention("ghost", "PERSON")}},
	})
	p, err := NewPipeline(cfg, testDesigns())
	require.NoError(t, err)

	prompts, err := p.Prompts(StepValidateEntities)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `Original List of Strings: [("Apollo", "PERSON"), ("lyre", "OBJECT")]`)
	assert.NotContains(t, prompts[0], "ghost")

	prompts, err = p.Prompts(StepPairs)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `List of Strings: [("Apollo", "PERSON")]`)

	prompts, err = p.Prompts(StepValidateTriples)
	require.NoError(t, err)
	assert.Empty(t, prompts)
}

type fakeBatchClient struct {
	uploaded string
	created  string
	status   llm.BatchStatus
	output   string
}

func (f *fakeBatchClient) UploadBatchFile(_ context.Context, path string) (string, error) {
	f.uploaded = path
	return "file-in", nil
}

func (f *fakeBatchClient) CreateBatch(_ context.Context, inputFileID, endpoint string) (llm.BatchStatus, error) {
	f.created = inputFileID + " " + endpoint
	return llm.BatchStatus{ID: "batch_1", Status: llm.StatusValidating, InputFileID: inputFileID}, nil
}

func (f *fakeBatchClient) RetrieveBatch(_ context.Context, jobID string) (llm.BatchStatus, error) {
	st := f.status
	st.ID = jobID
	return st, nil
}

func (f *fakeBatchClient) FileContent(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.output)), nil
}

func envelope(customID, content string) string {
	b, _ := json.Marshal(map[string]any{
		"custom_id": customID,
		"response": map[string]any{
			"body": map[string]any{
				"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
			},
		},
	})
	return string(b)
}

func TestSubmitStatusCollect(t *testing.T) {
	cfg := testConfig(t)
	client := &fakeBatchClient{}
	p, err := NewPipeline(cfg, testDesigns(), WithBatchClient(client))
	require.NoError(t, err)
	ctx := context.Background()

	jobID, err := p.Submit(ctx, StepEnhance)
	require.NoError(t, err)
	assert.Equal(t, "batch_1", jobID)
	assert.Equal(t, batch.TaskFilePath(cfg.PipelineConfig.TmpPath, "enhance"), client.uploaded)
	assert.Equal(t, "file-in /v1/chat/completions", client.created)

	ledger := batch.NewLedger(filepath.Join(cfg.PipelineConfig.TmpPath, cfg.PipelineConfig.LedgerFilename), batch.ScopeStep)
	newest, err := ledger.Newest("enhance")
	require.NoError(t, err)
	assert.Equal(t, "batch_1", newest)

	client.status = llm.BatchStatus{Status: llm.StatusInProgress}
	_, err = p.Collect(ctx, StepEnhance)
	assert.ErrorIs(t, err, ErrBatchNotCompleted)

	client.status = llm.BatchStatus{Status: llm.StatusCompleted, OutputFileID: "file-out"}
	client.output = strings.Join([]string{
		envelope("task-0", `[{"design_id": 1, "new_list_of_strings": [["Apollo", "PERSON"]]}, {"design_id": 2, "new_list_of_strings": [["Eros", "PERSON"]]}]`),
		"not json",
		envelope("task-1", `{design_id: 3, new_list_of_strings: [("owl", "ANIMAL")]}`),
	}, "\n")
	res, err := p.Collect(ctx, StepEnhance)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Records)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 3, res.Merged)

	again, err := p.Collect(ctx, StepEnhance)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Merged)

	jobID, err = p.Submit(ctx, StepEnhance)
	require.NoError(t, err)
	assert.Empty(t, jobID)
}

func TestCollectUnrecoverableCompletionMergesNothing(t *testing.T) {
	cfg := testConfig(t)
	client := &fakeBatchClient{}
	p, err := NewPipeline(cfg, testDesigns(), WithBatchClient(client))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = p.Submit(ctx, StepEnhance)
	require.NoError(t, err)

	client.status = llm.BatchStatus{Status: llm.StatusCompleted, OutputFileID: "file-out"}
	client.output = strings.Join([]string{
		envelope("task-0", `[{"design_id": 1, "new_list_of_strings": [["Apollo", "PERSON"]]}]`),
		envelope("task-1", "sorry, I cannot help with that {"),
	}, "\n")
	_, err = p.Collect(ctx, StepEnhance)
	require.Error(t, err)
	assert.True(t, repair.IsMalformedResponse(err))

	_, statErr := os.Stat(filepath.Join(cfg.PipelineConfig.JSONPath, artifact.EnhancedDesigns))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStatusWithoutLedger(t *testing.T) {
	cfg := testConfig(t)
	p, err := NewPipeline(cfg, testDesigns(), WithBatchClient(&fakeBatchClient{}))
	require.NoError(t, err)
	_, err = p.Status(context.Background(), StepPairs)
	assert.ErrorIs(t, err, batch.ErrLedgerNotFound)
}

func TestNewPipelineRejectsScope(t *testing.T) {
	cfg := testConfig(t)
	cfg.PipelineConfig.LedgerScope = "global"
	_, err := NewPipeline(cfg, nil)
	assert.Error(t, err)
}
