package service

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"coin-design-enrich/config"
	"coin-design-enrich/pkg/artifact"
	"coin-design-enrich/pkg/batch"
	"coin-design-enrich/pkg/llm"
	"coin-design-enrich/pkg/model"
)

var (
	// ErrEmptyResponse is returned when a streamed completion has no text.
	ErrEmptyResponse = errors.New("received an empty response from the model")
	// ErrBatchNotCompleted is returned by Collect while the job is still running or has failed.
	ErrBatchNotCompleted = errors.New("batch job is not completed")
)

// BatchClient is the part of the model service the batch stages need.
type BatchClient interface {
	UploadBatchFile(ctx context.Context, path string) (string, error)
	CreateBatch(ctx context.Context, inputFileID, endpoint string) (llm.BatchStatus, error)
	RetrieveBatch(ctx context.Context, jobID string) (llm.BatchStatus, error)
	FileContent(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Pipeline runs the enrichment stages over one set of designs.
type Pipeline struct {
	cfg      *config.PipelineConfig
	llmCfg   *config.LLMConfig
	designs  map[int]model.Design
	client   BatchClient
	streamer llm.Streamer
	ledger   *batch.Ledger
}

type PipelineOption func(*Pipeline)

func WithBatchClient(c BatchClient) PipelineOption {
	return func(p *Pipeline) { p.client = c }
}

func WithStreamer(s llm.Streamer) PipelineOption {
	return func(p *Pipeline) { p.streamer = s }
}

func WithLedger(l *batch.Ledger) PipelineOption {
	return func(p *Pipeline) { p.ledger = l }
}

func NewPipeline(cfg *config.GlobalConfig, designs []model.Design, opts ...PipelineOption) (*Pipeline, error) {
	if cfg.PipelineConfig == nil {
		return nil, errors.New("pipeline config is not set")
	}
	llmCfg := cfg.LLMConfig
	if llmCfg == nil {
		llmCfg = config.NewDefaultLLMConfig()
	}
	scope, err := batch.ParseSortScope(cfg.PipelineConfig.LedgerScope)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:     cfg.PipelineConfig,
		llmCfg:  llmCfg,
		designs: indexDesigns(designs),
		ledger:  batch.NewLedger(filepath.Join(cfg.PipelineConfig.TmpPath, cfg.PipelineConfig.LedgerFilename), scope),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func sortedDesigns(designs map[int]model.Design) []model.Design {
	out := make([]model.Design, 0, len(designs))
	for _, d := range designs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (p *Pipeline) stage(step Step) (stage, error) {
	st, ok := stages[step]
	if !ok {
		return stage{}, errors.Errorf("unknown step %q", step)
	}
	return st, nil
}

func (p *Pipeline) lock() (func(), error) {
	unlock, err := artifact.Lock(p.cfg.JSONPath)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := unlock(); err != nil {
			zap.S().Warnf("release artifact lock: %v", err)
		}
	}, nil
}

// Prompts builds the prompts for every row of step not yet in its artifact.
func (p *Pipeline) Prompts(step Step) ([]string, error) {
	st, err := p.stage(step)
	if err != nil {
		return nil, err
	}
	prompts, rows, err := st.build(p.cfg.JSONPath, p.designs, p.cfg.BatchSize)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s prompts", step)
	}
	zap.S().Infof("%s: %d pending rows in %d prompts", step, rows, len(prompts))
	return prompts, nil
}

// Estimate prices prompts[start:stop] of step.
func (p *Pipeline) Estimate(step Step, start, stop int, isBatch bool) (llm.Estimate, error) {
	prompts, err := p.Prompts(step)
	if err != nil {
		return llm.Estimate{}, err
	}
	return llm.EstimateCost(prompts, start, stop, isBatch), nil
}

// Submit writes the pending prompts of step to a task file, starts a batch
// job for it and records the job in the ledger. It returns "" when nothing is pending.
func (p *Pipeline) Submit(ctx context.Context, step Step) (string, error) {
	if p.client == nil {
		return "", errors.New("no batch client configured")
	}
	unlock, err := p.lock()
	if err != nil {
		return "", err
	}
	defer unlock()

	prompts, err := p.Prompts(step)
	if err != nil {
		return "", err
	}
	if len(prompts) == 0 {
		zap.S().Infof("%s: nothing to submit", step)
		return "", nil
	}
	est := llm.EstimateCost(prompts, 0, len(prompts), true)
	zap.S().Infof("%s: ~%d input tokens, estimated batch price $%.5f", step, est.InputTokens, est.TotalCost)

	tasks := batch.NewTasks(prompts, p.llmCfg.Model, p.llmCfg.Temperature)
	path, err := batch.WriteTaskFile(p.cfg.TmpPath, string(step), tasks)
	if err != nil {
		return "", err
	}
	fileID, err := p.client.UploadBatchFile(ctx, path)
	if err != nil {
		return "", err
	}
	job, err := p.client.CreateBatch(ctx, fileID, batch.ChatCompletionsURL)
	if err != nil {
		return "", err
	}
	if err := p.ledger.Add(job.ID, string(step)); err != nil {
		return "", err
	}
	zap.S().Infof("%s: batch job %s created (%d tasks)", step, job.ID, len(tasks))
	return job.ID, nil
}

// Status looks up the newest job of step.
func (p *Pipeline) Status(ctx context.Context, step Step) (llm.BatchStatus, error) {
	if p.client == nil {
		return llm.BatchStatus{}, errors.New("no batch client configured")
	}
	jobID, err := p.ledger.Newest(string(step))
	if err != nil {
		return llm.BatchStatus{}, err
	}
	status, err := p.client.RetrieveBatch(ctx, jobID)
	if err != nil {
		return llm.BatchStatus{}, err
	}
	zap.S().Infof("batch job %s: %s, input file %s, completed %d, failed %d, total %d",
		status.ID, status.Status, status.InputFileID,
		status.RequestCounts.Completed, status.RequestCounts.Failed, status.RequestCounts.Total)
	return status, nil
}

// CollectResult summarizes one Collect call.
type CollectResult struct {
	Status  llm.BatchStatus
	Records int
	Skipped int
	Merged  int
}

// Collect downloads the output of the newest completed job of step and merges it.
func (p *Pipeline) Collect(ctx context.Context, step Step) (CollectResult, error) {
	st, err := p.stage(step)
	if err != nil {
		return CollectResult{}, err
	}
	unlock, err := p.lock()
	if err != nil {
		return CollectResult{}, err
	}
	defer unlock()

	status, err := p.Status(ctx, step)
	if err != nil {
		return CollectResult{}, err
	}
	res := CollectResult{Status: status}
	if status.Status != llm.StatusCompleted || status.OutputFileID == "" {
		return res, errors.Wrapf(ErrBatchNotCompleted, "job %s is %s", status.ID, status.Status)
	}

	body, err := p.client.FileContent(ctx, status.OutputFileID)
	if err != nil {
		return res, err
	}
	defer body.Close()
	parsed, err := batch.ParseResults(body)
	if err != nil {
		return res, err
	}
	res.Records = len(parsed.Records)
	res.Skipped = parsed.Skipped

	merged, err := st.merge(p.cfg.JSONPath, parsed.Records)
	if err != nil {
		return res, errors.Wrapf(err, "merge %s", st.artifact)
	}
	res.Merged = merged
	zap.S().Infof("%s: merged %d of %d records into %s", step, merged, res.Records, st.artifact)
	return res, nil
}

// Run streams prompts[start:stop] of step one by one and merges the answers.
// An empty or unrecoverable completion aborts the run before anything is merged.
func (p *Pipeline) Run(ctx context.Context, step Step, start, stop int) (int, error) {
	if p.streamer == nil {
		return 0, errors.New("no streamer configured")
	}
	st, err := p.stage(step)
	if err != nil {
		return 0, err
	}
	unlock, err := p.lock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	prompts, err := p.Prompts(step)
	if err != nil {
		return 0, err
	}
	if stop <= 0 || stop > len(prompts) {
		stop = len(prompts)
	}
	start = max(0, min(start, stop))
	if start == stop {
		zap.S().Infof("%s: no prompts in range", step)
		return 0, nil
	}

	var records []model.Record
	for i, pr := range prompts[start:stop] {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		zap.S().Debugf("processing prompt %d", start+i)
		completion, err := p.streamer.Stream(ctx, pr)
		if err != nil {
			return 0, errors.Wrapf(err, "prompt %d", start+i)
		}
		if strings.TrimSpace(completion) == "" {
			return 0, errors.Wrapf(ErrEmptyResponse, "prompt %d", start+i)
		}
		tokens := llm.EstimateTokens(completion)
		zap.S().Infof("token count for completion %d: %d, price: $%.5f", start+i, tokens, llm.OutputPrice(tokens))

		recs, err := batch.DecodeCompletion(completion)
		if err != nil {
			return 0, errors.Wrapf(err, "prompt %d", start+i)
		}
		for _, rec := range recs {
			if err := model.CoerceDesignID(rec); err != nil {
				return 0, errors.Wrapf(err, "prompt %d", start+i)
			}
		}
		records = append(records, recs...)
	}

	merged, err := st.merge(p.cfg.JSONPath, records)
	if err != nil {
		return 0, errors.Wrapf(err, "merge %s", st.artifact)
	}
	zap.S().Infof("%s: merged %d of %d records into %s", step, merged, len(records), st.artifact)
	return merged, nil
}
