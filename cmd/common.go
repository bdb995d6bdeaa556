package cmd

import (
	"context"
	"errors"

	"coin-design-enrich/config"
	"coin-design-enrich/pkg/db"
	"coin-design-enrich/pkg/llm"
	"coin-design-enrich/pkg/logging"
	"coin-design-enrich/pkg/model"
	"coin-design-enrich/pkg/service"

	"go.uber.org/zap"
)

// bootstrap 读取并校验配置，初始化日志。失败时已经记录日志，返回 nil
func bootstrap(opts *options) (*config.GlobalConfig, func()) {
	cfg, err := config.TryLoadFromDisk(opts.configFilePath)
	if err != nil {
		zap.S().Errorf("读取本地配置文件错误:%s", err.Error())
		return nil, nil
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		zap.S().Errorf("本地配置文件验证错误:%s", errors.Join(errs...))
		return nil, nil
	}
	flush, err := logging.Setup(cfg.LogConfig)
	if err != nil {
		zap.S().Errorf("初始化日志失败:%s", err.Error())
		return nil, nil
	}
	return cfg, flush
}

// mysqlSource 在第一次需要时才连接 MySQL，缓存命中时不建立连接
type mysqlSource struct {
	cfg  *config.GlobalConfig
	repo *db.DesignRepo
}

func (s *mysqlSource) init(ctx context.Context) error {
	if s.repo != nil {
		return nil
	}
	if err := db.InitTiDB(s.cfg); err != nil {
		return err
	}
	s.repo = db.NewDesignRepo(ctx)
	return nil
}

func (s *mysqlSource) Designs(ctx context.Context) ([]model.Design, error) {
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s.repo.Designs(ctx)
}

func (s *mysqlSource) Entities(ctx context.Context) ([]model.EntityRow, error) {
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s.repo.Entities(ctx)
}

func newDesignLoader(cfg *config.GlobalConfig) *service.DesignLoader {
	return service.NewDesignLoader(cfg.PipelineConfig, &mysqlSource{cfg: cfg})
}

// newPipeline 加载图案并按配置接好 batch client 与 streamer
func newPipeline(ctx context.Context, cfg *config.GlobalConfig, withStreamer bool) (*service.Pipeline, error) {
	designs, err := newDesignLoader(cfg).Load(ctx)
	if err != nil {
		return nil, err
	}
	opts := []service.PipelineOption{
		service.WithBatchClient(llm.NewOpenAIClient(cfg.LLMConfig)),
	}
	if withStreamer {
		streamer, err := llm.NewStreamer(ctx, cfg.LLMConfig)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithStreamer(streamer))
	}
	return service.NewPipeline(cfg, designs, opts...)
}

func parseStep(step string) (service.Step, bool) {
	s, err := service.ParseStep(step)
	if err != nil {
		zap.S().Errorf("%s", err.Error())
		return "", false
	}
	return s, true
}
