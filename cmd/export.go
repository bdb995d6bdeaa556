package cmd

import (
	"sort"

	"coin-design-enrich/pkg/db"
	"coin-design-enrich/pkg/service"
	"coin-design-enrich/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewExportCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "将各阶段 JSON 产物导出到 DuckDB",
		Long:  "读取 json 目录下的阶段产物，重建 DuckDB 中的 enhanced_designs、entity_validations、pair_validations、spo_triples、triple_validations 表",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, flush := bootstrap(opts)
			if cfg == nil {
				return
			}
			defer flush()

			if cfg.DuckDBConfig == nil {
				zap.S().Error("DuckDB 配置未设置")
				return
			}

			ctx := signals.SetupSignalHandler()

			// 初始化 DuckDB
			if err := db.InitDuckDB(cfg.DuckDBConfig); err != nil {
				zap.S().Errorf("DuckDB 连接错误:%s", err.Error())
				return
			}

			exportService := service.NewExportService(db.GetDuckDBWithContext(ctx), cfg.PipelineConfig.JSONPath)
			counts, err := exportService.Export(ctx)
			if err != nil {
				zap.S().Errorf("导出失败:%s", err.Error())
				return
			}

			// 显示统计信息
			tables := make([]string, 0, len(counts))
			for t := range counts {
				tables = append(tables, t)
			}
			sort.Strings(tables)
			for _, t := range tables {
				count, err := exportService.GetTableCount(ctx, t)
				if err != nil {
					zap.S().Warnf("获取统计信息失败:%s", err.Error())
					continue
				}
				zap.S().Infof("DuckDB 表 %s 行数: %d", t, count)
			}
		},
	}
	return cmd
}
