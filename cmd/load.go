package cmd

import (
	"encoding/json"
	"fmt"

	"coin-design-enrich/pkg/service"
	"coin-design-enrich/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewLoadCommand(opts *options) *cobra.Command {
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "预处理并缓存标注后的图案",
		Long:  "缓存存在时直接读取 CSV，否则从 MySQL 读取 nlp_training_designs 与 nlp_list_entities，清洗、改写、标注后写入 CSV 缓存",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, flush := bootstrap(opts)
			if cfg == nil {
				return
			}
			defer flush()
			ctx := signals.SetupSignalHandler()

			loader := newDesignLoader(cfg)
			var err error
			if rebuild {
				_, err = loader.Rebuild(ctx)
			} else {
				_, err = loader.Load(ctx)
			}
			if err != nil {
				zap.S().Errorf("加载图案失败:%s", err.Error())
				return
			}
			zap.S().Infof("图案缓存: %s", loader.CachePath())
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "忽略已有缓存，重新预处理")
	return cmd
}

func NewQueryCommand(opts *options) *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "query",
		Short: "按 id 查看一个图案及其标注实体",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, flush := bootstrap(opts)
			if cfg == nil {
				return
			}
			defer flush()
			ctx := signals.SetupSignalHandler()

			designs, err := newDesignLoader(cfg).Load(ctx)
			if err != nil {
				zap.S().Errorf("加载图案失败:%s", err.Error())
				return
			}
			view, err := service.QueryDesign(designs, id)
			if err != nil {
				zap.S().Errorf("%s", err.Error())
				return
			}
			b, err := json.MarshalIndent(view, "", "    ")
			if err != nil {
				zap.S().Errorf("编码结果失败:%s", err.Error())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "图案 id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
