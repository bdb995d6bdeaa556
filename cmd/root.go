package cmd

import (
	"coin-design-enrich/pkg/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options 保存全局 flag
type options struct {
	configFilePath string
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "coin-design-enrich",
		Short: "钱币图案描述的 LLM 实体/关系抽取流水线",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableNoDescFlag:   true,
			DisableDescriptions: true,
			HiddenDefaultCmd:    true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径")

	rootCmd.AddCommand(
		NewLoadCommand(opts),
		NewQueryCommand(opts),
		NewEstimateCommand(opts),
		NewSubmitCommand(opts),
		NewStatusCommand(opts),
		NewCollectCommand(opts),
		NewRunCommand(opts),
		NewExportCommand(opts),
	)

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		zap.S().Info("使用 'load' 预处理图案, 'submit'/'collect' 或 'run' 执行各阶段, 'export' 导出到 DuckDB")
		_ = cmd.Help()
	}
	rootCmd.Version = util.GetVersion().Version
	return rootCmd
}
