package cmd

import (
	"fmt"
	"strconv"

	"coin-design-enrich/pkg/llm"
	"coin-design-enrich/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const stepUsage = "阶段: enhance | validate_entities | pairs | validate_pairs | predicates | validate_triples"

func NewEstimateCommand(opts *options) *cobra.Command {
	var step string
	var start, stop int
	var isBatch bool

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "估算某阶段待处理 prompt 的 token 数与价格",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, flush := bootstrap(opts)
			if cfg == nil {
				return
			}
			defer flush()
			st, ok := parseStep(step)
			if !ok {
				return
			}
			ctx := signals.SetupSignalHandler()

			p, err := newPipeline(ctx, cfg, false)
			if err != nil {
				zap.S().Errorf("初始化流水线失败:%s", err.Error())
				return
			}
			est, err := p.Estimate(st, start, stop, isBatch)
			if err != nil {
				zap.S().Errorf("估算失败:%s", err.Error())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Step", "Prompts", "Input tokens", "Input $", "Output $ (est.)", "Total $", "Batch"},
				[][]string{{
					string(st),
					strconv.Itoa(est.Prompts),
					strconv.Itoa(est.InputTokens),
					fmt.Sprintf("%.5f", est.InputCost),
					fmt.Sprintf("%.5f", est.OutputCost),
					fmt.Sprintf("%.5f", est.TotalCost),
					strconv.FormatBool(est.Batch),
				}},
				2, 3, 4, 5, 6,
			))
		},
	}

	cmd.Flags().StringVarP(&step, "step", "s", "", stepUsage)
	cmd.Flags().IntVar(&start, "start", 0, "起始 prompt 下标")
	cmd.Flags().IntVar(&stop, "stop", 0, "结束 prompt 下标（不含），0 表示到末尾")
	cmd.Flags().BoolVar(&isBatch, "batch", true, "按 batch 半价计算")
	_ = cmd.MarkFlagRequired("step")
	return cmd
}

func NewSubmitCommand(opts *options) *cobra.Command {
	var step string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "为某阶段待处理的行创建 batch 任务",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, flush := bootstrap(opts)
			if cfg == nil {
				return
			}
			defer flush()
			st, ok := parseStep(step)
			if !ok {
				return
			}
			ctx := signals.SetupSignalHandler()

			p, err := newPipeline(ctx, cfg, false)
			if err != nil {
				zap.S().Errorf("初始化流水线失败:%s", err.Error())
				return
			}
			jobID, err := p.Submit(ctx, st)
			if err != nil {
				zap.S().Errorf("提交 batch 失败:%s", err.Error())
				return
			}
			if jobID == "" {
				zap.S().Infof("%s 没有待处理的数据", st)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), jobID)
		},
	}

	cmd.Flags().StringVarP(&step, "step", "s", "", stepUsage)
	_ = cmd.MarkFlagRequired("step")
	return cmd
}

func NewStatusCommand(opts *options) *cobra.Command {
	var step string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "查看某阶段最新 batch 任务的状态",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, flush := bootstrap(opts)
			if cfg == nil {
				return
			}
			defer flush()
			st, ok := parseStep(step)
			if !ok {
				return
			}
			ctx := signals.SetupSignalHandler()

			p, err := newPipeline(ctx, cfg, false)
			if err != nil {
				zap.S().Errorf("初始化流水线失败:%s", err.Error())
				return
			}
			status, err := p.Status(ctx, st)
			if err != nil {
				zap.S().Errorf("查询 batch 状态失败:%s", err.Error())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), statusTable(status))
		},
	}

	cmd.Flags().StringVarP(&step, "step", "s", "", stepUsage)
	_ = cmd.MarkFlagRequired("step")
	return cmd
}

func statusTable(s llm.BatchStatus) string {
	return renderTable(
		[]string{"Job", "Status", "Input file", "Output file", "Completed", "Failed", "Total"},
		[][]string{{
			s.ID,
			s.Status,
			s.InputFileID,
			s.OutputFileID,
			strconv.Itoa(s.RequestCounts.Completed),
			strconv.Itoa(s.RequestCounts.Failed),
			strconv.Itoa(s.RequestCounts.Total),
		}},
		5, 6, 7,
	)
}

func NewCollectCommand(opts *options) *cobra.Command {
	var step string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "下载已完成的 batch 结果并合并到阶段产物",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, flush := bootstrap(opts)
			if cfg == nil {
				return
			}
			defer flush()
			st, ok := parseStep(step)
			if !ok {
				return
			}
			ctx := signals.SetupSignalHandler()

			p, err := newPipeline(ctx, cfg, false)
			if err != nil {
				zap.S().Errorf("初始化流水线失败:%s", err.Error())
				return
			}
			res, err := p.Collect(ctx, st)
			if err != nil {
				zap.S().Errorf("合并 batch 结果失败:%s", err.Error())
				return
			}
			zap.S().Infof("%s: 记录 %d 条, 跳过 %d 条, 合并 %d 条", st, res.Records, res.Skipped, res.Merged)
		},
	}

	cmd.Flags().StringVarP(&step, "step", "s", "", stepUsage)
	_ = cmd.MarkFlagRequired("step")
	return cmd
}

func NewRunCommand(opts *options) *cobra.Command {
	var step string
	var start, stop int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "以同步流式调用处理某阶段的一段 prompt",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, flush := bootstrap(opts)
			if cfg == nil {
				return
			}
			defer flush()
			st, ok := parseStep(step)
			if !ok {
				return
			}
			ctx := signals.SetupSignalHandler()

			p, err := newPipeline(ctx, cfg, true)
			if err != nil {
				zap.S().Errorf("初始化流水线失败:%s", err.Error())
				return
			}
			merged, err := p.Run(ctx, st, start, stop)
			if err != nil {
				zap.S().Errorf("执行失败:%s", err.Error())
				return
			}
			zap.S().Infof("%s: 合并 %d 条", st, merged)
		},
	}

	cmd.Flags().StringVarP(&step, "step", "s", "", stepUsage)
	cmd.Flags().IntVar(&start, "start", 0, "起始 prompt 下标")
	cmd.Flags().IntVar(&stop, "stop", 0, "结束 prompt 下标（不含），0 表示到末尾")
	_ = cmd.MarkFlagRequired("step")
	return cmd
}
