package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/graph-inspector/internal/advisor"
	"github.com/graph-inspector/pkg/logger"
)

var (
	collectOutput string
	collectAdvise bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one diagnostic collection and print the merged report as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		agg, registry := buildAggregator(cfg, nil)
		// 一次性run：结束后进程级关停全部driver
		defer func() {
			_ = registry.CloseAll(context.Background())
		}()

		tree, err := agg.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("diagnostic run failed: %w", err)
		}

		// 建议性检查结论走日志输出，报告本体保持纯净
		if collectAdvise {
			for _, f := range advisor.Advise(tree) {
				switch f.Level {
				case "warning":
					logger.Warn(f.Message, "advisor", zap.String("rule", f.Rule))
				default:
					logger.Info(f.Message, "advisor", zap.String("rule", f.Rule))
				}
			}
		}

		data, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		if collectOutput != "" {
			if err := os.WriteFile(collectOutput, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("write report to %s: %w", collectOutput, err)
			}
			logger.Info("report written", "collect", zap.String("path", collectOutput))
			return nil
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVarP(&collectOutput, "output", "o", "", "-> Write report to file instead of stdout | 报告输出文件")
	collectCmd.Flags().BoolVar(&collectAdvise, "advise", true, "-> Log advisory findings after collection | 采集后输出建议性结论")
}
