package agent

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/graph-inspector/internal/server"
	"github.com/graph-inspector/pkg/logger"
	"github.com/graph-inspector/pkg/metrics"
	"github.com/graph-inspector/pkg/signal"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a long-lived agent exposing /report, /findings, /health and /metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		// 初始化Prometheus指标注册器（仅注册自定义指标）
		promReg := prometheus.NewRegistry()
		factory := metrics.NewMetricFactory(metrics.NewPromRegistry(promReg))

		agg, registry := buildAggregator(cfg, factory)

		httpServer := server.NewHTTPServer(&cfg.Server, promReg, agg)
		if err := httpServer.Start(); err != nil {
			return fmt.Errorf("start HTTP server failed: %w", err)
		}

		// 监听退出信号，收到信号后执行优雅关闭
		// 关闭顺序：HTTP服务 → 连接注册表
		signal.WaitForShutdown(func() error {
			if err := httpServer.Shutdown(); err != nil {
				return fmt.Errorf("shutdown HTTP server failed: %w", err)
			}
			if err := registry.CloseAll(context.Background()); err != nil {
				return fmt.Errorf("close drivers failed: %w", err)
			}
			logger.Info("all services shutdown successfully", "serve")
			return nil
		})
		return nil
	},
}
