package agent

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/graph-inspector/internal/bolt"
	"github.com/graph-inspector/internal/collector"
	"github.com/graph-inspector/internal/topology"
	"github.com/graph-inspector/pkg/config"
	"github.com/graph-inspector/pkg/logger"
	"github.com/graph-inspector/pkg/metrics"
	"github.com/graph-inspector/pkg/util"
)

// Version 进程身份版本号（进入报告的process子树）
const Version = "0.1.0"

var (
	cfgFile   string
	GlobalCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "graph-inspector",
	Short: "Graph database deployment inspector: topology discovery + concurrent diagnostic collection",
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")
	// 注册分组 flag
	initServerFlags(rootCmd)
	initDatabaseFlags(rootCmd)
	initLogFlags(rootCmd)

	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup 加载配置并初始化日志（collect与serve共用的启动流程）
func setup(cmd *cobra.Command) (*config.Config, error) {
	var err error
	GlobalCfg, err = config.LoadConfigWithCli(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "请检查配置文件路径或使用 -c 参数指定\n")
		os.Exit(1)
	}

	if err := logger.Init(&GlobalCfg.Log); err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}
	logger.SetDefaultComponent("inspector")

	util.PrintBanner("graph-inspector", "ColorBlue")
	return GlobalCfg, nil
}

// buildAggregator 组装诊断流水线：连接注册表 → 会话池管理器 → 拓扑发现器 → 聚合器
// factory为nil时不注册指标（一次性collect场景）
func buildAggregator(cfg *config.Config, factory *metrics.MetricFactory) (*collector.Aggregator, *bolt.Registry) {
	registry := bolt.NewRegistry(bolt.NewNeo4jDriver, cfg.Database.ConnectTimeout)
	pools := bolt.NewPoolManager(cfg.Database.PoolMaxSize)
	if factory != nil {
		registry.WithDriversOpenGauge(factory.NewDriversOpen())
		pools.WithSessionsInUseGauge(factory.NewSessionsInUse())
	}

	conn := bolt.NewConnector(registry, pools, bolt.Credentials{
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	base := bolt.Address{
		Scheme: cfg.Database.Scheme,
		Host:   cfg.Database.Host,
		Port:   cfg.Database.Port,
	}
	disco := topology.NewDiscoverer(conn, base)

	agg := collector.NewAggregator(conn, disco, &cfg.Database, Version)
	if factory != nil {
		agg.WithMetrics(collector.AggregatorMetrics{
			RunDuration:   factory.NewDiagnosticRunDurationSeconds(),
			MemberErrors:  factory.NewMemberCollectErrorsTotal(),
			ProbeFailures: factory.NewProbeFailuresTotal(),
		})
	}
	return agg, registry
}
