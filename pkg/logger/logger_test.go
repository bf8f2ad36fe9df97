package logger_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/graph-inspector/pkg/config"
	"github.com/graph-inspector/pkg/logger"
)

func TestInitAndLog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, logger.Init(&config.ZapLogConfig{
		Level:     "debug",
		Format:    "json",
		Path:      dir,
		MaxSize:   10,
		MaxBackup: 1,
		MaxAge:    1,
	}))

	logger.SetDefaultComponent("inspector")
	logger.Info("collection started", "", zap.String("address", "bolt://localhost:7687"))
	logger.Debug("probe skipped", "collector")
	logger.Warn("member slow to answer", "", zap.Int("members", 3))
	logger.Error("member collection failed", "aggregator")
	_ = logger.Sync()

	require.NotNil(t, logger.GetLogger())

	// 当天的滚动日志文件已落盘
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestInitIsOneShot(t *testing.T) {
	require.NoError(t, logger.Init(&config.ZapLogConfig{
		Level:  "info",
		Format: "json",
		Path:   t.TempDir(),
	}))
	before := logger.GetLogger()

	// 进程内重复Init是no-op，不报错也不重建logger
	require.NoError(t, logger.Init(&config.ZapLogConfig{
		Level:  "error",
		Format: "console",
		Path:   t.TempDir(),
	}))
	assert.Same(t, before, logger.GetLogger())
}
