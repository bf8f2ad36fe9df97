package bolt_test

import (
	"os"
	"testing"

	"github.com/graph-inspector/pkg/config"
	"github.com/graph-inspector/pkg/logger"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "inspector-test")
	if err != nil {
		panic(err)
	}
	if err := logger.Init(&config.ZapLogConfig{
		Level:     "error",
		Format:    "console",
		Path:      dir,
		MaxSize:   10,
		MaxBackup: 1,
		MaxAge:    1,
	}); err != nil {
		panic(err)
	}
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}
