package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/graph-inspector/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// WaitForShutdown 监听退出信号（SIGINT/SIGTERM），执行优雅关闭
func WaitForShutdown(shutdownFunc func() error) {
	// 容错：检查关闭函数是否为空
	if shutdownFunc == nil {
		logger.Error("shutdownFunc is nil, cannot execute shutdown", "signal")
		return
	}

	// 注册信号监听通道（缓冲大小1，避免信号丢失）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("service is running, waiting for shutdown signal (SIGINT/SIGTERM)...", "signal")

	// 阻塞等待信号
	sig := <-sigChan
	logger.Info("received shutdown signal", "signal", zap.String("signal", sig.String()))

	// 超时控制关闭逻辑
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErrChan := make(chan error, 1)
	go func() {
		shutdownErrChan <- shutdownFunc()
		close(shutdownErrChan)
	}()

	// 等待关闭完成或超时
	select {
	case err := <-shutdownErrChan:
		if err != nil {
			logger.Error("graceful shutdown failed", "signal", zap.Error(err))
		} else {
			logger.Info("graceful shutdown completed successfully", "signal")
		}
	case <-ctx.Done():
		logger.Error("graceful shutdown timed out", "signal", zap.Error(ctx.Err()))
	}

	// 日志同步：确保缓存日志写入输出（忽略stdout无效句柄错误）
	if err := logger.Sync(); err != nil {
		if err.Error() != "sync /dev/stdout: bad file descriptor" {
			logger.Warn("logger sync failed", "signal", zap.Error(err))
		}
	}
}
