// Package server 提供HTTP服务器核心功能，包含Prometheus指标暴露、健康检查端点、
// 按需执行一次诊断run的报告端点，以及优雅关闭机制。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/graph-inspector/internal/advisor"
	"github.com/graph-inspector/internal/collector"
	"github.com/graph-inspector/pkg/config"
	"github.com/graph-inspector/pkg/logger"
)

// httpShutdownTimeout 优雅关闭超时时间，避免关闭流程无限阻塞
const httpShutdownTimeout = 5 * time.Second

// HTTPServer HTTP服务实例
// 核心能力：/metrics指标端点、/health健康检查、/report按需诊断、优雅启动/关闭
type HTTPServer struct {
	addr       string
	server     *http.Server
	registry   *prometheus.Registry
	aggregator *collector.Aggregator
}

// statusWriter 包装http.ResponseWriter，用于捕获HTTP响应状态码
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader 记录响应状态码
func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// NewHTTPServer 创建HTTP服务实例（依赖注入模式）
//  1. /metrics：暴露Prometheus指标（含自定义指标）
//  2. /health：健康检查（返回200 OK）
//  3. /report：执行一次诊断run并返回JSON报告
//  4. /findings：执行一次诊断run并返回建议性结论
func NewHTTPServer(cfg *config.ServerConfig, registry *prometheus.Registry, aggregator *collector.Aggregator) *HTTPServer {
	mux := http.NewServeMux()

	// 请求日志记录辅助函数
	logRequest := func(r *http.Request, msg string, statusCode int, start time.Time) {
		logger.Info(
			msg,
			"server",
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	}

	mux.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}

		promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			ErrorLog: zap.NewStdLog(logger.GetLogger()),
		}).ServeHTTP(ww, r)

		logRequest(r, "metrics request received", ww.status, start)
	}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}

		ww.WriteHeader(http.StatusOK)
		_, _ = ww.Write([]byte("OK"))

		logRequest(r, "health check received", ww.status, start)
	})

	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}

		tree, err := aggregator.Run(r.Context())
		if err != nil {
			// 致命错误：整个run中止，以单一错误响应呈现
			writeJSON(ww, http.StatusBadGateway, map[string]any{"error": err.Error()})
		} else {
			writeJSON(ww, http.StatusOK, tree)
		}

		logRequest(r, "diagnostic report requested", ww.status, start)
	})

	mux.HandleFunc("/findings", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}

		tree, err := aggregator.Run(r.Context())
		if err != nil {
			writeJSON(ww, http.StatusBadGateway, map[string]any{"error": err.Error()})
		} else {
			findings := advisor.Advise(tree)
			if findings == nil {
				findings = []advisor.Finding{}
			}
			writeJSON(ww, http.StatusOK, findings)
		}

		logRequest(r, "findings requested", ww.status, start)
	})

	return &HTTPServer{
		addr:       cfg.Addr,
		registry:   registry,
		aggregator: aggregator,
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      mux,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// Start 启动HTTP服务（非阻塞模式）
// 服务启动后持续运行，直到调用Shutdown；非正常关闭会触发Fatal日志
func (s *HTTPServer) Start() error {
	logger.Info(
		"starting HTTP server",
		"server",
		zap.String("listen_addr", s.addr),
		zap.Duration("read_timeout", s.server.ReadTimeout),
		zap.Duration("write_timeout", s.server.WriteTimeout),
		zap.Duration("idle_timeout", s.server.IdleTimeout),
	)

	// 子goroutine中启动服务（避免阻塞主流程）
	go func() {
		if err := s.server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal(
					"HTTP server failed to listen",
					"server",
					zap.Error(err),
					zap.String("listen_addr", s.addr),
				)
			} else {
				logger.Info(
					"HTTP server stopped listening",
					"server",
					zap.String("listen_addr", s.addr),
				)
			}
		}
	}()
	return nil
}

// Shutdown 优雅关闭HTTP服务：停止接收新请求，等待现有请求在超时内完成
func (s *HTTPServer) Shutdown() error {
	logger.Info("starting graceful shutdown of HTTP server", "server", zap.String("listen_addr", s.addr))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		// 忽略超时错误（超时视为关闭完成）
		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			return nil
		}
		logger.Error("HTTP server shutdown failed", "server", zap.Error(err), zap.String("listen_addr", s.addr))
		return err
	}
	logger.Info("HTTP server shutdown successfully", "server", zap.String("listen_addr", s.addr))
	return nil
}
