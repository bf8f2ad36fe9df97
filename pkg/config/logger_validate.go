package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Validate 日志配置校验
func (l *ZapLogConfig) Validate() error {

	// --- 基础 tag 校验 ---
	if err := valid.Struct(l); err != nil {
		return fmt.Errorf("log config invalid: %w", err)
	}

	// 	校验日志级别，（必须是zap支持的合法级别）
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(l.Level)] {
		return fmt.Errorf("log.level invalid (valid: debug/info/warn/error), got %s", l.Level)
	}
	// 	校验日志格式
	if l.Format != "json" && l.Format != "console" {
		return fmt.Errorf("log.format must be 'json' or 'console', got %s", l.Format)
	}
	// 	校验日志路径(非空，确保可创建)
	abs, err := filepath.Abs(l.Path)
	if err != nil {
		return fmt.Errorf("log.path failed to resolve, got %s: %w", l.Path, err)
	}
	if err := ensureDir(abs); err != nil {
		return fmt.Errorf("log.path directory is not writable, got %s: %w", l.Path, err)
	}
	return nil
}

func ensureDir(path string) error {
	stat, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}
	if err != nil {
		return err
	}
	if !stat.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
