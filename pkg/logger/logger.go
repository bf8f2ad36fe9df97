package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/graph-inspector/pkg/config"
	"github.com/graph-inspector/pkg/goid"
)

type Logger = zap.Logger

var (
	baseLogger    *zap.Logger
	defaultFields = struct {
		Component string
	}{}
	loggerInitOnce    sync.Once
	loggerInitialized bool
	mu                sync.RWMutex
)

// Init 初始化全局日志器（进程内仅生效一次）
// 控制台输出 + 按天滚动的JSON文件输出双写
func Init(cfg *config.ZapLogConfig) error {
	var err error
	loggerInitOnce.Do(func() {
		level := zapcore.InfoLevel
		switch strings.ToLower(cfg.Level) {
		case "dbg", "debug":
			level = zapcore.DebugLevel
		case "inf", "info":
			level = zapcore.InfoLevel
		case "war", "warn":
			level = zapcore.WarnLevel
		case "err", "error":
			level = zapcore.ErrorLevel
		}

		if err = os.MkdirAll(cfg.Path, 0755); err != nil {
			return
		}

		writer, wErr := rotatelogs.New(
			filepath.Join(cfg.Path, "inspector-%Y%m%d.log"),
			rotatelogs.WithMaxAge(time.Duration(cfg.MaxAge)*24*time.Hour),
			rotatelogs.WithRotationTime(24*time.Hour),
			rotatelogs.WithRotationSize(int64(cfg.MaxSize)*1024*1024),
		)
		if wErr != nil {
			err = wErr
			return
		}

		// JSON 日志纯文本时间
		jsonCfg := zap.NewProductionEncoderConfig()
		jsonCfg.TimeKey = "timestamp"
		jsonCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format("2006-01-02 15:04:05.000 -07:00"))
		}
		jsonCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		jsonEncoder := zapcore.NewJSONEncoder(jsonCfg)

		// 控制台编码器（format=json时控制台同样输出JSON）
		var stdoutEncoder zapcore.Encoder
		if cfg.Format == "json" {
			stdoutEncoder = jsonEncoder
		} else {
			consoleCfg := zap.NewDevelopmentEncoderConfig()
			consoleCfg.ConsoleSeparator = " "
			consoleCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
				enc.AppendString(fmt.Sprintf("\033[34m%s\033[0m", t.Format("2006-01-02 15:04:05.000 -07:00")))
			}
			consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
			// Caller 两级路径
			consoleCfg.EncodeCaller = func(c zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
				rel := filepath.Join(filepath.Base(filepath.Dir(c.File)), filepath.Base(c.File))
				enc.AppendString(fmt.Sprintf("%s:%d", rel, c.Line))
			}
			stdoutEncoder = zapcore.NewConsoleEncoder(consoleCfg)
		}

		core := zapcore.NewTee(
			zapcore.NewCore(stdoutEncoder, zapcore.AddSync(os.Stdout), level),
			zapcore.NewCore(jsonEncoder, zapcore.AddSync(writer), level),
		)

		baseLogger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel))
		loggerInitialized = true
	})
	return err
}

// SetDefaultComponent 设置全局默认组件名（相关日志自动携带）
func SetDefaultComponent(component string) {
	mu.Lock()
	defer mu.Unlock()
	defaultFields.Component = component
}

func getDefaultFields(componentOverride string) []zapcore.Field {
	mu.RLock()
	component := defaultFields.Component
	mu.RUnlock()

	if componentOverride != "" {
		component = componentOverride
	}

	return []zapcore.Field{
		zap.String("component", component),
		zap.String("goid", strconv.FormatUint(goid.GetGID(), 10)),
	}
}

func log(level zapcore.Level, msg string, componentOverride string, fields ...zapcore.Field) {
	if !loggerInitialized {
		panic("logger not initialized: call logger.Init() first")
	}

	merged := append(getDefaultFields(componentOverride), fields...)

	switch level {
	case zap.DebugLevel:
		baseLogger.Debug(msg, merged...)
	case zap.InfoLevel:
		baseLogger.Info(msg, merged...)
	case zap.WarnLevel:
		baseLogger.Warn(msg, merged...)
	case zap.ErrorLevel:
		baseLogger.Error(msg, merged...)
	case zap.PanicLevel:
		baseLogger.Panic(msg, merged...)
	case zap.FatalLevel:
		baseLogger.Fatal(msg, merged...)
	}
}

func Debug(msg string, componentOverride string, fields ...zapcore.Field) {
	log(zap.DebugLevel, msg, componentOverride, fields...)
}
func Info(msg string, componentOverride string, fields ...zapcore.Field) {
	log(zap.InfoLevel, msg, componentOverride, fields...)
}
func Warn(msg string, componentOverride string, fields ...zapcore.Field) {
	log(zap.WarnLevel, msg, componentOverride, fields...)
}
func Error(msg string, componentOverride string, fields ...zapcore.Field) {
	log(zap.ErrorLevel, msg, componentOverride, fields...)
}
func Panic(msg string, componentOverride string, fields ...zapcore.Field) {
	log(zap.PanicLevel, msg, componentOverride, fields...)
}
func Fatal(msg string, componentOverride string, fields ...zapcore.Field) {
	log(zap.FatalLevel, msg, componentOverride, fields...)
}

func Sync() error {
	if !loggerInitialized {
		return nil
	}
	return baseLogger.Sync()
}

func GetLogger() *zap.Logger {
	if !loggerInitialized {
		panic("logger not initialized: call logger.Init() first")
	}
	return baseLogger
}
