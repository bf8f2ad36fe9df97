package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var valid = validator.New()

// Config 全局配置结构体（聚合所有核心模块）
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server" comment:"HTTP服务配置"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database" comment:"图数据库连接配置"`
	Log      ZapLogConfig   `yaml:"log" mapstructure:"log" comment:"日志配置"`
}

// ServerConfig HTTP服务配置（超时统一为time.Duration，支持"30s"解析）
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr" env:"HTTP_ADDR" validate:"required,hostname_port" comment:"HTTP监听地址（格式：ip:port）"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" env:"HTTP_READ_TIMEOUT" validate:"required,gt=0" comment:"读取超时时间（如30s）"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" env:"HTTP_WRITE_TIMEOUT" validate:"required,gt=0" comment:"写入超时时间（如30s）"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" validate:"required,gt=0" comment:"空闲连接超时时间（如60s）"`
}

// DatabaseConfig 图数据库连接配置
// 对应宿主环境提供的「当前活动连接描述符」：地址、端口、凭据、逻辑project/graph标识
type DatabaseConfig struct {
	Scheme         string        `yaml:"scheme" mapstructure:"scheme" env:"DB_SCHEME" validate:"required,oneof=bolt bolt+s neo4j neo4j+s" comment:"连接协议" default:"bolt"`
	Host           string        `yaml:"host" mapstructure:"host" env:"DB_HOST" validate:"required" comment:"数据库主机名" default:"localhost"`
	Port           int           `yaml:"port" mapstructure:"port" env:"DB_PORT" validate:"required,gt=0,lte=65535" comment:"bolt协议端口" default:"7687"`
	Username       string        `yaml:"username" mapstructure:"username" env:"DB_USERNAME" validate:"required" comment:"数据库用户名" default:"neo4j"`
	Password       string        `yaml:"password" mapstructure:"password" env:"DB_PASSWORD" comment:"数据库密码（报告中会被脱敏）"`
	Project        string        `yaml:"project" mapstructure:"project" env:"DB_PROJECT" comment:"宿主侧逻辑project标识"`
	Graph          string        `yaml:"graph" mapstructure:"graph" env:"DB_GRAPH" comment:"宿主侧逻辑graph标识"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout" env:"DB_CONNECT_TIMEOUT" validate:"required,gt=0" comment:"建立driver连接超时（默认10s）" default:"10s"`
	PoolMaxSize    int           `yaml:"pool_max_size" mapstructure:"pool_max_size" env:"DB_POOL_MAX_SIZE" validate:"required,gt=0" comment:"每地址会话池最大并发会话数" default:"15"`
}

// ZapLogConfig 日志配置
type ZapLogConfig struct {
	Level     string `yaml:"level" mapstructure:"level" env:"LOG_LEVEL" validate:"required,oneof=debug info warn error" comment:"日志级别" default:"info"`
	Format    string `yaml:"format" mapstructure:"format" env:"LOG_FORMAT" validate:"required,oneof=json console" comment:"日志格式（json/console）" default:"json"`
	Path      string `yaml:"path" mapstructure:"path" env:"LOG_PATH" validate:"required" comment:"日志存储路径" default:"./logs"`
	MaxSize   int    `yaml:"max_size" mapstructure:"max_size" env:"LOG_MAX_SIZE" validate:"required,gt=0" comment:"单个日志文件最大大小（MB）" default:"100"`
	MaxBackup int    `yaml:"max_backup" mapstructure:"max_backup" env:"LOG_MAX_BACKUP" validate:"gte=0" comment:"日志文件最大备份数" default:"30"`
	MaxAge    int    `yaml:"max_age" mapstructure:"max_age" env:"LOG_MAX_AGE" validate:"gte=0" comment:"日志文件最大保存天数" default:"7"`
	Compress  bool   `yaml:"compress" mapstructure:"compress" env:"LOG_COMPRESS" comment:"是否压缩过期日志" default:"true"`
}

// NewDefaultConfig 创建默认配置（所有字段兜底，避免空指针/非法值）
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         "0.0.0.0:8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Scheme:         "bolt",
			Host:           "localhost",
			Port:           7687,
			Username:       "neo4j",
			Password:       "",
			ConnectTimeout: 10 * time.Second,
			PoolMaxSize:    15,
		},
		Log: ZapLogConfig{
			Level:     "info",
			Format:    "json",
			Path:      "./logs",
			MaxSize:   100,
			MaxBackup: 30,
			MaxAge:    7,
			Compress:  true,
		},
	}
}

// LoadConfigWithCli 支持 time.Duration，(Flags + YAML + ENV)
func LoadConfigWithCli(cmd *cobra.Command) (*Config, error) {
	cfg := NewDefaultConfig()
	v := viper.New()

	// 1. 绑定 Cobra Flags → Viper
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	// 2. 解析配置文件 (--config)
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	// 3. 绑定环境变量 ENV -> Viper （DB_HOST -> database.host）
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("_", "."))

	// 4. 解码反序列化到结构体（支持 time.Duration）
	decoderConfig := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 5. 校验配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate 配置校验
func (c *Config) Validate() error {
	if err := valid.Struct(c); err != nil {
		return err
	}
	// 	1,校验Server服务配置
	if err := c.Server.Validate(); err != nil {
		return err
	}
	// 	2,校验数据库连接配置
	if err := c.Database.Validate(); err != nil {
		return err
	}
	// 	3,校验日志配置
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
