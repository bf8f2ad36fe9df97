package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Validate HTTP服务配置校验
func (h *ServerConfig) Validate() error {
	if err := valid.Struct(h); err != nil {
		return err
	}
	// 	校验Addr格式(必须是 ":port" 或 "ip:port")
	if h.Addr == "" {
		return errors.New("server.addr cannot be empty")
	}
	// 	用net包解析地址，验证格式合法性
	if _, err := net.ResolveTCPAddr("tcp", h.Addr); err != nil {
		return fmt.Errorf("server.addr format invalid (expected: :port or ip:port), got %s: %w", h.Addr, err)
	}
	return nil
}

// Validate 数据库连接配置校验
func (d *DatabaseConfig) Validate() error {
	if err := valid.Struct(d); err != nil {
		return err
	}

	// 	校验主机名（不能含空白或协议前缀，scheme单独配置）
	if strings.TrimSpace(d.Host) == "" {
		return errors.New("database.host cannot be empty")
	}
	if strings.Contains(d.Host, "://") {
		return fmt.Errorf("database.host must not contain a scheme prefix, got %s", d.Host)
	}
	if strings.ContainsAny(d.Host, " \t\r\n") {
		return fmt.Errorf("database.host %q contains whitespace", d.Host)
	}

	// 	校验host:port整体可解析
	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	if _, err := net.ResolveTCPAddr("tcp", hostPort); err != nil {
		return fmt.Errorf("database address invalid, got %s: %w", hostPort, err)
	}

	// 	连接超时范围校验（底层driver默认10s，过大无意义）
	if d.ConnectTimeout < time.Second || d.ConnectTimeout > 10*time.Minute {
		return fmt.Errorf("database.connect_timeout must be between 1s and 10m, got %s", d.ConnectTimeout)
	}

	// 	会话池上限校验（每地址，过大容易打满数据库连接数）
	if d.PoolMaxSize > 1024 {
		return fmt.Errorf("database.pool_max_size must be <= 1024, got %d", d.PoolMaxSize)
	}
	return nil
}

// URI 拼装bolt连接URI（scheme://host:port）
func (d *DatabaseConfig) URI() string {
	return fmt.Sprintf("%s://%s", d.Scheme, net.JoinHostPort(d.Host, strconv.Itoa(d.Port)))
}

// Encrypted 是否启用传输加密（由scheme后缀决定）
func (d *DatabaseConfig) Encrypted() bool {
	return strings.HasSuffix(d.Scheme, "+s")
}
