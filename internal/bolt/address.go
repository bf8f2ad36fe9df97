// Package bolt 管理到图数据库的底层连接：每地址唯一的driver注册表、
// 有界可复用的会话池，以及查询结果行到普通键值记录的转换。
package bolt

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Address 连接端点（scheme+host+port），driver与会话池的身份键
type Address struct {
	Scheme string
	Host   string
	Port   int
}

// String 规范URI形式（如 bolt://host:7687），同时作为注册表键
func (a Address) String() string {
	return fmt.Sprintf("%s://%s", a.Scheme, net.JoinHostPort(a.Host, strconv.Itoa(a.Port)))
}

// ParseAddress 解析 "scheme://host:port" 形式的端点
func ParseAddress(raw string) (Address, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Address{}, fmt.Errorf("parse address %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return Address{}, fmt.Errorf("address %q must be scheme://host:port", raw)
	}
	port := 7687
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return Address{}, fmt.Errorf("address %q has invalid port: %w", raw, err)
		}
	}
	return Address{Scheme: strings.ToLower(u.Scheme), Host: u.Hostname(), Port: port}, nil
}

// Credentials driver绑定的凭据对
type Credentials struct {
	Username string
	Password string
}
