package agent

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func initDatabaseFlags(root *cobra.Command) {
	f := root.PersistentFlags()
	dbPrefix := "database."

	f.String(
		dbPrefix+"scheme",
		defaultCfg.Database.Scheme,
		"-> Connection scheme [bolt,bolt+s,neo4j,neo4j+s] | 连接协议")
	f.String(
		dbPrefix+"host",
		defaultCfg.Database.Host,
		"-> Database hostname | 数据库主机名")
	f.Int(
		dbPrefix+"port",
		defaultCfg.Database.Port,
		"-> Bolt protocol port | bolt协议端口")
	f.String(
		dbPrefix+"username",
		defaultCfg.Database.Username,
		"-> Database username | 数据库用户名")
	f.String(
		dbPrefix+"password",
		defaultCfg.Database.Password,
		"-> Database password (redacted in reports) | 数据库密码")
	f.String(
		dbPrefix+"project",
		defaultCfg.Database.Project,
		"-> Logical project identifier | 逻辑project标识")
	f.String(
		dbPrefix+"graph",
		defaultCfg.Database.Graph,
		"-> Logical graph identifier | 逻辑graph标识")
	f.Duration(
		dbPrefix+"connect-timeout",
		defaultCfg.Database.ConnectTimeout,
		"-> Driver connect timeout | 建连超时")
	f.Int(
		dbPrefix+"pool-max-size",
		defaultCfg.Database.PoolMaxSize,
		"-> Max concurrent sessions per address pool | 每地址会话池上限")

	err := viper.BindPFlags(f)
	if err != nil {
		return
	}
}
