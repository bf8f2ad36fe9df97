package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-inspector/internal/bolt"
	"github.com/graph-inspector/internal/bolt/boltfake"
	"github.com/graph-inspector/internal/collector"
	"github.com/graph-inspector/internal/report"
	"github.com/graph-inspector/internal/topology"
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

// standaloneScript 单机部署的完整脚本：overview缺失 + 全部成员查询正常
func standaloneScript() *boltfake.Script {
	return boltfake.NewScript().
		On("CALL dbms.cluster.overview()", nil, errors.New("no such procedure: dbms.cluster.overview")).
		On("CALL dbms.queryJmx('*:*')", []bolt.Record{{"name": "org.neo4j:name=Kernel", "attributes": map[string]any{}}}, nil).
		On("CALL dbms.security.listUsers()", []bolt.Record{{"username": "neo4j", "roles": []any{"admin"}}}, nil).
		On("CALL dbms.security.listRoles()", []bolt.Record{{"role": "admin", "users": []any{"neo4j"}}}, nil).
		On("CALL dbms.listConfig()", []bolt.Record{{"name": "dbms.mode", "value": "SINGLE"}}, nil).
		On("CALL db.constraints()", []bolt.Record{}, nil).
		On("CALL db.indexes()", []bolt.Record{}, nil).
		On("RETURN apoc.version() as value", []bolt.Record{{"value": "3.5.0.15"}}, nil).
		On("RETURN algo.version() as value", nil, errors.New("Unknown function 'algo.version'")).
		On("MATCH (n) RETURN count(n) as value", []bolt.Record{{"value": int64(0)}}, nil).
		On("call db.labels() yield label return collect(label) as value", []bolt.Record{{"value": []any{}}}, nil)
}

func newTestServer(t *testing.T, script *boltfake.Script) *HTTPServer {
	t.Helper()

	f := boltfake.NewFactory(script)
	reg := bolt.NewRegistry(f.DriverFactory, time.Second)
	conn := bolt.NewConnector(reg, bolt.NewPoolManager(4), bolt.Credentials{Username: "neo4j", Password: "secret"})

	base, err := bolt.ParseAddress("bolt://localhost:7687")
	require.NoError(t, err)
	disco := topology.NewDiscoverer(conn, base)

	db := &config.DatabaseConfig{
		Scheme: "bolt", Host: "localhost", Port: 7687,
		Username: "neo4j", Password: "secret",
		ConnectTimeout: time.Second, PoolMaxSize: 4,
	}
	agg := collector.NewAggregator(conn, disco, db, "0.1.0")

	cfg := &config.ServerConfig{
		Addr:         "127.0.0.1:0",
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}
	return NewHTTPServer(cfg, prometheus.NewRegistry(), agg)
}

func do(s *HTTPServer, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, standaloneScript())
	w := do(s, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, standaloneScript())
	w := do(s, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportEndpoint(t *testing.T) {
	s := newTestServer(t, standaloneScript())
	w := do(s, "/report")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var tree map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tree))

	nodes := tree["nodes"].([]any)
	require.Len(t, nodes, 1)
	assert.Equal(t, false, tree["clustered"])

	// 报告经过脱敏
	connection := tree["process"].(map[string]any)["connection"].(map[string]any)
	assert.Equal(t, report.Mask, connection["password"])
}

func TestReportEndpointFatalRunIs502(t *testing.T) {
	script := boltfake.NewScript().
		On("CALL dbms.cluster.overview()", nil, errors.New("connection reset by peer"))
	s := newTestServer(t, script)

	w := do(s, "/report")
	require.Equal(t, http.StatusBadGateway, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "cluster overview failed")
}

func TestFindingsEndpoint(t *testing.T) {
	s := newTestServer(t, standaloneScript())
	w := do(s, "/findings")
	require.Equal(t, http.StatusOK, w.Code)

	var findings []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &findings))

	rulesSeen := map[string]bool{}
	for _, f := range findings {
		rulesSeen[f["rule"].(string)] = true
	}
	// 空schema的单机部署：三条info结论
	assert.True(t, rulesSeen["no-indexes"])
	assert.True(t, rulesSeen["no-constraints"])
	assert.True(t, rulesSeen["single-member"])
}
