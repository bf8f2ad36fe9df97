package topology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-inspector/internal/topology"
)

func TestMemberBoltAddressPrefersBoltEndpoint(t *testing.T) {
	m := topology.Member{
		ID:        "core-1",
		Addresses: []string{"http://node-a:7474", "bolt://node-a:7687", "https://node-a:7473"},
	}
	addr, err := m.BoltAddress()
	require.NoError(t, err)
	assert.Equal(t, "bolt://node-a:7687", addr.String())
}

func TestMemberBoltAddressAcceptsNeo4jScheme(t *testing.T) {
	m := topology.Member{ID: "core-1", Addresses: []string{"neo4j://node-a:7687"}}
	addr, err := m.BoltAddress()
	require.NoError(t, err)
	assert.Equal(t, "neo4j", addr.Scheme)
}

func TestMemberBoltAddressErrorsWithoutBoltEndpoint(t *testing.T) {
	m := topology.Member{ID: "core-1", Addresses: []string{"http://node-a:7474"}}
	_, err := m.BoltAddress()
	assert.ErrorContains(t, err, "core-1")
}

func TestMemberProtocols(t *testing.T) {
	m := topology.Member{
		ID:        "core-1",
		Addresses: []string{"BOLT://node-a:7687", "http://node-a:7474"},
	}
	assert.Equal(t, []string{"bolt", "http"}, m.Protocols())
}
