package bolt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-inspector/internal/bolt"
)

func TestParseAddress(t *testing.T) {
	addr, err := bolt.ParseAddress("bolt://db.example.com:7688")
	require.NoError(t, err)
	assert.Equal(t, "bolt", addr.Scheme)
	assert.Equal(t, "db.example.com", addr.Host)
	assert.Equal(t, 7688, addr.Port)
	assert.Equal(t, "bolt://db.example.com:7688", addr.String())
}

func TestParseAddressDefaultsPort(t *testing.T) {
	addr, err := bolt.ParseAddress("neo4j://node-a")
	require.NoError(t, err)
	assert.Equal(t, 7687, addr.Port)
	assert.Equal(t, "neo4j://node-a:7687", addr.String())
}

func TestParseAddressLowercasesScheme(t *testing.T) {
	addr, err := bolt.ParseAddress("BOLT://Node-A:7687")
	require.NoError(t, err)
	assert.Equal(t, "bolt", addr.Scheme)
}

func TestParseAddressRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{"", "node-a:7687", "bolt://", "bolt://node-a:notaport"} {
		_, err := bolt.ParseAddress(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}
