package goid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/graph-inspector/pkg/goid"
)

func TestGetGIDIsStableWithinGoroutine(t *testing.T) {
	id1 := goid.GetGID()
	id2 := goid.GetGID()
	assert.Positive(t, id1)
	assert.Equal(t, id1, id2)
}

func TestGetGIDDiffersAcrossGoroutines(t *testing.T) {
	mine := goid.GetGID()
	ch := make(chan uint64, 1)
	go func() {
		ch <- goid.GetGID()
	}()
	assert.NotEqual(t, mine, <-ch)
}
