package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(id, parentID, leftID string, seq int) *Block {
	return &Block{ID: id, ParentID: parentID, LeftID: leftID, seq: seq}
}

func blockMap(blocks ...*Block) map[string]*Block {
	m := make(map[string]*Block, len(blocks))
	for _, b := range blocks {
		m[b.ID] = b
	}
	return m
}

func ids(blocks []*Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

func TestReorganizeBlocksFollowsLeftChain(t *testing.T) {
	// insertion order deliberately disagrees with the chain order
	blocks := blockMap(
		block("c", "page", "b", 0),
		block("a", "page", "page", 1),
		block("b", "page", "a", 2),
	)

	roots := ReorganizeBlocks(blocks, "page")
	assert.Equal(t, []string{"a", "b", "c"}, ids(roots))
}

func TestReorganizeBlocksNests(t *testing.T) {
	blocks := blockMap(
		block("a", "page", "page", 0),
		block("a1", "a", "a", 1),
		block("a2", "a", "a1", 2),
		block("b", "page", "a", 3),
	)

	roots := ReorganizeBlocks(blocks, "page")
	require.Equal(t, []string{"a", "b"}, ids(roots))
	assert.Equal(t, []string{"a1", "a2"}, ids(roots[0].Children))
	assert.Empty(t, roots[1].Children)
}

func TestReorganizeBlocksDeterministic(t *testing.T) {
	blocks := blockMap(
		block("c", "page", "b", 0),
		block("a", "page", "page", 1),
		block("b", "page", "a", 2),
		block("c1", "c", "c", 3),
	)

	first := ids(ReorganizeBlocks(blocks, "page"))
	second := ids(ReorganizeBlocks(blocks, "page"))
	assert.Equal(t, first, second)
}

func TestReorganizeBlocksLeftCycleFallsBackToInputOrder(t *testing.T) {
	blocks := blockMap(
		block("a", "page", "b", 0),
		block("b", "page", "c", 1),
		block("c", "page", "a", 2),
	)

	roots := ReorganizeBlocks(blocks, "page")
	assert.Equal(t, []string{"a", "b", "c"}, ids(roots))
}

func TestReorganizeBlocksTwoChainHeadsFallsBackToInputOrder(t *testing.T) {
	blocks := blockMap(
		block("a", "page", "page", 0),
		block("b", "page", "page", 1),
		block("c", "page", "a", 2),
	)

	roots := ReorganizeBlocks(blocks, "page")
	assert.Equal(t, []string{"a", "b", "c"}, ids(roots))
}

func TestReorganizeBlocksGapFallsBackToInputOrder(t *testing.T) {
	// b's predecessor never arrived, leaving two chain fragments
	blocks := blockMap(
		block("a", "page", "page", 0),
		block("b", "page", "missing", 1),
		block("c", "page", "b", 2),
	)

	roots := ReorganizeBlocks(blocks, "page")
	assert.Equal(t, []string{"a", "b", "c"}, ids(roots))
}

func TestReorganizeBlocksOrphanBecomesTopLevel(t *testing.T) {
	blocks := blockMap(
		block("a", "page", "page", 0),
		block("x", "nonexistent", "", 1),
	)

	roots := ReorganizeBlocks(blocks, "page")
	assert.ElementsMatch(t, []string{"a", "x"}, ids(roots))
}

func TestReorganizeBlocksParentCycleTerminates(t *testing.T) {
	blocks := blockMap(
		block("a", "b", "", 0),
		block("b", "a", "", 1),
	)

	roots := ReorganizeBlocks(blocks, "page")
	require.Equal(t, []string{"a"}, ids(roots))
	assert.Equal(t, []string{"b"}, ids(roots[0].Children))
}

func TestReorganizeBlocksEmpty(t *testing.T) {
	assert.Empty(t, ReorganizeBlocks(nil, "page"))
	assert.Empty(t, ReorganizeBlocks(map[string]*Block{}, "page"))
}
