package convert

import "sort"

// ReorganizeBlocks rebuilds the block tree rooted at parentID. Each
// sibling group is ordered by following the left-sibling chain; a group
// whose chain is broken (no head, two heads, a gap or a cycle) falls back
// to raw response order so one corrupt group never blocks the rest of the
// page. Blocks whose parent id is unknown are attached under the root,
// and a visited set guarantees every block is attached exactly once even
// when parent references form a cycle. Children slices are attached to
// the mapped blocks; nothing else is mutated.
func ReorganizeBlocks(blocks map[string]*Block, parentID string) []*Block {
	groups := groupByParent(blocks, parentID)

	visited := make(map[string]bool, len(blocks))
	roots := orderSiblings(groups[parentID])
	attach(groups, roots, visited)

	// parent-reference cycles leave whole subtrees unreachable from the
	// root; break each cycle by promoting its first block to top level
	for _, block := range bySeq(blocks) {
		if !visited[block.ID] {
			roots = append(roots, block)
			attach(groups, []*Block{block}, visited)
		}
	}

	return roots
}

// attach walks subtrees iteratively, wiring ordered children onto each
// block. The explicit stack plus the visited set bound the traversal even
// for corrupt reference graphs.
func attach(groups map[string][]*Block, subtrees []*Block, visited map[string]bool) {
	stack := make([]*Block, 0, len(subtrees))
	for _, block := range subtrees {
		visited[block.ID] = true
		stack = append(stack, block)
	}

	for len(stack) > 0 {
		block := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		block.Children = block.Children[:0]
		for _, child := range orderSiblings(groups[block.ID]) {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			block.Children = append(block.Children, child)
			stack = append(stack, child)
		}
	}
}

// groupByParent buckets blocks by parent id. A parent id that names no
// known block is treated as the root, so orphaned blocks stay renderable.
func groupByParent(blocks map[string]*Block, rootID string) map[string][]*Block {
	groups := make(map[string][]*Block)
	for _, block := range blocks {
		parent := block.ParentID
		if _, known := blocks[parent]; !known && parent != rootID {
			parent = rootID
		}
		groups[parent] = append(groups[parent], block)
	}
	for _, group := range groups {
		sortBySeq(group)
	}
	return groups
}

// orderSiblings orders one sibling group by its left-id chain. The head
// is the block whose left id names no sibling; from there each block's id
// indexes the next. Any irregularity keeps the group in raw response
// order instead.
func orderSiblings(group []*Block) []*Block {
	if len(group) < 2 {
		return group
	}

	ids := make(map[string]bool, len(group))
	next := make(map[string]*Block, len(group))
	for _, block := range group {
		ids[block.ID] = true
	}

	var head *Block
	for _, block := range group {
		if ids[block.LeftID] {
			// chained after a sibling; duplicate left ids break the chain
			if next[block.LeftID] != nil {
				return group
			}
			next[block.LeftID] = block
			continue
		}
		if head != nil {
			return group
		}
		head = block
	}
	if head == nil {
		// every block points at a sibling: the chain is a cycle
		return group
	}

	ordered := make([]*Block, 0, len(group))
	for block := head; block != nil; block = next[block.ID] {
		ordered = append(ordered, block)
	}
	if len(ordered) != len(group) {
		return group
	}
	return ordered
}

func sortBySeq(group []*Block) {
	sort.Slice(group, func(i, j int) bool { return group[i].seq < group[j].seq })
}

func bySeq(blocks map[string]*Block) []*Block {
	all := make([]*Block, 0, len(blocks))
	for _, block := range blocks {
		all = append(all, block)
	}
	sortBySeq(all)
	return all
}
