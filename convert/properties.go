package convert

import (
	"regexp"
	"strings"
)

// propertyLine matches one `key:: value` line. Keys follow Logseq's
// property naming (word characters and dashes); the value is kept as one
// opaque string, multi-value properties included.
var propertyLine = regexp.MustCompile(`^([\w-]+)::\s?(.*)$`)

// ExtractProperties splits page-level metadata off the block set. The
// first top-level block whose content consists entirely of `key:: value`
// lines is the properties block: its pairs are returned in line order and
// the block is removed from the returned mapping. When no block
// qualifies, the property list is nil and the mapping is returned with
// the same contents. The input mapping is never mutated.
func ExtractProperties(page Page, blocks map[string]*Block) ([]Property, map[string]*Block) {
	candidate := firstTopLevelBlock(page, blocks)
	if candidate == nil {
		return nil, blocks
	}

	properties := parseProperties(candidate.Content)
	if properties == nil {
		return nil, blocks
	}

	remaining := make(map[string]*Block, len(blocks)-1)
	for id, block := range blocks {
		if id != candidate.ID {
			remaining[id] = block
		}
	}
	return properties, remaining
}

// firstTopLevelBlock finds the block directly under the page with no
// left sibling. Returns nil when the page has no such block or when two
// blocks both claim the first position (corrupt chain, nothing is
// extracted rather than guessing).
func firstTopLevelBlock(page Page, blocks map[string]*Block) *Block {
	var first *Block
	for _, block := range blocks {
		if block.ParentID != page.ID {
			continue
		}
		if block.LeftID != page.ID && block.LeftID != "" {
			continue
		}
		if first != nil {
			return nil
		}
		first = block
	}
	return first
}

// parseProperties parses content composed entirely of property lines.
// Returns nil when any non-empty line fails to parse, leaving the content
// to be rendered as a regular block instead.
func parseProperties(content string) []Property {
	var properties []Property
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := propertyLine.FindStringSubmatch(line)
		if m == nil {
			return nil
		}
		properties = append(properties, Property{Key: m[1], Value: m[2]})
	}
	return properties
}
