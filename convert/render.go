package convert

import "strings"

// indentStep is the indentation added per nesting level, matching
// Logseq's own two-space outline convention so the output round-trips
// visually on re-import.
const indentStep = "  "

// maxRenderDepth clamps indentation for pathologically deep trees.
const maxRenderDepth = 64

// FormatBlocks renders an ordered block tree as a markdown list.
func FormatBlocks(blocks []*Block) string {
	if len(blocks) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, block := range blocks {
		formatBlock(&sb, block, 0)
	}
	return sb.String()
}

// formatBlock writes one block as a list item at the given depth, then
// its children one level deeper. Multi-line content continues aligned
// under the first line's text rather than under the bullet.
func formatBlock(sb *strings.Builder, block *Block, depth int) {
	if depth > maxRenderDepth {
		depth = maxRenderDepth
	}
	indent := strings.Repeat(indentStep, depth)

	if strings.Contains(block.Content, "```") {
		formatCodeBlock(sb, block.Content, indent)
	} else {
		lines := strings.Split(block.Content, "\n")
		sb.WriteString(indent)
		sb.WriteString("-")
		if lines[0] != "" {
			sb.WriteString(" ")
			sb.WriteString(lines[0])
		}
		sb.WriteString("\n")
		for _, line := range lines[1:] {
			sb.WriteString(indent)
			sb.WriteString(indentStep)
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	for _, child := range block.Children {
		formatBlock(sb, child, depth+1)
	}
}

// formatCodeBlock re-emits fenced code content verbatim: the opening
// fence (with its language tag) becomes the list item text and every
// following line, closing fence included, aligns under it. Nothing inside
// the fence is escaped or reflowed.
func formatCodeBlock(sb *strings.Builder, content string, indent string) {
	lines := strings.Split(content, "\n")
	sb.WriteString(indent)
	sb.WriteString("- ")
	sb.WriteString(lines[0])
	sb.WriteString("\n")
	for _, line := range lines[1:] {
		sb.WriteString(indent)
		sb.WriteString(indentStep)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}
