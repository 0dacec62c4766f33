// Package convert turns raw Logseq API block records into a markdown
// rendering of the page. The conversion runs as four pure stages:
// CleanResponse normalizes the raw records, ExtractProperties splits
// page-level metadata off the first block, ReorganizeBlocks rebuilds the
// tree from parent and left-sibling references, and BuildMarkdown walks
// the tree into text. No stage mutates its input, so concurrent
// conversions share no state.
package convert

import (
	"strings"

	"github.com/foomo/logseq-mcp/service/vo"
)

// Page is the root container of one query response.
type Page struct {
	ID           string
	Name         string
	OriginalName string
}

// Title returns the display name of the page.
func (p Page) Title() string {
	if p.OriginalName != "" {
		return p.OriginalName
	}
	return p.Name
}

// Block is one node of page content. ParentID and LeftID carry the raw
// references from the API; Children is populated by ReorganizeBlocks and
// empty before that.
type Block struct {
	ID         string
	ParentID   string
	LeftID     string
	Content    string
	Properties map[string]any
	Children   []*Block

	// position in the raw response, used as ordering fallback when a
	// left-sibling chain is broken
	seq int
}

// Property is one page-level key:: value pair.
type Property struct {
	Key   string
	Value string
}

// PageToMarkdown converts one raw Logseq API response into a markdown
// string. An empty response yields an empty string, never an error:
// malformed records degrade the output instead of failing it.
func PageToMarkdown(records []map[string]any) vo.Markdown {
	page, blocks := CleanResponse(records)
	return BuildMarkdown(page, blocks)
}

// BuildMarkdown renders the page title, its properties and the block
// hierarchy into a single markdown string.
func BuildMarkdown(page Page, blocks map[string]*Block) vo.Markdown {
	var sb strings.Builder

	if title := page.Title(); title != "" {
		sb.WriteString("# ")
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}

	properties, remaining := ExtractProperties(page, blocks)
	for _, prop := range properties {
		sb.WriteString(prop.Key)
		sb.WriteString(":: ")
		sb.WriteString(prop.Value)
		sb.WriteString("\n")
	}
	if len(properties) > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(FormatBlocks(ReorganizeBlocks(remaining, page.ID)))

	return vo.Markdown(sb.String())
}
