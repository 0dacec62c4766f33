package service

import (
	"context"
	"errors"
	"testing"

	"github.com/foomo/logseq-mcp/service/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier answers queries from a canned map and records what was
// asked.
type fakeQuerier struct {
	queries   []string
	responses map[string][]map[string]any
	err       error
}

func (f *fakeQuerier) Do(ctx context.Context, method string, args ...any) ([]map[string]any, error) {
	if len(args) > 0 {
		if q, ok := args[0].(string); ok {
			f.queries = append(f.queries, q)
			return f.responses[q], f.err
		}
	}
	return nil, f.err
}

func notesPage(content string) []map[string]any {
	return []map[string]any{
		{"id": 1, "name": "notes", "originalName": "Notes"},
		{"id": 2, "parent_id": 1, "content": content},
	}
}

func TestPersonalNotesTagQuery(t *testing.T) {
	querier := &fakeQuerier{responses: map[string][]map[string]any{
		"(or [[go]] [[testing]])": notesPage("tagged note"),
	}}

	result, err := NewService(querier, nil).PersonalNotes(context.Background(), []string{"go", "testing"})
	require.NoError(t, err)

	assert.Equal(t, vo.QueryKindTag, result.Kind)
	assert.Contains(t, string(result.Markdown), "- tagged note")
	assert.Equal(t, []string{"(or [[go]] [[testing]])"}, querier.queries)
}

func TestPersonalNotesFulltextFallback(t *testing.T) {
	querier := &fakeQuerier{responses: map[string][]map[string]any{
		`(or "go")`: notesPage("found by text"),
	}}

	result, err := NewService(querier, nil).PersonalNotes(context.Background(), []string{"go"})
	require.NoError(t, err)

	assert.Equal(t, vo.QueryKindFulltext, result.Kind)
	assert.Contains(t, string(result.Markdown), "- found by text")
	assert.Equal(t, []string{"(or [[go]])", `(or "go")`}, querier.queries)
}

func TestPersonalNotesNoTopicsReturnsGuide(t *testing.T) {
	querier := &fakeQuerier{responses: map[string][]map[string]any{
		`(page "MCP PKM Logseq")`: notesPage("read this first"),
	}}

	result, err := NewService(querier, nil).PersonalNotes(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, vo.QueryKindGuide, result.Kind)
	assert.Contains(t, string(result.Markdown), "- read this first")
}

func TestPersonalNotesPropagatesQueryError(t *testing.T) {
	querier := &fakeQuerier{err: errors.New("connection refused")}

	_, err := NewService(querier, nil).PersonalNotes(context.Background(), []string{"go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPage(t *testing.T) {
	querier := &fakeQuerier{responses: map[string][]map[string]any{
		`(page "Reading List")`: notesPage("a book"),
	}}

	markdown, err := NewService(querier, nil).Page(context.Background(), "Reading List")
	require.NoError(t, err)
	assert.Contains(t, string(markdown), "# Notes")
	assert.Contains(t, string(markdown), "- a book")
}
