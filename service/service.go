// Package service builds Logseq DSL queries for the MCP tools and turns
// their responses into markdown.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/foomo/logseq-mcp/convert"
	"github.com/foomo/logseq-mcp/service/vo"
	"go.uber.org/zap"
)

// guidePage holds the usage instructions for the knowledge base.
const guidePage = "MCP PKM Logseq"

type Service interface {
	// PersonalNotes returns everything tagged with the given topics. When
	// the tag query comes back empty it retries as a full text search;
	// with no topics it returns the guide.
	PersonalNotes(ctx context.Context, topics []string) (vo.NotesResult, error)
	// Page renders one named page.
	Page(ctx context.Context, name string) (vo.Markdown, error)
	// Guide renders the knowledge base usage guide.
	Guide(ctx context.Context) (vo.Markdown, error)
}

// Querier is the request collaborator, satisfied by *logseq.Client.
type Querier interface {
	Do(ctx context.Context, method string, args ...any) ([]map[string]any, error)
}

type service struct {
	client Querier
	logger *zap.Logger
}

func NewService(client Querier, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		client: client,
		logger: logger,
	}
}

func (s *service) PersonalNotes(ctx context.Context, topics []string) (vo.NotesResult, error) {
	if len(topics) == 0 {
		markdown, err := s.Guide(ctx)
		return vo.NotesResult{Kind: vo.QueryKindGuide, Markdown: markdown}, err
	}

	markdown, err := s.query(ctx, tagQuery(topics))
	if err != nil {
		return vo.NotesResult{}, err
	}
	if markdown != "" {
		return vo.NotesResult{Kind: vo.QueryKindTag, Markdown: markdown}, nil
	}

	// nothing tagged with these topics, fall back to full text search
	s.logger.Debug("tag query empty, falling back to full text search", zap.Strings("topics", topics))
	markdown, err = s.query(ctx, fulltextQuery(topics))
	if err != nil {
		return vo.NotesResult{}, err
	}
	return vo.NotesResult{Kind: vo.QueryKindFulltext, Markdown: markdown}, nil
}

func (s *service) Page(ctx context.Context, name string) (vo.Markdown, error) {
	return s.query(ctx, fmt.Sprintf("(page %q)", name))
}

func (s *service) Guide(ctx context.Context) (vo.Markdown, error) {
	return s.Page(ctx, guidePage)
}

func (s *service) query(ctx context.Context, q string) (vo.Markdown, error) {
	records, err := s.client.Do(ctx, "logseq.DB.q", q)
	if err != nil {
		return "", fmt.Errorf("query %s failed: %w", q, err)
	}
	return convert.PageToMarkdown(records), nil
}

// tagQuery matches blocks referencing any topic as [[topic]].
func tagQuery(topics []string) string {
	terms := make([]string, len(topics))
	for i, topic := range topics {
		terms[i] = "[[" + topic + "]]"
	}
	return "(or " + strings.Join(terms, " ") + ")"
}

// fulltextQuery matches blocks containing any topic as plain text.
func fulltextQuery(topics []string) string {
	terms := make([]string, len(topics))
	for i, topic := range topics {
		terms[i] = fmt.Sprintf("%q", topic)
	}
	return "(or " + strings.Join(terms, " ") + ")"
}
