package vo

type Markdown string

// QueryKind tells a caller how a notes result was resolved.
type QueryKind string

const (
	QueryKindTag      QueryKind = "tag"      // matched via [[topic]] references
	QueryKindFulltext QueryKind = "fulltext" // matched via full text search
	QueryKindGuide    QueryKind = "guide"    // fell back to the usage guide
)

// NotesResult is the outcome of a personal notes lookup.
type NotesResult struct {
	Kind     QueryKind `json:"kind"`
	Markdown Markdown  `json:"markdown"`
}
