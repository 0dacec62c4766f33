package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/foomo/logseq-mcp/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "0.1.0"

// GuideURI is the resource with the initial usage instructions.
const GuideURI = "logseq://guide"

type NotesRequest struct {
	Topics []string `json:"topics"` // Topics to look up, case-insensitive
}

type NotesResponse struct {
	Kind     string `json:"kind"`     // How the result was resolved: tag, fulltext or guide
	Markdown string `json:"markdown"` // The notes in markdown format
}

type PageRequest struct {
	Name string `json:"name"` // The page name
}

type PageResponse struct {
	Markdown string `json:"markdown"` // The page in markdown format
}

// NewServer creates a new MCP server exposing the personal_notes and
// page tools plus the guide resource.
func NewServer(svc service.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Logseq PKM MCP",
		Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	notesTool := mcp.NewTool("personal_notes",
		mcp.WithDescription("Retrieve personal notes from Logseq. "+
			"Returns all information tagged with the given topics from the user's "+
			"personal knowledge base, as markdown. Hierarchical information comes "+
			"back as a nested list, and [[double bracketed]] text links to other "+
			"topics worth following up on."),
		mcp.WithArray("topics",
			mcp.Description("Topics to search for, case-insensitive. With no topics the usage guide is returned."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.AddTool(notesTool, mcp.NewTypedToolHandler(getNotesHandler(svc)))

	pageTool := mcp.NewTool("page",
		mcp.WithDescription("Render one Logseq page as markdown"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The name of the page to render"),
		),
	)
	s.AddTool(pageTool, mcp.NewTypedToolHandler(getPageHandler(svc)))

	guide := mcp.NewResource(GuideURI, "guide",
		mcp.WithResourceDescription("Initial instructions on how to interact with this knowledge base. Read this before anything else."),
		mcp.WithMIMEType("text/markdown"),
	)
	s.AddResource(guide, getGuideHandler(svc))

	return s
}

// getNotesHandler is the typed handler for the personal_notes tool
func getNotesHandler(svc service.Service) func(ctx context.Context, request mcp.CallToolRequest, args NotesRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args NotesRequest) (*mcp.CallToolResult, error) {
		result, err := svc.PersonalNotes(ctx, args.Topics)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to fetch notes: %v", err)), nil
		}

		response := NotesResponse{
			Kind:     string(result.Kind),
			Markdown: string(result.Markdown),
		}

		responseBytes, err := json.Marshal(response)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}

		return mcp.NewToolResultText(string(responseBytes)), nil
	}
}

// getPageHandler is the typed handler for the page tool
func getPageHandler(svc service.Service) func(ctx context.Context, request mcp.CallToolRequest, args PageRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args PageRequest) (*mcp.CallToolResult, error) {
		if args.Name == "" {
			return mcp.NewToolResultError("name is required"), nil
		}

		markdown, err := svc.Page(ctx, args.Name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to fetch page: %v", err)), nil
		}

		responseBytes, err := json.Marshal(PageResponse{Markdown: string(markdown)})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}

		return mcp.NewToolResultText(string(responseBytes)), nil
	}
}

func getGuideHandler(svc service.Service) func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		markdown, err := svc.Guide(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch guide: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GuideURI,
				MIMEType: "text/markdown",
				Text:     string(markdown),
			},
		}, nil
	}
}
