package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	orcadocs "github.com/nasa/orca-docs"
)

const Version = "0.1.0"

type ListSidebarsRequest struct{}

type ListSidebarsResponse struct {
	Sidebars []string `json:"sidebars"`
}

type GetSidebarRequest struct {
	ID string `json:"id"`
}

type GetSidebarResponse struct {
	ID        string            `json:"id"`
	Sidebar   orcadocs.Sidebar  `json:"sidebar"`
	Documents []orcadocs.DocRef `json:"documents"`
}

// NewServer creates an MCP server that exposes the sidebars of the manifest.
func NewServer(manifest *orcadocs.SidebarSet) *server.MCPServer {
	s := server.NewMCPServer(
		"ORCA docs navigation",
		Version,
		server.WithToolCapabilities(false),
	)

	listTool := mcp.NewTool("list_sidebars",
		mcp.WithDescription("List the IDs of all documentation sidebars in display order"),
	)

	s.AddTool(listTool, mcp.NewTypedToolHandler(listSidebarsHandler(manifest)))

	getTool := mcp.NewTool("get_sidebar",
		mcp.WithDescription("Get the categories and documents of a documentation sidebar"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The sidebar ID, e.g. 'about_orca'"),
		),
	)

	s.AddTool(getTool, mcp.NewTypedToolHandler(getSidebarHandler(manifest)))

	return s
}

func listSidebarsHandler(
	manifest *orcadocs.SidebarSet,
) func(ctx context.Context, request mcp.CallToolRequest, args ListSidebarsRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, _ mcp.CallToolRequest, _ ListSidebarsRequest) (*mcp.CallToolResult, error) {
		return jsonResult(ListSidebarsResponse{
			Sidebars: manifest.IDs(),
		}), nil
	}
}

func getSidebarHandler(
	manifest *orcadocs.SidebarSet,
) func(ctx context.Context, request mcp.CallToolRequest, args GetSidebarRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, _ mcp.CallToolRequest, args GetSidebarRequest) (*mcp.CallToolResult, error) {
		if args.ID == "" {
			return mcp.NewToolResultError("id is required"), nil
		}

		sidebar, err := manifest.Sidebar(args.ID)
		if errors.Is(err, orcadocs.ErrSidebarNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"unknown sidebar %q, available sidebars: %v",
				args.ID, manifest.IDs())), nil
		} else if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(GetSidebarResponse{
			ID:        sidebar.ID,
			Sidebar:   sidebar,
			Documents: sidebar.Docs(),
		}), nil
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err))
	}

	return mcp.NewToolResultText(string(data))
}
