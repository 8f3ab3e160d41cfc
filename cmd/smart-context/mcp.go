package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/smart-context/internal/app"
	"github.com/standardbeagle/smart-context/internal/edit"
	"github.com/standardbeagle/smart-context/internal/search"
	"github.com/standardbeagle/smart-context/internal/ucg"
)

// mcpServer exposes the four CORE subsystems over MCP, the same
// NewServer/AddTool/Run shape as the teacher's internal/mcp.Server but with
// one tool per subsystem operation instead of the teacher's much larger
// tool surface.
type mcpServer struct {
	app    *app.App
	server *mcp.Server
}

func newMCPServer(a *app.App) *mcpServer {
	s := &mcpServer{app: a}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "smart-context-mcp-server",
		Version: "0.1.0",
	}, nil)
	s.registerTools()
	return s
}

func (s *mcpServer) Start(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *mcpServer) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "search",
		Description: "Hybrid symbol/trigram/filename/vector search over the indexed project.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Search query",
				},
				"max_results": {
					Type:        "integer",
					Description: "Maximum matches to return",
				},
				"use_vector": {
					Type:        "boolean",
					Description: "Include the vector similarity signal in candidate collection",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleSearch)

	s.server.AddTool(&mcp.Tool{
		Name:        "edit_apply",
		Description: "Apply one or more exact/fuzzy-matched string replacements to a file, recorded for undo.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Path to the file to edit, relative to the project root",
				},
				"target": {
					Type:        "string",
					Description: "Exact or fuzzy-matched text to find",
				},
				"replacement": {
					Type:        "string",
					Description: "Replacement text",
				},
				"dry_run": {
					Type:        "boolean",
					Description: "Validate the match without writing changes",
				},
			},
			Required: []string{"file", "target", "replacement"},
		},
	}, s.handleEditApply)

	s.server.AddTool(&mcp.Tool{
		Name:        "edit_undo",
		Description: "Revert the most recently applied edit or batch.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleEditUndo)

	s.server.AddTool(&mcp.Tool{
		Name:        "edit_redo",
		Description: "Reapply the most recently undone edit or batch.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleEditRedo)

	s.server.AddTool(&mcp.Tool{
		Name:        "graph_ensure_lod",
		Description: "Ensure a file's Unified Context Graph node is parsed to at least the requested level of detail (topology, skeleton, or full_ast), returning the node: its level of detail, dependency and dependent paths, and, from skeleton level up, its skeleton and symbols.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Path to the file, relative to the project root",
				},
				"level": {
					Type:        "string",
					Description: "One of: topology, skeleton, full_ast",
				},
			},
			Required: []string{"file", "level"},
		},
	}, s.handleGraphEnsureLOD)

	s.server.AddTool(&mcp.Tool{
		Name:        "index_status",
		Description: "Report indexed file and symbol counts, the number of graph nodes, and whether watch mode is enabled in the configuration.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleIndexStatus)
}

func textResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(operation string, err error) (*mcp.CallToolResult, error) {
	result, marshalErr := textResult(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	if marshalErr != nil {
		return nil, marshalErr
	}
	result.IsError = true
	return result, nil
}

type searchParams struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	UseVector  bool   `json:"use_vector"`
}

func (s *mcpServer) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params searchParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("search", fmt.Errorf("invalid parameters: %w", err))
	}
	if params.Query == "" {
		return errorResult("search", fmt.Errorf("query is required"))
	}

	result := s.app.Search.Search(ctx, params.Query, search.Options{
		MaxResults:           params.MaxResults,
		GroupByFile:          true,
		DeduplicateByContent: true,
		UseVector:            params.UseVector,
	})
	return textResult(result)
}

type editApplyParams struct {
	File        string `json:"file"`
	Target      string `json:"target"`
	Replacement string `json:"replacement"`
	DryRun      bool   `json:"dry_run"`
}

func (s *mcpServer) handleEditApply(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params editApplyParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("edit_apply", fmt.Errorf("invalid parameters: %w", err))
	}

	result, err := s.app.Edit.ApplyEdits(params.File, []edit.Descriptor{{
		TargetString:      params.Target,
		ReplacementString: params.Replacement,
	}}, params.DryRun)
	if err != nil {
		return errorResult("edit_apply", err)
	}
	return textResult(result)
}

func (s *mcpServer) handleEditUndo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.app.Edit.Undo(); err != nil {
		return errorResult("edit_undo", err)
	}
	return textResult(map[string]bool{"success": true})
}

func (s *mcpServer) handleEditRedo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.app.Edit.Redo(); err != nil {
		return errorResult("edit_redo", err)
	}
	return textResult(map[string]bool{"success": true})
}

type graphEnsureLODParams struct {
	File  string `json:"file"`
	Level string `json:"level"`
}

func (s *mcpServer) handleGraphEnsureLOD(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params graphEnsureLODParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResult("graph_ensure_lod", fmt.Errorf("invalid parameters: %w", err))
	}

	var lod ucg.LOD
	switch params.Level {
	case "topology":
		lod = ucg.LODTopology
	case "skeleton":
		lod = ucg.LODSkeleton
	case "full_ast":
		lod = ucg.LODFullAST
	default:
		return errorResult("graph_ensure_lod", fmt.Errorf("unknown level %q: want topology, skeleton, or full_ast", params.Level))
	}

	node, err := s.app.UCG.EnsureLOD(params.File, lod, false)
	if err != nil {
		return errorResult("graph_ensure_lod", err)
	}
	return textResult(node)
}

func (s *mcpServer) handleIndexStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbols := 0
	for _, rec := range s.app.Store.All() {
		symbols += len(rec.Symbols)
	}
	return textResult(map[string]interface{}{
		"files":       s.app.Store.Len(),
		"symbols":     symbols,
		"graph_nodes": s.app.UCG.Len(),
		"watching":    s.app.Config.Index.WatchMode,
	})
}
