// Package tools exposes the query, catalog and conversation operations as
// MCP tools for agents that speak the Model Context Protocol.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/resortinfo/internal/conversation"
	"github.com/MikeSquared-Agency/resortinfo/internal/query"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverName = "resortinfo"

// ConversationLogger records conversations submitted through log_conversation.
type ConversationLogger interface {
	LogConversation(ctx context.Context, rec conversation.Record) conversation.Result
}

type Tools struct {
	queries *query.Service
	convos  ConversationLogger
	logger  *slog.Logger
}

func New(queries *query.Service, convos ConversationLogger, logger *slog.Logger) *Tools {
	return &Tools{queries: queries, convos: convos, logger: logger}
}

// Server returns an MCP server with every tool registered.
func (t *Tools) Server(version string) *server.MCPServer {
	s := server.NewMCPServer(serverName, version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("filter_information",
		mcp.WithDescription("Filter rows of a resort data source. Results larger than the token budget are split into chunks; the first chunk is returned with chunk metadata."),
		resortArg(),
		sourceArg(),
		filtersArg(),
	), t.filterInformation)

	s.AddTool(mcp.NewTool("get_chunk",
		mcp.WithDescription("Fetch one chunk (1-based) of a filtered resort data source."),
		resortArg(),
		sourceArg(),
		filtersArg(),
		mcp.WithNumber("chunk_number", mcp.Required(), mcp.Description("1-based chunk index"), mcp.Min(1)),
	), t.getChunk)

	s.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List the data sources available for a resort."),
		resortArg(),
	), t.listSources)

	s.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("List the column names of a resort data source."),
		resortArg(),
		sourceArg(),
	), t.getSchema)

	s.AddTool(mcp.NewTool("log_conversation",
		mcp.WithDescription("Append a call summary to the conversation log sheet. Missing fields are recorded as N/A."),
		mcp.WithString("callTime", mcp.Description("Call time; defaults to now")),
		mcp.WithString("phoneNumber"),
		mcp.WithString("callOutcome"),
		mcp.WithString("customerName"),
		mcp.WithString("roomName"),
		mcp.WithString("checkInDate"),
		mcp.WithString("checkOutDate"),
		mcp.WithString("numberOfGuests"),
		mcp.WithString("callSummary"),
	), t.logConversation)

	return s
}

// HTTPHandler serves the MCP streamable HTTP transport.
func (t *Tools) HTTPHandler(version string) http.Handler {
	return server.NewStreamableHTTPServer(t.Server(version))
}

func resortArg() mcp.ToolOption {
	return mcp.WithString("primary_name", mcp.Required(), mcp.Description("Resort name (data directory)"))
}

func sourceArg() mcp.ToolOption {
	return mcp.WithString("source", mcp.Required(), mcp.Description("Data source name, e.g. activities"))
}

func filtersArg() mcp.ToolOption {
	return mcp.WithArray("additional_filters",
		mcp.Description("Exact-match column filters, all of which must hold"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"column_name": map[string]any{"type": "string"},
				"value":       map[string]any{"type": "string"},
			},
			"required": []string{"column_name", "value"},
		}),
	)
}

func (t *Tools) filterInformation(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args query.Request
	if err := bindArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := t.queries.FilterInformation(args)
	return t.result(req, res, err)
}

func (t *Tools) getChunk(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args query.Request
	if err := bindArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := t.queries.GetChunk(args)
	return t.result(req, res, err)
}

func (t *Tools) listSources(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args query.Request
	if err := bindArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sources, err := t.queries.ListSources(args.PrimaryName)
	return t.result(req, map[string]any{
		"primary_name":      args.PrimaryName,
		"available_sources": sources,
	}, err)
}

func (t *Tools) getSchema(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args query.Request
	if err := bindArgs(req, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cols, err := t.queries.GetSchema(args.PrimaryName, args.Source)
	return t.result(req, map[string]any{
		"primary_name": args.PrimaryName,
		"source":       args.Source,
		"columns":      cols,
	}, err)
}

func (t *Tools) logConversation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rec conversation.Record
	if err := bindArgs(req, &rec); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := t.convos.LogConversation(ctx, rec)
	if !res.Success {
		return mcp.NewToolResultError("failed to log conversation: " + res.Error), nil
	}
	return t.result(req, res, nil)
}

// result renders v as JSON text, or err as a tool error. Unexpected errors
// are logged and reported generically.
func (t *Tools) result(req mcp.CallToolRequest, v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if errors.Is(err, query.ErrInvalidArgument) || errors.Is(err, query.ErrNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t.logger.Error("tool call failed", "tool", req.Params.Name, "error", err)
		return mcp.NewToolResultError("internal error"), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s result: %w", req.Params.Name, err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// bindArgs decodes the call's arguments into v through JSON so tools share
// the HTTP request types.
func bindArgs(req mcp.CallToolRequest, v any) error {
	data, err := json.Marshal(req.GetArguments())
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
