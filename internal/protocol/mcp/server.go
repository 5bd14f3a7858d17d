package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server exposing protocol matching tools.
// Served over HTTP at /mcp by the main service and over stdio by cmd/protocol_mcp.
func NewServer(service protocolService, version string) *mcp.Server {
	h := NewHandler(service)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "protocol-engine",
		Version: version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "match_protocol",
		Description: "Returns the supplement protocol stored for exactly this athlete questionnaire profile (all 16 answers must match). Returns 'Protocol not found' when there is no exact match; it never guesses.",
	}, h.MatchProtocolTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "recommend_protocol",
		Description: "Returns a supplement recommendation for an athlete questionnaire profile. Uses the exact stored protocol when one exists, otherwise the generic protocol for the athlete's target (source: fallback).",
	}, h.RecommendProtocolTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_fallback_protocol",
		Description: "Returns the generic protocol for a target goal (Basic, Recovery, Endurance, Performance).",
	}, h.FallbackProtocolTool())

	return s
}

// NewHTTPHandler serves the MCP server over streamable HTTP.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
