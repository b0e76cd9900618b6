package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for docqa resources.
	uriScheme = "docqa://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "cache/stats",
		Name:        "cache-stats",
		Description: "Documents already ingested and the number of live sessions",
		MIMEType:    "application/json",
	}, s.handleCacheStatsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "risk-checklist",
		Name:        "risk-checklist",
		Description: "Clause categories checked by the scan_risks tool",
		MIMEType:    "application/json",
	}, s.handleRiskChecklistResource)
}

// handleCacheStatsResource returns the cache statistics.
func (s *Server) handleCacheStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, cacheStatsOutput(s.ports.QA.CacheStats(ctx)))
}

// handleRiskChecklistResource returns the built-in risk categories.
func (s *Server) handleRiskChecklistResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type categoryInfo struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	checklist := domain.DefaultRiskChecklist()
	infos := make([]categoryInfo, len(checklist))
	for i, c := range checklist {
		infos[i] = categoryInfo{Name: c.Name, Description: c.Description}
	}
	return jsonResource(req.Params.URI, infos)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
