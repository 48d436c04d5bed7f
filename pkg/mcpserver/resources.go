package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shieldscan/shieldscan/pkg/defaults"
	"github.com/shieldscan/shieldscan/pkg/jsonutil"
)

// registerResources adds the read-only resources.
func (s *Server) registerResources() {
	s.addJSONResource("shieldscan://version", "Version", "Server version and tool inventory.", func() any {
		return map[string]any{
			"name":    defaults.ToolName,
			"version": defaults.Version,
			"tools":   []string{"run_scan", "list_categories"},
		}
	})
	s.addJSONResource("shieldscan://categories", "Categories", "Report categories in report order.", func() any {
		return categoryNames()
	})
}

func (s *Server) addJSONResource(uri, name, description string, build func() any) {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         uri,
			Name:        name,
			Description: description,
			MIMEType:    defaults.ContentTypeJSON,
		},
		func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			data, err := jsonutil.MarshalIndent(build(), "", "  ")
			if err != nil {
				return nil, err
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      uri,
					MIMEType: defaults.ContentTypeJSON,
					Text:     string(data),
				}},
			}, nil
		},
	)
}
