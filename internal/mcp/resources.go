package mcp

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/checkenv/configs"
	"github.com/Aman-CERP/checkenv/internal/config"
)

// ProfileURIPrefix prefixes the URI of every profile resource.
const ProfileURIPrefix = "checkenv://profiles/"

const profileMIMEType = "application/yaml"

// ResourceInfo contains information about a resource.
type ResourceInfo struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
}

// ResourceContent contains the content of a resource.
type ResourceContent struct {
	URI      string
	Content  string
	MIMEType string
}

// registerResources exposes each embedded profile as a YAML resource.
func (s *Server) registerResources() {
	for _, info := range s.ListResources() {
		uri := info.URI
		s.mcp.AddResource(
			&mcp.Resource{
				Name:        info.Name,
				URI:         uri,
				Description: info.Description,
				MIMEType:    info.MIMEType,
			},
			func(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
				return s.handleReadResource(ctx, uri)
			},
		)
	}
	s.logger.Debug("registered resources", "count", len(config.ProfileNames()))
}

func (s *Server) handleReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	rc, err := s.ReadResource(ctx, uri)
	if err != nil {
		return nil, MapError(err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      rc.URI,
				MIMEType: rc.MIMEType,
				Text:     rc.Content,
			},
		},
	}, nil
}

// ListResources returns one resource per embedded profile.
func (s *Server) ListResources() []ResourceInfo {
	names := config.ProfileNames()
	out := make([]ResourceInfo, 0, len(names))
	for _, name := range names {
		desc := "requirement table " + name
		if p, err := config.LoadProfile(name); err == nil && p.Description != "" {
			desc = p.Description
		}
		out = append(out, ResourceInfo{
			URI:         ProfileURIPrefix + name,
			Name:        name + ".yaml",
			Description: desc,
			MIMEType:    profileMIMEType,
		})
	}
	return out
}

// ReadResource returns the YAML source of the profile named by uri.
func (s *Server) ReadResource(_ context.Context, uri string) (*ResourceContent, error) {
	name, ok := strings.CutPrefix(uri, ProfileURIPrefix)
	if !ok || name == "" || strings.ContainsAny(name, "/\\") {
		return nil, NewResourceNotFoundError(uri)
	}

	data, err := configs.Profiles.ReadFile(path.Join("profiles", name+".yaml"))
	if err != nil {
		return nil, NewResourceNotFoundError(uri)
	}

	return &ResourceContent{
		URI:      uri,
		Content:  string(data),
		MIMEType: profileMIMEType,
	}, nil
}

// NewResourceNotFoundError creates an error for an unknown resource URI.
func NewResourceNotFoundError(uri string) *MCPError {
	return &MCPError{
		Code:    ErrCodeResourceNotFound,
		Message: fmt.Sprintf("Resource '%s' not found.", uri),
	}
}
