// internal/mcpserver/metadata_tools.go
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/services"
)

var creatorSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":                 map[string]interface{}{"type": "string"},
		"address":              map[string]interface{}{"type": "string"},
		"contribution_percent": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 100},
	},
	"required": []string{"name", "address", "contribution_percent"},
}

var attributeSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"trait_type": map[string]interface{}{"type": "string"},
		"value":      map[string]interface{}{},
	},
	"required": []string{"trait_type"},
}

func (s *Server) registerUploadIPMetadataTool() {
	tool := mcp.NewTool("upload_ip_metadata",
		mcp.WithDescription("Build IP asset metadata and NFT metadata, pin both to IPFS and return the URIs and sha256 hashes used for registration."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the IP")),
		mcp.WithString("description", mcp.Description("Description of the IP")),
		mcp.WithString("image_url", mcp.Description("URL of the cover image")),
		mcp.WithString("image_hash", mcp.Description("0x-prefixed sha256 of the image")),
		mcp.WithString("media_url", mcp.Description("URL of the media file")),
		mcp.WithString("media_hash", mcp.Description("0x-prefixed sha256 of the media file")),
		mcp.WithString("media_type", mcp.Description("MIME type of the media, e.g. audio/mpeg")),
		mcp.WithString("ip_type", mcp.Description("Kind of IP, e.g. music, image, character")),
		mcp.WithArray("creators", mcp.Description("Creators; contribution percents must sum to 100"), mcp.Items(creatorSchema)),
		mcp.WithArray("tags", mcp.Description("Free-form tags"), mcp.WithStringItems()),
		mcp.WithArray("attributes", mcp.Description("NFT attributes"), mcp.Items(attributeSchema)),
		mcp.WithTitleAnnotation("Upload IP metadata"),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req services.IPMetadataRequest
		if err := bind(request, &req); err != nil {
			return toolError("upload metadata", err)
		}
		res, err := s.svc.Storage.UploadIPMetadata(ctx, &req)
		if err != nil {
			return toolError("upload metadata", err)
		}
		return jsonResult(res)
	})
}

func (s *Server) registerUploadJSONTool() {
	tool := mcp.NewTool("upload_json_to_ipfs",
		mcp.WithDescription("Pin an arbitrary JSON document to IPFS."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name recorded with the pin")),
		mcp.WithObject("content", mcp.Required(), mcp.Description("JSON document to pin")),
		mcp.WithTitleAnnotation("Upload JSON"),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		content, ok := args["content"]
		if !ok || content == nil {
			return toolError("upload JSON", &pil.ValidationError{Field: "content", Message: "is required"})
		}
		// A string is taken as already serialized JSON.
		var raw json.RawMessage
		if text, isString := content.(string); isString {
			raw = json.RawMessage(text)
		} else {
			data, err := json.Marshal(content)
			if err != nil {
				return toolError("upload JSON", err)
			}
			raw = data
		}

		doc, err := s.svc.Storage.UploadJSON(ctx, &services.UploadJSONRequest{
			Name:    request.GetString("name", ""),
			Content: raw,
		})
		if err != nil {
			return toolError("upload JSON", err)
		}
		return jsonResult(doc)
	})
}

func (s *Server) registerParseSocialURLTool() {
	tool := mcp.NewTool("parse_social_url",
		mcp.WithDescription("Identify the platform, handle and content id of a social media URL (X, Instagram, YouTube, TikTok, GitHub, LinkedIn)."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Social media URL")),
		mcp.WithTitleAnnotation("Parse social URL"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		link, err := s.svc.Social.Parse(raw)
		if err != nil {
			return toolError("parse URL", err)
		}
		return jsonResult(link)
	})
}
