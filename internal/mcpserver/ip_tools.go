// internal/mcpserver/ip_tools.go
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/javajoker/story-mcp/internal/services"
)

func (s *Server) registerRegisterIPAssetTool() {
	tool := mcp.NewTool("register_ip_asset",
		mcp.WithDescription("Register an IP asset. With nft_contract and token_id the existing NFT is registered; otherwise an NFT is minted through an SPG collection and registered in one transaction. Pass metadata to have it built and pinned first, or pass pre-pinned URIs and hashes."),
		mcp.WithString("nft_contract", mcp.Description("ERC-721 contract of an existing NFT")),
		mcp.WithString("token_id", mcp.Description("Token id of the existing NFT")),
		mcp.WithString("spg_nft_contract", mcp.Description("SPG collection to mint from. Defaults to the configured collection.")),
		mcp.WithString("recipient", mcp.Description("Receiver of the minted NFT. Defaults to the signing wallet.")),
		mcp.WithObject("metadata", mcp.Description("Metadata to pin, same fields as upload_ip_metadata")),
		mcp.WithString("ip_metadata_uri", mcp.Description("URI of already pinned IP metadata")),
		mcp.WithString("ip_metadata_hash", mcp.Description("0x-prefixed sha256 of the IP metadata")),
		mcp.WithString("nft_metadata_uri", mcp.Description("URI of already pinned NFT metadata")),
		mcp.WithString("nft_metadata_hash", mcp.Description("0x-prefixed sha256 of the NFT metadata")),
		mcp.WithBoolean("allow_duplicates", mcp.Description("Allow minting with metadata already used in the collection"), mcp.DefaultBool(false)),
		mcp.WithTitleAnnotation("Register IP asset"),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req services.RegisterIPAssetRequest
		if err := bind(request, &req, "token_id"); err != nil {
			return toolError("register IP asset", err)
		}
		res, err := s.svc.IP.Register(ctx, &req)
		if err != nil {
			return toolError("register IP asset", err)
		}
		return jsonResult(res)
	})
}

func (s *Server) registerGetIPAssetTool() {
	tool := mcp.NewTool("get_ip_asset",
		mcp.WithDescription("Look up an IP asset by ip_id, or by the NFT it was registered from."),
		mcp.WithString("ip_id", mcp.Description("IP asset id (its IP account address)")),
		mcp.WithString("nft_contract", mcp.Description("NFT contract, used with token_id")),
		mcp.WithString("token_id", mcp.Description("NFT token id, used with nft_contract")),
		mcp.WithTitleAnnotation("Get IP asset"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req services.GetIPAssetRequest
		if err := bind(request, &req, "token_id"); err != nil {
			return toolError("get IP asset", err)
		}
		res, err := s.svc.IP.Get(ctx, &req)
		if err != nil {
			return toolError("get IP asset", err)
		}
		return jsonResult(res)
	})
}

func (s *Server) registerCreateCollectionTool() {
	tool := mcp.NewTool("create_spg_nft_collection",
		mcp.WithDescription("Create an SPG NFT collection that can mint and register IP assets."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Collection name")),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Collection symbol")),
		mcp.WithString("base_uri", mcp.Description("Base token URI")),
		mcp.WithString("contract_uri", mcp.Description("Collection metadata URI")),
		mcp.WithNumber("max_supply", mcp.Description("Maximum supply; 0 means unlimited"), mcp.Min(0)),
		mcp.WithString("mint_fee", mcp.Description(`Decimal mint fee in whole tokens, e.g. "0.1"`)),
		mcp.WithString("mint_fee_token", mcp.Description("ERC-20 the mint fee is paid in, e.g. WIP")),
		mcp.WithString("mint_fee_recipient", mcp.Description("Receiver of mint fees")),
		mcp.WithString("owner", mcp.Description("Collection owner. Defaults to the signing wallet.")),
		mcp.WithBoolean("mint_open", mcp.Description("Whether minting starts open"), mcp.DefaultBool(true)),
		mcp.WithBoolean("is_public_minting", mcp.Description("Whether anyone may mint"), mcp.DefaultBool(false)),
		mcp.WithTitleAnnotation("Create SPG NFT collection"),
		mcp.WithIdempotentHintAnnotation(false),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req services.CreateCollectionRequest
		if err := bind(request, &req, "mint_fee"); err != nil {
			return toolError("create collection", err)
		}
		res, err := s.svc.IP.CreateCollection(ctx, &req)
		if err != nil {
			return toolError("create collection", err)
		}
		return jsonResult(res)
	})
}
