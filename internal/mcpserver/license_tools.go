// internal/mcpserver/license_tools.go
package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/services"
)

func presetNames() []string {
	names := make([]string, len(pil.Presets))
	for i, p := range pil.Presets {
		names[i] = string(p)
	}
	return names
}

// licenseTermsOptions are the arguments shared by preview and create.
func licenseTermsOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString(pil.KeyPreset,
			mcp.Description("Starting point for the terms: "+strings.Join(presetNames(), ", ")),
			mcp.Enum(presetNames()...),
			mcp.DefaultString(string(pil.DefaultPreset)),
		),
		mcp.WithString(pil.KeyDescription, mcp.Description(`Plain-language overrides, e.g. "no derivatives, 10% revenue share"`)),
		mcp.WithBoolean(pil.KeyTransferable, mcp.Description("Whether license tokens can be transferred")),
		mcp.WithBoolean(pil.KeyCommercialUse, mcp.Description("Whether commercial use is allowed")),
		mcp.WithBoolean(pil.KeyCommercialAttribution, mcp.Description("Whether commercial use requires attribution")),
		mcp.WithNumber(pil.KeyCommercialRevShare, mcp.Description("Revenue share percent owed to the licensor, 0 to 100"), mcp.Min(0), mcp.Max(100)),
		mcp.WithString(pil.KeyCommercialRevCeiling, mcp.Description("Commercial revenue ceiling in base units")),
		mcp.WithBoolean(pil.KeyDerivativesAllowed, mcp.Description("Whether derivatives are allowed")),
		mcp.WithBoolean(pil.KeyDerivativesAttribution, mcp.Description("Whether derivatives require attribution")),
		mcp.WithBoolean(pil.KeyDerivativesApproval, mcp.Description("Whether derivatives need licensor approval")),
		mcp.WithBoolean(pil.KeyDerivativesReciprocal, mcp.Description("Whether derivatives must use the same terms")),
		mcp.WithString(pil.KeyDerivativeRevCeiling, mcp.Description("Derivative revenue ceiling in base units")),
		mcp.WithString(pil.KeyMintingFee, mcp.Description(`Per-token minting fee in whole WIP, e.g. "5"`)),
		mcp.WithString(pil.KeyExpiration, mcp.Description("Expiration timestamp in seconds; 0 never expires")),
		mcp.WithString(pil.KeyURI, mcp.Description("URI of the off-chain license text")),
	}
}

func (s *Server) registerPreviewLicenseTermsTool() {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Build PIL license terms from a preset, explicit fields and a plain-language description without registering them. Returns the terms, a summary and any warnings about ambiguous wording."),
		mcp.WithTitleAnnotation("Preview license terms"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	}, licenseTermsOptions()...)
	tool := mcp.NewTool("preview_license_terms", opts...)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := s.svc.License.Preview(ctx, request.GetArguments())
		if err != nil {
			return toolError("build license terms", err)
		}
		return jsonResult(res)
	})
}

func (s *Server) registerCreateLicenseTermsTool() {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Build PIL license terms and register them. Identical terms that are already registered are reused instead of sending a transaction."),
		mcp.WithTitleAnnotation("Create license terms"),
		mcp.WithIdempotentHintAnnotation(true),
	}, licenseTermsOptions()...)
	tool := mcp.NewTool("create_license_terms", opts...)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := s.svc.License.Create(ctx, request.GetArguments())
		if err != nil {
			return toolError("create license terms", err)
		}
		return jsonResult(res)
	})
}

func (s *Server) registerGetLicenseTermsTool() {
	tool := mcp.NewTool("get_license_terms",
		mcp.WithDescription("Read registered license terms by id."),
		mcp.WithString("license_terms_id", mcp.Required(), mcp.Description("License terms id")),
		mcp.WithTitleAnnotation("Get license terms"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if _, ok := args["license_terms_id"]; !ok {
			return mcp.NewToolResultError(`required argument "license_terms_id" not found`), nil
		}
		view, err := s.svc.License.Get(ctx, args["license_terms_id"])
		if err != nil {
			return toolError("read license terms", err)
		}
		return jsonResult(view)
	})
}

func (s *Server) registerAttachLicenseTermsTool() {
	tool := mcp.NewTool("attach_license_terms",
		mcp.WithDescription("Attach registered license terms to an IP asset owned by the signing wallet."),
		mcp.WithString("ip_id", mcp.Required(), mcp.Description("IP asset id")),
		mcp.WithString("license_terms_id", mcp.Required(), mcp.Description("License terms id")),
		mcp.WithTitleAnnotation("Attach license terms"),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req services.AttachLicenseTermsRequest
		if err := bind(request, &req, "license_terms_id"); err != nil {
			return toolError("attach license terms", err)
		}
		res, err := s.svc.License.Attach(ctx, &req)
		if err != nil {
			return toolError("attach license terms", err)
		}
		return jsonResult(res)
	})
}

func (s *Server) registerQuoteLicenseMintTool() {
	tool := mcp.NewTool("quote_license_mint",
		mcp.WithDescription("Price minting license tokens: per-token fee, total and the fee ceiling the mint will accept."),
		mcp.WithString("license_terms_id", mcp.Required(), mcp.Description("License terms id")),
		mcp.WithNumber("quantity", mcp.Description("Number of license tokens"), mcp.Min(1), mcp.DefaultNumber(1)),
		mcp.WithString("max_minting_fee", mcp.Description("Fee ceiling in whole WIP. Defaults to the total plus 10%.")),
		mcp.WithTitleAnnotation("Quote license mint"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := services.QuoteLicenseMintRequest{Quantity: 1}
		if err := bind(request, &req, "license_terms_id", "max_minting_fee"); err != nil {
			return toolError("quote license mint", err)
		}
		res, err := s.svc.License.Quote(ctx, &req)
		if err != nil {
			return toolError("quote license mint", err)
		}
		return jsonResult(res)
	})
}

func (s *Server) registerMintLicenseTokensTool() {
	tool := mcp.NewTool("mint_license_tokens",
		mcp.WithDescription("Mint license tokens for an IP asset. Wraps IP into WIP when the WIP balance is short, approves the royalty module up to the fee ceiling, then mints."),
		mcp.WithString("licensor_ip_id", mcp.Required(), mcp.Description("IP asset the license is for")),
		mcp.WithString("license_terms_id", mcp.Required(), mcp.Description("License terms id attached to the IP asset")),
		mcp.WithNumber("quantity", mcp.Description("Number of license tokens"), mcp.Min(1), mcp.DefaultNumber(1)),
		mcp.WithString("receiver", mcp.Description("Receiver of the tokens. Defaults to the signing wallet.")),
		mcp.WithString("max_minting_fee", mcp.Description("Fee ceiling in whole WIP. Defaults to the total plus 10%.")),
		mcp.WithNumber("max_revenue_share", mcp.Description("Highest revenue share percent accepted"), mcp.Min(0), mcp.Max(100)),
		mcp.WithTitleAnnotation("Mint license tokens"),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := services.MintLicenseTokensRequest{Quantity: 1}
		if err := bind(request, &req, "license_terms_id", "max_minting_fee"); err != nil {
			return toolError("mint license tokens", err)
		}
		res, err := s.svc.License.Mint(ctx, &req)
		if err != nil {
			return toolError("mint license tokens", err)
		}
		return jsonResult(res)
	})
}
