// internal/mcpserver/wallet_tools.go
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/javajoker/story-mcp/internal/services"
)

func (s *Server) registerGetWalletInfoTool() {
	tool := mcp.NewTool("get_wallet_info",
		mcp.WithDescription("Get the native IP balance and WIP balance of a wallet. Defaults to the configured signing wallet."),
		mcp.WithString("address", mcp.Description("Wallet address (0x...). Omit to use the signing wallet.")),
		mcp.WithTitleAnnotation("Wallet info"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info, err := s.svc.Wallet.WalletInfo(ctx, request.GetString("address", ""))
		if err != nil {
			return toolError("read wallet info", err)
		}
		return jsonResult(info)
	})
}

func (s *Server) registerGetTokenInfoTool() {
	tool := mcp.NewTool("get_token_info",
		mcp.WithDescription("Get name, symbol and decimals of a token, and optionally the balance of a holder. Accepts a shortcut symbol (IP, WIP) or a contract address."),
		mcp.WithString("token", mcp.Required(), mcp.Description("Token symbol shortcut or ERC-20 contract address")),
		mcp.WithString("holder", mcp.Description("Address whose balance should be included")),
		mcp.WithTitleAnnotation("Token info"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token, err := request.RequireString("token")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		info, err := s.svc.Wallet.TokenInfo(ctx, token, request.GetString("holder", ""))
		if err != nil {
			return toolError("read token info", err)
		}
		return jsonResult(info)
	})
}

func (s *Server) registerTransferTokensTool() {
	tool := mcp.NewTool("transfer_tokens",
		mcp.WithDescription("Send native IP or an ERC-20 token from the signing wallet. Waits for the transaction receipt."),
		mcp.WithString("to", mcp.Required(), mcp.Description("Recipient address")),
		mcp.WithString("amount", mcp.Required(), mcp.Description(`Decimal amount in whole tokens, e.g. "0.5"`)),
		mcp.WithString("token", mcp.Description("Token symbol shortcut or ERC-20 address"), mcp.DefaultString("IP")),
		mcp.WithTitleAnnotation("Transfer tokens"),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(false),
	)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req services.TransferRequest
		if err := bind(request, &req, "amount"); err != nil {
			return toolError("transfer tokens", err)
		}
		res, err := s.svc.Wallet.Transfer(ctx, &req)
		if err != nil {
			return toolError("transfer tokens", err)
		}
		return jsonResult(res)
	})
}
