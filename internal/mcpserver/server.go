// internal/mcpserver/server.go
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/config"
	"github.com/javajoker/story-mcp/internal/ipfs"
	"github.com/javajoker/story-mcp/internal/metrics"
	"github.com/javajoker/story-mcp/internal/models"
	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

const instructions = `Tools for the Story Protocol blockchain.
Amounts are decimal strings in whole tokens (e.g. "1.5"). Fees are paid in WIP.
Use preview_license_terms before create_license_terms, and quote_license_mint
before mint_license_tokens. Write tools wait for the transaction receipt.`

// Services are the domain services the tools call into.
type Services struct {
	Wallet  *services.WalletService
	Storage *services.StorageService
	Social  *services.SocialService
	IP      *services.IPService
	License *services.LicenseService
	Audit   services.InvocationRecorder
}

// Server wraps the mcp-go server with the Story tools.
type Server struct {
	mcpServer *server.MCPServer
	svc       Services
}

func New(cfg config.MCPConfig, svc Services) *Server {
	s := &Server{svc: svc}

	s.mcpServer = server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
		server.WithToolHandlerMiddleware(s.auditMiddleware),
		server.WithRecovery(),
	)

	s.registerTools()

	return s
}

// GetMCPServer returns the underlying MCP server for transport setup.
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// Wallet
	s.registerGetWalletInfoTool()
	s.registerGetTokenInfoTool()
	s.registerTransferTokensTool()

	// Metadata
	s.registerUploadIPMetadataTool()
	s.registerUploadJSONTool()
	s.registerParseSocialURLTool()

	// IP assets
	s.registerRegisterIPAssetTool()
	s.registerGetIPAssetTool()
	s.registerCreateCollectionTool()

	// Licensing
	s.registerPreviewLicenseTermsTool()
	s.registerCreateLicenseTermsTool()
	s.registerGetLicenseTermsTool()
	s.registerAttachLicenseTermsTool()
	s.registerQuoteLicenseMintTool()
	s.registerMintLicenseTokensTool()
}

type callerKey struct{}

// Caller identifies who invoked a tool over the HTTP transport.
type Caller struct {
	Operator string
	ClientIP string
}

// WithCaller attaches the caller to ctx for the audit record.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

func callerFromContext(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey{}).(Caller)
	return c
}

// auditMiddleware times each call, collects tx hashes and warnings through
// a trace, then logs, counts and persists the invocation.
func (s *Server) auditMiddleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, trace := services.WithTrace(ctx)
		requestID := uuid.NewString()
		tool := request.Params.Name
		start := time.Now()

		result, err := next(ctx, request)

		elapsed := time.Since(start)
		var failure error
		switch {
		case err != nil:
			failure = err
		case result != nil && result.IsError:
			failure = errors.New(resultText(result))
		}
		metrics.ObserveTool(tool, string(models.TransportMCP), failure, elapsed)

		caller := callerFromContext(ctx)
		inv := &models.ToolInvocation{
			RequestID:  requestID,
			Tool:       tool,
			Transport:  models.TransportMCP,
			Operator:   caller.Operator,
			ClientIP:   caller.ClientIP,
			Status:     models.InvocationStatusSuccess,
			Arguments:  models.JSONB(request.GetArguments()),
			DurationMs: elapsed.Milliseconds(),
			TxHashes:   trace.TxHashes(),
			Warnings:   trace.Warnings(),
		}

		fields := logrus.Fields{
			"request_id":  requestID,
			"tool":        tool,
			"duration_ms": inv.DurationMs,
		}
		if len(inv.TxHashes) > 0 {
			fields["tx_hashes"] = inv.TxHashes
		}
		if failure != nil {
			inv.Status = models.InvocationStatusError
			inv.Error = failure.Error()
			logrus.WithFields(fields).WithError(failure).Warn("Tool call failed")
		} else {
			logrus.WithFields(fields).Info("Tool call completed")
		}

		if s.svc.Audit != nil {
			s.svc.Audit.Record(ctx, inv)
		}

		return result, err
	}
}

// jsonResult renders v as indented JSON text.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError turns caller mistakes and upstream failures into tool error
// results the agent can read and act on.
func toolError(action string, err error) (*mcp.CallToolResult, error) {
	var (
		verr     *pil.ValidationError
		qerr     *pil.InvalidQuantityError
		fieldErr validator.ValidationErrors
	)
	switch {
	case errors.As(err, &fieldErr):
		msg := "Invalid arguments:"
		for _, e := range utils.GetValidationErrors(fieldErr) {
			msg += fmt.Sprintf("\n- %s: %s", e.Field, e.Message)
		}
		return mcp.NewToolResultError(msg), nil
	case errors.As(err, &verr), errors.As(err, &qerr):
		return mcp.NewToolResultError("Invalid arguments: " + err.Error()), nil
	case errors.Is(err, services.ErrSignerRequired), errors.Is(err, blockchain.ErrNoSigner):
		return mcp.NewToolResultError(err.Error() + ". Set WALLET_PRIVATE_KEY to enable write tools."), nil
	case errors.Is(err, ipfs.ErrNotConfigured):
		return mcp.NewToolResultError(err.Error() + ". Set PINATA_JWT to enable IPFS uploads."), nil
	case errors.Is(err, services.ErrUnsupportedPlatform),
		errors.Is(err, blockchain.ErrLicenseTermsNotFound):
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultErrorFromErr("Failed to "+action, err), nil
}

// bind decodes the tool arguments into dst. Values under numericKeys may
// arrive as JSON numbers and are turned into strings first.
func bind(request mcp.CallToolRequest, dst interface{}, numericKeys ...string) error {
	if len(numericKeys) > 0 {
		args := make(map[string]interface{}, len(request.GetArguments()))
		for k, v := range request.GetArguments() {
			args[k] = v
		}
		for _, key := range numericKeys {
			if _, ok := args[key]; ok {
				args[key] = stringArg(args, key)
			}
		}
		request.Params.Arguments = args
	}
	if err := request.BindArguments(dst); err != nil {
		return &pil.ValidationError{Field: "arguments", Message: fmt.Sprintf("malformed: %v", err)}
	}
	return nil
}

// stringArg reads an argument that may arrive as a JSON string or number.
func stringArg(args map[string]interface{}, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

func resultText(result *mcp.CallToolResult) string {
	for _, c := range result.Content {
		if text, ok := mcp.AsTextContent(c); ok {
			return text.Text
		}
	}
	return "tool returned an error"
}

// HTTPHandler serves the streamable HTTP transport at path.
func (s *Server) HTTPHandler(path string) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath(path),
		server.WithHeartbeatInterval(30*time.Second),
	)
}

// ServeStdio runs the server over stdin and stdout until ctx is done.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(logrus.StandardLogger().WriterLevel(logrus.ErrorLevel), "", 0))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
