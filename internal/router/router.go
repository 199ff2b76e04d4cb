// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/story-mcp/internal/config"
	"github.com/javajoker/story-mcp/internal/handlers"
	"github.com/javajoker/story-mcp/internal/i18n"
	"github.com/javajoker/story-mcp/internal/mcpserver"
	"github.com/javajoker/story-mcp/internal/metrics"
	"github.com/javajoker/story-mcp/internal/middleware"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Wallet  *services.WalletService
	Storage *services.StorageService
	Social  *services.SocialService
	IP      *services.IPService
	License *services.LicenseService
	Auth    *services.AuthService
	Audit   *services.AuditService
	MCP     *mcpserver.Server
	Limits  *middleware.RateLimiters
}

func Initialize(cfg *config.Config, deps Dependencies) *gin.Engine {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.Auth)
	walletHandler := handlers.NewWalletHandler(deps.Wallet)
	metadataHandler := handlers.NewMetadataHandler(deps.Storage, deps.Social, deps.Audit)
	ipAssetHandler := handlers.NewIPAssetHandler(deps.IP)
	licenseHandler := handlers.NewLicenseHandler(deps.License)
	adminHandler := handlers.NewAdminHandler(deps.Audit)

	limits := deps.Limits
	if limits == nil {
		limits = middleware.NewRateLimiters(cfg.RateLimit)
	}
	authEnabled := deps.Auth != nil && deps.Auth.Enabled()
	// Write tools spend funds, so they sit behind the stricter limiter and
	// require a token whenever operator keys are configured.
	writeGuard := []gin.HandlerFunc{limits.Write.Middleware(), middleware.AuthRequiredIf(authEnabled)}

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.InternalErrorResponse(c, "")
		c.Abort()
	}))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(limits.General.Middleware())
	r.Use(middleware.OptionalAuth())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"name":    cfg.MCP.Name,
			"version": cfg.MCP.Version,
			"network": cfg.Story.Network,
			"signer":  deps.Wallet != nil && deps.Wallet.HasSigner(),
			"audit":   deps.Audit.Enabled(),
			"locales": i18n.GetSupportedLanguages(),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// MCP streamable HTTP transport
	if deps.MCP != nil {
		mcpHTTP := deps.MCP.HTTPHandler(cfg.MCP.Path)
		r.Any(cfg.MCP.Path, middleware.AuthRequiredIf(authEnabled), func(c *gin.Context) {
			operator, _ := utils.GetOperatorFromContext(c)
			ctx := mcpserver.WithCaller(c.Request.Context(), mcpserver.Caller{
				Operator: operator,
				ClientIP: c.ClientIP(),
			})
			mcpHTTP.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
		})
	}

	tool := func(name string) gin.HandlerFunc {
		return middleware.Tool(name, deps.Audit)
	}
	write := func(name string, h gin.HandlerFunc) []gin.HandlerFunc {
		chain := append([]gin.HandlerFunc{}, writeGuard...)
		return append(chain, tool(name), h)
	}

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(limits.Write.Middleware())
		{
			auth.POST("/token", authHandler.IssueToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Wallet and token routes
		v1.GET("/wallets/:address", tool("get_wallet_info"), walletHandler.GetWalletInfo)
		v1.GET("/tokens/:token", tool("get_token_info"), walletHandler.GetTokenInfo)
		v1.POST("/transfers", write("transfer_tokens", walletHandler.Transfer)...)

		// Metadata routes
		metadata := v1.Group("/metadata")
		{
			metadata.POST("", write("upload_ip_metadata", metadataHandler.UploadIPMetadata)...)
			metadata.POST("/json", write("upload_json_to_ipfs", metadataHandler.UploadJSON)...)
			metadata.POST("/files", write("upload_file_to_ipfs", metadataHandler.UploadFile)...)
			metadata.GET("/pins/:cid", metadataHandler.GetPin)
		}
		v1.POST("/social/parse", tool("parse_social_url"), metadataHandler.ParseSocialURL)

		// IP asset routes
		ipAssets := v1.Group("/ip-assets")
		{
			ipAssets.POST("", write("register_ip_asset", ipAssetHandler.RegisterIPAsset)...)
			ipAssets.GET("", tool("get_ip_asset"), ipAssetHandler.GetIPAsset)
			ipAssets.GET("/:id", tool("get_ip_asset"), ipAssetHandler.GetIPAsset)
			ipAssets.POST("/:id/license-terms", write("attach_license_terms", licenseHandler.AttachLicenseTerms)...)
		}
		v1.POST("/collections", write("create_spg_nft_collection", ipAssetHandler.CreateCollection)...)

		// License routes
		terms := v1.Group("/license-terms")
		{
			terms.POST("/preview", tool("preview_license_terms"), licenseHandler.PreviewLicenseTerms)
			terms.POST("", write("create_license_terms", licenseHandler.CreateLicenseTerms)...)
			terms.GET("/:id", tool("get_license_terms"), licenseHandler.GetLicenseTerms)
		}
		tokens := v1.Group("/license-tokens")
		{
			tokens.POST("/quote", tool("quote_license_mint"), licenseHandler.QuoteLicenseMint)
			tokens.POST("", write("mint_license_tokens", licenseHandler.MintLicenseTokens)...)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired())
		{
			admin.GET("/invocations", adminHandler.GetInvocations)
		}
	}

	return r
}
