// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/config"
	"github.com/javajoker/story-mcp/internal/database"
	"github.com/javajoker/story-mcp/internal/i18n"
	"github.com/javajoker/story-mcp/internal/ipfs"
	"github.com/javajoker/story-mcp/internal/mcpserver"
	"github.com/javajoker/story-mcp/internal/middleware"
	"github.com/javajoker/story-mcp/internal/router"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	setupLogging(cfg)

	// Initialize i18n
	if err := i18n.Initialize(localesPath(cfg.I18n.LocalesPath), cfg.I18n.DefaultLocale); err != nil {
		logrus.Fatal("Failed to initialize i18n: ", err)
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Audit store is optional
	var db *gorm.DB
	if cfg.Database.Enabled {
		db, err = database.Initialize(cfg.Database)
		if err != nil {
			logrus.Fatal("Failed to initialize database: ", err)
		}
		defer database.Close(db)

		if err := database.RunMigrations(db); err != nil {
			logrus.Fatal("Failed to run migrations: ", err)
		}
	}

	// Story chain client
	dialCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	eth, err := blockchain.NewEthClient(dialCtx, cfg.Story)
	cancel()
	if err != nil {
		logrus.Fatal("Failed to connect to Story: ", err)
	}
	defer eth.Close()

	addresses := blockchain.AddressesFromConfig(cfg.Story)
	tokens, err := blockchain.DefaultTokenShortcuts(addresses.WIP).WithOverrides(cfg.Story.TokenShortcutOverrides)
	if err != nil {
		logrus.Fatal("Invalid token shortcuts: ", err)
	}
	story := blockchain.NewStory(eth, addresses, tokens)

	// Initialize services
	auditService := services.NewAuditService(db)
	storageService, err := services.NewStorageService(cfg, ipfs.NewClient(cfg.IPFS), auditService)
	if err != nil {
		logrus.Fatal("Failed to initialize storage: ", err)
	}
	walletService := services.NewWalletService(story, cfg)
	socialService := services.NewSocialService()
	ipService := services.NewIPService(story, storageService, cfg)
	licenseService := services.NewLicenseService(story, cfg)
	authService := services.NewAuthService(cfg)

	mcp := mcpserver.New(cfg.MCP, mcpserver.Services{
		Wallet:  walletService,
		Storage: storageService,
		Social:  socialService,
		IP:      ipService,
		License: licenseService,
		Audit:   auditService,
	})

	if !walletService.HasSigner() {
		logrus.Warn("WALLET_PRIVATE_KEY is not set; write tools are disabled")
	}

	if cfg.MCP.Transport == "stdio" {
		logrus.Info("Serving MCP over stdio")
		if err := mcp.ServeStdio(ctx); err != nil && ctx.Err() == nil {
			logrus.Fatal("MCP stdio server failed: ", err)
		}
		return
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limits := middleware.NewRateLimiters(cfg.RateLimit)
	defer limits.Stop()

	r := router.Initialize(cfg, router.Dependencies{
		Wallet:  walletService,
		Storage: storageService,
		Social:  socialService,
		IP:      ipService,
		License: licenseService,
		Auth:    authService,
		Audit:   auditService,
		MCP:     mcp,
		Limits:  limits,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":     srv.Addr,
			"mcp_path": cfg.MCP.Path,
			"network":  cfg.Story.Network,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Error("Server forced to shutdown: ", err)
	}

	logrus.Info("Server exited")
}

// setupLogging writes JSON logs in production. With the stdio transport
// stdout carries the protocol, so logs go to stderr.
func setupLogging(cfg *config.Config) {
	logrus.SetOutput(os.Stderr)

	if cfg.Log.Format == "json" || (cfg.Log.Format == "" && cfg.Environment == "production") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// localesPath falls back to the embedded locales when the directory is absent.
func localesPath(path string) string {
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return ""
	}
	return path
}
