// internal/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/story-mcp/internal/i18n"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// POST /auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.TokenRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.authService.IssueToken(&req)
	switch {
	case errors.Is(err, services.ErrAuthDisabled):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "AUTH_DISABLED", i18n.T(lang, i18n.KeyAuthDisabled), nil)
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
		return
	case err != nil:
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":      i18n.T(lang, i18n.KeyAuthTokenIssued),
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
		"expires_in":   token.ExpiresIn,
		"operator":     token.Operator,
	})
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	operator, ok := utils.GetOperatorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	keyIndex, _ := c.Get("key_index")

	utils.SuccessResponse(c, gin.H{
		"operator":  operator,
		"key_index": keyIndex,
	})
}
