// internal/handlers/wallet.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/story-mcp/internal/i18n"
	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

type WalletHandler struct {
	walletService *services.WalletService
}

func NewWalletHandler(walletService *services.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

// GET /wallets/:address ("me" for the signing wallet)
func (h *WalletHandler) GetWalletInfo(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	address := c.Param("address")
	if address == "me" {
		address = ""
	}

	info, err := h.walletService.WalletInfo(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyWalletInfo),
		"wallet":  info,
	})
}

// GET /tokens/:token?holder=0x...
func (h *WalletHandler) GetTokenInfo(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	info, err := h.walletService.TokenInfo(c.Request.Context(), c.Param("token"), c.Query("holder"))
	var verr *pil.ValidationError
	if errors.As(err, &verr) && verr.Field == "token" {
		_ = c.Error(err)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyTokenUnknown), verr)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTokenInfo),
		"token":   info,
	})
}

// POST /transfers
func (h *WalletHandler) Transfer(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.TransferRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.walletService.Transfer(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyTransferConfirmed),
		"transfer": res,
	})
}
