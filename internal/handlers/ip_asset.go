// internal/handlers/ip_asset.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/story-mcp/internal/i18n"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

type IPAssetHandler struct {
	ipService *services.IPService
}

func NewIPAssetHandler(ipService *services.IPService) *IPAssetHandler {
	return &IPAssetHandler{
		ipService: ipService,
	}
}

// POST /ip-assets
func (h *IPAssetHandler) RegisterIPAsset(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RegisterIPAssetRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.ipService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyIPAssetRegistered),
		"ip_asset": res,
	})
}

// GET /ip-assets/:id, or GET /ip-assets?nft_contract=...&token_id=...
func (h *IPAssetHandler) GetIPAsset(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	req := services.GetIPAssetRequest{
		IPID:        c.Param("id"),
		NFTContract: c.Query("nft_contract"),
		TokenID:     c.Query("token_id"),
	}

	res, err := h.ipService.Get(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	if !res.Registered {
		utils.NotFoundResponse(c, i18n.KeyIPAssetNotFound)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyIPAssetFound),
		"ip_asset": res,
	})
}

// POST /collections
func (h *IPAssetHandler) CreateCollection(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateCollectionRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.ipService.CreateCollection(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyCollectionCreated),
		"collection": res,
	})
}
