// internal/handlers/license.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/story-mcp/internal/i18n"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// POST /license-terms/preview
func (h *LicenseHandler) PreviewLicenseTerms(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	// Terms arguments are loosely typed, so they are read as a map.
	raw := map[string]interface{}{}
	if !bindJSON(c, &raw) {
		return
	}

	res, err := h.licenseService.Preview(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyLicenseTermsPreview),
		"license_terms": res,
	})
}

// POST /license-terms
func (h *LicenseHandler) CreateLicenseTerms(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	raw := map[string]interface{}{}
	if !bindJSON(c, &raw) {
		return
	}

	res, err := h.licenseService.Create(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}

	if res.AlreadyRegistered {
		utils.SuccessResponse(c, gin.H{
			"message":       i18n.T(lang, i18n.KeyLicenseTermsExisting),
			"license_terms": res,
		})
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyLicenseTermsCreated),
		"license_terms": res,
	})
}

// GET /license-terms/:id
func (h *LicenseHandler) GetLicenseTerms(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	view, err := h.licenseService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":       i18n.T(lang, i18n.KeyLicenseTermsFound),
		"license_terms": view,
	})
}

// POST /ip-assets/:id/license-terms
func (h *LicenseHandler) AttachLicenseTerms(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.AttachLicenseTermsRequest
	if !bindJSON(c, &req) {
		return
	}
	req.IPID = c.Param("id")

	res, err := h.licenseService.Attach(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyLicenseTermsAttached),
		"attachment": res,
	})
}

// POST /license-tokens/quote
func (h *LicenseHandler) QuoteLicenseMint(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	req := services.QuoteLicenseMintRequest{Quantity: 1}
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.licenseService.Quote(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyLicenseQuote),
		"quote":   res,
	})
}

// POST /license-tokens
func (h *LicenseHandler) MintLicenseTokens(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	req := services.MintLicenseTokensRequest{Quantity: 1}
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.licenseService.Mint(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyLicenseTokensMinted),
		"mint":      res,
		"tx_hashes": res.MintTxHashes(),
	})
}
