// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/javajoker/story-mcp/internal/blockchain"
	"github.com/javajoker/story-mcp/internal/i18n"
	"github.com/javajoker/story-mcp/internal/ipfs"
	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

// respondError records err on the context for the audit middleware and
// writes the matching error response.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	lang := utils.GetLangFromContext(c)

	var (
		fieldErrs validator.ValidationErrors
		verr      *pil.ValidationError
		qerr      *pil.InvalidQuantityError
	)
	switch {
	case errors.As(err, &fieldErrs):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(fieldErrs))
	case errors.As(err, &verr):
		utils.BadRequestResponse(c, verr.Error(), verr)
	case errors.As(err, &qerr):
		utils.BadRequestResponse(c, qerr.Error(), gin.H{"quantity": qerr.Quantity})
	case errors.Is(err, services.ErrSignerRequired), errors.Is(err, blockchain.ErrNoSigner):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "SIGNER_UNAVAILABLE", i18n.T(lang, i18n.KeySignerNotAvailable), nil)
	case errors.Is(err, ipfs.ErrNotConfigured):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "IPFS_NOT_CONFIGURED", i18n.T(lang, i18n.KeyMetadataFailed), err.Error())
	case errors.Is(err, services.ErrUnsupportedPlatform):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeySocialUnsupported), err.Error())
	case errors.Is(err, blockchain.ErrLicenseTermsNotFound):
		utils.NotFoundResponse(c, i18n.KeyLicenseTermsNotFound)
	case errors.Is(err, services.ErrAuditDisabled):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "AUDIT_DISABLED", i18n.T(lang, i18n.KeyAuditDisabled), nil)
	default:
		utils.BadGatewayResponse(c, i18n.T(lang, i18n.KeyChainError)+": "+err.Error())
	}
}

// bindJSON decodes the body into req, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		_ = c.Error(err)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}
