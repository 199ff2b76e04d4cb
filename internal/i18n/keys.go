// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthTokenIssued        = "auth.token_issued"
	KeyAuthDisabled           = "auth.disabled"

	// Rate limiting
	KeyRateLimitExceeded = "rate_limit.exceeded"

	// Wallet and tokens
	KeyWalletInfo         = "wallet.info"
	KeyTokenInfo          = "token.info"
	KeyTokenUnknown       = "token.unknown"
	KeyTransferConfirmed  = "transfer.confirmed"
	KeySignerNotAvailable = "wallet.signer_unavailable"

	// Metadata
	KeyMetadataUploaded = "metadata.uploaded"
	KeyMetadataFailed   = "metadata.upload_failed"

	// Social
	KeySocialParsed      = "social.parsed"
	KeySocialUnsupported = "social.unsupported"

	// IP Assets
	KeyIPAssetRegistered = "ip_asset.registered"
	KeyIPAssetFound      = "ip_asset.found"
	KeyIPAssetNotFound   = "ip_asset.not_found"
	KeyCollectionCreated = "collection.created"

	// Licenses
	KeyLicenseTermsPreview  = "license_terms.preview"
	KeyLicenseTermsCreated  = "license_terms.created"
	KeyLicenseTermsExisting = "license_terms.existing"
	KeyLicenseTermsFound    = "license_terms.found"
	KeyLicenseTermsNotFound = "license_terms.not_found"
	KeyLicenseTermsAttached = "license_terms.attached"
	KeyLicenseQuote         = "license_tokens.quote"
	KeyLicenseTokensMinted  = "license_tokens.minted"

	// Chain
	KeyChainError = "chain.error"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// Admin
	KeyAuditDisabled = "admin.audit_disabled"
	KeyPinFound      = "pin.found"
	KeyPinNotFound   = "pin.not_found"
)
