package constants

// Machine-readable codes returned in API response envelopes.
const (
	// Common error codes
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeRateLimited    = "RATE_LIMITED"

	// Link error codes
	CodeInvalidURL       = "INVALID_URL"
	CodeInvalidProvider  = "INVALID_PROVIDER"
	CodeLinkNotFound     = "LINK_NOT_FOUND"
	CodeAnalysisFailed   = "ANALYSIS_FAILED"
	CodeInvalidQROptions = "INVALID_QR_OPTIONS"

	// Auth error codes
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeEmailUnconfirmed   = "EMAIL_UNCONFIRMED"

	// Success codes
	CodeLinkCreated         = "LINK_CREATED"
	CodeLinkDeleted         = "LINK_DELETED"
	CodeHistoryFound        = "HISTORY_FOUND"
	CodeAnalysisDone        = "ANALYSIS_DONE"
	CodeBrandingFound       = "BRANDING_FOUND"
	CodeBrandingUpdated     = "BRANDING_UPDATED"
	CodeSignedIn            = "SIGNED_IN"
	CodeSignedOut           = "SIGNED_OUT"
	CodeConfirmationPending = "CONFIRMATION_PENDING"
	CodeSessionFound        = "SESSION_FOUND"
)
