package constants

// Human-readable messages returned in API response envelopes.
const (
	// Common messages
	MsgInvalidRequestBody = "Invalid request body"
	MsgInternalError      = "An internal error occurred"
	MsgUnauthorized       = "Unauthorized"
	MsgRateLimited        = "Too many requests, slow down"

	// Link messages
	MsgInvalidURL      = "Please enter a valid URL (starting with http/https)"
	MsgInvalidProvider = "Unknown shortening provider"
	MsgLinkNotFound    = "Link not found"
	MsgAnalysisFailed  = "AI analysis failed. You can still shorten it manually."

	// Auth messages
	MsgInvalidCredentials  = "Invalid email or password"
	MsgEmailTaken          = "An account with this email already exists"
	MsgEmailUnconfirmed    = "Check your email to confirm your account"
	MsgConfirmationPending = "Check your email to confirm your account"
)
