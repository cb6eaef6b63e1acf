package constants

import "net/http"

// APISuccess represents a standardized API success response with code and HTTP status.
// Use these predefined success constants for consistent API responses across the application.
type APISuccess struct {
	Code   string
	Status int
}

// Link success responses
var (
	SuccessLinkCreated = APISuccess{
		Code:   CodeLinkCreated,
		Status: http.StatusCreated,
	}
	SuccessLinkDeleted = APISuccess{
		Code:   CodeLinkDeleted,
		Status: http.StatusOK,
	}
	SuccessHistoryFound = APISuccess{
		Code:   CodeHistoryFound,
		Status: http.StatusOK,
	}
	SuccessAnalysisDone = APISuccess{
		Code:   CodeAnalysisDone,
		Status: http.StatusOK,
	}
	SuccessBrandingFound = APISuccess{
		Code:   CodeBrandingFound,
		Status: http.StatusOK,
	}
	SuccessBrandingUpdated = APISuccess{
		Code:   CodeBrandingUpdated,
		Status: http.StatusOK,
	}
)

// Auth success responses
var (
	SuccessSignedIn = APISuccess{
		Code:   CodeSignedIn,
		Status: http.StatusOK,
	}
	SuccessSignedOut = APISuccess{
		Code:   CodeSignedOut,
		Status: http.StatusOK,
	}
	SuccessConfirmationPending = APISuccess{
		Code:   CodeConfirmationPending,
		Status: http.StatusAccepted,
	}
	SuccessSessionFound = APISuccess{
		Code:   CodeSessionFound,
		Status: http.StatusOK,
	}
)
