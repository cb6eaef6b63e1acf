package links

import (
	"net/url"
	"strings"
)

// ValidationStatus classifies the URL input field.
type ValidationStatus string

const (
	StatusIdle    ValidationStatus = "idle"
	StatusValid   ValidationStatus = "valid"
	StatusInvalid ValidationStatus = "invalid"
)

// Validation is the synchronous verdict for a URL input value.
type Validation struct {
	IsValid bool
	Status  ValidationStatus
	Message string
}

const (
	msgMalformedURL = "Please enter a complete web address"
	msgMissingHTTP  = "URL must start with http:// or https://"
)

// ValidateURL classifies a raw URL string into idle, valid or invalid. It is
// pure and cheap enough to re-run on every input change.
func ValidateURL(raw string) Validation {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Validation{Status: StatusIdle}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Validation{Status: StatusInvalid, Message: msgMalformedURL}
	}

	switch u.Scheme {
	case "http", "https":
		if strings.TrimSpace(u.Host) == "" {
			return Validation{Status: StatusInvalid, Message: msgMalformedURL}
		}
		return Validation{IsValid: true, Status: StatusValid}
	case "":
		return Validation{Status: StatusInvalid, Message: msgMissingHTTP}
	default:
		// Parses with some other scheme (ftp, mailto, a bare host:port...).
		return Validation{Status: StatusInvalid, Message: msgMissingHTTP}
	}
}
