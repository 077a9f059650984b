package constants

// Geocoding provider error codes
const (
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
	ErrCodeNoResult          = "NO_RESULT"
	ErrCodeUpstreamError     = "UPSTREAM_ERROR"
)

var ProviderErrorMessages = map[string]string{
	ErrCodeNetworkError:      "Unable to reach the geocoding service",
	ErrCodeRateLimited:       "Geocoding rate limit exceeded. Please try again later",
	ErrCodeInvalidDataFormat: "The geocoding request or response is malformed",
	ErrCodeNoResult:          "No geocoding result for the given query",
	ErrCodeUpstreamError:     "The geocoding service returned an error",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
