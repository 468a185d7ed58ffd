package lastfm

import "github.com/sydlexius/songscape/internal/document"

// Last.fm API response envelopes. Payloads are kept raw and forwarded to
// clients unchanged; only the wrapping and error fields are decoded.

// apiError is the error body Last.fm returns, often with HTTP 200.
type apiError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

// Last.fm error codes that need distinct handling.
const (
	errCodeInvalidAPIKey   = 10
	errCodeSuspendedAPIKey = 26
	errCodeAuthFailed      = 4
	errCodeNotFound        = 6
	errCodeRateLimited     = 29
)

// InfoResponse is the top-level response from artist.getinfo.
type InfoResponse struct {
	apiError
	Artist document.Document `json:"artist"`
}

// SimilarResponse is the top-level response from artist.getsimilar.
type SimilarResponse struct {
	apiError
	SimilarArtists SimilarGroup `json:"similarartists"`
}

// SimilarGroup holds the similar-artist list. Artist may be an array or,
// for a single result, a bare object.
type SimilarGroup struct {
	Artist document.Document `json:"artist"`
}
