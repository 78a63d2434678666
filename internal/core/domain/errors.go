package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a missing or invalid configuration setting
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDataDirectoryMissing indicates the corpus path does not exist or is not a directory
	ErrDataDirectoryMissing = errors.New("data directory missing")

	// ErrNoDocumentsFound indicates the corpus directory holds no eligible documents
	ErrNoDocumentsFound = errors.New("no documents found")

	// ErrCorpusUnavailable indicates the corpus could not be read or built
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrRetrievalFailed indicates scoring crashed for a query
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrInferenceUnavailable indicates the inference service could not be reached
	ErrInferenceUnavailable = errors.New("inference service unavailable")

	// ErrModelNotFound indicates the inference service does not serve the configured model
	ErrModelNotFound = errors.New("model not found")

	// ErrInvalidProvider indicates an unknown inference provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrRateLimited indicates the client exceeded its request allowance
	ErrRateLimited = errors.New("rate limited")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates wrong username/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")
)

// IsCorpusError reports whether err belongs to the corpus error family.
func IsCorpusError(err error) bool {
	return errors.Is(err, ErrDataDirectoryMissing) ||
		errors.Is(err, ErrNoDocumentsFound) ||
		errors.Is(err, ErrCorpusUnavailable)
}

// IsInferenceError reports whether err came from the inference collaborator.
// These are the only errors worth a user-level retry.
func IsInferenceError(err error) bool {
	return errors.Is(err, ErrInferenceUnavailable) || errors.Is(err, ErrModelNotFound)
}
